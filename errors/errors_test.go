package errors

import (
	"encoding/json"
	"testing"
)

func TestError(t *testing.T) {
	err := E("stabilize", Eval, New("callback panicked"))
	if got, want := err.Error(), "stabilize: evaluation error: callback panicked"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Match(Eval, err) {
		t.Errorf("expected %v to match kind Eval", err)
	}
	if Match(Contract, err) {
		t.Errorf("did not expect %v to match kind Contract", err)
	}
}

func TestChain(t *testing.T) {
	inner := E("fold", "key 1", Contract, New("remove of untracked key"))
	outer := E("stabilize", inner)
	e := Recover(outer)
	if got, want := e.Kind, Contract; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !Match(&Error{Op: "stabilize", Kind: Contract}, outer) {
		t.Errorf("outer error %v does not match", outer)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(E("read", Contract)) {
		t.Error("contract violations must not be retryable")
	}
	if !Retryable(E("stabilize", Eval, New("user error"))) {
		t.Error("user recompute failures must be retryable")
	}
	if Retryable(E("height", Exhausted)) {
		t.Error("exhaustion must not be retryable")
	}
}

func TestStdInterop(t *testing.T) {
	base := New("base failure")
	wrapped := Errorf("fold: %w", base)
	if !Is(wrapped, base) {
		t.Error("wrapped error does not match its cause")
	}
	if !Is(E("stabilize", Eval, wrapped), base) {
		t.Error("chained error does not match its cause")
	}
}

func TestMarshal(t *testing.T) {
	for _, err := range []error{
		E("observe", Contract),
		E("stabilize", Eval, New("boom")),
		E("bind", "rebind", Exhausted, E("height", Invalid)),
	} {
		b, merr := json.Marshal(err)
		if merr != nil {
			t.Fatal(merr)
		}
		rt := new(Error)
		if uerr := json.Unmarshal(b, rt); uerr != nil {
			t.Fatal(uerr)
		}
		if !Match(err, rt) || !Match(rt, err.(*Error)) {
			t.Errorf("error %v did not round trip (got %v)", err, rt)
		}
	}
}
