// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"fmt"

	"github.com/incrlabs/incr/errors"
	"gopkg.in/yaml.v2"
)

const (
	// defaultMaxHeight bounds cell heights. Exceeding it indicates
	// unbounded bind recursion or a pathological graph shape.
	defaultMaxHeight = 1 << 16

	// defaultMaxRounds bounds the number of internal passes a single
	// Stabilize call may run. Each round exists to apply variable
	// sets staged by incremental-map machinery during the previous
	// round; a well-formed graph needs a small constant number.
	defaultMaxRounds = 128
)

// Config stores engine tunables. Configs modulate Graph behavior.
type Config struct {
	// MaxHeight is the maximum admissible cell height. Cells whose
	// height would exceed it fail with an Exhausted error.
	MaxHeight int `yaml:"maxheight,omitempty"`
	// MaxRounds is the maximum number of internal passes per
	// Stabilize call.
	MaxRounds int `yaml:"maxrounds,omitempty"`
}

// Merge merges config d into config c: unset fields of c take their
// value from d.
func (c *Config) Merge(d Config) {
	if c.MaxHeight == 0 {
		c.MaxHeight = d.MaxHeight
	}
	if c.MaxRounds == 0 {
		c.MaxRounds = d.MaxRounds
	}
}

// IsZero tells whether this config stores any non-default config.
func (c Config) IsZero() bool {
	return c == Config{}
}

// String returns a summary of the configuration c.
func (c Config) String() string {
	return fmt.Sprintf("maxheight=%d,maxrounds=%d", c.MaxHeight, c.MaxRounds)
}

// DefaultConfig is the configuration applied for fields left unset.
var DefaultConfig = Config{
	MaxHeight: defaultMaxHeight,
	MaxRounds: defaultMaxRounds,
}

// ParseConfig parses a YAML-encoded Config, validating its fields.
func ParseConfig(b []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return Config{}, errors.E("parseconfig", errors.Invalid, err)
	}
	if c.MaxHeight < 0 || c.MaxRounds < 0 {
		return Config{}, errors.E("parseconfig", errors.Invalid,
			errors.Errorf("negative limit in config %s", c))
	}
	c.Merge(DefaultConfig)
	return c, nil
}
