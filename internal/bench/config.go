// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench

import (
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/mpmc"
)

// Config describes one producer/consumer run against a single queue.
type Config struct {
	Producers        int           `json:"producers"`
	Consumers        int           `json:"consumers"`
	ItemsPerProducer int           `json:"items_per_producer"`
	Capacity         int           `json:"capacity"`
	Layout           mpmc.Layout   `json:"-"`
	Pin              bool          `json:"pin"`
	Jitter           uint32        `json:"jitter,omitempty"` // yield after a push with probability 1/Jitter
	Timeout          time.Duration `json:"-"`
}

// Defaults applied by WithDefaults.
const (
	DefaultItemsPerProducer = 100_000
	DefaultCapacity         = 1024
	DefaultTimeout          = time.Minute
)

var (
	// ErrInvalidConfig reports a Config that cannot be run.
	ErrInvalidConfig = errors.New("bench: invalid config")

	// ErrIncomplete reports a run stopped before every item was consumed.
	ErrIncomplete = errors.New("bench: run incomplete")
)

// WithDefaults returns c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Producers == 0 {
		c.Producers = 1
	}
	if c.Consumers == 0 {
		c.Consumers = 1
	}
	if c.ItemsPerProducer == 0 {
		c.ItemsPerProducer = DefaultItemsPerProducer
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Validate reports whether c can be run.
func (c Config) Validate() error {
	switch {
	case c.Producers < 1:
		return fmt.Errorf("%w: producers %d < 1", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: consumers %d < 1", ErrInvalidConfig, c.Consumers)
	case c.ItemsPerProducer < 1:
		return fmt.Errorf("%w: items per producer %d < 1", ErrInvalidConfig, c.ItemsPerProducer)
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity %d < 1", ErrInvalidConfig, c.Capacity)
	case c.Layout != mpmc.LayoutPadded && c.Layout != mpmc.LayoutCompact:
		return fmt.Errorf("%w: layout %v", ErrInvalidConfig, c.Layout)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout %v < 0", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// String is a compact label for tables and progress output.
func (c Config) String() string {
	return fmt.Sprintf("%s cap=%d %dP/%dC", c.Layout, c.Capacity, c.Producers, c.Consumers)
}

func (c Config) total() int {
	return c.Producers * c.ItemsPerProducer
}

func (c Config) builder() *mpmc.Builder {
	b := mpmc.New(c.Capacity)
	if c.Layout == mpmc.LayoutCompact {
		b.Compact()
	}
	return b
}
