// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench drives producer and consumer goroutines against one queue
// and checks what came out against what went in.
//
// Producer p pushes p*ItemsPerProducer + i for i in [0, ItemsPerProducer).
// Consumers pop until every value has been retrieved. The run records
// throughput and verifies exactly-once delivery and per-producer order.
package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/valyala/fastrand"

	"code.hybscloud.com/mpmc"
	"code.hybscloud.com/mpmc/internal/affinity"
)

// Result is the outcome of one Run.
type Result struct {
	Config          Config        `json:"config"`
	Layout          string        `json:"layout"`
	Cap             int           `json:"actual_capacity"`
	Pushed          int64         `json:"pushed"`
	Popped          int64         `json:"popped"`
	Duplicates      int           `json:"duplicates"`
	Missing         int           `json:"missing"`
	OrderViolations int64         `json:"order_violations"`
	EndedEmpty      bool          `json:"ended_empty"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	Throughput      float64       `json:"throughput_msgs_sec"`
}

// OK reports whether every pushed value was popped exactly once, in
// per-producer order, and the queue ended empty.
func (r Result) OK() bool {
	return r.Pushed == int64(r.Config.total()) &&
		r.Popped == r.Pushed &&
		r.Duplicates == 0 &&
		r.Missing == 0 &&
		r.OrderViolations == 0 &&
		r.EndedEmpty
}

// run is the shared state of one Run.
type run struct {
	cfg  Config
	q    *mpmc.Queue[uint64]
	cpus []int

	seen            []atomix.Int32
	pushed, popped  atomix.Int64
	orderViolations atomix.Int64
	stop            atomix.Bool

	errOnce sync.Once
	err     error
}

// Run executes cfg and returns what the consumers observed.
//
// Run returns an error wrapping ErrIncomplete if ctx ends or cfg.Timeout
// expires first; the partial Result is still returned.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	r := &run{
		cfg:  cfg,
		q:    mpmc.Build[uint64](cfg.builder()),
		seen: make([]atomix.Int32, cfg.total()),
	}
	if cfg.Pin {
		cpus, err := affinity.Allowed()
		if err != nil {
			return Result{}, fmt.Errorf("bench: pin: %w", err)
		}
		r.cpus = cpus
	}

	finished := make(chan struct{})
	watcher := make(chan struct{})
	go func() {
		defer close(watcher)
		select {
		case <-ctx.Done():
			if r.popped.Load() < int64(cfg.total()) {
				r.fail(fmt.Errorf("%w: %w", ErrIncomplete, ctx.Err()))
			}
		case <-finished:
		}
	}()

	var wg sync.WaitGroup
	start := time.Now()
	for p := range cfg.Producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.produce(p)
		}()
	}
	for c := range cfg.Consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.consume(cfg.Producers + c)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	close(finished)
	<-watcher

	return r.result(elapsed), r.err
}

func (r *run) fail(err error) {
	r.errOnce.Do(func() {
		r.err = err
		r.stop.Store(true)
	})
}

// pin pins worker to its round-robin CPU when pinning is enabled.
func (r *run) pin(worker int) (release func(), ok bool) {
	if !r.cfg.Pin {
		return func() {}, true
	}
	release, err := affinity.Pin(affinity.Assign(r.cpus, worker))
	if err != nil {
		r.fail(fmt.Errorf("bench: worker %d: %w", worker, err))
		return release, false
	}
	return release, true
}

func (r *run) produce(id int) {
	release, ok := r.pin(id)
	defer release()
	if !ok {
		return
	}

	base := uint64(id) * uint64(r.cfg.ItemsPerProducer)
	backoff := iox.Backoff{}
	for i := range uint64(r.cfg.ItemsPerProducer) {
		if r.stop.Load() {
			return
		}
		for !r.q.Push(base + i) {
			if r.stop.Load() {
				return
			}
			backoff.Wait()
		}
		backoff.Reset()
		r.pushed.Add(1)
		if r.cfg.Jitter > 0 && fastrand.Uint32n(r.cfg.Jitter) == 0 {
			runtime.Gosched()
		}
	}
}

func (r *run) consume(worker int) {
	release, ok := r.pin(worker)
	defer release()
	if !ok {
		return
	}

	per := uint64(r.cfg.ItemsPerProducer)
	total := int64(r.cfg.total())
	// Pops by one consumer follow head order, so values from one producer
	// must arrive strictly increasing.
	next := make([]uint64, r.cfg.Producers)
	backoff := iox.Backoff{}
	for r.popped.Load() < total && !r.stop.Load() {
		v, ok := r.q.Pop()
		if !ok {
			if r.stop.Load() {
				return
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()
		r.popped.Add(1)

		if v >= uint64(total) {
			r.fail(fmt.Errorf("bench: popped value %d out of range", v))
			return
		}
		r.seen[v].Add(1)
		producer, seq := v/per, v%per
		if seq < next[producer] {
			r.orderViolations.Add(1)
		}
		next[producer] = seq + 1
	}
}

func (r *run) result(elapsed time.Duration) Result {
	res := Result{
		Config:          r.cfg,
		Layout:          r.q.Layout().String(),
		Cap:             r.q.Cap(),
		Pushed:          r.pushed.Load(),
		Popped:          r.popped.Load(),
		OrderViolations: r.orderViolations.Load(),
		Elapsed:         elapsed,
	}
	for i := range r.seen {
		switch n := r.seen[i].Load(); {
		case n == 0:
			res.Missing++
		case n > 1:
			res.Duplicates++
		}
	}
	_, nonEmpty := r.q.Pop()
	res.EndedEmpty = !nonEmpty
	if elapsed > 0 {
		res.Throughput = float64(res.Popped) / elapsed.Seconds()
	}
	return res
}
