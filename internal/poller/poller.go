// Package poller drives live views: sample the cluster, render the result,
// sleep, and repeat until the context is cancelled.
package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the pause between two samples of a live view
const DefaultInterval = 2 * time.Second

// State is the phase of the poll cycle
type State int

const (
	Sampling State = iota
	Rendering
	Sleeping
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Rendering:
		return "rendering"
	case Sleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sampler produces one frame of a live view
type Sampler func(ctx context.Context) (string, error)

// Renderer displays frames. Error shows a failed sample without dropping
// the session.
type Renderer interface {
	Frame(content string)
	Error(err error)
}

// Stats summarises a finished session
type Stats struct {
	Ticks     int
	Failures  int
	LastError error
}

// Poller runs the sample, render, sleep cycle at a fixed interval
type Poller struct {
	interval time.Duration
	logger   *zap.Logger
	onState  func(State)
	stats    Stats
}

// Option configures a Poller
type Option func(*Poller)

// WithStateHook calls fn on every state transition
func WithStateHook(fn func(State)) Option {
	return func(p *Poller) {
		p.onState = fn
	}
}

func New(interval time.Duration, logger *zap.Logger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{interval: interval, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the pause between samples
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Stats returns the counters of the last Run
func (p *Poller) Stats() Stats {
	return p.stats
}

func (p *Poller) enter(s State) {
	if p.onState != nil {
		p.onState(s)
	}
}

// Run blocks until ctx is cancelled. The first sample is taken immediately.
// Cancellation is observed in every state and Run then returns nil.
func (p *Poller) Run(ctx context.Context, sample Sampler, render Renderer) error {
	if sample == nil || render == nil {
		return fmt.Errorf("poller needs a sampler and a renderer")
	}
	p.stats = Stats{}

	p.logger.Info("Starting live view", zap.Duration("interval", p.interval))
	defer func() {
		p.logger.Info("Live view stopped",
			zap.Int("ticks", p.stats.Ticks),
			zap.Int("failures", p.stats.Failures),
		)
	}()

	for {
		p.enter(Sampling)
		startTime := time.Now()
		frame, err := sample(ctx)
		if ctx.Err() != nil {
			return nil
		}
		p.stats.Ticks++

		p.enter(Rendering)
		if err != nil {
			p.stats.Failures++
			p.stats.LastError = err
			p.logger.Warn("Live view sample failed",
				zap.Error(err),
				zap.Duration("elapsed", time.Since(startTime)),
			)
			render.Error(err)
		} else {
			p.logger.Debug("Live view sampled", zap.Duration("elapsed", time.Since(startTime)))
			render.Frame(frame)
		}

		p.enter(Sleeping)
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
