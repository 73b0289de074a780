// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressInterval is how often progress is reported when no interval
// is configured.
const DefaultProgressInterval = 5 * time.Second

// Parallel runs the same search on several goroutines. Workers share the
// rules, the deriver and a single serialized record writer, so Deriver must be
// safe for concurrent use. The first worker to match wins; its record is the
// only final record written.
type Parallel struct {
	Rules   Rules
	Deriver Deriver
	Writer  RecordWriter

	// Workers is the number of goroutines. Values below 2 run the plain
	// single-threaded Searcher on the calling goroutine.
	Workers int

	// MaxAttempts bounds the total number of candidates across all workers
	// when non-zero.
	MaxAttempts uint64

	// ProgressInterval controls how often OnProgress is called. Zero uses
	// DefaultProgressInterval, a negative value disables reporting.
	ProgressInterval time.Duration
	OnProgress       func(Stats)

	Logger zerolog.Logger

	counters atomic.Pointer[counters]
}

// Stats returns a snapshot of the current or last search.
func (p *Parallel) Stats() Stats {
	cnt := p.counters.Load()
	if cnt == nil {
		return Stats{}
	}
	return cnt.snapshot()
}

func (p *Parallel) searcher(cnt *counters, w RecordWriter, worker int) *Searcher {
	return &Searcher{
		Rules:       p.Rules,
		Deriver:     p.Deriver,
		Writer:      w,
		MaxAttempts: p.MaxAttempts,
		Logger:      p.Logger.With().Int("worker", worker).Logger(),
		counters:    cnt,
	}
}

// Search runs until one worker finds the target, the attempt limit is hit,
// ctx is done or a worker fails. The first error cancels every worker.
func (p *Parallel) Search(ctx context.Context) (Candidate, error) {
	if err := p.Rules.Validate(); err != nil {
		return Candidate{}, err
	}
	if p.Deriver == nil || p.Writer == nil {
		return Candidate{}, errors.New("search needs a deriver and a record writer")
	}

	cnt := newCounters()
	p.counters.Store(cnt)

	stop := p.startProgress(cnt)
	defer stop()

	if p.Workers < 2 { //nolint:mnd
		return p.searcher(cnt, p.Writer, 0).Search(ctx)
	}

	writer := NewLockedWriter(p.Writer)

	var (
		found  atomic.Bool
		result Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := range p.Workers {
		g.Go(func() error {
			c, err := p.searcher(cnt, writer, i).run(gctx, &found)
			if err != nil {
				if found.Load() && stoppedEarly(err) {
					return nil
				}
				return err
			}
			if found.CompareAndSwap(false, true) {
				result = c
			}
			return nil
		})
	}
	// A worker may hit the attempt limit while another is still deriving the
	// winning candidate inside the budget. The win stands.
	if err := g.Wait(); err != nil && !(found.Load() && stoppedEarly(err)) {
		return Candidate{}, err
	}

	if err := writer.WriteRecord(RecordFor(result)); err != nil {
		return Candidate{}, err
	}
	cnt.logged.Add(1)

	st := cnt.snapshot()
	p.Logger.Info().
		Str("address", result.Address).
		Uint64("attempts", st.Attempts).
		Dur("elapsed", st.Elapsed).
		Int("workers", p.Workers).
		Msg("target found")
	return result, nil
}

// stoppedEarly reports whether err only means a worker gave up, not that it
// failed.
func stoppedEarly(err error) bool {
	return errors.Is(err, ErrAttemptsExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// startProgress launches the periodic reporter and returns a function that
// stops it and waits for it to exit.
func (p *Parallel) startProgress(cnt *counters) func() {
	if p.OnProgress == nil || p.ProgressInterval < 0 {
		return func() {}
	}
	interval := p.ProgressInterval
	if interval == 0 {
		interval = DefaultProgressInterval
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.OnProgress(cnt.snapshot())
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}
