// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrAttemptsExhausted is returned when a search bounded by MaxAttempts ends
// without a match.
var ErrAttemptsExhausted = errors.New("attempt limit reached without a match")

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ExpectedAttempts estimates how many uniformly random addresses must be
// checked before one starts with the folded prefix. A letter present in both
// cases in the base58 alphabet matches twice as often as a digit.
func ExpectedAttempts(prefix string) float64 {
	expected := 1.0
	for _, c := range Fold(prefix) {
		hits := strings.Count(strings.ToLower(base58Alphabet), string(c))
		if hits == 0 {
			return 0
		}
		expected *= float64(len(base58Alphabet)) / float64(hits)
	}
	return expected
}

// Stats is a snapshot of search progress.
type Stats struct {
	Attempts   uint64
	Logged     uint64
	Elapsed    time.Duration
	KeysPerSec float64
}

// counters are shared by every worker of one search.
type counters struct {
	attempts atomic.Uint64
	logged   atomic.Uint64
	start    time.Time
}

func newCounters() *counters {
	return &counters{start: time.Now()}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Attempts: c.attempts.Load(),
		Logged:   c.logged.Load(),
		Elapsed:  time.Since(c.start),
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.KeysPerSec = float64(s.Attempts) / secs
	}
	return s
}

// Searcher runs the vanity search on the calling goroutine.
type Searcher struct {
	Rules   Rules
	Deriver Deriver
	Writer  RecordWriter

	// MaxAttempts bounds the search when non-zero.
	MaxAttempts uint64

	// Logger receives near-match and completion events. The zero value
	// discards everything.
	Logger zerolog.Logger

	counters *counters
}

// NewSearcher validates rules and returns a searcher using d and w.
func NewSearcher(rules Rules, d Deriver, w RecordWriter) (*Searcher, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if d == nil || w == nil {
		return nil, errors.New("searcher needs a deriver and a record writer")
	}
	return &Searcher{
		Rules:    rules,
		Deriver:  d,
		Writer:   w,
		Logger:   zerolog.Nop(),
		counters: newCounters(),
	}, nil
}

func (s *Searcher) stats() *counters {
	if s.counters == nil {
		s.counters = newCounters()
	}
	return s.counters
}

// Stats returns a progress snapshot.
func (s *Searcher) Stats() Stats {
	return s.stats().snapshot()
}

// Step runs one iteration: derive a candidate, evaluate it and append the
// records its verdict calls for. A Found verdict writes nothing; the caller
// owns the final record.
func (s *Searcher) Step() (Candidate, Verdict, error) {
	c, err := s.Deriver.Derive()
	if err != nil {
		return Candidate{}, Verdict{}, fmt.Errorf("could not derive candidate: %w", err)
	}

	v := s.Rules.Evaluate(c.Address)
	for range v.Writes {
		if err := s.Writer.WriteRecord(RecordFor(c)); err != nil {
			return c, v, err
		}
		s.stats().logged.Add(1)
	}
	if v.Writes > 0 {
		s.Logger.Info().
			Str("address", c.Address).
			Int("records", v.Writes).
			Msg("near match")
	}
	return c, v, nil
}

// Search loops until an address starts with the target prefix, appends the
// final record exactly once and returns the matching candidate.
//
// The winning candidate is not checked against the logging rules, so it is
// never also appended as a near match, even when a logged prefix or substring
// would match it.
//
// Without a deadline on ctx and with MaxAttempts unset the search is unbounded.
// Cancellation is checked once per iteration.
func (s *Searcher) Search(ctx context.Context) (Candidate, error) {
	c, err := s.run(ctx, nil)
	if err != nil {
		return Candidate{}, err
	}
	if err := s.Writer.WriteRecord(RecordFor(c)); err != nil {
		return Candidate{}, err
	}
	s.stats().logged.Add(1)

	st := s.Stats()
	s.Logger.Info().
		Str("address", c.Address).
		Uint64("attempts", st.Attempts).
		Dur("elapsed", st.Elapsed).
		Msg("target found")
	return c, nil
}

// run iterates until a Found verdict and returns that candidate without
// writing it. stop, when set, ends the loop early once another worker has won.
func (s *Searcher) run(ctx context.Context, stop *atomic.Bool) (Candidate, error) {
	cnt := s.stats()
	for {
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}
		if stop != nil && stop.Load() {
			return Candidate{}, context.Canceled
		}

		n := cnt.attempts.Add(1)
		if s.MaxAttempts > 0 && n > s.MaxAttempts {
			cnt.attempts.Add(^uint64(0))
			return Candidate{}, ErrAttemptsExhausted
		}

		c, v, err := s.Step()
		if err != nil {
			return Candidate{}, err
		}
		if v.Kind == Found {
			return c, nil
		}
	}
}
