// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

// countingDeriver returns a non-matching address until n candidates have been
// handed out, then the target address.
type countingDeriver struct {
	n     uint64
	calls atomic.Uint64
}

func (d *countingDeriver) Derive() (Candidate, error) {
	if d.calls.Add(1) == d.n {
		return Candidate{Address: "abTarget"}, nil
	}
	return Candidate{Address: "azz"}, nil
}

func TestParallel_SingleFinalRecord(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", []string{"a"}, nil, PolicyGrouped)
	is.NoErr(err)
	w := &memWriter{}
	p := &Parallel{
		Rules:   rules,
		Deriver: &countingDeriver{n: 200},
		Writer:  w,
		Workers: 4,
	}

	found, err := p.Search(context.Background())
	is.NoErr(err)
	is.Equal(found.Address, "abTarget")

	var finals int
	for _, addr := range w.addresses() {
		if addr == "abTarget" {
			finals++
		}
	}
	is.Equal(finals, 1)

	st := p.Stats()
	is.True(st.Attempts >= 200)
	is.Equal(st.Logged, uint64(len(w.addresses())))
	// the final record is the last one written
	addrs := w.addresses()
	is.Equal(addrs[len(addrs)-1], "abTarget")
}

func TestParallel_MaxAttempts(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", nil, nil, PolicyGrouped)
	is.NoErr(err)
	p := &Parallel{
		Rules:       rules,
		Deriver:     &scriptedDeriver{addresses: []string{"zzz"}},
		Writer:      &memWriter{},
		Workers:     3,
		MaxAttempts: 100,
	}

	_, err = p.Search(context.Background())
	is.True(errors.Is(err, ErrAttemptsExhausted))
	is.Equal(p.Stats().Attempts, uint64(100))
}

// slowWinDeriver returns "zzz" except for call n, which sleeps and then
// returns the target address.
type slowWinDeriver struct {
	n     uint64
	delay time.Duration
	calls atomic.Uint64
}

func (d *slowWinDeriver) Derive() (Candidate, error) {
	if d.calls.Add(1) == d.n {
		time.Sleep(d.delay)
		return Candidate{Address: "abWin"}, nil
	}
	return Candidate{Address: "zzz"}, nil
}

// TestParallel_WinOnLastAttempt covers a match derived on the last allowed
// attempt while another worker already ran out of attempts.
func TestParallel_WinOnLastAttempt(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", nil, nil, PolicyGrouped)
	is.NoErr(err)
	w := &memWriter{}
	p := &Parallel{
		Rules:       rules,
		Deriver:     &slowWinDeriver{n: 10, delay: 100 * time.Millisecond},
		Writer:      w,
		Workers:     2,
		MaxAttempts: 10,
	}

	found, err := p.Search(context.Background())
	is.NoErr(err)
	is.Equal(found.Address, "abWin")
	is.Equal(w.addresses(), []string{"abWin"})
	is.Equal(p.Stats().Attempts, uint64(10))
}

func TestParallel_WorkerErrorStopsAll(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", []string{"a"}, nil, PolicyGrouped)
	is.NoErr(err)
	w := &memWriter{failAt: 10}
	p := &Parallel{
		Rules:   rules,
		Deriver: &scriptedDeriver{addresses: []string{"azz"}},
		Writer:  w,
		Workers: 4,
	}

	_, err = p.Search(context.Background())
	is.True(IsPersistError(err))
	is.Equal(len(w.addresses()), 9)
}

func TestParallel_Canceled(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", nil, nil, PolicyGrouped)
	is.NoErr(err)
	p := &Parallel{
		Rules:   rules,
		Deriver: &scriptedDeriver{addresses: []string{"zzz"}},
		Writer:  &memWriter{},
		Workers: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Search(ctx)
	is.True(errors.Is(err, context.DeadlineExceeded))
}

func TestParallel_SingleWorker(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", []string{"a"}, nil, PolicyGrouped)
	is.NoErr(err)
	w := &memWriter{}
	p := &Parallel{
		Rules:   rules,
		Deriver: &scriptedDeriver{addresses: []string{"xyz", "azz", "abc"}},
		Writer:  w,
	}

	found, err := p.Search(context.Background())
	is.NoErr(err)
	is.Equal(found.Address, "abc")
	is.Equal(w.addresses(), []string{"azz", "abc"})
	is.Equal(p.Stats().Attempts, uint64(3))
}

func TestParallel_Progress(t *testing.T) {
	is := is.New(t)

	rules, err := NewRules("ab", nil, nil, PolicyGrouped)
	is.NoErr(err)

	var reports atomic.Int32
	p := &Parallel{
		Rules:            rules,
		Deriver:          &scriptedDeriver{addresses: []string{"zzz"}},
		Writer:           &memWriter{},
		Workers:          2,
		ProgressInterval: 5 * time.Millisecond,
		OnProgress: func(st Stats) {
			reports.Add(1)
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = p.Search(ctx)
	is.True(err != nil)
	is.True(reports.Load() > 0)

	// the reporter has stopped once Search returns
	after := reports.Load()
	time.Sleep(20 * time.Millisecond)
	is.Equal(reports.Load(), after)
}

func TestParallel_InvalidConfig(t *testing.T) {
	is := is.New(t)

	p := &Parallel{Writer: &memWriter{}, Deriver: &scriptedDeriver{addresses: []string{"a"}}}
	_, err := p.Search(context.Background())
	is.True(errors.Is(err, ErrInvalidRules))

	rules, err := NewRules("ab", nil, nil, PolicyGrouped)
	is.NoErr(err)
	p = &Parallel{Rules: rules}
	_, err = p.Search(context.Background())
	is.True(err != nil)
}

func TestNew_Options(t *testing.T) {
	is := is.New(t)

	_, err := New(Options{Target: "ab"})
	is.True(err != nil) // no output path

	_, err = New(Options{Target: "ab", OutputPath: "x.txt", Path: "m/44'/501'/0/0"})
	is.True(errors.Is(err, ErrInvalidPath))

	_, err = New(Options{Target: "ab", OutputPath: "x.txt", Words: 13})
	is.True(err != nil)

	p, err := New(Options{Target: "AB", Prefixes: []string{"A"}, OutputPath: "x.txt", Workers: 2})
	is.NoErr(err)
	is.Equal(p.Rules.Target, "ab")
	is.Equal(p.Workers, 2)
}
