// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package vanify searches for Solana vanity keypairs derived from BIP39
// mnemonics.
//
// Every iteration generates a fresh random mnemonic, derives the ed25519
// keypair at m/44'/501'/0'/0' (SLIP-0010) and base58-encodes the public key.
// The lowercase encoding is compared against a target prefix, which ends the
// search, and against shorter logged prefixes and substrings, which append
// "near match" records to an output file while the search goes on. The
// output file is append-only: records are never rewritten or removed, and a
// candidate matching several rules may be written more than once.
package vanify

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a search built with New.
type Options struct {
	// Target is the prefix that ends the search.
	Target string
	// Prefixes and Substrings are logged while the search goes on.
	Prefixes   []string
	Substrings []string
	Policy     Policy

	// OutputPath receives every record.
	OutputPath string

	// Words is the mnemonic length; zero means DefaultWordCount.
	Words int
	// Path is the derivation path; empty means SolanaPath.
	Path string

	Workers          int
	MaxAttempts      uint64
	ProgressInterval time.Duration
	OnProgress       func(Stats)
	Logger           zerolog.Logger
}

// New validates opts and returns a ready-to-run search backed by a
// MnemonicDeriver and a FileWriter.
func New(opts Options) (*Parallel, error) {
	rules, err := NewRules(opts.Target, opts.Prefixes, opts.Substrings, opts.Policy)
	if err != nil {
		return nil, err
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	deriver, err := NewMnemonicDeriver(opts.Words, opts.Path)
	if err != nil {
		return nil, err
	}

	return &Parallel{
		Rules:            rules,
		Deriver:          deriver,
		Writer:           NewFileWriter(opts.OutputPath),
		Workers:          opts.Workers,
		MaxAttempts:      opts.MaxAttempts,
		ProgressInterval: opts.ProgressInterval,
		OnProgress:       opts.OnProgress,
		Logger:           opts.Logger,
	}, nil
}
