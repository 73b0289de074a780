// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"fmt"
	"strings"
)

// Candidate is the mnemonic, keypair and address produced by one search
// iteration. A new Candidate is derived for every iteration.
type Candidate struct {
	Mnemonic Mnemonic
	Keypair  DerivedKeypair
	// Address is the base58 public key in its original case.
	Address string
}

// Fold returns the case-folded address used for matching.
func Fold(address string) string {
	return strings.ToLower(address)
}

// Deriver produces a fresh Candidate on every call.
type Deriver interface {
	Derive() (Candidate, error)
}

// MnemonicDeriver generates a random mnemonic and derives its keypair at Path.
// It holds no per-call state and is safe for concurrent use.
type MnemonicDeriver struct {
	Words int
	Path  Path
}

// NewMnemonicDeriver parses path once so that misconfiguration surfaces before
// the search starts.
func NewMnemonicDeriver(words int, path string) (*MnemonicDeriver, error) {
	if path == "" {
		path = SolanaPath
	}
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if words == 0 {
		words = DefaultWordCount
	}
	if _, ok := entropyBits[words]; !ok {
		return nil, fmt.Errorf("invalid word count: %d (must be 12, 15, 18, 21, or 24)", words)
	}
	return &MnemonicDeriver{Words: words, Path: p}, nil
}

// Derive implements Deriver.
func (d *MnemonicDeriver) Derive() (Candidate, error) {
	m, err := NewMnemonic(d.Words)
	if err != nil {
		return Candidate{}, err
	}
	kp, err := DeriveKeypair(m, d.Path)
	if err != nil {
		return Candidate{}, fmt.Errorf("could not derive keypair: %w", err)
	}
	return Candidate{
		Mnemonic: m,
		Keypair:  kp,
		Address:  kp.Address(),
	}, nil
}
