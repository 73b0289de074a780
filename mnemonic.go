// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// DefaultWordCount is the length of freshly generated phrases (128 bits of entropy).
const DefaultWordCount = 12

// ErrInvalidMnemonic is returned when a phrase fails the wordlist or checksum check.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// entropyBits maps a BIP39 word count to its entropy size in bits.
var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// Mnemonic is a checksum-valid BIP39 recovery phrase.
type Mnemonic string

// NewMnemonic draws fresh entropy from the system random source and encodes it
// as a phrase of wordCount words using the active BIP39 wordlist.
//
// Valid word counts are: 12, 15, 18, 21, or 24. A zero word count selects
// DefaultWordCount.
func NewMnemonic(wordCount int) (Mnemonic, error) {
	if wordCount == 0 {
		wordCount = DefaultWordCount
	}
	bits, ok := entropyBits[wordCount]
	if !ok {
		return "", fmt.Errorf("invalid word count: %d (must be 12, 15, 18, 21, or 24)", wordCount)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("could not read entropy: %w", err)
	}
	defer clear(entropy)

	words, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}
	return Mnemonic(words), nil
}

// ParseMnemonic normalizes whitespace in s and validates it against the active
// wordlist and the BIP39 checksum.
func ParseMnemonic(s string) (Mnemonic, error) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: empty phrase", ErrInvalidMnemonic)
	}
	if _, ok := entropyBits[len(words)]; !ok {
		return "", fmt.Errorf("%w: %d words", ErrInvalidMnemonic, len(words))
	}

	phrase := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(phrase) {
		return "", fmt.Errorf("%w: checksum or wordlist mismatch", ErrInvalidMnemonic)
	}
	return Mnemonic(phrase), nil
}

// Words returns the individual words of the phrase.
func (m Mnemonic) Words() []string {
	return strings.Fields(string(m))
}

// String returns the space separated phrase.
func (m Mnemonic) String() string {
	return string(m)
}

// Seed returns the 64-byte BIP39 seed for the phrase with an empty passphrase.
func (m Mnemonic) Seed() ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(string(m), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return seed, nil
}
