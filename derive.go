// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// SolanaPath is the BIP44 path used by Solana wallets for the first account.
const SolanaPath = "m/44'/501'/0'/0'"

const hardenedOffset uint32 = 0x80000000

// ErrInvalidPath is returned for derivation paths that are not of the form m/N'/N'/...
var ErrInvalidPath = errors.New("invalid derivation path")

// Path is a parsed hierarchical derivation path. All indexes are hardened.
type Path []uint32

// ParsePath parses a derivation path such as "m/44'/501'/0'/0'".
//
// ed25519 only supports hardened child derivation (SLIP-0010), so every segment
// must carry the ' suffix.
func ParsePath(path string) (Path, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	indexes := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !strings.HasSuffix(part, "'") {
			return nil, fmt.Errorf("%w: segment %q is not hardened", ErrInvalidPath, part)
		}
		index, err := strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %w", ErrInvalidPath, part, err)
		}
		indexes = append(indexes, uint32(index)+hardenedOffset) //nolint:gosec
	}
	return indexes, nil
}

// String renders the path back in m/N' notation.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range p {
		b.WriteString("/")
		b.WriteString(strconv.FormatUint(uint64(index-hardenedOffset), 10))
		b.WriteString("'")
	}
	return b.String()
}

// Node is an extended private key in the SLIP-0010 ed25519 tree.
type Node struct {
	Key       [32]byte
	ChainCode [32]byte
}

// MasterNode computes the root node for a BIP39 seed.
func MasterNode(seed []byte) Node {
	return newNode([]byte("ed25519 seed"), seed)
}

// Child derives the hardened child at index. The index must already include
// the hardened offset.
func (n Node) Child(index uint32) Node {
	data := make([]byte, 0, 37)
	data = append(data, 0x00)
	data = append(data, n.Key[:]...)
	data = binary.BigEndian.AppendUint32(data, index)
	return newNode(n.ChainCode[:], data)
}

func newNode(key, data []byte) Node {
	mac := hmac.New(sha512.New, key)
	_, _ = mac.Write(data)
	sum := mac.Sum(nil)

	var n Node
	copy(n.Key[:], sum[:32])
	copy(n.ChainCode[:], sum[32:])
	return n
}

// Derive walks the path from the master node of seed.
func (p Path) Derive(seed []byte) Node {
	node := MasterNode(seed)
	for _, index := range p {
		node = node.Child(index)
	}
	return node
}

// DerivePath parses path and derives the node for seed. It mirrors the
// derivePath(path, seedHex) helper found in JavaScript wallets.
func DerivePath(path string, seed []byte) (Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Node{}, err
	}
	return p.Derive(seed), nil
}

// DerivedKeypair is an ed25519 keypair derived from a mnemonic.
// SecretKey holds the 32-byte seed followed by the 32-byte public key.
type DerivedKeypair struct {
	PublicKey [ed25519.PublicKeySize]byte
	SecretKey [ed25519.PrivateKeySize]byte
}

// KeypairFromSeed builds the ed25519 keypair for a 32-byte seed.
func KeypairFromSeed(seed []byte) (DerivedKeypair, error) {
	if len(seed) != ed25519.SeedSize {
		return DerivedKeypair{}, fmt.Errorf("invalid ed25519 seed length: %d (must be %d)", len(seed), ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	defer clear(priv)

	var kp DerivedKeypair
	copy(kp.SecretKey[:], priv)
	copy(kp.PublicKey[:], priv[ed25519.SeedSize:])
	return kp, nil
}

// KeypairFromSecret validates a 64-byte secret key and returns the keypair it
// describes. The embedded public key must match the one derived from the seed half.
func KeypairFromSecret(secret []byte) (DerivedKeypair, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return DerivedKeypair{}, fmt.Errorf("invalid secret key length: %d (must be %d)", len(secret), ed25519.PrivateKeySize)
	}
	kp, err := KeypairFromSeed(secret[:ed25519.SeedSize])
	if err != nil {
		return DerivedKeypair{}, err
	}
	if !hmac.Equal(kp.PublicKey[:], secret[ed25519.SeedSize:]) {
		return DerivedKeypair{}, fmt.Errorf("secret key does not embed its public key")
	}
	return kp, nil
}

// Address returns the base58 encoding of the public key.
func (k DerivedKeypair) Address() string {
	return base58.Encode(k.PublicKey[:])
}

// SecretHex returns the secret key as lowercase hex.
func (k DerivedKeypair) SecretHex() string {
	return hex.EncodeToString(k.SecretKey[:])
}

// SecretArray returns the secret key bytes as comma separated decimals, the
// same rendering a JavaScript Uint8Array produces when stringified.
func (k DerivedKeypair) SecretArray() string {
	var b strings.Builder
	for i, v := range k.SecretKey {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}

// PrivateKey converts the keypair into a solana-go private key.
func (k DerivedKeypair) PrivateKey() solana.PrivateKey {
	key := make(solana.PrivateKey, len(k.SecretKey))
	copy(key, k.SecretKey[:])
	return key
}

// DeriveKeypair derives the keypair at path for mnemonic.
func DeriveKeypair(m Mnemonic, path Path) (DerivedKeypair, error) {
	seed, err := m.Seed()
	if err != nil {
		return DerivedKeypair{}, err
	}
	defer clear(seed)

	node := path.Derive(seed)
	defer clear(node.Key[:])
	return KeypairFromSeed(node.Key[:])
}

// DeriveSolanaAddress derives the base58 Solana address at SolanaPath for a
// BIP39 mnemonic phrase.
func DeriveSolanaAddress(mnemonic string) (string, error) {
	m, err := ParseMnemonic(mnemonic)
	if err != nil {
		return "", err
	}
	path, err := ParsePath(SolanaPath)
	if err != nil {
		return "", err
	}
	kp, err := DeriveKeypair(m, path)
	if err != nil {
		return "", fmt.Errorf("could not derive keypair: %w", err)
	}
	return kp.Address(), nil
}
