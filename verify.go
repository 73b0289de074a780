// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// VerifyRecord checks that a record is internally consistent and that its
// seed phrase derives the stated keypair at path:
//   - the hex and array renderings hold the same 64 bytes
//   - the secret key embeds the public key its seed half produces
//   - the public key decodes as a 32-byte base58 string matching the secret
//   - the seed phrase derives the same secret key at path
func VerifyRecord(r Record, path Path) error {
	secret, err := hex.DecodeString(r.SecretHex)
	if err != nil {
		return fmt.Errorf("could not decode secret key hex: %w", err)
	}

	array, err := parseSecretArray(r.SecretArray)
	if err != nil {
		return err
	}
	if string(array) != string(secret) {
		return fmt.Errorf("secret key hex and array disagree")
	}

	kp, err := KeypairFromSecret(secret)
	if err != nil {
		return err
	}

	pub, err := base58.Decode(r.PublicKey)
	if err != nil {
		return fmt.Errorf("could not decode public key %q: %w", r.PublicKey, err)
	}
	if len(pub) != solana.PublicKeyLength {
		return fmt.Errorf("public key %q decodes to %d bytes (must be %d)", r.PublicKey, len(pub), solana.PublicKeyLength)
	}
	want := solana.PublicKeyFromBytes(pub)
	if got := kp.PrivateKey().PublicKey(); !got.Equals(want) {
		return fmt.Errorf("public key %s does not belong to the secret key (expected %s)", r.PublicKey, got)
	}

	m, err := ParseMnemonic(r.SeedPhrase)
	if err != nil {
		return err
	}
	derived, err := DeriveKeypair(m, path)
	if err != nil {
		return fmt.Errorf("could not derive keypair: %w", err)
	}
	if derived.SecretKey != kp.SecretKey {
		return fmt.Errorf("seed phrase derives %s at %s, not %s", derived.Address(), path, r.PublicKey)
	}
	return nil
}

func parseSecretArray(s string) ([]byte, error) {
	parts := strings.Split(s, ",")
	out := make([]byte, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid secret key byte %q: %w", part, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
