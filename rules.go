// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRules is returned by Rules.Validate.
var ErrInvalidRules = errors.New("invalid match rules")

// Policy controls how many records a non-terminal candidate produces when it
// satisfies more than one logging rule.
type Policy int

const (
	// PolicyGrouped writes once if any logged prefix matches and once more if
	// any logged substring matches.
	PolicyGrouped Policy = iota
	// PolicyPerRule writes once for every matching prefix and substring.
	PolicyPerRule
	// PolicyOnce writes a candidate at most once per iteration.
	PolicyOnce
)

var policyNames = map[Policy]string{
	PolicyGrouped: "grouped",
	PolicyPerRule: "per-rule",
	PolicyOnce:    "once",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy resolves a policy name as printed by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyGrouped, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown write policy %q (must be grouped, per-rule, or once)", s)
}

// Rules decide whether an address ends the search or gets logged.
type Rules struct {
	// Target ends the search when the folded address starts with it.
	Target string
	// Prefixes are logged when the folded address starts with any of them.
	Prefixes []string
	// Substrings are logged when they occur anywhere in the folded address.
	Substrings []string
	Policy     Policy
}

// NewRules folds every pattern to lowercase and validates the result.
func NewRules(target string, prefixes, substrings []string, policy Policy) (Rules, error) {
	r := Rules{
		Target:     Fold(strings.TrimSpace(target)),
		Prefixes:   foldAll(prefixes),
		Substrings: foldAll(substrings),
		Policy:     policy,
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func foldAll(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, Fold(p))
	}
	return out
}

// Validate rejects an empty target and patterns that can never occur in a
// case-folded base58 string.
func (r Rules) Validate() error {
	if r.Target == "" {
		return fmt.Errorf("%w: empty target prefix", ErrInvalidRules)
	}
	if _, ok := policyNames[r.Policy]; !ok {
		return fmt.Errorf("%w: unknown policy %d", ErrInvalidRules, int(r.Policy))
	}

	patterns := append([]string{r.Target}, r.Prefixes...)
	patterns = append(patterns, r.Substrings...)
	for _, p := range patterns {
		if p != Fold(p) {
			return fmt.Errorf("%w: %q is not lowercase", ErrInvalidRules, p)
		}
		for _, c := range p {
			if notFoldedBase58(c) {
				return fmt.Errorf("%w: %q contains %q which never appears in a base58 address", ErrInvalidRules, p, c)
			}
		}
	}
	return nil
}

// notFoldedBase58 reports characters outside the lowercased base58 alphabet.
// Every letter survives folding (I, O and l fold onto i, o and l), '0' does not.
func notFoldedBase58(c rune) bool {
	switch {
	case c >= '1' && c <= '9':
		return false
	case c >= 'a' && c <= 'z':
		return false
	}
	return true
}

// Kind discriminates the outcome of one iteration.
type Kind int

const (
	// Continue means the search goes on.
	Continue Kind = iota
	// Found means the target prefix matched.
	Found
)

func (k Kind) String() string {
	if k == Found {
		return "found"
	}
	return "continue"
}

// Verdict is the result of evaluating one address. Writes is the number of
// records to append for a Continue verdict. A Found verdict never carries
// in-loop writes; its single record is written after the loop ends.
type Verdict struct {
	Kind   Kind
	Writes int
}

// Evaluate matches an address (any case) against the rules.
func (r Rules) Evaluate(address string) Verdict {
	folded := Fold(address)
	if strings.HasPrefix(folded, r.Target) {
		return Verdict{Kind: Found}
	}

	prefixHits := countMatches(r.Prefixes, func(p string) bool { return strings.HasPrefix(folded, p) })
	substringHits := countMatches(r.Substrings, func(s string) bool { return strings.Contains(folded, s) })

	var writes int
	switch r.Policy {
	case PolicyPerRule:
		writes = prefixHits + substringHits
	case PolicyOnce:
		if prefixHits+substringHits > 0 {
			writes = 1
		}
	default:
		if prefixHits > 0 {
			writes++
		}
		if substringHits > 0 {
			writes++
		}
	}
	return Verdict{Kind: Continue, Writes: writes}
}

func countMatches(patterns []string, match func(string) bool) int {
	var n int
	for _, p := range patterns {
		if match(p) {
			n++
		}
	}
	return n
}
