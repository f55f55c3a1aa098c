// Package idgen allocates collision-free, length-bounded volume identifiers.
//
// Allocation is checked against an existence callback supplied by the
// caller; the callback must compare case-insensitively (the contour
// collection's Has method satisfies this). The package never touches a
// collection itself.
package idgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// ScratchPrefix marks identifiers of temporary scratch volumes.
	ScratchPrefix = "zz"

	// MinRandomLength is the smallest usable random-identifier length:
	// the scratch prefix plus at least one random character.
	MinRandomLength = len(ScratchPrefix) + 1

	// MaxDerivedLength is the default length budget for derived
	// identifiers, matching the host application's identifier limit.
	MaxDerivedLength = 16
)

var (
	// ErrInvalidArgument indicates a length budget too small for the
	// requested allocation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExhausted indicates no unused identifier remains within the
	// length budget.
	ErrExhausted = errors.New("identifier space exhausted")
)

const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Random returns a fresh identifier of exactly maxLength characters,
// starting with ScratchPrefix followed by random characters. The suffix is
// resampled until taken reports the candidate free. Termination is
// probabilistic but near-certain: the suffix space vastly exceeds any
// realistic collection occupancy.
func Random(maxLength int, taken func(string) bool) (string, error) {
	if maxLength < MinRandomLength {
		return "", fmt.Errorf("%w: max length %d below minimum %d", ErrInvalidArgument, maxLength, MinRandomLength)
	}
	for {
		suffix, err := randomString(maxLength - len(ScratchPrefix))
		if err != nil {
			return "", err
		}
		candidate := ScratchPrefix + suffix
		if !taken(candidate) {
			return candidate, nil
		}
	}
}

// Candidate returns the raw derived identifier prefix+root+suffix,
// truncating root from the right so the result fits maxLength. Prefix and
// suffix are never truncated; if they alone exceed the budget the call
// fails with ErrInvalidArgument.
func Candidate(root, prefix, suffix string, maxLength int) (string, error) {
	if maxLength <= 0 {
		return "", fmt.Errorf("%w: max length %d", ErrInvalidArgument, maxLength)
	}
	fixed := len(prefix) + len(suffix)
	if fixed > maxLength {
		return "", fmt.Errorf("%w: prefix %q and suffix %q exceed max length %d", ErrInvalidArgument, prefix, suffix, maxLength)
	}
	budget := maxLength - fixed
	if len(root) > budget {
		root = root[:budget]
	}
	return prefix + root + suffix, nil
}

// Derive returns a unique derived identifier. It starts from the Candidate
// concatenation; on collision it inserts a two-digit zero-padded counter
// between the root and the suffix, re-truncating the root so the total
// stays within maxLength, until an unused identifier is found. All
// counters taken, or no room left for a counter, fails with ErrExhausted.
func Derive(root, prefix, suffix string, maxLength int, taken func(string) bool) (string, error) {
	base, err := Candidate(root, prefix, suffix, maxLength)
	if err != nil {
		return "", err
	}
	if !taken(base) {
		return base, nil
	}

	budget := maxLength - len(prefix) - len(suffix) - 2
	if budget < 0 {
		return "", fmt.Errorf("%w: no room for a counter within max length %d", ErrExhausted, maxLength)
	}
	counted := root
	if len(counted) > budget {
		counted = counted[:budget]
	}
	for n := 1; n <= 99; n++ {
		candidate := fmt.Sprintf("%s%s%02d%s", prefix, counted, n, suffix)
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: all counters taken for %q", ErrExhausted, base)
}

// IsScratch reports whether an identifier carries the scratch prefix.
func IsScratch(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), ScratchPrefix)
}

func randomString(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to sample random character: %w", err)
		}
		b.WriteByte(randomAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
