// Package password implements the one-way credential hashing policy.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"authgate/pkg/platform/sentinel"
)

// ErrCorruptHash marks a stored hash that bcrypt cannot parse. This is an
// integrity fault in the user store, never a credential mismatch.
var ErrCorruptHash = fmt.Errorf("corrupt password hash: %w", sentinel.ErrUnavailable)

// Hasher produces and verifies bcrypt password hashes. The salt is embedded
// in the hash output, so no separate salt storage exists.
type Hasher struct {
	cost int
}

// New constructs a Hasher. A cost of 0 (or anything below bcrypt's minimum)
// selects bcrypt.DefaultCost; tests lower it to keep suites fast.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the opaque hash for a plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. Comparison time
// is independent of where a mismatch occurs; bcrypt's native compare is the
// only code path.
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrCorruptHash
	}
}
