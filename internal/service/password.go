package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt hashes without truncation.
const MaxPasswordBytes = 72

// PasswordHasher produces and checks salted bcrypt digests at a fixed cost.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("hash password: %w", bcrypt.ErrPasswordTooLong)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is
// indistinguishable from a wrong password. Plaintexts over MaxPasswordBytes
// never match, since bcrypt would compare only their first 72 bytes.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// burn spends the same bcrypt work as a real verification. Login calls it
// for unknown identifiers so response timing does not reveal which accounts exist.
func (h *PasswordHasher) burn(plaintext string) {
	h.dummyOnce.Do(func() {
		d, err := bcrypt.GenerateFromPassword([]byte("gameforge-timing-equalizer"), h.cost)
		if err != nil {
			return
		}
		h.dummy = d
	})
	if h.dummy != nil {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
	}
}
