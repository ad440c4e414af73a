// Package password is the pepper-aware password hashing helper (spec §4.13):
// the authentication service itself stays out of scope, but the hash/verify
// primitive it needs is a small enough collaborator to build in-module
// rather than leave undefined.
//
// Grounded on golang.org/x/crypto/bcrypt's GenerateFromPassword/
// CompareHashAndPassword usage in other_examples' seed script. bcrypt
// already embeds its own salt in the returned hash, but the stored-row
// shape (spec.md: "Password record — stores salt, bcrypt-style hash of
// (plaintext || pepper)") wants a separate salt column, so this package
// generates its own random salt and folds it into the bcrypt input
// alongside the pepper: hash = bcrypt(plaintext || pepper || salt).
package password

import (
	"crypto/rand"

	"golang.org/x/crypto/bcrypt"

	"github.com/hanzidojo/engine/internal/engerr"
)

// saltSize is the length in bytes of the random salt folded into every hash.
const saltSize = 16

// cost is the bcrypt work factor, matching the cost used by the pack's own
// seed script.
const cost = 12

// HashPassword produces a fresh salt and the bcrypt hash of
// (plaintext || pepper || salt). Both must be persisted on the password
// record; neither plaintext nor pepper is ever stored.
func HashPassword(plaintext, pepper string) (salt, hash []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, engerr.WrapInternalError(err, "password: generate salt")
	}

	h, err := bcrypt.GenerateFromPassword(input(plaintext, pepper, salt), cost)
	if err != nil {
		return nil, nil, engerr.WrapInternalError(err, "password: hash")
	}
	return salt, h, nil
}

// VerifyPassword reports whether plaintext, combined with pepper and the
// stored salt, matches the stored hash.
func VerifyPassword(plaintext, pepper string, salt, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, input(plaintext, pepper, salt)) == nil
}

func input(plaintext, pepper string, salt []byte) []byte {
	b := make([]byte, 0, len(plaintext)+len(pepper)+len(salt))
	b = append(b, plaintext...)
	b = append(b, pepper...)
	b = append(b, salt...)
	return b
}
