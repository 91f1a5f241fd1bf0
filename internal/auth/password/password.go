// Package password hashes and verifies account passwords. New hashes are
// bcrypt; hashes imported from the old backend are unsalted-per-user SHA-256
// hex digests with a static application salt, recognized by shape and
// upgraded transparently after the next successful login.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "peakform/pkg/domain-errors"
)

// legacySalt is the static salt the previous backend appended before
// SHA-256. It must stay byte-for-byte identical for imported hashes to
// verify.
const legacySalt = "pf-2019-static"

// Hash creates a bcrypt hash of the password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// IsLegacy reports whether the stored hash uses the old SHA-256 scheme.
// Bcrypt hashes always carry a "$2" version prefix; legacy digests are bare
// 64-character hex.
func IsLegacy(hash string) bool {
	return !strings.HasPrefix(hash, "$2") && len(hash) == hex.EncodedLen(sha256.Size)
}

// LegacyHash computes the old scheme's digest. Exposed for import tooling
// and tests only; never store new passwords with it.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password + legacySalt))
	return hex.EncodeToString(sum[:])
}

// Verify checks a password against a stored hash of either scheme.
// needsRehash is true when the match succeeded against a legacy hash; the
// caller should re-hash with Hash and persist the upgrade.
func Verify(password, hash string) (ok bool, needsRehash bool, err error) {
	if password == "" || hash == "" {
		return false, false, nil
	}

	if IsLegacy(hash) {
		match := subtle.ConstantTimeCompare([]byte(LegacyHash(password)), []byte(hash)) == 1
		return match, match, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("could not verify password: %w", err)
	}
	return true, false, nil
}
