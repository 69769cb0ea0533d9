// Package credentials holds the password storage strategies for employee records.
package credentials

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/ports"
)

const (
	ModePlaintext = "plaintext"
	ModeBcrypt    = "bcrypt"
)

var (
	_ ports.CredentialVerifier = PlaintextVerifier{}
	_ ports.CredentialVerifier = BcryptVerifier{}
)

// PlaintextVerifier stores and compares passwords as entered. It matches the
// records existing terminals already hold and is the default.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Prepare(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier stores bcrypt hashes. Enabling it changes the stored format,
// so existing plaintext records stop matching until they are re-saved.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Prepare(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// ForMode selects a verifier by CREDENTIAL_MODE value.
func ForMode(mode string) (ports.CredentialVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModePlaintext:
		return PlaintextVerifier{}, nil
	case ModeBcrypt:
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q", mode)
	}
}
