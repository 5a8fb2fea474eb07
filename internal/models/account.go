package models

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidPublicKey is returned when an account's public key cannot be decoded.
var ErrInvalidPublicKey = errors.New("invalid public key")

// Account is the public view of a registered user, as returned by the lookup service.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	PublicKey string `json:"pubkey,omitempty"`

	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// AccountPresence classifies the outcome of an account lookup.
type AccountPresence int

const (
	PresenceNone AccountPresence = iota
	PresenceUnconfirmed
	PresenceConfirmed
)

func (p AccountPresence) String() string {
	switch p {
	case PresenceConfirmed:
		return "confirmed"
	case PresenceUnconfirmed:
		return "unconfirmed"
	default:
		return "none"
	}
}

// LookupResult is the advisory outcome of looking up an invitee by email. It is never persisted.
type LookupResult struct {
	Email     string
	Presence  AccountPresence
	PublicKey *[32]byte
	// KeyUnusable is set when the account published a key that could not be decoded.
	KeyUnusable bool
}

// NewLookupResult converts the lookup service's answer into a LookupResult. A nil account
// means nobody is registered under email.
func NewLookupResult(email string, account *Account) (LookupResult, error) {
	result := LookupResult{Email: NormalizeEmail(email), Presence: PresenceNone}
	if account == nil {
		return result, nil
	}
	result.Presence = PresenceUnconfirmed
	if account.Confirmed {
		result.Presence = PresenceConfirmed
	}
	if strings.TrimSpace(account.PublicKey) == "" {
		return result, nil
	}
	key, err := DecodePublicKey(account.PublicKey)
	if err != nil {
		return LookupResult{}, err
	}
	result.PublicKey = key
	return result, nil
}

// SealingKey returns the recipient key to seal to for email, or nil if this result does not
// describe a confirmed account holding that address.
func (r LookupResult) SealingKey(email string) *[32]byte {
	if r.Presence != PresenceConfirmed || r.PublicKey == nil {
		return nil
	}
	if r.Email != NormalizeEmail(email) {
		return nil
	}
	return r.PublicKey
}

// DecodePublicKey parses a base64 encoded curve25519 public key.
func DecodePublicKey(encoded string) (*[32]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}
	if len(raw) != 32 {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "expected 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// EncodePublicKey is the inverse of DecodePublicKey.
func EncodePublicKey(key *[32]byte) string {
	if key == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(key[:])
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// LooksLikeEmail is the minimal shape check used before any lookup or submission.
func LooksLikeEmail(email string) bool {
	return strings.Contains(email, "@")
}
