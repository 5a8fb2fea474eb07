// Package seal encrypts invite payloads so that only the intended recipient can read them.
//
// A payload is protected by up to two independent layers. The inner layer is AES-256-GCM under
// a key stretched from a passphrase with argon2id. The outer layer is an anonymous NaCl box
// addressed to the recipient's curve25519 public key. When both are present, opening the invite
// needs the recipient's private key and the passphrase.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/box"
)

const (
	payloadVersion = 1
	saltSize       = 16
	keySize        = 32
)

var (
	// ErrNoProtection means neither a recipient key nor a passphrase was supplied and the
	// policy does not allow unprotected invites.
	ErrNoProtection = errors.New("invite needs a recipient key or a passphrase")
	// ErrOpen is returned when a payload cannot be decrypted with the given secrets.
	ErrOpen = errors.New("unable to open sealed invite")
	// ErrPassphraseRequired is returned by Open when the payload has a passphrase layer.
	ErrPassphraseRequired = errors.New("passphrase required")
	// ErrKeyRequired is returned by Open when the payload is addressed to a public key.
	ErrKeyRequired = errors.New("recipient key pair required")
)

// DefaultKDFParams follow the argon2id recommendation for interactive use.
var DefaultKDFParams = models.KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

type Sealer struct {
	kdf              models.KDFParams
	allowUnprotected bool
	rand             io.Reader
}

type Option func(*Sealer)

// WithKDFParams overrides the passphrase stretching cost. Zero fields keep their defaults.
func WithKDFParams(p models.KDFParams) Option {
	return func(s *Sealer) {
		if p.Time > 0 {
			s.kdf.Time = p.Time
		}
		if p.MemoryKiB > 0 {
			s.kdf.MemoryKiB = p.MemoryKiB
		}
		if p.Threads > 0 {
			s.kdf.Threads = p.Threads
		}
	}
}

// WithAllowUnprotected lets Seal produce a plaintext payload when no protection is available.
func WithAllowUnprotected(allow bool) Option {
	return func(s *Sealer) { s.allowUnprotected = allow }
}

// WithRandom sets the entropy source, for deterministic tests.
func WithRandom(r io.Reader) Option {
	return func(s *Sealer) { s.rand = r }
}

func New(opts ...Option) *Sealer {
	s := &Sealer{kdf: DefaultKDFParams, rand: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowsUnprotected reports the configured policy for invites without any protection.
func (s *Sealer) AllowsUnprotected() bool {
	return s.allowUnprotected
}

// Seal encrypts fields. recipient may be nil and passphrase may be empty, but not both unless
// the sealer allows unprotected invites.
func (s *Sealer) Seal(fields models.InviteFields, recipient *[32]byte, passphrase string) (*models.SealedPayload, error) {
	if recipient == nil && passphrase == "" && !s.allowUnprotected {
		return nil, ErrNoProtection
	}

	plain, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "marshal invite fields")
	}

	payload := &models.SealedPayload{
		Version:    payloadVersion,
		Protection: models.ProtectionNone,
		Data:       plain,
	}

	if passphrase != "" {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(s.rand, salt); err != nil {
			return nil, errors.Wrap(err, "generate salt")
		}
		kdf := s.kdf
		data, err := encrypt(deriveKey(passphrase, salt, kdf), plain, s.rand)
		if err != nil {
			return nil, errors.Wrap(err, "passphrase layer")
		}
		payload.Salt = salt
		payload.KDF = &kdf
		payload.Data = data
		payload.Protection = models.ProtectionPassphrase
	}

	if recipient != nil {
		data, err := box.SealAnonymous(nil, payload.Data, recipient, s.rand)
		if err != nil {
			return nil, errors.Wrap(err, "public key layer")
		}
		payload.Data = data
		if payload.Protection == models.ProtectionPassphrase {
			payload.Protection = models.ProtectionBoth
		} else {
			payload.Protection = models.ProtectionPublicKey
		}
	}

	return payload, nil
}

func deriveKey(passphrase string, salt []byte, p models.KDFParams) []byte {
	return argon2.IDKey([]byte(passphrase), salt, p.Time, p.MemoryKiB, p.Threads, keySize)
}

func encrypt(key, plain []byte, rnd io.Reader) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rnd, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
