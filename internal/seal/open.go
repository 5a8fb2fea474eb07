package seal

import (
	"crypto/rand"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
	"golang.org/x/crypto/nacl/box"
)

// KeyPair is a recipient's curve25519 key pair.
type KeyPair struct {
	Public  *[32]byte
	Private *[32]byte
}

// Open reverses Seal. keys may be nil for passphrase-only payloads and passphrase may be empty
// for key-only payloads.
func Open(payload *models.SealedPayload, keys *KeyPair, passphrase string) (models.InviteFields, error) {
	if payload == nil {
		return models.InviteFields{}, errors.Wrap(ErrOpen, "empty payload")
	}

	data := payload.Data
	switch payload.Protection {
	case models.ProtectionPublicKey, models.ProtectionBoth:
		if keys == nil || keys.Public == nil || keys.Private == nil {
			return models.InviteFields{}, ErrKeyRequired
		}
		opened, ok := box.OpenAnonymous(nil, data, keys.Public, keys.Private)
		if !ok {
			return models.InviteFields{}, errors.Wrap(ErrOpen, "public key layer")
		}
		data = opened
	case models.ProtectionPassphrase, models.ProtectionNone:
	default:
		return models.InviteFields{}, errors.Wrapf(ErrOpen, "unknown protection %q", payload.Protection)
	}

	if payload.Protection == models.ProtectionPassphrase || payload.Protection == models.ProtectionBoth {
		if passphrase == "" {
			return models.InviteFields{}, ErrPassphraseRequired
		}
		if payload.KDF == nil || len(payload.Salt) == 0 {
			return models.InviteFields{}, errors.Wrap(ErrOpen, "missing kdf parameters")
		}
		opened, err := decrypt(deriveKey(passphrase, payload.Salt, *payload.KDF), data)
		if err != nil {
			return models.InviteFields{}, errors.Wrap(ErrOpen, "passphrase layer")
		}
		data = opened
	}

	var fields models.InviteFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.InviteFields{}, errors.Wrap(ErrOpen, "decode fields")
	}
	return fields, nil
}

// GenerateKeyPair creates a recipient key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate key pair")
	}
	return &KeyPair{Public: pub, Private: priv}, nil
}
