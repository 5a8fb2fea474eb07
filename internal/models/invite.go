package models

import "time"

// Protection flags which layers guard a sealed payload.
type Protection string

const (
	ProtectionNone       Protection = "none"
	ProtectionPublicKey  Protection = "pubkey"
	ProtectionPassphrase Protection = "passphrase"
	ProtectionBoth       Protection = "pubkey+passphrase"
)

// KDFParams are the argon2id cost parameters used to stretch a passphrase.
type KDFParams struct {
	Time      uint32 `json:"time" mapstructure:"time"`
	MemoryKiB uint32 `json:"memory_kib" mapstructure:"memory_kib"`
	Threads   uint8  `json:"threads" mapstructure:"threads"`
}

// SealedPayload is the encrypted body of an invite. Salt and KDF are only set when a
// passphrase layer is present.
type SealedPayload struct {
	Version    int        `json:"version"`
	Protection Protection `json:"protection"`
	Salt       []byte     `json:"salt,omitempty"`
	KDF        *KDFParams `json:"kdf,omitempty"`
	Data       []byte     `json:"data"`
}

// InviteFields is the plaintext that gets sealed.
type InviteFields struct {
	SpaceID  string    `json:"space_id"`
	SpaceKey string    `json:"space_key"`
	ToUser   string    `json:"to_user"`
	Role     SpaceRole `json:"role"`
	Title    string    `json:"title"`
}

// Invite represents a pending invitation to join a space.
type Invite struct {
	ID        string         `json:"id,omitempty"`
	SpaceID   string         `json:"space_id"`
	SpaceKey  []byte         `json:"-"`
	ToUser    string         `json:"to_user"`
	Role      SpaceRole      `json:"role"`
	Title     string         `json:"title"`
	FromUser  string         `json:"from_user_id,omitempty"`
	Sealed    *SealedPayload `json:"sealed,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// Fields returns the plaintext portion of the invite.
func (i Invite) Fields(encodedKey string) InviteFields {
	return InviteFields{
		SpaceID:  i.SpaceID,
		SpaceKey: encodedKey,
		ToUser:   i.ToUser,
		Role:     i.Role,
		Title:    i.Title,
	}
}

// IsSealed reports whether a payload has been attached.
func (i Invite) IsSealed() bool {
	return i.Sealed != nil && len(i.Sealed.Data) > 0
}

// Sanitized returns a copy carrying only public fields and the sealed payload. Raw key
// material never leaves the invite that was sealed.
func (i Invite) Sanitized() Invite {
	clone := Invite{
		ID:        i.ID,
		SpaceID:   i.SpaceID,
		ToUser:    i.ToUser,
		Role:      i.Role,
		Title:     i.Title,
		FromUser:  i.FromUser,
		CreatedAt: i.CreatedAt,
	}
	if i.Sealed != nil {
		payload := *i.Sealed
		payload.Salt = append([]byte(nil), i.Sealed.Salt...)
		payload.Data = append([]byte(nil), i.Sealed.Data...)
		if i.Sealed.KDF != nil {
			kdf := *i.Sealed.KDF
			payload.KDF = &kdf
		}
		clone.Sealed = &payload
	}
	return clone
}
