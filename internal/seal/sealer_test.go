package seal

import (
	"bytes"
	"testing"

	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapKDF = models.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1}

func testFields() models.InviteFields {
	return models.InviteFields{
		SpaceID:  "space-1",
		SpaceKey: "c3BhY2Uta2V5",
		ToUser:   "bob@example.com",
		Role:     models.RoleMember,
		Title:    "Join my notes",
	}
}

func TestSealWithConfirmedKeyAndNoPassphrase(t *testing.T) {
	keys, err := GenerateKeyPair()
	require.NoError(t, err)

	payload, err := New(WithKDFParams(cheapKDF)).Seal(testFields(), keys.Public, "")
	require.NoError(t, err)
	assert.Equal(t, models.ProtectionPublicKey, payload.Protection)
	assert.Nil(t, payload.KDF)
	assert.False(t, bytes.Contains(payload.Data, []byte("bob@example.com")))

	fields, err := Open(payload, keys, "")
	require.NoError(t, err)
	assert.Equal(t, testFields(), fields)
}

func TestSealWithPassphraseOnly(t *testing.T) {
	payload, err := New(WithKDFParams(cheapKDF)).Seal(testFields(), nil, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.ProtectionPassphrase, payload.Protection)
	require.NotNil(t, payload.KDF)
	assert.Len(t, payload.Salt, saltSize)

	_, err = Open(payload, nil, "")
	assert.ErrorIs(t, err, ErrPassphraseRequired)

	_, err = Open(payload, nil, "wrong")
	assert.ErrorIs(t, err, ErrOpen)

	fields, err := Open(payload, nil, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", fields.ToUser)
}

func TestSealWithKeyAndPassphraseNeedsBoth(t *testing.T) {
	keys, err := GenerateKeyPair()
	require.NoError(t, err)

	payload, err := New(WithKDFParams(cheapKDF)).Seal(testFields(), keys.Public, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, models.ProtectionBoth, payload.Protection)

	_, err = Open(payload, nil, "hunter2")
	assert.ErrorIs(t, err, ErrKeyRequired)

	_, err = Open(payload, keys, "")
	assert.ErrorIs(t, err, ErrPassphraseRequired)

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	_, err = Open(payload, other, "hunter2")
	assert.ErrorIs(t, err, ErrOpen)

	fields, err := Open(payload, keys, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testFields(), fields)
}

func TestSealWithoutProtectionIsRejectedByDefault(t *testing.T) {
	sealer := New(WithKDFParams(cheapKDF))
	assert.False(t, sealer.AllowsUnprotected())

	payload, err := sealer.Seal(testFields(), nil, "")
	assert.ErrorIs(t, err, ErrNoProtection)
	assert.Nil(t, payload)
}

func TestSealWithoutProtectionWhenPolicyAllows(t *testing.T) {
	payload, err := New(WithAllowUnprotected(true)).Seal(testFields(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.ProtectionNone, payload.Protection)

	fields, err := Open(payload, nil, "")
	require.NoError(t, err)
	assert.Equal(t, testFields(), fields)
}

func TestOpenRejectsUnknownProtection(t *testing.T) {
	_, err := Open(&models.SealedPayload{Protection: "rot13"}, nil, "")
	assert.ErrorIs(t, err, ErrOpen)

	_, err = Open(nil, nil, "")
	assert.ErrorIs(t, err, ErrOpen)
}
