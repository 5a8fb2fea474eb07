package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoleCatalogExcludesOwner(t *testing.T) {
	catalog := DefaultRoleCatalog()

	assert.False(t, catalog.Contains(RoleOwner))
	for _, role := range []SpaceRole{RoleAdmin, RoleModerator, RoleMember, RoleGuest} {
		assert.True(t, catalog.Contains(role), "expected %s in catalog", role)
	}

	sorted := catalog.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, RoleAdmin, sorted[0].Role)
	assert.Equal(t, RoleGuest, sorted[3].Role)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("  Moderator ")
	assert.True(t, ok)
	assert.Equal(t, RoleModerator, role)

	_, ok = ParseRole("janitor")
	assert.False(t, ok)

	assert.True(t, RoleAdmin.HasAtLeast(RoleMember))
	assert.False(t, RoleGuest.HasAtLeast(RoleMember))
	assert.False(t, SpaceRole("janitor").HasAtLeast(RoleGuest))
}

func TestInviteSetUpsertIsKeyedByNormalizedEmail(t *testing.T) {
	set := NewInviteSet()
	set.Upsert(Invite{ToUser: "Bob@Example.com", Title: "first"})
	set.Upsert(Invite{ToUser: "bob@example.com", Title: "second"})

	require.Equal(t, 1, set.Len())
	inv, ok := set.Get("BOB@example.com")
	require.True(t, ok)
	assert.Equal(t, "second", inv.Title)
}

func TestSpaceAddInviteRejectsMembers(t *testing.T) {
	space := NewSpace("space-1", []byte("key"))
	space.Members.Add(Member{AccountID: "u1", Email: "alice@example.com", Role: RoleOwner})

	err := space.AddInvite(Invite{ToUser: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, 0, space.Invites.Len())

	require.NoError(t, space.AddInvite(Invite{ToUser: "bob@example.com", SpaceKey: []byte("secret")}))
	assert.True(t, space.HasInvite("Bob@Example.com"))
	stored, _ := space.Invites.Get("bob@example.com")
	assert.Nil(t, stored.SpaceKey)
}

func TestMemberSetUniqueByAccount(t *testing.T) {
	set := NewMemberSet(
		Member{AccountID: "u1", Email: "a@example.com", Role: RoleMember},
		Member{AccountID: "u2", Email: "b@example.com", Role: RoleGuest},
		Member{AccountID: "u1", Email: "a@example.com", Role: RoleAdmin},
	)
	members := set.List()
	require.Len(t, members, 2)
	assert.Equal(t, "u1", members[0].AccountID)
	assert.Equal(t, RoleAdmin, members[0].Role)
}

func TestSanitizedDropsKeyMaterial(t *testing.T) {
	invite := Invite{
		SpaceID:  "s1",
		SpaceKey: []byte("raw key"),
		ToUser:   "bob@example.com",
		Role:     RoleMember,
		Title:    "hi",
		Sealed:   &SealedPayload{Version: 1, Protection: ProtectionPublicKey, Data: []byte{1, 2, 3}},
	}
	clone := invite.Sanitized()

	assert.Nil(t, clone.SpaceKey)
	require.True(t, clone.IsSealed())
	clone.Sealed.Data[0] = 9
	assert.Equal(t, byte(1), invite.Sealed.Data[0])
}

func TestNewLookupResult(t *testing.T) {
	none, err := NewLookupResult("Bob@Example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, PresenceNone, none.Presence)
	assert.Equal(t, "bob@example.com", none.Email)

	var key [32]byte
	key[0] = 7
	confirmed, err := NewLookupResult("bob@example.com", &Account{Confirmed: true, PublicKey: EncodePublicKey(&key)})
	require.NoError(t, err)
	assert.Equal(t, PresenceConfirmed, confirmed.Presence)
	assert.Equal(t, &key, confirmed.SealingKey("BOB@example.com"))
	assert.Nil(t, confirmed.SealingKey("carol@example.com"))

	unconfirmed, err := NewLookupResult("bob@example.com", &Account{PublicKey: EncodePublicKey(&key)})
	require.NoError(t, err)
	assert.Equal(t, PresenceUnconfirmed, unconfirmed.Presence)
	assert.Nil(t, unconfirmed.SealingKey("bob@example.com"))

	_, err = NewLookupResult("bob@example.com", &Account{Confirmed: true, PublicKey: "c2hvcnQ="})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}
