package repository

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/migration"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the database named by STRATUM_TEST_DATABASE_URL and skips otherwise.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("STRATUM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STRATUM_TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.RunMigrations(db, zerolog.Nop()))
	_, err = db.Exec(`TRUNCATE spaces.space_invites, spaces.space_members, spaces.spaces, spaces.accounts CASCADE;`)
	require.NoError(t, err)
	return db
}

func TestInviteLifecycle(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountRepository(db)
	spaces := NewSpaceRepository(db)
	invites := NewInviteRepository(db)

	owner, err := accounts.CreateAccount("Owner@Example.com", "pw", "")
	require.NoError(t, err)
	_, err = accounts.CreateAccount("owner@example.com", "pw", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	authed, err := accounts.AuthenticateAccount("owner@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, authed.ID)
	_, err = accounts.AuthenticateAccount("owner@example.com", "nope")
	assert.Error(t, err)

	space, err := spaces.CreateSpace("Research", owner.ID)
	require.NoError(t, err)
	role, err := spaces.MemberRole(space.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	invite := models.Invite{
		SpaceID:  space.ID,
		SpaceKey: []byte("never stored"),
		ToUser:   "Bob@Example.com",
		Role:     models.RoleMember,
		Title:    "Join us",
		FromUser: owner.ID,
		Sealed:   &models.SealedPayload{Version: 1, Protection: models.ProtectionPassphrase, Salt: []byte{9}, Data: []byte{1, 2}},
	}
	saved, err := invites.CreateInvite(invite)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "bob@example.com", saved.ToUser)
	assert.Nil(t, saved.SpaceKey)

	_, err = invites.CreateInvite(invite)
	assert.ErrorIs(t, err, ErrDuplicateInvite)

	loaded, err := invites.GetInvite(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Sealed, loaded.Sealed)
	assert.Equal(t, owner.ID, loaded.FromUser)

	require.NoError(t, invites.MarkInviteSent(saved.ID))
	require.NoError(t, invites.MarkInviteSent(saved.ID))

	snap, err := spaces.GetSpace(space.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Members, 1)
	assert.Len(t, snap.Invites, 1)

	require.NoError(t, invites.CancelInvite(saved.ID, space.ID))
	assert.ErrorIs(t, invites.CancelInvite(saved.ID, space.ID), sql.ErrNoRows)
	_, err = invites.GetInvite(saved.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
