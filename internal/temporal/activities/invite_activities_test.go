package activities

import (
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type fakeInvites struct {
	invites map[string]models.Invite
	sent    []string
}

func (f *fakeInvites) CreateInvite(invite models.Invite) (models.Invite, error) { return invite, nil }

func (f *fakeInvites) GetInvite(id string) (models.Invite, error) {
	inv, ok := f.invites[id]
	if !ok {
		return models.Invite{}, sql.ErrNoRows
	}
	return inv, nil
}

func (f *fakeInvites) ListInvitesBySpace(string) ([]models.Invite, error) { return nil, nil }

func (f *fakeInvites) MarkInviteSent(id string) error {
	if _, ok := f.invites[id]; !ok {
		return sql.ErrNoRows
	}
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeInvites) CancelInvite(string, string) error { return nil }

type fakeSpaces struct{}

func (fakeSpaces) CreateSpace(string, string) (models.SpaceSnapshot, error) {
	return models.SpaceSnapshot{}, nil
}

func (fakeSpaces) GetSpace(id string) (models.SpaceSnapshot, error) {
	return models.SpaceSnapshot{ID: id, Title: "Research notes"}, nil
}

func (fakeSpaces) ListMembers(string) ([]models.Member, error)         { return nil, nil }
func (fakeSpaces) AddMember(string, string, models.SpaceRole) error    { return nil }
func (fakeSpaces) MemberRole(string, string) (models.SpaceRole, error) { return "", sql.ErrNoRows }

type fakeMailer struct {
	sent []notification.InviteEmail
	err  error
}

func (f *fakeMailer) SendInvite(msg notification.InviteEmail) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func newActivities(mailer *fakeMailer) (*Activities, *fakeInvites) {
	invites := &fakeInvites{invites: map[string]models.Invite{
		"inv-1": {
			ID:      "inv-1",
			SpaceID: "space-1",
			ToUser:  "bob@example.com",
			Role:    models.RoleMember,
			Title:   "Join us",
			Sealed:  &models.SealedPayload{Version: 1, Protection: models.ProtectionPassphrase, Data: []byte{1}},
		},
	}}
	return &Activities{
		Invites:           invites,
		Spaces:            fakeSpaces{},
		Mailer:            mailer,
		InviteURLTemplate: "https://app.stratum.dev/spaces/%s/invites/%s",
	}, invites
}

func TestSendInviteEmailActivity(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	mailer := &fakeMailer{}
	a, _ := newActivities(mailer)
	env.RegisterActivity(a)

	val, err := env.ExecuteActivity(a.SendInviteEmailActivity, "inv-1", "space-1")
	require.NoError(t, err)
	var recipient string
	require.NoError(t, val.Get(&recipient))
	assert.Equal(t, "bob@example.com", recipient)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, notification.InviteEmail{
		To:         "bob@example.com",
		SpaceTitle: "Research notes",
		Title:      "Join us",
		Role:       "member",
		InviteURL:  "https://app.stratum.dev/spaces/space-1/invites/inv-1",
		Protected:  true,
	}, mailer.sent[0])
}

func TestSendInviteEmailActivityForMissingInvite(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	a, _ := newActivities(&fakeMailer{})
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.SendInviteEmailActivity, "missing", "space-1")
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeInviteGone, appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

func TestSendInviteEmailActivityMailerFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	a, _ := newActivities(&fakeMailer{err: errors.New("relay refused")})
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.SendInviteEmailActivity, "inv-1", "space-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay refused")
}

func TestMarkInviteSentActivity(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	a, invites := newActivities(&fakeMailer{})
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.MarkInviteSentActivity, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"inv-1"}, invites.sent)
}
