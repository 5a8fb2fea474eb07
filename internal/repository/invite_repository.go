package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
)

// ErrDuplicateInvite is returned when the space already has a pending invite for the email.
var ErrDuplicateInvite = errors.New("invite already exists for this email")

type InviteRepository interface {
	CreateInvite(invite models.Invite) (models.Invite, error)
	GetInvite(inviteID string) (models.Invite, error)
	ListInvitesBySpace(spaceID string) ([]models.Invite, error)
	MarkInviteSent(inviteID string) error
	CancelInvite(inviteID, spaceID string) error
}

type inviteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewInviteRepository(db *sql.DB) InviteRepository {
	return &inviteRepository{db: db, now: time.Now}
}

const inviteColumns = `id, space_id, to_user, role, title, from_user, sealed, created_at`

// CreateInvite stores a sealed invite. Raw key material is never written.
func (r *inviteRepository) CreateInvite(invite models.Invite) (models.Invite, error) {
	if !invite.IsSealed() {
		return models.Invite{}, errors.New("invite is not sealed")
	}
	invite = invite.Sanitized()
	invite.ID = uuid.NewString()
	invite.ToUser = models.NormalizeEmail(invite.ToUser)
	invite.CreatedAt = r.now().UTC()

	sealed, err := json.Marshal(invite.Sealed)
	if err != nil {
		return models.Invite{}, errors.Wrap(err, "encode sealed payload")
	}

	const query = `
		INSERT INTO spaces.space_invites (id, space_id, to_user, role, title, from_user, sealed, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6::text, '')::uuid, $7, $8);
	`
	_, err = r.db.Exec(query,
		invite.ID,
		invite.SpaceID,
		invite.ToUser,
		string(invite.Role),
		invite.Title,
		invite.FromUser,
		string(sealed),
		invite.CreatedAt,
	)
	if isUniqueViolation(err) {
		return models.Invite{}, ErrDuplicateInvite
	}
	if err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}

func (r *inviteRepository) GetInvite(inviteID string) (models.Invite, error) {
	row := r.db.QueryRow(`SELECT `+inviteColumns+` FROM spaces.space_invites WHERE id = $1;`, inviteID)
	return scanInvite(row)
}

func (r *inviteRepository) ListInvitesBySpace(spaceID string) ([]models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM spaces.space_invites WHERE space_id = $1 ORDER BY created_at;`
	rows, err := r.db.Query(query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// MarkInviteSent records delivery. Marking an invite twice is not an error.
func (r *inviteRepository) MarkInviteSent(inviteID string) error {
	result, err := r.db.Exec(
		`UPDATE spaces.space_invites SET sent_at = COALESCE(sent_at, $2) WHERE id = $1;`,
		inviteID, r.now().UTC(),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *inviteRepository) CancelInvite(inviteID, spaceID string) error {
	result, err := r.db.Exec(`DELETE FROM spaces.space_invites WHERE id = $1 AND space_id = $2;`, inviteID, spaceID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvite(row rowScanner) (models.Invite, error) {
	var (
		invite models.Invite
		role   string
		from   sql.NullString
		sealed []byte
	)
	if err := row.Scan(
		&invite.ID,
		&invite.SpaceID,
		&invite.ToUser,
		&role,
		&invite.Title,
		&from,
		&sealed,
		&invite.CreatedAt,
	); err != nil {
		return models.Invite{}, err
	}
	invite.Role = models.SpaceRole(role)
	invite.FromUser = from.String
	if len(sealed) > 0 {
		invite.Sealed = &models.SealedPayload{}
		if err := json.Unmarshal(sealed, invite.Sealed); err != nil {
			return models.Invite{}, errors.Wrapf(err, "decode sealed payload of invite %s", invite.ID)
		}
	}
	return invite, nil
}
