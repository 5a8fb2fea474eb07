package repository

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
)

type SpaceRepository interface {
	CreateSpace(title, ownerID string) (models.SpaceSnapshot, error)
	GetSpace(spaceID string) (models.SpaceSnapshot, error)
	ListMembers(spaceID string) ([]models.Member, error)
	AddMember(spaceID, accountID string, role models.SpaceRole) error
	MemberRole(spaceID, accountID string) (models.SpaceRole, error)
}

type spaceRepository struct {
	db      *sql.DB
	invites InviteRepository
}

func NewSpaceRepository(db *sql.DB) SpaceRepository {
	return &spaceRepository{db: db, invites: NewInviteRepository(db)}
}

func (r *spaceRepository) CreateSpace(title, ownerID string) (models.SpaceSnapshot, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return models.SpaceSnapshot{}, err
	}
	defer tx.Rollback()

	var snap models.SpaceSnapshot
	err = tx.QueryRow(`INSERT INTO spaces.spaces (title) VALUES ($1) RETURNING id, title;`, title).
		Scan(&snap.ID, &snap.Title)
	if err != nil {
		return models.SpaceSnapshot{}, errors.Wrap(err, "insert space")
	}
	if _, err := tx.Exec(
		`INSERT INTO spaces.space_members (space_id, account_id, role) VALUES ($1, $2, $3);`,
		snap.ID, ownerID, string(models.RoleOwner),
	); err != nil {
		return models.SpaceSnapshot{}, errors.Wrap(err, "insert owner")
	}
	if err := tx.Commit(); err != nil {
		return models.SpaceSnapshot{}, err
	}
	return r.GetSpace(snap.ID)
}

// GetSpace returns sql.ErrNoRows for an unknown space.
func (r *spaceRepository) GetSpace(spaceID string) (models.SpaceSnapshot, error) {
	var snap models.SpaceSnapshot
	err := r.db.QueryRow(`SELECT id, title FROM spaces.spaces WHERE id = $1;`, spaceID).Scan(&snap.ID, &snap.Title)
	if err != nil {
		return models.SpaceSnapshot{}, err
	}

	if snap.Members, err = r.ListMembers(spaceID); err != nil {
		return models.SpaceSnapshot{}, err
	}
	if snap.Invites, err = r.invites.ListInvitesBySpace(spaceID); err != nil {
		return models.SpaceSnapshot{}, err
	}
	return snap, nil
}

func (r *spaceRepository) ListMembers(spaceID string) ([]models.Member, error) {
	const query = `
		SELECT m.account_id, a.email, m.role
		FROM spaces.space_members m
		JOIN spaces.accounts a ON a.id = m.account_id
		WHERE m.space_id = $1
		ORDER BY m.joined_at;
	`
	rows, err := r.db.Query(query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var (
			m    models.Member
			role string
		)
		if err := rows.Scan(&m.AccountID, &m.Email, &role); err != nil {
			return nil, err
		}
		m.Role = models.SpaceRole(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *spaceRepository) AddMember(spaceID, accountID string, role models.SpaceRole) error {
	const query = `
		INSERT INTO spaces.space_members (space_id, account_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (space_id, account_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.db.Exec(query, spaceID, accountID, string(role))
	return err
}

// MemberRole returns sql.ErrNoRows when the account does not belong to the space.
func (r *spaceRepository) MemberRole(spaceID, accountID string) (models.SpaceRole, error) {
	var role string
	err := r.db.QueryRow(
		`SELECT role FROM spaces.space_members WHERE space_id = $1 AND account_id = $2;`,
		spaceID, accountID,
	).Scan(&role)
	if err != nil {
		return "", err
	}
	return models.SpaceRole(role), nil
}
