package repository

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stanstork/stratum-spaces/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken is returned when an account already exists for the email.
var ErrEmailTaken = errors.New("email already registered")

type AccountRepository interface {
	CreateAccount(email, password, publicKey string) (models.Account, error)
	AuthenticateAccount(email, password string) (models.Account, error)
	FindByEmail(email string) (models.Account, error)
	ConfirmAccount(accountID string) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccount(email, password, publicKey string) (models.Account, error) {
	email = models.NormalizeEmail(email)
	if publicKey != "" {
		if _, err := models.DecodePublicKey(publicKey); err != nil {
			return models.Account{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, errors.Wrap(err, "hash password")
	}

	account := models.Account{
		Email:        email,
		PublicKey:    publicKey,
		PasswordHash: string(hash),
	}
	const query = `
		INSERT INTO spaces.accounts (email, password_hash, public_key)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, confirmed, created_at;
	`
	err = r.db.QueryRow(query, account.Email, account.PasswordHash, account.PublicKey).
		Scan(&account.ID, &account.Confirmed, &account.CreatedAt)
	if isUniqueViolation(err) {
		return models.Account{}, ErrEmailTaken
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (r *accountRepository) AuthenticateAccount(email, password string) (models.Account, error) {
	account, err := r.FindByEmail(email)
	if err != nil {
		return models.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, errors.New("invalid credentials")
	}
	return account, nil
}

// FindByEmail returns sql.ErrNoRows when nobody is registered under email.
func (r *accountRepository) FindByEmail(email string) (models.Account, error) {
	const query = `
		SELECT id, email, confirmed, COALESCE(public_key, ''), password_hash, created_at
		FROM spaces.accounts
		WHERE email = $1;
	`
	var account models.Account
	err := r.db.QueryRow(query, models.NormalizeEmail(email)).Scan(
		&account.ID,
		&account.Email,
		&account.Confirmed,
		&account.PublicKey,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return models.Account{}, err
	}
	account.PublicKey = strings.TrimSpace(account.PublicKey)
	return account, nil
}

func (r *accountRepository) ConfirmAccount(accountID string) error {
	result, err := r.db.Exec(`UPDATE spaces.accounts SET confirmed = TRUE WHERE id = $1;`, accountID)
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
