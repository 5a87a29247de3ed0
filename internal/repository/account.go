package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/apperr"
)

const (
	accountColumns = `id, role, full_name, email, password_hash, phone, gender, dob, address, city, country,
		date_joined, admin_level, qualifications, expertise, intro_video_url,
		cert_title, cert_issuer, cert_year, cert_id`

	insertAccountSQL = `INSERT INTO accounts (role, full_name, email, password_hash, phone, gender, dob,
		address, city, country, admin_level, qualifications, expertise,
		cert_title, cert_issuer, cert_year, cert_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	getAccountByIDSQL    = `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 AND id = $2`
	getAccountByEmailSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 AND lower(email) = lower($2)`
	listAccountsSQL      = `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY id`

	setIntroVideoSQL = `UPDATE accounts SET intro_video_url = $1 WHERE role = 'trainer' AND id = $2`
	deleteAccountSQL = `DELETE FROM accounts WHERE role = $1 AND id = $2`
)

var errAccountInUse = apperr.Conflict("account has related records and cannot be deleted")

var _ account.Repository = (*AccountRepository)(nil)

// AccountRepository implements account.Repository backed by PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns an AccountRepository that uses the given pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts an account and returns its id.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertAccountSQL,
		a.Role, a.FullName, a.Email, a.PasswordHash, a.Phone, a.Gender, a.DOB,
		a.Address, a.City, a.Country, a.AdminLevel, a.Qualifications, a.Expertise,
		a.Cert.Title, a.Cert.Issuer, a.Cert.Year, a.Cert.ID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, account.ErrEmailTaken
		}
		return 0, fmt.Errorf("inserting %s account: %w", a.Role, err)
	}
	return id, nil
}

// GetByID returns one account of the given role.
func (r *AccountRepository) GetByID(ctx context.Context, role account.Role, id int64) (*account.Account, error) {
	return r.getOne(ctx, getAccountByIDSQL, role, id)
}

// GetByEmail looks an account up by email, ignoring letter case.
func (r *AccountRepository) GetByEmail(ctx context.Context, role account.Role, email string) (*account.Account, error) {
	return r.getOne(ctx, getAccountByEmailSQL, role, email)
}

func (r *AccountRepository) getOne(ctx context.Context, sql string, role account.Role, key any) (*account.Account, error) {
	rows, err := r.pool.Query(ctx, sql, role, key)
	if err != nil {
		return nil, fmt.Errorf("getting %s account %v: %w", role, key, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("getting %s account %v: %w", role, key, err)
	}
	return &a, nil
}

// List returns every account of the role ordered by id.
func (r *AccountRepository) List(ctx context.Context, role account.Role) ([]account.Account, error) {
	rows, err := r.pool.Query(ctx, listAccountsSQL, role)
	if err != nil {
		return nil, fmt.Errorf("listing %s accounts: %w", role, err)
	}
	return pgx.CollectRows(rows, scanAccount)
}

// Update applies a profile patch.
func (r *AccountRepository) Update(ctx context.Context, role account.Role, id int64, p account.Patch) error {
	var s setList
	setIf(&s, "full_name", p.FullName)
	setIf(&s, "email", p.Email)
	setIf(&s, "password_hash", p.PasswordHash)
	setIf(&s, "phone", p.Phone)
	setIf(&s, "gender", p.Gender)
	setIf(&s, "dob", p.DOB)
	setIf(&s, "address", p.Address)
	setIf(&s, "city", p.City)
	setIf(&s, "country", p.Country)
	setIf(&s, "admin_level", p.AdminLevel)
	setIf(&s, "qualifications", p.Qualifications)
	setIf(&s, "expertise", p.Expertise)
	setIf(&s, "cert_title", p.CertTitle)
	setIf(&s, "cert_issuer", p.CertIssuer)
	setIf(&s, "cert_year", p.CertYear)
	setIf(&s, "cert_id", p.CertID)

	err := s.exec(ctx, r.pool, "accounts", account.ErrNotFound, where("role", role), where("id", id))
	if isUniqueViolation(err) {
		return account.ErrEmailTaken
	}
	return err
}

// SetIntroVideo stores or clears a trainer's intro video url.
func (r *AccountRepository) SetIntroVideo(ctx context.Context, trainerID int64, url *string) error {
	tag, err := r.pool.Exec(ctx, setIntroVideoSQL, url, trainerID)
	if err != nil {
		return fmt.Errorf("setting intro video of trainer %d: %w", trainerID, err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Delete removes an account. Accounts still referenced by orders,
// subscriptions or attendance cannot be deleted.
func (r *AccountRepository) Delete(ctx context.Context, role account.Role, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteAccountSQL, role, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errAccountInUse
		}
		return fmt.Errorf("deleting %s account %d: %w", role, id, err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.CollectableRow) (account.Account, error) {
	var a account.Account
	err := row.Scan(
		&a.ID, &a.Role, &a.FullName, &a.Email, &a.PasswordHash, &a.Phone, &a.Gender, &a.DOB,
		&a.Address, &a.City, &a.Country, &a.DateJoined, &a.AdminLevel, &a.Qualifications,
		&a.Expertise, &a.IntroVideoURL, &a.Cert.Title, &a.Cert.Issuer, &a.Cert.Year, &a.Cert.ID,
	)
	return a, err
}
