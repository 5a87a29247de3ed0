package account

import (
	"context"
	"strings"
	"time"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// Role is the kind of principal an account belongs to.
type Role string

const (
	RoleClient  Role = "client"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts a user type in any letter case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClient, RoleTrainer, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Admin levels.
const (
	LevelSuperAdmin = "SuperAdmin"
	LevelManager    = "Manager"
)

var (
	ErrNotFound           = apperr.NotFound("account not found")
	ErrInvalidRole        = apperr.Validation("invalid user type")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrEmailTaken         = apperr.Conflict("email is already registered")
	ErrInvalidEmail       = apperr.Validation("invalid email format")
	ErrInvalidAdminLevel  = apperr.Validation("invalid admin level, must be SuperAdmin or Manager")
)

// Account is a client, trainer or admin. Role specific fields stay empty for
// the other roles.
type Account struct {
	ID           int64
	Role         Role
	FullName     string
	Email        string
	PasswordHash string
	Phone        string
	Gender       string
	DOB          *time.Time
	Address      string
	City         string
	Country      string
	DateJoined   time.Time

	AdminLevel string

	Qualifications string
	Expertise      string
	IntroVideoURL  *string
	Cert           Certification
}

// Certification describes a trainer certificate.
type Certification struct {
	Title  string
	Issuer string
	Year   *int
	ID     string
}

// Patch lists profile fields to change. Nil fields are left untouched.
type Patch struct {
	FullName       *string
	Email          *string
	Password       *string
	Phone          *string
	Gender         *string
	DOB            *time.Time
	Address        *string
	City           *string
	Country        *string
	AdminLevel     *string
	Qualifications *string
	Expertise      *string
	CertTitle      *string
	CertIssuer     *string
	CertYear       *int
	CertID         *string

	// PasswordHash is filled by the service from Password.
	PasswordHash *string
}

// Empty reports whether the patch carries no field.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) (int64, error)
	GetByID(ctx context.Context, role Role, id int64) (*Account, error)
	GetByEmail(ctx context.Context, role Role, email string) (*Account, error)
	List(ctx context.Context, role Role) ([]Account, error)
	Update(ctx context.Context, role Role, id int64, p Patch) error
	SetIntroVideo(ctx context.Context, trainerID int64, url *string) error
	Delete(ctx context.Context, role Role, id int64) error
}
