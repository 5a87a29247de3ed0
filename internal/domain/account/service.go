package account

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/apperr"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// SignupRequest holds the self-registration form of a client.
type SignupRequest struct {
	FullName string
	Email    string
	Password string
	Phone    string
	Gender   string
	DOB      string
	Address  string
	City     string
	Country  string
}

// Service implements login, registration and profile management.
type Service struct {
	repo   Repository
	hasher Hasher
}

// NewService creates an account Service.
func NewService(repo Repository, hasher Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Login verifies credentials for the given user type.
func (s *Service) Login(ctx context.Context, email, password, userType string) (*Account, error) {
	if email == "" || password == "" || userType == "" {
		return nil, apperr.Validation("please fill in all fields")
	}
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	role, err := ParseRole(userType)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get account")
	}
	if !s.hasher.Compare(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// Signup registers a new client and returns its id.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (int64, error) {
	for _, v := range []string{
		req.FullName, req.Email, req.Password, req.Phone, req.Gender,
		req.DOB, req.Address, req.City, req.Country,
	} {
		if strings.TrimSpace(v) == "" {
			return 0, apperr.Validation("please fill in all required fields")
		}
	}
	dob, err := ParseDate(req.DOB)
	if err != nil {
		return 0, err
	}

	return s.Create(ctx, Account{
		Role:     RoleClient,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Gender:   req.Gender,
		DOB:      &dob,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
	}, req.Password)
}

// Create stores a new account of any role with the given password.
func (s *Service) Create(ctx context.Context, a Account, password string) (int64, error) {
	if a.FullName == "" || a.Email == "" || password == "" {
		return 0, apperr.Validation("full name, email and password are required")
	}
	if !ValidEmail(a.Email) {
		return 0, ErrInvalidEmail
	}
	if _, err := ParseRole(string(a.Role)); err != nil {
		return 0, err
	}
	if a.Role == RoleAdmin && !validLevel(a.AdminLevel) {
		return 0, ErrInvalidAdminLevel
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	a.PasswordHash = hash

	id, err := s.repo.Create(ctx, &a)
	if err != nil {
		return 0, errors.Wrap(err, "create account")
	}
	return id, nil
}

// Get returns one account. The password hash is cleared.
func (s *Service) Get(ctx context.Context, role Role, id int64) (*Account, error) {
	a, err := s.repo.GetByID(ctx, role, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %d", role, id)
	}
	a.PasswordHash = ""
	return a, nil
}

// List returns all accounts of a role without password hashes.
func (s *Service) List(ctx context.Context, role Role) ([]Account, error) {
	list, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s accounts", role)
	}
	for i := range list {
		list[i].PasswordHash = ""
	}
	return list, nil
}

// Update applies a profile patch. A new password is re-hashed.
func (s *Service) Update(ctx context.Context, role Role, id int64, p Patch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	if p.Email != nil && !ValidEmail(*p.Email) {
		return ErrInvalidEmail
	}
	if p.FullName != nil && strings.TrimSpace(*p.FullName) == "" {
		return apperr.Validation("full name cannot be empty")
	}
	if p.AdminLevel != nil && (role != RoleAdmin || !validLevel(*p.AdminLevel)) {
		return ErrInvalidAdminLevel
	}
	if p.Password != nil {
		if *p.Password == "" {
			return apperr.Validation("password cannot be empty")
		}
		hash, err := s.hasher.Hash(*p.Password)
		if err != nil {
			return err
		}
		p.PasswordHash = &hash
		p.Password = nil
	}
	if err := s.repo.Update(ctx, role, id, p); err != nil {
		return errors.Wrapf(err, "update %s %d", role, id)
	}
	return nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, role Role, id int64) error {
	if err := s.repo.Delete(ctx, role, id); err != nil {
		return errors.Wrapf(err, "delete %s %d", role, id)
	}
	return nil
}

// SetIntroVideo stores a trainer's introduction video link. A blank link
// clears it. The stored value is returned.
func (s *Service) SetIntroVideo(ctx context.Context, trainerID int64, url string) (*string, error) {
	var v *string
	if u := strings.TrimSpace(url); u != "" {
		v = &u
	}
	if err := s.repo.SetIntroVideo(ctx, trainerID, v); err != nil {
		return nil, errors.Wrap(err, "set intro video")
	}
	return v, nil
}

// Contact returns the name and email of a client for receipts.
func (s *Service) Contact(ctx context.Context, clientID int64) (name, email string, err error) {
	a, err := s.repo.GetByID(ctx, RoleClient, clientID)
	if err != nil {
		return "", "", err
	}
	return a.FullName, a.Email, nil
}

// ClientExists returns ErrNotFound when no client has the id.
func (s *Service) ClientExists(ctx context.Context, clientID int64) error {
	_, err := s.repo.GetByID(ctx, RoleClient, clientID)
	return err
}

func validLevel(level string) bool {
	return level == LevelSuperAdmin || level == LevelManager
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// SearchClients lists clients whose name or email contains query, ignoring
// case. A blank query returns every client.
func (s *Service) SearchClients(ctx context.Context, query string) ([]Account, error) {
	list, err := s.List(ctx, RoleClient)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list, nil
	}
	out := list[:0]
	for _, a := range list {
		if strings.Contains(strings.ToLower(a.FullName), q) || strings.Contains(strings.ToLower(a.Email), q) {
			out = append(out, a)
		}
	}
	return out, nil
}
