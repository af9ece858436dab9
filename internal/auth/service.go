package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/unipress/publishing/internal/config"
	"github.com/unipress/publishing/internal/database"
	"github.com/unipress/publishing/internal/database/authors"
	"github.com/unipress/publishing/internal/database/schema"
	"github.com/unipress/publishing/internal/database/users"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrMissingFields      = errors.New("required fields are missing")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrStaffIDTaken       = errors.New("author with this staff ID already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAuthorRoleRequired = errors.New("author account required")
	ErrSessionNotFound    = errors.New("session not found")
)

// Portal is the sign-in surface an account logs in through. Each portal
// admits a different set of roles.
type Portal string

const (
	PortalUser   Portal = "user"
	PortalAuthor Portal = "author"
	PortalAdmin  Portal = "admin"
)

// portalRoles lists the roles admitted by each portal. A nil entry admits
// every role.
var portalRoles = map[Portal][]string{
	PortalUser:   nil,
	PortalAuthor: {users.RoleAuthor, users.RoleAdmin, users.RoleEditor},
	PortalAdmin:  users.StaffRoles,
}

// UserRegistration is a website account sign-up.
type UserRegistration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// AuthorRegistration is an author self-registration awaiting approval.
type AuthorRegistration struct {
	FullName         string `json:"full_name" form:"full_name"`
	Email            string `json:"email" form:"email"`
	Phone            string `json:"phone" form:"phone"`
	Password         string `json:"password" form:"password"`
	StaffID          string `json:"staff_id" form:"staff_id"`
	Faculty          string `json:"faculty" form:"faculty"`
	Department       string `json:"department" form:"department"`
	Qualifications   string `json:"qualifications" form:"qualifications"`
	Biography        string `json:"biography" form:"biography"`
	AreasOfExpertise string `json:"areas_of_expertise" form:"areas_of_expertise"`
	OrcidID          string `json:"orcid_id" form:"orcid_id"`
	GoogleScholarID  string `json:"google_scholar_id" form:"google_scholar_id"`
	LinkedinURL      string `json:"linkedin_url" form:"linkedin_url"`
	ProfileImage     string `json:"profile_image" form:"profile_image"`
}

// LoginResult is a verified account. AuthorProfile is set for author
// portal logins of accounts that have a profile.
type LoginResult struct {
	User          *users.User
	AuthorProfile database.Row
}

// Service handles registration and credential checks.
type Service struct {
	db      *database.Adapter
	users   *users.Repository
	authors *authors.Repository
	config  config.Auth

	mu           sync.Mutex
	columnsReady bool
}

// NewService creates a new authentication service.
func NewService(db *database.Adapter, cfg config.Auth) *Service {
	return &Service{
		db:      db,
		users:   users.NewRepository(db),
		authors: authors.NewRepository(db),
		config:  cfg,
	}
}

func (s *Service) hash(password string) (string, error) {
	return HashPassword(password, s.config.BcryptCost)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// RegisterUser creates a website account in pending status.
func (s *Service) RegisterUser(ctx context.Context, reg UserRegistration) (*users.User, error) {
	if blank(reg.Username, reg.Email, reg.Password, reg.FullName) {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(reg.Email) {
		return nil, ErrEmailInvalid
	}
	if err := ValidatePassword(reg.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, reg.Email, reg.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.Create(ctx, users.NewUser{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FullName:     reg.FullName,
		Phone:        reg.Phone,
		Role:         users.RoleUser,
		Status:       users.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	return &users.User{
		ID:       id,
		Username: reg.Username,
		Email:    reg.Email,
		FullName: reg.FullName,
		Phone:    reg.Phone,
		Role:     users.RoleUser,
		Status:   users.StatusPending,
	}, nil
}

// ensureProfileColumns upgrades older schemas once per process.
func (s *Service) ensureProfileColumns(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.columnsReady {
		return nil
	}
	if err := schema.EnsureAuthorProfileColumns(ctx, s.db); err != nil {
		return err
	}
	s.columnsReady = true
	return nil
}

// RegisterAuthor creates a pending author account and profile.
func (s *Service) RegisterAuthor(ctx context.Context, reg AuthorRegistration) (userID, authorID int64, err error) {
	if err := s.ensureProfileColumns(ctx); err != nil {
		return 0, 0, err
	}

	if blank(reg.FullName, reg.Email, reg.StaffID, reg.Password, reg.Faculty, reg.Department) {
		return 0, 0, ErrMissingFields
	}
	if !emailPattern.MatchString(reg.Email) {
		return 0, 0, ErrEmailInvalid
	}
	if err := ValidatePassword(reg.Password); err != nil {
		return 0, 0, err
	}

	taken, err := s.users.EmailTaken(ctx, reg.Email)
	if err != nil {
		return 0, 0, err
	}
	if taken {
		return 0, 0, ErrEmailTaken
	}

	taken, err = s.authors.StaffIDTaken(ctx, reg.StaffID)
	if err != nil {
		return 0, 0, err
	}
	if taken {
		return 0, 0, ErrStaffIDTaken
	}

	hash, err := s.hash(reg.Password)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.authors.Register(ctx, authors.Registration{
		FullName:         reg.FullName,
		Email:            reg.Email,
		Phone:            reg.Phone,
		PasswordHash:     hash,
		ProfileImage:     reg.ProfileImage,
		StaffID:          reg.StaffID,
		Faculty:          reg.Faculty,
		Department:       reg.Department,
		Qualifications:   reg.Qualifications,
		Biography:        reg.Biography,
		AreasOfExpertise: reg.AreasOfExpertise,
		OrcidID:          reg.OrcidID,
		GoogleScholarID:  reg.GoogleScholarID,
		LinkedinURL:      reg.LinkedinURL,
	})
}

// Login verifies credentials for a portal and records the sign-in.
//
// Unknown emails, wrong passwords and, on the admin portal, non-staff
// accounts all return ErrInvalidCredentials. A known account with a role
// the author portal does not admit returns ErrAuthorRoleRequired, and an
// account that is not active returns ErrAccountInactive.
func (s *Service) Login(ctx context.Context, portal Portal, email, password string) (*LoginResult, error) {
	if blank(email, password) {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	roles := portalRoles[portal]
	if portal == PortalAdmin && !user.HasRole(roles...) {
		return nil, ErrInvalidCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if roles != nil && !user.HasRole(roles...) {
		return nil, ErrAuthorRoleRequired
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	result := &LoginResult{User: user}
	if portal == PortalAuthor {
		profile, err := s.authors.ProfileByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		result.AuthorProfile = profile
	}

	if err := s.users.MarkLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserByID loads an account.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*users.User, error) {
	return s.users.GetByID(ctx, id)
}

// HashPassword hashes a password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	return s.hash(password)
}

// EnsureAdmin creates an active admin account unless the email is already
// registered. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	if blank(email, password) {
		return false, fmt.Errorf("admin email and password are required")
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}

	username, _, _ := strings.Cut(email, "@")
	if fullName == "" {
		fullName = "Administrator"
	}
	_, err = s.users.Create(ctx, users.NewUser{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		FullName:      fullName,
		Role:          users.RoleAdmin,
		Status:        users.StatusActive,
		EmailVerified: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
