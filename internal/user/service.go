package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/repo"
)

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher hashes with bcrypt at Cost, or bcrypt.DefaultCost when zero.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store persists users. GetByEmail/GetByID return repo.ErrNotFound for
// missing rows; Create/Update return *apperror.DuplicateKeyError for a taken email.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID int64, name string) (string, error)
}

// IDSource allocates new user ids.
type IDSource interface {
	Next() int64
}

// UserService orchestrates registration, login and profile updates.
type UserService struct {
	store  Store
	hasher PasswordHasher
	tokens TokenIssuer
	ids    IDSource
}

func NewUserService(store Store, hasher PasswordHasher, tokens TokenIssuer, ids IDSource) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{store: store, hasher: hasher, tokens: tokens, ids: ids}
}

var (
	ErrMissingCredentials = apperror.Unauthenticated("Please provide email and password")
	ErrBadCredentials     = apperror.Unauthenticated("Invalid Credentials")
	ErrIncompleteProfile  = apperror.BadRequest("Please provide all the fields value")
)

const (
	minNameLen     = 3
	maxNameLen     = 50
	minPasswordLen = 3
	maxProfileLen  = 20
)

var emailPattern = regexp.MustCompile(`^[^\s@<>()\[\]\\,;:"]+@([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	LastName string `json:"lastName"`
	Location string `json:"location"`
}

// ProfileInput is the updateUser payload.
type ProfileInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	LastName string `json:"lastName"`
	Location string `json:"location"`
}

// Session is a user together with a freshly issued token.
type Session struct {
	User  *entity.User
	Token string
}

// Register validates in, stores the user with a hashed password and issues a token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		LastName: withDefault(in.LastName, entity.DefaultLastName),
		Location: withDefault(in.Location, entity.DefaultLocation),
	}
	verr := &apperror.ValidationError{}
	validateProfile(verr, u)
	switch {
	case in.Password == "":
		verr.Add("Please provide password")
	case utf8.RuneCountInString(in.Password) < minPasswordLen:
		verr.Add(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.ID = s.ids.Next()
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return s.session(u)
}

// UpdateProfile replaces the profile fields of the given user. All fields are required.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*Session, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.LastName) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, ErrIncompleteProfile
	}
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("No user with id %d", userID))
		}
		return nil, err
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Email = normalizeEmail(in.Email)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Location = strings.TrimSpace(in.Location)

	verr := &apperror.ValidationError{}
	validateProfile(verr, u)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *UserService) session(u *entity.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: u, Token: token}, nil
}

func validateProfile(verr *apperror.ValidationError, u *entity.User) {
	switch n := utf8.RuneCountInString(u.Name); {
	case n == 0:
		verr.Add("Please provide name")
	case n < minNameLen || n > maxNameLen:
		verr.Add(fmt.Sprintf("Name must be between %d and %d characters", minNameLen, maxNameLen))
	}
	switch {
	case u.Email == "":
		verr.Add("Please provide email")
	case !emailPattern.MatchString(u.Email):
		verr.Add("Please provide valid email")
	}
	if utf8.RuneCountInString(u.LastName) > maxProfileLen {
		verr.Add(fmt.Sprintf("Last name must be at most %d characters", maxProfileLen))
	}
	if utf8.RuneCountInString(u.Location) > maxProfileLen {
		verr.Add(fmt.Sprintf("Location must be at most %d characters", maxProfileLen))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func withDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
