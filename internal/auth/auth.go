// Package auth issues and verifies the bearer tokens that carry the request
// principal, and owns password hashing for account signup.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/beemanhoney/shop/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	// Deliberately indistinguishable between the two cases.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for malformed, mis-signed or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrPasswordTooShort is returned at signup for passwords under 6 characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrInvalidEmail is returned at signup for obviously malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")
)

// SignupRequest carries the input for account creation.
type SignupRequest struct {
	Email    string
	Password string
	FullName string
}

// Service implements signup, login and token verification over HS256 JWTs.
// The token subject is the account email; role is carried as a claim and
// re-read from storage on every authenticate so revocation of the admin role
// takes effect without waiting for token expiry.
type Service struct {
	users  user.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(users user.Repository, secret string, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Signup registers a new customer account.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 6 {
		return nil, ErrPasswordTooShort
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashed,
		FullName:       req.FullName,
		Role:           user.RoleCustomer,
		CreatedAt:      s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login verifies the credentials and mints a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "look up user")
	}
	if !CheckPassword(u.HashedPassword, password) {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":  u.Email,
		"role": string(u.Role),
		"exp":  s.now().Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Authenticate verifies a bearer token and resolves the current principal.
func (s *Service) Authenticate(ctx context.Context, token string) (user.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return user.Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return user.Principal{}, ErrInvalidToken
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return user.Principal{}, ErrInvalidToken
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Principal{}, ErrInvalidToken
		}
		return user.Principal{}, errors.Wrap(err, "look up user")
	}
	return u.Principal(), nil
}
