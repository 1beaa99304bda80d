package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beemanhoney/shop/internal/domain/user"
)

type mockUserRepo struct {
	byEmail map[string]*user.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*user.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService(repo *mockUserRepo) *Service {
	return NewService(repo, "test-secret", time.Hour)
}

func TestSignup(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	u, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "Bee@Example.com",
		Password: "hunter22",
		FullName: "Bee Keeper",
	})

	require.NoError(t, err)
	assert.Equal(t, "bee@example.com", u.Email, "email is normalized")
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.NotEqual(t, "hunter22", u.HashedPassword)
	assert.True(t, CheckPassword(u.HashedPassword, "hunter22"))
}

func TestSignup_Validation(t *testing.T) {
	svc := newTestService(newMockUserRepo())

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "no-at-sign", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestLoginAndAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	created, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "bee@example.com",
		Password: "hunter22",
		FullName: "Bee Keeper",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "bee@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
	assert.Equal(t, "bee@example.com", p.Email)
	assert.Equal(t, user.RoleCustomer, p.Role)
	assert.False(t, p.IsAdmin())
}

func TestLogin_WrongCredentials(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "bee@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Well-formed token signed with a different secret.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "bee@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), forged)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "hunter22"})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "bee@example.com", "hunter22")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "bee@example.com", Password: "hunter22"})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "bee@example.com", "hunter22")
	require.NoError(t, err)

	delete(repo.byEmail, "bee@example.com")

	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
