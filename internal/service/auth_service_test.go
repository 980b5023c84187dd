package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joey603/sidour-avoda/internal/config"
	"github.com/joey603/sidour-avoda/internal/domain"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	for _, user := range m.users {
		if (user.Email != "" && user.Email == login) || (user.Phone != "" && user.Phone == login) {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
}

func TestRegisterDirectorGetsCode(t *testing.T) {
	svc := NewAuthService(testConfig(), newMockUserRepo())

	user, token, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Dana Director",
		Email:    "dana@example.com",
		Password: "supersafe",
		Role:     domain.RoleDirector,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, user.DirectorCode)
	assert.Len(t, *user.DirectorCode, 8)
}

func TestRegisterWorkerHasNoCode(t *testing.T) {
	svc := NewAuthService(testConfig(), newMockUserRepo())

	user, _, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Wally Worker",
		Phone:    "0501234567",
		Password: "supersafe",
		Role:     domain.RoleWorker,
	})
	require.NoError(t, err)
	assert.Nil(t, user.DirectorCode)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(testConfig(), newMockUserRepo())

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"unknown role", RegisterInput{FullName: "X", Email: "x@y.z", Password: "p", Role: "admin"}},
		{"missing identifier", RegisterInput{FullName: "X", Password: "p", Role: domain.RoleWorker}},
		{"missing name", RegisterInput{Email: "x@y.z", Password: "p", Role: domain.RoleWorker}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Register(context.Background(), tc.in)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(testConfig(), repo)

	in := RegisterInput{FullName: "Dana", Email: "dana@example.com", Password: "pw123456", Role: domain.RoleDirector}
	_, _, _, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLoginByEmailAndPhone(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(testConfig(), repo)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Wally",
		Email:    "wally@example.com",
		Phone:    "0501234567",
		Password: "supersafe",
		Role:     domain.RoleWorker,
	})
	require.NoError(t, err)

	for _, login := range []string{"wally@example.com", "0501234567"} {
		user, token, _, err := svc.Login(context.Background(), login, "supersafe")
		require.NoError(t, err, login)
		assert.NotEmpty(t, token)
		assert.Equal(t, domain.RoleWorker, user.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(testConfig(), repo)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Wally",
		Email:    "wally@example.com",
		Password: "supersafe",
		Role:     domain.RoleWorker,
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "wally@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "supersafe")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLoginTokenCarriesRole(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(testConfig(), repo)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Dana",
		Email:    "dana@example.com",
		Password: "supersafe",
		Role:     domain.RoleDirector,
	})
	require.NoError(t, err)

	_, token, _, err := svc.Login(context.Background(), "dana@example.com", "supersafe")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDirector, claims.Role)
}
