package service

import (
	"context"
	"errors"
	"testing"

	"calhaforte/internal/config"
	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Active = active
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func buildAuthSvc() (AuthService, *stubUserRepo) {
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	svc, _ := buildAuthSvc()
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria", Password: "s3cret-pass", Name: "Maria", Role: model.RoleCustomer,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, model.RoleCustomer, claims.Role)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc, _ := buildAuthSvc()
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria", Password: "s3cret-pass", Name: "Maria", Role: model.RoleCustomer,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RequiresRefreshTokenAndActiveUser(t *testing.T) {
	svc, repo := buildAuthSvc()
	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria", Password: "s3cret-pass", Name: "Maria", Role: model.RoleStaff,
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret-pass"})
	require.NoError(t, err)

	// An access token is not accepted on the refresh endpoint.
	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// A deactivated account cannot refresh.
	id := uuid.MustParse(created.ID)
	require.NoError(t, repo.SetActive(context.Background(), id, false))
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateUser_ChangesRoleAndPassword(t *testing.T) {
	svc, _ := buildAuthSvc()
	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "joao", Password: "initial-pass", Name: "Joao", Role: model.RoleStaff,
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	role := model.RoleAdmin
	pass := "rotated-pass"
	updated, err := svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{Role: &role, Password: &pass})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "joao", Password: "rotated-pass"})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "joao", Password: "initial-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
