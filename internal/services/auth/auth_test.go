package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/lib/jwt"
	"github.com/pleytv/iptv-backend/internal/lib/password"
	"github.com/pleytv/iptv-backend/internal/models"
	"github.com/pleytv/iptv-backend/internal/services/auth"
)

// Мок для Repository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUser(ctx context.Context, id int64, name, email, role string) error {
	args := m.Called(ctx, id, name, email, role)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, id int64, name, email, country string, birthDate *time.Time) error {
	args := m.Called(ctx, id, name, email, country, birthDate)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *UserRepoMock) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	args := m.Called(ctx, id, photoURL)
	return args.Error(0)
}

func (m *UserRepoMock) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newService(repo *UserRepoMock) *auth.Service {
	maker := jwt.NewMaker("test-secret", time.Hour, 10*time.Minute)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.New(repo, maker, log)
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin", models.RoleAdmin},
		{"  Admin ", models.RoleAdmin},
		{"client", models.RoleClient},
		{"cliente", models.RoleClient},
		{"CLIENTE", models.RoleClient},
		{"", models.RoleClient},
		{"manager", models.RoleClient},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.NormalizeRole(tt.in))
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		req        auth.RegisterRequest
		setupMocks func(r *UserRepoMock)
		wantRole   string
		wantErr    error
	}{
		{
			name: "successful registration",
			req: auth.RegisterRequest{
				Name:      "Ana Torres",
				Email:     "Ana@Example.com",
				Password:  "secret123",
				Role:      "cliente",
				BirthDate: "15/04/1990",
				Country:   "MX",
			},
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "ana@example.com" &&
						u.Role == models.RoleClient &&
						u.PasswordHash != "" &&
						u.BirthDate != nil
				})).Return(int64(7), nil).Once()
			},
			wantRole: models.RoleClient,
		},
		{
			name: "admin role is downgraded on public registration",
			req: auth.RegisterRequest{
				Name:     "Ana",
				Email:    "ana@example.com",
				Password: "secret123",
				Role:     "admin",
			},
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Role == models.RoleClient
				})).Return(int64(8), nil).Once()
			},
			wantRole: models.RoleClient,
		},
		{
			name: "duplicate email",
			req: auth.RegisterRequest{
				Name:     "Ana",
				Email:    "ana@example.com",
				Password: "secret123",
			},
			setupMocks: func(r *UserRepoMock) {
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return(int64(0), errs.ErrAlreadyExists).Once()
			},
			wantErr: errs.ErrAlreadyExists,
		},
		{
			name: "invalid birth date format",
			req: auth.RegisterRequest{
				Name:      "Ana",
				Email:     "ana@example.com",
				Password:  "secret123",
				BirthDate: "1990-04-15",
			},
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    errs.ErrInvalidInput,
		},
		{
			name: "unknown country",
			req: auth.RegisterRequest{
				Name:     "Ana",
				Email:    "ana@example.com",
				Password: "secret123",
				Country:  "XZ",
			},
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    errs.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := newService(repo)

			token, user, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.wantRole, user.Role)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleAdmin
	})).Return(int64(1), nil).Once()

	svc := newService(repo)
	token, user, err := svc.RegisterAdmin(context.Background(), auth.RegisterRequest{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, user.Role)
	repo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:           5,
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: hashedPassword,
		Role:         models.RoleClient,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "ana@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(testUser, nil).Once()
			},
		},
		{
			name:     "email is normalized before lookup",
			email:    "  Ana@Example.COM ",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(testUser, nil).Once()
			},
		},
		{
			name:     "unknown email maps to invalid credentials",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "nobody@example.com").
					Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "ana@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(testUser, nil).Once()
			},
			wantErr: errs.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := newService(repo)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, testUser.ID, user.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByEmail", mock.Anything, "ana@example.com").
		Return(nil, errors.New("connection refused")).Once()

	svc := newService(repo)
	_, _, err := svc.Login(context.Background(), "ana@example.com", "whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrInvalidCredentials)
	repo.AssertExpectations(t)
}

func TestAuthService_ChangePassword(t *testing.T) {
	hashedPassword, err := password.GetHash("oldpassword")
	require.NoError(t, err)

	user := &models.User{ID: 5, PasswordHash: hashedPassword}

	t.Run("wrong current password", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, int64(5)).Return(user, nil).Once()

		svc := newService(repo)
		err := svc.ChangePassword(context.Background(), 5, "notmypassword", "newpassword")
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
		repo.AssertExpectations(t)
	})

	t.Run("successful change stores new hash", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, int64(5)).Return(user, nil).Once()
		repo.On("UpdatePassword", mock.Anything, int64(5), mock.MatchedBy(func(hash string) bool {
			return hash != "" && hash != hashedPassword
		})).Return(nil).Once()

		svc := newService(repo)
		err := svc.ChangePassword(context.Background(), 5, "oldpassword", "newpassword")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestAuthService_DeleteUser(t *testing.T) {
	t.Run("cannot delete own account", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := newService(repo)

		err := svc.DeleteUser(context.Background(), 5, 5)
		require.ErrorIs(t, err, errs.ErrInvalidInput)
		repo.AssertExpectations(t)
	})

	t.Run("deletes another user", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("DeleteUser", mock.Anything, int64(9)).Return(nil).Once()

		svc := newService(repo)
		err := svc.DeleteUser(context.Background(), 9, 5)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestAuthService_UpdateUser_NormalizesRole(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("UpdateUser", mock.Anything, int64(3), "Ana", "ana@example.com", models.RoleClient).
		Return(nil).Once()

	svc := newService(repo)
	err := svc.UpdateUser(context.Background(), 3, " Ana ", " ANA@example.com ", "cliente")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
