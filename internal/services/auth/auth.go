// Package auth содержит бизнес-логику регистрации, входа и управления
// профилем и учётными записями пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/lib/dates"
	"github.com/pleytv/iptv-backend/internal/lib/jwt"
	"github.com/pleytv/iptv-backend/internal/lib/password"
	"github.com/pleytv/iptv-backend/internal/models"
)

// Repository определяет методы для работы с пользователями в хранилище.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, name, email, role string) error
	UpdateProfile(ctx context.Context, id int64, name, email, country string, birthDate *time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error
	DeleteUser(ctx context.Context, id int64) error
}

// Service реализует бизнес-логику аутентификации и профилей.
type Service struct {
	repo  Repository
	maker jwt.Maker
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// RegisterRequest данные для регистрации нового пользователя.
type RegisterRequest struct {
	Name      string
	Email     string
	Password  string
	Role      string
	BirthDate string
	Country   string
}

// NormalizeRole приводит роль к каноническому виду: пробелы и регистр
// игнорируются, испанский вариант cliente считается синонимом client.
// Неизвестная роль становится client.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleAdmin:
		return models.RoleAdmin
	case models.RoleClient, models.RoleClientAlias:
		return models.RoleClient
	default:
		return models.RoleClient
	}
}

// Register создает пользователя с ролью client и возвращает токен вместе
// с созданным пользователем. Дубликат email — errs.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, *models.User, error) {
	const op = "services.auth.Register"

	user, err := s.buildUser(op, req)
	if err != nil {
		return "", nil, err
	}
	user.Role = NormalizeRole(req.Role)
	if user.Role == models.RoleAdmin {
		// Публичная регистрация не выдаёт административную роль.
		user.Role = models.RoleClient
	}

	return s.create(ctx, op, user)
}

// RegisterAdmin создает пользователя с ролью admin. Доступно только
// администраторам, проверка роли выполняется на уровне маршрутов.
func (s *Service) RegisterAdmin(ctx context.Context, req RegisterRequest) (string, *models.User, error) {
	const op = "services.auth.RegisterAdmin"

	user, err := s.buildUser(op, req)
	if err != nil {
		return "", nil, err
	}
	user.Role = models.RoleAdmin

	return s.create(ctx, op, user)
}

func (s *Service) buildUser(op string, req RegisterRequest) (models.User, error) {
	var user models.User

	if req.BirthDate != "" {
		birthDate, err := dates.ParseBirthDate(req.BirthDate)
		if err != nil {
			return user, fmt.Errorf("%s: %w: %v", op, errs.ErrInvalidInput, err)
		}
		user.BirthDate = &birthDate
	}
	if req.Country != "" && !dates.ValidCountry(req.Country) {
		return user, fmt.Errorf("%s: %w: country", op, errs.ErrInvalidInput)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.PasswordHash = hash
	user.Country = strings.TrimSpace(req.Country)
	return user, nil
}

func (s *Service) create(ctx context.Context, op string, user models.User) (string, *models.User, error) {
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	s.log.Info("user registered",
		slog.Int64("id", id),
		slog.String("role", user.Role))

	token, err := s.token(&user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, &user, nil
}

// Login проверяет пару email/пароль и возвращает токен с пользователем.
// Несовпадение — errs.ErrInvalidCredentials без уточнения причины.
func (s *Service) Login(ctx context.Context, email, pass string) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, pass); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}

	token, err := s.token(user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.Int64("id", user.ID))
	return token, user, nil
}

func (s *Service) token(user *models.User) (string, error) {
	var birthDate string
	if user.BirthDate != nil {
		birthDate = dates.FormatBirthDate(*user.BirthDate)
	}
	return s.maker.GenerateToken(jwt.Claims{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Country:   user.Country,
		BirthDate: birthDate,
		PhotoURL:  user.PhotoURL,
	})
}

// Me возвращает профиль пользователя по ID из токена.
func (s *Service) Me(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ProfileUpdate данные для обновления собственного профиля.
type ProfileUpdate struct {
	Name      string
	Email     string
	Country   string
	BirthDate string
}

// UpdateProfile обновляет профиль пользователя и возвращает свежий токен,
// чтобы клейм-набор соответствовал новым данным.
func (s *Service) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (string, *models.User, error) {
	const op = "services.auth.UpdateProfile"

	var birthDate *time.Time
	if upd.BirthDate != "" {
		parsed, err := dates.ParseBirthDate(upd.BirthDate)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w: %v", op, errs.ErrInvalidInput, err)
		}
		birthDate = &parsed
	}
	if upd.Country != "" && !dates.ValidCountry(upd.Country) {
		return "", nil, fmt.Errorf("%s: %w: country", op, errs.ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(upd.Email))
	if err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(upd.Name), email,
		strings.TrimSpace(upd.Country), birthDate); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.token(user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ChangePassword меняет пароль после проверки текущего.
// Неверный текущий пароль — errs.ErrInvalidCredentials.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	const op = "services.auth.ChangePassword"

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, current); err != nil {
		return fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}

	hash, err := password.GetHash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password changed", slog.Int64("id", id))
	return nil
}

// UpdatePhoto сохраняет ссылку на новое фото профиля и возвращает свежий токен.
func (s *Service) UpdatePhoto(ctx context.Context, id int64, photoURL string) (string, *models.User, error) {
	const op = "services.auth.UpdatePhoto"

	if err := s.repo.UpdatePhotoURL(ctx, id, photoURL); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.token(user)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUser обновляет имя, email и роль пользователя. Роль нормализуется.
func (s *Service) UpdateUser(ctx context.Context, id int64, name, email, role string) error {
	return s.repo.UpdateUser(ctx, id, strings.TrimSpace(name),
		strings.ToLower(strings.TrimSpace(email)), NormalizeRole(role))
}

// DeleteUser удаляет пользователя. Администратор не может удалить себя.
func (s *Service) DeleteUser(ctx context.Context, id, callerID int64) error {
	const op = "services.auth.DeleteUser"

	if id == callerID {
		return fmt.Errorf("%s: %w: cannot delete own account", op, errs.ErrInvalidInput)
	}
	return s.repo.DeleteUser(ctx, id)
}
