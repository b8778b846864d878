package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/models"
)

// CreateUser сохраняет нового пользователя в базу данных и возвращает его ID.
// Возвращает errs.ErrAlreadyExists, если email уже занят.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (name, email, password_hash, role, birth_date, country, photo_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.BirthDate,
		user.Country, user.PhotoURL).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, password_hash, role, birth_date, country, photo_url, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, password_hash, role, birth_date, country, photo_url, created_at
			  FROM users
			  WHERE id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, id), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var birthDate sql.NullTime
	var country, photoURL sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &birthDate, &country, &photoURL, &u.CreatedAt); err != nil {
		return nil, wrapNotFound(op, err)
	}
	if birthDate.Valid {
		u.BirthDate = &birthDate.Time
	}
	u.Country = country.String
	u.PhotoURL = photoURL.String
	return u, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, password_hash, role, birth_date, country, photo_url, created_at
			  FROM users
			  ORDER BY id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u := models.User{}
		var birthDate sql.NullTime
		var country, photoURL sql.NullString
		if err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Role, &birthDate, &country, &photoURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if birthDate.Valid {
			u.BirthDate = &birthDate.Time
		}
		u.Country = country.String
		u.PhotoURL = photoURL.String
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser обновляет имя, email и роль пользователя (административная операция).
func (s *Storage) UpdateUser(ctx context.Context, id int64, name, email, role string) error {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET name = $1, email = $2, role = $3 WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, name, email, role, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, errs.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// UpdateProfile обновляет профиль пользователя от его собственного имени.
func (s *Storage) UpdateProfile(ctx context.Context, id int64, name, email, country string, birthDate *time.Time) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET name = $1, email = $2, country = $3, birth_date = $4 WHERE id = $5`
	res, err := s.DB.ExecContext(ctx, query, name, email, country, birthDate, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, errs.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// UpdatePhotoURL сохраняет ссылку на новое фото профиля.
func (s *Storage) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) error {
	const op = "storage.UpdatePhotoURL"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET photo_url = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, photoURL, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// DeleteUser удаляет пользователя; подписки и платежи удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// requireAffected превращает отсутствие затронутых строк в errs.ErrNotFound.
func (s *Storage) requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
