package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pleytv/iptv-backend/internal/models"
)

const channelColumns = `c.id, c.name, c.url, c.logo_url, c.format, c.active,
			      c.category_id, c.country, cat.name`

func scanChannel(rows interface{ Scan(...any) error }) (*models.Channel, error) {
	ch := &models.Channel{}
	var logoURL, country, categoryName sql.NullString
	var categoryID sql.NullInt64
	if err := rows.Scan(&ch.ID, &ch.Name, &ch.URL, &logoURL, &ch.Format,
		&ch.Active, &categoryID, &country, &categoryName); err != nil {
		return nil, err
	}
	ch.LogoURL = logoURL.String
	ch.Country = country.String
	ch.CategoryName = categoryName.String
	if categoryID.Valid {
		ch.CategoryID = &categoryID.Int64
	}
	return ch, nil
}

// ListChannels возвращает все каналы с названием категории.
func (s *Storage) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	const op = "storage.ListChannels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + channelColumns + `
			  FROM channels c
			  LEFT JOIN categories cat ON c.category_id = cat.id
			  ORDER BY c.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListChannelsByCategory возвращает каналы одной категории.
func (s *Storage) ListChannelsByCategory(ctx context.Context, categoryID int64) ([]*models.Channel, error) {
	const op = "storage.ListChannelsByCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + channelColumns + `
			  FROM channels c
			  LEFT JOIN categories cat ON c.category_id = cat.id
			  WHERE c.category_id = $1
			  ORDER BY c.id`
	rows, err := s.DB.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetChannel возвращает канал по ID с названием категории.
func (s *Storage) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	const op = "storage.GetChannel"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + channelColumns + `
			  FROM channels c
			  LEFT JOIN categories cat ON c.category_id = cat.id
			  WHERE c.id = $1`
	ch, err := scanChannel(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(op, err)
	}
	return ch, nil
}

// CreateChannel добавляет канал и возвращает его ID.
func (s *Storage) CreateChannel(ctx context.Context, ch models.Channel) (int64, error) {
	const op = "storage.CreateChannel"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO channels (name, url, logo_url, format, active, category_id, country)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, ch.Name, ch.URL, ch.LogoURL,
		ch.Format, ch.Active, ch.CategoryID, ch.Country).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateChannel полностью обновляет канал по ID.
func (s *Storage) UpdateChannel(ctx context.Context, id int64, ch models.Channel) error {
	const op = "storage.UpdateChannel"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE channels
			  SET name = $1, url = $2, logo_url = $3, format = $4, active = $5,
			      category_id = $6, country = $7
			  WHERE id = $8`
	res, err := s.DB.ExecContext(ctx, query, ch.Name, ch.URL, ch.LogoURL,
		ch.Format, ch.Active, ch.CategoryID, ch.Country, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// DeleteChannel удаляет канал по ID.
func (s *Storage) DeleteChannel(ctx context.Context, id int64) error {
	const op = "storage.DeleteChannel"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.requireAffected(res, op)
}

// GetActiveChannelURL возвращает URL потока активного канала.
func (s *Storage) GetActiveChannelURL(ctx context.Context, id int64) (string, error) {
	const op = "storage.GetActiveChannelURL"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var url string
	query := `SELECT url FROM channels WHERE id = $1 AND active = TRUE`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&url); err != nil {
		return "", wrapNotFound(op, err)
	}
	return url, nil
}

// ListCategories возвращает все категории.
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.ListCategories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, logo_url FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Category
	for rows.Next() {
		var c models.Category
		var logoURL sql.NullString
		if err = rows.Scan(&c.ID, &c.Name, &logoURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c.LogoURL = logoURL.String
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCategory возвращает категорию по ID.
func (s *Storage) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	const op = "storage.GetCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var c models.Category
	var logoURL sql.NullString
	query := `SELECT id, name, logo_url FROM categories WHERE id = $1`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &logoURL); err != nil {
		return nil, wrapNotFound(op, err)
	}
	c.LogoURL = logoURL.String
	return &c, nil
}

// FindCategoryByName возвращает ID категории по имени; found=false, если её нет.
func (s *Storage) FindCategoryByName(ctx context.Context, name string) (int64, bool, error) {
	const op = "storage.FindCategoryByName"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return id, true, nil
}

// CreateCategory добавляет категорию и возвращает её ID.
func (s *Storage) CreateCategory(ctx context.Context, name, logoURL string) (int64, error) {
	const op = "storage.CreateCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO categories (name, logo_url) VALUES ($1, $2) RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, name, nullableString(logoURL)).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListAds возвращает рекламные ресурсы указанного типа.
func (s *Storage) ListAds(ctx context.Context, kind string) ([]*models.Ad, error) {
	const op = "storage.ListAds"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, kind, image_url FROM ads WHERE kind = $1 ORDER BY id`, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Ad
	for rows.Next() {
		var a models.Ad
		if err = rows.Scan(&a.ID, &a.Kind, &a.ImageURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
