// Импорт каталога и пользователей из CSV-файлов.
//
// Ожидаемые форматы строк:
//
//	categories.csv: name,logo_url
//	channels.csv:   name,url,logo_url,format,category,country
//	users.csv:      name,email,password,role
//
// Категории каналов создаются по имени, если их ещё нет. Пустые строки
// пропускаются. Пароли пользователей хэшируются bcrypt.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pleytv/iptv-backend/internal/config"
	"github.com/pleytv/iptv-backend/internal/errs"
	"github.com/pleytv/iptv-backend/internal/lib/password"
	"github.com/pleytv/iptv-backend/internal/lib/sl"
	"github.com/pleytv/iptv-backend/internal/models"
	authservice "github.com/pleytv/iptv-backend/internal/services/auth"
	"github.com/pleytv/iptv-backend/internal/storage/repository"
)

func main() {
	categoriesPath := flag.String("categories", "", "путь к categories.csv")
	channelsPath := flag.String("channels", "", "путь к channels.csv")
	usersPath := flag.String("users", "", "путь к users.csv")
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	ctx := context.Background()

	if *categoriesPath != "" {
		if err := importCategories(ctx, db, logger, *categoriesPath); err != nil {
			logger.Error("categories import failed", sl.Err(err))
			os.Exit(1)
		}
	}
	if *channelsPath != "" {
		if err := importChannels(ctx, db, logger, *channelsPath); err != nil {
			logger.Error("channels import failed", sl.Err(err))
			os.Exit(1)
		}
	}
	if *usersPath != "" {
		if err := importUsers(ctx, db, logger, *usersPath); err != nil {
			logger.Error("users import failed", sl.Err(err))
			os.Exit(1)
		}
	}
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func importCategories(ctx context.Context, db *repository.Storage, logger *slog.Logger, path string) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}

	var created int
	for _, row := range rows {
		name := field(row, 0)
		if name == "" {
			continue
		}
		if _, found, err := db.FindCategoryByName(ctx, name); err != nil {
			return err
		} else if found {
			continue
		}
		if _, err := db.CreateCategory(ctx, name, field(row, 1)); err != nil {
			return err
		}
		created++
	}
	logger.Info("categories imported", slog.Int("created", created), slog.Int("rows", len(rows)))
	return nil
}

func importChannels(ctx context.Context, db *repository.Storage, logger *slog.Logger, path string) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}

	var created int
	for _, row := range rows {
		name, url := field(row, 0), field(row, 1)
		if name == "" || url == "" {
			logger.Warn("skipping channel row without name or url")
			continue
		}

		ch := models.Channel{
			Name:    name,
			URL:     url,
			LogoURL: field(row, 2),
			Format:  strings.ToLower(field(row, 3)),
			Active:  true,
			Country: field(row, 5),
		}
		if ch.Format == "" {
			ch.Format = models.FormatM3U8
		}

		if categoryName := field(row, 4); categoryName != "" {
			id, found, err := db.FindCategoryByName(ctx, categoryName)
			if err != nil {
				return err
			}
			if !found {
				id, err = db.CreateCategory(ctx, categoryName, "")
				if err != nil {
					return err
				}
			}
			ch.CategoryID = &id
		}

		if _, err := db.CreateChannel(ctx, ch); err != nil {
			return err
		}
		created++
	}
	logger.Info("channels imported", slog.Int("created", created), slog.Int("rows", len(rows)))
	return nil
}

func importUsers(ctx context.Context, db *repository.Storage, logger *slog.Logger, path string) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}

	var created int
	for _, row := range rows {
		email, pass := field(row, 1), field(row, 2)
		if email == "" || pass == "" {
			logger.Warn("skipping user row without email or password")
			continue
		}

		hash, err := password.GetHash(pass)
		if err != nil {
			return err
		}
		_, err = db.CreateUser(ctx, models.User{
			Name:         field(row, 0),
			Email:        strings.ToLower(email),
			PasswordHash: hash,
			Role:         authservice.NormalizeRole(field(row, 3)),
		})
		if errors.Is(err, errs.ErrAlreadyExists) {
			logger.Warn("user already exists, skipping", slog.String("email", email))
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	logger.Info("users imported", slog.Int("created", created), slog.Int("rows", len(rows)))
	return nil
}
