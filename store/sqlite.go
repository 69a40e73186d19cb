package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDirectory is a local user directory with the same lookup contract as
// the provider's admin API. It backs the relay when DIRECTORY_DRIVER=sqlite.
type SQLiteDirectory struct {
	db *sql.DB
}

var ErrUserExists = errors.New("user already exists")

func NewSQLiteDirectory(path string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY NOT NULL CHECK(id <> ''),
		email TEXT UNIQUE,
		phone TEXT UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		CHECK(coalesce(email, '') <> '' OR coalesce(phone, '') <> '')
	);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDirectory{db: db}, nil
}

// AddUser inserts u. Phones are stored without the leading '+'. An empty ID
// gets a fresh UUID.
func (s *SQLiteDirectory) AddUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Phone = utils.NormalizePhone(u.Phone)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, phone, full_name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, nullable(u.Email), nullable(u.Phone), u.FullName, u.CreatedAt)
	if err != nil {
		// Handle unique constraint violation gracefully
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	logging.DebugLog("store.AddUser [%s]", utils.HashIdentifier(u.ID))
	return u, nil
}

// ListUsersByPhone returns users whose phone equals phone, with or without '+'.
func (s *SQLiteDirectory) ListUsersByPhone(ctx context.Context, phone string) ([]models.User, error) {
	p := utils.NormalizePhone(phone)
	if p == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coalesce(email, ''), coalesce(phone, ''), full_name, created_at
		FROM users
		WHERE phone = ?`, p)
	if err != nil {
		logging.ErrorLog("store.ListUsersByPhone query error: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Phone, &u.FullName, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUserByEmail looks a user up by email address.
func (s *SQLiteDirectory) GetUserByEmail(ctx context.Context, email string) (models.User, bool) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, coalesce(email, ''), coalesce(phone, ''), full_name, created_at
		FROM users
		WHERE email = ?`, email).Scan(&u.ID, &u.Email, &u.Phone, &u.FullName, &u.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.ErrorLog("store.GetUserByEmail error: %v", err)
		}
		return models.User{}, false
	}
	return u, true
}

func (s *SQLiteDirectory) Close() error {
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
