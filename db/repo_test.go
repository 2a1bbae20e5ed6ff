package db

import (
	"context"
	"path/filepath"
	"testing"

	"Tcp_postgres_redis_library_system/config"
	"Tcp_postgres_redis_library_system/models"

	"github.com/stretchr/testify/require"
)

// newTestRepo opens a throwaway sqlite database. The immediate transaction
// mode in the DSN makes concurrent borrow attempts serialize the same way
// postgres row locks do.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	cfg := config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "library_test.db"),
	}
	conn, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepo(conn)
}

func seedUser(t *testing.T, r *Repo, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         models.RoleUser,
		FullName:     "Test " + username,
		Email:        username + "@example.com",
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedBook(t *testing.T, r *Repo, isbn string, quantity int) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:    "Book " + isbn,
		Author:   "Author",
		ISBN:     isbn,
		Quantity: quantity,
	}
	require.NoError(t, r.CreateBook(context.Background(), b))
	return b
}
