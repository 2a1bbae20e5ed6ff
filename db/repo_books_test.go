package db

import (
	"context"
	"testing"

	"Tcp_postgres_redis_library_system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestCreateBookDuplicateISBN(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	seedBook(t, r, "dup-isbn", 1)

	err := r.CreateBook(ctx, &models.Book{
		Title: "Other", Author: "Other", ISBN: "dup-isbn", Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateBookZeroQuantity(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "zoe")

	require.NoError(t, r.CreateBook(ctx, &models.Book{
		Title: "Out of Print", Author: "Nobody", ISBN: "zero-isbn", Quantity: 0,
	}))

	// zero must survive the insert, not fall back to a column default
	got, err := r.FindBookByISBN(ctx, "zero-isbn")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, 0, got.Available)

	_, err = r.Borrow(ctx, u.UserID, got.BookID, 7)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestUpdateBookQuantityRecomputesAvailable(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "harry")
	b := seedBook(t, r, "qty-isbn", 5)

	// borrow three copies
	for i := 0; i < 3; i++ {
		_, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
		require.NoError(t, err)
	}

	// quantity 2 < 3 borrowed: refused
	_, err := r.UpdateBook(ctx, b.BookID, BookUpdate{Quantity: intPtr(2)})
	assert.ErrorIs(t, err, ErrInvalidState)

	// quantity 3 leaves zero available
	got, err := r.UpdateBook(ctx, b.BookID, BookUpdate{Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 0, got.Available)
}

func TestUpdateBookFields(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	b := seedBook(t, r, "upd-isbn", 1)

	got, err := r.UpdateBook(ctx, b.BookID, BookUpdate{
		Title:    strPtr("Renamed"),
		Category: strPtr("fiction"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "fiction", got.Category)
	assert.Equal(t, b.ISBN, got.ISBN)
}

func TestDeleteBookBlockedByOpenTransaction(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "iris")
	b := seedBook(t, r, "del-isbn", 1)

	tr, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)

	assert.ErrorIs(t, r.DeleteBook(ctx, b.BookID), ErrConflict)

	_, err = r.Return(ctx, tr.TransactionID)
	require.NoError(t, err)
	require.NoError(t, r.DeleteBook(ctx, b.BookID))

	_, err = r.FindBookByID(ctx, b.BookID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	require.NoError(t, r.CreateBook(ctx, &models.Book{
		Title: "The Go Programming Language", Author: "Donovan", ISBN: "s-1", Quantity: 1,
	}))
	require.NoError(t, r.CreateBook(ctx, &models.Book{
		Title: "Learning Python", Author: "Lutz", ISBN: "s-2", Quantity: 1, Category: "programming",
	}))

	byTitle, err := r.SearchBooks(ctx, "go program", "title")
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	byAuthor, err := r.SearchBooks(ctx, "lutz", "author")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	// unknown column falls back to title
	fallback, err := r.SearchBooks(ctx, "python", "publication_year; DROP TABLE lib_books")
	require.NoError(t, err)
	assert.Len(t, fallback, 1)
}

func TestDeleteUserBlockedByOpenTransaction(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "judy")
	b := seedBook(t, r, "user-del-isbn", 1)

	tr, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)
	assert.ErrorIs(t, r.DeleteUser(ctx, u.UserID), ErrConflict)

	_, err = r.Return(ctx, tr.TransactionID)
	require.NoError(t, err)
	require.NoError(t, r.DeleteUser(ctx, u.UserID))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	seedUser(t, r, "kate")

	err := r.CreateUser(ctx, &models.User{
		Username: "kate", PasswordHash: "x", Role: models.RoleUser,
		FullName: "Kate Two", Email: "kate2@example.com",
	})
	assert.ErrorIs(t, err, ErrConflict)
}
