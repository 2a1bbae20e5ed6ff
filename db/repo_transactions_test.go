package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"Tcp_postgres_redis_library_system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowReturnRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "alice")
	b := seedBook(t, r, "isbn-1", 3)

	tr, err := r.Borrow(ctx, u.UserID, b.BookID, 14)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBorrowed, tr.Status)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), tr.DueDate, time.Minute)

	got, err := r.FindBookByID(ctx, b.BookID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Available)

	returned, err := r.Return(ctx, tr.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	got, err = r.FindBookByID(ctx, b.BookID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Available)

	// double return
	_, err = r.Return(ctx, tr.TransactionID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBorrowUnavailable(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "bob")
	b := seedBook(t, r, "isbn-2", 1)

	_, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)
	_, err = r.Borrow(ctx, u.UserID, b.BookID, 7)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestBorrowMissingRows(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "carol")
	b := seedBook(t, r, "isbn-3", 1)

	_, err := r.Borrow(ctx, u.UserID, 9999, 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Borrow(ctx, 9999, b.BookID, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBorrowRejectsNonPositiveLoanPeriod(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "carl")
	b := seedBook(t, r, "isbn-period", 1)

	for _, days := range []int{0, -1} {
		_, err := r.Borrow(ctx, u.UserID, b.BookID, days)
		assert.ErrorIs(t, err, ErrInvalidState, "loan period %d", days)
	}

	// nothing was consumed by the rejected attempts
	got, err := r.FindBookByID(ctx, b.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)
}

func TestConcurrentBorrowLastCopy(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "dave")
	b := seedBook(t, r, "isbn-4", 1)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = r.Borrow(ctx, u.UserID, b.BookID, 7)
		}(i)
	}
	wg.Wait()

	var successes, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrNotAvailable):
			unavailable++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, unavailable)

	got, err := r.FindBookByID(ctx, b.BookID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

func TestReturnOverdueTransaction(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "erin")
	b := seedBook(t, r, "isbn-5", 1)

	tr, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)

	// force it overdue, then return it; the overdue state is still open
	n, err := r.SweepOverdue(ctx, time.Now().UTC().AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	swept, err := r.FindTransactionByID(ctx, tr.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, swept.Status)

	returned, err := r.Return(ctx, tr.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)

	got, err := r.FindBookByID(ctx, b.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)
}

func TestSweepOverdueIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "frank")
	b := seedBook(t, r, "isbn-6", 2)

	_, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)
	_, err = r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)

	future := time.Now().UTC().AddDate(0, 0, 8)
	n, err := r.SweepOverdue(ctx, future)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = r.SweepOverdue(ctx, future)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestTransactionsByUserStatusFilter(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "grace")
	b := seedBook(t, r, "isbn-7", 2)

	first, err := r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)
	_, err = r.Borrow(ctx, u.UserID, b.BookID, 7)
	require.NoError(t, err)
	_, err = r.Return(ctx, first.TransactionID)
	require.NoError(t, err)

	open, err := r.TransactionsByUser(ctx, u.UserID, models.StatusBorrowed)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	all, err := r.TransactionsByUser(ctx, u.UserID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byBook, err := r.TransactionsByBook(ctx, b.BookID, models.StatusReturned)
	require.NoError(t, err)
	assert.Len(t, byBook, 1)
}
