package db

import (
	"Tcp_postgres_redis_library_system/models"
	"context"
	"time"

	"gorm.io/gorm"
)

// Borrow 借出：原子操作 = 锁住 book → 占用一本 → 新建 transaction.
// The decrement is conditional on available > 0, so two racers for the last
// copy cannot both succeed: the loser's UPDATE matches zero rows.
func (r *Repo) Borrow(ctx context.Context, userID, bookID uint, loanPeriodDays int) (*models.Transaction, error) {
	// the caller owns the default loan period; a non-positive one is a bug
	if loanPeriodDays <= 0 {
		return nil, ErrInvalidState
	}
	var tr *models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "user_id = ?", userID).Error; err != nil {
			return translate(err)
		}
		var b models.Book
		if err := forUpdate(tx).First(&b, "book_id = ?", bookID).Error; err != nil {
			return translate(err)
		}
		if !b.IsAvailable() {
			return ErrNotAvailable
		}
		res := tx.Model(&models.Book{}).
			Where("book_id = ? AND available > 0", bookID).
			UpdateColumn("available", gorm.Expr("available - 1"))
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotAvailable
		}
		now := time.Now().UTC()
		t := &models.Transaction{
			UserID:     userID,
			BookID:     bookID,
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, loanPeriodDays),
			Status:     models.StatusBorrowed,
		}
		if err := tx.Create(t).Error; err != nil {
			return translate(err)
		}
		tr = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// Return 归还：原子操作 = 完成 transaction → 释放一本.
// Returning an overdue book is valid; returning twice is not. The increment
// never pushes available past quantity.
func (r *Repo) Return(ctx context.Context, transactionID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&t, "transaction_id = ?", transactionID).Error; err != nil {
			return translate(err)
		}
		if !t.Open() {
			return ErrInvalidState
		}
		now := time.Now().UTC()
		t.ReturnDate = &now
		t.Status = models.StatusReturned
		if err := tx.Save(&t).Error; err != nil {
			return translate(err)
		}
		return translate(tx.Model(&models.Book{}).
			Where("book_id = ? AND available < quantity", t.BookID).
			UpdateColumn("available", gorm.Expr("available + 1")).Error)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SweepOverdue flips every borrowed transaction past its due date to
// overdue. Idempotent: rows already overdue are not matched again.
func (r *Repo) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ? AND due_date < ? AND return_date IS NULL", models.StatusBorrowed, now).
		Update("status", models.StatusOverdue)
	return res.RowsAffected, translate(res.Error)
}

func (r *Repo) FindTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.DB.WithContext(ctx).First(&t, "transaction_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *Repo) TransactionsByUser(ctx context.Context, userID uint, status string) ([]models.Transaction, error) {
	return r.listTransactions(ctx, "user_id", userID, status)
}

func (r *Repo) TransactionsByBook(ctx context.Context, bookID uint, status string) ([]models.Transaction, error) {
	return r.listTransactions(ctx, "book_id", bookID, status)
}

func (r *Repo) listTransactions(ctx context.Context, column string, id uint, status string) ([]models.Transaction, error) {
	q := r.DB.WithContext(ctx).
		Where(column+" = ?", id).
		Order("borrow_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var ts []models.Transaction
	if err := q.Find(&ts).Error; err != nil {
		return nil, translate(err)
	}
	return ts, nil
}
