package models

import "time"

const TransactionTable = "lib_transactions"

const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

// Transaction is one borrow of one book copy. Lifecycle:
// borrowed -> returned, or borrowed -> overdue -> returned.
type Transaction struct {
	TransactionID uint       `gorm:"primaryKey" json:"transaction_id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	BookID        uint       `gorm:"index;not null" json:"book_id"`
	BorrowDate    time.Time  `gorm:"index;not null" json:"borrow_date"`
	DueDate       time.Time  `gorm:"index;not null" json:"due_date"`
	ReturnDate    *time.Time `gorm:"index" json:"return_date,omitempty"`
	Status        string     `gorm:"size:20;index;not null;default:'borrowed'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transaction) TableName() string { return TransactionTable }

// Open reports whether the book copy is still out.
func (t *Transaction) Open() bool {
	return t.Status == StatusBorrowed || t.Status == StatusOverdue
}
