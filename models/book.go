package models

import "time"

const BookTable = "lib_books"

type Book struct {
	BookID          uint   `gorm:"primaryKey" json:"book_id"`
	Title           string `gorm:"size:255;not null;index" json:"title"`
	Author          string `gorm:"size:255;not null;index" json:"author"`
	ISBN            string `gorm:"uniqueIndex;size:32;not null" json:"isbn"`
	Publisher       string `gorm:"size:255" json:"publisher,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Category        string `gorm:"size:120;index" json:"category,omitempty"`
	Description     string `gorm:"type:text" json:"description,omitempty"`

	// 0 <= Available <= Quantity, maintained by the borrow/return transactions.
	// No column defaults: gorm would skip a zero value on insert and turn a
	// quantity-0 book into phantom stock. CreateBook sets both explicitly.
	Quantity  int `gorm:"not null" json:"quantity"`
	Available int `gorm:"not null" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string { return BookTable }

func (b *Book) IsAvailable() bool { return b.Available > 0 }
