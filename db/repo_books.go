package db

import (
	"Tcp_postgres_redis_library_system/models"
	"context"
	"strings"

	"gorm.io/gorm"
)

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	if b.Quantity < 0 {
		return ErrInvalidState
	}
	b.Available = b.Quantity
	return translate(r.DB.WithContext(ctx).Create(b).Error)
}

func (r *Repo) FindBookByID(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "book_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *Repo) FindBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Where("isbn = ?", isbn).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *Repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.WithContext(ctx).Order("title").Find(&books).Error
	return books, translate(err)
}

// SearchBooks matches query against one column. searchBy defaults to title;
// unknown columns fall back to title rather than interpolating user input.
func (r *Repo) SearchBooks(ctx context.Context, query, searchBy string) ([]models.Book, error) {
	column := "title"
	switch searchBy {
	case "author", "isbn", "category":
		column = searchBy
	}
	like := "%" + strings.ToLower(query) + "%"
	var books []models.Book
	err := r.DB.WithContext(ctx).
		Where("LOWER("+column+") LIKE ?", like).
		Order("title").
		Find(&books).Error
	return books, translate(err)
}

// BookUpdate carries the optional fields of book_update. A nil field is
// left untouched.
type BookUpdate struct {
	Title           *string
	Author          *string
	ISBN            *string
	Publisher       *string
	PublicationYear *int
	Category        *string
	Description     *string
	Quantity        *int
}

// UpdateBook applies the provided fields. A quantity change recomputes
// available as new_quantity - borrowed and refuses to go below zero, i.e.
// the stock cannot shrink under the copies currently out.
func (r *Repo) UpdateBook(ctx context.Context, id uint, in BookUpdate) (*models.Book, error) {
	var b models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&b, "book_id = ?", id).Error; err != nil {
			return translate(err)
		}
		updates := map[string]any{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Author != nil {
			updates["author"] = *in.Author
		}
		if in.ISBN != nil {
			updates["isbn"] = *in.ISBN
		}
		if in.Publisher != nil {
			updates["publisher"] = *in.Publisher
		}
		if in.PublicationYear != nil {
			updates["publication_year"] = *in.PublicationYear
		}
		if in.Category != nil {
			updates["category"] = *in.Category
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Quantity != nil {
			borrowed := b.Quantity - b.Available
			available := *in.Quantity - borrowed
			if available < 0 {
				return ErrInvalidState
			}
			updates["quantity"] = *in.Quantity
			updates["available"] = available
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return translate(err)
		}
		return translate(tx.First(&b, "book_id = ?", id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBook refuses while any copy is still out.
func (r *Repo) DeleteBook(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := forUpdate(tx).First(&b, "book_id = ?", id).Error; err != nil {
			return translate(err)
		}
		var open int64
		if err := tx.Model(&models.Transaction{}).
			Where("book_id = ? AND return_date IS NULL", id).
			Count(&open).Error; err != nil {
			return translate(err)
		}
		if open > 0 {
			return ErrConflict
		}
		return translate(tx.Delete(&b).Error)
	})
}
