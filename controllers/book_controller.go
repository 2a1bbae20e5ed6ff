package controllers

import (
	"context"
	"fmt"
	"time"

	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/models"
	"Tcp_postgres_redis_library_system/server"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

type bookCreateReq struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publication_year"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Quantity        *int   `json:"quantity" validate:"omitempty,min=0"`
}

func (bc *BookController) Create(ctx context.Context, c *server.Call) (any, string, error) {
	var in bookCreateReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	b := &models.Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		Category:        in.Category,
		Description:     in.Description,
		Quantity:        quantity,
	}
	if err := bc.Repo.CreateBook(ctx, b); err != nil {
		return nil, "", err
	}
	return b, "Book created successfully", nil
}

type bookIDReq struct {
	BookID uint `json:"book_id" validate:"required"`
}

func (bc *BookController) Get(ctx context.Context, c *server.Call) (any, string, error) {
	var in bookIDReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	b, err := bc.Repo.FindBookByID(ctx, in.BookID)
	if err != nil {
		return nil, "", err
	}
	return b, "Book retrieved successfully", nil
}

func (bc *BookController) GetByISBN(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		ISBN string `json:"isbn" validate:"required"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	b, err := bc.Repo.FindBookByISBN(ctx, in.ISBN)
	if err != nil {
		return nil, "", err
	}
	return b, "Book retrieved successfully", nil
}

func (bc *BookController) GetAll(ctx context.Context, _ *server.Call) (any, string, error) {
	books, err := bc.Repo.ListBooks(ctx)
	if err != nil {
		return nil, "", err
	}
	return books, fmt.Sprintf("%d books retrieved", len(books)), nil
}

func (bc *BookController) Search(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		Query    string `json:"query" validate:"required"`
		SearchBy string `json:"search_by"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	books, err := bc.Repo.SearchBooks(ctx, in.Query, in.SearchBy)
	if err != nil {
		return nil, "", err
	}
	return books, fmt.Sprintf("%d books found", len(books)), nil
}

type bookUpdateReq struct {
	BookID          uint    `json:"book_id" validate:"required"`
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Category        *string `json:"category"`
	Description     *string `json:"description"`
	Quantity        *int    `json:"quantity" validate:"omitempty,min=0"`
}

func (bc *BookController) Update(ctx context.Context, c *server.Call) (any, string, error) {
	var in bookUpdateReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	b, err := bc.Repo.UpdateBook(ctx, in.BookID, db.BookUpdate{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		Category:        in.Category,
		Description:     in.Description,
		Quantity:        in.Quantity,
	})
	if err != nil {
		return nil, "", err
	}
	return b, "Book updated successfully", nil
}

func (bc *BookController) Delete(ctx context.Context, c *server.Call) (any, string, error) {
	var in bookIDReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	if err := bc.Repo.DeleteBook(ctx, in.BookID); err != nil {
		return nil, "", err
	}
	return nil, "Book deleted successfully", nil
}

func (bc *BookController) Borrow(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		BookID         uint `json:"book_id" validate:"required"`
		LoanPeriodDays int  `json:"loan_period_days" validate:"omitempty,min=1"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	days := in.LoanPeriodDays
	if days <= 0 {
		days = bc.Config.LoanPeriod
	}
	t, err := bc.Repo.Borrow(ctx, c.Identity.UserID, in.BookID, days)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"transaction_id": t.TransactionID, "due_date": t.DueDate}, "Book borrowed successfully", nil
}

func (bc *BookController) Return(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		TransactionID uint `json:"transaction_id" validate:"required"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	t, err := bc.Repo.Return(ctx, in.TransactionID)
	if err != nil {
		return nil, "", err
	}
	return t, "Book returned successfully", nil
}

// Transactions lists the borrow history of one book (admin only, wired in
// routes).
func (bc *BookController) Transactions(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		BookID uint   `json:"book_id" validate:"required"`
		Status string `json:"status" validate:"omitempty,oneof=borrowed returned overdue"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	ts, err := bc.Repo.TransactionsByBook(ctx, in.BookID, in.Status)
	if err != nil {
		return nil, "", err
	}
	return ts, fmt.Sprintf("%d transactions retrieved", len(ts)), nil
}

// SweepOverdue flips due borrowed transactions to overdue on demand; the
// server also runs this on a timer.
func (bc *BookController) SweepOverdue(ctx context.Context, _ *server.Call) (any, string, error) {
	n, err := bc.Repo.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"updated": n}, fmt.Sprintf("%d transactions marked overdue", n), nil
}
