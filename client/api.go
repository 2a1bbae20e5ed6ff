package client

import (
	"context"
	"errors"

	"Tcp_postgres_redis_library_system/models"
	"Tcp_postgres_redis_library_system/protocol"
)

// ErrRequestFailed wraps a success=false envelope for the typed helpers.
var ErrRequestFailed = errors.New("client: request failed")

func failed(resp *protocol.Response) error {
	return errors.Join(ErrRequestFailed, errors.New(resp.Message))
}

// LoginResult is the login payload: the user record plus the issued token.
type LoginResult struct {
	models.User
	Token string `json:"token"`
}

// Login authenticates and remembers the token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := c.Call(ctx, "login", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var out LoginResult
	if err := DecodeData(resp, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Logout revokes the session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Call(ctx, "logout", nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return failed(resp)
	}
	c.SetToken("")
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Call(ctx, "ping", nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return failed(resp)
	}
	return nil
}

func (c *Client) GetAllBooks(ctx context.Context) ([]models.Book, error) {
	resp, err := c.Call(ctx, "book_get_all", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var books []models.Book
	if err := DecodeData(resp, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) GetBook(ctx context.Context, bookID uint) (*models.Book, error) {
	resp, err := c.Call(ctx, "book_get", map[string]any{"book_id": bookID})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var b models.Book
	if err := DecodeData(resp, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) SearchBooks(ctx context.Context, query, searchBy string) ([]models.Book, error) {
	resp, err := c.Call(ctx, "book_search", map[string]any{
		"query":     query,
		"search_by": searchBy,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var books []models.Book
	if err := DecodeData(resp, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// BorrowResult carries the new transaction's id and due date.
type BorrowResult struct {
	TransactionID uint   `json:"transaction_id"`
	DueDate       string `json:"due_date"`
}

func (c *Client) BorrowBook(ctx context.Context, bookID uint, loanPeriodDays int) (*BorrowResult, error) {
	data := map[string]any{"book_id": bookID}
	if loanPeriodDays > 0 {
		data["loan_period_days"] = loanPeriodDays
	}
	resp, err := c.Call(ctx, "book_borrow", data)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var out BorrowResult
	if err := DecodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReturnBook(ctx context.Context, transactionID uint) (*models.Transaction, error) {
	resp, err := c.Call(ctx, "book_return", map[string]any{"transaction_id": transactionID})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var t models.Transaction
	if err := DecodeData(resp, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UserTransactions(ctx context.Context, userID uint, status string) ([]models.Transaction, error) {
	data := map[string]any{"user_id": userID}
	if status != "" {
		data["status"] = status
	}
	resp, err := c.Call(ctx, "user_get_transactions", data)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, failed(resp)
	}
	var ts []models.Transaction
	if err := DecodeData(resp, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}
