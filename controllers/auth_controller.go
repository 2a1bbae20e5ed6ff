package controllers

import (
	"context"
	"errors"

	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/models"
	"Tcp_postgres_redis_library_system/server"

	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// Ping answers without authentication so clients can probe liveness.
func (ac *AuthController) Ping(_ context.Context, _ *server.Call) (any, string, error) {
	return map[string]any{"pong": true}, "pong", nil
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginData is the sanitized user record plus the issued token.
type loginData struct {
	models.User
	Token string `json:"token"`
}

func (ac *AuthController) Login(ctx context.Context, c *server.Call) (any, string, error) {
	var in loginReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	u, err := ac.Repo.FindUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, "", server.Failf("Invalid username or password")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", server.Failf("Invalid username or password")
	}
	token, err := ac.Tokens.Issue(ctx, u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	// connection-local convenience cache; the registry stays authoritative
	c.Conn.Token = token
	return loginData{User: *u, Token: token}, "Login successful", nil
}

func (ac *AuthController) Logout(ctx context.Context, c *server.Call) (any, string, error) {
	if err := ac.Tokens.Revoke(ctx, c.Token); err != nil {
		return nil, "", err
	}
	c.Conn.Token = ""
	return nil, "Logout successful", nil
}
