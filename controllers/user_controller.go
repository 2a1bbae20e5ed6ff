package controllers

import (
	"context"
	"fmt"
	"log"

	"Tcp_postgres_redis_library_system/models"
	"Tcp_postgres_redis_library_system/server"

	"golang.org/x/crypto/bcrypt"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

type userCreateReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (uc *UserController) Create(ctx context.Context, c *server.Call) (any, string, error) {
	var in userCreateReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := uc.Repo.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}
	return u, "User created successfully", nil
}

type userIDReq struct {
	UserID uint `json:"user_id" validate:"required"`
}

func (uc *UserController) Get(ctx context.Context, c *server.Call) (any, string, error) {
	var in userIDReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	u, err := uc.Repo.FindUserByID(ctx, in.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, "User retrieved successfully", nil
}

func (uc *UserController) GetByUsername(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		Username string `json:"username" validate:"required"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	u, err := uc.Repo.FindUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", err
	}
	return u, "User retrieved successfully", nil
}

func (uc *UserController) GetAll(ctx context.Context, _ *server.Call) (any, string, error) {
	users, err := uc.Repo.ListUsers(ctx)
	if err != nil {
		return nil, "", err
	}
	return users, fmt.Sprintf("%d users retrieved", len(users)), nil
}

type userUpdateReq struct {
	UserID   uint    `json:"user_id" validate:"required"`
	Username *string `json:"username"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

func (uc *UserController) Update(ctx context.Context, c *server.Call) (any, string, error) {
	var in userUpdateReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	// role changes stay an admin affair even on one's own record
	if in.Role != nil && c.Identity.Role != models.RoleAdmin {
		return nil, "", server.Failf("You cannot change your role")
	}
	updates := map[string]any{}
	if in.Username != nil {
		updates["username"] = *in.Username
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		updates["password_hash"] = string(hash)
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	u, err := uc.Repo.UpdateUser(ctx, in.UserID, updates)
	if err != nil {
		return nil, "", err
	}
	return u, "User updated successfully", nil
}

func (uc *UserController) Delete(ctx context.Context, c *server.Call) (any, string, error) {
	var in userIDReq
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	if err := uc.Repo.DeleteUser(ctx, in.UserID); err != nil {
		return nil, "", err
	}
	// the account is gone; its open sessions go with it
	if err := uc.Tokens.RevokeAllForUser(ctx, in.UserID); err != nil {
		log.Printf("revoke sessions of deleted user %d: %v", in.UserID, err)
	}
	return nil, "User deleted successfully", nil
}

func (uc *UserController) Transactions(ctx context.Context, c *server.Call) (any, string, error) {
	var in struct {
		UserID uint   `json:"user_id" validate:"required"`
		Status string `json:"status" validate:"omitempty,oneof=borrowed returned overdue"`
	}
	if err := bind(c.Req, &in); err != nil {
		return nil, "", err
	}
	ts, err := uc.Repo.TransactionsByUser(ctx, in.UserID, in.Status)
	if err != nil {
		return nil, "", err
	}
	return ts, fmt.Sprintf("%d transactions retrieved", len(ts)), nil
}
