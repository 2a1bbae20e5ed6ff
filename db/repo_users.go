package db

import (
	"Tcp_postgres_redis_library_system/models"
	"context"

	"gorm.io/gorm"
)

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *Repo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "user_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, translate(err)
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, translate(err)
}

// UpdateUser applies the non-nil fields. Column names are fixed here, not
// caller-supplied.
func (r *Repo) UpdateUser(ctx context.Context, id uint, updates map[string]any) (*models.User, error) {
	if len(updates) == 0 {
		return r.FindUserByID(ctx, id)
	}
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&u, "user_id = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			return translate(err)
		}
		return translate(tx.First(&u, "user_id = ?", id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser refuses while the user still has a book out.
func (r *Repo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := forUpdate(tx).First(&u, "user_id = ?", id).Error; err != nil {
			return translate(err)
		}
		var open int64
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND return_date IS NULL", id).
			Count(&open).Error; err != nil {
			return translate(err)
		}
		if open > 0 {
			return ErrConflict
		}
		return translate(tx.Delete(&u).Error)
	})
}

func (r *Repo) TouchUserSeen(ctx context.Context, id uint) error {
	return translate(r.DB.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error)
}
