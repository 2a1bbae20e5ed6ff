// Package routes binds every protocol action to its controller handler and
// access policy.
package routes

import (
	"Tcp_postgres_redis_library_system/controllers"
	"Tcp_postgres_redis_library_system/server"
)

func RegisterActions(d *server.Dispatcher, s *controllers.Srv) {
	ac := controllers.NewAuthController(s)
	bc := controllers.NewBookController(s)
	uc := controllers.NewUserController(s)

	// ------------------------------
	// 公开 / no session required
	// ------------------------------
	d.Handle("ping", server.Public, ac.Ping)
	d.Handle("login", server.Public, ac.Login)
	d.Handle("logout", server.Authenticated, ac.Logout)

	// ------------------------------
	// Books
	// ------------------------------
	d.Handle("book_get_all", server.Authenticated, bc.GetAll)
	d.Handle("book_get", server.Authenticated, bc.Get)
	d.Handle("book_get_by_isbn", server.Authenticated, bc.GetByISBN)
	d.Handle("book_search", server.Authenticated, bc.Search)
	d.Handle("book_create", server.AdminOnly, bc.Create)
	d.Handle("book_add", server.AdminOnly, bc.Create) // legacy alias
	d.Handle("book_update", server.AdminOnly, bc.Update)
	d.Handle("book_delete", server.AdminOnly, bc.Delete)
	d.Handle("book_get_transactions", server.AdminOnly, bc.Transactions)

	// 借还 / borrow and return need a session, not a role
	d.Handle("book_borrow", server.Authenticated, bc.Borrow)
	d.Handle("book_return", server.Authenticated, bc.Return)

	// ------------------------------
	// Users
	// ------------------------------
	d.Handle("user_create", server.AdminOnly, uc.Create)
	d.Handle("user_add", server.AdminOnly, uc.Create) // legacy alias
	d.Handle("user_get", server.SelfOrAdmin, uc.Get)
	d.Handle("user_get_by_username", server.AdminOnly, uc.GetByUsername)
	d.Handle("user_get_all", server.AdminOnly, uc.GetAll)
	d.Handle("user_update", server.SelfOrAdmin, uc.Update)
	d.Handle("user_delete", server.AdminOnly, uc.Delete)
	d.Handle("user_get_transactions", server.SelfOrAdmin, uc.Transactions)

	// ------------------------------
	// Transactions (admin maintenance)
	// ------------------------------
	d.Handle("transaction_sweep_overdue", server.AdminOnly, bc.SweepOverdue)
}
