// Package controllers implements the handlers behind every protocol action.
package controllers

import (
	"errors"
	"reflect"
	"strings"

	"Tcp_postgres_redis_library_system/config"
	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/protocol"
	"Tcp_postgres_redis_library_system/server"
	"Tcp_postgres_redis_library_system/session"

	"github.com/go-playground/validator/v10"
)

// Srv 聚合各依赖 / shared dependencies of all controllers.
type Srv struct {
	Repo   *db.Repo
	Tokens *session.TokenService
	Config config.Config
}

func NewSrv(repo *db.Repo, tokens *session.TokenService, cfg config.Config) *Srv {
	return &Srv{Repo: repo, Tokens: tokens, Config: cfg}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind unmarshals and validates an action payload. Failures are client
// errors, never internal ones.
func bind(req *protocol.Request, v any) error {
	if err := req.Bind(v); err != nil {
		return server.Failf("Invalid request payload")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			if f.Tag() == "required" {
				return server.Failf("%s is required", f.Field())
			}
			return server.Failf("%s is invalid", f.Field())
		}
		return server.Failf("Invalid request payload")
	}
	return nil
}
