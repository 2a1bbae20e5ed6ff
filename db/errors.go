package db

import (
	"errors"

	"gorm.io/gorm"
)

// Expected domain failures. Handlers match these with errors.Is and turn
// them into failure envelopes; anything else is an internal error.
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflict with existing records")
	ErrInvalidState = errors.New("invalid state for this operation")
	ErrNotAvailable = errors.New("no copies available")
)

// translate maps gorm errors onto the domain taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
