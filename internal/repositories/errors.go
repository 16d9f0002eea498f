package repositories

import (
	"errors"
	"strings"
)

var (
	ErrStockNotFound     = errors.New("stock item not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrWorkOrderNotFound = errors.New("work order not found")
	ErrProcessNotFound   = errors.New("work process not found")
	ErrItemNotFound      = errors.New("process item not found")
)

// nullIfBlank maps blank strings to NULL so optional unique columns never
// collide on "".
func nullIfBlank(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}
