package services

import (
	"errors"
	"fmt"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/repositories"
)

// ValidationError is a rejected request. Handlers answer it with 400 and
// the message as detail.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is one of the repository not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrStockNotFound) ||
		errors.Is(err, repositories.ErrAccountNotFound) ||
		errors.Is(err, repositories.ErrWorkOrderNotFound) ||
		errors.Is(err, repositories.ErrProcessNotFound) ||
		errors.Is(err, repositories.ErrItemNotFound) ||
		errors.Is(err, ErrNothingToExport)
}

// ChangeNotifier receives change events for the live UI feed.
type ChangeNotifier interface {
	BroadcastChange(resource, action string, id any)
}

func notify(n ChangeNotifier, resource, action string, id any) {
	if n != nil {
		n.BroadcastChange(resource, action, id)
	}
}
