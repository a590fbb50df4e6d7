package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrPlaceholderNotFound  = errors.New("placeholder not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidStatus        = errors.New("document not in expected status")
	ErrCapability           = errors.New("capability failure")
	ErrRender               = errors.New("render failure")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
