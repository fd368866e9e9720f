package auth

import (
	"chat-broadcaster/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type SignUpRequest struct {
	UserName string `validate:"required,max=64"`
}

func ValidateSignUp(req SignUpRequest) error {
	if strings.TrimSpace(req.UserName) == "" {
		return errors.ErrInvalidUserName
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidUserName, err)
	}
	return nil
}

// ValidateMessage checks a chat line against the configured maximum length, counted in runes.
func ValidateMessage(text string, maxLength int) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrInvalidMessage
	}
	if err := validate.Var(text, fmt.Sprintf("max=%d", maxLength)); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return nil
}
