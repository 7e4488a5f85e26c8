package board

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"board/internal/utils"
)

const (
	MaxTitleLength    = 200
	MaxCategoryLength = 50
	MaxCommentLength  = 1000
	MaxReasonLength   = 500
	MaxUsernameLength = 50
	MaxNicknameLength = 50
	MaxEmailLength    = 100
	MinPasswordLength = 6
)

// requireText checks that value is non-blank and at most max runes long.
func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return utils.NewValidationError(field + " must not be blank")
	}
	return maxLength(field, value, max)
}

func maxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return utils.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func validatePost(title, content, category string) error {
	if err := requireText("title", title, MaxTitleLength); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return utils.NewValidationError("content must not be blank")
	}
	return maxLength("category", category, MaxCategoryLength)
}

func validateEmail(email string) error {
	if err := requireText("email", email, MaxEmailLength); err != nil {
		return err
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return utils.NewValidationError("email is not valid")
	}
	return nil
}

func validateRegistration(username, email, password, nickname string) error {
	if err := requireText("username", username, MaxUsernameLength); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return utils.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return requireText("nickname", nickname, MaxNicknameLength)
}
