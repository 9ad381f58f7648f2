// Package validation holds the field rules for users and todos. Every check
// is pure and runs before anything is hashed or persisted.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"todo_server/internal/common"
)

const (
	UsernameMaxLen = 20
	PasswordMinLen = 8
	PasswordMaxLen = 20
	TodoNameMaxLen = 100
	ContentsMaxLen = 255
	EmailMaxLen    = 254

	// PasswordMaxBytes is the longest input bcrypt accepts.
	PasswordMaxBytes = 72

	// PasswordSymbols is the punctuation set a password must draw at least one character from.
	PasswordSymbols = "$@!%*?&"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("password", passwordRule); err != nil {
		panic(err)
	}
	return v
}

// userFields is the merged user state checked on signup and on update.
type userFields struct {
	Username string `validate:"required,max=20"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"password"`
}

// todoFields mirrors the mutable columns of a todo.
type todoFields struct {
	Name     string  `validate:"required,max=100"`
	Contents *string `validate:"omitempty,max=255"`
}

// User validates a username, an email and the plaintext password about to be hashed.
func User(username, email, password string) error {
	return check(userFields{Username: username, Email: email, Password: password})
}

// Todo validates a todo's name and optional contents.
func Todo(name string, contents *string) error {
	return check(todoFields{Name: name, Contents: contents})
}

// Password reports whether plaintext meets the complexity policy.
func Password(plaintext string) bool {
	n := utf8.RuneCountInString(plaintext)
	if n < PasswordMinLen || n > PasswordMaxLen || len(plaintext) > PasswordMaxBytes {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range plaintext {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func passwordRule(fl validator.FieldLevel) bool {
	return Password(fl.Field().String())
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return common.NewValidationError(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	case "email":
		return field + ": is not a valid email address"
	case "password":
		return fmt.Sprintf("%s: must be %d-%d characters with an uppercase letter, a lowercase letter, a digit and one of %s",
			field, PasswordMinLen, PasswordMaxLen, PasswordSymbols)
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}
