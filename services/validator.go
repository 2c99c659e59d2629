package services

import (
	"fmt"
	"group-lab/errors"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterUserRequest struct {
	Username  string    `validate:"required,max=64"`
	Birthdate time.Time `validate:"required"`
	Location  string    `validate:"required,max=128"`
	Phone     *string   `validate:"omitempty,e164"`
}

type CreateGroupRequest struct {
	Name         string `validate:"required,max=64"`
	MinAgeToJoin *int   `validate:"omitempty,min=0,max=150"`
}

func ValidateRegister(req RegisterUserRequest, now time.Time) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Birthdate.After(now) {
		return errors.ErrInvalidUser
	}
	if !isPrintable(req.Username) {
		return errors.ErrInvalidUser
	}
	return nil
}

func validateUsername(username string) error {
	if err := validate.Var(username, "required,max=64"); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidUser, err)
	}
	if !isPrintable(username) {
		return fmt.Errorf("%w: username is not printable", errors.ErrInvalidUser)
	}
	return nil
}

func ValidateCreateGroup(req CreateGroupRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPrintable(req.Name) {
		return errors.ErrInvalidPayload
	}
	return nil
}

func isPrintable(s string) bool {
	for _, char := range s {
		if !unicode.IsPrint(char) {
			return false
		}
	}
	return true
}
