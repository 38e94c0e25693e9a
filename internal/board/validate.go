package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is wrapped by every input rejection returned by the Store.
var ErrValidation = errors.New("validation failed")

var validate = validator.New()

type taskInput struct {
	Title    string   `validate:"required"`
	Priority Priority `validate:"oneof=low medium high"`
	Status   Status   `validate:"oneof=todo in-progress done"`
}

type statusInput struct {
	Status Status `validate:"oneof=todo in-progress done"`
}

type sortInput struct {
	Field     SortField `validate:"oneof=title dueDate priority createdAt"`
	Direction Direction `validate:"oneof=asc desc"`
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed %q (value: %q)", strings.ToLower(e.Field()), e.Tag(), fmt.Sprint(e.Value())))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func validateTask(title string, p Priority, s Status) error {
	return validateStruct(taskInput{
		Title:    strings.TrimSpace(title),
		Priority: p,
		Status:   s,
	})
}
