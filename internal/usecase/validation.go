package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags and reports the first failure as a
// validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return entity.Validationf("%s is required", fe.Field())
		case "max":
			return entity.Validationf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "min":
			return entity.Validationf("%s must be at least %s", fe.Field(), fe.Param())
		}
		return entity.Validationf("%s is invalid", fe.Field())
	}
	return entity.Validationf("%v", err)
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseDueDate accepts an RFC 3339 string, a datetime-local or date string, or
// a number of milliseconds since the epoch. Absent, null and "" mean no date.
func parseDueDate(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		t := time.UnixMilli(millis).UTC()
		return &t, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, entity.ErrInvalidDueDate
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, entity.ErrInvalidDueDate
}

// parseAssignees decodes a JSON array of strings, trimming entries and
// dropping blanks. present reports whether a value was supplied at all.
// Anything but an array of strings is an error.
func parseAssignees(raw json.RawMessage) (values []string, present bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if isNull(raw) {
		return nil, true, entity.ErrInvalidAssignees
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, true, entity.ErrInvalidAssignees
	}

	values = make([]string, 0, len(list))
	for _, a := range list {
		if a = strings.TrimSpace(a); a != "" {
			values = append(values, a)
		}
	}
	return values, true, nil
}
