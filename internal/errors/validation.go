package errors

import "fmt"

var (
	ErrTitleRequired = &Exception{
		Kind:    KindValidation,
		Message: "title is required",
	}

	ErrInvalidLimit = &Exception{
		Kind:    KindValidation,
		Message: "limit must be between 0 and 100",
	}

	ErrInvalidOffset = &Exception{
		Kind:    KindValidation,
		Message: "offset must not be negative",
	}
)

func Validation(format string, args ...any) *Exception {
	return &Exception{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}
