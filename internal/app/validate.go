package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks rejected user input. Nothing was fetched or stored.
var ErrValidation = errors.New("invalid input")

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConversionRequest converts Amount of From into To.
type ConversionRequest struct {
	Amount float64 `validate:"gt=0,finite"`
	From   string  `validate:"required"`
	To     string  `validate:"required"`
}

// MultiConversionRequest converts Amount of From into every currency in To.
type MultiConversionRequest struct {
	Amount float64  `validate:"gt=0,finite"`
	From   string   `validate:"required"`
	To     []string `validate:"min=1,dive,required"`
}

// TrendRequest asks for the rate series of a pair between two dates, inclusive.
type TrendRequest struct {
	From  string    `validate:"required"`
	To    string    `validate:"required"`
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Start"`
}

// CompareRequest compares the rate on Date with the latest rate.
type CompareRequest struct {
	From string    `validate:"required"`
	To   string    `validate:"required"`
	Date time.Time `validate:"required"`
}

// PairRequest names a currency pair.
type PairRequest struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

var validationMessages = map[string]string{
	"Amount.gt":      "Please enter a valid amount greater than 0",
	"Amount.finite":  "Please enter a valid amount greater than 0",
	"Start.required": "Please select start and end dates",
	"End.required":   "Please select start and end dates",
	"End.gtefield":   "Start date cannot be after end date",
	"Date.required":  "Please select a date",
	"To.min":         "Please select at least one target currency",
	"From.required":  "Please select a source currency",
	"To.required":    "Please select a target currency",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(fmt.Sprintf("register finite validation: %v", err))
	}
	return v
}

// isFinite rejects amounts that overflowed to infinity or are NaN.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (a *App) check(req any) error {
	err := a.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := fieldErrs[0]
	msg, ok := validationMessages[fe.StructField()+"."+fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("Invalid value for %s", fe.Field())
	}
	return &ValidationError{Field: fe.StructField(), Message: msg}
}
