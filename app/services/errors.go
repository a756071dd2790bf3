package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrValidation                = errors.New("validation failed")
	ErrNotFound                  = errors.New("not found")
	ErrInsufficientStock         = errors.New("insufficient product stock")
	ErrInvalidStateTransition    = errors.New("invalid order state transition")
	ErrDuplicatePaymentReference = errors.New("payment reference already processed")
	ErrConfigurationConflict     = errors.New("configuration conflict")
)

var (
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrAddressNotFound    = fmt.Errorf("address %w", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCannotCancelOrder  = fmt.Errorf("%w: order can no longer be cancelled", ErrInvalidStateTransition)
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries per-field messages for the caller.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: product '%s' has insufficient stock. Available: %d, Requested: %d",
		ErrInsufficientStock, e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ProductUnavailableError is returned when an order references a product that
// was removed or deactivated after it was put in the cart.
type ProductUnavailableError struct {
	ProductID uint
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is no longer available: %s", e.ProductID, ErrNotFound)
}

func (e *ProductUnavailableError) Unwrap() error { return ErrNotFound }

type TransitionError struct {
	OrderID uint
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: order %d cannot move from %s to %s", ErrInvalidStateTransition, e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

// validateStruct runs validator tags and turns failures into ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: helpers.FormatValidationErrors(verrs)}
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
