package v1

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Usage is a single toll-plaza passage.
// It is the unit of ingestion and the unit every report aggregates over.
type Usage struct {
	// ID is assigned by the store on insert. Producers never set it.
	ID int64 `json:"id,omitempty"`

	// OccurredAt is when the vehicle passed the plaza.
	// Stored and reported in UTC.
	OccurredAt time.Time `json:"occurred_at"`

	// Plaza is the toll plaza name, e.g. "Ponte Rio-Niterói".
	Plaza string `json:"plaza"`

	City string `json:"city"`

	// State is carried through untouched; it is not validated.
	State string `json:"state"`

	// AmountPaid is the toll charged. Exact decimal, never negative.
	AmountPaid decimal.Decimal `json:"amount_paid"`

	// VehicleType is an open vocabulary ("Carro", "Moto", "Caminhão", ...).
	VehicleType string `json:"vehicle_type"`
}

// ValidationKind classifies why a usage was rejected.
type ValidationKind string

const (
	MissingField  ValidationKind = "missing_field"
	InvalidAmount ValidationKind = "invalid_amount"
	Malformed     ValidationKind = "malformed"
)

var (
	ErrMissingField  = errors.New("required field missing")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMalformed     = errors.New("malformed usage")
)

// ValidationError is returned when a usage breaks a field invariant.
// A usage that fails validation is never handed to the store.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	}
	return e.Message
}

// Is lets callers branch with errors.Is(err, v1.ErrMissingField) and friends.
func (e *ValidationError) Is(target error) bool {
	switch e.Kind {
	case MissingField:
		return target == ErrMissingField
	case InvalidAmount:
		return target == ErrInvalidAmount
	case Malformed:
		return target == ErrMalformed
	}
	return false
}

// Validate ensures the usage satisfies its field invariants.
// Fields are checked in a fixed order and the first failure is returned.
func (u *Usage) Validate() error {
	if u.OccurredAt.IsZero() {
		return missingField("occurred_at")
	}

	if strings.TrimSpace(u.Plaza) == "" {
		return missingField("plaza")
	}

	if strings.TrimSpace(u.City) == "" {
		return missingField("city")
	}

	if strings.TrimSpace(u.VehicleType) == "" {
		return missingField("vehicle_type")
	}

	if u.AmountPaid.IsNegative() {
		return &ValidationError{
			Kind:    InvalidAmount,
			Field:   "amount_paid",
			Message: fmt.Sprintf("must be >= 0, got %s", u.AmountPaid.String()),
		}
	}

	return nil
}

// NewMalformedError wraps a decode failure of an inbound payload.
func NewMalformedError(err error) *ValidationError {
	return &ValidationError{
		Kind:    Malformed,
		Message: fmt.Sprintf("cannot decode usage: %v", err),
	}
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Kind:    MissingField,
		Field:   field,
		Message: "is required",
	}
}
