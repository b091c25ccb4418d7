package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryHousing       Category = "Housing"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryClothing      Category = "Clothing"
	CategoryIncome        Category = "Income"
	CategoryOther         Category = "Other"
)

const dateLayout = "2006-01-02"

type (
	// Type tags a transaction as income or expense. It is stored next to the
	// signed amount and must agree with its sign.
	Type string

	// Category labels a transaction. New records use one of the fixed
	// categories; records migrated from the legacy schema may carry a label
	// derived from their description.
	Category string

	// Date is a calendar date, normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is one income or expense record of an owner.
	Transaction struct {
		ID          string `json:"id"`
		Description string `json:"description" validate:"required,max=200"`
		// Amount is invalid when the stored value was missing or not numeric.
		Amount    decimal.NullDecimal `json:"amount"`
		Type      Type                `json:"type" validate:"oneof=income expense"`
		Category  Category            `json:"category" validate:"oneof=Food Transport Housing Entertainment Health Education Clothing Income Other"`
		Date      Date                `json:"date"`
		CreatedAt time.Time           `json:"createdAt"`
		OwnerID   string              `json:"ownerId" validate:"required"`
	}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryHousing,
		CategoryEntertainment,
		CategoryHealth,
		CategoryEducation,
		CategoryClothing,
		CategoryIncome,
		CategoryOther,
	}
}

// IsKnown reports whether c belongs to the fixed category set.
func (c Category) IsKnown() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// IsValid reports whether t is income or expense.
func (t Type) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Label returns the Spanish label used in exports.
func (t Type) Label() string {
	if t == TypeIncome {
		return "Ingreso"
	}
	return "Gasto"
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// String formats d as YYYY-MM-DD; the zero date is empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Validate rejects the zero date.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON writes YYYY-MM-DD, or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD as well as full RFC 3339 timestamps, which
// older documents used for their dates.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = DateOf(ts)
	return nil
}

// NewTransaction builds a record from what a user enters: a positive
// magnitude and the kind of movement. The stored amount takes its sign from
// the kind.
func NewTransaction(ownerID string, kind Type, description string, magnitude decimal.Decimal, category Category, date Date) Transaction {
	amount := magnitude.Abs()
	if kind == TypeExpense {
		amount = amount.Neg()
	}
	return Transaction{
		Description: strings.TrimSpace(description),
		Amount:      decimal.NewNullDecimal(amount),
		Type:        kind,
		Category:    category,
		Date:        date,
		OwnerID:     ownerID,
	}
}

// IsIncome reports a strictly positive, well-formed amount.
func (t Transaction) IsIncome() bool {
	return t.Amount.Valid && t.Amount.Decimal.IsPositive()
}

// IsExpense reports a strictly negative, well-formed amount.
func (t Transaction) IsExpense() bool {
	return t.Amount.Valid && t.Amount.Decimal.IsNegative()
}

// Value returns the amount, or zero when it is malformed.
func (t Transaction) Value() decimal.Decimal {
	if !t.Amount.Valid {
		return decimal.Zero
	}
	return t.Amount.Decimal
}

// Validate checks a record before it is written to a store.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := validate.Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if !t.Amount.Valid || t.Amount.Decimal.IsZero() {
		return ErrInvalidAmount
	}
	if (t.Type == TypeIncome) != t.Amount.Decimal.IsPositive() {
		return ErrSignMismatch
	}
	return t.Date.Validate()
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Description":
		if fe.Tag() == "max" {
			return ErrDescriptionTooLong
		}
		return ErrEmptyDescription
	case "Type":
		return ErrInvalidType
	case "Category":
		return ErrInvalidCategory
	case "OwnerID":
		return ErrMissingOwner
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidTransaction, fe.Field(), fe.Tag())
	}
}
