package core

import (
	"strings"
	"time"
)

// Record is a transaction document as it may exist in the store, including
// documents written by the first schema version: no category, no date,
// a Spanish type tag ("ingreso"/"gasto") and a loosely typed amount.
type Record struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      any       `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        Date      `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	OwnerID     string    `json:"ownerId"`
	UserID      string    `json:"userId"`
}

// Transaction migrates the record to the current schema. Category is derived
// here, once, so aggregation only ever groups by Category.
func (r Record) Transaction() Transaction {
	t := Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      AmountFromAny(r.Amount),
		Category:    Category(strings.TrimSpace(r.Category)),
		Date:        r.Date,
		CreatedAt:   r.CreatedAt,
		OwnerID:     r.OwnerID,
	}
	if t.OwnerID == "" {
		t.OwnerID = r.UserID
	}
	if t.Category == "" {
		t.Category = DeriveCategory(r.Description)
	}
	if t.Date.IsZero() && !r.CreatedAt.IsZero() {
		t.Date = DateOf(r.CreatedAt)
	}
	t.Type = legacyType(r.Type, t)
	return t
}

// DeriveCategory returns the first whitespace-delimited token of a
// description, untouched. Blank descriptions fall into Other.
func DeriveCategory(description string) Category {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return CategoryOther
	}
	return Category(fields[0])
}

func legacyType(tag string, t Transaction) Type {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "income", "ingreso":
		return TypeIncome
	case "expense", "gasto":
		return TypeExpense
	}
	if t.IsIncome() {
		return TypeIncome
	}
	return TypeExpense
}
