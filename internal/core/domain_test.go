package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(b))

	var got Date
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, got.Equal(d.Time))

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T22:10:00Z"`), &got))
	assert.Equal(t, "2024-03-01", got.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	assert.True(t, got.IsZero())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"yesterday"`), &got), ErrInvalidDate)
}

func TestNewTransactionSignsAmount(t *testing.T) {
	exp := NewTransaction("u1", TypeExpense, " Cena ", decimal.RequireFromString("40"), CategoryFood, NewDate(2024, 3, 15))
	assert.Equal(t, "-40", exp.Amount.Decimal.String())
	assert.Equal(t, "Cena", exp.Description)
	assert.True(t, exp.IsExpense())

	inc := NewTransaction("u1", TypeIncome, "Salario", decimal.RequireFromString("-100"), CategoryIncome, NewDate(2024, 3, 1))
	assert.Equal(t, "100", inc.Amount.Decimal.String())
	assert.True(t, inc.IsIncome())
}

func TestTransactionValidate(t *testing.T) {
	good := NewTransaction("u1", TypeExpense, "Cena", decimal.RequireFromString("40"), CategoryFood, NewDate(2024, 3, 15))
	require.NoError(t, good.Validate())

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"blank description", func(t *Transaction) { t.Description = "   " }, ErrEmptyDescription},
		{"long description", func(t *Transaction) { t.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"unknown type", func(t *Transaction) { t.Type = "transfer" }, ErrInvalidType},
		{"unknown category", func(t *Transaction) { t.Category = "Cena" }, ErrInvalidCategory},
		{"no owner", func(t *Transaction) { t.OwnerID = "" }, ErrMissingOwner},
		{"malformed amount", func(t *Transaction) { t.Amount = decimal.NullDecimal{} }, ErrInvalidAmount},
		{"zero amount", func(t *Transaction) { t.Amount = decimal.NewNullDecimal(decimal.Zero) }, ErrInvalidAmount},
		{"sign mismatch", func(t *Transaction) { t.Type = TypeIncome }, ErrSignMismatch},
		{"no date", func(t *Transaction) { t.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tc.want)
		})
	}
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Ingreso", TypeIncome.Label())
	assert.Equal(t, "Gasto", TypeExpense.Label())
	assert.True(t, CategoryHealth.IsKnown())
	assert.False(t, Category("Comida").IsKnown())
}
