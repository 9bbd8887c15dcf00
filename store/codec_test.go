package store

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
)

func TestPostgresStore_SealAndOpen(t *testing.T) {
	entries := []models.BudgetEntry{{Title: "Food", Amount: decimal.RequireFromString("250.50")}}

	tests := []struct {
		name string
		key  string
	}{
		{"plain", ""},
		{"encrypted", "0123456789abcdef0123456789abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPostgresStore(nil, tt.key)

			raw, err := s.seal(entries)
			if err != nil {
				t.Fatalf("seal() error = %v", err)
			}
			if tt.key != "" && strings.Contains(string(raw), "Food") {
				t.Errorf("sealed document leaks the title: %s", raw)
			}

			got, err := s.open(raw)
			if err != nil {
				t.Fatalf("open() error = %v", err)
			}
			if len(got) != 1 || got[0].Title != "Food" || !got[0].Amount.Equal(entries[0].Amount) {
				t.Errorf("open() = %+v", got)
			}
		})
	}
}

func TestPostgresStore_OpenPlainWithKey(t *testing.T) {
	s := NewPostgresStore(nil, "0123456789abcdef0123456789abcdef")
	raw, _ := json.Marshal([]models.BudgetEntry{{Title: "Gas", Amount: decimal.NewFromInt(40)}})

	got, err := s.open(raw)
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Gas" {
		t.Errorf("open() = %+v", got)
	}
}

func TestPostgresStore_OpenEmpty(t *testing.T) {
	got, err := NewPostgresStore(nil, "").open(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("open(nil) = %v, %v", got, err)
	}
}

func TestDecimal128RoundTrip(t *testing.T) {
	for _, s := range []string{"250.5", "0.01", "123456789.99"} {
		d := decimal.RequireFromString(s)
		if got := fromDecimal128(toDecimal128(d)); !got.Equal(d) {
			t.Errorf("round trip of %s = %s", s, got)
		}
	}
}

func TestEntryDocs(t *testing.T) {
	entries := []models.BudgetEntry{{Title: "Rent/Mortgage", Amount: decimal.NewFromInt(800)}}
	got := fromEntryDocs(toEntryDocs(entries))
	if len(got) != 1 || got[0].Title != "Rent/Mortgage" || !got[0].Amount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("entry docs round trip = %+v", got)
	}
	if out := fromEntryDocs(nil); out == nil {
		t.Error("fromEntryDocs(nil) should be an empty list")
	}
}
