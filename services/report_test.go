package services

import (
	"bytes"
	"errors"
	"testing"
)

func TestBudgetChartValues(t *testing.T) {
	values := BudgetChartValues(entries("Rent", 750, "Gas", 0), entries("Food", 250))

	if len(values) != 2 {
		t.Fatalf("got %d slices, want 2 (zero amounts skipped)", len(values))
	}
	if values[0].Label != "Rent: $750.00 (75.0%)" {
		t.Errorf("label = %q", values[0].Label)
	}
	if values[1].Value != 250 {
		t.Errorf("value = %v, want 250", values[1].Value)
	}
}

func TestRenderBudgetChart(t *testing.T) {
	png, err := RenderBudgetChart(entries("Rent", 800), entries("Food", 200))
	if err != nil {
		t.Fatalf("RenderBudgetChart() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	if _, err := RenderBudgetChart(entries(), entries("Food", 0)); !errors.Is(err, ErrNothingToChart) {
		t.Errorf("RenderBudgetChart(empty) error = %v, want ErrNothingToChart", err)
	}
}
