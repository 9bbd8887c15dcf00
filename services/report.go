package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pocketplan/budget-api/models"

	"github.com/wcharczuk/go-chart/v2"
)

var ErrNothingToChart = errors.New("no budget amounts to chart")

// BudgetChartValues turns budget entries into pie slices. Zero amounts are
// left out; labels carry the amount and share of the total.
func BudgetChartValues(fixed, variable []models.BudgetEntry) []chart.Value {
	total := sumEntries(fixed).Add(sumEntries(variable))
	if !total.IsPositive() {
		return nil
	}

	values := make([]chart.Value, 0, len(fixed)+len(variable))
	for _, set := range [][]models.BudgetEntry{fixed, variable} {
		for _, e := range set {
			if !e.Amount.IsPositive() {
				continue
			}
			share, _ := e.Amount.Div(total).Mul(hundred).Float64()
			amount, _ := e.Amount.Float64()
			values = append(values, chart.Value{
				Label: fmt.Sprintf("%s: $%s (%.1f%%)", e.Title, e.Amount.StringFixed(2), share),
				Value: amount,
			})
		}
	}
	return values
}

// RenderBudgetChart draws the budget breakdown as a PNG pie chart.
func RenderBudgetChart(fixed, variable []models.BudgetEntry) ([]byte, error) {
	values := BudgetChartValues(fixed, variable)
	if len(values) == 0 {
		return nil, ErrNothingToChart
	}

	pie := chart.PieChart{
		Width:  800,
		Height: 600,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render budget chart: %w", err)
	}
	return buffer.Bytes(), nil
}
