package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() PrintJobInput {
	return PrintJobInput{
		PrintHours:             2,
		ElectricityRatePerHour: 0.35,
		Quantity:               2,
		WeightGrams:            50,
		PricePerGram:           0.03,
		LabourBaseCostPerUnit:  5,
		MarginRate:             0.25,
		DiscountPercent:        10,
		TaxRate:                0.21,
	}
}

func TestPrintJobBreakdown(t *testing.T) {
	b := PrintJobBreakdown(sampleInput(), PipelineOptions{})

	want := []Layer{
		{Name: LayerElectricity, Cost: 0.70, Total: 0.70},
		{Name: LayerMaterial, Cost: 3.00, Total: 3.70},
		{Name: LayerLabour, Cost: 10.00, Total: 13.70},
		{Name: LayerMargin, Cost: 3.43, Total: 17.13},
		{Name: LayerDiscount, Cost: -1.71, Total: 15.42},
		{Name: LayerTax, Cost: 3.24, Total: 18.66},
	}

	got := b.Layers()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.InDelta(t, want[i].Cost, got[i].Cost, 1e-9, want[i].Name)
		assert.InDelta(t, want[i].Total, got[i].Total, 1e-9, want[i].Name)
	}
	assert.InDelta(t, 3.00, b.MaterialPrice, 1e-9)
	assert.InDelta(t, 18.66, b.Total(), 1e-9)
}

func TestPrintJobBreakdown_LegacyMaterialDoubling(t *testing.T) {
	b := PrintJobBreakdown(sampleInput(), PipelineOptions{LegacyMaterialDoubling: true})

	assert.InDelta(t, 1.40, b.Material.Total, 1e-9)
	assert.InDelta(t, 0.70, b.Material.Cost, 1e-9)
	assert.InDelta(t, 11.40, b.Labour.Total, 1e-9)
	assert.InDelta(t, 14.25, b.Margin.Total, 1e-9)
	assert.InDelta(t, 12.83, b.Discount.Total, 1e-9)
	assert.InDelta(t, 15.53, b.Tax.Total, 1e-9)
}

func TestPrintJobBreakdown_NoDiscountKeepsMarginTotal(t *testing.T) {
	in := sampleInput()
	in.DiscountPercent = 0

	b := PrintJobBreakdown(in, PipelineOptions{})

	assert.Equal(t, b.Margin.Total, b.Discount.Total)
	assert.Zero(t, b.Discount.Cost)
	assert.InDelta(t, b.Tax.Total-b.Discount.Total, b.Tax.Cost, 1e-9)
}

func TestPrintJobBreakdown_CostIsDeltaOfTotals(t *testing.T) {
	b := PrintJobBreakdown(sampleInput(), PipelineOptions{})
	layers := b.Layers()

	prev := 0.0
	for _, l := range layers {
		assert.InDelta(t, l.Total-prev, l.Cost, 1e-9, l.Name)
		prev = l.Total
	}
}

func TestPrintJobBreakdown_ChargeLayersSumToSubtotal(t *testing.T) {
	in := PrintJobInput{
		PrintHours:             4,
		ElectricityRatePerHour: 0.35,
		Quantity:               2,
		WeightGrams:            50,
		PricePerGram:           0.03,
		LabourBaseCostPerUnit:  5,
		MarginRate:             0.25,
		DiscountPercent:        10,
		TaxRate:                0.21,
	}
	b := PrintJobBreakdown(in, PipelineOptions{})

	var sum float64
	for _, l := range b.ChargeLayers() {
		sum += l.Cost
	}
	assert.InDelta(t, b.Margin.Total, sum, 1e-9)

	var names []string
	for _, l := range b.ChargeLayers() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{LayerElectricity, LayerMaterial, LayerLabour, LayerMargin}, names)
}

func TestPrintJobBreakdown_RoundsUp(t *testing.T) {
	in := PrintJobInput{PrintHours: 1, ElectricityRatePerHour: 0.101, Quantity: 1}

	b := PrintJobBreakdown(in, PipelineOptions{})

	assert.InDelta(t, 0.11, b.Electricity.Total, 1e-9)
	assert.InDelta(t, 0.11, b.Tax.Total, 1e-9)
}

func TestPrintJobBreakdown_ZeroInput(t *testing.T) {
	b := PrintJobBreakdown(PrintJobInput{}, PipelineOptions{})
	for _, l := range b.Layers() {
		assert.Zero(t, l.Total, l.Name)
		assert.Zero(t, l.Cost, l.Name)
	}
}
