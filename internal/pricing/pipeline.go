package pricing

// Layer names, in pipeline order
const (
	LayerElectricity = "electricity"
	LayerMaterial    = "material"
	LayerLabour      = "labour"
	LayerMargin      = "margin"
	LayerDiscount    = "discount"
	LayerTax         = "tax"
)

// PrintJobInput carries everything the print job cost pipeline needs
type PrintJobInput struct {
	PrintHours             float64
	ElectricityRatePerHour float64
	Quantity               int
	WeightGrams            float64 // per unit
	PricePerGram           float64
	LabourBaseCostPerUnit  float64
	MarginRate             float64 // fraction, 0.25 = 25%
	DiscountPercent        float64 // percent, 10 = 10%
	TaxRate                float64 // fraction, 0.21 = 21%
}

// PipelineOptions toggles known deviations of the reference pipeline
type PipelineOptions struct {
	// LegacyMaterialDoubling sets the material total to twice the electricity
	// total instead of electricity total plus material price.
	LegacyMaterialDoubling bool
}

// Layer is one step of the pipeline. Total is the running price after the
// layer; Cost is what the layer added to the previous total.
type Layer struct {
	Name  string
	Cost  float64
	Total float64
}

// Breakdown is the full print job cost pipeline
type Breakdown struct {
	Electricity   Layer
	Material      Layer
	Labour        Layer
	Margin        Layer
	Discount      Layer
	Tax           Layer
	MaterialPrice float64 // quantity * weight * price per gram, rounded up
}

// Layers returns the layers in pipeline order
func (b Breakdown) Layers() []Layer {
	return []Layer{b.Electricity, b.Material, b.Labour, b.Margin, b.Discount, b.Tax}
}

// ChargeLayers are the layers that add up to the pre-discount subtotal
// (Margin.Total). Discount and tax are carried on the invoice itself.
func (b Breakdown) ChargeLayers() []Layer {
	return []Layer{b.Electricity, b.Material, b.Labour, b.Margin}
}

// Total is the final price, tax included
func (b Breakdown) Total() float64 {
	return b.Tax.Total
}

// PrintJobBreakdown runs electricity, material, labour, margin, discount and
// tax in that order. Every layer total rounds up to the cent.
func PrintJobBreakdown(in PrintJobInput, opts PipelineOptions) Breakdown {
	var b Breakdown

	electricity := ceilCents(in.PrintHours * in.ElectricityRatePerHour)
	b.Electricity = layer(LayerElectricity, 0, electricity)

	qty := float64(in.Quantity)
	b.MaterialPrice = ceilCents(qty * in.WeightGrams * in.PricePerGram)
	material := ceilCents(electricity + b.MaterialPrice)
	if opts.LegacyMaterialDoubling {
		material = electricity + electricity
	}
	b.Material = layer(LayerMaterial, electricity, material)

	labour := ceilCents(material + in.LabourBaseCostPerUnit*qty)
	b.Labour = layer(LayerLabour, material, labour)

	margin := ceilCents(labour * (1 + in.MarginRate))
	b.Margin = layer(LayerMargin, labour, margin)

	discount := margin
	if in.DiscountPercent != 0 {
		discount = ceilCents(margin * (1 - in.DiscountPercent/100))
	}
	b.Discount = layer(LayerDiscount, margin, discount)

	tax := ceilCents(discount * (1 + in.TaxRate))
	b.Tax = layer(LayerTax, discount, tax)

	return b
}

func layer(name string, previous, total float64) Layer {
	return Layer{Name: name, Cost: roundCents(total - previous), Total: total}
}
