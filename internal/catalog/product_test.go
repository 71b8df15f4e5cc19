package catalog

import "testing"

func TestResolveVariantSynthesizesDefault(t *testing.T) {
	p := Product{ID: "p1", Name: "Paneer Roll", BasePriceCents: 120}
	v := p.ResolveVariant("")
	if v.ID != DefaultVariantID {
		t.Fatalf("expected default variant, got %q", v.ID)
	}
	if v.PriceCents != 120 {
		t.Fatalf("default variant should carry base price, got %d", v.PriceCents)
	}
}

func TestResolveVariantFallsBackToFirst(t *testing.T) {
	p := Product{
		ID:             "p1",
		BasePriceCents: 100,
		Variants: []Variant{
			{ID: "small", Name: "Small", PriceCents: 80},
			{ID: "large", Name: "Large", PriceCents: 140},
		},
	}

	if v := p.ResolveVariant("large"); v.ID != "large" {
		t.Fatalf("expected exact match, got %q", v.ID)
	}
	if v := p.ResolveVariant("missing"); v.ID != "small" {
		t.Fatalf("unmatched variant should fall back to first, got %q", v.ID)
	}
	if v := p.ResolveVariant(""); v.ID != "small" {
		t.Fatalf("empty variant should resolve to first, got %q", v.ID)
	}
}

func TestUnitPriceSponsorDiscount(t *testing.T) {
	tests := []struct {
		name    string
		price   int64
		percent int
		want    int64
	}{
		{name: "no sponsor", price: 100, percent: 0, want: 100},
		{name: "twenty percent", price: 100, percent: 20, want: 80},
		{name: "rounds half up", price: 99, percent: 50, want: 50},
		{name: "rounds down below half", price: 90, percent: 33, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{BasePriceCents: tt.price, SponsorPercent: tt.percent}
			v := p.ResolveVariant("")
			if got := p.UnitPriceCents(v); got != tt.want {
				t.Fatalf("unit price = %d, want %d", got, tt.want)
			}
		})
	}
}
