// Package catalog holds the product shapes the cart consumes and the pricing
// rules applied when a product enters the cart.
package catalog

import "github.com/shopspring/decimal"

// DefaultVariantID is the synthesized variant for products sold without
// explicit variants.
const DefaultVariantID = "default"

// Variant is one sellable form of a product (size, pack, portion).
type Variant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// Product is the catalog view the storefront hands to the cart. Prices are
// integer cents. SponsorPercent is a promotional percentage discount applied
// before cart pricing; zero means no sponsor.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BasePriceCents int64     `json:"base_price_cents"`
	SponsorPercent int       `json:"sponsor_percent,omitempty"`
	Variants       []Variant `json:"variants,omitempty"`
	ImageRef       string    `json:"image_ref,omitempty"`
}

// ResolveVariant picks the variant for an add-to-cart action. Products
// without variants get a synthesized default carrying the base price. An
// unmatched variantID falls back to the first variant; callers must not rely
// on the requested variant existing.
func (p Product) ResolveVariant(variantID string) Variant {
	if len(p.Variants) == 0 {
		return Variant{
			ID:         DefaultVariantID,
			Name:       "",
			PriceCents: p.BasePriceCents,
		}
	}
	if variantID != "" {
		for _, v := range p.Variants {
			if v.ID == variantID {
				return v
			}
		}
	}
	return p.Variants[0]
}

// UnitPriceCents applies the sponsor discount to the variant price, rounding
// half-up to the nearest cent. Without a sponsor the variant price is
// returned exactly.
func (p Product) UnitPriceCents(v Variant) int64 {
	if p.SponsorPercent <= 0 {
		return v.PriceCents
	}
	price := decimal.NewFromInt(v.PriceCents)
	factor := decimal.NewFromInt(int64(100 - p.SponsorPercent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(0).IntPart()
}
