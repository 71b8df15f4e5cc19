// Package coupon validates cart coupon codes against a fixed rule table.
//
// Validation is local-only: the table ships with the client and no remote
// authority is consulted. A production storefront should verify applied
// codes server-side at order placement to prevent client-side forgery.
package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind discriminates how a coupon reduces the payable amount.
type Kind string

const (
	KindFixed   Kind = "fixed"
	KindPercent Kind = "percent"
)

// Coupon is one entry of the rule table.
type Coupon struct {
	Code  string
	Kind  Kind
	Value int64 // cents for fixed, whole percent for percent
}

// ruleTable holds every code the storefront currently honors.
var ruleTable = map[string]Coupon{
	"ORDERHAI50": {Code: "ORDERHAI50", Kind: KindFixed, Value: 50},
	"ORDERHAI20": {Code: "ORDERHAI20", Kind: KindFixed, Value: 20},
	"WELCOME10":  {Code: "WELCOME10", Kind: KindPercent, Value: 10},
}

// Normalize maps raw user input to table form: trimmed, upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the coupon for a raw code, normalizing first.
func Lookup(code string) (Coupon, bool) {
	c, ok := ruleTable[Normalize(code)]
	return c, ok
}

// DiscountCents computes the reduction against the payable amount. The
// result never exceeds the amount, so totals cannot go negative.
func (c Coupon) DiscountCents(amountCents int64) int64 {
	if amountCents <= 0 {
		return 0
	}
	var discount int64
	switch c.Kind {
	case KindPercent:
		discount = decimal.NewFromInt(amountCents).
			Mul(decimal.NewFromInt(c.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	default:
		discount = c.Value
	}
	if discount > amountCents {
		return amountCents
	}
	if discount < 0 {
		return 0
	}
	return discount
}
