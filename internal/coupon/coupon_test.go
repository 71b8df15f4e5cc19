package coupon

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize("  orderhai50 "); got != "ORDERHAI50" {
		t.Fatalf("unexpected normalized code %q", got)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup(" orderhai50")
	if !ok {
		t.Fatal("expected ORDERHAI50 to be valid")
	}
	if c.Kind != KindFixed || c.Value != 50 {
		t.Fatalf("unexpected coupon %+v", c)
	}

	if _, ok := Lookup("NOTACODE"); ok {
		t.Fatal("unknown code must be rejected")
	}
	if _, ok := Lookup(""); ok {
		t.Fatal("empty code must be rejected")
	}
}

func TestDiscountCents(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		amount int64
		want   int64
	}{
		{name: "fixed under amount", coupon: Coupon{Kind: KindFixed, Value: 50}, amount: 105, want: 50},
		{name: "fixed clamps to amount", coupon: Coupon{Kind: KindFixed, Value: 50}, amount: 15, want: 15},
		{name: "fixed zero amount", coupon: Coupon{Kind: KindFixed, Value: 50}, amount: 0, want: 0},
		{name: "percent rounds half up", coupon: Coupon{Kind: KindPercent, Value: 10}, amount: 105, want: 11},
		{name: "percent of zero", coupon: Coupon{Kind: KindPercent, Value: 10}, amount: 0, want: 0},
		{name: "negative value clamps to zero", coupon: Coupon{Kind: KindFixed, Value: -5}, amount: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.DiscountCents(tt.amount); got != tt.want {
				t.Fatalf("discount = %d, want %d", got, tt.want)
			}
		})
	}
}
