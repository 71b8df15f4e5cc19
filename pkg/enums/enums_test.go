package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("confirmed")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != OrderStatusConfirmed {
		t.Fatalf("got %s", status)
	}

	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("unknown status must not validate")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("wallet")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if method != PaymentMethodWallet {
		t.Fatalf("got %s", method)
	}

	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatal("expected unknown method to fail")
	}
}

func TestParseSyncOpKind(t *testing.T) {
	kind, err := ParseSyncOpKind("favorite.remove")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if kind != SyncOpFavoriteRemove {
		t.Fatalf("got %s", kind)
	}

	if SyncOpKind("cart.merge").IsValid() {
		t.Fatal("unknown kind must not validate")
	}
}
