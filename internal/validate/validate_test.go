package validate_test

import (
	"testing"

	"brewpos/internal/validate"
)

func TestID(t *testing.T) {
	if id, ok := validate.ID(" 42 "); !ok || id != 42 {
		t.Fatalf("want 42, got %d ok=%v", id, ok)
	}
	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		if _, ok := validate.ID(bad); ok {
			t.Fatalf("id %q should be rejected", bad)
		}
	}
}

func TestPaymentMethod(t *testing.T) {
	if pm, ok := validate.PaymentMethod("  gcash "); !ok || pm != "gcash" {
		t.Fatalf("want gcash, got %q ok=%v", pm, ok)
	}
	if _, ok := validate.PaymentMethod(""); ok {
		t.Fatal("empty payment method accepted")
	}
	if _, ok := validate.PaymentMethod("<script>"); ok {
		t.Fatal("markup accepted as payment method")
	}
}

func TestSizeOptional(t *testing.T) {
	if s, ok := validate.Size(""); !ok || s != "" {
		t.Fatalf("empty size should be allowed, got %q ok=%v", s, ok)
	}
	if s, ok := validate.Size("Giant"); !ok || s != "Giant" {
		t.Fatalf("want Giant, got %q", s)
	}
	if _, ok := validate.Size("this size label is far too long"); ok {
		t.Fatal("long size accepted")
	}
}

func TestAddonNameDefault(t *testing.T) {
	if n, ok := validate.AddonName("   "); !ok || n != "Addon" {
		t.Fatalf("want default Addon, got %q", n)
	}
}

func TestIdempotencyKey(t *testing.T) {
	k, ok := validate.IdempotencyKey("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	if !ok || k != "6f9619ff-8b86-d011-b42d-00c04fc964ff" {
		t.Fatalf("want canonical uuid, got %q ok=%v", k, ok)
	}
	if k, ok := validate.IdempotencyKey(""); !ok || k != "" {
		t.Fatal("missing key should be allowed")
	}
	if _, ok := validate.IdempotencyKey("retry-1"); ok {
		t.Fatal("non-uuid key accepted")
	}
}

func TestLimit(t *testing.T) {
	if n := validate.Limit("", 25, 100); n != 25 {
		t.Fatalf("want default 25, got %d", n)
	}
	if n := validate.Limit("500", 25, 100); n != 100 {
		t.Fatalf("want clamp 100, got %d", n)
	}
}
