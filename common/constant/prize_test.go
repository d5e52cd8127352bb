package constant

import "testing"

func TestPrizeTypeCodeRoundTrip(t *testing.T) {
	for _, s := range []string{PrizeTypeBookStr, PrizeTypeCouponStr, PrizeTypeCreditStr, PrizeTypeBlindBoxStr} {
		c := ToPrizeTypeCode(s)
		if c == 0 {
			t.Fatalf("unknown code for %s", s)
		}
		if got := FromPrizeTypeCode(c); got != s {
			t.Fatalf("round trip %s -> %d -> %s", s, c, got)
		}
	}
	if ToPrizeTypeCode("CASH") != 0 {
		t.Fatalf("unknown type should map to 0")
	}
	if FromPrizeTypeCode(99) != "" {
		t.Fatalf("unknown code should map to empty string")
	}
}

func TestPrizeStatusCode(t *testing.T) {
	if FromPrizeStatusCode(PrizeStatusAvailable) != PrizeStatusAvailableStr {
		t.Fatalf("available mapping broken")
	}
	if FromPrizeStatusCode(PrizeStatusGenerated) != PrizeStatusGeneratedStr {
		t.Fatalf("generated mapping broken")
	}
	if FromPrizeStatusCode(0) != "" {
		t.Fatalf("unknown status should map to empty string")
	}
}
