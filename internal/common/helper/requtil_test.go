package helper

import (
	"strings"
	"testing"
)

func TestIsJSONContentType(t *testing.T) {
	cases := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf8": true,
		"Application/JSON":                true,
		"text/plain":                      false,
		"":                                false,
		"application/x-www-form-urlencoded": false,
	}
	for ct, want := range cases {
		if got := IsJSONContentType(ct); got != want {
			t.Fatalf("IsJSONContentType(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestParseDrawFromJSON(t *testing.T) {
	out, ok, msg := ParseDrawFromJSON(strings.NewReader(`{"quantity":3,"idempotency_key":"k-1"}`))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if out.Quantity != 3 || out.IdempotencyKey != "k-1" {
		t.Fatalf("unexpected parse result: %+v", out)
	}
	if _, ok, _ := ParseDrawFromJSON(strings.NewReader(`{bad`)); ok {
		t.Fatalf("malformed json accepted")
	}
}

func TestValidateDraw(t *testing.T) {
	good := DrawParsed{Quantity: 5, IdempotencyKey: "abc"}
	if ok, msg := ValidateDraw(&good); !ok {
		t.Fatalf("valid draw rejected: %s", msg)
	}
	bads := []DrawParsed{
		{Quantity: 0},
		{Quantity: -1},
		{Quantity: 1001},
		{Quantity: 1, IdempotencyKey: strings.Repeat("x", 65)},
	}
	for i, b := range bads {
		if ok, _ := ValidateDraw(&b); ok {
			t.Fatalf("case %d: invalid draw accepted: %+v", i, b)
		}
	}
}

func TestValidatePoolEntry(t *testing.T) {
	good := PoolEntryParsed{ItemID: "book-1001", Name: "程序员修炼之道", PrizeType: "BOOK", Quantity: 10}
	if ok, msg := ValidatePoolEntry(&good); !ok {
		t.Fatalf("valid pool entry rejected: %s", msg)
	}
	bads := []PoolEntryParsed{
		{ItemID: "", Quantity: 1},
		{ItemID: "   ", Quantity: 1},
		{ItemID: strings.Repeat("x", 65), Quantity: 1},
		{ItemID: "book-1", Quantity: 0},
		{ItemID: "book-1", Quantity: -1},
		{ItemID: "book-1", Name: strings.Repeat("n", 129), Quantity: 1},
	}
	for i, b := range bads {
		if ok, _ := ValidatePoolEntry(&b); ok {
			t.Fatalf("case %d: invalid pool entry accepted: %+v", i, b)
		}
	}
}

func TestValidatePoolQuantity(t *testing.T) {
	good := PoolQuantityParsed{ID: 3, Quantity: 0}
	if ok, msg := ValidatePoolQuantity(&good); !ok {
		t.Fatalf("valid quantity set rejected: %s", msg)
	}
	if ok, _ := ValidatePoolQuantity(&PoolQuantityParsed{ID: 0, Quantity: 1}); ok {
		t.Fatalf("zero id accepted")
	}
	if ok, _ := ValidatePoolQuantity(&PoolQuantityParsed{ID: 1, Quantity: -1}); ok {
		t.Fatalf("negative quantity accepted")
	}
}

func TestParseOrderFromJSON(t *testing.T) {
	body := `{"prizeIds":["PZ1","PZ2"],"recipient":{"name":"李四","telephone":"13800138000","location":"北京"}}`
	out, ok, msg := ParseOrderFromJSON(strings.NewReader(body))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if len(out.PrizeIDs) != 2 || out.Recipient.Name != "李四" {
		t.Fatalf("unexpected parse result: %+v", out)
	}
}

func TestValidateOrder(t *testing.T) {
	good := OrderParsed{PrizeIDs: []string{"PZ1"}}
	if ok, msg := ValidateOrder(&good); !ok {
		t.Fatalf("valid order rejected: %s", msg)
	}
	if ok, _ := ValidateOrder(&OrderParsed{}); ok {
		t.Fatalf("empty prizeIds accepted")
	}
	many := OrderParsed{PrizeIDs: make([]string, 101)}
	for i := range many.PrizeIDs {
		many.PrizeIDs[i] = "PZ"
	}
	if ok, _ := ValidateOrder(&many); ok {
		t.Fatalf("oversized prize list accepted")
	}
	long := OrderParsed{PrizeIDs: []string{strings.Repeat("x", 65)}}
	if ok, _ := ValidateOrder(&long); ok {
		t.Fatalf("overlong prize id accepted")
	}
}

func TestValidateDiscount(t *testing.T) {
	good := DiscountParsed{ProductID: "p-1", Title: "t", Rate: "0.85", StartAt: "2026-01-01 00:00:00", EndAt: "2026-02-01 00:00:00"}
	if ok, msg := ValidateDiscount(&good); !ok {
		t.Fatalf("valid discount rejected: %s", msg)
	}
	bads := []DiscountParsed{
		{ProductID: "", Rate: "0.8", StartAt: "a", EndAt: "b"},
		{ProductID: "p", Rate: "0.8", StartAt: "", EndAt: "b"},
		{ProductID: "p", Rate: "0.8", StartAt: "a", EndAt: ""},
	}
	for i, b := range bads {
		if ok, _ := ValidateDiscount(&b); ok {
			t.Fatalf("case %d: invalid discount accepted: %+v", i, b)
		}
	}
}

func TestValidateCouponType(t *testing.T) {
	good := CouponTypeParsed{Name: "满减券", Amount: "10.00", MinSpend: "100.00", ValidDays: 30}
	if ok, msg := ValidateCouponType(&good); !ok {
		t.Fatalf("valid coupon type rejected: %s", msg)
	}
	if ok, _ := ValidateCouponType(&CouponTypeParsed{Name: "", Amount: "1"}); ok {
		t.Fatalf("empty name accepted")
	}
	if ok, _ := ValidateCouponType(&CouponTypeParsed{Name: "n", Amount: ""}); ok {
		t.Fatalf("empty amount accepted")
	}
}

func TestParseCouponUseFromJSON(t *testing.T) {
	body := `{"couponId":"CP20260101000000ABCDEF","orderId":"order-1001"}`
	out, ok, msg := ParseCouponUseFromJSON(strings.NewReader(body))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if out.CouponNo != "CP20260101000000ABCDEF" || out.OrderNo != "order-1001" {
		t.Fatalf("unexpected parse result: %+v", out)
	}
}

func TestValidateCouponUse(t *testing.T) {
	good := CouponUseParsed{CouponNo: " CP20260101000000ABCDEF ", OrderNo: "order-1001"}
	if ok, msg := ValidateCouponUse(&good); !ok {
		t.Fatalf("valid coupon use rejected: %s", msg)
	}
	if good.CouponNo != "CP20260101000000ABCDEF" {
		t.Fatalf("couponId not trimmed: %q", good.CouponNo)
	}
	if ok, _ := ValidateCouponUse(&CouponUseParsed{OrderNo: "order-1001"}); ok {
		t.Fatalf("empty couponId accepted")
	}
	long := CouponUseParsed{CouponNo: strings.Repeat("C", 65)}
	if ok, _ := ValidateCouponUse(&long); ok {
		t.Fatalf("oversized couponId accepted")
	}
}
