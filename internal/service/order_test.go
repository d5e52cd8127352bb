package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestValidateRecipient(t *testing.T) {
	ok := Recipient{Name: "张三", Telephone: "+86-13800138000", Location: "上海市浦东新区"}
	if err := ValidateRecipient(ok); err != nil {
		t.Fatalf("valid recipient rejected: %v", err)
	}

	cases := []Recipient{
		{Name: "", Telephone: "13800138000", Location: "somewhere"},
		{Name: "   ", Telephone: "13800138000", Location: "somewhere"},
		{Name: "n", Telephone: "", Location: "somewhere"},
		{Name: "n", Telephone: "abc", Location: "somewhere"},
		{Name: "n", Telephone: "123", Location: "somewhere"}, // 少于5位
		{Name: "n", Telephone: "13800138000", Location: ""},
	}
	for i, c := range cases {
		err := ValidateRecipient(c)
		if err == nil {
			t.Fatalf("case %d: invalid recipient accepted: %+v", i, c)
		}
		if !errors.Is(err, ErrInvalidRecipient) {
			t.Fatalf("case %d: error not wrapping ErrInvalidRecipient: %v", i, err)
		}
	}
}

func TestDedupeStrings(t *testing.T) {
	in := []string{"PZ1", " PZ2 ", "PZ1", "", "  ", "PZ3", "PZ2"}
	got := dedupeStrings(in)
	want := []string{"PZ1", "PZ2", "PZ3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupe got %v, want %v", got, want)
	}
	if got := dedupeStrings(nil); len(got) != 0 {
		t.Fatalf("dedupe nil got %v", got)
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	no := generateOrderNo("u1")
	if !strings.HasPrefix(no, "OD") {
		t.Fatalf("missing OD prefix: %s", no)
	}
	// 账户ID不足4位时直接使用
	if !strings.Contains(no, "u1") {
		t.Fatalf("missing short account suffix: %s", no)
	}
}

func TestGenerateCouponNoFormat(t *testing.T) {
	no := generateCouponNo()
	if !strings.HasPrefix(no, "CP") {
		t.Fatalf("missing CP prefix: %s", no)
	}
	if len(no) != 2+14+6 {
		t.Fatalf("unexpected length %d: %s", len(no), no)
	}
}
