package service

import (
	"errors"
	"testing"

	"lottery-server/internal/model"
)

func TestCheckEntryRemovable(t *testing.T) {
	entry := &model.PoolEntry{ID: 1, ItemID: "book-1001", Name: "程序员修炼之道", PrizeType: "BOOK", Quantity: 0}

	if err := checkEntryRemovable(entry, 0); err != nil {
		t.Fatalf("expected removable, got %v", err)
	}
	if err := checkEntryRemovable(nil, 0); !errors.Is(err, ErrPoolEntryNotFound) {
		t.Fatalf("err = %v, want ErrPoolEntryNotFound", err)
	}
	// 名下还有未消费中奖记录时拒绝删除
	if err := checkEntryRemovable(entry, 3); !errors.Is(err, ErrEntryInUse) {
		t.Fatalf("err = %v, want ErrEntryInUse", err)
	}
}
