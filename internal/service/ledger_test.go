package service

import (
	"errors"
	"testing"

	"lottery-server/common/constant"
	"lottery-server/internal/model"
)

func ledgerFixture(accountID string) []model.PrizeAward {
	return []model.PrizeAward{
		{PrizeNo: "PZ001", AccountID: accountID, PrizeName: "程序员修炼之道", PrizeType: "BOOK", Status: constant.PrizeStatusAvailable},
		{PrizeNo: "PZ002", AccountID: accountID, PrizeName: "满减券", PrizeType: "COUPON", Status: constant.PrizeStatusAvailable},
		{PrizeNo: "PZ003", AccountID: accountID, PrizeName: "积分", PrizeType: "CREDIT", Status: constant.PrizeStatusAvailable},
	}
}

func TestValidateConsumableOK(t *testing.T) {
	awards := ledgerFixture("acc-1")
	byNo, err := validateConsumable(awards, "acc-1", []string{"PZ001", "PZ002", "PZ003"})
	if err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
	if len(byNo) != 3 {
		t.Fatalf("byNo size = %d, want 3", len(byNo))
	}
	if byNo["PZ002"].PrizeType != "COUPON" {
		t.Fatalf("byNo lost award data: %+v", byNo["PZ002"])
	}
}

func TestValidateConsumableUnknownPrize(t *testing.T) {
	awards := ledgerFixture("acc-1")
	_, err := validateConsumable(awards, "acc-1", []string{"PZ001", "PZ999"})
	if !errors.Is(err, ErrPrizeNotFound) {
		t.Fatalf("err = %v, want ErrPrizeNotFound", err)
	}
}

func TestValidateConsumableNotOwnedFailsWholeBatch(t *testing.T) {
	// 一个奖品归属他人，整批拒绝，即使其余奖品都合法
	awards := ledgerFixture("acc-1")
	awards[1].AccountID = "acc-2"

	_, err := validateConsumable(awards, "acc-1", []string{"PZ001", "PZ002", "PZ003"})
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("err = %v, want ErrNotOwned", err)
	}
}

func TestValidateConsumableSecondConsumeRejected(t *testing.T) {
	awards := ledgerFixture("acc-1")
	prizeNos := []string{"PZ001", "PZ002", "PZ003"}

	byNo, err := validateConsumable(awards, "acc-1", prizeNos)
	if err != nil {
		t.Fatalf("first consume should pass, got %v", err)
	}

	// 模拟第一次消费提交后的状态，再次消费同一批必须整批失败
	consumed := make([]model.PrizeAward, 0, len(awards))
	for _, no := range prizeNos {
		a := byNo[no]
		a.Status = constant.PrizeStatusGenerated
		a.OrderNo = "OD20260101000000ACC1F00"
		consumed = append(consumed, a)
	}
	_, err = validateConsumable(consumed, "acc-1", prizeNos)
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("err = %v, want ErrAlreadyGenerated", err)
	}
	// 拒绝不得改动台账快照
	for _, a := range consumed {
		if a.Status != constant.PrizeStatusGenerated || a.OrderNo == "" {
			t.Fatalf("award mutated by rejected consume: %+v", a)
		}
	}
}

func TestValidateConsumablePartiallyConsumedBatch(t *testing.T) {
	// 批次里混入一个已消费奖品，其余可用也必须整批拒绝
	awards := ledgerFixture("acc-1")
	awards[2].Status = constant.PrizeStatusGenerated

	_, err := validateConsumable(awards, "acc-1", []string{"PZ001", "PZ002", "PZ003"})
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("err = %v, want ErrAlreadyGenerated", err)
	}
}
