package service

import (
	"strings"
	"testing"

	"lottery-server/internal/model"

	"golang.org/x/exp/rand"
)

func TestSampleAndAllocateNoOversell(t *testing.T) {
	cands := []sampleCandidate{
		{ID: 1, Remaining: 2},
		{ID: 2, Remaining: 3},
	}
	rng := rand.New(rand.NewSource(42))
	got := sampleAndAllocate(cands, 10, rng, func(id int64) bool { return true })
	if len(got) != 5 {
		t.Fatalf("allocated %d, want 5 (total pool)", len(got))
	}
	counts := map[int64]int{}
	for _, id := range got {
		counts[id]++
	}
	if counts[1] > 2 {
		t.Fatalf("entry 1 oversold: %d > 2", counts[1])
	}
	if counts[2] > 3 {
		t.Fatalf("entry 2 oversold: %d > 3", counts[2])
	}
}

func TestSampleAndAllocateRepeatsSingleEntry(t *testing.T) {
	cands := []sampleCandidate{{ID: 7, Remaining: 3}}
	rng := rand.New(rand.NewSource(1))
	got := sampleAndAllocate(cands, 3, rng, func(id int64) bool { return true })
	if len(got) != 3 {
		t.Fatalf("allocated %d, want 3", len(got))
	}
	for _, id := range got {
		if id != 7 {
			t.Fatalf("unexpected entry id: %d", id)
		}
	}
}

func TestSampleAndAllocateDecrementRace(t *testing.T) {
	// 条目1库存已被并发请求抢光：tryDecrement 恒失败，应本地清零后只从条目2分配
	cands := []sampleCandidate{
		{ID: 1, Remaining: 100},
		{ID: 2, Remaining: 4},
	}
	rng := rand.New(rand.NewSource(99))
	got := sampleAndAllocate(cands, 4, rng, func(id int64) bool { return id != 1 })
	if len(got) != 4 {
		t.Fatalf("allocated %d, want 4", len(got))
	}
	for _, id := range got {
		if id == 1 {
			t.Fatalf("entry 1 allocated despite decrement failure")
		}
	}
}

func TestSampleAndAllocateAllRacesLost(t *testing.T) {
	cands := []sampleCandidate{
		{ID: 1, Remaining: 5},
		{ID: 2, Remaining: 5},
	}
	rng := rand.New(rand.NewSource(7))
	got := sampleAndAllocate(cands, 3, rng, func(id int64) bool { return false })
	if len(got) != 0 {
		t.Fatalf("allocated %d, want 0", len(got))
	}
}

func TestSampleAndAllocateEmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	if got := sampleAndAllocate(nil, 5, rng, func(id int64) bool { return true }); len(got) != 0 {
		t.Fatalf("allocated %d from empty pool", len(got))
	}
	cands := []sampleCandidate{{ID: 1, Remaining: 0}}
	if got := sampleAndAllocate(cands, 5, rng, func(id int64) bool { return true }); len(got) != 0 {
		t.Fatalf("allocated %d from zero-weight pool", len(got))
	}
}

func TestSampleAndAllocateWeightBias(t *testing.T) {
	// 权重 90:10，抽1000轮单件，重置候选，命中数应明显偏向大权重条目
	rng := rand.New(rand.NewSource(2024))
	hit := map[int64]int{}
	for i := 0; i < 1000; i++ {
		cands := []sampleCandidate{
			{ID: 1, Remaining: 90},
			{ID: 2, Remaining: 10},
		}
		got := sampleAndAllocate(cands, 1, rng, func(id int64) bool { return true })
		if len(got) != 1 {
			t.Fatalf("round %d: allocated %d, want 1", i, len(got))
		}
		hit[got[0]]++
	}
	if hit[1] < 800 || hit[2] < 50 {
		t.Fatalf("weight bias off: hits=%v", hit)
	}
}

func TestGenerateDrawNo(t *testing.T) {
	no := generateDrawNo("acct-12345678")
	if !strings.HasPrefix(no, "DR") {
		t.Fatalf("missing DR prefix: %s", no)
	}
	// DR + 14位时间 + 4位账户后缀 + 3位随机
	if len(no) != 2+14+4+3 {
		t.Fatalf("unexpected length %d: %s", len(no), no)
	}
	if !strings.Contains(no, "5678") {
		t.Fatalf("missing account suffix: %s", no)
	}
}

func TestGeneratePrizeNoUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		no := generatePrizeNo()
		if !strings.HasPrefix(no, "PZ") {
			t.Fatalf("missing PZ prefix: %s", no)
		}
		if _, dup := seen[no]; dup {
			t.Fatalf("duplicate prize no: %s", no)
		}
		seen[no] = struct{}{}
	}
}

func TestBuildDrawOutputPartial(t *testing.T) {
	awards := []model.PrizeAward{
		{PrizeNo: "PZ1", PoolEntryID: 1, PrizeName: "A", PrizeType: "BOOK"},
		{PrizeNo: "PZ2", PoolEntryID: 2, PrizeName: "B", PrizeType: "COUPON"},
	}
	out := buildDrawOutput("DR1", 5, awards)
	if out.Allocated != 2 || !out.Partial {
		t.Fatalf("allocated=%d partial=%v, want 2/true", out.Allocated, out.Partial)
	}
	full := buildDrawOutput("DR2", 2, awards)
	if full.Partial {
		t.Fatalf("partial should be false when allocated == requested")
	}
	if full.Prizes[0].PrizeNo != "PZ1" || full.Prizes[1].Name != "B" {
		t.Fatalf("prize snapshot mismatch: %+v", full.Prizes)
	}
}
