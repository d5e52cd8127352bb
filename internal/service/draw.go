package service

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	chelper "lottery-server/common/helper"
	"lottery-server/internal/config"
	infmysql "lottery-server/internal/infra/mysql"
	infrds "lottery-server/internal/infra/redis"
	"lottery-server/internal/metrics"
	"lottery-server/internal/model"

	mysqlerr "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// 处理抽奖业务逻辑

// DrawInput 输入参数
type DrawInput struct {
	AccountID      string
	Username       string
	Quantity       int
	PrizeType      string // 可选：限定奖品类型（盲盒抽取传 BLIND_BOX）
	IdempotencyKey string
	TraceID        string
}

// DrawnPrize 单件中奖结果
type DrawnPrize struct {
	PrizeNo     string `json:"prizeNo"`
	PoolEntryID int64  `json:"poolEntryId"`
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	PrizeType   string `json:"prizeType"`
	Image       string `json:"image"`
}

// DrawOutput 抽奖结果
// Partial 为 true 表示奖池余量不足，实际分配少于请求数量
type DrawOutput struct {
	DrawNo    string       `json:"drawNo"`
	Requested int          `json:"requested"`
	Allocated int          `json:"allocated"`
	Partial   bool         `json:"partial"`
	Prizes    []DrawnPrize `json:"prizes"`
}

type DrawService interface {
	Draw(ctx context.Context, in DrawInput) (*DrawOutput, error)
}

type drawService struct{}

func NewDrawService() DrawService { return &drawService{} }

const (
	// Redis 进行中锁 TTL：覆盖事务超时即可，避免长时间阻塞重复请求
	drawIdemLockTTL = 10 * time.Second
	// 结果缓存 TTL：重复请求直接返回第一次成功结果
	drawIdemResultTTL = 24 * time.Hour
)

// 默认事务超时时间，防止长事务占用资源影响并发（若上游已有 deadline，则沿用上游）
const defaultDrawTxTimeout = 3 * time.Second

// Redis key 构造见 internal/infra/redis/keys.go
var (
	ErrInvalidQuantity   = errors.New("invalid draw quantity")
	ErrPoolExhausted     = errors.New("prize pool exhausted")
	ErrDuplicateInFlight = errors.New("duplicate request in flight")
)

// Draw 处理抽奖主流程：
// 加权随机抽取，条件扣减库存，落中奖台账
func (s *drawService) Draw(ctx context.Context, in DrawInput) (*DrawOutput, error) {

	start := time.Now()
	result := "fail"
	defer func() { metrics.RecordDraw(result, start) }()

	// ========== 数量校验 ==========
	maxQty := 10
	if cfg := config.GetCurrent(); cfg != nil {
		maxQty = cfg.MaxDrawQuantity()
	}
	if in.Quantity <= 0 || in.Quantity > maxQty {
		fmt.Printf("[Draw]  无效的抽取数量: quantity=%d, max=%d, trace_id=%s\n",
			in.Quantity, maxQty, in.TraceID)
		return nil, ErrInvalidQuantity
	}

	// 打印接收到的抽奖请求
	fmt.Printf("[Draw]  收到抽奖请求: account_id=%s, quantity=%d, prize_type=%s, idem_key=%s, trace_id=%s\n",
		in.AccountID, in.Quantity, in.PrizeType, in.IdempotencyKey, in.TraceID)

	// Redis 快路径：若已有结果缓存，直接返回
	if r := infrds.Client(); r != nil && in.IdempotencyKey != "" {
		resultKey := infrds.DrawIdemResultKey(in.AccountID, in.IdempotencyKey)
		if bs, _ := r.Get(ctx, resultKey).Bytes(); len(bs) > 0 {
			var out DrawOutput
			if json.Unmarshal(bs, &out) == nil {
				fmt.Printf("[Draw]  Redis 缓存命中: idem_key=%s, draw_no=%s, trace_id=%s\n",
					in.IdempotencyKey, out.DrawNo, in.TraceID)
				result = "success"
				return &out, nil
			}
		}

		// 生成唯一锁值，防止误删其他请求的锁
		lockValue := uuid.New().String()
		lockKey := infrds.DrawIdemLockKey(in.AccountID, in.IdempotencyKey)

		// 进行中锁，吸收瞬时重复
		ok, _ := r.SetNX(ctx, lockKey, lockValue, drawIdemLockTTL).Result()
		if !ok {
			// 检查是否有缓存的结果
			if bs, _ := r.Get(ctx, resultKey).Bytes(); len(bs) > 0 {
				var out DrawOutput
				if json.Unmarshal(bs, &out) == nil {
					fmt.Printf("[Draw] Redis 缓存命中（重复请求）: idem_key=%s, draw_no=%s, trace_id=%s\n",
						in.IdempotencyKey, out.DrawNo, in.TraceID)
					result = "success"
					return &out, nil
				}
			}
			fmt.Printf("[Draw]  重复请求进行中: idem_key=%s, trace_id=%s\n",
				in.IdempotencyKey, in.TraceID)
			return nil, ErrDuplicateInFlight
		}

		// 使用 Lua 脚本原子释放锁（仅当锁值匹配时删除）
		defer func() {
			script := `
				if redis.call("get", KEYS[1]) == ARGV[1] then
					return redis.call("del", KEYS[1])
				else
					return 0
				end
			`
			res, err := r.Eval(ctx, script, []string{lockKey}, lockValue).Result()
			if err != nil {
				fmt.Printf("[Draw] 释放分布式锁失败: idem_key=%s, error=%v, trace_id=%s\n",
					in.IdempotencyKey, err, in.TraceID)
			} else if res == int64(0) {
				fmt.Printf("[Draw] 分布式锁已被其他请求释放或过期: idem_key=%s, trace_id=%s\n",
					in.IdempotencyKey, in.TraceID)
			}
		}()
	}

	// 开启 MySQL 事务（带默认超时，防止长事务影响并发）。
	// 若上游 ctx 已设置 deadline，则沿用；否则使用默认超时。
	txTimeout := defaultDrawTxTimeout
	if cfg := config.GetCurrent(); cfg != nil && cfg.Lottery.TxTimeoutSec > 0 {
		txTimeout = time.Duration(cfg.Lottery.TxTimeoutSec) * time.Second
	}
	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, txTimeout)
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		fmt.Printf("[Draw] 开启事务失败: error=%v, account_id=%s, trace_id=%s\n",
			err, in.AccountID, in.TraceID)
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	drawNo := generateDrawNo(in.AccountID)

	// 幂等：先占幂等键，ref 记录批次号
	if in.IdempotencyKey != "" {
		if err := (&model.IdempotencyKey{IdempotencyKey: in.IdempotencyKey, Purpose: "draw", Ref: drawNo}).Insert(txCtx, tx); err != nil {
			// 若幂等冲突：尝试返回上次结果
			if me, ok := err.(*mysqlerr.MySQLError); ok && me.Number == 1062 {
				fmt.Printf("[Draw]  幂等键冲突，尝试返回上次结果: idem_key=%s, trace_id=%s\n",
					in.IdempotencyKey, in.TraceID)
				_ = tx.Rollback()
				// Redis 先查
				if r := infrds.Client(); r != nil {
					if bs, _ := r.Get(ctx, infrds.DrawIdemResultKey(in.AccountID, in.IdempotencyKey)).Bytes(); len(bs) > 0 {
						var out DrawOutput
						if json.Unmarshal(bs, &out) == nil {
							result = "success"
							return &out, nil
						}
					}
				}
				// DB 回源：根据幂等键查批次号，再按批次号重建结果
				ref, e1 := model.SelectRefByIdemKey(ctx, infmysql.SQLX(), in.IdempotencyKey)
				if e1 == nil && ref != "" {
					awards, e2 := model.ListAwardsByDrawNo(ctx, infmysql.SQLX(), ref)
					if e2 == nil && len(awards) > 0 {
						out := buildDrawOutput(ref, in.Quantity, awards)
						fmt.Printf("[Draw]  从数据库返回上次结果: draw_no=%s, allocated=%d, trace_id=%s\n",
							ref, out.Allocated, in.TraceID)
						result = "success"
						return out, nil
					}
				}
			}
			fmt.Printf("[Draw]  插入幂等键失败: error=%v, idem_key=%s, trace_id=%s\n",
				err, in.IdempotencyKey, in.TraceID)
			return nil, fmt.Errorf("idempotency conflict or insert failed: %w", err)
		}
	}

	// 加载候选集：剩余数量大于0的奖池条目（可按类型限定）
	entries, err := model.ListAvailableEntries(txCtx, tx, in.PrizeType)
	if err != nil {
		fmt.Printf("[Draw]  查询奖池失败: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}
	if len(entries) == 0 {
		fmt.Printf("[Draw]  奖池已空: prize_type=%s, trace_id=%s\n", in.PrizeType, in.TraceID)
		result = "exhausted"
		return nil, ErrPoolExhausted
	}

	cands := make([]sampleCandidate, 0, len(entries))
	byID := make(map[int64]*model.PoolEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		cands = append(cands, sampleCandidate{ID: e.ID, Remaining: e.Quantity})
		byID[e.ID] = e
	}

	// 加权随机抽取：以剩余数量为权重，扣减成功才算分配
	rng := chelper.NewRand()
	allocated := sampleAndAllocate(cands, in.Quantity, rng, func(id int64) bool {
		ok, derr := model.DecrementQuantity(txCtx, tx, id)
		if derr != nil {
			fmt.Printf("[Draw]  扣减库存失败: entry_id=%d, error=%v, trace_id=%s\n", id, derr, in.TraceID)
			return false
		}
		if !ok {
			metrics.RecordSampleRetry()
		}
		return ok
	})

	if len(allocated) == 0 {
		fmt.Printf("[Draw]  全部候选扣减失败，奖池已空: trace_id=%s\n", in.TraceID)
		result = "exhausted"
		return nil, ErrPoolExhausted
	}

	// 落中奖台账（快照奖品信息）
	prizes := make([]DrawnPrize, 0, len(allocated))
	for _, entryID := range allocated {
		e := byID[entryID]
		award := &model.PrizeAward{
			PrizeNo:     generatePrizeNo(),
			DrawNo:      drawNo,
			AccountID:   in.AccountID,
			PoolEntryID: e.ID,
			ItemID:      e.ItemID,
			PrizeName:   e.Name,
			PrizeType:   e.PrizeType,
			Image:       e.Image,
			TraceID:     in.TraceID,
		}
		if err := award.Insert(txCtx, tx); err != nil {
			fmt.Printf("[Draw]  写入中奖台账失败: error=%v, prize_no=%s, trace_id=%s\n",
				err, award.PrizeNo, in.TraceID)
			return nil, err
		}
		prizes = append(prizes, DrawnPrize{
			PrizeNo:     award.PrizeNo,
			PoolEntryID: e.ID,
			ItemID:      e.ItemID,
			Name:        e.Name,
			PrizeType:   e.PrizeType,
			Image:       e.Image,
		})
	}

	// Outbox 消息（异步）
	payload := map[string]any{
		"event":      "prize_awarded",
		"draw_no":    drawNo,
		"account_id": in.AccountID,
		"requested":  in.Quantity,
		"allocated":  len(allocated),
		"prizes":     prizes,
	}
	if err := model.CreateOutbox(txCtx, tx, "prize_awarded", drawNo, payload); err != nil {
		fmt.Printf("[Draw]  写入 Outbox 失败: error=%v, draw_no=%s, trace_id=%s\n",
			err, drawNo, in.TraceID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Draw]  提交事务失败: error=%v, draw_no=%s, trace_id=%s\n",
			err, drawNo, in.TraceID)
		return nil, err
	}

	for _, p := range prizes {
		metrics.RecordPrizeAllocated(p.PrizeType)
	}

	out := &DrawOutput{
		DrawNo:    drawNo,
		Requested: in.Quantity,
		Allocated: len(allocated),
		Partial:   len(allocated) < in.Quantity,
		Prizes:    prizes,
	}
	if out.Partial {
		result = "partial"
		fmt.Printf("[Draw]  奖池余量不足，部分分配: requested=%d, allocated=%d, draw_no=%s, trace_id=%s\n",
			in.Quantity, len(allocated), drawNo, in.TraceID)
	} else {
		result = "success"
	}

	// 写入 Redis 结果缓存（降级容错）
	if r := infrds.Client(); r != nil && in.IdempotencyKey != "" {
		if b, e := json.Marshal(out); e == nil {
			_ = r.Set(ctx, infrds.DrawIdemResultKey(in.AccountID, in.IdempotencyKey), b, drawIdemResultTTL).Err()
		}
	}

	return out, nil
}

// sampleCandidate 抽样候选：条目ID与本地剩余计数
type sampleCandidate struct {
	ID        int64
	Remaining int64
}

// sampleAndAllocate 加权随机抽取并逐件确认分配
// 权重为本地剩余计数；tryDecrement 为分配权威（返回 false 表示库存竞争失败），
// 失败的条目本地清零后重采样，直到分配满 quantity 或候选耗尽。
// 返回按抽取顺序排列的条目ID（允许同一条目多次命中）。
func sampleAndAllocate(cands []sampleCandidate, quantity int, rng *rand.Rand, tryDecrement func(id int64) bool) []int64 {
	allocated := make([]int64, 0, quantity)

	for len(allocated) < quantity {
		var total int64
		for _, c := range cands {
			total += c.Remaining
		}
		if total <= 0 {
			break
		}

		// 按剩余数量加权随机命中一个条目
		n := rng.Int63n(total)
		idx := -1
		for i, c := range cands {
			if n < c.Remaining {
				idx = i
				break
			}
			n -= c.Remaining
		}
		if idx < 0 {
			break
		}

		if tryDecrement(cands[idx].ID) {
			allocated = append(allocated, cands[idx].ID)
			cands[idx].Remaining--
		} else {
			// 库存竞争失败：本地清零，该条目不再参与后续抽取
			cands[idx].Remaining = 0
		}
	}

	return allocated
}

// buildDrawOutput 从中奖台账重建抽奖结果（幂等回源用）
func buildDrawOutput(drawNo string, requested int, awards []model.PrizeAward) *DrawOutput {
	prizes := make([]DrawnPrize, 0, len(awards))
	for _, a := range awards {
		prizes = append(prizes, DrawnPrize{
			PrizeNo:     a.PrizeNo,
			PoolEntryID: a.PoolEntryID,
			ItemID:      a.ItemID,
			Name:        a.PrizeName,
			PrizeType:   a.PrizeType,
			Image:       a.Image,
		})
	}
	return &DrawOutput{
		DrawNo:    drawNo,
		Requested: requested,
		Allocated: len(prizes),
		Partial:   requested > 0 && len(prizes) < requested,
		Prizes:    prizes,
	}
}

// generateDrawNo 生成可读的抽奖批次号
// 格式：DR{YYYYMMDD}{HHmmss}{账户ID后4位}{随机3位十六进制}
func generateDrawNo(accountID string) string {
	now := time.Now()
	dateTime := now.Format("20060102150405")
	suffix := accountID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	randomBytes := make([]byte, 2)
	cryptorand.Read(randomBytes)
	randomHex := strings.ToUpper(hex.EncodeToString(randomBytes)[:3])

	return fmt.Sprintf("DR%s%s%s", dateTime, suffix, randomHex)
}

// generatePrizeNo 生成奖品编号
// 格式：PZ{YYYYMMDDHHmmss}{随机6位十六进制}
func generatePrizeNo() string {
	now := time.Now()
	dateTime := now.Format("20060102150405")
	randomBytes := make([]byte, 3)
	cryptorand.Read(randomBytes)
	return fmt.Sprintf("PZ%s%s", dateTime, strings.ToUpper(hex.EncodeToString(randomBytes)))
}
