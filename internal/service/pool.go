package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lottery-server/common/constant"
	infmysql "lottery-server/internal/infra/mysql"
	"lottery-server/internal/metrics"
	"lottery-server/internal/model"
)

// 奖池管理业务逻辑

// PoolEntryInput 新增奖池条目的输入参数
type PoolEntryInput struct {
	ItemID      string // 具体奖品引用，必填
	Name        string
	Description string
	PrizeType   string
	Image       string
	Quantity    int64
	Operator    string
	TraceID     string
}

type PoolService interface {
	AddEntry(ctx context.Context, in PoolEntryInput) (*model.PoolEntry, error)
	SetQuantity(ctx context.Context, id, quantity int64, operator, traceID string) (*model.PoolEntry, error)
	RemoveEntry(ctx context.Context, id int64, operator, traceID string) error
	ListPool(ctx context.Context) ([]model.PoolEntry, error)
	GetEntry(ctx context.Context, id int64) (*model.PoolEntry, error)
}

type poolService struct{}

func NewPoolService() PoolService { return &poolService{} }

var (
	ErrInvalidPoolEntry  = errors.New("invalid pool entry")
	ErrPoolEntryNotFound = errors.New("pool entry not found")
	ErrEntryInUse        = errors.New("pool entry has unconsumed prizes")
)

func validatePoolInput(in *PoolEntryInput) error {
	in.ItemID = strings.TrimSpace(in.ItemID)
	if in.ItemID == "" {
		return fmt.Errorf("%w: itemId required", ErrInvalidPoolEntry)
	}
	if constant.ToPrizeTypeCode(in.PrizeType) == 0 {
		return fmt.Errorf("%w: unknown prize type %q", ErrInvalidPoolEntry, in.PrizeType)
	}
	// 新增时零库存没有意义，余量清零走 SetQuantity
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidPoolEntry)
	}
	return nil
}

// AddEntry 新增奖池条目
func (s *poolService) AddEntry(ctx context.Context, in PoolEntryInput) (*model.PoolEntry, error) {
	if err := validatePoolInput(&in); err != nil {
		fmt.Printf("[Pool]  新增奖池条目参数无效: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}

	entry := &model.PoolEntry{
		ItemID:      in.ItemID,
		Name:        in.Name,
		Description: in.Description,
		PrizeType:   in.PrizeType,
		Image:       in.Image,
		Quantity:    in.Quantity,
	}
	if err := entry.Insert(ctx, infmysql.SQLX()); err != nil {
		fmt.Printf("[Pool]  新增奖池条目失败: error=%v, item_id=%s, trace_id=%s\n",
			err, in.ItemID, in.TraceID)
		return nil, err
	}

	auditPool(ctx, entry, model.PoolAuditActionCreate, in.Operator, in.TraceID)
	metrics.SetPoolRemaining(entry.ID, entry.PrizeType, entry.Quantity)

	fmt.Printf("[Pool]  奖池条目已新增: id=%d, item_id=%s, type=%s, quantity=%d, trace_id=%s\n",
		entry.ID, entry.ItemID, entry.PrizeType, entry.Quantity, in.TraceID)
	return entry, nil
}

// SetQuantity 绝对覆盖剩余数量（非增量）
func (s *poolService) SetQuantity(ctx context.Context, id, quantity int64, operator, traceID string) (*model.PoolEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id required", ErrInvalidPoolEntry)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidPoolEntry)
	}

	// 行锁下覆盖，避免与抽奖扣减交错产生脏写
	tx, err := infmysql.SQLX().BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := model.GetPoolEntryForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrPoolEntryNotFound
	}

	if _, err := model.SetPoolQuantity(ctx, tx, id, quantity); err != nil {
		fmt.Printf("[Pool]  覆盖库存失败: error=%v, id=%d, trace_id=%s\n", err, id, traceID)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	entry.Quantity = quantity

	auditPool(ctx, entry, model.PoolAuditActionUpdate, operator, traceID)
	metrics.SetPoolRemaining(entry.ID, entry.PrizeType, entry.Quantity)

	fmt.Printf("[Pool]  奖池库存已覆盖: id=%d, quantity=%d, trace_id=%s\n",
		entry.ID, entry.Quantity, traceID)
	return entry, nil
}

// RemoveEntry 删除奖池条目
// 该条目下仍有未消费的中奖记录时拒绝删除，避免台账悬挂
// 整个检查加删除在同一事务内先锁行再计数，防止与未提交的抽奖交错
func (s *poolService) RemoveEntry(ctx context.Context, id int64, operator, traceID string) error {
	tx, err := infmysql.SQLX().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := model.GetPoolEntryForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	cnt := int64(0)
	if entry != nil {
		if cnt, err = model.CountAvailableByPoolEntry(ctx, tx, id); err != nil {
			return err
		}
	}
	if err := checkEntryRemovable(entry, cnt); err != nil {
		if errors.Is(err, ErrEntryInUse) {
			fmt.Printf("[Pool]  存在未消费中奖记录，拒绝删除: id=%d, available=%d, trace_id=%s\n",
				id, cnt, traceID)
		}
		return err
	}

	ok, err := model.DeletePoolEntry(ctx, tx, id)
	if err != nil {
		fmt.Printf("[Pool]  删除奖池条目失败: error=%v, id=%d, trace_id=%s\n", err, id, traceID)
		return err
	}
	if !ok {
		return ErrPoolEntryNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	auditPool(ctx, entry, model.PoolAuditActionDelete, operator, traceID)

	fmt.Printf("[Pool]  奖池条目已删除: id=%d, name=%s, trace_id=%s\n", id, entry.Name, traceID)
	return nil
}

// checkEntryRemovable 删除前置校验：条目存在且名下没有未消费的中奖记录
func checkEntryRemovable(entry *model.PoolEntry, availableCnt int64) error {
	if entry == nil {
		return ErrPoolEntryNotFound
	}
	if availableCnt > 0 {
		return ErrEntryInUse
	}
	return nil
}

// ListPool 查询全部奖池条目
func (s *poolService) ListPool(ctx context.Context) ([]model.PoolEntry, error) {
	return model.ListPoolEntries(ctx, infmysql.SQLX())
}

// GetEntry 按ID查询单个奖池条目
func (s *poolService) GetEntry(ctx context.Context, id int64) (*model.PoolEntry, error) {
	entry, err := model.GetPoolEntryByID(ctx, infmysql.SQLX(), id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrPoolEntryNotFound
	}
	return entry, nil
}

// auditPool 写奖池管理审计，失败只记录不阻断
func auditPool(ctx context.Context, entry *model.PoolEntry, action int8, operator, traceID string) {
	snapshot, _ := json.Marshal(entry)
	audit := &model.PoolAudit{
		PoolEntryID: entry.ID,
		Action:      action,
		Operator:    operator,
		Snapshot:    string(snapshot),
		TraceID:     traceID,
	}
	if err := audit.Insert(ctx, infmysql.SQLX()); err != nil {
		fmt.Printf("[Pool]  写入审计失败: error=%v, id=%d, trace_id=%s\n", err, entry.ID, traceID)
	}
}
