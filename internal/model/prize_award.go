package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lottery-server/common/constant"

	"github.com/jmoiron/sqlx"
)

// PrizeAward 对应 prize_awards 表（中奖台账）
// 奖品名称/类型/图片为中奖时刻的快照，奖池条目后续修改不影响已中奖记录
// status: 1=AVAILABLE(未消费) 2=GENERATED(已生成发货单，不可逆)
type PrizeAward struct {
	PrizeNo     string `db:"prize_no"`      // 奖品编号(主键, PZ前缀)
	DrawNo      string `db:"draw_no"`       // 抽奖批次号(DR前缀，同批次共享)
	AccountID   string `db:"account_id"`    // 中奖账户ID
	PoolEntryID int64  `db:"pool_entry_id"` // 来源奖池条目ID
	ItemID      string `db:"item_id"`       // 具体奖品引用快照
	PrizeName   string `db:"prize_name"`    // 奖品名称快照
	PrizeType   string `db:"-"`             // 奖品类型快照（入库为数值枚举）
	Image       string `db:"image"`         // 奖品图片快照
	Status      int8   `db:"status"`        // 奖品状态
	OrderNo     string `db:"order_no"`      // 发货单号（GENERATED 后回填）
	TraceID     string `db:"trace_id"`      // 链路追踪ID
	CreatedAt   int64  `db:"created_at"`    // 中奖时间(毫秒戳)
	UpdatedAt   int64  `db:"updated_at"`    // 更新时间(毫秒戳)
}

type prizeAwardRow struct {
	PrizeNo     string `db:"prize_no"`
	DrawNo      string `db:"draw_no"`
	AccountID   string `db:"account_id"`
	PoolEntryID int64  `db:"pool_entry_id"`
	ItemID      string `db:"item_id"`
	PrizeName   string `db:"prize_name"`
	PrizeCode   int8   `db:"prize_type"`
	Image       string `db:"image"`
	Status      int8   `db:"status"`
	OrderNo     string `db:"order_no"`
	TraceID     string `db:"trace_id"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r prizeAwardRow) toAward() PrizeAward {
	return PrizeAward{
		PrizeNo:     r.PrizeNo,
		DrawNo:      r.DrawNo,
		AccountID:   r.AccountID,
		PoolEntryID: r.PoolEntryID,
		ItemID:      r.ItemID,
		PrizeName:   r.PrizeName,
		PrizeType:   constant.FromPrizeTypeCode(r.PrizeCode),
		Image:       r.Image,
		Status:      r.Status,
		OrderNo:     r.OrderNo,
		TraceID:     r.TraceID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const prizeAwardColumns = "prize_no, draw_no, account_id, pool_entry_id, item_id, prize_name, prize_type, image, status, order_no, trace_id, created_at, updated_at"

// Insert 插入一条中奖记录
func (a *PrizeAward) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	prizeCode := constant.ToPrizeTypeCode(a.PrizeType)

	sqlStr := `INSERT INTO prize_awards (prize_no, draw_no, account_id, pool_entry_id, item_id, prize_name, prize_type, image, status, order_no, trace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr, a.PrizeNo, a.DrawNo, a.AccountID, a.PoolEntryID, a.ItemID, a.PrizeName, prizeCode, a.Image,
		constant.PrizeStatusAvailable, "", a.TraceID, now, now)
	if err != nil {
		return err
	}
	a.Status = constant.PrizeStatusAvailable
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// ListAwardsByAccount 查询账户的全部中奖记录（按中奖时间倒序）
func ListAwardsByAccount(ctx context.Context, exec sqlx.ExtContext, accountID string) ([]PrizeAward, error) {
	sqlStr := "SELECT " + prizeAwardColumns + " FROM prize_awards WHERE account_id = ? ORDER BY created_at DESC, prize_no DESC"
	var rs []prizeAwardRow
	if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr, accountID); err != nil {
		return nil, err
	}
	out := make([]PrizeAward, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toAward())
	}
	return out, nil
}

// ListAwardsByDrawNo 按抽奖批次号查询（幂等回源重建结果用）
func ListAwardsByDrawNo(ctx context.Context, exec sqlx.ExtContext, drawNo string) ([]PrizeAward, error) {
	sqlStr := "SELECT " + prizeAwardColumns + " FROM prize_awards WHERE draw_no = ? ORDER BY prize_no"
	var rs []prizeAwardRow
	if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr, drawNo); err != nil {
		return nil, err
	}
	out := make([]PrizeAward, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toAward())
	}
	return out, nil
}

// ListAwardsByOrderNo 按发货单号查询奖品明细
func ListAwardsByOrderNo(ctx context.Context, exec sqlx.ExtContext, orderNo string) ([]PrizeAward, error) {
	sqlStr := "SELECT " + prizeAwardColumns + " FROM prize_awards WHERE order_no = ? ORDER BY prize_no"
	var rs []prizeAwardRow
	if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr, orderNo); err != nil {
		return nil, err
	}
	out := make([]PrizeAward, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toAward())
	}
	return out, nil
}

// GetAwardByPrizeNo 按奖品编号查询，不存在返回 (nil, nil)
func GetAwardByPrizeNo(ctx context.Context, exec sqlx.ExtContext, prizeNo string) (*PrizeAward, error) {
	sqlStr := "SELECT " + prizeAwardColumns + " FROM prize_awards WHERE prize_no = ?"
	var r prizeAwardRow
	if err := sqlx.GetContext(ctx, exec, &r, sqlStr, prizeNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a := r.toAward()
	return &a, nil
}

// ListAwardsForUpdate 按奖品编号批量查询并加行锁（FOR UPDATE），需要在事务中调用
// 发货单生成前锁定全部奖品，防止并发重复消费
func ListAwardsForUpdate(ctx context.Context, exec sqlx.ExtContext, prizeNos []string) ([]PrizeAward, error) {
	if len(prizeNos) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT "+prizeAwardColumns+" FROM prize_awards WHERE prize_no IN (?) FOR UPDATE", prizeNos)
	if err != nil {
		return nil, err
	}
	query = exec.Rebind(query)

	var rs []prizeAwardRow
	if err := sqlx.SelectContext(ctx, exec, &rs, query, args...); err != nil {
		return nil, err
	}
	out := make([]PrizeAward, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toAward())
	}
	return out, nil
}

// MarkGeneratedBatch 批量置为 GENERATED 并回填发货单号
// 仅更新当前为 AVAILABLE 的记录，返回实际更新行数供调用方核对全量生效
func MarkGeneratedBatch(ctx context.Context, exec sqlx.ExtContext, prizeNos []string, orderNo string) (int64, error) {
	if len(prizeNos) == 0 {
		return 0, nil
	}
	now := time.Now().UnixMilli()

	query, args, err := sqlx.In(
		"UPDATE prize_awards SET status = ?, order_no = ?, updated_at = ? WHERE prize_no IN (?) AND status = ?",
		constant.PrizeStatusGenerated, orderNo, now, prizeNos, constant.PrizeStatusAvailable)
	if err != nil {
		return 0, err
	}
	query = exec.Rebind(query)

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountAvailableByPoolEntry 统计某奖池条目下未消费的中奖数量
// 管理端删除奖池条目前校验，有未消费奖品时拒绝删除
func CountAvailableByPoolEntry(ctx context.Context, exec sqlx.ExtContext, poolEntryID int64) (int64, error) {
	var cnt int64
	sqlStr := "SELECT COUNT(*) FROM prize_awards WHERE pool_entry_id = ? AND status = ?"
	if err := sqlx.GetContext(ctx, exec, &cnt, sqlStr, poolEntryID, constant.PrizeStatusAvailable); err != nil {
		return 0, err
	}
	return cnt, nil
}
