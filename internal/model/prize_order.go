package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// PrizeOrder 对应 prize_orders 表（发货单）
// 一张发货单对应一次批量消费，奖品明细通过 prize_awards.order_no 关联
type PrizeOrder struct {
	OrderNo           string `db:"order_no"`           // 发货单号(主键, OD前缀)
	AccountID         string `db:"account_id"`         // 下单账户ID
	RecipientName     string `db:"recipient_name"`     // 收件人姓名
	RecipientPhone    string `db:"recipient_phone"`    // 收件人电话
	RecipientLocation string `db:"recipient_location"` // 收件地址
	PrizeCount        int    `db:"prize_count"`        // 奖品数量
	TraceID           string `db:"trace_id"`           // 链路追踪ID
	CreatedAt         int64  `db:"created_at"`         // 创建时间(毫秒戳)
	UpdatedAt         int64  `db:"updated_at"`         // 更新时间(毫秒戳)
}

const prizeOrderColumns = "order_no, account_id, recipient_name, recipient_phone, recipient_location, prize_count, trace_id, created_at, updated_at"

// Insert 插入一条发货单记录
func (o *PrizeOrder) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()

	sqlStr := `INSERT INTO prize_orders (order_no, account_id, recipient_name, recipient_phone, recipient_location, prize_count, trace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr, o.OrderNo, o.AccountID, o.RecipientName, o.RecipientPhone,
		o.RecipientLocation, o.PrizeCount, o.TraceID, now, now)
	if err != nil {
		return err
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return nil
}

// GetOrderByNo 按发货单号查询，不存在返回 (nil, nil)
func GetOrderByNo(ctx context.Context, exec sqlx.ExtContext, orderNo string) (*PrizeOrder, error) {
	sqlStr := "SELECT " + prizeOrderColumns + " FROM prize_orders WHERE order_no = ?"
	var o PrizeOrder
	if err := sqlx.GetContext(ctx, exec, &o, sqlStr, orderNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// ListOrdersByAccount 查询账户的发货单（按创建时间倒序，最多 limit 条）
func ListOrdersByAccount(ctx context.Context, exec sqlx.ExtContext, accountID string, limit int) ([]PrizeOrder, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	sqlStr := "SELECT " + prizeOrderColumns + " FROM prize_orders WHERE account_id = ? ORDER BY created_at DESC LIMIT ?"
	var out []PrizeOrder
	if err := sqlx.SelectContext(ctx, exec, &out, sqlStr, accountID, limit); err != nil {
		return nil, err
	}
	return out, nil
}
