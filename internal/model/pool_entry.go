package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lottery-server/common/constant"

	"github.com/jmoiron/sqlx"
)

// PoolEntry 对应 prize_pool 表
// 说明：quantity 为剩余可抽数量（非负）；prize_type 入库为数值枚举，模型用字符串
// prize_type: 1=BOOK 2=COUPON 3=CREDIT 4=BLIND_BOX
type PoolEntry struct {
	ID          int64  `db:"id" json:"id"`                   // 奖池条目ID(主键，自增)
	ItemID      string `db:"item_id" json:"itemId"`          // 具体奖品引用(对本引擎不透明)
	Name        string `db:"name" json:"name"`               // 奖品名称(展示用，可空)
	Description string `db:"description" json:"description"` // 奖品描述
	PrizeType   string `db:"-" json:"prizeType"`             // 奖品类型（字符串，入库为数值枚举）
	Image       string `db:"image" json:"image"`             // 奖品图片地址
	Quantity    int64  `db:"quantity" json:"quantity"`       // 剩余数量(非负)
	CreatedAt   int64  `db:"created_at" json:"created_at"`   // 创建时间(毫秒戳)
	UpdatedAt   int64  `db:"updated_at" json:"updated_at"`   // 更新时间(毫秒戳)
}

// poolEntryRow 投影结构：接收数值型 prize_type
type poolEntryRow struct {
	ID          int64  `db:"id"`
	ItemID      string `db:"item_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	PrizeCode   int8   `db:"prize_type"`
	Image       string `db:"image"`
	Quantity    int64  `db:"quantity"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r poolEntryRow) toEntry() PoolEntry {
	return PoolEntry{
		ID:          r.ID,
		ItemID:      r.ItemID,
		Name:        r.Name,
		Description: r.Description,
		PrizeType:   constant.FromPrizeTypeCode(r.PrizeCode),
		Image:       r.Image,
		Quantity:    r.Quantity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const poolEntryColumns = "id, item_id, name, description, prize_type, image, quantity, created_at, updated_at"

// Insert 插入一条奖池条目，回填自增ID
func (p *PoolEntry) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	prizeCode := constant.ToPrizeTypeCode(p.PrizeType)

	// 使用原生 SQL 以避免 goqu 在某些 MySQL 版本上的兼容性问题
	sqlStr := `INSERT INTO prize_pool (item_id, name, description, prize_type, image, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr, p.ItemID, p.Name, p.Description, prizeCode, p.Image, p.Quantity, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// SetPoolQuantity 绝对覆盖剩余数量（管理端使用，非增量）
func SetPoolQuantity(ctx context.Context, exec sqlx.ExtContext, id, quantity int64) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE prize_pool SET quantity = ?, updated_at = ? WHERE id = ?"
	res, err := exec.ExecContext(ctx, sqlStr, quantity, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePoolEntry 删除奖池条目
func DeletePoolEntry(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	res, err := exec.ExecContext(ctx, "DELETE FROM prize_pool WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPoolEntries 查询全部奖池条目（含已抽空的）
func ListPoolEntries(ctx context.Context, exec sqlx.ExtContext) ([]PoolEntry, error) {
	sqlStr := "SELECT " + poolEntryColumns + " FROM prize_pool ORDER BY id"
	var rs []poolEntryRow
	if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr); err != nil {
		return nil, err
	}
	out := make([]PoolEntry, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toEntry())
	}
	return out, nil
}

// ListAvailableEntries 查询剩余数量大于0的奖池条目
// prizeType 可选：非空时只返回该类型（盲盒抽取使用）
func ListAvailableEntries(ctx context.Context, exec sqlx.ExtContext, prizeType string) ([]PoolEntry, error) {
	var rs []poolEntryRow
	if prizeType != "" {
		sqlStr := "SELECT " + poolEntryColumns + " FROM prize_pool WHERE quantity > 0 AND prize_type = ? ORDER BY id"
		if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr, constant.ToPrizeTypeCode(prizeType)); err != nil {
			return nil, err
		}
	} else {
		sqlStr := "SELECT " + poolEntryColumns + " FROM prize_pool WHERE quantity > 0 ORDER BY id"
		if err := sqlx.SelectContext(ctx, exec, &rs, sqlStr); err != nil {
			return nil, err
		}
	}
	out := make([]PoolEntry, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.toEntry())
	}
	return out, nil
}

// GetPoolEntryByID 按ID查询奖池条目，不存在返回 (nil, nil)
func GetPoolEntryByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*PoolEntry, error) {
	sqlStr := "SELECT " + poolEntryColumns + " FROM prize_pool WHERE id = ?"
	var r poolEntryRow
	if err := sqlx.GetContext(ctx, exec, &r, sqlStr, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e := r.toEntry()
	return &e, nil
}

// GetPoolEntryForUpdate 按ID查询并加行锁（FOR UPDATE），需要在事务中调用
func GetPoolEntryForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*PoolEntry, error) {
	sqlStr := "SELECT " + poolEntryColumns + " FROM prize_pool WHERE id = ? FOR UPDATE"
	var r poolEntryRow
	if err := sqlx.GetContext(ctx, exec, &r, sqlStr, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e := r.toEntry()
	return &e, nil
}

// DecrementQuantity 条件扣减一件库存
// 扣减以 quantity > 0 为前提，返回是否扣减成功；并发竞争下失败由调用方重采样
func DecrementQuantity(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE prize_pool SET quantity = quantity - 1, updated_at = ? WHERE id = ? AND quantity > 0"
	res, err := exec.ExecContext(ctx, sqlStr, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
