package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lottery-server/common"

	g "github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ProductDiscount 对应 product_discount 表（商品折扣）
// rate 为折扣率(0,1]，0.85 表示八五折；生效区间为 [start_at, end_at) 毫秒戳
type ProductDiscount struct {
	ID        int64           `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"productId"` // 商品ID
	Title     string          `db:"title" json:"title"`          // 活动标题
	Rate      decimal.Decimal `db:"rate" json:"rate"`            // 折扣率
	StartAt   int64           `db:"start_at" json:"startAt"`     // 生效时间(毫秒戳)
	EndAt     int64           `db:"end_at" json:"endAt"`         // 失效时间(毫秒戳)
	CreatedAt int64           `db:"created_at" json:"created_at"`
	UpdatedAt int64           `db:"updated_at" json:"updated_at"`
}

// Insert 插入一条折扣记录，回填自增ID
func (d *ProductDiscount) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	res, err := common.InsertCtx(ctx, exec, "product_discount", g.Record{
		"product_id": d.ProductID,
		"title":      d.Title,
		"rate":       d.Rate.String(),
		"start_at":   d.StartAt,
		"end_at":     d.EndAt,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// ListActiveDiscounts 查询当前生效的折扣
func ListActiveDiscounts(ctx context.Context, db *sqlx.DB, nowMs int64) ([]ProductDiscount, error) {
	var out []ProductDiscount
	err := common.SelectAllCtx(ctx, &out, common.QueryArg{
		Db:     db,
		Table:  "product_discount",
		Fields: common.EnumFields(ProductDiscount{}),
		Ex: []g.Expression{
			g.C("start_at").Lte(nowMs),
			g.C("end_at").Gt(nowMs),
		},
		Order: []exp.OrderedExpression{g.C("end_at").Asc()},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDiscountByProduct 查询某商品当前生效的折扣，不存在返回 (nil, nil)
func GetDiscountByProduct(ctx context.Context, exec sqlx.ExtContext, productID string, nowMs int64) (*ProductDiscount, error) {
	var d ProductDiscount
	err := common.SelectOneExtCtx(ctx, exec, &d, "product_discount", common.EnumFields(ProductDiscount{}),
		g.C("product_id").Eq(productID),
		g.C("start_at").Lte(nowMs),
		g.C("end_at").Gt(nowMs),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// DeleteDiscount 删除折扣记录
func DeleteDiscount(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	res, err := common.DeleteCtx(ctx, exec, "product_discount", g.C("id").Eq(id))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
