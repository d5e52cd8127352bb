package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lottery-server/common"
	"lottery-server/common/constant"

	g "github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CouponType 对应 coupon_type 表（优惠券模板）
// amount 为面额，min_spend 为使用门槛（满减），valid_days 为领取后有效天数
type CouponType struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`            // 券名称
	Amount    decimal.Decimal `db:"amount" json:"amount"`        // 面额
	MinSpend  decimal.Decimal `db:"min_spend" json:"minSpend"`   // 使用门槛
	ValidDays int             `db:"valid_days" json:"validDays"` // 有效天数
	CreatedAt int64           `db:"created_at" json:"created_at"`
	UpdatedAt int64           `db:"updated_at" json:"updated_at"`
}

// Insert 插入一条优惠券模板，回填自增ID
func (t *CouponType) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	res, err := common.InsertCtx(ctx, exec, "coupon_type", g.Record{
		"name":       t.Name,
		"amount":     t.Amount.String(),
		"min_spend":  t.MinSpend.String(),
		"valid_days": t.ValidDays,
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
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// ListCouponTypes 查询全部优惠券模板
func ListCouponTypes(ctx context.Context, db *sqlx.DB) ([]CouponType, error) {
	var out []CouponType
	err := common.SelectAllCtx(ctx, &out, common.QueryArg{
		Db:     db,
		Table:  "coupon_type",
		Fields: common.EnumFields(CouponType{}),
		Order:  []exp.OrderedExpression{g.C("id").Asc()},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCouponTypeByID 按ID查询优惠券模板，不存在返回 (nil, nil)
func GetCouponTypeByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*CouponType, error) {
	var t CouponType
	err := common.SelectOneExtCtx(ctx, exec, &t, "coupon_type", common.EnumFields(CouponType{}), g.C("id").Eq(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// UserCoupon 对应 user_coupon 表（账户持有的优惠券）
// 面额/门槛为发放时刻的模板快照；status: 1=未使用 2=已使用 3=已过期
type UserCoupon struct {
	CouponNo     string          `db:"coupon_no" json:"couponNo"` // 券号(主键, CP前缀)
	AccountID    string          `db:"account_id" json:"-"`
	CouponTypeID int64           `db:"coupon_type_id" json:"couponTypeId"`
	Name         string          `db:"name" json:"name"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	MinSpend     decimal.Decimal `db:"min_spend" json:"minSpend"`
	Status       int8            `db:"status" json:"status"`
	PrizeNo      string          `db:"prize_no" json:"prizeNo,omitempty"` // 来源中奖编号（抽奖发放时回填）
	ExpireAt     int64           `db:"expire_at" json:"expireAt"`         // 过期时间(毫秒戳)
	CreatedAt    int64           `db:"created_at" json:"created_at"`
	UpdatedAt    int64           `db:"updated_at" json:"updated_at"`
}

// Insert 发放一张优惠券
func (c *UserCoupon) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	_, err := common.InsertCtx(ctx, exec, "user_coupon", g.Record{
		"coupon_no":      c.CouponNo,
		"account_id":     c.AccountID,
		"coupon_type_id": c.CouponTypeID,
		"name":           c.Name,
		"amount":         c.Amount.String(),
		"min_spend":      c.MinSpend.String(),
		"status":         constant.CouponUnused,
		"prize_no":       c.PrizeNo,
		"expire_at":      c.ExpireAt,
		"created_at":     now,
		"updated_at":     now,
	})
	if err != nil {
		return err
	}
	c.Status = constant.CouponUnused
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// ListCouponsByAccount 查询账户的优惠券（按发放时间倒序）
func ListCouponsByAccount(ctx context.Context, db *sqlx.DB, accountID string) ([]UserCoupon, error) {
	var out []UserCoupon
	err := common.SelectAllCtx(ctx, &out, common.QueryArg{
		Db:     db,
		Table:  "user_coupon",
		Fields: common.EnumFields(UserCoupon{}),
		Ex:     []g.Expression{g.C("account_id").Eq(accountID)},
		Order:  []exp.OrderedExpression{g.C("created_at").Desc()},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCouponByNo 按券号查询，不存在返回 (nil, nil)
func GetCouponByNo(ctx context.Context, exec sqlx.ExtContext, couponNo string) (*UserCoupon, error) {
	var c UserCoupon
	err := common.SelectOneExtCtx(ctx, exec, &c, "user_coupon", common.EnumFields(UserCoupon{}), g.C("coupon_no").Eq(couponNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// MarkCouponUsed 核销优惠券
// 条件更新：仅当券属于该账户、状态为未使用且未过期时生效，返回是否核销成功
func MarkCouponUsed(ctx context.Context, exec sqlx.ExtContext, couponNo, accountID string, nowMs int64) (bool, error) {
	res, err := common.UpdateCtx(ctx, exec, "user_coupon", g.Record{
		"status":     constant.CouponUsed,
		"updated_at": nowMs,
	},
		g.C("coupon_no").Eq(couponNo),
		g.C("account_id").Eq(accountID),
		g.C("status").Eq(constant.CouponUnused),
		g.C("expire_at").Gt(nowMs),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpireCoupons 批量将已过期的未使用券置为过期状态，返回更新行数
// 由后台任务周期调用
func ExpireCoupons(ctx context.Context, exec sqlx.ExtContext, nowMs int64) (int64, error) {
	res, err := common.UpdateCtx(ctx, exec, "user_coupon", g.Record{
		"status":     constant.CouponExpired,
		"updated_at": nowMs,
	},
		g.C("status").Eq(constant.CouponUnused),
		g.C("expire_at").Lte(nowMs),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
