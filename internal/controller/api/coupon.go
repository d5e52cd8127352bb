package api

import (
	"errors"

	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newCouponService = service.NewCouponService

type CouponController struct{ beego.Controller }

// MyCoupons 查询账户优惠券：GET /api/discounts/coupon
func (c *CouponController) MyCoupons() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	coupons, err := newCouponService().ListMyCoupons(c.Ctx.Request.Context(), accountID)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, coupons, traceID)
}

// Use 核销优惠券：POST /api/discounts/coupon
func (c *CouponController) Use() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	cu, ok, msg := helper.ParseAndValidateCouponUse(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}
	couponNo := cu.CouponNo

	if err := newCouponService().UseCoupon(c.Ctx.Request.Context(), accountID, couponNo); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.NotFound(&c.Controller, "优惠券不存在", traceID)
			return
		}
		// 已使用或已过期
		if errors.Is(err, service.ErrCouponNotUsable) {
			response.Conflict(&c.Controller, response.CodeCouponNotUsable, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{"couponNo": couponNo}, traceID)
}

// ListTypes 查询优惠券模板：GET /api/discounts/coupon/type
func (c *CouponController) ListTypes() {
	traceID := helper.GetTraceID(c.Ctx)

	types, err := newCouponService().ListCouponTypes(c.Ctx.Request.Context())
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, types, traceID)
}

// AddType 新增优惠券模板：POST /api/discounts/coupon/type
func (c *CouponController) AddType() {
	tp, ok, msg := helper.ParseAndValidateCouponType(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newCouponService()
	traceID := helper.GetTraceID(c.Ctx)

	tpl, err := svc.CreateCouponType(c.Ctx.Request.Context(), service.CouponTypeInput{
		Name:      tp.Name,
		Amount:    tp.Amount,
		MinSpend:  tp.MinSpend,
		ValidDays: tp.ValidDays,
		TraceID:   traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCouponType) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, tpl, traceID)
}
