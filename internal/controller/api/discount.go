package api

import (
	"errors"
	"strconv"
	"strings"

	chelper "lottery-server/common/helper"
	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/shopspring/decimal"
)

var newDiscountService = service.NewDiscountService

type DiscountController struct{ beego.Controller }

// List 查询当前生效折扣：GET /api/discounts
func (c *DiscountController) List() {
	traceID := helper.GetTraceID(c.Ctx)

	discounts, err := newDiscountService().ListActive(c.Ctx.Request.Context())
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, discounts, traceID)
}

// Add 新增折扣：POST /api/discounts
func (c *DiscountController) Add() {
	dp, ok, msg := helper.ParseAndValidateDiscount(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newDiscountService()
	traceID := helper.GetTraceID(c.Ctx)

	d, err := svc.CreateDiscount(c.Ctx.Request.Context(), service.DiscountInput{
		ProductID: dp.ProductID,
		Title:     dp.Title,
		Rate:      dp.Rate,
		StartAt:   dp.StartAt,
		EndAt:     dp.EndAt,
		TraceID:   traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidDiscount) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, d, traceID)
}

// Price 计算商品折后价：GET /api/discounts/price?productId=xx&price=99.90
// 无生效折扣时折后价等于原价
func (c *DiscountController) Price() {
	traceID := helper.GetTraceID(c.Ctx)

	productID := strings.TrimSpace(c.Ctx.Input.Query("productId"))
	priceStr := strings.TrimSpace(c.Ctx.Input.Query("price"))
	if productID == "" || priceStr == "" {
		response.BadRequest(&c.Controller, "productId and price required", traceID)
		return
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil || price.IsNegative() {
		response.BadRequest(&c.Controller, "price must be a non-negative decimal", traceID)
		return
	}

	discounted, d, err := newDiscountService().ApplyDiscount(c.Ctx.Request.Context(), productID, price)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	data := map[string]interface{}{
		"productId":  productID,
		"price":      chelper.TrimDecimal(price),
		"discounted": chelper.TrimDecimal(discounted),
	}
	if d != nil {
		data["rate"] = d.Rate.String()
		data["title"] = d.Title
	}
	response.Success(&c.Controller, data, traceID)
}

// GetByProduct 查询商品生效折扣：GET /api/discounts/:id（:id 为商品ID）
func (c *DiscountController) GetByProduct() {
	traceID := helper.GetTraceID(c.Ctx)

	productID := strings.TrimSpace(c.Ctx.Input.Param(":id"))
	if productID == "" {
		response.BadRequest(&c.Controller, "productId required", traceID)
		return
	}

	d, err := newDiscountService().GetDiscount(c.Ctx.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			response.NotFound(&c.Controller, "折扣不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, d, traceID)
}

// Remove 删除折扣：DELETE /api/discounts/:id
func (c *DiscountController) Remove() {
	traceID := helper.GetTraceID(c.Ctx)

	idStr := c.Ctx.Input.Param(":id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(&c.Controller, "id must be positive integer", traceID)
		return
	}

	if err := newDiscountService().DeleteDiscount(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			response.NotFound(&c.Controller, "折扣不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{"id": id}, traceID)
}
