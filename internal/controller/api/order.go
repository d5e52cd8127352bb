package api

import (
	"errors"

	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newOrderService = service.NewOrderService

type OrderController struct{ beego.Controller }

// Generate 生成发货单：POST /api/lottery/order
// 批量消费奖品，全部成功或全部失败
func (c *OrderController) Generate() {
	// 1) 解析入参与基本校验
	op, ok, msg := helper.ParseAndValidateOrder(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newOrderService()
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	out, err := svc.GenerateOrder(c.Ctx.Request.Context(), service.OrderInput{
		AccountID: accountID,
		PrizeNos:  op.PrizeIDs,
		Recipient: service.Recipient{
			Name:      op.Recipient.Name,
			Telephone: op.Recipient.Telephone,
			Location:  op.Recipient.Location,
		},
		TraceID: traceID,
	})
	if err != nil {
		// 收件人信息不完整
		if errors.Is(err, service.ErrInvalidRecipient) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInvalidRecipient, err.Error(), traceID)
			return
		}
		if errors.Is(err, service.ErrNoPrizes) {
			response.BadRequest(&c.Controller, "未选择奖品", traceID)
			return
		}
		// 奖品不存在
		if errors.Is(err, service.ErrPrizeNotFound) {
			response.NotFound(&c.Controller, "奖品不存在", traceID)
			return
		}
		// 归属不匹配
		if errors.Is(err, service.ErrNotOwned) {
			response.Forbidden(&c.Controller, response.CodeNotOwned, traceID)
			return
		}
		// 重复消费（防双花）
		if errors.Is(err, service.ErrAlreadyGenerated) {
			response.Conflict(&c.Controller, response.CodeAlreadyGenerated, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// List 查询发货单：GET /api/lottery/order
func (c *OrderController) List() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	limit, _ := c.GetInt("limit", 10)
	orders, err := newOrderService().ListOrders(c.Ctx.Request.Context(), accountID, limit)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, orders, traceID)
}

// Detail 查询发货单详情：GET /api/lottery/order/:id
// :id 为发货单号，仅允许查询本人的发货单
func (c *OrderController) Detail() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	orderNo := c.Ctx.Input.Param(":id")
	if orderNo == "" {
		response.BadRequest(&c.Controller, "发货单号不能为空", traceID)
		return
	}

	detail, err := newOrderService().GetOrderDetail(c.Ctx.Request.Context(), accountID, orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(&c.Controller, "发货单不存在", traceID)
			return
		}
		if errors.Is(err, service.ErrNotOwned) {
			response.Forbidden(&c.Controller, response.CodeNotOwned, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, detail, traceID)
}
