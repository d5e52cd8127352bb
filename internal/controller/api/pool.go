package api

import (
	"errors"
	"strconv"

	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newPoolService = service.NewPoolService

type PoolController struct{ beego.Controller }

// Add 新增奖池条目：POST /api/lottery/pool
func (c *PoolController) Add() {
	// 1) 解析入参与基本校验
	pp, ok, msg := helper.ParseAndValidatePoolEntry(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newPoolService()
	traceID := helper.GetTraceID(c.Ctx)

	entry, err := svc.AddEntry(c.Ctx.Request.Context(), service.PoolEntryInput{
		ItemID:      pp.ItemID,
		Name:        pp.Name,
		Description: pp.Description,
		PrizeType:   pp.PrizeType,
		Image:       pp.Image,
		Quantity:    pp.Quantity,
		Operator:    "admin",
		TraceID:     traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPoolEntry) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, entry, traceID)
}

// List 查询奖池：GET /api/lottery/pool
func (c *PoolController) List() {
	traceID := helper.GetTraceID(c.Ctx)

	entries, err := newPoolService().ListPool(c.Ctx.Request.Context())
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, entries, traceID)
}

// Get 查询单个奖池条目：GET /api/lottery/pool/:id
func (c *PoolController) Get() {
	traceID := helper.GetTraceID(c.Ctx)

	idStr := c.Ctx.Input.Param(":id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(&c.Controller, "id must be positive integer", traceID)
		return
	}

	entry, err := newPoolService().GetEntry(c.Ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPoolEntryNotFound) {
			response.NotFound(&c.Controller, "奖池条目不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, entry, traceID)
}

// Update 覆盖奖池条目库存：PUT /api/lottery/pool
func (c *PoolController) Update() {
	pp, ok, msg := helper.ParseAndValidatePoolQuantity(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newPoolService()
	traceID := helper.GetTraceID(c.Ctx)

	entry, err := svc.SetQuantity(c.Ctx.Request.Context(), pp.ID, pp.Quantity, "admin", traceID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPoolEntry) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		if errors.Is(err, service.ErrPoolEntryNotFound) {
			response.NotFound(&c.Controller, "奖池条目不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, entry, traceID)
}

// Remove 删除奖池条目：DELETE /api/lottery/pool/:id
func (c *PoolController) Remove() {
	traceID := helper.GetTraceID(c.Ctx)

	idStr := c.Ctx.Input.Param(":id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(&c.Controller, "id must be positive integer", traceID)
		return
	}

	if err := newPoolService().RemoveEntry(c.Ctx.Request.Context(), id, "admin", traceID); err != nil {
		if errors.Is(err, service.ErrPoolEntryNotFound) {
			response.NotFound(&c.Controller, "奖池条目不存在", traceID)
			return
		}
		// 条目下仍有未消费奖品
		if errors.Is(err, service.ErrEntryInUse) {
			response.Conflict(&c.Controller, response.CodeEntryInUse, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]interface{}{"id": id}, traceID)
}
