package api

import (
	"errors"
	"strings"

	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/config"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"

	mysqlerr "github.com/go-sql-driver/mysql"
)

var newBlindBoxService = func() service.BlindBoxService {
	return service.NewBlindBoxService(service.NewDrawService())
}

type BlindBoxController struct{ beego.Controller }

// Draw 盲盒抽取：POST /api/lottery/blindbox
// 响应只包含不透明的奖品编号，内容通过揭晓接口获取
func (c *BlindBoxController) Draw() {
	// 动态开关：运营可临时下线盲盒抽取
	if config.GetFeatureFlag("blindbox_paused") {
		response.ErrorWithMessage(&c.Controller, 503, response.CodeBusinessError, "盲盒抽取暂停开放", helper.GetTraceID(c.Ctx))
		return
	}

	dp, ok, msg := helper.ParseAndValidateDraw(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newBlindBoxService()
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	out, err := svc.DrawBlindBox(c.Ctx.Request.Context(), service.DrawInput{
		AccountID:      accountID,
		Quantity:       dp.Quantity,
		IdempotencyKey: dp.IdempotencyKey,
		TraceID:        traceID,
	})
	if err != nil {
		if me, ok := err.(*mysqlerr.MySQLError); ok && me.Number == 1062 {
			response.Conflict(&c.Controller, response.CodeDuplicateKey, traceID)
			return
		}
		if errors.Is(err, service.ErrDuplicateInFlight) {
			response.Accepted(&c.Controller, "重复请求进行中，请稍后重试", traceID)
			return
		}
		if errors.Is(err, service.ErrInvalidQuantity) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInvalidQuantity, "抽取数量非法", traceID)
			return
		}
		if errors.Is(err, service.ErrPoolExhausted) {
			response.Conflict(&c.Controller, response.CodePoolExhausted, traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// Content 揭晓盲盒内容：GET /api/lottery/blindbox/:id
func (c *BlindBoxController) Content() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	prizeNo := strings.TrimSpace(c.Ctx.Input.Param(":id"))
	if prizeNo == "" {
		response.BadRequest(&c.Controller, "prize no required", traceID)
		return
	}

	content, err := newBlindBoxService().GetContent(c.Ctx.Request.Context(), accountID, prizeNo)
	if err != nil {
		if errors.Is(err, service.ErrPrizeNotFound) {
			response.NotFound(&c.Controller, "盲盒不存在", traceID)
			return
		}
		if errors.Is(err, service.ErrNotOwned) {
			response.Forbidden(&c.Controller, response.CodeNotOwned, traceID)
			return
		}
		if errors.Is(err, service.ErrNotBlindBox) {
			response.BadRequest(&c.Controller, "该奖品不是盲盒", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, content, traceID)
}
