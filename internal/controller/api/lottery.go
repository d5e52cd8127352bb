package api

import (
	"errors"

	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"
	"lottery-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"

	mysqlerr "github.com/go-sql-driver/mysql"
)

var newDrawService = service.NewDrawService
var newLedgerService = service.NewLedgerService

type LotteryController struct{ beego.Controller }

// Draw 抽奖接口：POST /api/lottery/draw
// 幂等键约定：
// - 对于“同一次抽奖”的所有重试，请传相同的 idempotency_key；
// - 服务端三层防护：Redis 进行中锁、MySQL 幂等键唯一约束、Redis 结果缓存；
// - 并发重复（正在处理）：HTTP 202；历史重复：返回首次的抽奖结果，不算错误。
func (c *LotteryController) Draw() {
	// 1) 解析入参与基本校验
	// 这里必须要对业务参数严格校验，后续service不再重复校验上限以外的格式
	dp, ok, msg := helper.ParseAndValidateDraw(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newDrawService()
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	out, err := svc.Draw(c.Ctx.Request.Context(), service.DrawInput{
		AccountID:      accountID,
		Quantity:       dp.Quantity,
		IdempotencyKey: dp.IdempotencyKey,
		TraceID:        traceID,
	})
	if err != nil {
		// MySQL 唯一键冲突
		if me, ok := err.(*mysqlerr.MySQLError); ok && me.Number == 1062 {
			response.Conflict(&c.Controller, response.CodeDuplicateKey, traceID)
			return
		}
		// 重复请求进行中
		if errors.Is(err, service.ErrDuplicateInFlight) {
			response.Accepted(&c.Controller, "重复请求进行中，请稍后重试", traceID)
			return
		}
		// 数量非法
		if errors.Is(err, service.ErrInvalidQuantity) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInvalidQuantity, "抽取数量非法", traceID)
			return
		}
		// 奖池已空
		if errors.Is(err, service.ErrPoolExhausted) {
			response.Conflict(&c.Controller, response.CodePoolExhausted, traceID)
			return
		}
		// 系统错误
		response.InternalError(&c.Controller, traceID)
		return
	}

	// 成功响应（余量不足时 partial=true，不算错误）
	response.Success(&c.Controller, out, traceID)
}

// MyPrizes 查询中奖记录：GET /api/lottery
func (c *LotteryController) MyPrizes() {
	traceID := helper.GetTraceID(c.Ctx)
	accountID := helper.GetAccountID(c.Ctx)
	if accountID == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	prizes, err := newLedgerService().ListMyPrizes(c.Ctx.Request.Context(), accountID)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, prizes, traceID)
}
