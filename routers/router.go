package routers

import (
	"strings"

	"lottery-server/internal/config"
	"lottery-server/internal/controller/api"
	"lottery-server/internal/metrics"
	"lottery-server/internal/middleware"

	beego "github.com/beego/beego/v2/server/web"
	beegocontext "github.com/beego/beego/v2/server/web/context"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// init 注册HTTP路由与全局过滤器
func init() {
	cfg := config.GetCurrent()

	// 全局过滤器（按执行顺序）
	// 1. Panic Recovery（最先执行，捕获所有 panic）
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RecoveryFilter)

	// 2. 请求ID注入
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RequestIDFilter)

	// 3. CORS 处理（过滤器内部根据配置自检，支持热更新开关）
	beego.InsertFilter("/*", beego.BeforeExec, middleware.CORSFilter)

	// 4. HTTP 指标收集
	beego.InsertFilter("/*", beego.BeforeExec, metrics.HTTPMetricsFilter)
	beego.InsertFilter("/*", beego.FinishRouter, metrics.HTTPMetricsAfter)

	// 健康检查与指标（无需认证）
	beego.Router("/healthz", &api.HealthController{}, "get:Healthz")
	beego.Router("/readyz", &api.HealthController{}, "get:Readyz")
	if cfg == nil || cfg.Observability.EnableProm {
		beego.Handler("/metrics", promhttp.Handler())
	}

	// ========== 抽奖 API（需要用户认证） ==========

	// 抽奖与中奖台账接口：用户认证 + 限流
	beego.InsertFilter("/api/lottery", beego.BeforeExec, middleware.UserAuthFilter)
	beego.InsertFilter("/api/lottery/*", beego.BeforeExec, middleware.UserAuthFilter)
	beego.InsertFilter("/api/lottery/draw", beego.BeforeExec, middleware.RateLimitFilter)
	beego.InsertFilter("/api/lottery/blindbox", beego.BeforeExec, middleware.RateLimitFilter)

	// 奖池管理：GET 对登录用户放行，写操作要求管理员 Token（过滤器内部区分）
	beego.InsertFilter("/api/lottery/pool", beego.BeforeExec, middleware.AdminAuthFilter)
	beego.InsertFilter("/api/lottery/pool/*", beego.BeforeExec, middleware.AdminAuthFilter)

	beego.Router("/api/lottery/pool", &api.PoolController{}, "post:Add;get:List;put:Update")
	beego.Router("/api/lottery/pool/:id", &api.PoolController{}, "get:Get;delete:Remove")

	beego.Router("/api/lottery/draw", &api.LotteryController{}, "post:Draw")
	beego.Router("/api/lottery", &api.LotteryController{}, "get:MyPrizes")

	beego.Router("/api/lottery/order", &api.OrderController{}, "post:Generate;get:List")
	beego.Router("/api/lottery/order/:id", &api.OrderController{}, "get:Detail")

	beego.Router("/api/lottery/blindbox", &api.BlindBoxController{}, "post:Draw")
	beego.Router("/api/lottery/blindbox/:id", &api.BlindBoxController{}, "get:Content")

	beego.Router("/api/lottery/logout", &api.SessionController{}, "post:Logout")

	// ========== 折扣与优惠券 API ==========

	// 折扣查询对匿名开放，写操作要求管理员 Token
	// :id 模式会命中 /api/discounts/coupon（用户核销接口），需要放行
	beego.InsertFilter("/api/discounts", beego.BeforeExec, middleware.AdminAuthFilter)
	beego.InsertFilter("/api/discounts/:id", beego.BeforeExec, func(ctx *beegocontext.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/discounts/coupon") {
			return
		}
		middleware.AdminAuthFilter(ctx)
	})

	// 优惠券接口：用户认证；模板管理要求管理员 Token
	beego.InsertFilter("/api/discounts/coupon", beego.BeforeExec, middleware.UserAuthFilter)
	beego.InsertFilter("/api/discounts/coupon/type", beego.BeforeExec, middleware.AdminAuthFilter)

	beego.Router("/api/discounts", &api.DiscountController{}, "get:List;post:Add")
	beego.Router("/api/discounts/price", &api.DiscountController{}, "get:Price")
	beego.Router("/api/discounts/:id", &api.DiscountController{}, "get:GetByProduct;delete:Remove")
	beego.Router("/api/discounts/coupon", &api.CouponController{}, "get:MyCoupons;post:Use")
	beego.Router("/api/discounts/coupon/type", &api.CouponController{}, "get:ListTypes;post:AddType")
}
