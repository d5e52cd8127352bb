package api

import (
	"strings"

	"lottery-server/internal/auth"
	helper "lottery-server/internal/common/helper"
	"lottery-server/internal/common/response"

	beego "github.com/beego/beego/v2/server/web"
)

type SessionController struct{ beego.Controller }

// Logout 注销当前会话：POST /api/lottery/logout
// 将当前 Token 加入黑名单直至其自然过期（令牌签发在外部系统，这里只负责吊销）
func (c *SessionController) Logout() {
	traceID := helper.GetTraceID(c.Ctx)

	authHeader := c.Ctx.Input.Header("Authorization")
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		response.Error(&c.Controller, 401, response.CodeUnauthorized, traceID)
		return
	}

	// 用户认证过滤器已完成校验，这里只取过期时间确定黑名单 TTL
	// 取不到过期时间时视为已过期，无需入黑名单
	if claims, ok := c.Ctx.Input.GetData("jwt_claims").(*auth.JWTClaims); ok && claims.ExpiresAt != nil {
		if err := auth.RevokeToken(c.Ctx.Request.Context(), tokenString, claims.ExpiresAt.Time); err != nil {
			response.InternalError(&c.Controller, traceID)
			return
		}
	}

	response.Success(&c.Controller, map[string]interface{}{"revoked": true}, traceID)
}
