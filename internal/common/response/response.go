package response

import (
	"time"

	beego "github.com/beego/beego/v2/server/web"
)

// APIResponse 统一 API 响应结构
// 所有 API 都应该返回这个结构，无论成功还是失败
type APIResponse struct {
	Code      int         `json:"code"`                // 业务错误码：0=成功，非0=失败
	Message   string      `json:"message"`             // 错误消息
	Data      interface{} `json:"data,omitempty"`      // 业务数据（失败时为 null）
	TraceID   string      `json:"trace_id,omitempty"`  // 请求追踪ID
	Timestamp int64       `json:"timestamp,omitempty"` // 响应时间戳（Unix 毫秒）
}

// 错误码定义
// 客户端依赖这些码做语义分支（如 PoolExhausted 可提示明日再来，NotOwned 直接硬失败），
// 因此不同失败绝不合并为同一个码
const (
	CodeSuccess           = 0    // 成功
	CodeBadRequest        = 1000 // 参数错误
	CodeBusinessError     = 2000 // 业务错误（通用）
	CodeInvalidQuantity   = 2001 // 数量非法（<=0）
	CodePoolExhausted     = 2002 // 奖池已抽空
	CodeEntryInUse        = 2003 // 奖池条目仍被未消费奖品引用，禁止删除
	CodeNotOwned          = 2004 // 奖品/句柄归属不匹配
	CodeAlreadyGenerated  = 2005 // 奖品已生成过发货单（防双花）
	CodeDuplicateInFlight = 2006 // 重复抽奖请求进行中
	CodeDuplicateKey      = 2007 // 幂等键冲突
	CodeInvalidRecipient  = 2008 // 收件人信息不完整
	CodeCouponNotUsable   = 2009 // 优惠券不可用（已用/已过期）
	CodeUnauthorized      = 3000 // 未授权
	CodeInvalidToken      = 3001 // Token 无效
	CodeTokenExpired      = 3002 // Token 过期
	CodeTokenRevoked      = 3003 // Token 已撤销
	CodeForbidden         = 3009 // 禁止访问
	CodeNotFound          = 4004 // 资源不存在
	CodeRateLimitExceeded = 4000 // 请求频率超限
	CodeSystemError       = 5000 // 系统错误
)

// ErrorMessages 错误消息映射
var ErrorMessages = map[int]string{
	CodeSuccess:           "success",
	CodeBadRequest:        "参数错误",
	CodeBusinessError:     "业务处理失败",
	CodeInvalidQuantity:   "数量必须为正整数",
	CodePoolExhausted:     "奖池已抽空，请等待补货",
	CodeEntryInUse:        "仍有未消费的奖品引用该条目，不能删除",
	CodeNotOwned:          "奖品不属于当前用户",
	CodeAlreadyGenerated:  "奖品已生成过订单",
	CodeDuplicateInFlight: "重复请求进行中，请稍后重试",
	CodeDuplicateKey:      "重复的请求",
	CodeInvalidRecipient:  "收件人信息不完整",
	CodeCouponNotUsable:   "优惠券不可用",
	CodeNotFound:          "资源不存在",
	CodeSystemError:       "系统繁忙，请稍后重试",
}

// Success 成功响应
// 参数：
//   - c: Beego Controller
//   - data: 业务数据（可以是 map、struct、slice 等）
//   - traceID: 请求追踪ID
func Success(c *beego.Controller, data interface{}, traceID string) {
	c.Data["json"] = APIResponse{
		Code:      CodeSuccess,
		Message:   ErrorMessages[CodeSuccess],
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// Error 错误响应（使用预定义的错误消息）
func Error(c *beego.Controller, httpStatus int, code int, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   getErrorMessage(code),
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// ErrorWithMessage 错误响应（使用自定义错误消息）
func ErrorWithMessage(c *beego.Controller, httpStatus int, code int, message string, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   message,
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// BadRequest 参数错误响应（HTTP 400）
func BadRequest(c *beego.Controller, message string, traceID string) {
	ErrorWithMessage(c, 400, CodeBadRequest, message, traceID)
}

// Conflict 资源冲突响应（HTTP 409）
// 用于 AlreadyGenerated / EntryInUse / DuplicateKey 这类状态冲突
func Conflict(c *beego.Controller, code int, traceID string) {
	Error(c, 409, code, traceID)
}

// NotFound 资源不存在响应（HTTP 404）
func NotFound(c *beego.Controller, message string, traceID string) {
	ErrorWithMessage(c, 404, CodeNotFound, message, traceID)
}

// Forbidden 归属校验失败响应（HTTP 403）
func Forbidden(c *beego.Controller, code int, traceID string) {
	Error(c, 403, code, traceID)
}

// InternalError 系统错误响应（HTTP 500）
func InternalError(c *beego.Controller, traceID string) {
	Error(c, 500, CodeSystemError, traceID)
}

// Accepted 请求已接受但尚未处理完成（HTTP 202）
// 用于重复抽奖请求仍在进行中的场景
func Accepted(c *beego.Controller, message string, traceID string) {
	c.Ctx.Output.SetStatus(202)
	c.Ctx.Output.Header("Retry-After", "1") // 建议客户端 1 秒后重试
	c.Data["json"] = APIResponse{
		Code:      CodeDuplicateInFlight,
		Message:   message,
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// getErrorMessage 获取错误消息，如果未定义则返回通用消息
func getErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "未知错误"
}
