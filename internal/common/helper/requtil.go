package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// IsJSONContentType 判断是否为 JSON 请求
func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.Contains(ct, "json")
}

// 默认输入保护参数
const (
	defaultJSONMaxBytes int64         = 1 << 20 // 1MB
	defaultParseTimeout time.Duration = 1 * time.Second
)

type deadlineReader struct {
	r        io.Reader
	deadline time.Time
}

func (dr *deadlineReader) Read(p []byte) (int, error) {
	if time.Now().After(dr.deadline) {
		return 0, fmt.Errorf("read timeout")
	}
	return dr.r.Read(p)
}

// jsonBodyReader 在 JSON 分支下为请求体增加大小限制与解析超时保护
func jsonBodyReader(ctx *beegocontext.Context) io.Reader {
	lr := io.LimitReader(ctx.Request.Body, defaultJSONMaxBytes)
	return &deadlineReader{r: lr, deadline: time.Now().Add(defaultParseTimeout)}
}

// GetTraceID 统一提取 trace_id：优先从中间件注入的数据取，其次从常见请求头降级
func GetTraceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		return fmt.Sprint(v)
	}
	if h := strings.TrimSpace(ctx.Input.Header("X-Trace-ID")); h != "" {
		return h
	}
	if h := strings.TrimSpace(ctx.Input.Header("Trace-Id")); h != "" {
		return h
	}
	return ""
}

// GetAccountID 提取用户认证过滤器注入的账户ID
func GetAccountID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("account_id"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// parseByContentType 按 Content-Type 选择解析函数，减少重复 if/else 分支
func parseByContentType[T any](ctx *beegocontext.Context,
	jsonParser func(io.Reader) (T, bool, string),
	formParser func(*beegocontext.Context) (T, bool, string),
) (T, bool, string) {
	ct := ctx.Input.Header("Content-Type")
	if IsJSONContentType(ct) {
		return jsonParser(jsonBodyReader(ctx))
	}
	return formParser(ctx)
}

// -------- Draw helpers --------

// DrawParsed 为解析后的抽奖入参（与控制器/服务层解耦）
type DrawParsed struct {
	Quantity       int    `json:"quantity"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ParseDrawFromJSON 解析 JSON 到 DrawParsed。失败返回 false 与错误消息。
func ParseDrawFromJSON(r io.Reader) (DrawParsed, bool, string) {
	var out DrawParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return DrawParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

// ParseDrawFromForm 从表单读取字段，返回 DrawParsed。
func ParseDrawFromForm(ctx *beegocontext.Context) (DrawParsed, bool, string) {
	var out DrawParsed
	qStr := strings.TrimSpace(ctx.Input.Query("quantity"))
	if qStr == "" {
		return DrawParsed{}, false, "quantity required"
	}
	q, err := strconv.Atoi(qStr)
	if err != nil {
		return DrawParsed{}, false, "quantity must be integer"
	}
	out.Quantity = q
	out.IdempotencyKey = strings.TrimSpace(ctx.Input.Query("idempotency_key"))
	return out, true, ""
}

// ValidateDraw 对通用字段做二次校验（适用于 JSON 与 FORM）。失败返回 false 与错误消息。
// 数量上限由服务层按动态配置校验，这里只做基础保护。
func ValidateDraw(in *DrawParsed) (bool, string) {
	if in.Quantity <= 0 {
		return false, "quantity must be positive"
	}
	if in.Quantity > 1000 {
		return false, "quantity too large"
	}
	if len(in.IdempotencyKey) > 64 {
		return false, "invalid idempotency_key"
	}
	return true, ""
}

// ParseAndValidateDraw 按 Content-Type 自动解析并做统一校验
func ParseAndValidateDraw(ctx *beegocontext.Context) (DrawParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDrawFromJSON, ParseDrawFromForm)
	if !ok {
		return DrawParsed{}, false, msg
	}
	if ok, msg := ValidateDraw(&out); !ok {
		return DrawParsed{}, false, msg
	}
	return out, true, ""
}

// -------- Pool helpers --------

type PoolEntryParsed struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PrizeType   string `json:"type"`
	Image       string `json:"image"`
	Quantity    int64  `json:"quantity"`
}

func ParsePoolEntryFromJSON(r io.Reader) (PoolEntryParsed, bool, string) {
	var out PoolEntryParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return PoolEntryParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParsePoolEntryFromForm(ctx *beegocontext.Context) (PoolEntryParsed, bool, string) {
	var out PoolEntryParsed
	out.ItemID = strings.TrimSpace(ctx.Input.Query("itemId"))
	out.Name = strings.TrimSpace(ctx.Input.Query("name"))
	out.Description = strings.TrimSpace(ctx.Input.Query("description"))
	out.PrizeType = strings.TrimSpace(ctx.Input.Query("type"))
	out.Image = strings.TrimSpace(ctx.Input.Query("image"))
	qStr := strings.TrimSpace(ctx.Input.Query("quantity"))
	if qStr != "" {
		v, err := strconv.ParseInt(qStr, 10, 64)
		if err != nil {
			return PoolEntryParsed{}, false, "quantity must be integer"
		}
		out.Quantity = v
	}
	return out, true, ""
}

// ValidatePoolEntry 基础字段校验，类型合法性由服务层判定
func ValidatePoolEntry(in *PoolEntryParsed) (bool, string) {
	if strings.TrimSpace(in.ItemID) == "" {
		return false, "itemId required"
	}
	if len(in.ItemID) > 64 || len(in.Name) > 128 || len(in.Description) > 512 || len(in.Image) > 512 {
		return false, "invalid request"
	}
	if in.Quantity <= 0 {
		return false, "quantity must be positive"
	}
	return true, ""
}

func ParseAndValidatePoolEntry(ctx *beegocontext.Context) (PoolEntryParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParsePoolEntryFromJSON, ParsePoolEntryFromForm)
	if !ok {
		return PoolEntryParsed{}, false, msg
	}
	if ok, msg := ValidatePoolEntry(&out); !ok {
		return PoolEntryParsed{}, false, msg
	}
	return out, true, ""
}

// PoolQuantityParsed 覆盖库存入参（PUT /pool）
type PoolQuantityParsed struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

func ParsePoolQuantityFromJSON(r io.Reader) (PoolQuantityParsed, bool, string) {
	var out PoolQuantityParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return PoolQuantityParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParsePoolQuantityFromForm(ctx *beegocontext.Context) (PoolQuantityParsed, bool, string) {
	var out PoolQuantityParsed
	idStr := strings.TrimSpace(ctx.Input.Query("id"))
	if idStr == "" {
		return PoolQuantityParsed{}, false, "id required"
	}
	v, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return PoolQuantityParsed{}, false, "id must be integer"
	}
	out.ID = v
	qStr := strings.TrimSpace(ctx.Input.Query("quantity"))
	if qStr != "" {
		q, err := strconv.ParseInt(qStr, 10, 64)
		if err != nil {
			return PoolQuantityParsed{}, false, "quantity must be integer"
		}
		out.Quantity = q
	}
	return out, true, ""
}

func ValidatePoolQuantity(in *PoolQuantityParsed) (bool, string) {
	if in.ID <= 0 {
		return false, "id must be positive"
	}
	if in.Quantity < 0 {
		return false, "quantity must be non-negative"
	}
	return true, ""
}

func ParseAndValidatePoolQuantity(ctx *beegocontext.Context) (PoolQuantityParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParsePoolQuantityFromJSON, ParsePoolQuantityFromForm)
	if !ok {
		return PoolQuantityParsed{}, false, msg
	}
	if ok, msg := ValidatePoolQuantity(&out); !ok {
		return PoolQuantityParsed{}, false, msg
	}
	return out, true, ""
}

// -------- Order helpers --------

type RecipientParsed struct {
	Name      string `json:"name"`
	Telephone string `json:"telephone"`
	Location  string `json:"location"`
}

type OrderParsed struct {
	PrizeIDs  []string        `json:"prizeIds"`
	Recipient RecipientParsed `json:"recipient"`
}

func ParseOrderFromJSON(r io.Reader) (OrderParsed, bool, string) {
	var out OrderParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return OrderParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseOrderFromForm(ctx *beegocontext.Context) (OrderParsed, bool, string) {
	var out OrderParsed
	ids := strings.TrimSpace(ctx.Input.Query("prizeIds"))
	if ids != "" {
		out.PrizeIDs = strings.Split(ids, ",")
	}
	out.Recipient.Name = strings.TrimSpace(ctx.Input.Query("name"))
	out.Recipient.Telephone = strings.TrimSpace(ctx.Input.Query("telephone"))
	out.Recipient.Location = strings.TrimSpace(ctx.Input.Query("location"))
	return out, true, ""
}

// ValidateOrder 基础校验：奖品列表非空且数量受限，收件人细则由服务层校验
func ValidateOrder(in *OrderParsed) (bool, string) {
	if len(in.PrizeIDs) == 0 {
		return false, "prizeIds required"
	}
	if len(in.PrizeIDs) > 100 {
		return false, "too many prizes"
	}
	for _, id := range in.PrizeIDs {
		if len(id) > 64 {
			return false, "invalid prize id"
		}
	}
	return true, ""
}

func ParseAndValidateOrder(ctx *beegocontext.Context) (OrderParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseOrderFromJSON, ParseOrderFromForm)
	if !ok {
		return OrderParsed{}, false, msg
	}
	if ok, msg := ValidateOrder(&out); !ok {
		return OrderParsed{}, false, msg
	}
	return out, true, ""
}

// -------- Discount helpers --------

type DiscountParsed struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Rate      string `json:"rate"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
}

func ParseDiscountFromJSON(r io.Reader) (DiscountParsed, bool, string) {
	var out DiscountParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return DiscountParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseDiscountFromForm(ctx *beegocontext.Context) (DiscountParsed, bool, string) {
	var out DiscountParsed
	out.ProductID = strings.TrimSpace(ctx.Input.Query("productId"))
	out.Title = strings.TrimSpace(ctx.Input.Query("title"))
	out.Rate = strings.TrimSpace(ctx.Input.Query("rate"))
	out.StartAt = strings.TrimSpace(ctx.Input.Query("startAt"))
	out.EndAt = strings.TrimSpace(ctx.Input.Query("endAt"))
	return out, true, ""
}

func ValidateDiscount(in *DiscountParsed) (bool, string) {
	if in.ProductID == "" {
		return false, "productId required"
	}
	if len(in.ProductID) > 64 || len(in.Title) > 128 || len(in.Rate) > 16 {
		return false, "invalid request"
	}
	if in.StartAt == "" || in.EndAt == "" {
		return false, "startAt and endAt required"
	}
	return true, ""
}

func ParseAndValidateDiscount(ctx *beegocontext.Context) (DiscountParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDiscountFromJSON, ParseDiscountFromForm)
	if !ok {
		return DiscountParsed{}, false, msg
	}
	if ok, msg := ValidateDiscount(&out); !ok {
		return DiscountParsed{}, false, msg
	}
	return out, true, ""
}

// -------- CouponType helpers --------

type CouponTypeParsed struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	MinSpend  string `json:"minSpend"`
	ValidDays int    `json:"validDays"`
}

func ParseCouponTypeFromJSON(r io.Reader) (CouponTypeParsed, bool, string) {
	var out CouponTypeParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return CouponTypeParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseCouponTypeFromForm(ctx *beegocontext.Context) (CouponTypeParsed, bool, string) {
	var out CouponTypeParsed
	out.Name = strings.TrimSpace(ctx.Input.Query("name"))
	out.Amount = strings.TrimSpace(ctx.Input.Query("amount"))
	out.MinSpend = strings.TrimSpace(ctx.Input.Query("minSpend"))
	if d := strings.TrimSpace(ctx.Input.Query("validDays")); d != "" {
		if v, err := strconv.Atoi(d); err == nil {
			out.ValidDays = v
		}
	}
	return out, true, ""
}

func ValidateCouponType(in *CouponTypeParsed) (bool, string) {
	if in.Name == "" {
		return false, "name required"
	}
	if in.Amount == "" {
		return false, "amount required"
	}
	if len(in.Name) > 128 || len(in.Amount) > 16 || len(in.MinSpend) > 16 {
		return false, "invalid request"
	}
	return true, ""
}

func ParseAndValidateCouponType(ctx *beegocontext.Context) (CouponTypeParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseCouponTypeFromJSON, ParseCouponTypeFromForm)
	if !ok {
		return CouponTypeParsed{}, false, msg
	}
	if ok, msg := ValidateCouponType(&out); !ok {
		return CouponTypeParsed{}, false, msg
	}
	return out, true, ""
}

// -------- CouponUse helpers --------

// CouponUseParsed 核销入参，字段名与前端一致（couponId 即券号，orderId 可选）
type CouponUseParsed struct {
	CouponNo string `json:"couponId"`
	OrderNo  string `json:"orderId"`
}

func ParseCouponUseFromJSON(r io.Reader) (CouponUseParsed, bool, string) {
	var out CouponUseParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return CouponUseParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseCouponUseFromForm(ctx *beegocontext.Context) (CouponUseParsed, bool, string) {
	var out CouponUseParsed
	out.CouponNo = strings.TrimSpace(ctx.Input.Query("couponId"))
	out.OrderNo = strings.TrimSpace(ctx.Input.Query("orderId"))
	return out, true, ""
}

func ValidateCouponUse(in *CouponUseParsed) (bool, string) {
	in.CouponNo = strings.TrimSpace(in.CouponNo)
	in.OrderNo = strings.TrimSpace(in.OrderNo)
	if in.CouponNo == "" {
		return false, "couponId required"
	}
	if len(in.CouponNo) > 64 || len(in.OrderNo) > 64 {
		return false, "invalid request"
	}
	return true, ""
}

func ParseAndValidateCouponUse(ctx *beegocontext.Context) (CouponUseParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseCouponUseFromJSON, ParseCouponUseFromForm)
	if !ok {
		return CouponUseParsed{}, false, msg
	}
	if ok, msg := ValidateCouponUse(&out); !ok {
		return CouponUseParsed{}, false, msg
	}
	return out, true, ""
}
