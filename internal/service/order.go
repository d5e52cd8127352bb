package service

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lottery-server/common/constant"
	"lottery-server/internal/config"
	infmysql "lottery-server/internal/infra/mysql"
	"lottery-server/internal/metrics"
	"lottery-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// 处理发货单生成业务逻辑

// Recipient 收件人信息
type Recipient struct {
	Name      string `json:"name"`
	Telephone string `json:"telephone"`
	Location  string `json:"location"`
}

// OrderInput 输入参数
type OrderInput struct {
	AccountID string
	PrizeNos  []string
	Recipient Recipient
	TraceID   string
}

// OrderOutput 发货单结果
type OrderOutput struct {
	OrderNo    string `json:"orderNo"`
	PrizeCount int    `json:"prizeCount"`
	CreatedAt  int64  `json:"createdAt"`
}

// OrderDetail 发货单详情，奖品明细通过 order_no 关联查出
type OrderDetail struct {
	OrderNo           string      `json:"orderNo"`
	RecipientName     string      `json:"recipientName"`
	RecipientPhone    string      `json:"recipientPhone"`
	RecipientLocation string      `json:"recipientLocation"`
	PrizeCount        int         `json:"prizeCount"`
	CreatedAt         int64       `json:"createdAt"`
	Prizes            []PrizeView `json:"prizes"`
}

type OrderService interface {
	GenerateOrder(ctx context.Context, in OrderInput) (*OrderOutput, error)
	ListOrders(ctx context.Context, accountID string, limit int) ([]model.PrizeOrder, error)
	GetOrderDetail(ctx context.Context, accountID, orderNo string) (*OrderDetail, error)
}

type orderService struct{}

func NewOrderService() OrderService { return &orderService{} }

var (
	ErrNoPrizes         = errors.New("no prizes selected")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrOrderNotFound    = errors.New("order not found")
)

// 电话号码：5-20位数字，可带国际区号前缀
var telephonePattern = regexp.MustCompile(`^\+?[0-9][0-9\-]{4,19}$`)

// ValidateRecipient 校验收件人信息
func ValidateRecipient(r Recipient) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidRecipient)
	}
	if !telephonePattern.MatchString(strings.TrimSpace(r.Telephone)) {
		return fmt.Errorf("%w: invalid telephone", ErrInvalidRecipient)
	}
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("%w: location required", ErrInvalidRecipient)
	}
	return nil
}

// GenerateOrder 生成发货单主流程：
// 批量消费奖品（全部成功或全部失败），落发货单；优惠券类奖品同步发券
func (s *orderService) GenerateOrder(ctx context.Context, in OrderInput) (*OrderOutput, error) {

	start := time.Now()
	result := "fail"
	prizeCount := 0
	defer func() { metrics.RecordOrder(result, prizeCount, start) }()

	// 校验收件人
	if err := ValidateRecipient(in.Recipient); err != nil {
		fmt.Printf("[Order]  收件人信息无效: error=%v, account_id=%s, trace_id=%s\n",
			err, in.AccountID, in.TraceID)
		return nil, err
	}

	// 去重奖品编号，保持请求顺序
	prizeNos := dedupeStrings(in.PrizeNos)
	if len(prizeNos) == 0 {
		fmt.Printf("[Order]  未选择奖品: account_id=%s, trace_id=%s\n", in.AccountID, in.TraceID)
		return nil, ErrNoPrizes
	}

	fmt.Printf("[Order]  收到发货单请求: account_id=%s, prize_count=%d, trace_id=%s\n",
		in.AccountID, len(prizeNos), in.TraceID)

	// 开启 MySQL 事务（带默认超时）
	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, defaultDrawTxTimeout)
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		fmt.Printf("[Order] 开启事务失败: error=%v, account_id=%s, trace_id=%s\n",
			err, in.AccountID, in.TraceID)
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	orderNo := generateOrderNo(in.AccountID)

	// 批量消费：锁定、校验、置 GENERATED，任一失败全部回滚
	awards, err := markGeneratedInTx(txCtx, tx, in.AccountID, prizeNos, orderNo)
	if err != nil {
		return nil, err
	}

	// 落发货单
	ord := &model.PrizeOrder{
		OrderNo:           orderNo,
		AccountID:         in.AccountID,
		RecipientName:     strings.TrimSpace(in.Recipient.Name),
		RecipientPhone:    strings.TrimSpace(in.Recipient.Telephone),
		RecipientLocation: strings.TrimSpace(in.Recipient.Location),
		PrizeCount:        len(prizeNos),
		TraceID:           in.TraceID,
	}
	if err := ord.Insert(txCtx, tx); err != nil {
		fmt.Printf("[Order]  创建发货单失败: error=%v, order_no=%s, trace_id=%s\n",
			err, orderNo, in.TraceID)
		return nil, err
	}

	// 优惠券类奖品：发货即发券
	for _, a := range awards {
		if a.PrizeType != constant.PrizeTypeCouponStr {
			continue
		}
		if err := mintCouponForAward(txCtx, tx, &a); err != nil {
			fmt.Printf("[Order]  发券失败: error=%v, prize_no=%s, trace_id=%s\n",
				err, a.PrizeNo, in.TraceID)
			return nil, err
		}
	}

	// Outbox 消息（异步）
	payload := map[string]any{
		"event":       "prize_order_generated",
		"order_no":    orderNo,
		"account_id":  in.AccountID,
		"prize_nos":   prizeNos,
		"prize_count": len(prizeNos),
	}
	if err := model.CreateOutbox(txCtx, tx, "prize_order_generated", orderNo, payload); err != nil {
		fmt.Printf("[Order]  写入 Outbox 失败: error=%v, order_no=%s, trace_id=%s\n",
			err, orderNo, in.TraceID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Order]  提交事务失败: error=%v, order_no=%s, trace_id=%s\n",
			err, orderNo, in.TraceID)
		return nil, err
	}

	result = "success"
	prizeCount = len(prizeNos)
	fmt.Printf("[Order]  发货单已生成: order_no=%s, prize_count=%d, trace_id=%s\n",
		orderNo, prizeCount, in.TraceID)

	return &OrderOutput{OrderNo: orderNo, PrizeCount: prizeCount, CreatedAt: ord.CreatedAt}, nil
}

// ListOrders 查询账户的发货单
func (s *orderService) ListOrders(ctx context.Context, accountID string, limit int) ([]model.PrizeOrder, error) {
	return model.ListOrdersByAccount(ctx, infmysql.SQLX(), accountID, limit)
}

// GetOrderDetail 查询发货单详情，校验归属后带出奖品明细
func (s *orderService) GetOrderDetail(ctx context.Context, accountID, orderNo string) (*OrderDetail, error) {
	ord, err := model.GetOrderByNo(ctx, infmysql.SQLX(), orderNo)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.AccountID != accountID {
		return nil, ErrNotOwned
	}

	awards, err := model.ListAwardsByOrderNo(ctx, infmysql.SQLX(), orderNo)
	if err != nil {
		return nil, err
	}
	prizes := make([]PrizeView, 0, len(awards))
	for _, a := range awards {
		prizes = append(prizes, PrizeView{
			PrizeNo:   a.PrizeNo,
			ItemID:    a.ItemID,
			Name:      a.PrizeName,
			PrizeType: a.PrizeType,
			Image:     a.Image,
			Status:    constant.FromPrizeStatusCode(a.Status),
			OrderNo:   a.OrderNo,
			CreatedAt: a.CreatedAt,
		})
	}

	return &OrderDetail{
		OrderNo:           ord.OrderNo,
		RecipientName:     ord.RecipientName,
		RecipientPhone:    ord.RecipientPhone,
		RecipientLocation: ord.RecipientLocation,
		PrizeCount:        ord.PrizeCount,
		CreatedAt:         ord.CreatedAt,
		Prizes:            prizes,
	}, nil
}

// mintCouponForAward 为优惠券类奖品发放一张用户券
// 模板ID取动态阈值 default_coupon_type_id；未配置或模板缺失时跳过发券（奖品本身仍有效）
func mintCouponForAward(ctx context.Context, tx *sqlx.Tx, a *model.PrizeAward) error {
	typeID := config.GetThreshold("default_coupon_type_id", 0)
	if typeID <= 0 {
		fmt.Printf("[Order]  未配置默认优惠券模板，跳过发券: prize_no=%s\n", a.PrizeNo)
		return nil
	}
	tpl, err := model.GetCouponTypeByID(ctx, tx, typeID)
	if err != nil {
		return err
	}
	if tpl == nil {
		fmt.Printf("[Order]  优惠券模板不存在，跳过发券: type_id=%d, prize_no=%s\n", typeID, a.PrizeNo)
		return nil
	}

	validDays := tpl.ValidDays
	if validDays <= 0 {
		validDays = 30
	}
	coupon := &model.UserCoupon{
		CouponNo:     generateCouponNo(),
		AccountID:    a.AccountID,
		CouponTypeID: tpl.ID,
		Name:         tpl.Name,
		Amount:       tpl.Amount,
		MinSpend:     tpl.MinSpend,
		PrizeNo:      a.PrizeNo,
		ExpireAt:     time.Now().AddDate(0, 0, validDays).UnixMilli(),
	}
	return coupon.Insert(ctx, tx)
}

// dedupeStrings 去重并保持原有顺序，忽略空串
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// generateOrderNo 生成可读的发货单号
// 格式：OD{YYYYMMDD}{HHmmss}{账户ID后4位}{随机3位十六进制}
func generateOrderNo(accountID string) string {
	now := time.Now()
	dateTime := now.Format("20060102150405")
	suffix := accountID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	randomBytes := make([]byte, 2)
	cryptorand.Read(randomBytes)
	randomHex := strings.ToUpper(hex.EncodeToString(randomBytes)[:3])

	return fmt.Sprintf("OD%s%s%s", dateTime, suffix, randomHex)
}

// generateCouponNo 生成券号
// 格式：CP{YYYYMMDDHHmmss}{随机6位十六进制}
func generateCouponNo() string {
	now := time.Now()
	randomBytes := make([]byte, 3)
	cryptorand.Read(randomBytes)
	return fmt.Sprintf("CP%s%s", now.Format("20060102150405"), strings.ToUpper(hex.EncodeToString(randomBytes)))
}
