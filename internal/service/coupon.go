package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	infmysql "lottery-server/internal/infra/mysql"
	"lottery-server/internal/model"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// 优惠券业务逻辑

// CouponTypeInput 新增优惠券模板的输入参数
type CouponTypeInput struct {
	Name      string
	Amount    string // 面额，十进制字符串
	MinSpend  string // 使用门槛，十进制字符串
	ValidDays int
	TraceID   string
}

type CouponService interface {
	CreateCouponType(ctx context.Context, in CouponTypeInput) (*model.CouponType, error)
	ListCouponTypes(ctx context.Context) ([]model.CouponType, error)
	ListMyCoupons(ctx context.Context, accountID string) ([]model.UserCoupon, error)
	UseCoupon(ctx context.Context, accountID, couponNo string) error
}

type couponService struct{}

func NewCouponService() CouponService { return &couponService{} }

var (
	ErrInvalidCouponType = errors.New("invalid coupon type")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponNotUsable   = errors.New("coupon not usable")
)

// CreateCouponType 新增优惠券模板
func (s *couponService) CreateCouponType(ctx context.Context, in CouponTypeInput) (*model.CouponType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.Wrap(ErrInvalidCouponType, "name required")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrapf(ErrInvalidCouponType, "invalid amount %q", in.Amount)
	}

	minSpend := decimal.Zero
	if strings.TrimSpace(in.MinSpend) != "" {
		minSpend, err = decimal.NewFromString(strings.TrimSpace(in.MinSpend))
		if err != nil || minSpend.IsNegative() {
			return nil, errors.Wrapf(ErrInvalidCouponType, "invalid min spend %q", in.MinSpend)
		}
	}
	if in.ValidDays <= 0 {
		in.ValidDays = 30
	}

	tpl := &model.CouponType{
		Name:      name,
		Amount:    amount,
		MinSpend:  minSpend,
		ValidDays: in.ValidDays,
	}
	if err := tpl.Insert(ctx, infmysql.SQLX()); err != nil {
		fmt.Printf("[Coupon]  新增优惠券模板失败: error=%v, name=%s, trace_id=%s\n",
			err, name, in.TraceID)
		return nil, errors.Wrap(err, "insert coupon type")
	}

	fmt.Printf("[Coupon]  优惠券模板已新增: id=%d, name=%s, amount=%s, trace_id=%s\n",
		tpl.ID, tpl.Name, tpl.Amount.String(), in.TraceID)
	return tpl, nil
}

// ListCouponTypes 查询全部优惠券模板
func (s *couponService) ListCouponTypes(ctx context.Context) ([]model.CouponType, error) {
	return model.ListCouponTypes(ctx, infmysql.SQLX())
}

// ListMyCoupons 查询账户的优惠券
func (s *couponService) ListMyCoupons(ctx context.Context, accountID string) ([]model.UserCoupon, error) {
	return model.ListCouponsByAccount(ctx, infmysql.SQLX(), accountID)
}

// UseCoupon 核销优惠券
// 条件更新兜底：仅当券属于该账户、未使用且未过期时生效
func (s *couponService) UseCoupon(ctx context.Context, accountID, couponNo string) error {
	coupon, err := model.GetCouponByNo(ctx, infmysql.SQLX(), couponNo)
	if err != nil {
		return errors.Wrap(err, "get coupon")
	}
	if coupon == nil || coupon.AccountID != accountID {
		// 归属不符与不存在同样返回未找到，避免泄露他人券号有效性
		return ErrCouponNotFound
	}

	now := time.Now().UnixMilli()
	ok, err := model.MarkCouponUsed(ctx, infmysql.SQLX(), couponNo, accountID, now)
	if err != nil {
		fmt.Printf("[Coupon]  核销优惠券失败: error=%v, coupon_no=%s\n", err, couponNo)
		return errors.Wrap(err, "mark coupon used")
	}
	if !ok {
		fmt.Printf("[Coupon]  优惠券不可用: coupon_no=%s, status=%d, expire_at=%d\n",
			couponNo, coupon.Status, coupon.ExpireAt)
		return ErrCouponNotUsable
	}

	fmt.Printf("[Coupon]  优惠券已核销: coupon_no=%s, account_id=%s\n", couponNo, accountID)
	return nil
}
