package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chelper "lottery-server/common/helper"
	infmysql "lottery-server/internal/infra/mysql"
	"lottery-server/internal/model"

	"github.com/shopspring/decimal"
)

// 商品折扣业务逻辑

// DiscountInput 新增折扣的输入参数
type DiscountInput struct {
	ProductID string
	Title     string
	Rate      string // 折扣率，十进制字符串，(0,1]
	StartAt   string // 生效时间，RFC3339 或常见时间格式
	EndAt     string // 失效时间
	TraceID   string
}

type DiscountService interface {
	CreateDiscount(ctx context.Context, in DiscountInput) (*model.ProductDiscount, error)
	ListActive(ctx context.Context) ([]model.ProductDiscount, error)
	DeleteDiscount(ctx context.Context, id int64) error
	GetDiscount(ctx context.Context, productID string) (*model.ProductDiscount, error)
	ApplyDiscount(ctx context.Context, productID string, price decimal.Decimal) (decimal.Decimal, *model.ProductDiscount, error)
}

type discountService struct{}

func NewDiscountService() DiscountService { return &discountService{} }

var (
	ErrInvalidDiscount  = errors.New("invalid discount")
	ErrDiscountNotFound = errors.New("discount not found")
)

// CreateDiscount 新增商品折扣
func (s *discountService) CreateDiscount(ctx context.Context, in DiscountInput) (*model.ProductDiscount, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id required", ErrInvalidDiscount)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(in.Rate))
	if err != nil || rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: rate must be in (0,1], got %q", ErrInvalidDiscount, in.Rate)
	}

	startAt := chelper.StrToTime(in.StartAt)
	if startAt.IsZero() {
		return nil, fmt.Errorf("%w: invalid start time %q", ErrInvalidDiscount, in.StartAt)
	}
	endAt := chelper.StrToTime(in.EndAt)
	if endAt.IsZero() {
		return nil, fmt.Errorf("%w: invalid end time %q", ErrInvalidDiscount, in.EndAt)
	}
	if !endAt.After(startAt) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidDiscount)
	}

	d := &model.ProductDiscount{
		ProductID: productID,
		Title:     strings.TrimSpace(in.Title),
		Rate:      rate,
		StartAt:   startAt.UnixMilli(),
		EndAt:     endAt.UnixMilli(),
	}
	if err := d.Insert(ctx, infmysql.SQLX()); err != nil {
		fmt.Printf("[Discount]  新增折扣失败: error=%v, product_id=%s, trace_id=%s\n",
			err, productID, in.TraceID)
		return nil, err
	}

	fmt.Printf("[Discount]  折扣已新增: id=%d, product_id=%s, rate=%s, trace_id=%s\n",
		d.ID, d.ProductID, d.Rate.String(), in.TraceID)
	return d, nil
}

// ListActive 查询当前生效的折扣
func (s *discountService) ListActive(ctx context.Context) ([]model.ProductDiscount, error) {
	return model.ListActiveDiscounts(ctx, infmysql.SQLX(), time.Now().UnixMilli())
}

// DeleteDiscount 删除折扣
func (s *discountService) DeleteDiscount(ctx context.Context, id int64) error {
	ok, err := model.DeleteDiscount(ctx, infmysql.SQLX(), id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDiscountNotFound
	}
	return nil
}

// GetDiscount 查询商品当前生效的折扣
func (s *discountService) GetDiscount(ctx context.Context, productID string) (*model.ProductDiscount, error) {
	d, err := model.GetDiscountByProduct(ctx, infmysql.SQLX(), productID, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiscountNotFound
	}
	return d, nil
}

// ApplyDiscount 计算商品折后价（两位小数，四舍五入）
// 无生效折扣时原价返回，折扣对象为 nil
func (s *discountService) ApplyDiscount(ctx context.Context, productID string, price decimal.Decimal) (decimal.Decimal, *model.ProductDiscount, error) {
	d, err := model.GetDiscountByProduct(ctx, infmysql.SQLX(), productID, time.Now().UnixMilli())
	if err != nil {
		return price, nil, err
	}
	if d == nil {
		return price, nil, nil
	}
	return price.Mul(d.Rate).Round(2), d, nil
}
