package constant

// 奖品类型（数值码入库，冗余字符串便于查询）
const (
	PrizeTypeBook     = 1 // 图书
	PrizeTypeCoupon   = 2 // 优惠券
	PrizeTypeCredit   = 3 // 商城积分
	PrizeTypeBlindBox = 4 // 盲盒
)

// 奖品类型字符串（对外 API 使用）
const (
	PrizeTypeBookStr     = "BOOK"
	PrizeTypeCouponStr   = "COUPON"
	PrizeTypeCreditStr   = "CREDIT"
	PrizeTypeBlindBoxStr = "BLIND_BOX"
)

// ToPrizeTypeCode 字符串转数值码，未知返回 0
func ToPrizeTypeCode(s string) int8 {
	switch s {
	case PrizeTypeBookStr:
		return PrizeTypeBook
	case PrizeTypeCouponStr:
		return PrizeTypeCoupon
	case PrizeTypeCreditStr:
		return PrizeTypeCredit
	case PrizeTypeBlindBoxStr:
		return PrizeTypeBlindBox
	default:
		return 0
	}
}

// FromPrizeTypeCode 数值码转字符串，未知返回空串
func FromPrizeTypeCode(c int8) string {
	switch c {
	case PrizeTypeBook:
		return PrizeTypeBookStr
	case PrizeTypeCoupon:
		return PrizeTypeCouponStr
	case PrizeTypeCredit:
		return PrizeTypeCreditStr
	case PrizeTypeBlindBox:
		return PrizeTypeBlindBoxStr
	default:
		return ""
	}
}

// 奖品状态
// AVAILABLE: 已中奖未消费；GENERATED: 已生成发货单（不可逆）
const (
	PrizeStatusAvailable = 1
	PrizeStatusGenerated = 2
)

const (
	PrizeStatusAvailableStr = "AVAILABLE"
	PrizeStatusGeneratedStr = "GENERATED"
)

// FromPrizeStatusCode 状态码转字符串
func FromPrizeStatusCode(c int8) string {
	switch c {
	case PrizeStatusAvailable:
		return PrizeStatusAvailableStr
	case PrizeStatusGenerated:
		return PrizeStatusGeneratedStr
	default:
		return ""
	}
}

// 用户优惠券状态
const (
	CouponUnused  = 1 // 未使用
	CouponUsed    = 2 // 已使用
	CouponExpired = 3 // 已过期
)
