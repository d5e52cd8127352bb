package helper

import (
	"time"
)

// StrToTime 宽松解析时间字符串（折扣/优惠券生效、过期时间来自前端，格式不完全统一）
// 解析失败返回零值 time.Time
func StrToTime(value string) time.Time {

	if value == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"2006-01-02",
		"2006/01/02",
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
