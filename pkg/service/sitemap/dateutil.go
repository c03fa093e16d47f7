/*
 * @Description: 纯日期工具：格式化、合法性检查、当月天数
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-09-21 00:00:00
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"fmt"
	"time"
)

// FirstSitemapYear 是历史回填的起始年份。
const FirstSitemapYear = 1970

// FormatDateStamp 将 (年, 月, 日) 格式化为 YYYY-MM-DD。
func FormatDateStamp(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// FormatMonthStamp 将 (年, 月) 格式化为 YYYY-MM。
func FormatMonthStamp(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// IsValidDate 判断 (年, 月, 日) 是否构成合法的公历日期。
func IsValidDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= DaysInMonth(year, month)
}

// DaysInMonth 返回指定年月的天数，月份非法时返回 0。
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	// 下个月第 0 天即本月最后一天
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDateStamp 解析 YYYY-MM-DD 日期串。
func ParseDateStamp(stamp string) (year, month, day int, err error) {
	t, err := time.Parse("2006-01-02", stamp)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("非法的日期串 %q: %w", stamp, err)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// ParseMonthStamp 解析 YYYY-MM 月份串。
func ParseMonthStamp(stamp string) (year, month int, err error) {
	t, err := time.Parse("2006-01", stamp)
	if err != nil {
		return 0, 0, fmt.Errorf("非法的月份串 %q: %w", stamp, err)
	}
	return t.Year(), int(t.Month()), nil
}
