/*
 * @Description: 时区工具，日期分区统一按中国时区（UTC+8）切分
 * @Author: 安知鱼
 * @Date: 2025-08-20 15:15:37
 * @LastEditTime: 2025-08-26 11:03:02
 * @LastEditors: 安知鱼
 */
package utils

import "time"

// ChinaLoc 中国时区（UTC+8），与博客内容的写入时间保持一致
var ChinaLoc = time.FixedZone("CST", 8*60*60)

// NowInChina 返回中国时区的当前时间
func NowInChina() time.Time {
	return time.Now().In(ChinaLoc)
}

// ToChina 将时间转换到中国时区
func ToChina(t time.Time) time.Time {
	return t.In(ChinaLoc)
}

// StartOfDayInChina 返回该时间在中国时区所在日的零点
func StartOfDayInChina(t time.Time) time.Time {
	t = t.In(ChinaLoc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ChinaLoc)
}

// DayInChina 返回 (年, 月, 日) 在中国时区的零点
func DayInChina(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, ChinaLoc)
}

// ParseInChina 按中国时区解析时间串
func ParseInChina(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, ChinaLoc)
}
