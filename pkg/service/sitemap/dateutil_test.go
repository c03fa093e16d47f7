package sitemap

import (
	"testing"
)

func TestFormatDateStamp(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    int
		day      int
		expected string
	}{
		{
			name:     "常规日期",
			year:     2024,
			month:    7,
			day:      15,
			expected: "2024-07-15",
		},
		{
			name:     "个位数月日补零",
			year:     2023,
			month:    1,
			day:      5,
			expected: "2023-01-05",
		},
		{
			name:     "起始年份",
			year:     1970,
			month:    1,
			day:      1,
			expected: "1970-01-01",
		},
		{
			name:     "闰日",
			year:     2024,
			month:    2,
			day:      29,
			expected: "2024-02-29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDateStamp(tt.year, tt.month, tt.day)
			if got != tt.expected {
				t.Errorf("FormatDateStamp(%d, %d, %d) = %q, 期望 %q", tt.year, tt.month, tt.day, got, tt.expected)
			}
		})
	}
}

func TestDateStampRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		day   int
	}{
		{name: "常规日期", year: 2024, month: 7, day: 15},
		{name: "年初", year: 2020, month: 1, day: 1},
		{name: "年末", year: 2020, month: 12, day: 31},
		{name: "闰日", year: 2024, month: 2, day: 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp := FormatDateStamp(tt.year, tt.month, tt.day)
			y, m, d, err := ParseDateStamp(stamp)
			if err != nil {
				t.Fatalf("ParseDateStamp(%q) 返回错误: %v", stamp, err)
			}
			if y != tt.year || m != tt.month || d != tt.day {
				t.Errorf("往返解析 %q 得到 (%d, %d, %d)，期望 (%d, %d, %d)", stamp, y, m, d, tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestParseDateStampInvalid(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
	}{
		{name: "空字符串", stamp: ""},
		{name: "缺少日", stamp: "2024-07"},
		{name: "非闰年的2月29日", stamp: "2023-02-29"},
		{name: "月份越界", stamp: "2024-13-01"},
		{name: "乱序格式", stamp: "15-07-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ParseDateStamp(tt.stamp); err == nil {
				t.Errorf("ParseDateStamp(%q) 应当返回错误", tt.stamp)
			}
		})
	}
}

func TestMonthStampRoundTrip(t *testing.T) {
	stamp := FormatMonthStamp(2024, 2)
	if stamp != "2024-02" {
		t.Fatalf("FormatMonthStamp(2024, 2) = %q, 期望 %q", stamp, "2024-02")
	}
	y, m, err := ParseMonthStamp(stamp)
	if err != nil {
		t.Fatalf("ParseMonthStamp(%q) 返回错误: %v", stamp, err)
	}
	if y != 2024 || m != 2 {
		t.Errorf("往返解析得到 (%d, %d)，期望 (2024, 2)", y, m)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    int
		expected int
	}{
		{name: "闰年2月", year: 2024, month: 2, expected: 29},
		{name: "平年2月", year: 2023, month: 2, expected: 28},
		{name: "世纪年非闰", year: 1900, month: 2, expected: 28},
		{name: "世纪年闰", year: 2000, month: 2, expected: 29},
		{name: "大月", year: 2024, month: 1, expected: 31},
		{name: "小月", year: 2024, month: 4, expected: 30},
		{name: "月份为0", year: 2024, month: 0, expected: 0},
		{name: "月份越界", year: 2024, month: 13, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysInMonth(tt.year, tt.month)
			if got != tt.expected {
				t.Errorf("DaysInMonth(%d, %d) = %d, 期望 %d", tt.year, tt.month, got, tt.expected)
			}
		})
	}
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    int
		day      int
		expected bool
	}{
		{name: "常规日期", year: 2024, month: 7, day: 15, expected: true},
		{name: "闰日", year: 2024, month: 2, day: 29, expected: true},
		{name: "非闰年的闰日", year: 2023, month: 2, day: 29, expected: false},
		{name: "日为0", year: 2024, month: 7, day: 0, expected: false},
		{name: "月为0", year: 2024, month: 0, day: 1, expected: false},
		{name: "年为0", year: 0, month: 1, day: 1, expected: false},
		{name: "4月31日", year: 2024, month: 4, day: 31, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidDate(tt.year, tt.month, tt.day)
			if got != tt.expected {
				t.Errorf("IsValidDate(%d, %d, %d) = %v, 期望 %v", tt.year, tt.month, tt.day, got, tt.expected)
			}
		})
	}
}
