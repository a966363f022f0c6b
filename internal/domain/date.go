package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date 是不含时刻的日历日期。零值为 0001-01-01。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DefaultEarliest 是批量下载默认的最早日期。
var DefaultEarliest = Date{Year: 2016, Month: time.September, Day: 20}

// NewDate 返回规范化后的日期（2024-02-30 -> 2024-03-01）。
func NewDate(year int, month time.Month, day int) Date {
	return DateOfTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOfTime 取 t 在其自身时区中的日历日期。
func DateOfTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateOf 把 epoch 秒转换为 loc 时区的日历日期。
func DateOf(ts int64, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOfTime(time.Unix(ts, 0).In(loc))
}

// Today 返回 loc 时区的当天日期。
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOfTime(time.Now().In(loc))
}

// ParseDate 接受 2006-01-02、2006/01/02 与 20060102。
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOfTime(t), nil
		}
	}
	return Date{}, fmt.Errorf("domain: 无法解析日期 %q", s)
}

func (d Date) IsZero() bool { return d == Date{} }

// Compare 返回 -1 / 0 / +1。
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Within 判断 earliest <= d <= latest（两端包含）。
func (d Date) Within(earliest, latest Date) bool {
	return earliest.Compare(d) <= 0 && d.Compare(latest) <= 0
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
