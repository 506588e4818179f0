package indexer

import (
	"fmt"
	"time"
)

// WindowKind 时间窗口粒度
type WindowKind string

const (
	WindowMonth    WindowKind = "month"
	WindowQuarter  WindowKind = "quarter"
	WindowHalfYear WindowKind = "halfYear"
)

// ValidKind 判断窗口粒度是否合法
func ValidKind(k WindowKind) bool {
	return k == WindowMonth || k == WindowQuarter || k == WindowHalfYear
}

// Window 时间窗口，边界为 [Start, End)。
// 同一粒度下窗口互不重叠；跨粒度按区间包含关系嵌套
// （某月的记录必然是其所在季度/半年的子集）。
type Window struct {
	Kind  WindowKind `json:"kind"`
	Year  int        `json:"year"`
	Index int        `json:"index"` // 月 1-12 / 季 1-4 / 半年 1-2

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// NewWindow 构造窗口并计算边界
func NewWindow(kind WindowKind, year, index int) (Window, error) {
	w := Window{Kind: kind, Year: year, Index: index}
	if year <= 0 {
		return w, fmt.Errorf("非法年份: %d", year)
	}
	var startMonth, months int
	switch kind {
	case WindowMonth:
		if index < 1 || index > 12 {
			return w, fmt.Errorf("非法月份: %d", index)
		}
		startMonth, months = index, 1
	case WindowQuarter:
		if index < 1 || index > 4 {
			return w, fmt.Errorf("非法季度: %d", index)
		}
		startMonth, months = (index-1)*3+1, 3
	case WindowHalfYear:
		if index < 1 || index > 2 {
			return w, fmt.Errorf("非法半年序号: %d", index)
		}
		startMonth, months = (index-1)*6+1, 6
	default:
		return w, fmt.Errorf("非法窗口粒度: %s", kind)
	}
	w.Start = time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.Local)
	w.End = w.Start.AddDate(0, months, 0)
	return w, nil
}

// WindowFor 将时间锚点归入指定粒度的唯一窗口
func WindowFor(kind WindowKind, t time.Time) Window {
	year := t.Year()
	month := int(t.Month())
	var index int
	switch kind {
	case WindowQuarter:
		index = (month-1)/3 + 1
	case WindowHalfYear:
		index = (month-1)/6 + 1
	default:
		index = month
	}
	w, _ := NewWindow(kind, year, index)
	return w
}

// Contains 判断时间锚点是否落在窗口内
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ContainsWindow 判断 other 是否完全落在 w 内（跨粒度嵌套关系）
func (w Window) ContainsWindow(other Window) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Key 窗口的稳定标识，如 2026-03 / 2026-Q1 / 2026-H1
func (w Window) Key() string {
	switch w.Kind {
	case WindowQuarter:
		return fmt.Sprintf("%d-Q%d", w.Year, w.Index)
	case WindowHalfYear:
		return fmt.Sprintf("%d-H%d", w.Year, w.Index)
	default:
		return fmt.Sprintf("%d-%02d", w.Year, w.Index)
	}
}

// ParseKey 解析窗口标识（Key 的逆操作）
func ParseKey(key string) (Window, error) {
	var year, index int
	if _, err := fmt.Sscanf(key, "%d-Q%d", &year, &index); err == nil {
		return NewWindow(WindowQuarter, year, index)
	}
	if _, err := fmt.Sscanf(key, "%d-H%d", &year, &index); err == nil {
		return NewWindow(WindowHalfYear, year, index)
	}
	if _, err := fmt.Sscanf(key, "%d-%d", &year, &index); err == nil {
		return NewWindow(WindowMonth, year, index)
	}
	return Window{}, fmt.Errorf("非法窗口标识: %s", key)
}

// Previous 同粒度的上一个窗口（用于趋势对比）
func (w Window) Previous() Window {
	year, index := w.Year, w.Index-1
	if index < 1 {
		year--
		switch w.Kind {
		case WindowQuarter:
			index = 4
		case WindowHalfYear:
			index = 2
		default:
			index = 12
		}
	}
	prev, _ := NewWindow(w.Kind, year, index)
	return prev
}

// Label 窗口的展示名称
func (w Window) Label() string {
	switch w.Kind {
	case WindowQuarter:
		return fmt.Sprintf("%d年第%d季度", w.Year, w.Index)
	case WindowHalfYear:
		if w.Index == 1 {
			return fmt.Sprintf("%d年上半年", w.Year)
		}
		return fmt.Sprintf("%d年下半年", w.Year)
	default:
		return fmt.Sprintf("%d年%d月", w.Year, w.Index)
	}
}

// Months 窗口覆盖的 (年, 月) 列表，用于目标额按月配额求和
func (w Window) Months() [][2]int {
	var out [][2]int
	for t := w.Start; t.Before(w.End); t = t.AddDate(0, 1, 0) {
		out = append(out, [2]int{t.Year(), int(t.Month())})
	}
	return out
}
