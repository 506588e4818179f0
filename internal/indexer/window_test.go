package indexer

import (
	"testing"
	"time"
)

func TestWindowForClassification(t *testing.T) {
	anchor := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)

	m := WindowFor(WindowMonth, anchor)
	if m.Key() != "2026-03" {
		t.Fatalf("月窗口 = %s, 期望 2026-03", m.Key())
	}
	q := WindowFor(WindowQuarter, anchor)
	if q.Key() != "2026-Q1" {
		t.Fatalf("季窗口 = %s, 期望 2026-Q1", q.Key())
	}
	h := WindowFor(WindowHalfYear, anchor)
	if h.Key() != "2026-H1" {
		t.Fatalf("半年窗口 = %s, 期望 2026-H1", h.Key())
	}
}

func TestWindowNesting(t *testing.T) {
	m, _ := NewWindow(WindowMonth, 2026, 3)
	q, _ := NewWindow(WindowQuarter, 2026, 1)
	h, _ := NewWindow(WindowHalfYear, 2026, 1)

	if !q.ContainsWindow(m) {
		t.Fatalf("2026-03 应嵌套于 2026-Q1")
	}
	if !h.ContainsWindow(q) {
		t.Fatalf("2026-Q1 应嵌套于 2026-H1")
	}

	q2, _ := NewWindow(WindowQuarter, 2026, 2)
	if q2.ContainsWindow(m) {
		t.Fatalf("2026-03 不应嵌套于 2026-Q2")
	}
}

func TestWindowBoundariesHalfOpen(t *testing.T) {
	m, _ := NewWindow(WindowMonth, 2026, 3)

	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	last := time.Date(2026, 3, 31, 23, 59, 59, 0, time.Local)
	next := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)

	if !m.Contains(first) || !m.Contains(last) {
		t.Fatalf("月内锚点未被包含")
	}
	if m.Contains(next) {
		t.Fatalf("下月首日不应被包含（右开区间）")
	}
}

func TestSameKindWindowsDisjoint(t *testing.T) {
	anchor := time.Date(2026, 6, 30, 12, 0, 0, 0, time.Local)

	hits := 0
	for idx := 1; idx <= 4; idx++ {
		q, _ := NewWindow(WindowQuarter, 2026, idx)
		if q.Contains(anchor) {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("锚点命中 %d 个季度窗口, 期望恰好 1 个", hits)
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	keys := []string{"2026-03", "2026-12", "2026-Q1", "2026-Q4", "2026-H1", "2026-H2"}
	for _, key := range keys {
		w, err := ParseKey(key)
		if err != nil {
			t.Fatalf("解析 %s 失败: %v", key, err)
		}
		if w.Key() != key {
			t.Fatalf("回环不一致: %s -> %s", key, w.Key())
		}
	}

	for _, bad := range []string{"", "2026", "2026-13", "2026-Q5", "2026-H3", "abc"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("非法标识 %q 未报错", bad)
		}
	}
}

func TestPreviousCrossesYear(t *testing.T) {
	jan, _ := NewWindow(WindowMonth, 2026, 1)
	if prev := jan.Previous(); prev.Key() != "2025-12" {
		t.Fatalf("2026-01 上一窗口 = %s, 期望 2025-12", prev.Key())
	}

	q1, _ := NewWindow(WindowQuarter, 2026, 1)
	if prev := q1.Previous(); prev.Key() != "2025-Q4" {
		t.Fatalf("2026-Q1 上一窗口 = %s, 期望 2025-Q4", prev.Key())
	}
}

func TestWindowMonths(t *testing.T) {
	q, _ := NewWindow(WindowQuarter, 2026, 2)
	months := q.Months()
	want := [][2]int{{2026, 4}, {2026, 5}, {2026, 6}}
	if len(months) != len(want) {
		t.Fatalf("月份数 = %d, 期望 %d", len(months), len(want))
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("月份[%d] = %v, 期望 %v", i, months[i], want[i])
		}
	}
}
