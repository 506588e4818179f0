package store

import (
	"fmt"

	"compass/internal/indexer"
)

// WindowStat 可用时间窗口统计
type WindowStat struct {
	Window      indexer.Window `json:"window"`
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	RecordCount int            `json:"recordCount"`
}

// ListAvailableWindows 按指定粒度列出存在数据的时间窗口（倒序）。
// 窗口由记录的时间锚点推导，月份数据自动归入所在季度/半年。
func (s *Store) ListAvailableWindows(kind indexer.WindowKind) ([]WindowStat, error) {
	rows, err := s.db.Query(`
		SELECT CAST(strftime('%Y', anchor) AS INTEGER) AS y,
			CAST(strftime('%m', anchor) AS INTEGER) AS m,
			COUNT(1)
		FROM project_records
		GROUP BY y, m
		ORDER BY y DESC, m DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query available windows failed: %w", err)
	}
	defer rows.Close()

	// 月份桶向上归并到目标粒度
	byKey := make(map[string]*WindowStat)
	var order []string
	for rows.Next() {
		var year, month, count int
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, fmt.Errorf("scan available windows failed: %w", err)
		}
		index := month
		switch kind {
		case indexer.WindowQuarter:
			index = (month-1)/3 + 1
		case indexer.WindowHalfYear:
			index = (month-1)/6 + 1
		}
		w, err := indexer.NewWindow(kind, year, index)
		if err != nil {
			return nil, fmt.Errorf("build window failed: %w", err)
		}
		key := w.Key()
		if st, ok := byKey[key]; ok {
			st.RecordCount += count
			continue
		}
		byKey[key] = &WindowStat{Window: w, Key: key, Label: w.Label(), RecordCount: count}
		order = append(order, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available windows failed: %w", err)
	}

	out := make([]WindowStat, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}
