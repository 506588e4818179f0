package store

import (
	"fmt"

	"compass/internal/model"
)

// BatchInsertTargets 批量写入销售目标。
// 同一 (组织路径, 年, 月) 的配额以最后一次写入为准。
func (s *Store) BatchInsertTargets(targets []model.SalesTarget) error {
	if len(targets) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sales_targets (region, city, salesperson, year, month, amount)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(region, city, salesperson, year, month)
		DO UPDATE SET amount = excluded.amount
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range targets {
		if _, err := stmt.Exec(t.Region, t.City, t.Salesperson, t.Year, t.Month, t.Amount); err != nil {
			return fmt.Errorf("failed to insert target: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountTargets 统计销售目标总数
func (s *Store) CountTargets() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sales_targets").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count targets: %w", err)
	}
	return count, nil
}

// GetTargets 查询指定年月范围内的全部销售目标。
// months 为 (年, 月) 列表，对应一个时间窗口覆盖的各个月份。
func (s *Store) GetTargets(months [][2]int) ([]model.SalesTarget, error) {
	if len(months) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, region, city, salesperson, year, month, amount
		FROM sales_targets WHERE `
	args := []interface{}{}
	for i, ym := range months {
		if i > 0 {
			query += " OR "
		}
		query += "(year = ? AND month = ?)"
		args = append(args, ym[0], ym[1])
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var out []model.SalesTarget
	for rows.Next() {
		var t model.SalesTarget
		if err := rows.Scan(&t.ID, &t.Region, &t.City, &t.Salesperson, &t.Year, &t.Month, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
