package store

import (
	"database/sql"
	"fmt"
	"time"

	"compass/internal/model"
)

// BatchInsertRecords 批量插入项目记录
func (s *Store) BatchInsertRecords(records []model.ProjectRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO project_records (
			project_id, name, region, city, salesperson,
			anchor, amount, phase,
			excluded, exclude_reason, expected_progress, current_progress,
			source_sheet, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.ProjectID, r.Name, r.Region, r.City, r.Salesperson,
			r.Anchor, r.Amount, r.Phase,
			r.Excluded, r.ExcludeReason, r.ExpectedProgress, r.CurrentProgress,
			r.SourceSheet, r.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RecordQueryOptions 项目记录查询选项
type RecordQueryOptions struct {
	Region      *string
	City        *string
	Salesperson *string
	Phase       *string
	Excluded    *bool

	// 时间锚点范围 [AnchorFrom, AnchorTo)
	AnchorFrom *time.Time
	AnchorTo   *time.Time

	Limit  int
	Offset int
}

// whereClause 由查询选项拼装 WHERE 子句
func (o RecordQueryOptions) whereClause() (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}

	if o.Region != nil {
		query += " AND region = ?"
		args = append(args, *o.Region)
	}
	if o.City != nil {
		query += " AND city = ?"
		args = append(args, *o.City)
	}
	if o.Salesperson != nil {
		query += " AND salesperson = ?"
		args = append(args, *o.Salesperson)
	}
	if o.Phase != nil {
		query += " AND phase = ?"
		args = append(args, *o.Phase)
	}
	if o.Excluded != nil {
		query += " AND excluded = ?"
		args = append(args, *o.Excluded)
	}
	if o.AnchorFrom != nil {
		query += " AND anchor >= ?"
		args = append(args, *o.AnchorFrom)
	}
	if o.AnchorTo != nil {
		query += " AND anchor < ?"
		args = append(args, *o.AnchorTo)
	}

	return query, args
}

// GetRecords 按条件查询项目记录
func (s *Store) GetRecords(opts RecordQueryOptions) ([]model.ProjectRecord, error) {
	where, args := opts.whereClause()
	query := `
		SELECT id, project_id, name, region, city, salesperson,
			anchor, amount, phase,
			excluded, exclude_reason, expected_progress, current_progress,
			source_sheet, source_file, created_at
		FROM project_records` + where + " ORDER BY id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

// CountRecords 按条件统计项目记录数
func (s *Store) CountRecords(opts RecordQueryOptions) (int, error) {
	where, args := opts.whereClause()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM project_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

// DeleteRecordsByFile 删除指定来源文件的项目记录（重导前清理）
func (s *Store) DeleteRecordsByFile(sourceFile string) error {
	_, err := s.db.Exec("DELETE FROM project_records WHERE source_file = ?", sourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// scanRecordRows 扫描多行项目记录
func scanRecordRows(rows *sql.Rows) ([]model.ProjectRecord, error) {
	var results []model.ProjectRecord

	for rows.Next() {
		var r model.ProjectRecord
		err := rows.Scan(
			&r.ID, &r.ProjectID, &r.Name, &r.Region, &r.City, &r.Salesperson,
			&r.Anchor, &r.Amount, &r.Phase,
			&r.Excluded, &r.ExcludeReason, &r.ExpectedProgress, &r.CurrentProgress,
			&r.SourceSheet, &r.SourceFile, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}
