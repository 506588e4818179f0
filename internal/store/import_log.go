package store

import (
	"database/sql"
	"fmt"

	"compass/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(batchID, filename string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (batch_id, filename, status)
		VALUES (?, ?, 'processing')
	`, batchID, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, defectRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			total_rows = ?,
			imported_rows = ?,
			defect_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalSheets, importedSheets, skippedSheets, totalRows, importedRows, defectRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// GetLatestImportLog 获取最近一条导入日志；无记录时返回 nil
func (s *Store) GetLatestImportLog() (*model.ImportLog, error) {
	row := s.db.QueryRow(`
		SELECT id, batch_id, filename,
			total_sheets, imported_sheets, skipped_sheets,
			total_rows, imported_rows, defect_rows,
			status, error_message, started_at, completed_at
		FROM import_logs ORDER BY id DESC LIMIT 1
	`)

	var log model.ImportLog
	var completedAt sql.NullTime
	err := row.Scan(
		&log.ID, &log.BatchID, &log.Filename,
		&log.TotalSheets, &log.ImportedSheets, &log.SkippedSheets,
		&log.TotalRows, &log.ImportedRows, &log.DefectRows,
		&log.Status, &log.ErrorMessage, &log.StartedAt, &completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan import log: %w", err)
	}
	if completedAt.Valid {
		log.CompletedAt = &completedAt.Time
	}
	return &log, nil
}
