// Package importer Excel 导入协调：识别表格类型、归一校验、
// 批量入库，并通过进度通道上报各阶段事件。
package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"compass/internal/indexer"
	"compass/internal/normalizer"
	"compass/internal/store"
)

// Coordinator 导入协调器
type Coordinator struct {
	store *store.Store
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store) *Coordinator {
	return &Coordinator{store: st}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string

	// SourceName 记录的来源文件名；为空时取 FilePath 的文件名。
	// 上传场景下 FilePath 是临时文件，须用原始文件名覆盖，
	// 否则 ClearExisting 无法匹配此前同名文件的旧记录。
	SourceName string

	ClearExisting       bool // 是否清空同来源文件的旧记录
	UpdateCurrentWindow bool // 是否把当前窗口更新为导入数据所在月份
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"` // start/info/warning/sheet_start/sheet_done/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SheetResult 单个 Sheet 的处理结果
type SheetResult struct {
	SheetName    string              `json:"sheetName"`
	Kind         SheetKind           `json:"kind"`
	Status       string              `json:"status"` // imported/skipped/error
	ImportedRows int                 `json:"importedRows"`
	DefectRows   int                 `json:"defectRows"`
	Defects      []normalizer.Defect `json:"defects,omitempty"`
	Errors       []string            `json:"errors,omitempty"`
	Duration     time.Duration       `json:"duration"`
}

// ImportReport 导入汇总报告
type ImportReport struct {
	BatchID  string `json:"batchId"`
	Filename string `json:"filename"`

	TotalSheets    int `json:"totalSheets"`
	ImportedSheets int `json:"importedSheets"`
	SkippedSheets  int `json:"skippedSheets"`

	TotalRows    int `json:"totalRows"`
	ImportedRows int `json:"importedRows"`
	DefectRows   int `json:"defectRows"`

	Sheets   []SheetResult `json:"sheets"`
	Duration time.Duration `json:"duration"`
}

// importContext 单次导入的上下文
type importContext struct {
	opts         ImportOptions
	file         *excelize.File
	report       *ImportReport
	progressChan chan ProgressEvent
	logID        int64

	// 首条入库记录所在的月份窗口，用于更新当前窗口
	firstWindow *indexer.Window
}

// Import 执行导入，返回进度通道；通道在导入结束后关闭
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	filename := opts.SourceName
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}
	batchID := uuid.New().String()

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始导入 Excel 文件",
		Data:      map[string]string{"filename": filename, "batchId": batchID},
		Timestamp: time.Now(),
	})

	logID, err := c.store.CreateImportLog(batchID, filename)
	if err != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("创建导入日志失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		c.finishLog(logID, &ImportReport{}, "error", fmt.Sprintf("打开文件失败: %v", err))
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("打开文件失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}
	defer file.Close()

	ctx := &importContext{
		opts:         opts,
		file:         file,
		progressChan: progressChan,
		logID:        logID,
		report: &ImportReport{
			BatchID:  batchID,
			Filename: filename,
		},
	}

	if opts.ClearExisting {
		if err := c.store.DeleteRecordsByFile(filename); err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("清空旧数据失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}

	sheetList := file.GetSheetList()
	ctx.report.TotalSheets = len(sheetList)

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   fmt.Sprintf("发现 %d 个 Sheet", len(sheetList)),
		Data:      map[string]interface{}{"total_sheets": len(sheetList)},
		Timestamp: time.Now(),
	})

	for _, sheetName := range sheetList {
		c.processSheet(ctx, sheetName)
	}

	if opts.UpdateCurrentWindow && ctx.firstWindow != nil {
		if err := c.store.SetCurrentWindowKey(ctx.firstWindow.Key()); err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("更新当前窗口失败: %v", err),
				Timestamp: time.Now(),
			})
		} else {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "info",
				Message:   fmt.Sprintf("当前窗口已更新为: %s", ctx.firstWindow.Label()),
				Timestamp: time.Now(),
			})
		}
	}

	ctx.report.Duration = time.Since(startTime)
	c.finishLog(logID, ctx.report, "done", "")

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      ctx.report,
		Timestamp: time.Now(),
	})
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ctx *importContext, sheetName string) {
	sheetStartTime := time.Now()

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("正在解析 Sheet: %s", sheetName),
		Data:      map[string]string{"sheet_name": sheetName},
		Timestamp: time.Now(),
	})

	rows, err := ctx.file.GetRows(sheetName)
	if err != nil || len(rows) < 1 {
		c.recordSheetResult(ctx, SheetResult{
			SheetName: sheetName,
			Kind:      SheetUnknown,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("读取 Sheet 失败: %v", err)},
			Duration:  time.Since(sheetStartTime),
		})
		return
	}

	kind := recognizeSheet(rows[0])
	switch kind {
	case SheetRecords:
		c.processRecordSheet(ctx, sheetName, rows, sheetStartTime)
	case SheetTargets:
		c.processTargetSheet(ctx, sheetName, rows, sheetStartTime)
	default:
		c.recordSheetResult(ctx, SheetResult{
			SheetName: sheetName,
			Kind:      SheetUnknown,
			Status:    "skipped",
			Errors:    []string{"无法识别 Sheet 类型"},
			Duration:  time.Since(sheetStartTime),
		})
		c.sendProgress(ctx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("无法识别 Sheet: %s", sheetName),
			Timestamp: time.Now(),
		})
	}
}

// processRecordSheet 处理项目明细表：归一校验后批量入库
func (c *Coordinator) processRecordSheet(ctx *importContext, sheetName string, rows [][]string, startedAt time.Time) {
	raw := parseRecordRows(rows, sheetName, ctx.report.Filename)
	records, defects := normalizer.Normalize(raw)

	if err := c.store.BatchInsertRecords(records); err != nil {
		c.recordSheetResult(ctx, SheetResult{
			SheetName:  sheetName,
			Kind:       SheetRecords,
			Status:     "error",
			DefectRows: len(defects),
			Defects:    defects,
			Errors:     []string{fmt.Sprintf("批量插入失败: %v", err)},
			Duration:   time.Since(startedAt),
		})
		return
	}

	if ctx.firstWindow == nil && len(records) > 0 {
		w := indexer.WindowFor(indexer.WindowMonth, records[0].Anchor)
		ctx.firstWindow = &w
	}

	c.recordSheetResult(ctx, SheetResult{
		SheetName:    sheetName,
		Kind:         SheetRecords,
		Status:       "imported",
		ImportedRows: len(records),
		DefectRows:   len(defects),
		Defects:      defects,
		Duration:     time.Since(startedAt),
	})

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行, 缺陷 %d 行", sheetName, len(records), len(defects)),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"imported_rows": len(records),
			"defect_rows":   len(defects),
		},
		Timestamp: time.Now(),
	})
}

// processTargetSheet 处理销售目标表
func (c *Coordinator) processTargetSheet(ctx *importContext, sheetName string, rows [][]string, startedAt time.Time) {
	targets, defects := parseTargetRows(rows, sheetName)

	if err := c.store.BatchInsertTargets(targets); err != nil {
		c.recordSheetResult(ctx, SheetResult{
			SheetName:  sheetName,
			Kind:       SheetTargets,
			Status:     "error",
			DefectRows: len(defects),
			Defects:    defects,
			Errors:     []string{fmt.Sprintf("批量插入失败: %v", err)},
			Duration:   time.Since(startedAt),
		})
		return
	}

	c.recordSheetResult(ctx, SheetResult{
		SheetName:    sheetName,
		Kind:         SheetTargets,
		Status:       "imported",
		ImportedRows: len(targets),
		DefectRows:   len(defects),
		Defects:      defects,
		Duration:     time.Since(startedAt),
	})

	c.sendProgress(ctx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("Sheet \"%s\" 导入成功: %d 行目标", sheetName, len(targets)),
		Data: map[string]interface{}{
			"sheet_name":    sheetName,
			"imported_rows": len(targets),
		},
		Timestamp: time.Now(),
	})
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ctx *importContext, result SheetResult) {
	ctx.report.Sheets = append(ctx.report.Sheets, result)

	switch result.Status {
	case "imported":
		ctx.report.ImportedSheets++
		ctx.report.ImportedRows += result.ImportedRows
	case "skipped":
		ctx.report.SkippedSheets++
	}

	ctx.report.DefectRows += result.DefectRows
	ctx.report.TotalRows += result.ImportedRows + result.DefectRows
}

// finishLog 落盘导入日志
func (c *Coordinator) finishLog(logID int64, r *ImportReport, status, errMsg string) {
	_ = c.store.UpdateImportLog(logID,
		r.TotalSheets, r.ImportedSheets, r.SkippedSheets,
		r.TotalRows, r.ImportedRows, r.DefectRows,
		status, errMsg)
}

// sendProgress 发送进度事件；通道已满时丢弃
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
