package importer

import (
	"fmt"
	"strconv"
	"strings"

	"compass/internal/model"
	"compass/internal/normalizer"
)

// SheetKind 表格类型
type SheetKind string

const (
	SheetRecords SheetKind = "records" // 项目明细表
	SheetTargets SheetKind = "targets" // 销售目标表
	SheetUnknown SheetKind = "unknown"
)

// recognizeSheet 按表头识别表格类型。
// 目标表以“目标额 + 年份/月份”为特征，项目表以“金额 + 阶段”为特征。
func recognizeSheet(headers []string) SheetKind {
	var hasTarget, hasYearMonth, hasAmount, hasPhase bool
	for _, h := range headers {
		h = normalizeHeader(h)
		switch {
		case strings.Contains(h, "目标额"), strings.Contains(h, "目标金额"):
			hasTarget = true
		case strings.Contains(h, "年份"), strings.Contains(h, "月份"):
			hasYearMonth = true
		case strings.Contains(h, "金额"):
			hasAmount = true
		case strings.Contains(h, "阶段"), strings.Contains(h, "状态"):
			hasPhase = true
		}
	}
	if hasTarget && hasYearMonth {
		return SheetTargets
	}
	if hasAmount && hasPhase {
		return SheetRecords
	}
	return SheetUnknown
}

// normalizeHeader 去除表头中的空白与换行
func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\n", "")
	h = strings.ReplaceAll(h, "\r", "")
	h = strings.ReplaceAll(h, " ", "")
	return strings.TrimSpace(h)
}

// recordColumns 项目明细表的列下标映射
type recordColumns struct {
	projectID   int
	name        int
	region      int
	city        int
	salesperson int
	anchor      int
	amount      int
	phase       int
	excluded    int
	reason      int
	expected    int
	current     int
}

// mapRecordColumns 按表头名映射项目明细列；未出现的列置 -1
func mapRecordColumns(headers []string) recordColumns {
	cols := recordColumns{
		projectID: -1, name: -1, region: -1, city: -1, salesperson: -1,
		anchor: -1, amount: -1, phase: -1, excluded: -1, reason: -1,
		expected: -1, current: -1,
	}
	for i, h := range headers {
		h = normalizeHeader(h)
		switch {
		case strings.Contains(h, "项目编号"), strings.Contains(h, "项目ID"):
			cols.projectID = i
		case strings.Contains(h, "项目名称"):
			cols.name = i
		case strings.Contains(h, "大区"):
			cols.region = i
		case strings.Contains(h, "城市"):
			cols.city = i
		case strings.Contains(h, "业务员"), strings.Contains(h, "销售员"):
			cols.salesperson = i
		case strings.Contains(h, "日期"), strings.Contains(h, "完成时间"):
			cols.anchor = i
		case strings.Contains(h, "剔除原因"):
			cols.reason = i
		case strings.Contains(h, "剔除"):
			cols.excluded = i
		case strings.Contains(h, "预期进度"):
			cols.expected = i
		case strings.Contains(h, "当前进度"), strings.Contains(h, "实际进度"):
			cols.current = i
		case strings.Contains(h, "金额"):
			cols.amount = i
		case strings.Contains(h, "阶段"), strings.Contains(h, "状态"):
			cols.phase = i
		}
	}
	return cols
}

// cell 安全取单元格，下标越界或未映射返回空串
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRecordRows 将项目明细表数据行转换为待归一的原始行。
// 首行为表头；整行为空的行跳过。
func parseRecordRows(rows [][]string, sheetName, sourceFile string) []normalizer.RawRecord {
	if len(rows) < 2 {
		return nil
	}
	cols := mapRecordColumns(rows[0])

	var out []normalizer.RawRecord
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		out = append(out, normalizer.RawRecord{
			ProjectID:        cell(row, cols.projectID),
			Name:             cell(row, cols.name),
			Region:           cell(row, cols.region),
			City:             cell(row, cols.city),
			Salesperson:      cell(row, cols.salesperson),
			AnchorText:       cell(row, cols.anchor),
			AmountText:       cell(row, cols.amount),
			PhaseText:        cell(row, cols.phase),
			ExcludedText:     cell(row, cols.excluded),
			ExcludeReason:    cell(row, cols.reason),
			ExpectedProgress: cell(row, cols.expected),
			CurrentProgress:  cell(row, cols.current),
			RowNo:            i + 2, // Excel 行号（含表头）
			SourceSheet:      sheetName,
			SourceFile:       sourceFile,
		})
	}
	return out
}

// parseTargetRows 解析销售目标表。
// 返回合法目标行与解析缺陷（与项目行缺陷同口径上报）。
func parseTargetRows(rows [][]string, sheetName string) ([]model.SalesTarget, []normalizer.Defect) {
	if len(rows) < 2 {
		return nil, nil
	}

	region, city, person, year, month, amount := -1, -1, -1, -1, -1, -1
	for i, h := range rows[0] {
		h = normalizeHeader(h)
		switch {
		case strings.Contains(h, "大区"):
			region = i
		case strings.Contains(h, "城市"):
			city = i
		case strings.Contains(h, "业务员"), strings.Contains(h, "销售员"):
			person = i
		case strings.Contains(h, "年份"), h == "年":
			year = i
		case strings.Contains(h, "月份"), h == "月":
			month = i
		case strings.Contains(h, "目标额"), strings.Contains(h, "目标金额"):
			amount = i
		}
	}

	var targets []model.SalesTarget
	var defects []normalizer.Defect
	fail := func(rowNo int, field, reason string) {
		defects = append(defects, normalizer.Defect{
			RowNo:       rowNo,
			SourceSheet: sheetName,
			Field:       field,
			Reason:      reason,
		})
	}

	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rowNo := i + 2

		r := cell(row, region)
		if r == "" {
			fail(rowNo, "region", "目标行缺少大区")
			continue
		}
		y, err := strconv.Atoi(cell(row, year))
		if err != nil || y <= 0 {
			fail(rowNo, "year", fmt.Sprintf("年份无法解析: %s", cell(row, year)))
			continue
		}
		m, err := strconv.Atoi(cell(row, month))
		if err != nil || m < 1 || m > 12 {
			fail(rowNo, "month", fmt.Sprintf("月份无法解析: %s", cell(row, month)))
			continue
		}
		amt, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, amount), ",", ""), 64)
		if err != nil || amt < 0 {
			fail(rowNo, "amount", fmt.Sprintf("目标额无法解析: %s", cell(row, amount)))
			continue
		}

		targets = append(targets, model.SalesTarget{
			Region:      r,
			City:        cell(row, city),
			Salesperson: cell(row, person),
			Year:        y,
			Month:       m,
			Amount:      amt,
		})
	}

	return targets, defects
}

// isEmptyRow 整行为空
func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
