// Package normalizer 将原始异构行校验并归一为规范化的项目记录。
// 校验失败的行被丢弃并记为缺陷，绝不静默置零，也不会中断整批。
package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"compass/internal/model"
)

// RawRecord 原始项目行（导入表格或外部提供方给出的未校验数据）
type RawRecord struct {
	ProjectID   string
	Name        string
	Region      string
	City        string
	Salesperson string

	AnchorText string // 日期文本
	AmountText string // 金额文本
	PhaseText  string // 阶段文本（中文名称或代码）

	ExcludedText     string // 是否剔除
	ExcludeReason    string
	ExpectedProgress string
	CurrentProgress  string

	RowNo       int
	SourceSheet string
	SourceFile  string
}

// Defect 单行校验缺陷
type Defect struct {
	RowNo       int    `json:"rowNo"`
	SourceSheet string `json:"sourceSheet"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
}

// anchorLayouts 支持的日期格式，按常见程度排列
var anchorLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006/01",
	"2006-01-02 15:04:05",
}

// Normalize 批量归一。返回通过校验的记录与缺陷清单；
// 单行失败只影响该行（部分失败容忍）。
func Normalize(rows []RawRecord) ([]model.ProjectRecord, []Defect) {
	records := make([]model.ProjectRecord, 0, len(rows))
	var defects []Defect

	for _, row := range rows {
		rec, defect := normalizeOne(row)
		if defect != nil {
			defects = append(defects, *defect)
			continue
		}
		records = append(records, rec)
	}

	return records, defects
}

// normalizeOne 校验并归一单行
func normalizeOne(row RawRecord) (model.ProjectRecord, *Defect) {
	fail := func(field, reason string) (model.ProjectRecord, *Defect) {
		return model.ProjectRecord{}, &Defect{
			RowNo:       row.RowNo,
			SourceSheet: row.SourceSheet,
			Field:       field,
			Reason:      reason,
		}
	}

	region := strings.TrimSpace(row.Region)
	if region == "" {
		return fail("region", "组织路径缺少大区")
	}

	amount, err := parseAmount(row.AmountText)
	if err != nil {
		return fail("amount", err.Error())
	}

	anchor, err := parseAnchor(row.AnchorText)
	if err != nil {
		return fail("anchor", err.Error())
	}

	phase, err := parsePhase(row.PhaseText)
	if err != nil {
		return fail("phase", err.Error())
	}

	excluded := parseBool(row.ExcludedText)
	reason := strings.TrimSpace(row.ExcludeReason)
	if excluded {
		if reason == "" {
			reason = model.ExcludeNotConfirmed
		} else if !model.ValidExcludeReason(reason) {
			return fail("excludeReason", fmt.Sprintf("未知剔除原因代码: %s", reason))
		}
	}

	projectID := strings.TrimSpace(row.ProjectID)
	if projectID == "" {
		// 编号缺失不算缺陷，补一个本地编号以保证可追踪
		projectID = fmt.Sprintf("p_%s", uuid.New().String()[:8])
	}

	return model.ProjectRecord{
		ProjectID:        projectID,
		Name:             strings.TrimSpace(row.Name),
		Region:           region,
		City:             strings.TrimSpace(row.City),
		Salesperson:      strings.TrimSpace(row.Salesperson),
		Anchor:           anchor,
		Amount:           amount,
		Phase:            phase,
		Excluded:         excluded,
		ExcludeReason:    reason,
		ExpectedProgress: parseProgress(row.ExpectedProgress),
		CurrentProgress:  parseProgress(row.CurrentProgress),
		SourceSheet:      row.SourceSheet,
		SourceFile:       row.SourceFile,
	}, nil
}

// parseAmount 金额必须是有限的非负数
func parseAmount(text string) (float64, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return 0, fmt.Errorf("金额为空")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("金额无法解析: %s", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("金额不是有限数值: %s", text)
	}
	if v < 0 {
		return 0, fmt.Errorf("金额为负数: %s", text)
	}
	return v, nil
}

// parseAnchor 时间锚点必须能解析到具体日期
func parseAnchor(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("时间锚点为空")
	}
	for _, layout := range anchorLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t, nil
		}
	}
	// 中文日期格式: 2026年3月 / 2026年3月5日
	if t, ok := parseChineseDate(text); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("时间锚点无法解析: %s", text)
}

// parseChineseDate 解析 yyyy年m月[d日] 格式
func parseChineseDate(text string) (time.Time, bool) {
	var year, month, day int
	if _, err := fmt.Sscanf(text, "%d年%d月%d日", &year, &month, &day); err == nil {
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
		}
	}
	if _, err := fmt.Sscanf(text, "%d年%d月", &year, &month); err == nil {
		if month >= 1 && month <= 12 {
			return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), true
		}
	}
	return time.Time{}, false
}

// parsePhase 阶段文本映射到三段式口径
func parsePhase(text string) (string, error) {
	t := strings.TrimSpace(text)
	switch t {
	case model.PhaseWon, model.PhaseContract, model.PhaseReserve:
		return t, nil
	}
	switch {
	case strings.Contains(t, "赢单"), strings.Contains(t, "中标"),
		strings.Contains(t, "已签约"), strings.Contains(t, "已完成"):
		return model.PhaseWon, nil
	case strings.Contains(t, "商务"), strings.Contains(t, "采购"),
		strings.Contains(t, "合同"), strings.Contains(t, "谈判"):
		return model.PhaseContract, nil
	case strings.Contains(t, "储备"), strings.Contains(t, "方案"),
		strings.Contains(t, "意向"):
		return model.PhaseReserve, nil
	}
	return "", fmt.Errorf("阶段无法识别: %s", text)
}

// parseBool 宽松的布尔解析，空串为 false
func parseBool(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "是", "y", "yes", "true", "1":
		return true
	}
	return false
}

// parseProgress 进度解析失败按 0 处理（仅信息用途，不参与合计）
func parseProgress(text string) float64 {
	text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
