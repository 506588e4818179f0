// Package exporter 把报表树写成 Excel 工作簿：
// 汇总表、各大区明细表与剔除清单各占一个 Sheet。
package exporter

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"compass/internal/engine"
	"compass/internal/model"
	"compass/internal/report"
	"compass/internal/risk"
)

// Exporter 报表导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// summaryHeaders 汇总/明细表共用表头
var summaryHeaders = []string{
	"层级", "名称", "目标额", "已完成", "预测完成", "在手金额",
	"缺口", "覆盖率(%)", "达成率(%)", "趋势", "风险层级",
}

var exclusionHeaders = []string{
	"所属", "项目编号", "项目名称", "剔除原因", "金额",
	"预期进度(%)", "当前进度(%)", "进度差(百分点)",
}

// Export 导出报表为 Excel 工作簿
func (e *Exporter) Export(r *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	summary := fmt.Sprintf("%s汇总", r.Label)
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("重命名汇总表失败: %w", err)
	}

	if err := e.fillSummarySheet(f, summary, r); err != nil {
		_ = f.Close()
		return nil, err
	}

	for _, region := range r.Root.Children {
		if err := e.fillRegionSheet(f, region); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if err := e.fillExclusionSheet(f, r); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// fillSummarySheet 写入全国与各大区一级的汇总
func (e *Exporter) fillSummarySheet(f *excelize.File, sheet string, r *report.Report) error {
	if err := writeRow(f, sheet, 1, toCells(summaryHeaders)); err != nil {
		return err
	}

	rowNo := 2
	if err := writeRow(f, sheet, rowNo, nodeRow("全国", r.Root)); err != nil {
		return err
	}
	for _, region := range r.Root.Children {
		rowNo++
		if err := writeRow(f, sheet, rowNo, nodeRow("大区", region)); err != nil {
			return err
		}
	}
	return nil
}

// fillRegionSheet 写入单个大区的城市/业务员明细
func (e *Exporter) fillRegionSheet(f *excelize.File, region *report.Node) error {
	sheet := region.Key
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建大区表失败 %s: %w", sheet, err)
	}
	if err := writeRow(f, sheet, 1, toCells(summaryHeaders)); err != nil {
		return err
	}

	rowNo := 2
	if err := writeRow(f, sheet, rowNo, nodeRow("大区", region)); err != nil {
		return err
	}
	for _, city := range region.Children {
		rowNo++
		if err := writeRow(f, sheet, rowNo, nodeRow("城市", city)); err != nil {
			return err
		}
		for _, person := range city.Children {
			rowNo++
			if err := writeRow(f, sheet, rowNo, nodeRow("业务员", person)); err != nil {
				return err
			}
		}
	}
	return nil
}

// fillExclusionSheet 写入全量剔除清单（按大区归属）
func (e *Exporter) fillExclusionSheet(f *excelize.File, r *report.Report) error {
	sheet := "剔除清单"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建剔除清单失败: %w", err)
	}
	if err := writeRow(f, sheet, 1, toCells(exclusionHeaders)); err != nil {
		return err
	}

	rowNo := 2
	for _, region := range r.Root.Children {
		for _, entry := range region.Exclusions {
			row := []interface{}{
				region.Key, entry.ProjectID, entry.Name, reasonLabel(entry.Reason),
				round1(entry.Amount), round1(entry.ExpectedProgress),
				round1(entry.CurrentProgress), round1(entry.ProgressGap),
			}
			if err := writeRow(f, sheet, rowNo, row); err != nil {
				return err
			}
			rowNo++
		}
	}
	return nil
}

// nodeRow 单个节点的数据行
func nodeRow(levelLabel string, n *report.Node) []interface{} {
	return []interface{}{
		levelLabel, n.Key,
		round1(n.Target), round1(n.Completed), round1(n.Predicted), round1(n.Pending),
		round1(n.Gap), rateCell(n.CoverageRate), rateCell(n.AchievementRate),
		trendLabel(n.Trend), tierLabel(n.Tier),
	}
}

// writeRow 从 A 列起写一行
func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, rowNo, err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

// round1 展示层取整到一位小数；计算层始终保留原值
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// rateCell 比率单元格，百分比取整；不适用时输出占位符
func rateCell(p *float64) interface{} {
	if v, ok := engine.RateValue(p); ok {
		return math.Round(v)
	}
	return "-"
}

func trendLabel(trend string) string {
	switch risk.Trend(trend) {
	case risk.TrendUp:
		return "上行"
	case risk.TrendDown:
		return "下行"
	case risk.TrendStable:
		return "持平"
	}
	return "-"
}

func tierLabel(t risk.Tier) string {
	switch t {
	case risk.TierCritical:
		return "严重"
	case risk.TierWarning:
		return "预警"
	case risk.TierGood:
		return "良好"
	case risk.TierExcellent:
		return "优秀"
	case risk.TierHigh:
		return "高风险"
	case risk.TierMedium:
		return "中风险"
	case risk.TierLow:
		return "低风险"
	}
	return "不适用"
}

// reasonLabel 剔除原因代码的展示名
func reasonLabel(code string) string {
	switch code {
	case model.ExcludeProgressLow:
		return "进度严重滞后"
	case model.ExcludeDelayed:
		return "项目延期"
	case model.ExcludePendingApproval:
		return "审批未完成"
	case model.ExcludeRiskHigh:
		return "高风险项目"
	case model.ExcludeNotConfirmed:
		return "信息未确认"
	}
	return code
}
