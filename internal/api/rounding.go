package api

import (
	"math"

	"compass/internal/report"
)

// 展示层取整：金额两位小数、百分比取整为整数。
// 计算链路始终使用未取整值，只有响应前的这一步做取整，
// 避免逐级累积舍入误差破坏对账。

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundRateInPlace(p *float64) {
	if p != nil {
		*p = math.Round(*p)
	}
}

// roundReportInPlace 对整棵报表树做展示取整
func roundReportInPlace(n *report.Node) {
	if n == nil {
		return
	}
	n.Target = round2(n.Target)
	n.Completed = round2(n.Completed)
	n.Predicted = round2(n.Predicted)
	n.Pending = round2(n.Pending)
	n.Gap = round2(n.Gap)
	roundRateInPlace(n.CoverageRate)
	roundRateInPlace(n.AchievementRate)
	for i := range n.Exclusions {
		n.Exclusions[i].Amount = round2(n.Exclusions[i].Amount)
		n.Exclusions[i].ProgressGap = math.Round(n.Exclusions[i].ProgressGap)
	}
	for _, c := range n.Children {
		roundReportInPlace(c)
	}
}
