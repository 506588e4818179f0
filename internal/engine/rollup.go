package engine

import (
	"compass/internal/indexer"
	"compass/internal/model"
)

// RollupNode 一个 (组织路径, 时间窗口) 组合的汇总节点。
// 所有字段按请求即时推导，不做持久化。
type RollupNode struct {
	Key    string         `json:"key"` // 当前层级维度名
	Level  model.Level    `json:"level"`
	Path   model.OrgPath  `json:"path"`
	Window indexer.Window `json:"window"`

	Target    float64 `json:"target"`    // 目标额（外部配额，≥0）
	Completed float64 `json:"completed"` // 已完成（赢单口径）
	Predicted float64 `json:"predicted"` // 预测完成 = 已完成 + 在跟进项目按面值
	Pending   float64 `json:"pending"`   // 在手项目金额（未签约部分）

	// Gap = Target − Predicted；正数为缺口，负数为盈余，展示时不得截断为 0
	Gap float64 `json:"gap"`

	// CoverageRate 覆盖率（predicted/target×100，未取整）。
	// Target = 0 时为 nil，表示“不适用”，绝不产生 NaN/Inf。
	CoverageRate *float64 `json:"coverageRate"`
	// AchievementRate 达成率（completed/target×100），实际完成口径
	AchievementRate *float64 `json:"achievementRate"`

	// Trend 同比上一窗口的预测变化方向：up/stable/down，无对比数据为空
	Trend string `json:"trend,omitempty"`

	// Exclusions 剔除清单，不计入以上主口径
	Exclusions []ExclusionEntry `json:"exclusions,omitempty"`

	// IncludesExcluded 标记该节点为“并入剔除项目”后的派生口径
	IncludesExcluded bool `json:"includesExcluded,omitempty"`
}

// ExclusionEntry 剔除项目条目：只进清单，不进主口径合计
type ExclusionEntry struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Reason    string  `json:"reason"`
	Amount    float64 `json:"amount"`

	ExpectedProgress float64 `json:"expectedProgress"`
	CurrentProgress  float64 `json:"currentProgress"`
	// ProgressGap = 预期进度 − 当前进度，用于催办排序，不影响合计
	ProgressGap float64 `json:"progressGap"`
}

// ExcludedTotal 剔除项目金额合计
func (n *RollupNode) ExcludedTotal() float64 {
	var sum float64
	for _, e := range n.Exclusions {
		sum += e.Amount
	}
	return sum
}
