package engine

// Finalize 由节点合计推导缺口与比率。
// 缺口带符号：正为缺口、负为盈余，不做任何截断。
// 目标为 0 时比率为 nil（“不适用”状态），不产生除零。
// 比率保留未取整数值，取整只发生在展示层，避免逐级累积舍入误差。
func Finalize(n *RollupNode) {
	n.Gap = n.Target - n.Predicted
	n.CoverageRate = rate(n.Predicted, n.Target)
	n.AchievementRate = rate(n.Completed, n.Target)
}

// rate 百分比比率；分母为 0 时返回 nil
func rate(numer, denom float64) *float64 {
	if denom == 0 {
		return nil
	}
	v := numer / denom * 100
	return &v
}

// RateValue 解包比率，第二返回值表示比率是否定义
func RateValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
