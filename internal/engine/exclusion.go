package engine

// IncludeExcluded 返回把剔除项目并回主口径后的派生节点。
// 原节点保持不变（主口径需独立可查以供审计）；
// 相同输入重复调用得到相等的派生节点。
func IncludeExcluded(n RollupNode) RollupNode {
	derived := n
	derived.Exclusions = make([]ExclusionEntry, len(n.Exclusions))
	copy(derived.Exclusions, n.Exclusions)

	for _, e := range n.Exclusions {
		derived.Predicted += e.Amount
	}
	derived.IncludesExcluded = true
	Finalize(&derived)
	return derived
}
