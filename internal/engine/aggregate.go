package engine

import (
	"compass/internal/indexer"
	"compass/internal/model"
)

// Aggregate 将一个 (组织路径, 时间窗口) 的记录子集汇总为 RollupNode。
// 记录须已按路径与窗口切片完毕；目标额由外部配额供给，不从记录推导。
// 剔除标记优先于阶段口径：同时带 won 与剔除标记的记录只进剔除清单。
func Aggregate(path model.OrgPath, w indexer.Window, records []model.ProjectRecord, target float64) RollupNode {
	node := RollupNode{
		Key:    path.Key(),
		Level:  path.Level(),
		Path:   path,
		Window: w,
		Target: target,
	}

	var completed, inflight float64
	for _, r := range records {
		if r.Excluded {
			node.Exclusions = append(node.Exclusions, ExclusionEntry{
				ProjectID:        r.ProjectID,
				Name:             r.Name,
				Reason:           r.ExcludeReason,
				Amount:           r.Amount,
				ExpectedProgress: r.ExpectedProgress,
				CurrentProgress:  r.CurrentProgress,
				ProgressGap:      r.ExpectedProgress - r.CurrentProgress,
			})
			continue
		}
		switch r.Phase {
		case model.PhaseWon:
			completed += r.Amount
		case model.PhaseContract, model.PhaseReserve:
			inflight += r.Amount
		}
	}

	node.Completed = completed
	// 在跟进项目按面值计入预测，不引入额外的概率加权
	node.Predicted = completed + inflight
	node.Pending = inflight

	Finalize(&node)
	return node
}

// Merge 由子节点自下而上合成父节点。
// target/completed/predicted/pending 均为子节点对应值之和，
// 剔除清单为子节点清单的拼接，保证对账不变式按构造成立。
func Merge(path model.OrgPath, w indexer.Window, children []RollupNode) RollupNode {
	node := RollupNode{
		Key:    path.Key(),
		Level:  path.Level(),
		Path:   path,
		Window: w,
	}
	for _, c := range children {
		node.Target += c.Target
		node.Completed += c.Completed
		node.Predicted += c.Predicted
		node.Pending += c.Pending
		node.Exclusions = append(node.Exclusions, c.Exclusions...)
	}
	Finalize(&node)
	return node
}

// Reconciled 校验子节点合计与父节点是否严格一致。
// 不一致意味着缓存的父节点已经失效，应以源记录重新推导而非沿用。
func Reconciled(parent RollupNode, children []RollupNode) bool {
	var target, completed, predicted, pending float64
	for _, c := range children {
		target += c.Target
		completed += c.Completed
		predicted += c.Predicted
		pending += c.Pending
	}
	return target == parent.Target &&
		completed == parent.Completed &&
		predicted == parent.Predicted &&
		pending == parent.Pending
}
