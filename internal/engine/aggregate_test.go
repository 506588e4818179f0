package engine

import (
	"math"
	"testing"
	"time"

	"compass/internal/indexer"
	"compass/internal/model"
)

func mustWindow(t *testing.T, kind indexer.WindowKind, year, index int) indexer.Window {
	t.Helper()
	w, err := indexer.NewWindow(kind, year, index)
	if err != nil {
		t.Fatalf("构造窗口失败: %v", err)
	}
	return w
}

func rec(amount float64, phase string) model.ProjectRecord {
	return model.ProjectRecord{
		ProjectID: "p1",
		Region:    "华东",
		Anchor:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local),
		Amount:    amount,
		Phase:     phase,
	}
}

func TestAggregatePhaseBuckets(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)
	records := []model.ProjectRecord{
		rec(100, model.PhaseWon),
		rec(200, model.PhaseContract),
		rec(50, model.PhaseReserve),
	}

	n := Aggregate(model.OrgPath{Region: "华东"}, w, records, 500)

	if n.Completed != 100 {
		t.Fatalf("Completed = %v, 期望 100", n.Completed)
	}
	if n.Predicted != 350 {
		t.Fatalf("Predicted = %v, 期望 350", n.Predicted)
	}
	if n.Pending != 250 {
		t.Fatalf("Pending = %v, 期望 250", n.Pending)
	}
	if n.Gap != 150 {
		t.Fatalf("Gap = %v, 期望 150", n.Gap)
	}
	cov, ok := RateValue(n.CoverageRate)
	if !ok || cov != 70 {
		t.Fatalf("CoverageRate = %v (ok=%v), 期望 70", cov, ok)
	}
	ach, ok := RateValue(n.AchievementRate)
	if !ok || ach != 20 {
		t.Fatalf("AchievementRate = %v (ok=%v), 期望 20", ach, ok)
	}
}

func TestAggregateExclusionBeatsPhase(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)

	excluded := rec(300, model.PhaseWon)
	excluded.Excluded = true
	excluded.ExcludeReason = model.ExcludeDelayed
	excluded.ExpectedProgress = 80
	excluded.CurrentProgress = 30

	records := []model.ProjectRecord{rec(100, model.PhaseWon), excluded}
	n := Aggregate(model.OrgPath{Region: "华东"}, w, records, 1000)

	// 剔除标记优先：won 阶段也不得进入主口径
	if n.Completed != 100 || n.Predicted != 100 {
		t.Fatalf("主口径被剔除项目污染: completed=%v predicted=%v", n.Completed, n.Predicted)
	}
	if len(n.Exclusions) != 1 {
		t.Fatalf("剔除清单长度 = %d, 期望 1", len(n.Exclusions))
	}
	e := n.Exclusions[0]
	if e.Amount != 300 || e.Reason != model.ExcludeDelayed {
		t.Fatalf("剔除条目不符: %+v", e)
	}
	if e.ProgressGap != 50 {
		t.Fatalf("ProgressGap = %v, 期望 50", e.ProgressGap)
	}
}

func TestAggregateZeroTarget(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)
	n := Aggregate(model.OrgPath{Region: "华东"}, w, []model.ProjectRecord{rec(100, model.PhaseWon)}, 0)

	if n.CoverageRate != nil {
		t.Fatalf("目标为 0 时覆盖率应为 nil, 实际 %v", *n.CoverageRate)
	}
	if n.AchievementRate != nil {
		t.Fatalf("目标为 0 时达成率应为 nil")
	}
	// 缺口仍然有定义：0 − 100 = −100（盈余）
	if n.Gap != -100 {
		t.Fatalf("Gap = %v, 期望 -100", n.Gap)
	}
}

func TestGapNeverClamped(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)
	n := Aggregate(model.OrgPath{Region: "华东"}, w, []model.ProjectRecord{rec(800, model.PhaseWon)}, 500)

	if n.Gap != -300 {
		t.Fatalf("盈余被截断: Gap = %v, 期望 -300", n.Gap)
	}
	cov, _ := RateValue(n.CoverageRate)
	if cov != 160 {
		t.Fatalf("CoverageRate = %v, 期望 160", cov)
	}
}

func TestMergeReconciles(t *testing.T) {
	w := mustWindow(t, indexer.WindowQuarter, 2026, 1)
	parentPath := model.OrgPath{Region: "华东"}

	var children []RollupNode
	for i, city := range []string{"上海", "杭州", "南京"} {
		path := parentPath.Child(city)
		records := []model.ProjectRecord{
			rec(float64(100*(i+1)), model.PhaseWon),
			rec(33.3, model.PhaseContract),
		}
		children = append(children, Aggregate(path, w, records, float64(200*(i+1))))
	}

	parent := Merge(parentPath, w, children)

	if !Reconciled(parent, children) {
		t.Fatalf("父节点与子节点合计不一致")
	}
	if parent.Target != 1200 {
		t.Fatalf("Target = %v, 期望 1200", parent.Target)
	}
	// 浮点合计按子节点顺序逐项相加，与同序手工求和须完全一致
	var want float64
	for _, c := range children {
		want += c.Predicted
	}
	if parent.Predicted != want {
		t.Fatalf("Predicted = %v, 期望 %v", parent.Predicted, want)
	}
}

func TestIncludeExcludedDerivation(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)

	e1 := rec(200, model.PhaseContract)
	e1.Excluded = true
	e1.ExcludeReason = model.ExcludeProgressLow
	e2 := rec(100, model.PhaseReserve)
	e2.Excluded = true
	e2.ExcludeReason = model.ExcludeRiskHigh

	records := []model.ProjectRecord{rec(500, model.PhaseWon), e1, e2}
	base := Aggregate(model.OrgPath{Region: "华东"}, w, records, 1000)

	if base.Predicted != 500 {
		t.Fatalf("主口径 Predicted = %v, 期望 500", base.Predicted)
	}

	derived := IncludeExcluded(base)

	if derived.Predicted != 800 {
		t.Fatalf("派生口径 Predicted = %v, 期望 800", derived.Predicted)
	}
	if !derived.IncludesExcluded {
		t.Fatalf("派生节点未置 IncludesExcluded")
	}
	cov, _ := RateValue(derived.CoverageRate)
	if cov != 80 {
		t.Fatalf("派生覆盖率 = %v, 期望 80", cov)
	}

	// 原节点不得被修改
	if base.Predicted != 500 || base.IncludesExcluded {
		t.Fatalf("原节点被派生操作修改: %+v", base)
	}

	// 重复派生结果一致
	again := IncludeExcluded(base)
	if again.Predicted != derived.Predicted || again.Gap != derived.Gap {
		t.Fatalf("重复派生结果不一致")
	}
}

func TestRateNeverNaN(t *testing.T) {
	w := mustWindow(t, indexer.WindowMonth, 2026, 3)
	n := Aggregate(model.OrgPath{}, w, nil, 0)

	if n.CoverageRate != nil || n.AchievementRate != nil {
		t.Fatalf("空数据 + 零目标应产生 nil 比率")
	}
	if math.IsNaN(n.Gap) {
		t.Fatalf("Gap 为 NaN")
	}
}
