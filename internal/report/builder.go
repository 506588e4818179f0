// Package report 报表生成：取数、建索引、自下而上汇总、
// 趋势对比与风险分级，产出一棵可钻取的报表树。
// 报表按请求即时生成，不缓存中间结果。
package report

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"compass/internal/drilldown"
	"compass/internal/engine"
	"compass/internal/indexer"
	"compass/internal/model"
	"compass/internal/risk"
	"compass/internal/store"
)

// Node 报表树节点：汇总值 + 风险层级 + 子节点
type Node struct {
	engine.RollupNode
	Tier     risk.Tier `json:"tier"`
	Children []*Node   `json:"children,omitempty"`
}

// Options 报表生成选项
type Options struct {
	Window indexer.Window

	// SchemeName 阈值方案名，空串取四档方案；整份报表只用一套
	SchemeName string
	Escalation risk.Escalation

	// TrendDeadBand 趋势死区（百分点）
	TrendDeadBand float64

	SortField  drilldown.SortField
	Descending bool

	// IncludeExcluded 生成“并入剔除项目”的派生口径报表
	IncludeExcluded bool
}

// Report 一个时间窗口的完整报表
type Report struct {
	Window           indexer.Window `json:"window"`
	WindowKey        string         `json:"windowKey"`
	Label            string         `json:"label"`
	Scheme           string         `json:"scheme"`
	IncludesExcluded bool           `json:"includesExcluded,omitempty"`
	GeneratedAt      time.Time      `json:"generatedAt"`

	Root *Node `json:"root"`

	// Notes 生成过程中的对账备注；正常情况下为空
	Notes []string `json:"notes,omitempty"`
}

// Builder 报表生成器
type Builder struct {
	store *store.Store
}

// NewBuilder 创建报表生成器
func NewBuilder(st *store.Store) *Builder {
	return &Builder{store: st}
}

// WindowData 一个窗口的取数结果
type WindowData struct {
	Window  indexer.Window
	Records []model.ProjectRecord
	Targets []model.SalesTarget
}

// Build 生成指定窗口的报表；同时取上一窗口数据用于趋势对比
func (b *Builder) Build(opts Options) (*Report, error) {
	cur, err := b.fetch(opts.Window)
	if err != nil {
		return nil, fmt.Errorf("取数失败 %s: %w", opts.Window.Key(), err)
	}
	prev, err := b.fetch(opts.Window.Previous())
	if err != nil {
		return nil, fmt.Errorf("取数失败 %s: %w", opts.Window.Previous().Key(), err)
	}
	return BuildFromData(cur, prev, opts)
}

// fetch 取指定窗口的记录与配额
func (b *Builder) fetch(w indexer.Window) (WindowData, error) {
	from, to := w.Start, w.End
	records, err := b.store.GetRecords(store.RecordQueryOptions{
		AnchorFrom: &from,
		AnchorTo:   &to,
	})
	if err != nil {
		return WindowData{}, err
	}
	targets, err := b.store.GetTargets(w.Months())
	if err != nil {
		return WindowData{}, err
	}
	return WindowData{Window: w, Records: records, Targets: targets}, nil
}

// BuildFromData 由已取好的两个窗口数据生成报表。
// 与存储解耦，便于在内存数据上直接验证汇总语义。
func BuildFromData(cur, prev WindowData, opts Options) (*Report, error) {
	scheme, err := risk.SchemeByName(opts.SchemeName)
	if err != nil {
		return nil, err
	}

	curRoot := assemble(cur)
	prevRoot := assemble(prev)

	if opts.IncludeExcluded {
		deriveIncluded(curRoot)
		deriveIncluded(prevRoot)
	}

	prevCoverage := make(map[model.OrgPath]*float64)
	collectCoverage(prevRoot, prevCoverage)

	var notes []string
	finalize(curRoot, prevCoverage, scheme, opts, &notes)

	return &Report{
		Window:           cur.Window,
		WindowKey:        cur.Window.Key(),
		Label:            cur.Window.Label(),
		Scheme:           scheme.Name,
		IncludesExcluded: opts.IncludeExcluded,
		GeneratedAt:      time.Now(),
		Root:             curRoot,
		Notes:            notes,
	}, nil
}

// assemble 建索引并自下而上合成报表树。
// 叶子由记录直接汇总，父节点一律由子节点合成，
// 使对账不变式按构造成立；各大区分支并行推进。
func assemble(data WindowData) *Node {
	ix := indexer.Build(data.Records)
	book := newTargetBook(data.Targets, data.Window)
	tree := buildOrgTree(ix, book)

	regions := tree.regions()
	children := make([]*Node, len(regions))

	var wg sync.WaitGroup
	for i, region := range regions {
		wg.Add(1)
		go func(i int, region string) {
			defer wg.Done()
			children[i] = buildRegion(ix, book, tree, data.Window, region)
		}(i, region)
	}
	wg.Wait()

	return mergeNode(model.OrgPath{}, data.Window, children)
}

// buildRegion 合成单个大区分支（城市、业务员两级）
func buildRegion(ix *indexer.Index, book *targetBook, tree orgTree, w indexer.Window, region string) *Node {
	rp := model.OrgPath{Region: region}

	cityNodes := make([]*Node, 0, len(tree[region]))
	for _, city := range tree.cities(region) {
		cp := rp.Child(city)
		leaves := make([]*Node, 0, len(tree[region][city]))
		for _, person := range tree.persons(region, city) {
			lp := cp.Child(person)
			n := engine.Aggregate(lp, w, ix.Slice(lp, w), book.leafTarget(lp))
			leaves = append(leaves, &Node{RollupNode: n})
		}
		cityNodes = append(cityNodes, mergeNode(cp, w, leaves))
	}

	return mergeNode(rp, w, cityNodes)
}

// mergeNode 由子节点合成父节点
func mergeNode(path model.OrgPath, w indexer.Window, children []*Node) *Node {
	rollups := make([]engine.RollupNode, len(children))
	for i, c := range children {
		rollups[i] = c.RollupNode
	}
	return &Node{
		RollupNode: engine.Merge(path, w, rollups),
		Children:   children,
	}
}

// deriveIncluded 后序把整棵树切换到“并入剔除项目”口径。
// 叶子逐个派生，父节点由派生后的子节点重新合成，保持对账一致。
func deriveIncluded(n *Node) {
	if len(n.Children) == 0 {
		n.RollupNode = engine.IncludeExcluded(n.RollupNode)
		return
	}
	for _, c := range n.Children {
		deriveIncluded(c)
	}
	rollups := make([]engine.RollupNode, len(n.Children))
	for i, c := range n.Children {
		rollups[i] = c.RollupNode
	}
	n.RollupNode = engine.Merge(n.Path, n.Window, rollups)
	n.IncludesExcluded = true
}

// collectCoverage 收集树上各路径的覆盖率（趋势对比用）
func collectCoverage(n *Node, out map[model.OrgPath]*float64) {
	out[n.Path] = n.CoverageRate
	for _, c := range n.Children {
		collectCoverage(c, out)
	}
}

// finalize 后序收尾：对账校验、趋势判定、风险分级、子节点排序
func finalize(n *Node, prevCoverage map[model.OrgPath]*float64, scheme risk.Scheme, opts Options, notes *[]string) {
	for _, c := range n.Children {
		finalize(c, prevCoverage, scheme, opts, notes)
	}

	if len(n.Children) > 0 {
		rollups := make([]engine.RollupNode, len(n.Children))
		for i, c := range n.Children {
			rollups[i] = c.RollupNode
		}
		// 父节点合计与子节点不一致时以子节点重新推导为准
		if !engine.Reconciled(n.RollupNode, rollups) {
			includes := n.IncludesExcluded
			n.RollupNode = engine.Merge(n.Path, n.Window, rollups)
			n.IncludesExcluded = includes
			*notes = append(*notes, fmt.Sprintf("对账不一致，已由子节点重新推导: %s %s", n.Key, n.Window.Key()))
		}
	}

	n.Trend = string(trendOf(n.CoverageRate, prevCoverage[n.Path], opts.TrendDeadBand))

	n.Tier = scheme.Classify(risk.Input{
		Coverage: n.CoverageRate,
		Gap:      n.Gap,
		Trend:    risk.Trend(n.Trend),
	}, opts.Escalation)

	sort.SliceStable(n.Children, func(i, j int) bool {
		return drilldown.Less(n.Children[i].RollupNode, n.Children[j].RollupNode, opts.SortField, opts.Descending)
	})
}

// trendOf 覆盖率同比上一窗口的变化方向。
// 任一侧覆盖率不适用时不产出趋势；死区内视为持平。
func trendOf(cur, prev *float64, deadBand float64) risk.Trend {
	if cur == nil || prev == nil {
		return ""
	}
	diff := *cur - *prev
	if math.Abs(diff) <= deadBand {
		return risk.TrendStable
	}
	if diff > 0 {
		return risk.TrendUp
	}
	return risk.TrendDown
}

// FindNode 按组织路径在报表树中定位节点；不存在返回 nil
func (r *Report) FindNode(path model.OrgPath) *Node {
	return findNode(r.Root, path)
}

// ChildKeys 报表树上指定路径的子维度名（保持节点排序）。
// 实现钻取导航的数据源接口。
func (r *Report) ChildKeys(path model.OrgPath) []string {
	node := r.FindNode(path)
	if node == nil {
		return nil
	}
	out := make([]string, 0, len(node.Children))
	for _, c := range node.Children {
		out = append(out, c.Key)
	}
	return out
}

func findNode(n *Node, path model.OrgPath) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	if !n.Path.Contains(path) {
		return nil
	}
	for _, c := range n.Children {
		if found := findNode(c, path); found != nil {
			return found
		}
	}
	return nil
}
