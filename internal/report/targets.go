package report

import (
	"sort"

	"compass/internal/indexer"
	"compass/internal/model"
)

// targetBook 目标额配额簿。
// 配额只存在于业务员 × 月份叶子粒度，窗口内各月求和得到叶子目标；
// 更高层级的目标一律由叶子合计，不单独存储，对账不变式按构造成立。
type targetBook struct {
	leaf map[model.OrgPath]float64
}

// newTargetBook 由窗口覆盖月份的配额行构建配额簿
func newTargetBook(targets []model.SalesTarget, w indexer.Window) *targetBook {
	book := &targetBook{leaf: make(map[model.OrgPath]float64)}
	for _, t := range targets {
		anchor, err := indexer.NewWindow(indexer.WindowMonth, t.Year, t.Month)
		if err != nil || !w.ContainsWindow(anchor) {
			continue
		}
		path := model.OrgPath{Region: t.Region, City: t.City, Salesperson: t.Salesperson}
		book.leaf[path] += t.Amount
	}
	return book
}

// leafTarget 叶子路径的窗口目标额；无配额返回 0
func (b *targetBook) leafTarget(p model.OrgPath) float64 {
	return b.leaf[p]
}

// leafPaths 配额簿覆盖的全部叶子路径（确定性顺序）
func (b *targetBook) leafPaths() []model.OrgPath {
	out := make([]model.OrgPath, 0, len(b.leaf))
	for p := range b.leaf {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Region != out[j].Region {
			return out[i].Region < out[j].Region
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Salesperson < out[j].Salesperson
	})
	return out
}

// orgTree 大区 → 城市 → 业务员的维度集合。
// 树形为记录维度与配额维度的并集：有目标无记录的叶子
// 也要出现在报表里（覆盖率 0，缺口即目标额）。
type orgTree map[string]map[string]map[string]bool

// buildOrgTree 合并索引叶子与配额叶子
func buildOrgTree(ix *indexer.Index, book *targetBook) orgTree {
	tree := make(orgTree)
	add := func(p model.OrgPath) {
		cities, ok := tree[p.Region]
		if !ok {
			cities = make(map[string]map[string]bool)
			tree[p.Region] = cities
		}
		persons, ok := cities[p.City]
		if !ok {
			persons = make(map[string]bool)
			cities[p.City] = persons
		}
		persons[p.Salesperson] = true
	}

	for _, p := range ix.LeafPaths(model.OrgPath{}) {
		add(p)
	}
	for _, p := range book.leafPaths() {
		add(p)
	}
	return tree
}

// regions 大区名升序
func (t orgTree) regions() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// cities 指定大区下的城市名升序
func (t orgTree) cities(region string) []string {
	out := make([]string, 0, len(t[region]))
	for k := range t[region] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// persons 指定城市下的业务员名升序
func (t orgTree) persons(region, city string) []string {
	out := make([]string, 0, len(t[region][city]))
	for k := range t[region][city] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
