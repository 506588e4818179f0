package indexer

import (
	"sort"

	"compass/internal/model"
)

// recordEntry 记录下标及其在三种粒度下的窗口标识。
// 包含关系在建索引时对每条记录只计算一次，之后的切片查询
// 只做字符串比较，不再重复求和或解析时间。
type recordEntry struct {
	idx        int
	windowKeys map[WindowKind]string
}

// Index 规范化记录的双维索引：
// 组织维（大区 → 城市 → 业务员）与时间维（月 / 季 / 半年）正交。
// 索引只读，可被并发查询。
type Index struct {
	records []model.ProjectRecord
	entries []recordEntry

	// region → city → salesperson → 记录下标（保持输入顺序）
	byOrg map[string]map[string]map[string][]int
}

// Build 在规范化记录集上建立索引
func Build(records []model.ProjectRecord) *Index {
	ix := &Index{
		records: records,
		entries: make([]recordEntry, len(records)),
		byOrg:   make(map[string]map[string]map[string][]int),
	}

	for i, r := range records {
		ix.entries[i] = recordEntry{
			idx: i,
			windowKeys: map[WindowKind]string{
				WindowMonth:    WindowFor(WindowMonth, r.Anchor).Key(),
				WindowQuarter:  WindowFor(WindowQuarter, r.Anchor).Key(),
				WindowHalfYear: WindowFor(WindowHalfYear, r.Anchor).Key(),
			},
		}

		cities, ok := ix.byOrg[r.Region]
		if !ok {
			cities = make(map[string]map[string][]int)
			ix.byOrg[r.Region] = cities
		}
		persons, ok := cities[r.City]
		if !ok {
			persons = make(map[string][]int)
			cities[r.City] = persons
		}
		persons[r.Salesperson] = append(persons[r.Salesperson], i)
	}

	return ix
}

// Len 索引覆盖的记录数
func (ix *Index) Len() int {
	return len(ix.records)
}

// Slice 返回组织路径子树内、落在窗口中的记录（保持输入顺序）
func (ix *Index) Slice(path model.OrgPath, w Window) []model.ProjectRecord {
	var out []model.ProjectRecord
	for _, i := range ix.pathIndices(path) {
		if ix.entries[i].windowKeys[w.Kind] == w.Key() {
			out = append(out, ix.records[i])
		}
	}
	return out
}

// pathIndices 收集路径子树内的所有记录下标（升序）
func (ix *Index) pathIndices(path model.OrgPath) []int {
	var out []int
	for region, cities := range ix.byOrg {
		if path.Region != "" && path.Region != region {
			continue
		}
		for city, persons := range cities {
			if path.City != "" && path.City != city {
				continue
			}
			for person, idxs := range persons {
				if path.Salesperson != "" && path.Salesperson != person {
					continue
				}
				out = append(out, idxs...)
			}
		}
	}
	sort.Ints(out)
	return out
}

// ChildKeys 返回路径下一级的维度名（按名称升序，保证确定性）。
// 业务员层级为终点，返回空。
func (ix *Index) ChildKeys(path model.OrgPath) []string {
	seen := make(map[string]bool)
	switch path.Level() {
	case model.LevelNational:
		for region := range ix.byOrg {
			seen[region] = true
		}
	case model.LevelRegion:
		for city := range ix.byOrg[path.Region] {
			seen[city] = true
		}
	case model.LevelCity:
		for person := range ix.byOrg[path.Region][path.City] {
			seen[person] = true
		}
	default:
		return nil
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LeafPaths 返回路径子树内的全部业务员级路径（确定性顺序）
func (ix *Index) LeafPaths(path model.OrgPath) []model.OrgPath {
	var out []model.OrgPath
	for _, region := range ix.ChildKeys(model.OrgPath{}) {
		if path.Region != "" && path.Region != region {
			continue
		}
		rp := model.OrgPath{Region: region}
		for _, city := range ix.ChildKeys(rp) {
			if path.City != "" && path.City != city {
				continue
			}
			cp := rp.Child(city)
			for _, person := range ix.ChildKeys(cp) {
				if path.Salesperson != "" && path.Salesperson != person {
					continue
				}
				out = append(out, cp.Child(person))
			}
		}
	}
	return out
}
