// Package drilldown 钻取导航：在组织层级与时间窗口上移动游标。
// 导航本身无状态，游标由调用方持有；每次移动只是换一个
// (路径, 窗口) 重新跑一遍汇总管线，相同输入必得相同输出。
package drilldown

import (
	"errors"
	"sort"

	"compass/internal/engine"
	"compass/internal/indexer"
	"compass/internal/model"
)

// Position 钻取游标：组织层级位置 × 选定时间窗口。
// 纯导航值，不做持久化。
type Position struct {
	Level       model.Level    `json:"level"`
	Region      string         `json:"region,omitempty"`
	City        string         `json:"city,omitempty"`
	Salesperson string         `json:"salesperson,omitempty"`
	Window      indexer.Window `json:"window"`
}

// Initial 初始游标：全国层级 + 指定窗口
func Initial(w indexer.Window) Position {
	return Position{Level: model.LevelNational, Window: w}
}

// Path 游标对应的组织路径
func (p Position) Path() model.OrgPath {
	switch p.Level {
	case model.LevelRegion:
		return model.OrgPath{Region: p.Region}
	case model.LevelCity:
		return model.OrgPath{Region: p.Region, City: p.City}
	case model.LevelSalesperson:
		return model.OrgPath{Region: p.Region, City: p.City, Salesperson: p.Salesperson}
	}
	return model.OrgPath{}
}

// ErrInvalidDrillTarget 钻取目标不在当前子节点中。
// 调用方应保持原游标不变，按空操作上报，不作为致命错误。
var ErrInvalidDrillTarget = errors.New("invalid drill target")

// ChildLister 提供组织路径下一级的维度名；
// 索引与报表树均可充当数据源。
type ChildLister interface {
	ChildKeys(path model.OrgPath) []string
}

// Navigator 在给定数据源上执行钻取转移
type Navigator struct {
	source ChildLister
}

// NewNavigator 创建导航器
func NewNavigator(source ChildLister) *Navigator {
	return &Navigator{source: source}
}

// ChildKeys 当前游标的可钻取子维度名（数据源给出的确定性顺序）
func (n *Navigator) ChildKeys(p Position) []string {
	return n.source.ChildKeys(p.Path())
}

// DrillInto 向下钻取一级。childKey 不存在时返回
// ErrInvalidDrillTarget，原游标原样返回。业务员层级为终点。
func (n *Navigator) DrillInto(p Position, childKey string) (Position, error) {
	if p.Level == model.LevelSalesperson {
		return p, ErrInvalidDrillTarget
	}
	valid := false
	for _, key := range n.ChildKeys(p) {
		if key == childKey {
			valid = true
			break
		}
	}
	if !valid {
		return p, ErrInvalidDrillTarget
	}

	next := p
	next.Level = p.Level.ChildLevel()
	switch p.Level {
	case model.LevelNational:
		next.Region = childKey
	case model.LevelRegion:
		next.City = childKey
	case model.LevelCity:
		next.Salesperson = childKey
	}
	return next, nil
}

// Back 向上返回一级，丢弃更深层的选择；全国层级为起点，原样返回。
// 对任意有效 childKey 满足 Back(DrillInto(p, key)) == p。
func (n *Navigator) Back(p Position) Position {
	prev := p
	switch p.Level {
	case model.LevelRegion:
		prev.Level = model.LevelNational
		prev.Region = ""
	case model.LevelCity:
		prev.Level = model.LevelRegion
		prev.City = ""
	case model.LevelSalesperson:
		prev.Level = model.LevelCity
		prev.Salesperson = ""
	}
	return prev
}

// SortField 同级节点排序字段
type SortField string

const (
	SortCoverageRate SortField = "coverageRate"
	SortGap          SortField = "gap"
	SortTarget       SortField = "target"
	SortPredicted    SortField = "predicted"
)

// ValidSortField 判断排序字段是否合法
func ValidSortField(f SortField) bool {
	switch f {
	case SortCoverageRate, SortGap, SortTarget, SortPredicted:
		return true
	}
	return false
}

// sortValue 提取排序字段值，第二返回值表示该值是否定义
func sortValue(n engine.RollupNode, field SortField) (float64, bool) {
	switch field {
	case SortGap:
		return n.Gap, true
	case SortTarget:
		return n.Target, true
	case SortPredicted:
		return n.Predicted, true
	default:
		return engine.RateValue(n.CoverageRate)
	}
}

// Less 同级节点的全序比较。
// 排序值相等时按维度名升序决胜，保证确定性；
// 覆盖率不适用的节点视为最小值参与排序。
func Less(a, b engine.RollupNode, field SortField, descending bool) bool {
	va, oka := sortValue(a, field)
	vb, okb := sortValue(b, field)
	if oka != okb {
		// 不适用值排在适用值之后（升序时最前，降序时最后）
		if descending {
			return oka
		}
		return !oka
	}
	if va != vb {
		if descending {
			return va > vb
		}
		return va < vb
	}
	return a.Key < b.Key
}

// SortNodes 对同级节点做全序排序
func SortNodes(nodes []engine.RollupNode, field SortField, descending bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return Less(nodes[i], nodes[j], field, descending)
	})
}
