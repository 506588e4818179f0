package model

// Level 组织层级
type Level string

const (
	LevelNational    Level = "national"
	LevelRegion      Level = "region"
	LevelCity        Level = "city"
	LevelSalesperson Level = "salesperson"
)

// Depth 层级深度（national=0 ... salesperson=3）
func (l Level) Depth() int {
	switch l {
	case LevelNational:
		return 0
	case LevelRegion:
		return 1
	case LevelCity:
		return 2
	case LevelSalesperson:
		return 3
	}
	return -1
}

// Valid 判断层级是否合法
func (l Level) Valid() bool {
	return l.Depth() >= 0
}

// ChildLevel 下一级层级；业务员为终点，返回空
func (l Level) ChildLevel() Level {
	switch l {
	case LevelNational:
		return LevelRegion
	case LevelRegion:
		return LevelCity
	case LevelCity:
		return LevelSalesperson
	}
	return ""
}

// ParentLevel 上一级层级；全国为起点，返回空
func (l Level) ParentLevel() Level {
	switch l {
	case LevelRegion:
		return LevelNational
	case LevelCity:
		return LevelRegion
	case LevelSalesperson:
		return LevelCity
	}
	return ""
}

// OrgPath 组织路径。空字段表示该层级未选定：
// 全国为三个字段全空，大区层级只填 Region，依此类推。
type OrgPath struct {
	Region      string `json:"region"`
	City        string `json:"city"`
	Salesperson string `json:"salesperson"`
}

// Level 根据已填字段推断路径所处层级
func (p OrgPath) Level() Level {
	switch {
	case p.Salesperson != "":
		return LevelSalesperson
	case p.City != "":
		return LevelCity
	case p.Region != "":
		return LevelRegion
	}
	return LevelNational
}

// Key 当前层级的维度名；全国返回固定名称
func (p OrgPath) Key() string {
	switch p.Level() {
	case LevelSalesperson:
		return p.Salesperson
	case LevelCity:
		return p.City
	case LevelRegion:
		return p.Region
	}
	return "全国"
}

// Child 返回向下一级收窄后的路径
func (p OrgPath) Child(key string) OrgPath {
	switch p.Level() {
	case LevelNational:
		return OrgPath{Region: key}
	case LevelRegion:
		return OrgPath{Region: p.Region, City: key}
	case LevelCity:
		return OrgPath{Region: p.Region, City: p.City, Salesperson: key}
	}
	return p
}

// Parent 返回向上一级放宽后的路径
func (p OrgPath) Parent() OrgPath {
	switch p.Level() {
	case LevelSalesperson:
		return OrgPath{Region: p.Region, City: p.City}
	case LevelCity:
		return OrgPath{Region: p.Region}
	case LevelRegion:
		return OrgPath{}
	}
	return p
}

// Contains 判断 other 是否落在 p 的子树内（含 p 自身层级的精确匹配）
func (p OrgPath) Contains(other OrgPath) bool {
	if p.Region != "" && p.Region != other.Region {
		return false
	}
	if p.City != "" && p.City != other.City {
		return false
	}
	if p.Salesperson != "" && p.Salesperson != other.Salesperson {
		return false
	}
	return true
}
