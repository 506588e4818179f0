package indexer

import (
	"reflect"
	"testing"
	"time"

	"compass/internal/model"
)

func testRecords() []model.ProjectRecord {
	mk := func(region, city, person string, month int, amount float64) model.ProjectRecord {
		return model.ProjectRecord{
			Region:      region,
			City:        city,
			Salesperson: person,
			Anchor:      time.Date(2026, time.Month(month), 10, 0, 0, 0, 0, time.Local),
			Amount:      amount,
			Phase:       model.PhaseWon,
		}
	}
	return []model.ProjectRecord{
		mk("华东", "上海", "张三", 1, 100),
		mk("华东", "上海", "李四", 2, 200),
		mk("华东", "杭州", "王五", 3, 300),
		mk("华北", "北京", "赵六", 3, 400),
		mk("华北", "北京", "赵六", 7, 500),
	}
}

func TestSliceByOrgAndWindow(t *testing.T) {
	ix := Build(testRecords())

	q1, _ := NewWindow(WindowQuarter, 2026, 1)

	// 全国 × Q1：前 4 条（第 5 条在 7 月）
	got := ix.Slice(model.OrgPath{}, q1)
	if len(got) != 4 {
		t.Fatalf("全国 Q1 记录数 = %d, 期望 4", len(got))
	}

	// 华东 × Q1
	got = ix.Slice(model.OrgPath{Region: "华东"}, q1)
	if len(got) != 3 {
		t.Fatalf("华东 Q1 记录数 = %d, 期望 3", len(got))
	}

	// 上海 × 2026-02
	feb, _ := NewWindow(WindowMonth, 2026, 2)
	got = ix.Slice(model.OrgPath{Region: "华东", City: "上海"}, feb)
	if len(got) != 1 || got[0].Salesperson != "李四" {
		t.Fatalf("上海 2 月切片不符: %+v", got)
	}

	// 月切片是所在季度切片的子集
	qSlice := ix.Slice(model.OrgPath{Region: "华东", City: "上海"}, q1)
	if len(qSlice) < len(got) {
		t.Fatalf("季度切片小于月切片")
	}
}

func TestChildKeysDeterministic(t *testing.T) {
	ix := Build(testRecords())

	regions := ix.ChildKeys(model.OrgPath{})
	if !reflect.DeepEqual(regions, []string{"华东", "华北"}) && !reflect.DeepEqual(regions, []string{"华北", "华东"}) {
		t.Fatalf("大区列表不符: %v", regions)
	}
	// 多次调用结果一致
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(ix.ChildKeys(model.OrgPath{}), regions) {
			t.Fatalf("ChildKeys 顺序不稳定")
		}
	}

	cities := ix.ChildKeys(model.OrgPath{Region: "华东"})
	if !reflect.DeepEqual(cities, []string{"上海", "杭州"}) {
		t.Fatalf("华东城市列表 = %v", cities)
	}

	persons := ix.ChildKeys(model.OrgPath{Region: "华东", City: "上海"})
	if len(persons) != 2 {
		t.Fatalf("上海业务员数 = %d, 期望 2", len(persons))
	}

	// 业务员层级为终点
	leaf := model.OrgPath{Region: "华东", City: "上海", Salesperson: "张三"}
	if keys := ix.ChildKeys(leaf); keys != nil {
		t.Fatalf("叶子层级不应有子维度: %v", keys)
	}
}

func TestLeafPaths(t *testing.T) {
	ix := Build(testRecords())

	leaves := ix.LeafPaths(model.OrgPath{})
	if len(leaves) != 4 {
		t.Fatalf("叶子路径数 = %d, 期望 4", len(leaves))
	}
	for _, p := range leaves {
		if p.Level() != model.LevelSalesperson {
			t.Fatalf("非业务员级叶子: %+v", p)
		}
	}

	scoped := ix.LeafPaths(model.OrgPath{Region: "华北"})
	if len(scoped) != 1 || scoped[0].Salesperson != "赵六" {
		t.Fatalf("华北叶子不符: %+v", scoped)
	}
}
