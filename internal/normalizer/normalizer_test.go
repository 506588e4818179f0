package normalizer

import (
	"strings"
	"testing"
	"time"

	"compass/internal/model"
)

func validRow() RawRecord {
	return RawRecord{
		ProjectID:   "P-1001",
		Name:        "园区改造项目",
		Region:      "华东",
		City:        "上海",
		Salesperson: "张三",
		AnchorText:  "2026-03-15",
		AmountText:  "1,250.5",
		PhaseText:   "赢单",
		RowNo:       2,
		SourceSheet: "项目明细",
	}
}

func TestNormalizeValidRow(t *testing.T) {
	records, defects := Normalize([]RawRecord{validRow()})
	if len(defects) != 0 {
		t.Fatalf("合法行产生缺陷: %+v", defects)
	}
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, 期望 1", len(records))
	}

	r := records[0]
	if r.Amount != 1250.5 {
		t.Fatalf("金额 = %v, 期望 1250.5", r.Amount)
	}
	if r.Phase != model.PhaseWon {
		t.Fatalf("阶段 = %s, 期望 %s", r.Phase, model.PhaseWon)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)
	if !r.Anchor.Equal(want) {
		t.Fatalf("时间锚点 = %v, 期望 %v", r.Anchor, want)
	}
}

func TestNormalizePartialFailure(t *testing.T) {
	bad := validRow()
	bad.AmountText = "一百万"
	bad.RowNo = 3

	records, defects := Normalize([]RawRecord{validRow(), bad, validRow()})

	// 单行失败只影响该行
	if len(records) != 2 {
		t.Fatalf("记录数 = %d, 期望 2", len(records))
	}
	if len(defects) != 1 {
		t.Fatalf("缺陷数 = %d, 期望 1", len(defects))
	}
	if defects[0].RowNo != 3 || defects[0].Field != "amount" {
		t.Fatalf("缺陷定位不符: %+v", defects[0])
	}
}

func TestNormalizeDefectCases(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawRecord)
		field  string
	}{
		{"缺少大区", func(r *RawRecord) { r.Region = " " }, "region"},
		{"金额为负", func(r *RawRecord) { r.AmountText = "-10" }, "amount"},
		{"金额为空", func(r *RawRecord) { r.AmountText = "" }, "amount"},
		{"日期无法解析", func(r *RawRecord) { r.AnchorText = "下个月" }, "anchor"},
		{"阶段无法识别", func(r *RawRecord) { r.PhaseText = "洽谈中?" }, "phase"},
		{"未知剔除原因", func(r *RawRecord) {
			r.ExcludedText = "是"
			r.ExcludeReason = "bad_code"
		}, "excludeReason"},
	}

	for _, tc := range cases {
		row := validRow()
		tc.mutate(&row)
		records, defects := Normalize([]RawRecord{row})
		if len(records) != 0 {
			t.Fatalf("%s: 非法行未被丢弃", tc.name)
		}
		if len(defects) != 1 || defects[0].Field != tc.field {
			t.Fatalf("%s: 缺陷 = %+v, 期望字段 %s", tc.name, defects, tc.field)
		}
	}
}

func TestNormalizeExcludeDefaults(t *testing.T) {
	row := validRow()
	row.ExcludedText = "是"

	records, defects := Normalize([]RawRecord{row})
	if len(defects) != 0 {
		t.Fatalf("产生缺陷: %+v", defects)
	}
	if !records[0].Excluded {
		t.Fatalf("剔除标记未置位")
	}
	// 原因缺失时默认为信息未确认
	if records[0].ExcludeReason != model.ExcludeNotConfirmed {
		t.Fatalf("默认剔除原因 = %s", records[0].ExcludeReason)
	}

	// 未剔除的行不校验原因字段
	row2 := validRow()
	row2.ExcludeReason = "whatever"
	if _, defects := Normalize([]RawRecord{row2}); len(defects) != 0 {
		t.Fatalf("未剔除行的原因字段不应校验: %+v", defects)
	}
}

func TestNormalizePhaseMapping(t *testing.T) {
	cases := map[string]string{
		"赢单":   model.PhaseWon,
		"已签约":  model.PhaseWon,
		"商务流程": model.PhaseContract,
		"合同谈判": model.PhaseContract,
		"储备项目": model.PhaseReserve,
		"意向":   model.PhaseReserve,
		"won":  model.PhaseWon,
	}
	for text, want := range cases {
		row := validRow()
		row.PhaseText = text
		records, defects := Normalize([]RawRecord{row})
		if len(defects) != 0 || records[0].Phase != want {
			t.Fatalf("阶段 %q 映射 = %v (缺陷 %v), 期望 %s", text, records, defects, want)
		}
	}
}

func TestNormalizeChineseDate(t *testing.T) {
	row := validRow()
	row.AnchorText = "2026年3月"
	records, _ := Normalize([]RawRecord{row})
	if len(records) != 1 || records[0].Anchor.Month() != time.March {
		t.Fatalf("中文日期解析失败: %+v", records)
	}

	row.AnchorText = "2026年3月5日"
	records, _ = Normalize([]RawRecord{row})
	if len(records) != 1 || records[0].Anchor.Day() != 5 {
		t.Fatalf("中文日期(带日)解析失败: %+v", records)
	}
}

func TestNormalizeProjectIDFallback(t *testing.T) {
	row := validRow()
	row.ProjectID = ""
	records, defects := Normalize([]RawRecord{row})
	if len(defects) != 0 {
		t.Fatalf("编号缺失不应产生缺陷: %+v", defects)
	}
	if !strings.HasPrefix(records[0].ProjectID, "p_") {
		t.Fatalf("未生成本地编号: %q", records[0].ProjectID)
	}
}
