package importer

import (
	"testing"
)

func TestRecognizeSheet(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    SheetKind
	}{
		{"项目明细", []string{"项目编号", "项目名称", "大区", "金额(万元)", "阶段"}, SheetRecords},
		{"状态列同义", []string{"项目名称", "金额", "当前状态"}, SheetRecords},
		{"销售目标", []string{"大区", "城市", "业务员", "年份", "月份", "目标额"}, SheetTargets},
		{"目标金额同义", []string{"大区", "月份", "目标金额(万元)"}, SheetTargets},
		{"带换行表头", []string{"金额\n(万元)", "项目 阶段"}, SheetRecords},
		{"说明页", []string{"填写说明", "注意事项"}, SheetUnknown},
		{"空表头", nil, SheetUnknown},
		// 只有目标额没有年月的表不按目标表处理
		{"目标额缺年月", []string{"大区", "目标额"}, SheetUnknown},
	}
	for _, tc := range cases {
		if got := recognizeSheet(tc.headers); got != tc.want {
			t.Fatalf("%s: 识别 = %s, 期望 %s", tc.name, got, tc.want)
		}
	}
}

func TestMapRecordColumns(t *testing.T) {
	headers := []string{
		"项目编号", "项目名称", "大区", "城市", "业务员",
		"预计完成时间", "金额(万元)", "项目阶段",
		"是否剔除", "剔除原因", "预期进度", "当前进度",
	}
	cols := mapRecordColumns(headers)

	if cols.projectID != 0 || cols.name != 1 || cols.region != 2 {
		t.Fatalf("基础列映射不符: %+v", cols)
	}
	if cols.anchor != 5 || cols.amount != 6 || cols.phase != 7 {
		t.Fatalf("数值列映射不符: %+v", cols)
	}
	// “剔除原因”与“是否剔除”都含“剔除”二字，须各归各列
	if cols.excluded != 8 || cols.reason != 9 {
		t.Fatalf("剔除列映射不符: excluded=%d reason=%d", cols.excluded, cols.reason)
	}

	// 缺列置 -1
	cols = mapRecordColumns([]string{"金额", "阶段"})
	if cols.projectID != -1 || cols.reason != -1 {
		t.Fatalf("缺失列未置 -1: %+v", cols)
	}
}

func TestParseRecordRows(t *testing.T) {
	rows := [][]string{
		{"项目编号", "项目名称", "大区", "城市", "业务员", "日期", "金额", "阶段"},
		{"P-1", "园区项目", "华东", "上海", "张三", "2026-03-15", "100", "赢单"},
		{"", "", "", "", "", "", "", ""}, // 空行跳过
		{"P-2", "厂区项目", "华北", "北京", "赵六", "2026-03-20", "200", "储备"},
	}

	raw := parseRecordRows(rows, "项目明细", "测试.xlsx")
	if len(raw) != 2 {
		t.Fatalf("原始行数 = %d, 期望 2", len(raw))
	}

	// 行号为 Excel 行号，含表头且不因空行重排
	if raw[0].RowNo != 2 || raw[1].RowNo != 4 {
		t.Fatalf("行号 = %d/%d, 期望 2/4", raw[0].RowNo, raw[1].RowNo)
	}
	if raw[0].ProjectID != "P-1" || raw[0].AmountText != "100" || raw[0].PhaseText != "赢单" {
		t.Fatalf("首行取值不符: %+v", raw[0])
	}
	if raw[0].SourceSheet != "项目明细" || raw[0].SourceFile != "测试.xlsx" {
		t.Fatalf("来源信息不符: %+v", raw[0])
	}

	// 短行不越界，取空串
	short := [][]string{
		{"项目编号", "项目名称", "大区", "城市", "业务员", "日期", "金额", "阶段"},
		{"P-3", "短行项目", "华东"},
	}
	raw = parseRecordRows(short, "项目明细", "测试.xlsx")
	if len(raw) != 1 || raw[0].AmountText != "" {
		t.Fatalf("短行处理不符: %+v", raw)
	}

	// 只有表头没有数据
	if got := parseRecordRows(rows[:1], "项目明细", "测试.xlsx"); got != nil {
		t.Fatalf("无数据行应返回 nil: %+v", got)
	}
}

func TestParseTargetRows(t *testing.T) {
	rows := [][]string{
		{"大区", "城市", "业务员", "年份", "月份", "目标额(万元)"},
		{"华东", "上海", "张三", "2026", "3", "1,200"},
		{"", "上海", "李四", "2026", "3", "300"},    // 缺大区
		{"华北", "北京", "赵六", "今年", "3", "400"},   // 年份非法
		{"华北", "北京", "赵六", "2026", "13", "400"}, // 月份越界
		{"华南", "深圳", "孙七", "2026", "4", "-10"},  // 目标额为负
		{"华南", "深圳", "孙七", "2026", "4", "500"},
	}

	targets, defects := parseTargetRows(rows, "销售目标")
	if len(targets) != 2 {
		t.Fatalf("目标行数 = %d, 期望 2", len(targets))
	}
	// 千分位逗号照常解析
	if targets[0].Amount != 1200 || targets[0].Year != 2026 || targets[0].Month != 3 {
		t.Fatalf("首条目标不符: %+v", targets[0])
	}

	if len(defects) != 4 {
		t.Fatalf("缺陷数 = %d, 期望 4: %+v", len(defects), defects)
	}
	wantFields := []string{"region", "year", "month", "amount"}
	for i, f := range wantFields {
		if defects[i].Field != f {
			t.Fatalf("缺陷[%d]字段 = %s, 期望 %s", i, defects[i].Field, f)
		}
		if defects[i].SourceSheet != "销售目标" {
			t.Fatalf("缺陷来源表不符: %+v", defects[i])
		}
	}
	// 行号与 Excel 对应（表头为第 1 行）
	if defects[0].RowNo != 3 {
		t.Fatalf("缺陷行号 = %d, 期望 3", defects[0].RowNo)
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !isEmptyRow(nil) || !isEmptyRow([]string{"", "  ", "\t"}) {
		t.Fatalf("空行未被识别")
	}
	if isEmptyRow([]string{"", "华东"}) {
		t.Fatalf("非空行被误判")
	}
}
