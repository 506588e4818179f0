package model

import "time"

// 项目阶段（来源系统的三段式口径）
const (
	PhaseWon      = "won"      // 赢单/已签约，计入已完成
	PhaseContract = "contract" // 商务/采购流程中
	PhaseReserve  = "reserve"  // 储备项目
)

// 剔除原因代码
const (
	ExcludeProgressLow     = "progress_low"     // 进度严重滞后
	ExcludeDelayed         = "delayed"          // 项目延期
	ExcludePendingApproval = "pending_approval" // 审批未完成
	ExcludeRiskHigh        = "risk_high"        // 高风险项目
	ExcludeNotConfirmed    = "not_confirmed"    // 信息未确认
)

// ValidExcludeReason 判断剔除原因代码是否合法
func ValidExcludeReason(code string) bool {
	switch code {
	case ExcludeProgressLow, ExcludeDelayed, ExcludePendingApproval,
		ExcludeRiskHigh, ExcludeNotConfirmed:
		return true
	}
	return false
}

// ProjectRecord 项目记录（规范化后的叶子实体）
// 由记录提供方创建并批量供给，引擎侧只读，不做任何修改。
type ProjectRecord struct {
	ID          int64  `json:"id"`
	ProjectID   string `json:"projectId"` // 项目编号
	Name        string `json:"name"`
	Region      string `json:"region"`      // 大区
	City        string `json:"city"`        // 城市
	Salesperson string `json:"salesperson"` // 业务员

	Anchor time.Time `json:"anchor"` // 时间锚点（预计/实际完成日期）
	Amount float64   `json:"amount"` // 金额（万元）
	Phase  string    `json:"phase"`  // won/contract/reserve

	// 剔除标记：置位后不计入主口径，仅进入剔除清单
	Excluded         bool    `json:"excluded"`
	ExcludeReason    string  `json:"excludeReason"`
	ExpectedProgress float64 `json:"expectedProgress"` // 预期进度（%）
	CurrentProgress  float64 `json:"currentProgress"`  // 当前进度（%）

	// 元数据
	SourceSheet string    `json:"sourceSheet"`
	SourceFile  string    `json:"sourceFile"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SalesTarget 销售目标（业务员 × 月份粒度的配额）
// 所有更高层级/更粗窗口的目标都由叶子配额精确求和得到。
type SalesTarget struct {
	ID          int64   `json:"id"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Salesperson string  `json:"salesperson"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Amount      float64 `json:"amount"` // 目标额（万元）
}

// ImportLog 导入日志
type ImportLog struct {
	ID             int64      `json:"id"`
	BatchID        string     `json:"batchId"` // 导入批次 UUID
	Filename       string     `json:"filename"`
	TotalSheets    int        `json:"totalSheets"`
	ImportedSheets int        `json:"importedSheets"`
	SkippedSheets  int        `json:"skippedSheets"`
	TotalRows      int        `json:"totalRows"`
	ImportedRows   int        `json:"importedRows"`
	DefectRows     int        `json:"defectRows"` // 校验失败被丢弃的行数
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"errorMessage"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}
