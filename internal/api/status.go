package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已初始化（有数据）
	CurrentWindow  string `json:"currentWindow"`  // 当前操作窗口标识
	TotalRecords   int    `json:"totalRecords"`   // 项目记录总数
	TotalTargets   int    `json:"totalTargets"`   // 销售目标条数
	ExcludedCount  int    `json:"excludedCount"`  // 剔除标记记录数
	LastImportTime string `json:"lastImportTime"` // 最后导入时间
	LastDefectRows int    `json:"lastDefectRows"` // 最近一次导入的缺陷行数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	total, err := h.store.CountRecords(store.RecordQueryOptions{})
	if err != nil {
		total = 0
	}

	excluded := true
	excludedCount, err := h.store.CountRecords(store.RecordQueryOptions{Excluded: &excluded})
	if err != nil {
		excludedCount = 0
	}

	targets, err := h.store.CountTargets()
	if err != nil {
		targets = 0
	}

	currentWindow, _ := h.store.GetCurrentWindowKey()

	resp := StatusResponse{
		Initialized:   total > 0,
		CurrentWindow: currentWindow,
		TotalRecords:  total,
		TotalTargets:  targets,
		ExcludedCount: excludedCount,
	}

	if log, err := h.store.GetLatestImportLog(); err == nil && log != nil {
		if log.CompletedAt != nil {
			resp.LastImportTime = log.CompletedAt.Format("2006-01-02 15:04:05")
		}
		resp.LastDefectRows = log.DefectRows
	}

	c.JSON(http.StatusOK, resp)
}
