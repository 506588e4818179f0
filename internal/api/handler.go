// Package api HTTP 接口层。只负责参数解析、展示取整与响应编排，
// 汇总与分级语义全部在 report/engine/risk 包内。
package api

import (
	"github.com/gin-gonic/gin"

	"compass/internal/config"
	"compass/internal/report"
	"compass/internal/store"
)

// Handler API 处理器
type Handler struct {
	store     *store.Store
	cfg       *config.AppConfig
	builder   *report.Builder
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, cfg *config.AppConfig) *Handler {
	return &Handler{
		store:     st,
		cfg:       cfg,
		builder:   report.NewBuilder(st),
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 可用时间窗口
	router.GET("/windows", h.ListWindows)
	router.POST("/windows/select", h.SelectWindow)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/import", h.Import)

	// 报表与钻取
	router.GET("/report", h.GetReport)
	router.POST("/drilldown", h.Drilldown)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
