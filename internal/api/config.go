package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/config"
	"compass/internal/risk"
)

// ConfigResponse 业务配置响应
type ConfigResponse struct {
	CurrentWindow string `json:"currentWindow"`

	// 风险分级
	Scheme            string  `json:"scheme"`
	EscalationEnabled bool    `json:"escalationEnabled"`
	CoverageBelow     float64 `json:"coverageBelow"`
	GapCeiling        float64 `json:"gapCeiling"`

	// 趋势判定
	TrendDeadBand float64 `json:"trendDeadBand"`
}

// GetConfig 获取业务配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	currentWindow, _ := h.store.GetCurrentWindowKey()

	c.JSON(http.StatusOK, ConfigResponse{
		CurrentWindow:     currentWindow,
		Scheme:            h.cfg.Risk.Scheme,
		EscalationEnabled: h.cfg.Risk.EscalationEnabled,
		CoverageBelow:     h.cfg.Risk.CoverageBelow,
		GapCeiling:        h.cfg.Risk.GapCeiling,
		TrendDeadBand:     h.cfg.Business.TrendDeadBand,
	})
}

// UpdateConfigRequest 更新配置请求（部分更新）
type UpdateConfigRequest struct {
	Scheme            *string  `json:"scheme"`
	EscalationEnabled *bool    `json:"escalationEnabled"`
	CoverageBelow     *float64 `json:"coverageBelow"`
	GapCeiling        *float64 `json:"gapCeiling"`
	TrendDeadBand     *float64 `json:"trendDeadBand"`
}

// UpdateConfig 更新业务配置并持久化
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	if req.Scheme != nil {
		if _, err := risk.SchemeByName(*req.Scheme); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.cfg.Risk.Scheme = *req.Scheme
	}
	if req.EscalationEnabled != nil {
		h.cfg.Risk.EscalationEnabled = *req.EscalationEnabled
	}
	if req.CoverageBelow != nil {
		h.cfg.Risk.CoverageBelow = *req.CoverageBelow
	}
	if req.GapCeiling != nil {
		h.cfg.Risk.GapCeiling = *req.GapCeiling
	}
	if req.TrendDeadBand != nil {
		if *req.TrendDeadBand < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "趋势死区不能为负"})
			return
		}
		h.cfg.Business.TrendDeadBand = *req.TrendDeadBand
	}

	if err := config.SaveConfig(h.cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存配置失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "配置更新成功"})
}
