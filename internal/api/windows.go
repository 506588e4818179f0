package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/indexer"
	"compass/internal/store"
)

type windowsResponse struct {
	CurrentWindow string             `json:"currentWindow"`
	Items         []store.WindowStat `json:"items"`
}

// ListWindows 按粒度列出存在数据的时间窗口
// GET /api/windows?kind=month|quarter|halfYear
func (h *Handler) ListWindows(c *gin.Context) {
	kind := indexer.WindowKind(c.DefaultQuery("kind", string(indexer.WindowMonth)))
	if !indexer.ValidKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法窗口粒度"})
		return
	}

	items, err := h.store.ListAvailableWindows(kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	currentWindow, _ := h.store.GetCurrentWindowKey()

	c.JSON(http.StatusOK, windowsResponse{
		CurrentWindow: currentWindow,
		Items:         items,
	})
}

type selectWindowRequest struct {
	Window string `json:"window"`
}

// SelectWindow 切换当前操作窗口（影响状态展示与默认报表）
// POST /api/windows/select
func (h *Handler) SelectWindow(c *gin.Context) {
	var req selectWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	w, err := indexer.ParseKey(req.Window)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 校验该窗口内存在数据，避免切到空窗口
	items, err := h.store.ListAvailableWindows(w.Kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ok := false
	for _, it := range items {
		if it.Key == w.Key() && it.RecordCount > 0 {
			ok = true
			break
		}
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "该窗口无可用数据"})
		return
	}

	if err := h.store.SetCurrentWindowKey(w.Key()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentWindow": w.Key(),
		"label":         w.Label(),
	})
}
