package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/drilldown"
	"compass/internal/indexer"
	"compass/internal/model"
	"compass/internal/report"
)

// DrilldownRequest 钻取请求：当前游标 + 动作。
// action 为 drill/back/none；reslice 通过换 window 实现，
// 组织位置保持不变。
type DrilldownRequest struct {
	Window      string `json:"window"`
	Level       string `json:"level"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Salesperson string `json:"salesperson"`

	Action   string `json:"action"`
	ChildKey string `json:"childKey"`

	Scheme          string `json:"scheme"`
	Sort            string `json:"sort"`
	Descending      bool   `json:"desc"`
	IncludeExcluded bool   `json:"includeExcluded"`
}

// DrilldownResponse 钻取响应：新游标与该位置的节点视图
type DrilldownResponse struct {
	Position drilldown.Position `json:"position"`
	Node     *report.Node       `json:"node"`

	// InvalidTarget 钻取目标非法时置位；游标保持原位
	InvalidTarget bool `json:"invalidTarget,omitempty"`
}

// Drilldown 执行一次钻取转移并返回目标位置的汇总视图
// POST /api/drilldown
func (h *Handler) Drilldown(c *gin.Context) {
	var req DrilldownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	w, err := indexer.ParseKey(req.Window)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level := model.Level(req.Level)
	if req.Level == "" {
		level = model.LevelNational
	}
	if !level.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法层级"})
		return
	}

	pos := drilldown.Position{
		Level:       level,
		Region:      req.Region,
		City:        req.City,
		Salesperson: req.Salesperson,
		Window:      w,
	}

	opts := report.Options{
		Window:          w,
		SchemeName:      req.Scheme,
		Escalation:      h.escalation(),
		TrendDeadBand:   h.cfg.Business.TrendDeadBand,
		SortField:       drilldown.SortField(req.Sort),
		Descending:      req.Descending,
		IncludeExcluded: req.IncludeExcluded,
	}
	if opts.SchemeName == "" {
		opts.SchemeName = h.cfg.Risk.Scheme
	}
	if !drilldown.ValidSortField(opts.SortField) {
		opts.SortField = drilldown.SortCoverageRate
	}

	r, err := h.builder.Build(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	nav := drilldown.NewNavigator(r)
	invalid := false
	switch req.Action {
	case "drill":
		next, err := nav.DrillInto(pos, req.ChildKey)
		if err != nil {
			if !errors.Is(err, drilldown.ErrInvalidDrillTarget) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			// 非法目标按空操作处理，游标不动
			invalid = true
		}
		pos = next
	case "back":
		pos = nav.Back(pos)
	}

	node := r.FindNode(pos.Path())
	if node == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "该位置无数据"})
		return
	}

	roundReportInPlace(node)
	c.JSON(http.StatusOK, DrilldownResponse{
		Position:      pos,
		Node:          node,
		InvalidTarget: invalid,
	})
}
