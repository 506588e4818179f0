package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compass/internal/drilldown"
	"compass/internal/indexer"
	"compass/internal/report"
	"compass/internal/risk"
)

// escalation 由应用配置拼装升级规则
func (h *Handler) escalation() risk.Escalation {
	return risk.Escalation{
		Enabled:       h.cfg.Risk.EscalationEnabled,
		CoverageBelow: h.cfg.Risk.CoverageBelow,
		GapCeiling:    h.cfg.Risk.GapCeiling,
	}
}

// reportOptions 由查询参数与应用配置拼装报表选项。
// 未显式给出的参数取配置默认值。
func (h *Handler) reportOptions(c *gin.Context) (report.Options, error) {
	windowKey := c.Query("window")
	if windowKey == "" {
		windowKey, _ = h.store.GetCurrentWindowKey()
	}
	w, err := indexer.ParseKey(windowKey)
	if err != nil {
		return report.Options{}, err
	}

	opts := report.Options{
		Window:          w,
		SchemeName:      c.DefaultQuery("scheme", h.cfg.Risk.Scheme),
		Escalation:      h.escalation(),
		TrendDeadBand:   h.cfg.Business.TrendDeadBand,
		SortField:       drilldown.SortField(c.DefaultQuery("sort", string(drilldown.SortCoverageRate))),
		Descending:      c.Query("desc") == "true",
		IncludeExcluded: c.Query("includeExcluded") == "true",
	}
	if !drilldown.ValidSortField(opts.SortField) {
		opts.SortField = drilldown.SortCoverageRate
	}
	return opts, nil
}

// GetReport 生成指定窗口的完整报表树
// GET /api/report?window=2026-03&scheme=fourTier&sort=coverageRate&desc=false&includeExcluded=false
func (h *Handler) GetReport(c *gin.Context) {
	opts, err := h.reportOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.builder.Build(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	roundReportInPlace(r.Root)
	c.JSON(http.StatusOK, r)
}
