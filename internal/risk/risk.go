// Package risk 将汇总节点的覆盖率/缺口/趋势信号映射为离散风险层级。
// 阈值规则有序排列，自上而下首个命中生效；两套阈值方案
// （四档 50/70/90 与三档 80/100）不得在同一份报表内混用。
package risk

import (
	"errors"
	"fmt"
)

// Tier 风险层级
type Tier string

const (
	TierCritical  Tier = "critical"
	TierWarning   Tier = "warning"
	TierGood      Tier = "good"
	TierExcellent Tier = "excellent"

	// 三档方案使用的简化层级
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"

	// TierUnknown 目标为 0、覆盖率不适用时的层级
	TierUnknown Tier = "notApplicable"
)

// Trend 预测趋势信号
type Trend string

const (
	TrendUp     Trend = "up"
	TrendStable Trend = "stable"
	TrendDown   Trend = "down"
)

// Band 阈值区间：coverage 低于 Below（边界归属由方案决定）时命中 Tier
type Band struct {
	Below float64 `toml:"below" json:"below"`
	Tier  Tier    `toml:"tier" json:"tier"`
}

// Scheme 一套有序阈值方案。Bands 按 Below 升序排列，
// 全部未命中时取 Top；Floor 为升级规则的保底层级。
// StrictBounds 控制边界值归属：false 时 coverage <= Below 命中
// （恰为 50 判 critical、恰为 90 判 good），true 时 coverage < Below
// 命中（恰为 80 判 medium、恰为 100 判 low）。
type Scheme struct {
	Name         string `toml:"name" json:"name"`
	Bands        []Band `toml:"bands" json:"bands"`
	Top          Tier   `toml:"top" json:"top"`
	Floor        Tier   `toml:"floor" json:"floor"`
	StrictBounds bool   `toml:"strict_bounds" json:"strictBounds"`
}

// Escalation 绝对缺口升级规则：覆盖率低于下限或缺口超过上限时，
// 层级至少降到方案的保底层级（与来源系统的 coverage<60 或 gap>上限 口径一致）。
type Escalation struct {
	Enabled       bool    `toml:"enabled" json:"enabled"`
	CoverageBelow float64 `toml:"coverage_below" json:"coverageBelow"`
	GapCeiling    float64 `toml:"gap_ceiling" json:"gapCeiling"`
}

// Input 分级输入信号
type Input struct {
	Coverage *float64 // nil 表示覆盖率不适用（目标为 0）
	Gap      float64
	Trend    Trend
}

// FourTier 四档方案：≤50 critical、≤70 warning、≤90 good、>90 excellent
func FourTier() Scheme {
	return Scheme{
		Name: "fourTier",
		Bands: []Band{
			{Below: 50, Tier: TierCritical},
			{Below: 70, Tier: TierWarning},
			{Below: 90, Tier: TierGood},
		},
		Top:   TierExcellent,
		Floor: TierWarning,
	}
}

// ThreeTier 三档方案：<80 high、80–100 medium、≥100 low。
// 与四档方案不同，边界值归入更好的一档（来源系统用 >= 比较）。
func ThreeTier() Scheme {
	return Scheme{
		Name: "threeTier",
		Bands: []Band{
			{Below: 80, Tier: TierHigh},
			{Below: 100, Tier: TierMedium},
		},
		Top:          TierLow,
		Floor:        TierMedium,
		StrictBounds: true,
	}
}

// ErrUnknownScheme 请求了未配置的阈值方案
var ErrUnknownScheme = errors.New("unknown risk scheme")

// SchemeByName 按名称解析阈值方案。
// 一份报表只允许解析一次并贯穿使用，避免混用两套阈值。
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case "", "fourTier":
		return FourTier(), nil
	case "threeTier":
		return ThreeTier(), nil
	}
	return Scheme{}, fmt.Errorf("%w: %s", ErrUnknownScheme, name)
}

// Rank 层级在方案内的序号，0 为最差；层级越好序号越大。
// 不属于该方案的层级返回 -1。
func (s Scheme) Rank(t Tier) int {
	for i, b := range s.Bands {
		if b.Tier == t {
			return i
		}
	}
	if t == s.Top {
		return len(s.Bands)
	}
	return -1
}

// tierAt 方案内指定序号的层级
func (s Scheme) tierAt(rank int) Tier {
	if rank < 0 {
		rank = 0
	}
	if rank >= len(s.Bands) {
		return s.Top
	}
	return s.Bands[rank].Tier
}

// Classify 按有序阈值分级。
// 覆盖率不适用时返回 TierUnknown，但升级规则仍可凭绝对缺口压到保底层级。
// 趋势下行且存在缺口时层级降一档（同趋势下仍保持覆盖率单调性）。
func (s Scheme) Classify(in Input, esc Escalation) Tier {
	if in.Coverage == nil {
		if esc.Enabled && in.Gap > esc.GapCeiling {
			return s.Floor
		}
		return TierUnknown
	}

	tier := s.Top
	for _, b := range s.Bands {
		hit := *in.Coverage <= b.Below
		if s.StrictBounds {
			hit = *in.Coverage < b.Below
		}
		if hit {
			tier = b.Tier
			break
		}
	}

	if in.Trend == TrendDown && in.Gap > 0 {
		tier = s.tierAt(s.Rank(tier) - 1)
	}

	if esc.Enabled && (*in.Coverage < esc.CoverageBelow || in.Gap > esc.GapCeiling) {
		if s.Rank(tier) > s.Rank(s.Floor) {
			tier = s.Floor
		}
	}

	return tier
}
