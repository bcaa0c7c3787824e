package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Preset identifies an asset-allocation mix between equity and debt
type Preset string

const (
	PresetAllIn   Preset = "AllIn"   // 100% equity
	PresetGrow    Preset = "Grow"    // 80% equity
	PresetRegular Preset = "Regular" // 60% equity
	PresetSafe    Preset = "Safe"    // 10% equity
	PresetCustom  Preset = "Custom"  // explicit equity percentage
)

// DefaultCustomEquity is the equity percentage used by the Custom preset when none is given
var DefaultCustomEquity = decimal.NewFromInt(60)

// AllPresets lists the presets in display order
func AllPresets() []Preset {
	return []Preset{PresetAllIn, PresetGrow, PresetRegular, PresetSafe, PresetCustom}
}

// Valid reports whether p is one of the known presets
func (p Preset) Valid() bool {
	switch p {
	case PresetAllIn, PresetGrow, PresetRegular, PresetSafe, PresetCustom:
		return true
	}
	return false
}

// ParsePreset resolves a preset name case-insensitively
func ParsePreset(s string) (Preset, error) {
	for _, p := range AllPresets() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
}

// Assumptions holds the annual return expectations for each asset class
type Assumptions struct {
	EquityAnnual decimal.Decimal `yaml:"equity_annual" json:"equity_annual"`
	DebtAnnual   decimal.Decimal `yaml:"debt_annual" json:"debt_annual"`
}
