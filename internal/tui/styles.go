package tui

import "github.com/rgehrsitz/capplan/internal/tui/tuistyles"

// Re-export styles from tuistyles to avoid import cycles
var (
	TitleStyle     = tuistyles.TitleStyle
	SubtitleStyle  = tuistyles.SubtitleStyle
	StatusBarStyle = tuistyles.StatusBarStyle
	BorderStyle    = tuistyles.BorderStyle
	HelpKeyStyle   = tuistyles.StatusKeyStyle
	ErrorStyle     = tuistyles.ErrorStyle
)
