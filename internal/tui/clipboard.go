package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
)

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard available")
	}
	return clipboard.WriteAll(text)
}
