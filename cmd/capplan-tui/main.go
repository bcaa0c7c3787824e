package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/capplan/internal/tui"
)

func main() {
	// A plan file, sample id or share code; none opens the default plan
	source := ""
	if len(os.Args) > 2 {
		fmt.Println("Usage: capplan-tui [plan-file | sample-id | share-code]")
		os.Exit(1)
	}
	if len(os.Args) == 2 {
		source = os.Args[1]
	}

	p := tea.NewProgram(
		tui.NewModel(source),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
