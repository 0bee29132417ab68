package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// formatBold applies bold only when stdout is a terminal
func formatBold(s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// stderrPrinter returns a printer for error output, without styling
// when stderr is not a terminal.
func stderrPrinter() *pterm.BasicTextPrinter {
	p := pterm.BasicTextPrinter{Writer: os.Stderr}
	return &p
}
