package main

import (
	"fmt"

	"github.com/fatih/color"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// Colors are disabled automatically when stdout is not a terminal.
var (
	colorNew       = color.GreenString
	colorUpdated   = color.YellowString
	colorUnchanged = color.New(color.Faint).SprintfFunc()
	colorFailed    = color.RedString
)

func outcomeLabel(o domdoc.Outcome) string {
	label := fmt.Sprintf("%-9s", o)
	switch o {
	case domdoc.NewFile:
		return colorNew("%s", label)
	case domdoc.Updated:
		return colorUpdated("%s", label)
	default:
		return colorUnchanged("%s", label)
	}
}
