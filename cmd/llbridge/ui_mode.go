package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of "sections --ui".
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("sections --ui: unknown mode %q (want auto, on or off)", value)
	}
}

// shouldUseTUI decides whether the scan progress is drawn with Bubble Tea.
// auto needs stdout on a terminal that can redraw in place.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout)
}
