package main

import (
	"os"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// uiMode selects whether generate and check render the progress view.
type uiMode uint8

const (
	uiModeAuto uiMode = iota
	uiModeOn
	uiModeOff
)

var uiModeNames = []string{uiModeAuto: "auto", uiModeOn: "on", uiModeOff: "off"}

func (m uiMode) String() string {
	if int(m) < len(uiModeNames) {
		return uiModeNames[m]
	}
	return "unknown"
}

func readUIMode(value string) (uiMode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return uiModeAuto, nil
	}
	if i := slices.Index(uiModeNames, value); i >= 0 {
		return uiMode(i), nil
	}
	return uiModeAuto, errors.Newf("invalid --ui value %q (expected %s)", value, strings.Join(uiModeNames, "|"))
}

// progressView reports whether a run shows the progress view. An explicit
// mode wins; auto needs an interactive stdout that carries neither quiet nor
// machine-readable output.
func (s settings) progressView() bool {
	switch s.UI {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return !s.Quiet && !machineFormat(s.Format) && isTerminal(os.Stdout)
}
