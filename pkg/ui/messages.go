package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/planetarium/pkg/config"
	"github.com/vanderheijden86/planetarium/pkg/crew"
)

// tickMsg drives the render loop at the configured FPS.
type tickMsg time.Time

func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 30
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ConfigChangedMsg is sent from outside the program when the config file
// on disk changes. The model re-applies the visual section to the store.
type ConfigChangedMsg struct {
	Config config.Config
}

// ConfigErrorMsg reports a failed config reload.
type ConfigErrorMsg struct {
	Err error
}

// crewResultMsg carries the outcome of an async crew optimization call.
type crewResultMsg struct {
	result crew.Optimization
	err    error
}

// clearStatusMsg expires a transient status line.
type clearStatusMsg struct{ seq int }

func clearStatusCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// snapshotDoneMsg reports the outcome of an in-session snapshot export.
type snapshotDoneMsg struct {
	path string
	err  error
}
