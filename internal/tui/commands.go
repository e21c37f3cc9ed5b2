package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
)

// WaitForResultCmd blocks until the next operation result arrives
func WaitForResultCmd(results <-chan domain.OpResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return OpResultMsg{Result: res}
	}
}

// WaitForConnectivityCmd blocks until reachability changes
func WaitForConnectivityCmd(changes <-chan bool) tea.Cmd {
	return func() tea.Msg {
		connected, ok := <-changes
		if !ok {
			return nil
		}
		return ConnectivityMsg{Connected: connected}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
