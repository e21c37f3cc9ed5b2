package tui

import "github.com/mmcdole/marquee/internal/domain"

// Message types for the TUI

// OpResultMsg carries the terminal event of an orchestrated operation
type OpResultMsg struct {
	Result domain.OpResult
}

// ConnectivityMsg signals a reachability change
type ConnectivityMsg struct {
	Connected bool
}

// TickMsg is sent periodically to animate spinners
type TickMsg struct{}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}
