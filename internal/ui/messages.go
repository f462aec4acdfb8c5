package ui

import "tomat/internal/protocol"

// StatusMsg carries one line pushed by the watch stream
type StatusMsg struct {
	Response protocol.Response
}

// StreamClosedMsg reports that the watch stream ended
type StreamClosedMsg struct {
	Err error
}

// CommandResultMsg carries the reply to a key-triggered command
type CommandResultMsg struct {
	Command  string
	Err      error
	Response protocol.Response
}
