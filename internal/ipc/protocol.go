package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandSnapshot     CommandType = "SNAPSHOT"
	CommandListApps     CommandType = "LIST_APPS"
	CommandOpenApp      CommandType = "OPEN_APP"
	CommandWindowAction CommandType = "WINDOW_ACTION"
	CommandTaskbarClick CommandType = "TASKBAR_CLICK"
	CommandDispatch     CommandType = "DISPATCH"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Windows       int    `json:"windows"`
	Visible       int    `json:"visible"`
	Active        string `json:"active,omitempty"`
	Apps          int    `json:"apps"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
	PID           int    `json:"pid"`
	HTTPAddress   string `json:"http_address,omitempty"`
}

// SnapshotData is the full desktop state returned by SNAPSHOT.
type SnapshotData = desktop.State

type AppsData struct {
	Apps []desktop.AppView `json:"apps"`
}

// AppliedData reports whether a mutating command changed anything. Unknown
// ids are not errors; they come back with Applied false.
type AppliedData struct {
	Applied bool `json:"applied"`
}

type OpenAppPayload struct {
	AppID string `json:"app_id"`
}

type WindowActionPayload struct {
	Action   string `json:"action"`
	WindowID string `json:"window_id"`
}

type TaskbarClickPayload struct {
	WindowID string `json:"window_id"`
}

// DispatchPayload carries one raw input event.
type DispatchPayload = events.Event

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}
	return &Response{Status: StatusOK, Data: dataBytes}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: StatusError, Error: errMsg}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: command is required")
	}
	return &req, nil
}

func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
