package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
	"github.com/nosyt/nosytos/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// sendRequest surfaces the failure as a connection error.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

func NewClientAt(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 5 * time.Second}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Snapshot retrieves every window and the taskbar.
func (c *Client) Snapshot() (*desktop.State, error) {
	var st desktop.State
	if err := c.call(CommandSnapshot, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) ListApps() ([]desktop.AppView, error) {
	var data AppsData
	if err := c.call(CommandListApps, nil, &data); err != nil {
		return nil, err
	}
	return data.Apps, nil
}

// OpenApp launches an app. The bool is false for unknown app ids.
func (c *Client) OpenApp(appID string) (bool, error) {
	var data AppliedData
	err := c.call(CommandOpenApp, OpenAppPayload{AppID: appID}, &data)
	return data.Applied, err
}

// WindowAction runs focus, show, minimize, maximize, restore, toggle or close.
func (c *Client) WindowAction(action, windowID string) (bool, error) {
	var data AppliedData
	err := c.call(CommandWindowAction, WindowActionPayload{Action: action, WindowID: windowID}, &data)
	return data.Applied, err
}

func (c *Client) TaskbarClick(windowID string) (bool, error) {
	var data AppliedData
	err := c.call(CommandTaskbarClick, TaskbarClickPayload{WindowID: windowID}, &data)
	return data.Applied, err
}

// Dispatch forwards a raw input event.
func (c *Client) Dispatch(ev events.Event) (bool, error) {
	var data AppliedData
	err := c.call(CommandDispatch, ev, &data)
	return data.Applied, err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
