package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
	"github.com/nosyt/nosytos/internal/runtimepath"
)

// Desktop is the window state served over IPC.
type Desktop interface {
	State() desktop.State
	Apps() []desktop.AppView
	Open(appID string) bool
	Apply(action, id string) (bool, error)
	ClickTaskbar(id string) bool
}

// Dispatcher routes raw input events.
type Dispatcher interface {
	Dispatch(e events.Event) (bool, error)
}

// ReloadFunc re-reads configuration and applies the live-reloadable parts.
type ReloadFunc func() error

type ServerOptions struct {
	SocketPath  string
	HTTPAddress string
	Reload      ReloadFunc
	Logger      *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath  string
	listener    net.Listener
	desk        Desktop
	dispatcher  Dispatcher
	reload      ReloadFunc
	httpAddress string
	startTime   time.Time
	logger      *slog.Logger

	shutdownMu   sync.Mutex
	shuttingDown bool
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server. An empty socket path resolves to the
// runtime directory default.
func NewServer(desk Desktop, dispatcher Dispatcher, opts ServerOptions) (*Server, error) {
	socketPath := opts.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// A stale socket from a crashed daemon blocks Listen.
	_ = os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		desk:        desk,
		dispatcher:  dispatcher,
		reload:      opts.Reload,
		httpAddress: opts.HTTPAddress,
		startTime:   time.Now(),
		logger:      logger,
	}, nil
}

func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.write(conn, s.handleCommand(req))
}

func (s *Server) write(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", string(req.Command))
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSnapshot:
		return ok(s.desk.State())
	case CommandListApps:
		return ok(AppsData{Apps: s.desk.Apps()})
	case CommandOpenApp:
		return s.handleOpenApp(req.Payload)
	case CommandWindowAction:
		return s.handleWindowAction(req.Payload)
	case CommandTaskbarClick:
		return s.handleTaskbarClick(req.Payload)
	case CommandDispatch:
		return s.handleDispatch(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded via IPC")
	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	st := s.desk.State()
	return ok(StatusData{
		Windows:       len(st.Windows),
		Visible:       len(st.Taskbar),
		Active:        st.Active,
		Apps:          len(s.desk.Apps()),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
		PID:           os.Getpid(),
		HTTPAddress:   s.httpAddress,
	})
}

func (s *Server) handleOpenApp(payload json.RawMessage) *Response {
	var req OpenAppPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
	}
	if req.AppID == "" {
		return NewErrorResponse("app_id is required")
	}
	return ok(AppliedData{Applied: s.desk.Open(req.AppID)})
}

func (s *Server) handleWindowAction(payload json.RawMessage) *Response {
	var req WindowActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}
	applied, err := s.desk.Apply(req.Action, req.WindowID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(AppliedData{Applied: applied})
}

func (s *Server) handleTaskbarClick(payload json.RawMessage) *Response {
	var req TaskbarClickPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid taskbar payload: %v", err))
	}
	return ok(AppliedData{Applied: s.desk.ClickTaskbar(req.WindowID)})
}

func (s *Server) handleDispatch(payload json.RawMessage) *Response {
	if s.dispatcher == nil {
		return NewErrorResponse("input dispatch is not available")
	}
	var ev DispatchPayload
	if err := json.Unmarshal(payload, &ev); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid event payload: %v", err))
	}
	applied, err := s.dispatcher.Dispatch(ev)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(AppliedData{Applied: applied})
}

// Stop closes the listener, waits for the accept loop and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
