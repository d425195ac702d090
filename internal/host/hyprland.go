package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/notify"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// ErrNoInstance means no Hyprland session was found in the environment.
var ErrNoInstance = errors.New("HYPRLAND_INSTANCE_SIGNATURE not set, is Hyprland running?")

const requestTimeout = 2 * time.Second

// Client talks to the Hyprland IPC sockets. The request socket handles one
// command per connection; the event socket streams compositor events. All
// methods are safe for concurrent use since every request dials fresh.
type Client struct {
	requestPath string
	eventPath   string
	log         *logging.Logger
}

// SocketDir locates the Hyprland runtime socket directory for the current
// session.
func SocketDir() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoInstance
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/run/user/1000"
	}
	return filepath.Join(runtimeDir, "hypr", sig), nil
}

// NewClient creates a client bound to the current Hyprland instance.
func NewClient(log *logging.Logger) (*Client, error) {
	dir, err := SocketDir()
	if err != nil {
		return nil, err
	}
	return &Client{
		requestPath: filepath.Join(dir, ".socket.sock"),
		eventPath:   filepath.Join(dir, ".socket2.sock"),
		log:         log,
	}, nil
}

// request sends one command and returns the full reply.
func (c *Client) request(command string) ([]byte, error) {
	conn, err := net.DialTimeout("unix", c.requestPath, requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hyprland socket: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", command, err)
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply for %q: %w", command, err)
	}
	return reply, nil
}

// dispatch runs a dispatcher command and verifies the compositor accepted it.
func (c *Client) dispatch(args string) error {
	reply, err := c.request("dispatch " + args)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(reply), "ok") {
		return fmt.Errorf("dispatch %q rejected: %s", args, strings.TrimSpace(string(reply)))
	}
	return nil
}

// ActiveWorkspace returns the ID of the focused workspace.
func (c *Client) ActiveWorkspace() (types.WorkspaceID, error) {
	reply, err := c.request("j/activeworkspace")
	if err != nil {
		return 0, err
	}

	var ws struct {
		ID int64 `json:"id"`
	}
	if err := sonic.Unmarshal(reply, &ws); err != nil {
		return 0, fmt.Errorf("failed to parse activeworkspace reply: %w", err)
	}
	return types.WorkspaceID(ws.ID), nil
}

// SwitchWorkspace focuses the given workspace.
func (c *Client) SwitchWorkspace(id types.WorkspaceID) error {
	return c.dispatch("workspace " + strconv.FormatInt(int64(id), 10))
}

// ActiveWindow describes the focused window, or nil when nothing is focused.
func (c *Client) ActiveWindow() (*types.Window, error) {
	reply, err := c.request("j/activewindow")
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 || string(reply) == "{}" {
		return nil, nil
	}

	var win struct {
		Class     string `json:"class"`
		Floating  bool   `json:"floating"`
		Workspace struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"workspace"`
	}
	if err := sonic.Unmarshal(reply, &win); err != nil {
		return nil, fmt.Errorf("failed to parse activewindow reply: %w", err)
	}

	return &types.Window{
		Class:     win.Class,
		Floating:  win.Floating,
		Special:   strings.HasPrefix(win.Workspace.Name, "special"),
		Workspace: types.WorkspaceID(win.Workspace.ID),
	}, nil
}

// MoveActiveWindow nudges the focused window by a pixel offset.
func (c *Client) MoveActiveWindow(dx, dy int) error {
	return c.dispatch(fmt.Sprintf("moveactive %d %d", dx, dy))
}

// Notify raises a compositor notification banner.
func (c *Client) Notify(message string, severity notify.Severity, duration time.Duration) {
	icon, color := 1, "rgb(66ccff)"
	switch severity {
	case notify.SeverityWarning:
		icon, color = 0, "rgb(ffcc00)"
	case notify.SeverityError:
		icon, color = 3, "rgb(ff4444)"
	}

	cmd := fmt.Sprintf("notify %d %d %s %s", icon, duration.Milliseconds(), color, message)
	if _, err := c.request(cmd); err != nil {
		c.log.Debug("failed to send compositor notification", zap.Error(err))
	}
}

// EventHandler receives raw compositor events as name/data pairs.
type EventHandler func(event, data string)

// Listen streams compositor events to the handler until the context is done
// or the connection drops. Callers own reconnection.
func (c *Client) Listen(ctx context.Context, handler EventHandler) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.eventPath)
	if err != nil {
		return fmt.Errorf("failed to connect to hyprland event socket: %w", err)
	}
	defer conn.Close()

	// Unblock the read when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		event, data, found := strings.Cut(line, ">>")
		if !found {
			continue
		}
		handler(event, data)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("event stream read failed: %w", err)
	}
	return io.EOF
}

// ParseWorkspaceEvent extracts the workspace ID from a workspace or
// workspacev2 event payload. workspacev2 carries "ID,NAME"; the v1 event only
// has the name, which for numbered workspaces is the ID.
func ParseWorkspaceEvent(event, data string) (types.WorkspaceID, bool) {
	switch event {
	case "workspacev2":
		idPart, _, _ := strings.Cut(data, ",")
		if id, err := strconv.ParseInt(idPart, 10, 64); err == nil {
			return types.WorkspaceID(id), true
		}
	case "workspace":
		if id, err := strconv.ParseInt(data, 10, 64); err == nil {
			return types.WorkspaceID(id), true
		}
	}
	return 0, false
}
