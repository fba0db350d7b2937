// Package server exposes droidcli operations as MCP tools, so agents
// can drive a device without shell overhead. Long-running sessions
// (recordings, log monitors) live in the server process and survive
// across tool calls.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/config"
	"github.com/droidcli/droidcli/internal/session"
	"github.com/droidcli/droidcli/internal/ui"
	"github.com/droidcli/droidcli/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wires the device manager and session registry into an MCP
// server.
type Server struct {
	mgr       *adb.Manager
	inspector *ui.Inspector
	registry  *session.Registry
	defaults  config.Config
	mcp       *mcpserver.MCPServer
}

// New creates and configures an MCP server with all droidcli tools.
func New(mgr *adb.Manager, defaults config.Config) *Server {
	s := &Server{
		mgr:       mgr,
		inspector: ui.NewInspector(mgr),
		registry: session.NewRegistry(session.Options{
			StopGrace: defaults.StopGrace.Std(),
			Retention: defaults.Retention.Std(),
		}),
		defaults: defaults,
	}
	s.mcp = mcpserver.NewMCPServer("droidcli", version.Version)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// devices
	s.mcp.AddTool(
		mcp.NewTool("devices",
			mcp.WithDescription("List connected Android devices with their connection state"),
		),
		s.handleDevices,
	)

	// device_info
	s.mcp.AddTool(
		mcp.NewTool("device_info",
			mcp.WithDescription("Show model, Android version, screen size, and foreground app of the selected device"),
		),
		s.handleDeviceInfo,
	)

	// inspect_ui
	s.mcp.AddTool(
		mcp.NewTool("inspect_ui",
			mcp.WithDescription("Capture a fresh snapshot of the foreground UI. Returns elements with text, resource ids, bounds, centers, and interaction flags."),
			mcp.WithBoolean("all", mcp.Description("Include invisible elements")),
			mcp.WithBoolean("clickable", mcp.Description("Only clickable elements")),
			mcp.WithNumber("limit", mcp.Description("Max elements in output (0 = unlimited)")),
		),
		s.handleInspect,
	)

	// find_elements
	s.mcp.AddTool(
		mcp.NewTool("find_elements",
			mcp.WithDescription("Find UI elements by text, resource id, content description, or class. Matches are returned in document order."),
			mcp.WithString("text", mcp.Description("Match visible text (case-insensitive substring)")),
			mcp.WithString("id", mcp.Description("Match resource-id exactly")),
			mcp.WithString("desc", mcp.Description("Match content-desc (case-insensitive substring)")),
			mcp.WithString("class", mcp.Description("Match widget class exactly")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
			mcp.WithBoolean("clickable", mcp.Description("Only clickable elements")),
			mcp.WithNumber("limit", mcp.Description("Max matches to return")),
		),
		s.handleFind,
	)

	// tap
	s.mcp.AddTool(
		mcp.NewTool("tap",
			mcp.WithDescription("Tap an element matched by criteria, or an absolute coordinate. Uses a fresh snapshot for element resolution."),
			mcp.WithString("text", mcp.Description("Match visible text")),
			mcp.WithString("id", mcp.Description("Match resource-id exactly")),
			mcp.WithString("desc", mcp.Description("Match content-desc")),
			mcp.WithString("class", mcp.Description("Match widget class exactly")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
			mcp.WithNumber("index", mcp.Description("Which match to tap when several match (0-based, document order)")),
			mcp.WithNumber("x", mcp.Description("Tap at absolute X coordinate")),
			mcp.WithNumber("y", mcp.Description("Tap at absolute Y coordinate")),
			mcp.WithNumber("long_ms", mcp.Description("Long-press hold duration in milliseconds")),
		),
		s.handleTap,
	)

	// swipe
	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe between coordinates or in a named direction across the screen"),
			mcp.WithString("direction", mcp.Description("Named swipe: up, down, left, right")),
			mcp.WithNumber("from_x", mcp.Description("Start X coordinate")),
			mcp.WithNumber("from_y", mcp.Description("Start Y coordinate")),
			mcp.WithNumber("to_x", mcp.Description("End X coordinate")),
			mcp.WithNumber("to_y", mcp.Description("End Y coordinate")),
			mcp.WithNumber("duration_ms", mcp.Description("Swipe duration in milliseconds")),
		),
		s.handleSwipe,
	)

	// input_text
	s.mcp.AddTool(
		mcp.NewTool("input_text",
			mcp.WithDescription("Type text into the focused field. Optionally tap a matching element first."),
			mcp.WithString("value", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Tap the element with this visible text first")),
			mcp.WithString("id", mcp.Description("Tap the element with this resource-id first")),
			mcp.WithNumber("index", mcp.Description("Which match to focus when several match")),
		),
		s.handleInputText,
	)

	// press_key
	s.mcp.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press a key by friendly name (home, back, enter, ...), KEYCODE_* constant, or raw keycode number"),
			mcp.WithString("key", mcp.Description("Key to press"), mcp.Required()),
		),
		s.handlePressKey,
	)

	// wait_for
	s.mcp.AddTool(
		mcp.NewTool("wait_for",
			mcp.WithDescription("Poll fresh snapshots until an element matching the criteria appears or a timeout elapses"),
			mcp.WithString("text", mcp.Description("Match visible text")),
			mcp.WithString("id", mcp.Description("Match resource-id exactly")),
			mcp.WithString("desc", mcp.Description("Match content-desc")),
			mcp.WithString("class", mcp.Description("Match widget class exactly")),
			mcp.WithBoolean("gone", mcp.Description("Wait for the element to disappear instead")),
			mcp.WithNumber("timeout_ms", mcp.Description("Give up after this long (default 10000)")),
		),
		s.handleWaitFor,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture a screenshot and pull it locally. With criteria, matched elements are outlined on an annotated copy."),
			mcp.WithString("out", mcp.Description("Local output path")),
			mcp.WithString("text", mcp.Description("Annotate elements with this visible text")),
			mcp.WithString("id", mcp.Description("Annotate elements with this resource-id")),
		),
		s.handleScreenshot,
	)

	// start_recording
	s.mcp.AddTool(
		mcp.NewTool("start_recording",
			mcp.WithDescription("Start a background screen recording session. Returns the session id. One recording per device."),
			mcp.WithNumber("time_limit_s", mcp.Description("Stop after this many seconds (max 180)")),
			mcp.WithNumber("bit_rate", mcp.Description("Video bit rate in bits per second")),
			mcp.WithString("size", mcp.Description("Video size WxH, e.g. 1280x720")),
		),
		s.handleStartRecording,
	)

	// stop_recording
	s.mcp.AddTool(
		mcp.NewTool("stop_recording",
			mcp.WithDescription("Stop a recording session and pull the video. Without a session id, stops every running session."),
			mcp.WithString("session_id", mcp.Description("Session to stop (empty = all running)")),
		),
		s.handleStopSession,
	)

	// start_log_monitor
	s.mcp.AddTool(
		mcp.NewTool("start_log_monitor",
			mcp.WithDescription("Start a background logcat monitor session writing to a local log file. Returns the session id."),
			mcp.WithString("tag", mcp.Description("Only capture this tag")),
			mcp.WithString("priority", mcp.Description("Minimum priority: V, D, I, W, E, F")),
			mcp.WithBoolean("clear", mcp.Description("Clear the device log buffer first")),
			mcp.WithBoolean("db", mcp.Description("Also store parsed entries in a SQLite database")),
			mcp.WithNumber("duration_s", mcp.Description("Stop after this many seconds (0 = until stopped)")),
		),
		s.handleStartLogMonitor,
	)

	// stop_log_monitor
	s.mcp.AddTool(
		mcp.NewTool("stop_log_monitor",
			mcp.WithDescription("Stop a log monitor session and flush its file. Without a session id, stops every running session."),
			mcp.WithString("session_id", mcp.Description("Session to stop (empty = all running)")),
		),
		s.handleStopSession,
	)

	// list_sessions
	s.mcp.AddTool(
		mcp.NewTool("list_sessions",
			mcp.WithDescription("List every retained session with its state and progress, newest first"),
		),
		s.handleListSessions,
	)

	// get_session
	s.mcp.AddTool(
		mcp.NewTool("get_session",
			mcp.WithDescription("Show one session's configuration, state, and result"),
			mcp.WithString("session_id", mcp.Description("Session id"), mcp.Required()),
		),
		s.handleGetSession,
	)

	// recent_log_entries
	s.mcp.AddTool(
		mcp.NewTool("recent_log_entries",
			mcp.WithDescription("Return the most recent entries captured by a running log monitor session"),
			mcp.WithString("session_id", mcp.Description("Log monitor session id"), mcp.Required()),
			mcp.WithNumber("count", mcp.Description("Max entries to return (default 50)")),
		),
		s.handleRecentLogEntries,
	)

	// get_logcat
	s.mcp.AddTool(
		mcp.NewTool("get_logcat",
			mcp.WithDescription("Read the device log buffer once and return parsed entries"),
			mcp.WithString("tag", mcp.Description("Only include this tag")),
			mcp.WithString("priority", mcp.Description("Minimum priority: V, D, I, W, E, F")),
			mcp.WithNumber("lines", mcp.Description("Only the most recent N lines")),
			mcp.WithString("since", mcp.Description("Start at a device timestamp (MM-DD HH:MM:SS.mmm)")),
			mcp.WithBoolean("clear", mcp.Description("Clear the device buffer after the dump")),
		),
		s.handleGetLogcat,
	)

	// search_logs
	s.mcp.AddTool(
		mcp.NewTool("search_logs",
			mcp.WithDescription("Dump the device log buffer and return entries whose message or tag contains the query"),
			mcp.WithString("query", mcp.Description("Substring to search for"), mcp.Required()),
			mcp.WithString("tag", mcp.Description("Only include this tag")),
			mcp.WithString("priority", mcp.Description("Minimum priority: V, D, I, W, E, F")),
			mcp.WithNumber("lines", mcp.Description("Only the most recent N lines")),
		),
		s.handleSearchLogs,
	)
}
