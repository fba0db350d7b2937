package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/logcat"
	"github.com/droidcli/droidcli/internal/media"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/session"
	"github.com/droidcli/droidcli/internal/ui"
)

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// criteriaParams builds element criteria from the shared tool params.
func criteriaParams(params map[string]interface{}) ui.Criteria {
	return ui.Criteria{
		Text:          stringParam(params, "text", ""),
		ResourceID:    stringParam(params, "id", ""),
		ContentDesc:   stringParam(params, "desc", ""),
		Class:         stringParam(params, "class", ""),
		ExactText:     boolParam(params, "exact", false),
		ClickableOnly: boolParam(params, "clickable", false),
	}
}

func (s *Server) handleDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.mgr.Devices(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(devices), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.mgr.Info(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type deviceInfo struct {
		Device   adb.DeviceInfo `yaml:"device"`
		Screen   adb.Size       `yaml:"screen"`
		App      string         `yaml:"app,omitempty"`
		Activity string         `yaml:"activity,omitempty"`
	}
	res := deviceInfo{Device: info}
	if size, err := s.mgr.ScreenSize(ctx); err == nil {
		res.Screen = size
	}
	if pkg, activity, err := s.mgr.ForegroundApp(ctx); err == nil {
		res.App = pkg
		res.Activity = activity
	}
	return toText(res), nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	all := boolParam(params, "all", false)
	clickableOnly := boolParam(params, "clickable", false)
	limit := intParam(params, "limit", 0)

	snap, err := s.inspector.Snapshot(ctx, ui.ParseOptions{IncludeInvisible: all})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	elements := snap.Elements
	if clickableOnly {
		filtered := make([]ui.Element, 0, len(elements))
		for _, el := range elements {
			if el.Clickable {
				filtered = append(filtered, el)
			}
		}
		elements = filtered
	}
	if limit > 0 && len(elements) > limit {
		elements = elements[:limit]
	}
	return toText(output.InspectResult{
		Device:   s.mgr.Serial(),
		TS:       time.Now().Unix(),
		Stats:    snap.Stats(),
		Elements: elements,
	}), nil
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	criteria := criteriaParams(params)
	limit := intParam(params, "limit", 0)

	snap, err := s.inspector.Snapshot(ctx, ui.ParseOptions{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := ui.Find(snap, criteria)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return toText(output.FindResult{
		Device:   s.mgr.Serial(),
		Query:    criteria.String(),
		Count:    len(matches),
		Elements: matches,
	}), nil
}

func (s *Server) handleTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	criteria := criteriaParams(params)
	x := intParam(params, "x", -1)
	y := intParam(params, "y", -1)
	index := intParam(params, "index", 0)
	longMs := intParam(params, "long_ms", 0)

	action := "tap"
	if longMs > 0 {
		action = "long_press"
	}
	res := output.ActionResult{Device: s.mgr.Serial(), Action: action}

	if criteria.Empty() {
		if x < 0 || y < 0 {
			return mcp.NewToolResultError("provide element criteria or both x and y"), nil
		}
		res.X, res.Y = x, y
	} else {
		snap, err := s.inspector.Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		el, err := ui.Resolve(snap, criteria, index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res.Target = &el
		res.X, res.Y = el.Center.X, el.Center.Y
	}

	var result adb.Result
	var err error
	if longMs > 0 {
		result, err = s.mgr.LongPress(ctx, res.X, res.Y, time.Duration(longMs)*time.Millisecond)
	} else {
		result, err = s.mgr.Tap(ctx, res.X, res.Y)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res.OK = result.OK
	if !result.OK {
		res.Error = strings.TrimSpace(result.Stderr)
		return mcp.NewToolResultError(res.Error), nil
	}
	return toText(res), nil
}

func (s *Server) handleSwipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	dir := stringParam(params, "direction", "")
	fromX := intParam(params, "from_x", -1)
	fromY := intParam(params, "from_y", -1)
	toX := intParam(params, "to_x", -1)
	toY := intParam(params, "to_y", -1)
	durationMs := intParam(params, "duration_ms", 300)

	if dir != "" {
		size, err := s.mgr.ScreenSize(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cx, cy := size.Width/2, size.Height/2
		dx, dy := size.Width*3/10, size.Height*3/10
		switch dir {
		case "up":
			fromX, fromY, toX, toY = cx, cy+dy, cx, cy-dy
		case "down":
			fromX, fromY, toX, toY = cx, cy-dy, cx, cy+dy
		case "left":
			fromX, fromY, toX, toY = cx+dx, cy, cx-dx, cy
		case "right":
			fromX, fromY, toX, toY = cx-dx, cy, cx+dx, cy
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q", dir)), nil
		}
	} else if fromX < 0 || fromY < 0 || toX < 0 || toY < 0 {
		return mcp.NewToolResultError("provide direction or all of from_x, from_y, to_x, to_y"), nil
	}

	result, err := s.mgr.Swipe(ctx, fromX, fromY, toX, toY, time.Duration(durationMs)*time.Millisecond)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.OK {
		return mcp.NewToolResultError(strings.TrimSpace(result.Stderr)), nil
	}
	return toText(output.ActionResult{
		Device: s.mgr.Serial(), Action: "swipe", OK: true, X: toX, Y: toY,
	}), nil
}

func (s *Server) handleInputText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	value := stringParam(params, "value", "")
	if value == "" {
		return mcp.NewToolResultError("value is required"), nil
	}
	criteria := criteriaParams(params)
	index := intParam(params, "index", 0)

	res := output.ActionResult{Device: s.mgr.Serial(), Action: "type"}
	if !criteria.Empty() {
		snap, err := s.inspector.Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		el, err := ui.Resolve(snap, criteria, index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if tap, err := s.mgr.Tap(ctx, el.Center.X, el.Center.Y); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		} else if !tap.OK {
			return mcp.NewToolResultError(strings.TrimSpace(tap.Stderr)), nil
		}
		res.Target = &el
	}

	result, err := s.mgr.InputText(ctx, value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res.OK = result.OK
	if !result.OK {
		return mcp.NewToolResultError(strings.TrimSpace(result.Stderr)), nil
	}
	return toText(res), nil
}

func (s *Server) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := stringParam(request.GetArguments(), "key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}
	result, err := s.mgr.PressKey(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.OK {
		return mcp.NewToolResultError(strings.TrimSpace(result.Stderr)), nil
	}
	return toText(output.ActionResult{Device: s.mgr.Serial(), Action: "key", OK: true}), nil
}

func (s *Server) handleWaitFor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	criteria := criteriaParams(params)
	if criteria.Empty() {
		return mcp.NewToolResultError("at least one of text, id, desc, or class is required"), nil
	}
	gone := boolParam(params, "gone", false)
	timeoutMs := intParam(params, "timeout_ms", 10000)

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	type waitResult struct {
		Found   bool        `yaml:"found"`
		Element *ui.Element `yaml:"element,omitempty"`
	}
	for {
		snap, err := s.inspector.Snapshot(waitCtx, ui.ParseOptions{})
		if err == nil {
			matches, ferr := ui.Find(snap, criteria)
			if ferr != nil {
				return mcp.NewToolResultError(ferr.Error()), nil
			}
			if gone && len(matches) == 0 {
				return toText(waitResult{Found: true}), nil
			}
			if !gone && len(matches) > 0 {
				return toText(waitResult{Found: true, Element: &matches[0]}), nil
			}
		} else if waitCtx.Err() != nil {
			return toText(waitResult{}), nil
		}
		select {
		case <-waitCtx.Done():
			return toText(waitResult{}), nil
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	out := stringParam(params, "out", "")
	criteria := criteriaParams(params)

	if out == "" && s.defaults.MediaDir != "" {
		out = filepath.Join(s.defaults.MediaDir,
			fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	}

	shot, err := media.Screenshot(ctx, s.mgr, out)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type screenshotResult struct {
		media.ScreenshotResult `yaml:",inline"`

		Annotated string `yaml:"annotated,omitempty"`
		Matches   int    `yaml:"matches,omitempty"`
	}
	res := screenshotResult{ScreenshotResult: shot}

	if !criteria.Empty() {
		snap, err := s.inspector.Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		matches, err := ui.Find(snap, criteria)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res.Matches = len(matches)
		if len(matches) > 0 {
			ext := filepath.Ext(shot.Path)
			annotated := strings.TrimSuffix(shot.Path, ext) + "_annotated" + ext
			if err := media.Annotate(shot.Path, annotated, matches); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res.Annotated = annotated
		}
	}
	return toText(res), nil
}

func (s *Server) handleStartRecording(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	limitS := intParam(params, "time_limit_s", 0)

	dev, err := s.mgr.AutoSelect(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recCfg := media.RecordingConfig{
		TimeLimit: time.Duration(limitS) * time.Second,
		BitRate:   intParam(params, "bit_rate", 0),
		Size:      stringParam(params, "size", ""),
		Dir:       s.defaults.MediaDir,
	}
	sessionCfg := session.Config{
		ConflictKey: media.ConflictKey(dev.Serial),
		Detail:      recCfg,
	}
	if recCfg.TimeLimit > 0 {
		sessionCfg.TimeLimit = recCfg.TimeLimit + 10*time.Second
	}

	id, err := s.registry.Start(ctx, session.KindRecording, media.NewRecording(s.mgr, recCfg), sessionCfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(map[string]string{"session_id": id, "state": "running"}), nil
}

func (s *Server) handleStartLogMonitor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if _, err := s.mgr.AutoSelect(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	monCfg := logcat.MonitorConfig{
		Tag:         stringParam(params, "tag", ""),
		MinPriority: stringParam(params, "priority", ""),
		Clear:       boolParam(params, "clear", false),
		Database:    boolParam(params, "db", false),
		BufferSize:  s.defaults.LogBufferSize,
		Dir:         s.defaults.LogDir,
	}
	sessionCfg := session.Config{
		TimeLimit: time.Duration(intParam(params, "duration_s", 0)) * time.Second,
		Detail:    monCfg,
	}

	id, err := s.registry.Start(ctx, session.KindLogMonitor, logcat.NewMonitor(s.mgr, monCfg), sessionCfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(map[string]string{"session_id": id, "state": "running"}), nil
}

func (s *Server) handleStopSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "session_id", "")
	if id == "" {
		results, err := s.registry.StopAll(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toText(results), nil
	}
	res, err := s.registry.Stop(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(res), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toText(s.registry.List()), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringParam(request.GetArguments(), "session_id", "")
	detail, err := s.registry.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(detail), nil
}

func (s *Server) handleRecentLogEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "session_id", "")
	count := intParam(params, "count", 50)

	op, err := s.registry.Op(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mon, ok := op.(*logcat.Monitor)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("session %s is not a log monitor", id)), nil
	}
	return toText(mon.Recent(count)), nil
}

func (s *Server) handleGetLogcat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	entries, err := logcat.Dump(ctx, s.mgr, logcat.DumpOptions{
		Tag:         stringParam(params, "tag", ""),
		MinPriority: stringParam(params, "priority", ""),
		Lines:       intParam(params, "lines", 0),
		Since:       stringParam(params, "since", ""),
		Clear:       boolParam(params, "clear", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(entries), nil
}

func (s *Server) handleSearchLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	query := stringParam(params, "query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	entries, err := logcat.Search(ctx, s.mgr, query, logcat.DumpOptions{
		Tag:         stringParam(params, "tag", ""),
		MinPriority: stringParam(params, "priority", ""),
		Lines:       intParam(params, "lines", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toText(entries), nil
}
