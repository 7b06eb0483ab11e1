package tools

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DemoConfig carries collaborator settings for the demo tools.
type DemoConfig struct {
	// Secret backs the whisper_secret tool; usually MY_SECRET_KEY.
	Secret string
	// HTTPClient is shared by all outbound demo tools. A default with a
	// 10s timeout is installed when nil.
	HTTPClient *http.Client
}

// RegisterDemoTools registers the fixed set of unrelated demo tools.
func RegisterDemoTools(srv *mcp.Server, cfg DemoConfig) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	registerGreetTool(srv)
	registerWhisperSecretTool(srv, cfg.Secret)
	registerGetTimeTool(srv)
	registerConvertTimezoneTool(srv)
	registerWeatherTools(srv, cfg.HTTPClient)
	registerCurrencyTool(srv, cfg.HTTPClient)
	registerHolidaysTool(srv, cfg.HTTPClient)
}

type greetReq struct {
	Name string `json:"name"`
}

func registerGreetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "greet",
		Description: "Greet a person by name.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "The name of the person to greet",
			},
		}, []string{"name"}),
	}
	register(srv, tool, func(_ context.Context, req greetReq) (any, error) {
		return fmt.Sprintf("Hello, %s!", req.Name), nil
	})
}

func registerWhisperSecretTool(srv *mcp.Server, secret string) {
	tool := &mcp.Tool{
		Name:        "whisper_secret",
		Description: "Reveal the last 4 characters of a secret.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	register(srv, tool, func(_ context.Context, _ struct{}) (any, error) {
		if secret == "" {
			return nil, fmt.Errorf("secret MY_SECRET_KEY is not configured")
		}
		tail := secret
		if len(tail) > 4 {
			tail = tail[len(tail)-4:]
		}
		return "The last 4 characters of the secret are: " + tail, nil
	})
}

type getTimeReq struct {
	Timezone string `json:"timezone"`
}

func registerGetTimeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "get_time",
		Description: "Get the current time in a specific timezone (defaults to UTC).",
		InputSchema: inputSchema(map[string]any{
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA timezone, e.g. 'UTC' or 'Asia/Tokyo'",
			},
		}, nil),
	}
	register(srv, tool, func(_ context.Context, req getTimeReq) (any, error) {
		name := req.Timezone
		if name == "" {
			name = "UTC"
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", name)
		}
		now := time.Now().In(loc)
		return map[string]any{
			"timezone": loc.String(),
			"iso":      now.Format(time.RFC3339),
			"unix":     now.Unix(),
			"date":     now.Format("2006-01-02"),
		}, nil
	})
}

type convertTimezoneReq struct {
	Datetime string `json:"datetime"`
	FromTZ   string `json:"from_tz"`
	ToTZ     string `json:"to_tz"`
}

func registerConvertTimezoneTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "convert_timezone",
		Description: "Convert a datetime from one timezone to another.",
		InputSchema: inputSchema(map[string]any{
			"datetime": map[string]any{
				"type":        "string",
				"description": "Datetime in ISO format, e.g. '2025-10-12 09:00'",
			},
			"from_tz": map[string]any{
				"type":        "string",
				"description": "IANA source timezone, e.g. 'Asia/Tokyo'",
			},
			"to_tz": map[string]any{
				"type":        "string",
				"description": "IANA target timezone, e.g. 'America/Chicago'",
			},
		}, []string{"datetime", "from_tz", "to_tz"}),
	}
	register(srv, tool, func(_ context.Context, req convertTimezoneReq) (any, error) {
		source, err := time.LoadLocation(req.FromTZ)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", req.FromTZ)
		}
		target, err := time.LoadLocation(req.ToTZ)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", req.ToTZ)
		}
		parsed, err := parseISODatetime(req.Datetime, source)
		if err != nil {
			return nil, err
		}
		converted := parsed.In(target)
		return map[string]any{
			"input":          req.Datetime,
			"from_tz":        source.String(),
			"to_tz":          target.String(),
			"converted_iso":  converted.Format(time.RFC3339),
			"converted_date": converted.Format("2006-01-02"),
		}, nil
	})
}

// parseISODatetime accepts the ISO forms the original interface documented:
// '2025-10-12 09:00' and '2025-10-12T09:00', with optional seconds or zone.
func parseISODatetime(raw string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format; use ISO like '2025-10-12 09:00' or '2025-10-12T09:00'")
}
