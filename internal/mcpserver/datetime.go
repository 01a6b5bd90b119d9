package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type currentDatetimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA timezone name, e.g. Europe/Berlin; defaults to UTC"`
}

type currentDatetimeOutput struct {
	Datetime string `json:"datetime"`
	Weekday  string `json:"weekday"`
	Timezone string `json:"timezone"`
	Unix     int64  `json:"unix"`
}

func (s *Server) registerDatetimeTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_current_datetime",
		Description: "Get the current date and time, optionally in a specific timezone.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in currentDatetimeInput) (*mcp.CallToolResult, any, error) {
		loc := time.UTC
		if in.Timezone != "" {
			var err error
			loc, err = time.LoadLocation(in.Timezone)
			if err != nil {
				return errorResult(fmt.Errorf("unknown timezone %q", in.Timezone))
			}
		}

		now := time.Now().In(loc)
		return jsonResult(currentDatetimeOutput{
			Datetime: now.Format(time.RFC3339),
			Weekday:  now.Weekday().String(),
			Timezone: loc.String(),
			Unix:     now.Unix(),
		})
	})
}
