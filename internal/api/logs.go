package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/winevat/winevat/internal/logging"
)

// registerLogRoutes registers the buffered log access endpoint.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Return recent log entries from the in-memory ring buffer",
		Tags:        []string{"logs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Maximum entries to return, newest kept"`
	}) (*LogListResponse, error) {
		var entries []LogEntryData

		if buffer := logging.GetBuffer(); buffer != nil {
			all := buffer.ReadAll()
			if len(all) > input.Limit {
				all = all[len(all)-input.Limit:]
			}
			entries = make([]LogEntryData, len(all))
			for i, e := range all {
				entries[i] = LogEntryData{
					Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
					Level:      e.Level,
					Module:     e.Module,
					Message:    e.Message,
					Attributes: e.Attributes,
				}
			}
		}

		return &LogListResponse{
			Body: LogListData{Entries: entries, Count: len(entries)},
		}, nil
	})
}
