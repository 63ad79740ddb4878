package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/winevat/winevat/internal/cmdline"
	"github.com/winevat/winevat/internal/process"
	"github.com/winevat/winevat/internal/wine"
)

// registerRunRoutes registers run submission, inspection, and cancellation.
func (s *Server) registerRunRoutes() {
	// Submit a command and wait for completion.
	huma.Register(s.api, huma.Operation{
		OperationID: "create-run",
		Method:      http.MethodPost,
		Path:        "/api/runs",
		Summary:     "Run Command",
		Description: "Run a wine command line to completion and return the collected output. A non-zero child exit is a successful API call.",
		Tags:        []string{"runs"},
		Errors:      []int{400, 401, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, input *RunRequest) (*RunResponse, error) {
		args := cmdline.Tokenize(input.Body.Command)
		if len(args) == 0 {
			return nil, huma.Error400BadRequest("command is empty")
		}

		out, err := s.runner.RunCollected(ctx, args, input.Body.Env)
		code := 0
		if err != nil {
			var exitErr *wine.ExitError
			var launchErr *process.LaunchError
			switch {
			case errors.As(err, &exitErr):
				code = exitErr.Code
			case errors.As(err, &launchErr):
				return nil, huma.Error502BadGateway("failed to launch wine", err)
			default:
				return nil, huma.Error502BadGateway("run failed", err)
			}
		}

		return &RunResponse{
			Body: RunResult{ExitCode: code, Output: out},
		}, nil
	})

	// List live runs.
	huma.Register(s.api, huma.Operation{
		OperationID: "list-runs",
		Method:      http.MethodGet,
		Path:        "/api/runs",
		Summary:     "List Runs",
		Description: "List all live runs",
		Tags:        []string{"runs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*RunListResponse, error) {
		runs := s.tracker.List()
		return &RunListResponse{
			Body: RunListData{Runs: runs, Count: len(runs)},
		}, nil
	})

	// Inspect one run.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-run",
		Method:      http.MethodGet,
		Path:        "/api/runs/{run_id}",
		Summary:     "Get Run",
		Description: "Get the state of a run. Unknown runs report the idle state.",
		Tags:        []string{"runs"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		RunID uint64 `path:"run_id" example:"7" doc:"Run identifier"`
	}) (*RunInfoResponse, error) {
		return &RunInfoResponse{Body: s.tracker.Get(input.RunID)}, nil
	})

	// Cancel a live run.
	huma.Register(s.api, huma.Operation{
		OperationID: "cancel-run",
		Method:      http.MethodDelete,
		Path:        "/api/runs/{run_id}",
		Summary:     "Cancel Run",
		Description: "Request termination of a live run",
		Tags:        []string{"runs"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		RunID uint64 `path:"run_id" example:"7" doc:"Run identifier"`
	}) (*struct{}, error) {
		if !s.tracker.Cancel(input.RunID) {
			return nil, huma.Error404NotFound("no live run with that id")
		}
		return &struct{}{}, nil
	})

	// Wine distribution version.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-wine-version",
		Method:      http.MethodGet,
		Path:        "/api/wine/version",
		Summary:     "Wine Version",
		Description: "Report the version of the configured wine binary",
		Tags:        []string{"system"},
		Errors:      []int{401, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*WineVersionResponse, error) {
		v, err := s.runner.Version(ctx)
		if err != nil {
			return nil, huma.Error502BadGateway("failed to query wine version", err)
		}
		return &WineVersionResponse{Body: WineVersionData{Version: v}}, nil
	})
}
