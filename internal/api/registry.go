package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/winevat/winevat/internal/registry"
)

// registerRegistryRoutes registers registry value access endpoints.
func (s *Server) registerRegistryRoutes() {
	// Read a value.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-registry-value",
		Method:      http.MethodGet,
		Path:        "/api/registry/value",
		Summary:     "Query Registry Value",
		Description: "Read a named registry value from the prefix. An absent value and a failed query both report found=false.",
		Tags:        []string{"registry"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Key  string `query:"key" required:"true" example:"HKCU\\Software\\Winevat" doc:"Registry key path"`
		Name string `query:"name" required:"true" example:"Mode" doc:"Value name"`
		Type string `query:"type" required:"true" enum:"REG_SZ,REG_DWORD,REG_QWORD,REG_BINARY" doc:"Registry value type"`
	}) (*RegistryValueResponse, error) {
		value, found := s.registry.Query(ctx, input.Key, input.Name, registry.ValueType(input.Type))
		return &RegistryValueResponse{
			Body: RegistryValueData{Value: value, Found: found},
		}, nil
	})

	// Write a value.
	huma.Register(s.api, huma.Operation{
		OperationID: "put-registry-value",
		Method:      http.MethodPut,
		Path:        "/api/registry/value",
		Summary:     "Write Registry Value",
		Description: "Create or overwrite a named registry value in the prefix",
		Tags:        []string{"registry"},
		Errors:      []int{401, 422, 502},
		Security:    withAuth(),
	}, func(ctx context.Context, input *RegistryAddRequest) (*struct{}, error) {
		err := s.registry.Add(ctx, input.Body.Key, input.Body.Name,
			registry.ValueType(input.Body.Type), input.Body.Value)
		if err != nil {
			return nil, huma.Error502BadGateway("failed to write registry value", err)
		}
		return &struct{}{}, nil
	})
}
