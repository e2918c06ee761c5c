package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "handlertest",
		Description:  "test module",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.RecipeName, capability.JobName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Base URL", Required: true},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return struct{}{}, nil
		},
	})
}

func TestListModules(t *testing.T) {
	h := &ModulesHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
	rec := httptest.NewRecorder()
	h.ListModules(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Modules []moduleInfo `json:"modules"`
		Count   int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, len(resp.Modules), resp.Count)

	var found *moduleInfo
	for i := range resp.Modules {
		if resp.Modules[i].Name == "handlertest" {
			found = &resp.Modules[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, []string{"recipe", "job"}, found.Capabilities)
	require.Len(t, found.ConfigSchema, 1)
	assert.Equal(t, "url", found.ConfigSchema[0].Key)
}

func TestWriteBackendError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", capability.WrapErr("b", "op", capability.ErrNotFound), http.StatusNotFound},
		{"not supported", capability.WrapErr("b", "op", capability.ErrNotSupported), http.StatusNotImplemented},
		{"bad credentials", capability.WrapErr("b", "op", capability.ErrIncorrectCredentials), http.StatusBadGateway},
		{"not logged in", capability.WrapErr("b", "op", capability.ErrNotLoggedIn), http.StatusBadGateway},
		{"captcha", capability.WrapErr("b", "op", capability.ErrCaptchaRequired), http.StatusBadGateway},
		{"site down", capability.WrapErr("b", "op", capability.ErrSiteUnavailable), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeBackendError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
