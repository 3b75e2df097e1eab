package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/merge"
	"github.com/maksimkurb/hostsfilter/internal/service"
)

// testServer builds an API server over a real config file in a temp dir, so
// the selection-persistence path is exercised too.
func testServer(t *testing.T, listURL string) (*Server, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "hostsfilter.conf")
	content := fmt.Sprintf(`
config_version = 1

[general]
hosts_path = "%s"
cache_dir = "%s"

[[source]]
name = "test_list"
url = "%s"
enabled = true

[[source]]
name = "extra_list"
url = "%s"
enabled = false
`, filepath.Join(dir, "hosts"), filepath.Join(dir, "sources.d"), listURL, listURL)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := os.WriteFile(cfg.General.HostsPath, []byte("127.0.0.1 localhost\n"), 0644); err != nil {
		t.Fatalf("Failed to seed hosts file: %v", err)
	}

	return NewServer(service.NewMergeService(cfg), "127.0.0.1:0"), cfg
}

func blocklistUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0.0.0.0 ads.example.com\n"))
	}))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestSourcesList(t *testing.T) {
	server, _ := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sources", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sources []SourceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sources); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if !sources[0].Enabled || sources[1].Enabled {
		t.Errorf("Unexpected selection state: %+v", sources)
	}
}

func TestSourceUpdate_PersistsSelection(t *testing.T) {
	server, cfg := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodPut, "/api/v1/sources/extra_list", `{"enabled": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated SourceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !updated.Enabled {
		t.Errorf("Expected the source to be enabled")
	}

	// The toggle must survive a config reload.
	reloaded, err := config.LoadConfig(filepath.Join(cfg.GetConfigDir(), "hostsfilter.conf"))
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	src, err := reloaded.GetSourceByName("extra_list")
	if err != nil || !src.Enabled {
		t.Errorf("Selection was not persisted: %v", err)
	}
}

func TestSourceUpdate_UnknownSource(t *testing.T) {
	server, _ := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodPut, "/api/v1/sources/ghost", `{"enabled": true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	var response ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected not_found, got %s", response.Error.Code)
	}
}

func TestSourceUpdate_InvalidBody(t *testing.T) {
	server, _ := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodPut, "/api/v1/sources/test_list", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestFetchEndpoint(t *testing.T) {
	upstream := blocklistUpstream(t)
	server, _ := testServer(t, upstream.URL)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/fetch", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var responses []FetchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &responses); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(responses) != 1 || responses[0].Source != "test_list" {
		t.Fatalf("Expected one result for test_list, got %+v", responses)
	}
	if responses[0].Entries != 1 || responses[0].Error != "" {
		t.Errorf("Unexpected fetch outcome: %+v", responses[0])
	}
}

func TestPreviewEndpoint(t *testing.T) {
	upstream := blocklistUpstream(t)
	server, _ := testServer(t, upstream.URL)

	// Fetch first so the preview runs from cache.
	if rec := doRequest(t, server, http.MethodPost, "/api/v1/fetch", ""); rec.Code != http.StatusOK {
		t.Fatalf("Fetch failed: %d", rec.Code)
	}

	rec := doRequest(t, server, http.MethodGet, "/api/v1/preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var preview PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if preview.Stats.NewBlockedHostnames != 1 {
		t.Errorf("Expected 1 blocked hostname, got %+v", preview.Stats)
	}
	if preview.Stats.PreservedEntries != 1 {
		t.Errorf("Expected the seeded localhost entry preserved, got %+v", preview.Stats)
	}
}

func TestDiffEndpoint(t *testing.T) {
	upstream := blocklistUpstream(t)
	server, _ := testServer(t, upstream.URL)

	if rec := doRequest(t, server, http.MethodPost, "/api/v1/fetch", ""); rec.Code != http.StatusOK {
		t.Fatalf("Fetch failed: %d", rec.Code)
	}

	rec := doRequest(t, server, http.MethodGet, "/api/v1/diff", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain diff, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "+0.0.0.0") {
		t.Errorf("Expected the diff to add blocked entries:\n%s", rec.Body.String())
	}
}

func TestApplyEndpoint(t *testing.T) {
	upstream := blocklistUpstream(t)
	server, cfg := testServer(t, upstream.URL)

	if rec := doRequest(t, server, http.MethodPost, "/api/v1/fetch", ""); rec.Code != http.StatusOK {
		t.Fatalf("Fetch failed: %d", rec.Code)
	}

	rec := doRequest(t, server, http.MethodPost, "/api/v1/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ApplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Result == nil || response.Result.WrittenCount != 2 {
		t.Errorf("Unexpected apply result: %+v", response.Result)
	}

	content, err := os.ReadFile(cfg.General.HostsPath)
	if err != nil {
		t.Fatalf("Failed to read hosts file: %v", err)
	}
	if !strings.Contains(string(content), "ads.example.com") {
		t.Errorf("Hosts file missing blocked entry:\n%s", content)
	}

	if _, err := merge.LoadManifest(cfg.GetManifestPath()); err != nil {
		t.Errorf("Expected a manifest after apply: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	server, cfg := testServer(t, "http://example.invalid/hosts")

	rec := doRequest(t, server, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.HostsPath != cfg.General.HostsPath {
		t.Errorf("Unexpected hosts path: %s", status.HostsPath)
	}
	if status.Sources != 2 || status.Enabled != 1 {
		t.Errorf("Unexpected source counts: %+v", status)
	}
}
