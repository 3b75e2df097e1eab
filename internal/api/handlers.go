// Package api exposes the merge core to a UI layer over HTTP. The UI owns
// the selection of enabled sources; this layer validates identifiers,
// persists the selection and runs the pipeline on request.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/lists"
	"github.com/maksimkurb/hostsfilter/internal/merge"
	"github.com/maksimkurb/hostsfilter/internal/service"
	"github.com/maksimkurb/hostsfilter/internal/writer"
)

// SourceResponse represents a source in API responses.
type SourceResponse struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// SourceUpdateRequest toggles a source selection.
type SourceUpdateRequest struct {
	Enabled bool `json:"enabled"`
}

// FetchResponse reports the per-source outcome of a fetch-all.
type FetchResponse struct {
	Source     string `json:"source"`
	Entries    int    `json:"entries"`
	ParseSkips int    `json:"parse_skips,omitempty"`
	Unchanged  bool   `json:"unchanged,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PreviewResponse is the dry-run merge summary.
type PreviewResponse struct {
	Stats       merge.Stats          `json:"stats"`
	Conflicts   []merge.Conflict     `json:"conflicts,omitempty"`
	Diagnostics *service.Diagnostics `json:"diagnostics,omitempty"`
}

// ApplyResponse reports a successful apply.
type ApplyResponse struct {
	Result      *writer.ApplyResult  `json:"result"`
	Stats       merge.Stats          `json:"stats"`
	Conflicts   []merge.Conflict     `json:"conflicts,omitempty"`
	Diagnostics *service.Diagnostics `json:"diagnostics,omitempty"`
}

// StatusResponse describes the configured state.
type StatusResponse struct {
	HostsPath    string `json:"hosts_path"`
	BackupPath   string `json:"backup_path"`
	ManifestPath string `json:"manifest_path"`
	Sources      int    `json:"sources"`
	Enabled      int    `json:"enabled"`
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// writeDomainError maps a domain error onto the HTTP surface.
func writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case apperrors.ErrCodeValidation:
			WriteInvalidRequest(w, domainErr.Error())
			return
		case apperrors.ErrCodePermission:
			WritePermissionDenied(w, domainErr.Error())
			return
		}
	}
	WriteInternalError(w, err.Error())
}

// handleSourcesList returns all configured sources with their selection state.
func (s *Server) handleSourcesList(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.Config()
	sources := make([]SourceResponse, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, SourceResponse{Name: src.Name, URL: src.URL, Enabled: src.Enabled})
	}
	writeJSONData(w, sources)
}

// handleSourceUpdate toggles a source and persists the selection.
func (s *Server) handleSourceUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "source_name")

	cfg := s.svc.Config()
	src, err := cfg.GetSourceByName(name)
	if err != nil {
		WriteNotFound(w, fmt.Sprintf("source \"%s\"", name))
		return
	}

	var req SourceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteInvalidRequest(w, "invalid JSON body")
		return
	}

	src.Enabled = req.Enabled
	if err := cfg.WriteConfig(); err != nil {
		WriteInternalError(w, fmt.Sprintf("failed to persist selection: %v", err))
		return
	}

	writeJSONData(w, SourceResponse{Name: src.Name, URL: src.URL, Enabled: src.Enabled})
}

// handleFetch downloads all enabled sources.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	selection := s.svc.Config().EnabledSourceNames()

	results, err := s.svc.FetchAll(r.Context(), selection)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONData(w, fetchResponses(results))
}

func fetchResponses(results []lists.FetchResult) []FetchResponse {
	responses := make([]FetchResponse, 0, len(results))
	for _, result := range results {
		response := FetchResponse{
			Source:     result.Source.Name,
			Entries:    len(result.Entries),
			ParseSkips: result.ParseSkips,
			Unchanged:  result.Unchanged,
		}
		if result.Err != nil {
			response.Error = result.Err.Error()
		}
		responses = append(responses, response)
	}
	return responses
}

// handlePreview runs the merge without writing and returns its summary.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	selection := s.svc.Config().EnabledSourceNames()

	result, diags, err := s.svc.BuildResult(r.Context(), selection, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONData(w, PreviewResponse{
		Stats:       result.Stats(),
		Conflicts:   result.Conflicts,
		Diagnostics: diags,
	})
}

// handleDiff returns the unified diff of a would-be apply as plain text.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	selection := s.svc.Config().EnabledSourceNames()

	diff, _, err := s.svc.Diff(r.Context(), selection, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(diff))
}

// handleApply runs the pipeline and writes the target file.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	selection := s.svc.Config().EnabledSourceNames()

	applied, result, diags, err := s.svc.Apply(r.Context(), selection, false)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSONData(w, ApplyResponse{
		Result:      applied,
		Stats:       result.Stats(),
		Conflicts:   result.Conflicts,
		Diagnostics: diags,
	})
}

// handleStatus returns the configured paths and source counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.Config()
	writeJSONData(w, StatusResponse{
		HostsPath:    cfg.General.HostsPath,
		BackupPath:   cfg.GetBackupPath(),
		ManifestPath: cfg.GetManifestPath(),
		Sources:      len(cfg.Sources),
		Enabled:      len(cfg.EnabledSourceNames()),
	})
}
