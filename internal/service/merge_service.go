// Package service wires the fetch, preservation, merge and write stages
// into the operations exposed by the CLI and the HTTP API.
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
	"github.com/maksimkurb/hostsfilter/internal/lists"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/merge"
	"github.com/maksimkurb/hostsfilter/internal/writer"
)

// SourceIssue reports a non-fatal per-source problem (failed download,
// missing cache file).
type SourceIssue struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Diagnostics aggregates the non-fatal problems of one pipeline run, per
// the propagation policy: per-line and per-list errors ride alongside the
// partial result instead of aborting it.
type Diagnostics struct {
	// Unavailable lists were excluded from the merge.
	Unavailable []SourceIssue `json:"unavailable,omitempty"`
	// ParseSkips counts malformed lines per source.
	ParseSkips map[string]int `json:"parse_skips,omitempty"`
	// DuplicateNotes reports intra-list hostname/IP duplicates per source.
	DuplicateNotes map[string][]lists.DuplicateNote `json:"duplicate_notes,omitempty"`
}

// MergeService runs the merge pipeline against one configuration.
type MergeService struct {
	cfg     *config.Config
	fetcher *lists.Fetcher
}

func NewMergeService(cfg *config.Config) *MergeService {
	return &MergeService{
		cfg:     cfg,
		fetcher: lists.NewFetcher(cfg),
	}
}

// Config returns the configuration the service operates on.
func (s *MergeService) Config() *config.Config {
	return s.cfg
}

// FetchAll downloads every source of the selection. Failed sources are
// reported inside the results, not as an error.
func (s *MergeService) FetchAll(ctx context.Context, selection []string) ([]lists.FetchResult, error) {
	if err := s.cfg.ValidateSelection(selection); err != nil {
		return nil, errors.NewValidationError("invalid selection", err)
	}
	return s.fetcher.FetchAll(ctx, selection)
}

// BuildResult runs the full pipeline up to (and including) the pure merge,
// without writing anything. When refresh is true the sources are
// re-downloaded; otherwise their cached copies are used.
//
// The current-file snapshot is read here, once, and passed explicitly into
// the preservation extractor; no stage reads the hosts file on its own.
func (s *MergeService) BuildResult(ctx context.Context, selection []string, refresh bool) (*merge.Result, *Diagnostics, error) {
	if err := s.cfg.ValidateSelection(selection); err != nil {
		return nil, nil, errors.NewValidationError("invalid selection", err)
	}

	snapshot, err := s.readSnapshot()
	if err != nil {
		return nil, nil, err
	}

	manifest, err := merge.LoadManifest(s.cfg.GetManifestPath())
	if err != nil {
		// A corrupt manifest degrades to the conservative heuristic.
		log.Warnf("Failed to load manifest: %v", err)
		manifest = nil
	}

	whitelist, err := merge.LoadWhitelist(s.cfg.GetWhitelistPath())
	if err != nil {
		return nil, nil, err
	}

	fetched, diags, err := s.collectLists(ctx, selection, refresh)
	if err != nil {
		return nil, nil, err
	}

	// Keep only the available lists, preserving selection order.
	effective := make([]string, 0, len(selection))
	for _, name := range selection {
		if _, ok := fetched[name]; ok {
			effective = append(effective, name)
		}
	}

	preserved := merge.ExtractPreserved(snapshot, manifest)
	result := merge.Merge(preserved, effective, fetched, whitelist)

	return result, diags, nil
}

// Apply runs the pipeline and persists the result to the target file.
func (s *MergeService) Apply(ctx context.Context, selection []string, refresh bool) (*writer.ApplyResult, *merge.Result, *Diagnostics, error) {
	if err := writer.CheckWritable(s.cfg.General.HostsPath); err != nil {
		return nil, nil, nil, err
	}

	result, diags, err := s.BuildResult(ctx, selection, refresh)
	if err != nil {
		return nil, nil, nil, err
	}

	applied, err := writer.Apply(result, s.cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return applied, result, diags, nil
}

// Diff runs the pipeline and renders a unified diff between the current
// target content and the would-be result.
func (s *MergeService) Diff(ctx context.Context, selection []string, refresh bool) (string, *Diagnostics, error) {
	result, diags, err := s.BuildResult(ctx, selection, refresh)
	if err != nil {
		return "", nil, err
	}

	snapshot, err := s.readSnapshot()
	if err != nil {
		return "", nil, err
	}

	return writer.Diff(snapshot, result), diags, nil
}

// readSnapshot reads the current target file. A missing file yields an
// empty snapshot; a permission failure is fatal.
func (s *MergeService) readSnapshot() (string, error) {
	content, err := os.ReadFile(s.cfg.General.HostsPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Target %s does not exist, treating as empty", s.cfg.General.HostsPath)
			return "", nil
		}
		if os.IsPermission(err) {
			return "", errors.NewPermissionError(
				fmt.Sprintf("cannot read %s, re-run with elevated privileges (e.g. sudo)", s.cfg.General.HostsPath), err)
		}
		return "", errors.NewInternalError(fmt.Sprintf("failed to read %s", s.cfg.General.HostsPath), err)
	}
	return string(content), nil
}

// collectLists gathers the normalized entries of every selected source,
// either from the network or from the cache. Unavailable sources are
// excluded and reported in the diagnostics.
func (s *MergeService) collectLists(ctx context.Context, selection []string, refresh bool) (map[string][]hostsfile.Entry, *Diagnostics, error) {
	diags := &Diagnostics{
		ParseSkips:     make(map[string]int),
		DuplicateNotes: make(map[string][]lists.DuplicateNote),
	}

	var results []lists.FetchResult
	if refresh {
		fetched, err := s.fetcher.FetchAll(ctx, selection)
		if err != nil {
			return nil, nil, err
		}
		results = fetched
	} else {
		for _, name := range selection {
			src, err := s.cfg.GetSourceByName(name)
			if err != nil {
				return nil, nil, errors.NewValidationError(fmt.Sprintf("unknown source \"%s\"", name), nil)
			}
			result, err := lists.LoadCached(s.cfg, src)
			if err != nil {
				result.Err = err
			}
			results = append(results, result)
		}
	}

	fetched := make(map[string][]hostsfile.Entry, len(results))
	for _, result := range results {
		name := result.Source.Name
		if result.Err != nil {
			log.Warnf("List \"%s\" is unavailable and will be excluded: %v", name, result.Err)
			diags.Unavailable = append(diags.Unavailable, SourceIssue{Source: name, Error: result.Err.Error()})
			continue
		}

		normalized, notes := lists.Normalize(result.Entries)
		fetched[name] = normalized
		if result.ParseSkips > 0 {
			diags.ParseSkips[name] = result.ParseSkips
		}
		if len(notes) > 0 {
			diags.DuplicateNotes[name] = notes
		}
	}

	return fetched, diags, nil
}
