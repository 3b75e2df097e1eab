package merge

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/utils"
)

// The manifest records every (IP, hostname) pair the application wrote on
// the last successful apply. Its format mirrors hosts-file syntax, one pair
// per line, so it stays human-inspectable and parseable with the same
// parser.

// LoadManifest reads the manifest file. A missing file is not an error: it
// returns a nil map, which makes the preservation extractor fall back to
// its conservative heuristic.
func LoadManifest(path string) (map[hostsfile.Pair]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("No manifest at %s, preserving all current entries", path)
			return nil, nil
		}
		return nil, errors.NewManifestError(fmt.Sprintf("failed to read manifest %s", path), err)
	}

	pairs := make(map[hostsfile.Pair]struct{})
	entries, skipped := hostsfile.Parse(string(content), hostsfile.SourceUser)
	if skipped > 0 {
		log.Warnf("Manifest %s: skipped %d malformed line(s)", path, skipped)
	}
	for _, entry := range entries {
		for _, pair := range entry.Pairs() {
			pairs[pair] = struct{}{}
		}
	}

	return pairs, nil
}

// WriteManifest persists the managed pairs of a freshly applied result.
// Pairs are written sorted so the manifest is byte-stable across applies of
// the same merge.
func WriteManifest(path string, pairs map[hostsfile.Pair]struct{}) error {
	sorted := make([]hostsfile.Pair, 0, len(pairs))
	for pair := range pairs {
		sorted = append(sorted, pair)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Hostname != sorted[j].Hostname {
			return sorted[i].Hostname < sorted[j].Hostname
		}
		return sorted[i].IP < sorted[j].IP
	})

	file, err := os.Create(path)
	if err != nil {
		return errors.NewManifestError(fmt.Sprintf("failed to create manifest %s", path), err)
	}
	defer utils.CloseOrWarn(file)

	writer := bufio.NewWriter(file)
	fmt.Fprintln(writer, "# hostsfilter manifest: entries written on the last apply. Do not edit.")
	for _, pair := range sorted {
		fmt.Fprintf(writer, "%s %s\n", pair.IP, pair.Hostname)
	}

	if err := writer.Flush(); err != nil {
		return errors.NewManifestError(fmt.Sprintf("failed to write manifest %s", path), err)
	}
	return nil
}

// ManagedPairs collects the (IP, hostname) pairs of a result that belong to
// managed lists (everything except preserved user entries).
func ManagedPairs(result *Result) map[hostsfile.Pair]struct{} {
	pairs := make(map[hostsfile.Pair]struct{})
	for _, entry := range result.Entries {
		if entry.Source == hostsfile.SourceUser {
			continue
		}
		for _, pair := range entry.Pairs() {
			pairs[pair] = struct{}{}
		}
	}
	return pairs
}

// LoadWhitelist reads the optional whitelist of hostnames that must never
// be blocked, one hostname per line, "#" comments and blank lines ignored.
// A missing file yields an empty whitelist.
func LoadWhitelist(path string) (map[string]struct{}, error) {
	whitelist := make(map[string]struct{})
	if path == "" {
		return whitelist, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return whitelist, nil
		}
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read whitelist %s", path), err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		whitelist[line] = struct{}{}
	}

	return whitelist, nil
}
