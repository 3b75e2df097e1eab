package merge

import (
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
)

// Conflict records a hostname that two sources mapped to different IP
// addresses. The earlier source (preservation set, then lists in selection
// order) wins; the losing mapping is reported, never silently discarded.
type Conflict struct {
	Hostname     string `json:"hostname"`
	WinningIP    string `json:"winning_ip"`
	LosingIP     string `json:"losing_ip"`
	LosingSource string `json:"losing_source"`
}

// Result is the outcome of one merge invocation. It is constructed fresh on
// every call and never mutated afterwards; a new Result replaces the old one.
type Result struct {
	// Entries is the final ordered sequence: preserved user entries first,
	// then managed entries in selection order. No two entries share an
	// (IP, hostname) pair.
	Entries []hostsfile.Entry `json:"entries"`
	// EntryCount is the length of Entries.
	EntryCount int `json:"entry_count"`
	// PreservedCount is the number of preserved user entries.
	PreservedCount int `json:"preserved_count"`
	// BlockedHostnames is the number of hostnames added by managed lists.
	BlockedHostnames int `json:"blocked_hostnames"`
	// Conflicts lists every hostname whose mapping was contested.
	Conflicts []Conflict `json:"conflicts"`
	// WhitelistedSkips counts hostnames dropped because of the whitelist.
	WhitelistedSkips int `json:"whitelisted_skips"`
}

// Merge combines the preservation set with the normalized entries of the
// selected lists. Pure function over immutable inputs: no I/O, and the
// output is a deterministic function of (preservation order, selection
// order, per-list entry order). Merging the same inputs twice yields an
// identical Result.
//
// Resolution policy: earlier source wins. Preservation entries take
// precedence over every list; a list earlier in the selection takes
// precedence over later ones. An exact duplicate (IP, hostname) pair is
// deduplicated silently, including duplicates among the preserved entries
// themselves; the same hostname with a different IP records a Conflict.
// Whitelisted hostnames are skipped and counted.
func Merge(preserved []hostsfile.Entry, selection []string, fetched map[string][]hostsfile.Entry, whitelist map[string]struct{}) *Result {
	result := &Result{}

	seenPairs := make(map[hostsfile.Pair]struct{})
	hostnameIP := make(map[string]string)

	for _, entry := range preserved {
		kept := entry.Hostnames[:0:0]
		for _, hostname := range entry.Hostnames {
			pair := hostsfile.Pair{IP: entry.IP, Hostname: hostname}
			if _, dup := seenPairs[pair]; dup {
				continue
			}

			seenPairs[pair] = struct{}{}
			hostnameIP[hostname] = entry.IP
			kept = append(kept, hostname)
		}

		if len(kept) > 0 {
			result.Entries = append(result.Entries, hostsfile.Entry{
				IP:        entry.IP,
				Hostnames: kept,
				Comment:   entry.Comment,
				Source:    hostsfile.SourceUser,
			})
			result.PreservedCount++
		}
	}

	for _, sourceName := range selection {
		for _, entry := range fetched[sourceName] {
			kept := entry.Hostnames[:0:0]
			for _, hostname := range entry.Hostnames {
				if whitelist != nil {
					if _, whitelisted := whitelist[hostname]; whitelisted {
						result.WhitelistedSkips++
						continue
					}
				}

				pair := hostsfile.Pair{IP: entry.IP, Hostname: hostname}
				if _, dup := seenPairs[pair]; dup {
					// Exact duplicate across sources: silent dedup.
					continue
				}
				if winningIP, taken := hostnameIP[hostname]; taken {
					result.Conflicts = append(result.Conflicts, Conflict{
						Hostname:     hostname,
						WinningIP:    winningIP,
						LosingIP:     entry.IP,
						LosingSource: sourceName,
					})
					continue
				}

				seenPairs[pair] = struct{}{}
				hostnameIP[hostname] = entry.IP
				kept = append(kept, hostname)
			}

			if len(kept) > 0 {
				result.Entries = append(result.Entries, hostsfile.Entry{
					IP:        entry.IP,
					Hostnames: kept,
					Comment:   entry.Comment,
					Source:    sourceName,
				})
				result.BlockedHostnames += len(kept)
			}
		}
	}

	result.EntryCount = len(result.Entries)
	return result
}

// Stats summarizes a merge without exposing the full entry sequence, for
// preview output.
type Stats struct {
	PreservedEntries    int `json:"preserved_entries"`
	NewBlockedHostnames int `json:"new_blocked_hostnames"`
	WhitelistedSkips    int `json:"whitelisted_skips"`
	Conflicts           int `json:"conflicts"`
	TotalEntries        int `json:"total_entries"`
}

// Stats returns the summary counters of the result.
func (r *Result) Stats() Stats {
	return Stats{
		PreservedEntries:    r.PreservedCount,
		NewBlockedHostnames: r.BlockedHostnames,
		WhitelistedSkips:    r.WhitelistedSkips,
		Conflicts:           len(r.Conflicts),
		TotalEntries:        r.EntryCount,
	}
}
