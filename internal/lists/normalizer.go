package lists

import (
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
)

// DuplicateNote records a hostname that appeared with two different IP
// addresses within the same list. The first occurrence wins; the note keeps
// the rejected address visible for diagnostics instead of silently dropping
// the fact.
type DuplicateNote struct {
	Hostname  string `json:"hostname"`
	KeptIP    string `json:"kept_ip"`
	DroppedIP string `json:"dropped_ip"`
}

// Normalize deduplicates the entries of one list. Exact (IP, hostname)
// duplicates keep the first occurrence in file order. A hostname reappearing
// with a different IP also keeps its first occurrence, and the rejection is
// recorded as a DuplicateNote. Multi-hostname lines keep their grouping;
// hostnames removed by deduplication are dropped from the line, and lines
// left without hostnames disappear.
func Normalize(entries []hostsfile.Entry) ([]hostsfile.Entry, []DuplicateNote) {
	var normalized []hostsfile.Entry
	var notes []DuplicateNote

	seenPairs := make(map[hostsfile.Pair]struct{})
	hostnameIP := make(map[string]string)

	for _, entry := range entries {
		kept := entry.Hostnames[:0:0]
		for _, hostname := range entry.Hostnames {
			pair := hostsfile.Pair{IP: entry.IP, Hostname: hostname}
			if _, dup := seenPairs[pair]; dup {
				continue
			}
			if firstIP, seen := hostnameIP[hostname]; seen && firstIP != entry.IP {
				notes = append(notes, DuplicateNote{
					Hostname:  hostname,
					KeptIP:    firstIP,
					DroppedIP: entry.IP,
				})
				continue
			}

			seenPairs[pair] = struct{}{}
			hostnameIP[hostname] = entry.IP
			kept = append(kept, hostname)
		}

		if len(kept) > 0 {
			entry.Hostnames = kept
			normalized = append(normalized, entry)
		}
	}

	return normalized, notes
}
