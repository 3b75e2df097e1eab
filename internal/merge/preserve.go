// Package merge implements the reconciliation core: extracting the user's
// own entries from the current hosts file and combining them with the
// selected blocklists into one deterministic result.
package merge

import (
	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
)

// loopbackIPs are the addresses whose localhost-class entries are always
// preserved, even if the manifest claims them. Rewriting these can cut a
// machine off from itself.
var loopbackIPs = map[string]struct{}{
	"127.0.0.1": {},
	"127.0.1.1": {},
	"::1":       {},
}

// ExtractPreserved parses a snapshot of the current hosts file and returns
// the entries that are NOT attributable to a previous apply, in their
// original order, tagged with source "user".
//
// Attribution uses the manifest of (IP, hostname) pairs written last time.
// With a nil manifest nothing can be attributed, so every parsed entry is
// preserved (conservative: better a stale blocklist line kept than a user
// entry lost). Loopback entries are preserved regardless of the manifest.
//
// The snapshot must be passed in explicitly; this function never reads the
// file itself and its output is recomputed before every write.
func ExtractPreserved(snapshot string, manifest map[hostsfile.Pair]struct{}) []hostsfile.Entry {
	entries, _ := hostsfile.Parse(snapshot, hostsfile.SourceUser)

	var preserved []hostsfile.Entry
	for _, entry := range entries {
		kept := entry.Hostnames[:0:0]
		for _, hostname := range entry.Hostnames {
			if isLoopback(entry.IP) {
				kept = append(kept, hostname)
				continue
			}
			if manifest != nil {
				if _, managed := manifest[hostsfile.Pair{IP: entry.IP, Hostname: hostname}]; managed {
					continue
				}
			}
			kept = append(kept, hostname)
		}

		if len(kept) > 0 {
			entry.Hostnames = kept
			preserved = append(preserved, entry)
		}
	}

	return preserved
}

func isLoopback(ip string) bool {
	_, ok := loopbackIPs[ip]
	return ok
}
