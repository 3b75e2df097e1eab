// Package hostsfile implements parsing and serialization of hosts-file
// formatted content (the line syntax of /etc/hosts and of remote blocklists
// distributed in the same format).
package hostsfile

import (
	"fmt"
	"strings"
)

// SourceUser marks entries owned by the user (preserved from the current
// hosts file) as opposed to entries originating from a managed list.
const SourceUser = "user"

// Entry is one logical hosts line: an IP address mapped to one or more
// hostnames, with an optional trailing comment.
type Entry struct {
	// IP is the textual IPv4/IPv6 literal of the line.
	IP string `json:"ip"`
	// Hostnames are the hostname aliases of the line. Never empty.
	Hostnames []string `json:"hostnames"`
	// Comment is the inline comment of the line, without the "#" marker.
	Comment string `json:"comment,omitempty"`
	// Source identifies the originating list, or SourceUser.
	Source string `json:"source"`
}

// Pair is a single (IP, hostname) mapping, the unit of deduplication,
// conflict detection and manifest tracking.
type Pair struct {
	IP       string
	Hostname string
}

// Pairs expands the entry into its (IP, hostname) pairs.
func (e Entry) Pairs() []Pair {
	pairs := make([]Pair, 0, len(e.Hostnames))
	for _, h := range e.Hostnames {
		pairs = append(pairs, Pair{IP: e.IP, Hostname: h})
	}
	return pairs
}

// String serializes the entry back into hosts-file line syntax. The IP
// column is left-padded to keep hostnames aligned for human readers.
func (e Entry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-15s %s", e.IP, strings.Join(e.Hostnames, " "))
	if e.Comment != "" {
		sb.WriteString(" # ")
		sb.WriteString(e.Comment)
	}
	return sb.String()
}
