package hostsfile

import (
	"bufio"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// LineClass classifies a single line of hosts-file input.
type LineClass int

const (
	// LineEntry is a well-formed "ip hostname..." line.
	LineEntry LineClass = iota
	// LineBlank is an empty or whitespace-only line.
	LineBlank
	// LineComment is a line starting with the "#" marker.
	LineComment
	// LineMalformed is a non-comment line that could not be parsed.
	LineMalformed
)

// ParseLine parses one raw line into an Entry or classifies it as
// blank/comment/malformed. A line with fewer than two fields, an invalid IP
// token or no valid hostname token is malformed. Malformed lines are
// skipped and counted by the caller, never fatal.
func ParseLine(line, source string) (Entry, LineClass) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Entry{}, LineBlank
	}
	if strings.HasPrefix(trimmed, "#") {
		return Entry{}, LineComment
	}

	// Split off the inline comment, if any.
	var comment string
	if idx := strings.Index(trimmed, "#"); idx >= 0 {
		comment = strings.TrimSpace(trimmed[idx+1:])
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	if trimmed == "" {
		return Entry{}, LineComment
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return Entry{}, LineMalformed
	}

	ip := fields[0]
	if net.ParseIP(ip) == nil {
		return Entry{}, LineMalformed
	}

	hostnames := make([]string, 0, len(fields)-1)
	for _, name := range fields[1:] {
		if _, ok := dns.IsDomainName(name); !ok {
			continue
		}
		hostnames = append(hostnames, name)
	}
	if len(hostnames) == 0 {
		return Entry{}, LineMalformed
	}

	return Entry{
		IP:        ip,
		Hostnames: hostnames,
		Comment:   comment,
		Source:    source,
	}, LineEntry
}

// Parse parses a whole hosts-formatted document. Returns the well-formed
// entries in file order and the number of malformed lines that were skipped.
func Parse(content, source string) ([]Entry, int) {
	var entries []Entry
	skipped := 0

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, class := ParseLine(scanner.Text(), source)
		switch class {
		case LineEntry:
			entries = append(entries, entry)
		case LineMalformed:
			skipped++
		}
	}

	return entries, skipped
}
