// Package writer persists a merge result to the target hosts file with a
// mandatory backup and an atomic replace.
package writer

import (
	"bytes"
	"fmt"

	"github.com/valyala/fasttemplate"

	"github.com/maksimkurb/hostsfilter/internal/hostsfile"
	"github.com/maksimkurb/hostsfilter/internal/merge"
)

const (
	bannerTemplate = "##### {{section}} ({{app}}) #####"

	TMPL_SECTION = "section"
	TMPL_APP     = "app"

	appName = "hostsfilter"

	sectionPreserved = "SYSTEM ENTRIES - PRESERVED"
	sectionManaged   = "BLOCKLIST ENTRIES - GENERATED"
)

func renderBanner(section string) string {
	t := fasttemplate.New(bannerTemplate, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		TMPL_SECTION: section,
		TMPL_APP:     appName,
	})
}

// Render serializes a merge result into hosts-file syntax. Preserved user
// entries come first under their own banner, then managed entries grouped
// by source with per-source markers, so a human auditing the file can tell
// ownership at a glance. The output is a pure function of the result: no
// timestamps, so rendering the same result twice is byte-identical.
func Render(result *merge.Result) []byte {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, renderBanner(sectionPreserved))
	for _, entry := range result.Entries {
		if entry.Source != hostsfile.SourceUser {
			continue
		}
		fmt.Fprintln(&buf, entry.String())
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, renderBanner(sectionManaged))

	currentSource := ""
	for _, entry := range result.Entries {
		if entry.Source == hostsfile.SourceUser {
			continue
		}
		if entry.Source != currentSource {
			if currentSource != "" {
				fmt.Fprintln(&buf)
			}
			currentSource = entry.Source
			fmt.Fprintf(&buf, "# Source: %s\n", currentSource)
		}
		fmt.Fprintln(&buf, entry.String())
	}

	return buf.Bytes()
}
