package llm

import (
	"regexp"
	"strings"
)

// NoData fills the SIGINT and HIMINT sections of an untagged briefing.
const NoData = "NO DATA"

var sectionTag = regexp.MustCompile(`(?i)(OSINT|SIGINT|HIMINT):`)

// Sections is an intelligence briefing split by collection discipline.
type Sections struct {
	OSINT  string `json:"osint"`
	SIGINT string `json:"sigint"`
	HIMINT string `json:"himint"`
}

// ParseSections splits a briefing on its OSINT:, SIGINT: and HIMINT: tags
// (case-insensitive). Each tag takes the trimmed text up to the next tag; a
// repeated tag overwrites the earlier one and text before the first tag is
// dropped. A briefing with no tags at all is returned whole as OSINT, with
// NoData for the other two.
func ParseSections(text string) Sections {
	tags := sectionTag.FindAllStringSubmatchIndex(text, -1)
	if len(tags) == 0 {
		return Sections{OSINT: text, SIGINT: NoData, HIMINT: NoData}
	}

	var s Sections
	for i, m := range tags {
		end := len(text)
		if i+1 < len(tags) {
			end = tags[i+1][0]
		}
		content := strings.TrimSpace(text[m[1]:end])

		switch strings.ToUpper(text[m[2]:m[3]]) {
		case "OSINT":
			s.OSINT = content
		case "SIGINT":
			s.SIGINT = content
		case "HIMINT":
			s.HIMINT = content
		}
	}
	return s
}
