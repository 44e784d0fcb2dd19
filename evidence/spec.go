package evidence

import (
	"os"
	"regexp"
	"strings"

	"github.com/randalmurphal/autoflow"
)

// headingPattern matches markdown ATX headings.
var headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// placeholderPattern marks sections still to be written.
var placeholderPattern = regexp.MustCompile(`(?i)\b(TODO|TBD|FIXME|XXX)\b`)

// InspectDocument derives specification evidence from a markdown document.
//
// A document exists when it has any content. It has requirements and
// acceptance criteria when headings naming them are present with text
// beneath them. It is complete when it exists, every section has content,
// and no placeholder markers (TODO, TBD, FIXME) remain.
func InspectDocument(content string) *autoflow.SpecificationEvidence {
	ev := &autoflow.SpecificationEvidence{}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ev
	}
	ev.Exists = true

	sections := splitSections(content)
	ev.HasRequirements = sectionHasContent(sections, "requirement")
	ev.HasAcceptanceCriteria = sectionHasContent(sections, "acceptance criteria")

	allFilled := true
	for _, body := range sections {
		if strings.TrimSpace(body) == "" {
			allFilled = false
			break
		}
	}
	ev.IsComplete = allFilled &&
		ev.HasRequirements &&
		ev.HasAcceptanceCriteria &&
		!placeholderPattern.MatchString(content)

	return ev
}

// LoadDocument reads a specification file and inspects it. A missing file
// is evidence that the specification does not exist, not an error.
func LoadDocument(path string) (*autoflow.SpecificationEvidence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &autoflow.SpecificationEvidence{}, nil
		}
		return nil, err
	}
	return InspectDocument(string(data)), nil
}

// splitSections maps lowercase heading text to the body beneath it.
func splitSections(content string) map[string]string {
	sections := make(map[string]string)

	matches := headingPattern.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		heading := strings.ToLower(strings.TrimSpace(content[m[2]:m[3]]))
		bodyStart := m[1]
		bodyEnd := len(content)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		sections[heading] = content[bodyStart:bodyEnd]
	}
	return sections
}

// sectionHasContent reports whether a heading containing the keyword exists
// and has non-empty body text.
func sectionHasContent(sections map[string]string, keyword string) bool {
	for heading, body := range sections {
		if strings.Contains(heading, keyword) && strings.TrimSpace(body) != "" {
			return true
		}
	}
	return false
}
