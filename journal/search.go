package journal

import "strings"

// Match is a search hit: the run it was found in plus the matching
// entries.
type Match struct {
	Meta    Meta    `json:"meta"`
	Entries []Entry `json:"entries"`
}

// Search scans stored journals for entries whose text contains the query,
// case-insensitively. The filter narrows which runs are scanned.
func (s *FileStore) Search(query string, filter ListFilter) ([]Match, error) {
	metas, err := s.List(filter)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []Match
	for _, meta := range metas {
		journal, err := s.Load(meta.RunID)
		if err != nil {
			continue
		}

		var hits []Entry
		for _, entry := range journal.Entries {
			if entryMatches(entry, needle) {
				hits = append(hits, entry)
			}
		}
		if len(hits) > 0 {
			matches = append(matches, Match{Meta: meta, Entries: hits})
		}
	}
	return matches, nil
}

func entryMatches(entry Entry, needle string) bool {
	switch entry.Kind {
	case EntryTurn:
		if entry.Turn == nil {
			return false
		}
		return strings.Contains(strings.ToLower(entry.Turn.Content), needle) ||
			strings.Contains(strings.ToLower(entry.Turn.Tool), needle)
	case EntryStep:
		if entry.Step == nil {
			return false
		}
		return strings.Contains(strings.ToLower(entry.Step.Name), needle) ||
			strings.Contains(strings.ToLower(entry.Step.Error), needle)
	case EntryTransition:
		if entry.Transition == nil {
			return false
		}
		return strings.Contains(strings.ToLower(entry.Transition.From), needle) ||
			strings.Contains(strings.ToLower(entry.Transition.To), needle) ||
			strings.Contains(strings.ToLower(entry.Transition.Reason), needle)
	}
	return false
}
