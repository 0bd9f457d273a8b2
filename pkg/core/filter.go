package core

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter keeps the entries whose title, body or any tag contains query,
// ignoring case. A blank query keeps everything. The input is not modified.
func Filter[T Record](entries []Entry[T], query string) []Entry[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}

	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		if matches(e.Record, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches[T Record](rec T, lowered string) bool {
	for _, field := range rec.SearchFields() {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	return false
}

// FilterByTag keeps the entries carrying tag exactly.
func FilterByTag[T Record](entries []Entry[T], tag string) []Entry[T] {
	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		for _, t := range e.Record.RecordTags() {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterByTagPattern keeps the entries with at least one tag matching the
// glob pattern (e.g. "sci*" or "lore/**").
func FilterByTagPattern[T Record](entries []Entry[T], pattern string) ([]Entry[T], error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, New(KindValidation, "filter", fmt.Sprintf("invalid tag pattern %q", pattern))
	}

	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		for _, t := range e.Record.RecordTags() {
			ok, err := doublestar.Match(pattern, t)
			if err != nil {
				return nil, Wrap(KindValidation, "filter", "tag pattern", err)
			}
			if ok {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// AllTags returns the distinct tags of records in first-seen order.
func AllTags[T Record](records []T) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, t := range r.RecordTags() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}
