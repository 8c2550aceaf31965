package task

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

// FilenameMatch is one hit from a filename-search task.
type FilenameMatch struct {
	Path  string
	Entry model.LightEntry
}

// FilenameSearchBatch is the single batch of matches a filename search
// yields once it finishes walking the subtree.
type FilenameSearchBatch struct {
	Matches []FilenameMatch
}

// filenameMatcher abstracts the three pattern kinds spec.md §4.4 names:
// plain substring, shell-style wildcard (`*`/`?`), and anchored regex-like
// matching.
type filenameMatcher func(name string) bool

// newFilenameMatcher builds a matcher for pattern: full-name wildcard
// semantics when `*` or `?` appear (always matched end to end, standard
// glob behavior), otherwise a case-insensitive substring match — except
// that a leading `^` or trailing `$` on an otherwise wildcard-free pattern
// is honored as an explicit anchor (prefix-only or suffix-only match)
// rather than folded into the substring search.
func newFilenameMatcher(pattern string) filenameMatcher {
	if strings.ContainsAny(pattern, "*?") {
		re := wildcardToRegexp(pattern)
		return func(name string) bool { return re.MatchString(name) }
	}

	anchorStart := strings.HasPrefix(pattern, "^")
	anchorEnd := strings.HasSuffix(pattern, "$")
	if anchorStart || anchorEnd {
		core := strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$")
		re := anchoredSubstringRegexp(core, anchorStart, anchorEnd)
		return func(name string) bool { return re.MatchString(name) }
	}

	lower := strings.ToLower(pattern)
	return func(name string) bool { return strings.Contains(strings.ToLower(name), lower) }
}

// anchoredSubstringRegexp builds a case-insensitive regexp for a
// wildcard-free pattern with an explicit `^`/`$` anchor on one or both
// ends; the unanchored end (if any) is left free to match anywhere.
func anchoredSubstringRegexp(core string, anchorStart, anchorEnd bool) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)")
	if anchorStart {
		b.WriteString("^")
	}
	b.WriteString(regexp.QuoteMeta(core))
	if anchorEnd {
		b.WriteString("$")
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return regexp.MustCompile(`\A\z`)
	}
	return re
}

// wildcardToRegexp translates a shell-style `*`/`?` pattern into an
// anchored, case-insensitive regexp.
func wildcardToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		// Fall back to a literal, never-matching pattern rather than
		// propagating a compile error for user-typed search input.
		return regexp.MustCompile(`\A\z`)
	}
	return re
}

// FilenameSearch walks root recursively, matching pattern against each
// entry's base name, and emits a single Stream batch of matches followed by
// Complete. Honors cancellation between directory visits.
func FilenameSearch(id TaskId, root, pattern string, cancel *CancelToken, out chan<- TaskResult) {
	matcher := newFilenameMatcher(pattern)
	var matches []FilenameMatch

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if cancel != nil && cancel.IsCancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher(name) {
			dir := filepath.Dir(path)
			light := model.NewLightEntry(dir, name, d.IsDir(), d.Type()&os.ModeSymlink != 0)
			matches = append(matches, FilenameMatch{Path: path, Entry: light})
		}
		return nil
	})

	if cancel != nil && cancel.IsCancelled() {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
		return
	}
	if walkErr != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: walkErr.Error()}})
		return
	}

	out <- StreamResult(Stream{TaskId: id, Payload: FilenameSearchBatch{Matches: matches}})
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}
