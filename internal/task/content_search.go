package task

import (
	"bufio"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
)

// ContentMatch is one matched line within one file, as recovered from the
// heading-format parser below.
type ContentMatch struct {
	Path string
	Line int
}

// RawSearchResult is a completed content search: the raw (ANSI-preserved)
// output lines, the matches the heading parser recovered from them, and the
// directory the search was rooted at.
type RawSearchResult struct {
	Lines         []string
	ParsedLines   []ContentMatch
	TotalMatches  int
	BaseDirectory string
}

// headingParserState is the stateful filename -> line -> content parser
// from spec.md §4.4, ported from
// original_source/fsm-core/src/tasks/search_task.rs's heading-output
// handling.
//
// States: Initial (currentFile == ""), InFile(path) (currentFile != "").
// Transitions:
//   - blank line, or a "--" separator: no state change, no match.
//   - a line of digits followed by '-' or '+' (a ripgrep context line, e.g.
//     "63-" or "42+"): no state change, no match.
//   - any other line without a leading "N:" match form: a heading — enters
//     InFile(absolute path).
//   - "N:content" while InFile(p): yields a match (p, N).
type headingParserState struct {
	currentFile string
	baseDir     string
}

// feed processes one output line and returns a match if the line was a
// "N:content" line within a known file context.
func (s *headingParserState) feed(line string) (ContentMatch, bool) {
	if line == "" || line == "--" {
		return ContentMatch{}, false
	}
	if n, isContext := leadingLineNumber(line, '-', '+'); isContext {
		_ = n
		return ContentMatch{}, false
	}
	if n, rest, isMatchLine := leadingMatchNumber(line); isMatchLine {
		_ = rest
		if s.currentFile == "" {
			return ContentMatch{}, false
		}
		return ContentMatch{Path: s.currentFile, Line: n}, true
	}
	// Heading line: the bare (possibly relative) path to a new file context.
	path := line
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	s.currentFile = path
	return ContentMatch{}, false
}

// leadingLineNumber reports whether line is entirely "<digits><sep>..." for
// sep in seps, i.e. a ripgrep context line such as "63-" or "42+".
func leadingLineNumber(line string, seps ...byte) (int, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return 0, false
	}
	for _, sep := range seps {
		if line[i] == sep {
			n, err := strconv.Atoi(line[:i])
			return n, err == nil
		}
	}
	return 0, false
}

// leadingMatchNumber reports whether line is "<digits>:<rest>", ripgrep's
// match-line form.
func leadingMatchNumber(line string) (int, string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != ':' {
		return 0, "", false
	}
	n, err := strconv.Atoi(line[:i])
	if err != nil {
		return 0, "", false
	}
	return n, line[i+1:], true
}

// ContentSearch spawns an external line matcher (ripgrep, by convention)
// under a pseudo-terminal so it preserves `--color=always` output even
// though stdout is not a real tty, streams its stdout line by line through
// the heading parser, and emits a single Stream(RawSearchResult) followed
// by Complete. Honors cancellation by killing the subprocess.
func ContentSearch(id TaskId, baseDir, pattern string, extraArgs []string, cancel *CancelToken, out chan<- TaskResult) {
	args := append([]string{"--heading", "--line-number", "--color=always"}, extraArgs...)
	args = append(args, pattern, baseDir)
	cmd := exec.Command("rg", args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
		return
	}
	defer ptmx.Close()

	done := make(chan struct{})
	defer close(done)
	if cancel != nil {
		go watchCancellation(cancel, done, cmd)
	}

	parser := &headingParserState{baseDir: baseDir}
	var lines []string
	var matches []ContentMatch

	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		lines = append(lines, raw)
		plain := stripANSI(raw)
		if m, ok := parser.feed(plain); ok {
			matches = append(matches, m)
		}
	}

	waitErr := cmd.Wait()
	if cancel != nil && cancel.IsCancelled() {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
		return
	}
	// Exit code convention: 0 = matches found, 1 = no matches (not an
	// error), >1 = a real error.
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		if code := exitErr.ExitCode(); code > 1 {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: exitErr.Error()}})
			return
		}
	} else if waitErr != nil && waitErr != io.EOF {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: waitErr.Error()}})
		return
	}

	result := RawSearchResult{
		Lines:         lines,
		ParsedLines:   matches,
		TotalMatches:  len(matches),
		BaseDirectory: baseDir,
	}
	out <- StreamResult(Stream{TaskId: id, Payload: result})
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}

// watchCancellation polls the cancellation token at a short interval and
// kills cmd's process the moment it is set, stopping as soon as done is
// closed by the caller (the search finished on its own).
func watchCancellation(cancel *CancelToken, done <-chan struct{}, cmd *exec.Cmd) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if cancel.IsCancelled() {
				_ = cmd.Process.Kill()
				return
			}
		}
	}
}

// stripANSI removes SGR/CSI escape sequences so the heading parser's
// structural checks (digit runs, colons) operate on plain text; the raw,
// color-coded line is still preserved verbatim in RawSearchResult.Lines for
// display.
func stripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && !((s[j] >= 'a' && s[j] <= 'z') || (s[j] >= 'A' && s[j] <= 'Z')) {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
