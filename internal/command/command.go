// Package command implements the colon-style command line from spec.md §3:
// a small fixed grammar (cd, mkdir, touch, reload, pwd, ls, help, find,
// clear, quit/q) parsed and validated independently of the action dispatch
// pipeline, so it can be driven directly from tests without a live pane.
package command

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/consistent-milk12/fsm-sub001/internal/errs"
)

// Outcome reports what Execute did; the caller (the command sub-dispatcher
// in internal/action) applies it to pane/UI state.
type Outcome struct {
	Message      string
	Quit         bool
	ChangedDir   string // set to the new cwd when cd succeeds
	ShouldReload bool   // mkdir/touch/reload: caller should re-scan cwd
	ShowHelp     bool
	ClearNotice  bool
	FindPattern  string // set by "find <pattern>"; caller runs the actual search
}

// parseLine splits a command line into its command word and argument list.
// Shell-like whitespace splitting only; no quoting support, matching the
// grammar's "simple shell-like parsing" scope.
func parseLine(line string) (string, []string, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", nil, errs.New(errs.KindBadArguments, "empty command")
	}
	fields := strings.Fields(trimmed)
	return fields[0], fields[1:], nil
}

// validatePath resolves path against cwd, rejecting path traversal and any
// absolute path outside /tmp.
func validatePath(cwd, path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", errs.InvalidPath(path, "path traversal is not allowed")
	}
	if filepath.IsAbs(path) && !strings.HasPrefix(path, "/tmp") {
		return "", errs.InvalidPath(path, "unsafe absolute path outside /tmp")
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(cwd, path), nil
}

// Execute parses and runs one command line against cwd. entryCount is the
// active pane's current entry count, used only by "ls"; callers with no
// pane handy may pass 0.
func Execute(cwd, line string, entryCount int) (Outcome, error) {
	cmd, args, err := parseLine(line)
	if err != nil {
		return Outcome{}, err
	}

	switch cmd {
	case "cd":
		return execCd(cwd, args)
	case "mkdir":
		return execMkdir(cwd, args)
	case "touch":
		return execTouch(cwd, args)
	case "reload":
		return Outcome{Message: "directory reloaded", ShouldReload: true}, nil
	case "pwd":
		return Outcome{Message: "current directory: " + cwd}, nil
	case "ls":
		return Outcome{Message: plural(entryCount)}, nil
	case "help":
		return Outcome{ShowHelp: true}, nil
	case "find":
		return execFind(args)
	case "clear":
		return Outcome{ClearNotice: true}, nil
	case "quit", "q":
		return Outcome{Quit: true}, nil
	default:
		return Outcome{}, errs.New(errs.KindUnknownVerb, "unknown command: "+cmd)
	}
}

func execCd(cwd string, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, errs.New(errs.KindBadArguments, "usage: cd <path>")
	}
	target, err := validatePath(cwd, args[0])
	if err != nil {
		return Outcome{}, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return Outcome{}, errs.NotFound(target)
	}
	if !info.IsDir() {
		return Outcome{}, errs.NotADirectory(target)
	}
	return Outcome{Message: "directory changed", ChangedDir: target}, nil
}

func execMkdir(cwd string, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, errs.New(errs.KindBadArguments, "usage: mkdir <name>")
	}
	target, err := validatePath(cwd, args[0])
	if err != nil {
		return Outcome{}, err
	}
	if err := os.Mkdir(target, 0o755); err != nil {
		return Outcome{}, errs.Wrap(errs.KindIoError, "create directory: "+args[0], err)
	}
	return Outcome{Message: "created directory: " + args[0], ShouldReload: true}, nil
}

func execTouch(cwd string, args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, errs.New(errs.KindBadArguments, "usage: touch <filename>")
	}
	target, err := validatePath(cwd, args[0])
	if err != nil {
		return Outcome{}, err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Outcome{}, errs.Wrap(errs.KindIoError, "create file: "+args[0], err)
	}
	f.Close()
	return Outcome{Message: "created file: " + args[0], ShouldReload: true}, nil
}

func execFind(args []string) (Outcome, error) {
	if len(args) == 0 {
		return Outcome{}, errs.New(errs.KindBadArguments, "usage: find <pattern>")
	}
	return Outcome{FindPattern: args[0]}, nil
}

func plural(n int) string {
	if n == 1 {
		return "directory contains 1 entry"
	}
	return "directory contains " + strconv.Itoa(n) + " entries"
}
