package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodForest = `modules:
  - name: Base
    declarations:
      - {kind: const, name: N, type: int}
      - {kind: typedef, name: T, type: {kind: set, elem: int}}
      - {kind: var, name: v, type: T}
  - name: Main
    declarations:
      - {kind: instance, name: I, of: Base, overrides: [{param: N, expr: 3}]}
`

const unresolvedForest = `modules:
  - name: Main
    declarations:
      - {kind: import, module: Nowhere, name: x}
`

const brokenForest = `modules:
  - name: A
    declarations:
      - {kind: def, name: f, expr: ghost}
  - name: B
    declarations:
      - {kind: instance, name: I, of: A}
`

func writeForest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Execute(append([]string{"--color", "never"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExecuteExitCodes(t *testing.T) {
	good := writeForest(t, "good.yaml", goodForest)
	unresolved := writeForest(t, "unresolved.yaml", unresolvedForest)
	broken := writeForest(t, "broken.yaml", brokenForest)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"collect", []string{"collect", good}, ExitOK, "module Base", ""},
		{"resolve", []string{"resolve", good}, ExitOK, "I::v", ""},
		{"flatten", []string{"flatten", good}, ExitOK, "var I::v: Set[int]", ""},
		{"flatten keeps aliases", []string{"flatten", "--no-inline", good}, ExitOK, "var I::v: I::T", ""},
		{"builtins", []string{"builtins"}, ExitOK, "iadd", ""},
		{"unresolved import", []string{"resolve", unresolved}, ExitFailure, "", "[L001] module Nowhere not found"},
		{"unresolved location", []string{"resolve", unresolved}, ExitFailure, "", "unresolved.yaml:4:9"},
		{"internal failure", []string{"flatten", broken}, ExitInternal, "", "internal error"},
		{"missing file", []string{"collect", filepath.Join(t.TempDir(), "none.yaml")}, ExitFailure, "", "error:"},
		{"no arguments", []string{"collect"}, ExitFailure, "", "requires at least 1 arg"},
		{"unknown command", []string{"compile"}, ExitFailure, "", "unknown command"},
		{"bad log level", []string{"--log-level", "loud", "builtins"}, ExitFailure, "", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout, tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestDiagnosticsReportedOnce(t *testing.T) {
	unresolved := writeForest(t, "unresolved.yaml", unresolvedForest)
	_, _, stderr := run("resolve", unresolved)
	if n := strings.Count(stderr, "Nowhere"); n != 1 {
		t.Errorf("diagnostic printed %d times:\n%s", n, stderr)
	}
}

func TestTablesCache(t *testing.T) {
	good := writeForest(t, "good.yaml", goodForest)
	cache := filepath.Join(t.TempDir(), "tables.db")
	args := []string{"--log-level", "info", "--cache", cache, "tables", good}

	code, first, stderr := run(args...)
	if code != ExitOK {
		t.Fatalf("first run: exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "cache store") {
		t.Errorf("first run did not store:\n%s", stderr)
	}
	if !strings.Contains(first, "MODULE") || !strings.Contains(first, "I::v") {
		t.Errorf("unexpected table output:\n%s", first)
	}

	code, second, stderr := run(args...)
	if code != ExitOK {
		t.Fatalf("second run: exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "cache hit") {
		t.Errorf("second run missed the cache:\n%s", stderr)
	}
	if first != second {
		t.Errorf("cached output differs:\nfirst:\n%s\nsecond:\n%s", first, second)
	}

	code, out, stderr := run("--cache", cache, "cache", "prune", "--older-than", "0s")
	if code != ExitOK {
		t.Fatalf("prune: exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, "removed") {
		t.Errorf("prune output = %q", out)
	}
}

func TestCachePruneNeedsCache(t *testing.T) {
	code, _, stderr := run("cache", "prune")
	if code != ExitFailure || !strings.Contains(stderr, "no cache configured") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if !useColor("always", &buf) {
		t.Error("always should color")
	}
	if useColor("never", &buf) {
		t.Error("never should not color")
	}
	if useColor("auto", &buf) {
		t.Error("auto should not color a buffer")
	}
}
