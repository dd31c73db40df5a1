package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("LISTCORE_STORAGE_DRIVER", "fs")
	t.Setenv("LISTCORE_FS_PATH", filepath.Join(t.TempDir(), "state.json"))
	t.Setenv("LISTCORE_DARK_MODE", "")
	t.Setenv("COLORFGBG", "")
}

func exec(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunNoArgs(t *testing.T) {
	isolate(t)
	code, _, errOut := exec(t)
	if code != 2 || !strings.Contains(errOut, "usage:") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	isolate(t)
	code, _, errOut := exec(t, "frobnicate")
	if code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func TestRecordLifecycle(t *testing.T) {
	isolate(t)

	code, out, errOut := exec(t, "add", "-title", "Pay rent", "-priority", "high")
	if code != 0 {
		t.Fatalf("add: code=%d stderr=%q", code, errOut)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "added "))
	if id == "" {
		t.Fatalf("add output = %q", out)
	}

	code, out, _ = exec(t, "ls", "-search", "rent")
	if code != 0 || !strings.Contains(out, "Pay rent") {
		t.Fatalf("ls: code=%d out=%q", code, out)
	}

	code, out, errOut = exec(t, "done", "-id", id)
	if code != 0 || !strings.Contains(out, "is now done") {
		t.Fatalf("done: code=%d out=%q stderr=%q", code, out, errOut)
	}

	code, out, _ = exec(t, "ls", "-status", "done")
	if code != 0 || !strings.Contains(out, "Pay rent") {
		t.Fatalf("ls done: code=%d out=%q", code, out)
	}

	code, out, errOut = exec(t, "edit", "-id", id, "-title", "Pay rent and utilities")
	if code != 0 {
		t.Fatalf("edit: code=%d stderr=%q", code, errOut)
	}

	code, out, errOut = exec(t, "rm", "-id", id)
	if code != 0 || !strings.Contains(out, "removed") {
		t.Fatalf("rm: code=%d out=%q stderr=%q", code, out, errOut)
	}

	code, _, errOut = exec(t, "rm", "-id", id)
	if code != 1 || !strings.Contains(errOut, "no record") {
		t.Fatalf("second rm: code=%d stderr=%q", code, errOut)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	isolate(t)
	code, _, errOut := exec(t, "add", "-title", "   ")
	if code != 1 || !strings.Contains(errOut, "title") {
		t.Fatalf("code=%d stderr=%q", code, errOut)
	}
}

func TestThemeToggle(t *testing.T) {
	isolate(t)
	code, out, _ := exec(t, "theme")
	if code != 0 || strings.TrimSpace(out) != "light" {
		t.Fatalf("theme: code=%d out=%q", code, out)
	}
	code, out, _ = exec(t, "theme", "-toggle")
	if code != 0 || strings.TrimSpace(out) != "dark" {
		t.Fatalf("toggle: code=%d out=%q", code, out)
	}
	code, out, _ = exec(t, "theme")
	if code != 0 || strings.TrimSpace(out) != "dark" {
		t.Fatalf("persisted theme: code=%d out=%q", code, out)
	}
}

func TestExportToMemoryBlob(t *testing.T) {
	isolate(t)
	t.Setenv("LISTCORE_BLOB_DRIVER", "memory")
	if code, _, errOut := exec(t, "add", "-title", "Archive me"); code != 0 {
		t.Fatalf("add: stderr=%q", errOut)
	}
	code, out, errOut := exec(t, "export", "-key", "snapshots/test.json")
	if code != 0 || !strings.Contains(out, "exported snapshots/test.json") {
		t.Fatalf("export: code=%d out=%q stderr=%q", code, out, errOut)
	}
}
