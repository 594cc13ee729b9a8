package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocrop/internal/cropper"
	"gocrop/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "gocrop Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportIncludesState(t *testing.T) {
	root := t.TempDir()
	st := cropper.State{Rotation: 7.5, Base: cropper.Base180}
	d := &Dump{Root: root, Source: "photo.jpg", State: &st}

	path, err := writeReport(d, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.Contains(path, filepath.Join(root, storage.StoreDirName)) {
		t.Fatalf("expected crash report under %s dir, got %s", storage.StoreDirName, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Source: photo.jpg") {
		t.Fatalf("source path missing: %s", s)
	}
	if !strings.Contains(s, `"rotation"`) {
		t.Fatalf("state JSON missing: %s", s)
	}
}
