package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in       string
		fallback time.Duration
		want     time.Duration
	}{
		{"30s", time.Minute, 30 * time.Second},
		{"500ms", time.Second, 500 * time.Millisecond},
		{"", time.Minute, time.Minute},
		{"garbage", 2 * time.Second, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in, tt.fallback); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.atp")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	// Destination directory does not exist yet.
	dst := filepath.Join(dir, "nested", "copy.atp")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("copy content = %q", got)
	}

	// Copying again replaces the existing file.
	if err := os.WriteFile(src, []byte("updated"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile replace: %v", err)
	}
	got, _ = os.ReadFile(dst)
	if string(got) != "updated" {
		t.Errorf("replaced content = %q", got)
	}
}

func TestMoveReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "result.pl4")
	dst := filepath.Join(dir, "out", "result.pl4")
	if err := os.WriteFile(src, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveReplace(src, dst); err != nil {
		t.Fatalf("MoveReplace: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("destination content = %q, want replacement", got)
	}
}

func TestRemoveDirResilient(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workdir")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "f"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	RemoveDirResilient(dir)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory still exists")
	}

	// Removing a missing directory is silently fine.
	RemoveDirResilient(dir)
}
