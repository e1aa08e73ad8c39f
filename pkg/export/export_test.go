package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKindFor(t *testing.T) {
	cases := map[string]Kind{
		"a.svg":     KindSnapshot,
		"a.PNG":     KindSnapshot,
		"a.sqlite":  KindSQLite,
		"a.sqlite3": KindSQLite,
		"a.db":      KindSQLite,
		"a.json":    KindJSON,
	}
	for path, want := range cases {
		got, err := KindFor(path)
		if err != nil || got != want {
			t.Errorf("KindFor(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := KindFor("a.txt"); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestExportAll(t *testing.T) {
	h := packedSample(t)
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "v.svg"),
		filepath.Join(dir, "v.png"),
		filepath.Join(dir, "v.sqlite"),
		filepath.Join(dir, "v.json"),
	}
	opts := Options{Snapshot: SnapshotOptions{Hierarchy: h}, Title: "sample", Version: "test"}
	if err := ExportAll(context.Background(), opts, paths...); err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
}

func TestExportAll_ValidatesBeforeWriting(t *testing.T) {
	h := packedSample(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "v.svg")
	err := ExportAll(context.Background(), Options{Snapshot: SnapshotOptions{Hierarchy: h}}, good, filepath.Join(dir, "v.bmp"))
	if err == nil {
		t.Fatal("expected error for unknown extension")
	}
	if _, err := os.Stat(good); !os.IsNotExist(err) {
		t.Fatal("nothing should be written when a path is invalid")
	}
}

func TestExportAll_CanceledContext(t *testing.T) {
	h := packedSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ExportAll(ctx, Options{Snapshot: SnapshotOptions{Hierarchy: h}}, filepath.Join(t.TempDir(), "v.svg"))
	if err == nil {
		t.Fatal("expected context error")
	}
}
