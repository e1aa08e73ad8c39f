package datasource

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/packzoom/pkg/model"
)

const sampleJSON = `{"name":"root","children":[
	{"name":"A","children":[{"name":"a1","size":10,"slug":"Alpha"},{"name":"a2","size":"20"}]},
	{"name":"B","size":5}
]}`

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Source
	}{
		{"https://example.com/data.json", Source{URL: "https://example.com/data.json"}},
		{"http://localhost:8080/", Source{URL: "http://localhost:8080/"}},
		{"data.json", Source{Path: "data.json"}},
		{"/tmp/layout.sqlite", Source{Path: "/tmp/layout.sqlite"}},
	}
	for _, tt := range tests {
		got := Parse(tt.in)
		if got.URL != tt.want.URL || got.Path != tt.want.Path {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSourceType(t *testing.T) {
	if _, err := (Source{}).Type(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("empty source: err = %v, want ErrNoSource", err)
	}
	cases := map[string]SourceType{
		"a.json":    SourceTypeFile,
		"a":         SourceTypeFile,
		"a.sqlite":  SourceTypeSQLite,
		"a.DB":      SourceTypeSQLite,
		"a.sqlite3": SourceTypeSQLite,
	}
	for path, want := range cases {
		if got, _ := (Source{Path: path}).Type(); got != want {
			t.Errorf("Type(%q) = %s, want %s", path, got, want)
		}
	}
	if got, _ := (Source{URL: "http://x", Path: "a.json"}).Type(); got != SourceTypeHTTP {
		t.Fatalf("URL should win over path, got %s", got)
	}
}

func TestSourceString_HidesHeaders(t *testing.T) {
	s := Source{URL: "http://x/y", Headers: map[string]string{"secret-key": "hunter2"}}
	if strings.Contains(s.String(), "hunter2") {
		t.Fatalf("String leaks header value: %s", s)
	}
}

func TestLoad_HTTP(t *testing.T) {
	var gotKey string
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotKey = r.Header.Get("secret-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	root, err := Load(context.Background(), Source{URL: srv.URL, Headers: map[string]string{"secret-key": "s3"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
	if gotKey != "s3" {
		t.Fatalf("secret-key header = %q", gotKey)
	}
	if root.Name != "root" || len(root.Children) != 2 {
		t.Fatalf("unexpected tree: %+v", root)
	}
	if a2 := root.Children[0].Children[1]; a2.Size != 20 {
		t.Fatalf("a2 size = %v, want 20 from a numeric string", a2.Size)
	}
}

func TestLoad_HTTPErrorsAreNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), Source{URL: srv.URL}); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "root", "children": [`))
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), Source{URL: srv.URL}); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, Source{URL: srv.URL}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := Load(context.Background(), Source{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if root.Children[0].Children[0].Slug != "Alpha" {
		t.Fatalf("slug not decoded: %+v", root.Children[0].Children[0])
	}

	if _, err := Load(context.Background(), Source{Path: filepath.Join(t.TempDir(), "missing.json")}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: err = %v", err)
	}
}

func TestLoad_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE nodes (id INTEGER PRIMARY KEY, parent INTEGER, name TEXT NOT NULL, slug TEXT, datum_id TEXT, size REAL)`,
		`INSERT INTO nodes VALUES (0, NULL, 'root', NULL, NULL, NULL)`,
		`INSERT INTO nodes VALUES (1, 0, 'A', NULL, NULL, NULL)`,
		`INSERT INTO nodes VALUES (2, 1, 'a2', NULL, 'x2', 20)`,
		`INSERT INTO nodes VALUES (3, 1, 'a1', 'Alpha', NULL, 10)`,
		`INSERT INTO nodes VALUES (4, 0, 'B', NULL, NULL, 5)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	db.Close()

	root, err := Load(context.Background(), Source{Path: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h, err := model.Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := h.Root().Value; got != 35 {
		t.Fatalf("root value = %v, want 35", got)
	}
	a1 := h.Find("A/a1")
	if a1 == model.NoNode || h.Nodes[a1].Data.Slug != "Alpha" {
		t.Fatal("a1 not restored with its slug")
	}
	if id := h.Nodes[h.Find("A/a2")].Data.ID; id != "x2" {
		t.Fatalf("a2 datum id = %q", id)
	}
}

func TestLoad_SQLiteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE nodes (id INTEGER PRIMARY KEY, parent INTEGER, name TEXT NOT NULL, slug TEXT, datum_id TEXT, size REAL)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := Load(context.Background(), Source{Path: path}); !errors.Is(err, model.ErrEmptyTree) {
		t.Fatalf("err = %v, want ErrEmptyTree", err)
	}
}
