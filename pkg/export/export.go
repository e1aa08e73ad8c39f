package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/packzoom/pkg/model"

	"golang.org/x/sync/errgroup"
)

// maxParallelExports bounds how many files are written at once.
const maxParallelExports = 4

// Kind is an export target type, chosen by file extension.
type Kind string

const (
	KindSnapshot Kind = "snapshot" // .svg, .png
	KindSQLite   Kind = "sqlite"   // .sqlite, .sqlite3, .db
	KindJSON     Kind = "json"     // .json
)

// KindFor maps an output path to its export kind.
func KindFor(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg", ".png":
		return KindSnapshot, nil
	case ".sqlite", ".sqlite3", ".db":
		return KindSQLite, nil
	case ".json":
		return KindJSON, nil
	default:
		return "", fmt.Errorf("cannot export %q: unknown extension (want .svg, .png, .sqlite, .db or .json)", path)
	}
}

// Options is shared by every file ExportAll writes.
type Options struct {
	Snapshot SnapshotOptions // view to draw; Path and Format are set per file
	Title    string
	Version  string
}

// ExportAll writes every path concurrently. All paths are validated before
// anything is written; the first failure cancels the rest.
func ExportAll(ctx context.Context, opts Options, paths ...string) error {
	h := opts.Snapshot.Hierarchy
	if h == nil || h.Len() == 0 {
		return model.ErrEmptyTree
	}
	kinds := make([]Kind, len(paths))
	for i, p := range paths {
		k, err := KindFor(p)
		if err != nil {
			return err
		}
		kinds[i] = k
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelExports)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			switch kinds[i] {
			case KindSnapshot:
				so := opts.Snapshot
				so.Path, so.Format = p, ""
				if so.Title == "" {
					so.Title = opts.Title
				}
				err = SaveSnapshot(so)
			case KindSQLite:
				e := NewSQLiteExporter(h)
				e.Title = opts.Title
				if opts.Version != "" {
					e.Version = opts.Version
				}
				err = e.Export(p)
			case KindJSON:
				err = ExportJSON(p, h, opts.Title, opts.Version)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}
