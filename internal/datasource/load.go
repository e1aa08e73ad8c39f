package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
)

// maxBodyBytes caps how much of a response or file is read.
const maxBodyBytes = 64 << 20

// Client is the HTTP client used for URL sources. It has no timeout of its
// own; callers bound the request through the context.
var Client = http.DefaultClient

// Load reads src once and decodes it into a dataset tree. Transport
// failures, non-2xx statuses and malformed documents are errors; nothing is
// retried.
func Load(ctx context.Context, src Source) (*model.Datum, error) {
	typ, err := src.Type()
	if err != nil {
		return nil, err
	}
	defer metrics.Timer(metrics.DataLoad)()
	start := time.Now()
	defer func() { debug.LogTiming("load "+src.String(), time.Since(start)) }()

	switch typ {
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src.Path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.LoadTree(ctx)
	case SourceTypeHTTP:
		body, err := fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return decode(body, src)
	default:
		body, err := readFile(src.Path)
		if err != nil {
			return nil, err
		}
		return decode(body, src)
	}
}

func fetch(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", src.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	resp, err := Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", src.URL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.URL, err)
	}
	debug.Log("fetched %d bytes from %s", len(body), src.URL)
	return body, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

func decode(body []byte, src Source) (*model.Datum, error) {
	defer metrics.Timer(metrics.JSONParsing)()
	root, err := model.ParseDatum(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return root, nil
}
