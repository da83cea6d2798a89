package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/goliatone/go-formcond/pkg/jsonschema"
)

// maxBodyBytes caps HTTP responses; the resolver applies its own, smaller,
// per-document limit afterwards.
const maxBodyBytes = 32 << 20

// Loader reads schema documents from disk, an fs.FS or HTTP depending on the
// source kind.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ jsonschema.Loader = (*Loader)(nil)

// New builds a Loader. HTTP sources fail unless options carry a client or
// enable the fallback client.
func New(options jsonschema.LoaderOptions) *Loader {
	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: options.RequestTimeout}
	}
	return &Loader{files: options.FileSystem, client: client, timeout: options.RequestTimeout}
}

func (l *Loader) Load(ctx context.Context, src jsonschema.Source) (jsonschema.Document, error) {
	if src == nil {
		return jsonschema.Document{}, errors.New("loader: source is nil")
	}
	if src.Location() == "" {
		return jsonschema.Document{}, errors.New("loader: source location is empty")
	}
	if err := ctx.Err(); err != nil {
		return jsonschema.Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case jsonschema.SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case jsonschema.SourceKindFS:
		if l.files == nil {
			return jsonschema.Document{}, errors.New("loader: no file system configured")
		}
		data, err = fs.ReadFile(l.files, src.Location())
	case jsonschema.SourceKindURL:
		data, err = l.fetch(ctx, src.Location())
	default:
		return jsonschema.Document{}, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return jsonschema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return jsonschema.NewDocument(src, data)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if l.client == nil {
		return nil, errors.New("http support disabled")
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
