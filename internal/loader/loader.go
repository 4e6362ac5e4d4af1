// Package loader reads form documents from files, an fs.FS, or HTTP.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/schema"
)

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 10 * time.Second

// Options configures a Loader.
type Options struct {
	// FileSystem serves fs sources. Nil disables them.
	FileSystem fs.FS
	// AllowHTTP enables URL sources.
	AllowHTTP bool
	// HTTPClient overrides the default client used for URL sources.
	HTTPClient *http.Client
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// Retries is the number of extra HTTP attempts after the first.
	Retries uint
	Logger  *zap.Logger
}

// Loader implements schema.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	retries   uint
	logger    *zap.Logger
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader.
func New(options Options) *Loader {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTP:
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		retries:   options.Retries,
		logger:    logger,
	}
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		err = errors.New("loader: unsupported source kind " + string(src.Kind()))
	}
	if err != nil {
		return schema.Document{}, err
	}

	return schema.NewDocument(src, data)
}
