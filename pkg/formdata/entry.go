// Package formdata converts nested form data to and from the flat key/value
// encoding used by form submissions: "address--zip" for nested objects and
// "tasks[1]--title" for array elements.
package formdata

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultDelimiter separates nested object keys.
const DefaultDelimiter = "--"

// DefaultMaxIndex bounds array indexes accepted by Decode.
const DefaultMaxIndex = 1000

// DefaultMaxMemory is the multipart memory budget used by FromRequest.
const DefaultMaxMemory = 10 << 20

// Entry is one flat key/value pair. Values are always strings on the wire.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s=%s", e.Key, e.Value)
}

// Option customises the codec.
type Option func(*codec)

// WithDelimiter replaces the default "--" delimiter.
func WithDelimiter(delimiter string) Option {
	return func(c *codec) {
		if delimiter != "" {
			c.delimiter = delimiter
		}
	}
}

// WithMaxIndex bounds array indexes; entries addressing a larger index are
// dropped by Decode.
func WithMaxIndex(max int) Option {
	return func(c *codec) {
		if max > 0 {
			c.maxIndex = max
		}
	}
}

// WithReserved adds submission keys Shape strips before decoding.
func WithReserved(keys ...string) Option {
	return func(c *codec) {
		for _, key := range keys {
			if key = strings.TrimSpace(key); key != "" {
				c.reserved[key] = struct{}{}
			}
		}
	}
}

// WithLogger logs dropped entries.
func WithLogger(logger *zap.Logger) Option {
	return func(c *codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type codec struct {
	delimiter string
	maxIndex  int
	reserved  map[string]struct{}
	logger    *zap.Logger
}

func newCodec(opts []Option) *codec {
	c := &codec{
		delimiter: DefaultDelimiter,
		maxIndex:  DefaultMaxIndex,
		reserved:  map[string]struct{}{"apply-form-button": {}},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FromValues converts parsed form values into entries. Keys are sorted;
// repeated values keep their submission order.
func FromValues(values url.Values) []Entry {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var entries []Entry
	for _, key := range keys {
		for _, value := range values[key] {
			entries = append(entries, Entry{Key: key, Value: value})
		}
	}
	return entries
}

// FromRequest reads the entries of a urlencoded or multipart form body. File
// parts are ignored; attachments are submitted by id.
func FromRequest(r *http.Request, maxMemory int64) ([]Entry, error) {
	if r == nil {
		return nil, fmt.Errorf("formdata: request is nil")
	}
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("formdata: parse multipart form: %w", err)
		}
		return FromValues(url.Values(r.MultipartForm.Value)), nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("formdata: parse form: %w", err)
	}
	return FromValues(r.PostForm), nil
}
