package memindex

import (
	"io"
	"log/slog"

	"github.com/hupe1980/lexigo/codec"
)

type options struct {
	compression Compression
	codec       codec.Codec
	ioHook      func(op string) error
	logger      *slog.Logger
}

// Option configures an Index.
type Option func(*options)

func defaultOptions() options {
	return options{
		compression: CompressionLZ4,
		codec:       codec.Default,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithCompression selects stored-field compression for new segments.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec selects the stored-field codec. nil keeps codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithIOHook installs a hook called before every simulated I/O operation
// ("document", "postings", "count"). A non-nil error aborts that operation.
// It exists for fault-injection tests.
func WithIOHook(fn func(op string) error) Option {
	return func(o *options) {
		o.ioHook = fn
	}
}

// WithLogger sets the logger used for flush and delete events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
