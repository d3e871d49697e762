package docxhtml

import (
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/docxhtml/docx"
)

// Option configures a Decode or Encode call.
type Option func(*options)

type options struct {
	logger *zap.Logger
	now    func() time.Time

	// maxInputSize caps the package (decode) or the HTML (encode) in bytes;
	// 0 means no limit.
	maxInputSize int64

	// Layouts for DATE and TIME fields without a \@ picture.
	dateLayout string
	timeLayout string
}

// defaultOptions returns the default conversion options.
func defaultOptions() options {
	return options{
		logger:     zap.NewNop(),
		now:        time.Now,
		dateLayout: docx.DefaultDateLayout,
		timeLayout: docx.DefaultTimeLayout,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Warnings are logged at Warn, progress at
// Debug.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source used for DATE/TIME fields and document
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxInputSize rejects inputs larger than n bytes with ErrEmptyInput.
func WithMaxInputSize(n int64) Option {
	return func(o *options) { o.maxInputSize = n }
}

// WithDateLayouts sets the Go time layouts for DATE and TIME fields that
// carry no picture switch. Empty strings keep the defaults.
func WithDateLayouts(date, clock string) Option {
	return func(o *options) {
		if date != "" {
			o.dateLayout = date
		}
		if clock != "" {
			o.timeLayout = clock
		}
	}
}
