// Package docxhtml converts Word (.docx) packages to the HTML document model
// used by a browser editor, and converts that HTML back into a .docx.
//
// Basic usage:
//
//	content, warnings, err := docxhtml.Decode(data)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", docxhtml.FormatWarnings(warnings))
//	}
//
// Encoding:
//
//	pkg, _, err := docxhtml.Encode(docxhtml.EncodeRequest{
//	    HTML:   content.HTML,
//	    Header: content.Header,
//	    Footer: content.Footer,
//	    Styles: content.Styles,
//	}, docxhtml.WithLogger(logger))
//
// For lower-level access to package parts, see the docx package.
package docxhtml

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tsawler/docxhtml/docx"
	"github.com/tsawler/docxhtml/model"
)

type (
	// EncodeRequest is the input of Encode.
	EncodeRequest = docx.EncodeRequest
	// Warning is a recoverable conversion problem.
	Warning = model.Warning
)

// Errors returned by Decode and Encode. Test with errors.Is.
var (
	ErrInvalidPackage     = docx.ErrInvalidPackage
	ErrUnreadableDocument = docx.ErrUnreadableDocument
	ErrEmptyInput         = docx.ErrEmptyInput
)

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Decode converts a .docx package to HTML plus its metadata, styles,
// images and header/footer strips.
//
// Example:
//
//	content, _, err := docxhtml.Decode(data, docxhtml.WithClock(time.Now))
func Decode(data []byte, opts ...Option) (*model.DocumentContent, []Warning, error) {
	o := newOptions(opts)
	if o.maxInputSize > 0 && int64(len(data)) > o.maxInputSize {
		return nil, nil, fmt.Errorf("%w: package is %d bytes, limit is %d", ErrEmptyInput, len(data), o.maxInputSize)
	}
	return docx.Decode(data, docx.DecodeOptions{
		Logger:     o.logger,
		Now:        o.now,
		DateLayout: o.dateLayout,
		TimeLayout: o.timeLayout,
	})
}

// Encode builds a .docx package from editor HTML. The request is validated
// before anything is built; a validation failure or empty HTML returns
// ErrEmptyInput.
func Encode(req EncodeRequest, opts ...Option) ([]byte, []Warning, error) {
	o := newOptions(opts)
	if err := Validate(req); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEmptyInput, err)
	}
	if o.maxInputSize > 0 {
		if n := requestSize(req); n > o.maxInputSize {
			return nil, nil, fmt.Errorf("%w: request HTML is %d bytes, limit is %d", ErrEmptyInput, n, o.maxInputSize)
		}
	}
	return docx.Encode(req, docx.EncodeOptions{Logger: o.logger, Now: o.now})
}

// Validate checks an encode request: HTML is required and strip heights
// must lie within 0-20 cm.
func Validate(req EncodeRequest) error {
	if strings.TrimSpace(req.HTML) == "" {
		return errors.New("html: must not be blank")
	}
	return validate().Struct(req)
}

func requestSize(req EncodeRequest) int64 {
	n := int64(len(req.HTML))
	for _, h := range []*model.HeaderFooterContent{req.Header, req.Footer} {
		if h != nil {
			n += int64(len(h.HTML) + len(h.FirstPageHTML) + len(h.EvenPageHTML))
		}
	}
	return n
}

// FormatWarnings joins warnings into a single line for logging.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	pkg := docxhtml.Must(docx.Open(data))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustConvert wraps a call to Decode or Encode, discards the warnings and
// panics if the error is non-nil.
//
// Example:
//
//	content := docxhtml.MustConvert(docxhtml.Decode(data))
func MustConvert[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
