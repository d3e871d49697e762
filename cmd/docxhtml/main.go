// Command docxhtml converts between .docx packages and editor HTML.
//
//	docxhtml decode report.docx -o report.json
//	docxhtml decode report.docx -o report.html
//	docxhtml encode report.html --header header.html --title "Report" -o report.docx
//	docxhtml encode report.json
//
// A JSON input to encode may be either an encode request or the output of
// decode.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/docxhtml"
	"github.com/tsawler/docxhtml/format"
	"github.com/tsawler/docxhtml/model"
)

const usage = `usage:
  docxhtml decode <in.docx> [-o out.json|out.html] [flags]
  docxhtml encode <in.html|in.json> [-o out.docx] [--header file] [--footer file] [--title t] [--author a] [flags]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd := args[0]
	if cmd != "decode" && cmd != "encode" {
		fmt.Fprintf(stderr, "unknown command %q\n%s", cmd, usage)
		return 2
	}

	cfg, rest, err := loadConfig(cmd, args[1:], stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	opts := []docxhtml.Option{
		docxhtml.WithLogger(logger),
		docxhtml.WithMaxInputSize(cfg.MaxInputSize),
		docxhtml.WithDateLayouts(cfg.DateLayout, cfg.TimeLayout),
	}

	var warnings []docxhtml.Warning
	switch cmd {
	case "decode":
		warnings, err = decode(rest[0], cfg, opts, stdout)
	case "encode":
		warnings, err = encode(rest[0], cfg, opts)
	}
	if err != nil {
		logger.Error("conversion failed", zap.String("command", cmd), zap.String("input", rest[0]), zap.Error(err))
		return exitCode(err)
	}
	if len(warnings) > 0 {
		fmt.Fprintf(stderr, "%d warning(s): %s\n", len(warnings), docxhtml.FormatWarnings(warnings))
	}
	logger.Info("converted", zap.String("command", cmd), zap.String("input", rest[0]), zap.Int("warnings", len(warnings)))
	return 0
}

// exitCode separates bad input (1) from internal failures (3), the same
// split the HTTP layer makes between 4xx and 5xx.
func exitCode(err error) int {
	switch {
	case errors.Is(err, docxhtml.ErrInvalidPackage),
		errors.Is(err, docxhtml.ErrUnreadableDocument),
		errors.Is(err, docxhtml.ErrEmptyInput),
		errors.Is(err, errUnsupportedInput):
		return 1
	default:
		return 3
	}
}

var errUnsupportedInput = errors.New("unsupported input")

func decode(input string, cfg *Config, opts []docxhtml.Option, stdout io.Writer) ([]docxhtml.Warning, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	if f := format.DetectFromBytes(data); f != format.DOCX {
		return nil, fmt.Errorf("%w: %s is %s, want DOCX", errUnsupportedInput, input, f)
	}

	content, warnings, err := docxhtml.Decode(data, opts...)
	if err != nil {
		return nil, err
	}

	var out []byte
	if format.Detect(cfg.Output) == format.HTML {
		out = []byte(content.HTML)
	} else {
		out, err = json.MarshalIndent(content, "", "  ")
		if err != nil {
			return nil, err
		}
	}

	if cfg.Output == "" {
		_, err = stdout.Write(append(out, '\n'))
		return warnings, err
	}
	return warnings, os.WriteFile(cfg.Output, out, 0o644)
}

func encode(input string, cfg *Config, opts []docxhtml.Option) ([]docxhtml.Warning, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}

	var req docxhtml.EncodeRequest
	switch f := format.DetectFromBytes(data); f {
	case format.JSON:
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errUnsupportedInput, input, err)
		}
	case format.HTML:
		req.HTML = string(data)
	default:
		return nil, fmt.Errorf("%w: %s is %s, want HTML or JSON", errUnsupportedInput, input, f)
	}

	if req.Header, err = strip(req.Header, cfg.Header, cfg.HeaderHeight); err != nil {
		return nil, err
	}
	if req.Footer, err = strip(req.Footer, cfg.Footer, cfg.FooterHeight); err != nil {
		return nil, err
	}
	if cfg.Title != "" || cfg.Author != "" {
		if req.Metadata == nil {
			req.Metadata = &model.DocumentMetadata{}
		}
		if cfg.Title != "" {
			req.Metadata.Title = cfg.Title
		}
		if cfg.Author != "" {
			req.Metadata.Author = cfg.Author
		}
	}

	pkg, warnings, err := docxhtml.Encode(req, opts...)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + format.DOCX.Extension()
	}
	return warnings, os.WriteFile(out, pkg, 0o644)
}

// strip overrides a header or footer from the request with one read from
// a file.
func strip(cur *model.HeaderFooterContent, file string, height float64) (*model.HeaderFooterContent, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		cur = &model.HeaderFooterContent{HTML: string(data)}
	}
	if cur != nil && height > 0 {
		cur.Height = height
	}
	return cur, nil
}
