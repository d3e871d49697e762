// Package format detects the kind of input handed to the docxhtml command.
package format

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word (.docx) package.
	DOCX
	// HTML indicates editor HTML.
	HTML
	// JSON indicates an encode request or decoded document content.
	JSON
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case HTML:
		return "HTML"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case HTML:
		return ".html"
	case JSON:
		return ".json"
	default:
		return ""
	}
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return DOCX
	case ".html", ".htm":
		return HTML
	case ".json":
		return JSON
	default:
		return Unknown
	}
}

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DetectFromBytes sniffs the content. It is more reliable than the
// extension and tells a Word package apart from other ZIP archives.
func DetectFromBytes(data []byte) Format {
	if len(data) == 0 {
		return Unknown
	}
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(docxMIME):
		return DOCX
	case mt.Is("application/zip"):
		return detectZIPFormat(data)
	case mt.Is("text/html"):
		return HTML
	case mt.Is("application/json"):
		return JSON
	}
	// Editor fragments can start with any tag.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '<' && mt.Is("text/plain") {
		return HTML
	}
	return Unknown
}

// detectZIPFormat looks for the word/ directory of an Office Open XML
// package.
func detectZIPFormat(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX
		}
	}
	return Unknown
}
