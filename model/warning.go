package model

import "fmt"

// WarningKind classifies a recoverable conversion problem.
type WarningKind int

const (
	// UnsupportedMediaType marks an embedded part that is not an image.
	UnsupportedMediaType WarningKind = iota + 1
	// MalformedField marks a field code whose begin/separate/end markers do
	// not balance. Its contents are dropped.
	MalformedField
	MissingStyle
	MissingNumbering
	MissingRelationship
	UnresolvedThemeColor
	InvalidImage
)

func (k WarningKind) String() string {
	switch k {
	case UnsupportedMediaType:
		return "unsupported media type"
	case MalformedField:
		return "malformed field"
	case MissingStyle:
		return "missing style"
	case MissingNumbering:
		return "missing numbering"
	case MissingRelationship:
		return "missing relationship"
	case UnresolvedThemeColor:
		return "unresolved theme color"
	case InvalidImage:
		return "invalid image"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal problem found during conversion.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Part    string      `json:"part,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Part != "" {
		return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Part)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
