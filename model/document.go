package model

import "time"

// DocumentContent is the result of decoding a package.
type DocumentContent struct {
	HTML     string               `json:"html"`
	Metadata DocumentMetadata     `json:"metadata"`
	Images   []DocumentImage      `json:"images"`
	Styles   []DocumentStyle      `json:"styles"`
	Header   *HeaderFooterContent `json:"header,omitempty"`
	Footer   *HeaderFooterContent `json:"footer,omitempty"`
}

// DocumentMetadata contains the core (docProps/core.xml) and extended
// (docProps/app.xml) properties of a package.
type DocumentMetadata struct {
	Title          string     `json:"title,omitempty"`
	Author         string     `json:"author,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Keywords       string     `json:"keywords,omitempty"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category,omitempty"`
	ContentStatus  string     `json:"contentStatus,omitempty"`
	LastModifiedBy string     `json:"lastModifiedBy,omitempty"`
	Revision       string     `json:"revision,omitempty"`
	Version        string     `json:"version,omitempty"`
	Company        string     `json:"company,omitempty"`
	Manager        string     `json:"manager,omitempty"`
	Created        *time.Time `json:"created,omitempty"`
	Modified       *time.Time `json:"modified,omitempty"`
	PageCount      int        `json:"pageCount"`
	WordCount      int        `json:"wordCount"`
}

// DocumentImage is an embedded media part. ID is the relationship id that
// references it; Data is serialized as base64 in JSON.
type DocumentImage struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// DefaultHeaderHeight is the header/footer strip height in centimetres used
// when none is declared.
const DefaultHeaderHeight = 1.25

// HeaderFooterContent describes a header or a footer. The first-page and
// even-page variants are only meaningful when their flag is set.
type HeaderFooterContent struct {
	HTML               string  `json:"html"`
	Height             float64 `json:"height" validate:"gte=0,lte=20"`
	DifferentFirstPage bool    `json:"differentFirstPage"`
	FirstPageHTML      string  `json:"firstPageHtml,omitempty"`
	DifferentOddEven   bool    `json:"differentOddEven"`
	EvenPageHTML       string  `json:"evenPageHtml,omitempty"`
}

// HeightOrDefault returns Height, or DefaultHeaderHeight when unset.
func (h *HeaderFooterContent) HeightOrDefault() float64 {
	if h == nil || h.Height <= 0 {
		return DefaultHeaderHeight
	}
	return h.Height
}

// IsEmpty reports whether no variant carries any HTML.
func (h *HeaderFooterContent) IsEmpty() bool {
	return h == nil || (h.HTML == "" && h.FirstPageHTML == "" && h.EvenPageHTML == "")
}
