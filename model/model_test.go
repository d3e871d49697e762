package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarning_String(t *testing.T) {
	w := Warning{Kind: MissingNumbering, Part: "word/numbering.xml", Message: "numId 4 level 0 is not defined"}
	assert.Equal(t, "missing numbering: numId 4 level 0 is not defined (word/numbering.xml)", w.String())

	w.Part = ""
	assert.Equal(t, "missing numbering: numId 4 level 0 is not defined", w.String())
}

func TestWarningKind_String(t *testing.T) {
	tests := map[WarningKind]string{
		UnsupportedMediaType: "unsupported media type",
		MalformedField:       "malformed field",
		MissingStyle:         "missing style",
		MissingNumbering:     "missing numbering",
		MissingRelationship:  "missing relationship",
		UnresolvedThemeColor: "unresolved theme color",
		InvalidImage:         "invalid image",
		WarningKind(0):       "unknown",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}

func TestHeaderFooterContent(t *testing.T) {
	var nilStrip *HeaderFooterContent
	assert.True(t, nilStrip.IsEmpty())
	assert.Equal(t, DefaultHeaderHeight, nilStrip.HeightOrDefault())

	h := &HeaderFooterContent{DifferentFirstPage: true}
	assert.True(t, h.IsEmpty(), "flags alone carry no content")

	h.FirstPageHTML = "<p>Cover</p>"
	assert.False(t, h.IsEmpty())
	assert.Equal(t, DefaultHeaderHeight, h.HeightOrDefault())

	h.Height = 2.5
	assert.Equal(t, 2.5, h.HeightOrDefault())
}

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	for _, id := range []string{"Normal", "Heading1", "Heading6", "Title", "Subtitle", "Quote", "ListParagraph", "Hyperlink"} {
		require.NotNil(t, FindStyle(styles, id), id)
	}
	assert.Nil(t, FindStyle(styles, "Missing"))

	normal := FindStyle(styles, "Normal")
	assert.Equal(t, "Calibri", normal.FontFamily)
	require.NotNil(t, normal.FontSize)
	assert.Equal(t, 11.0, *normal.FontSize)

	h1 := FindStyle(styles, "Heading1")
	assert.Equal(t, 1, h1.OutlineLevel)
	assert.Equal(t, "Normal", h1.BasedOn)
	assert.True(t, h1.IsBold)

	link := FindStyle(styles, "Hyperlink")
	assert.Equal(t, StyleCharacter, link.Type)
	assert.True(t, link.IsUnderline)

	// Each call returns an independent copy.
	*normal.FontSize = 99
	assert.Equal(t, 11.0, *FindStyle(DefaultStyles(), "Normal").FontSize)
}

func TestDocumentContent_JSON(t *testing.T) {
	content := DocumentContent{
		HTML:   "<p>x</p>",
		Images: []DocumentImage{{ID: "rId5", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		Footer: &HeaderFooterContent{HTML: "<p>{page}</p>", Height: 1.25},
	}

	data, err := json.Marshal(content)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Contains(t, fields, "html")
	assert.Contains(t, fields, "metadata")
	assert.Contains(t, fields, "footer")
	assert.NotContains(t, fields, "header")
	assert.JSONEq(t, `[{"id":"rId5","contentType":"image/png","data":"iVBORw=="}]`, string(fields["images"]))
}
