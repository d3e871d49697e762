package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

const (
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML           = "application/xml"
	ctDocument      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering     = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctSettings      = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	ctHeader        = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter        = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtendedProps = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

type ctTypesOut struct {
	XMLName   xml.Name        `xml:"Types"`
	Xmlns     string          `xml:"xmlns,attr"`
	Defaults  []ctDefaultOut  `xml:"Default"`
	Overrides []ctOverrideOut `xml:"Override"`
}

type ctDefaultOut struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverrideOut struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relsOut struct {
	XMLName       xml.Name `xml:"Relationships"`
	Xmlns         string   `xml:"xmlns,attr"`
	Relationships []relOut `xml:"Relationship"`
}

type relOut struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type writerPart struct {
	name        string
	contentType string
	data        []byte
}

// Writer assembles a package from parts and relationships. It is not safe
// for concurrent use; each encode owns its own Writer.
type Writer struct {
	parts    []writerPart
	index    map[string]int
	rels     map[string][]relOut
	relOrder []string
}

// NewWriter returns an empty package writer.
func NewWriter() *Writer {
	return &Writer{
		index: make(map[string]int),
		rels:  make(map[string][]relOut),
	}
}

// AddPart adds or replaces a part.
func (w *Writer) AddPart(name, contentType string, data []byte) {
	name = normalizePartName(name)
	if i, ok := w.index[name]; ok {
		w.parts[i] = writerPart{name: name, contentType: contentType, data: data}
		return
	}
	w.index[name] = len(w.parts)
	w.parts = append(w.parts, writerPart{name: name, contentType: contentType, data: data})
}

// AddXMLPart marshals v with an XML declaration and adds it as a part.
func (w *Writer) AddXMLPart(name, contentType string, v any) error {
	data, err := marshalXML(v)
	if err != nil {
		return &PartError{Op: "marshal", Part: name, Err: err}
	}
	w.AddPart(name, contentType, data)
	return nil
}

// AddRelationship records a relationship from source ("" for the package)
// and returns its id. Internal targets are absolute part names and are
// written relative to the source part.
func (w *Writer) AddRelationship(source, relType, target string, external bool) string {
	source = normalizePartName(source)
	if _, ok := w.rels[source]; !ok {
		w.relOrder = append(w.relOrder, source)
	}
	id := "rId" + strconv.Itoa(len(w.rels[source])+1)
	rel := relOut{ID: id, Type: relType, Target: target}
	if external {
		rel.TargetMode = "External"
	} else {
		rel.Target = relativeTarget(source, normalizePartName(target))
	}
	w.rels[source] = append(w.rels[source], rel)
	return id
}

// Bytes serializes the package. The content-types manifest lists a Default
// for rels, xml and every media extension and an Override for every other
// part.
func (w *Writer) Bytes() ([]byte, error) {
	types := ctTypesOut{
		Xmlns: nsContentTypes,
		Defaults: []ctDefaultOut{
			{Extension: "rels", ContentType: ctRelationships},
			{Extension: "xml", ContentType: ctXML},
		},
	}
	defaults := map[string]string{"rels": ctRelationships, "xml": ctXML}
	for _, p := range w.parts {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(p.name), "."))
		if ct, ok := defaults[ext]; ok && ct == p.contentType {
			continue
		}
		if _, ok := defaults[ext]; !ok && ext != "" && !strings.HasSuffix(p.contentType, "+xml") {
			defaults[ext] = p.contentType
			types.Defaults = append(types.Defaults, ctDefaultOut{Extension: ext, ContentType: p.contentType})
			continue
		}
		types.Overrides = append(types.Overrides, ctOverrideOut{PartName: "/" + p.name, ContentType: p.contentType})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeXMLEntry(zw, contentTypesPart, types); err != nil {
		return nil, err
	}
	for _, source := range w.relOrder {
		out := relsOut{Xmlns: nsRelationships, Relationships: w.rels[source]}
		if err := writeXMLEntry(zw, relsPartName(source), out); err != nil {
			return nil, err
		}
	}
	for _, p := range w.parts {
		if err := writeEntry(zw, p.name, p.data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

// AppendPart returns a copy of the package in data with one extra part
// registered in the content-types manifest. Every other entry is copied
// unchanged, so the main document part keeps its exact bytes.
func AppendPart(data []byte, name, contentType string, content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	name = normalizePartName(name)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false
	for _, f := range zr.File {
		if normalizePartName(f.Name) == name {
			return nil, fmt.Errorf("docx: part %s already exists", name)
		}
		if f.Name != contentTypesPart {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		found = true
		types, err := readContentTypes(f)
		if err != nil {
			return nil, err
		}
		types.Overrides = append(types.Overrides, ctOverrideOut{PartName: "/" + name, ContentType: contentType})
		if err := writeXMLEntry(zw, contentTypesPart, types); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, contentTypesPart)
	}
	if err := writeEntry(zw, name, content); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

func readContentTypes(f *zip.File) (ctTypesOut, error) {
	rc, err := f.Open()
	if err != nil {
		return ctTypesOut{}, &PartError{Op: "open", Part: f.Name, Err: err}
	}
	defer rc.Close()

	var in contentTypesXML
	if err := xml.NewDecoder(rc).Decode(&in); err != nil {
		return ctTypesOut{}, &PartError{Op: "parse", Part: f.Name, Err: err}
	}
	out := ctTypesOut{Xmlns: nsContentTypes}
	for _, d := range in.Defaults {
		out.Defaults = append(out.Defaults, ctDefaultOut{Extension: d.Extension, ContentType: d.ContentType})
	}
	for _, o := range in.Overrides {
		out.Overrides = append(out.Overrides, ctOverrideOut{PartName: o.PartName, ContentType: o.ContentType})
	}
	return out, nil
}

func writeXMLEntry(zw *zip.Writer, name string, v any) error {
	data, err := marshalXML(v)
	if err != nil {
		return &PartError{Op: "marshal", Part: name, Err: err}
	}
	return writeEntry(zw, name, data)
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return &PartError{Op: "write", Part: name, Err: err}
	}
	if _, err := io.Copy(fw, bytes.NewReader(data)); err != nil {
		return &PartError{Op: "write", Part: name, Err: err}
	}
	return nil
}

func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// relativeTarget expresses target relative to the directory of source.
func relativeTarget(source, target string) string {
	dir := path.Dir(source)
	if source == "" || dir == "." {
		return target
	}
	if strings.HasPrefix(target, dir+"/") {
		return strings.TrimPrefix(target, dir+"/")
	}
	return "/" + target
}
