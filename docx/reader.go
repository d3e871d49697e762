// Package docx reads and writes WordprocessingML (.docx) packages and
// converts them to and from editor HTML.
package docx

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// Relationship types used by the converter.
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relSettings       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

const contentTypesPart = "[Content_Types].xml"

// Relationship is a resolved entry of a .rels part. Target is an absolute
// part name for internal relationships and the raw URI for external ones.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Package provides read access to the parts of an OPC container.
type Package struct {
	files        map[string]*zip.File // keyed by lower-cased part name
	names        []string
	contentTypes *contentTypesXML
	rels         map[string][]Relationship
	mainPart     string
}

// Open parses data as a .docx package. A corrupt ZIP directory yields
// ErrInvalidPackage; a package without a main document yields
// ErrUnreadableDocument.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	p := &Package{
		files: make(map[string]*zip.File, len(zr.File)),
		rels:  make(map[string][]Relationship),
	}
	for _, f := range zr.File {
		name := normalizePartName(f.Name)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		p.files[strings.ToLower(name)] = f
		p.names = append(p.names, name)
	}

	if !p.HasPart(contentTypesPart) {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, contentTypesPart)
	}
	p.contentTypes = &contentTypesXML{}
	if err := p.decodeXML(contentTypesPart, p.contentTypes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	p.mainPart = "word/document.xml"
	if rels, err := p.Relationships(""); err == nil {
		for _, rel := range rels {
			if rel.Type == relOfficeDocument && !rel.External {
				p.mainPart = rel.Target
				break
			}
		}
	}
	if !p.HasPart(p.mainPart) {
		return nil, fmt.Errorf("%w: missing main document %s", ErrUnreadableDocument, p.mainPart)
	}

	return p, nil
}

// MainDocument returns the name of the main document part.
func (p *Package) MainDocument() string {
	return p.mainPart
}

// Parts returns all part names in archive order.
func (p *Package) Parts() []string {
	return append([]string(nil), p.names...)
}

// HasPart reports whether the package contains the named part.
func (p *Package) HasPart(name string) bool {
	_, ok := p.files[strings.ToLower(normalizePartName(name))]
	return ok
}

// Part returns the raw bytes of a part.
func (p *Package) Part(name string) ([]byte, error) {
	f, ok := p.files[strings.ToLower(normalizePartName(name))]
	if !ok {
		return nil, &PartError{Op: "open", Part: name, Err: ErrPartNotFound}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &PartError{Op: "open", Part: name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &PartError{Op: "read", Part: name, Err: err}
	}
	return data, nil
}

// Digest returns the hex SHA-256 of a part's bytes.
func (p *Package) Digest(name string) (string, error) {
	data, err := p.Part(name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ContentType returns the declared content type of a part: an Override
// entry if present, otherwise the Default for its extension.
func (p *Package) ContentType(name string) string {
	name = normalizePartName(name)
	for _, o := range p.contentTypes.Overrides {
		if strings.EqualFold(normalizePartName(o.PartName), name) {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	for _, d := range p.contentTypes.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

// Relationships returns the relationships whose source is the given part.
// The empty string names the package itself (_rels/.rels). A missing .rels
// part yields no relationships and no error.
func (p *Package) Relationships(source string) ([]Relationship, error) {
	source = normalizePartName(source)
	if rels, ok := p.rels[source]; ok {
		return rels, nil
	}

	relsPart := relsPartName(source)
	if !p.HasPart(relsPart) {
		p.rels[source] = nil
		return nil, nil
	}

	var raw relationshipsXML
	if err := p.decodeXML(relsPart, &raw); err != nil {
		return nil, err
	}

	rels := make([]Relationship, 0, len(raw.Relationships))
	for _, r := range raw.Relationships {
		rel := Relationship{ID: r.ID, Type: r.Type, Target: r.Target, External: r.TargetMode == "External"}
		if !rel.External {
			rel.Target = resolveTarget(source, r.Target)
		}
		rels = append(rels, rel)
	}
	p.rels[source] = rels
	return rels, nil
}

// Relationship looks up a relationship of source by id.
func (p *Package) Relationship(source, id string) (Relationship, bool) {
	rels, err := p.Relationships(source)
	if err != nil {
		return Relationship{}, false
	}
	for _, r := range rels {
		if r.ID == id {
			return r, true
		}
	}
	return Relationship{}, false
}

// relatedPart returns the target of the first internal relationship of the
// given type, or "".
func (p *Package) relatedPart(source, relType string) string {
	rels, _ := p.Relationships(source)
	for _, r := range rels {
		if r.Type == relType && !r.External {
			return r.Target
		}
	}
	return ""
}

// decodeXML unmarshals a part, honouring any declared non-UTF-8 encoding.
func (p *Package) decodeXML(name string, v any) error {
	data, err := p.Part(name)
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return &PartError{Op: "parse", Part: name, Err: err}
	}
	return nil
}

// normalizePartName strips a leading slash and converts separators so part
// names from rels, content types and the ZIP directory compare equal.
func normalizePartName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(name, "/")
}

// relsPartName returns the .rels part describing source, e.g.
// word/document.xml -> word/_rels/document.xml.rels.
func relsPartName(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(source)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target relative to its source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return normalizePartName(path.Clean(target))
	}
	return normalizePartName(path.Clean(path.Join(path.Dir(source), target)))
}
