package docx

import (
	"encoding/base64"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// emuPerPt is the number of EMU in one point.
const emuPerPt = units.EMUPerInch / units.PtPerInch

// imageSet collects the media referenced while decoding. Images are keyed
// by media part, so a picture used from the body and a header is listed
// once.
type imageSet struct {
	byTarget map[string]*model.DocumentImage
	usedIDs  map[string]string // image id -> media part
	list     []*model.DocumentImage
}

func newImageSet() *imageSet {
	return &imageSet{
		byTarget: make(map[string]*model.DocumentImage),
		usedIDs:  make(map[string]string),
	}
}

func (s *imageSet) images() []model.DocumentImage {
	out := make([]model.DocumentImage, 0, len(s.list))
	for _, img := range s.list {
		out = append(out, *img)
	}
	return out
}

// drawing emits a DrawingML picture.
func (e *emitter) drawing(d *drawingXML) *html.Node {
	obj := d.object()
	if obj == nil || obj.Blip == nil || obj.Blip.Embed == "" {
		return nil
	}
	cx, _ := strconv.ParseInt(obj.Extent.CX, 10, 64)
	cy, _ := strconv.ParseInt(obj.Extent.CY, 10, 64)
	return e.image(obj.Blip.Embed, cx, cy, obj.DocPr.Descr)
}

// pict emits a legacy VML picture; its size comes from the shape style.
func (e *emitter) pict(p *pictXML) *html.Node {
	var cx, cy int64
	for _, decl := range strings.Split(p.Shape.Style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		emu := vmlLengthToEMU(strings.TrimSpace(v))
		switch strings.TrimSpace(k) {
		case "width":
			cx = emu
		case "height":
			cy = emu
		}
	}
	return e.image(p.Shape.ImageData.ID, cx, cy, p.Shape.ImageData.Title)
}

func vmlLengthToEMU(v string) int64 {
	for _, u := range []struct {
		suffix string
		emu    float64
	}{{"pt", emuPerPt}, {"px", units.EMUPerPx}, {"in", units.EMUPerInch}, {"cm", units.EMUPerInch / units.CmPerInch}} {
		if strings.HasSuffix(v, u.suffix) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
			if err != nil {
				return 0
			}
			return int64(f * u.emu)
		}
	}
	return 0
}

// image resolves an image relationship of the current part to a data URI
// <img>. Non-image media is skipped with an UnsupportedMediaType warning.
func (e *emitter) image(relID string, cx, cy int64, alt string) *html.Node {
	rel, ok := e.d.pkg.Relationship(e.part, relID)
	if !ok {
		e.d.warn(model.MissingRelationship, e.part, "image "+relID+" has no relationship")
		return nil
	}

	img := element(atom.Img)
	if rel.External {
		setAttr(img, "src", rel.Target)
	} else {
		doc := e.d.images.byTarget[rel.Target]
		if doc == nil {
			doc = e.loadImage(relID, rel.Target)
			if doc == nil {
				return nil
			}
		}
		setAttr(img, "src", "data:"+doc.ContentType+";base64,"+base64.StdEncoding.EncodeToString(doc.Data))
		setAttr(img, "data-image-id", doc.ID)
	}

	if cx > 0 && cy > 0 {
		setAttr(img, "data-width-emu", strconv.FormatInt(cx, 10))
		setAttr(img, "data-height-emu", strconv.FormatInt(cy, 10))
		setAttr(img, "style", "width:"+units.FormatFloat(units.EMUToPx(cx))+"px;height:"+units.FormatFloat(units.EMUToPx(cy))+"px")
	}
	setAttr(img, "alt", alt)
	return img
}

func (e *emitter) loadImage(relID, target string) *model.DocumentImage {
	data, err := e.d.pkg.Part(target)
	if err != nil {
		e.d.warn(model.InvalidImage, target, err.Error())
		return nil
	}

	contentType := e.d.pkg.ContentType(target)
	if !strings.HasPrefix(contentType, "image/") {
		sniffed := mimeBase(mimetype.Detect(data).String())
		if !strings.HasPrefix(sniffed, "image/") {
			e.d.warn(model.UnsupportedMediaType, target, "media type "+strconv.Quote(firstNonEmpty(contentType, sniffed))+" is not an image")
			return nil
		}
		contentType = sniffed
	}

	id := relID
	if owner, taken := e.d.images.usedIDs[id]; taken && owner != target {
		id = path.Base(e.part) + "#" + relID
	}
	doc := &model.DocumentImage{ID: id, ContentType: contentType, Data: data}
	e.d.images.usedIDs[id] = target
	e.d.images.byTarget[target] = doc
	e.d.images.list = append(e.d.images.list, doc)
	e.debug("image loaded", zap.String("target", target), zap.String("contentType", contentType), zap.Int("bytes", len(data)))
	return doc
}

// mimeBase strips parameters from a media type.
func mimeBase(mt string) string {
	base, _, _ := strings.Cut(mt, ";")
	return strings.TrimSpace(base)
}
