package docx

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docxhtml/htmldoc"
	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

const (
	// defaultImagePx is the width used when neither the markup nor the
	// payload gives a size.
	defaultImagePx = 200
	// maxImageWidthCm keeps inline pictures inside the A4 text column.
	maxImageWidthCm = 15
)

// image embeds an inline picture and returns the run that shows it. Images
// without an inline payload or with a non-image payload are skipped with a
// warning.
func (p *partBuilder) image(img *htmldoc.Image) *wR {
	if len(img.Data) == 0 {
		msg := "image has no embedded data"
		if img.Src != "" {
			msg = fmt.Sprintf("image %s is not embedded", shorten(img.Src, 64))
		}
		p.b.warn(model.InvalidImage, p.name, msg)
		return nil
	}

	mt := mimetype.Detect(img.Data)
	ct := mimeBase(mt.String())
	if !strings.HasPrefix(ct, "image/") {
		p.b.warn(model.UnsupportedMediaType, p.name, fmt.Sprintf("image payload is %s", ct))
		return nil
	}

	target := p.b.embed(img.Data, ct, mt.Extension())
	relID := p.relationship(relImage, target, false)
	cx, cy := imageExtent(img)

	p.b.docPrID++
	id := p.b.docPrID
	ext := wpExtent{CX: cx, CY: cy}

	var pic picPic
	pic.NvPicPr.CNvPr = wpDocPr{ID: 0, Name: path.Base(target)}
	pic.BlipFill.Blip.Embed = relID
	pic.SpPr.Xfrm.Ext = ext
	pic.SpPr.Geom.Prst = "rect"

	d := wDrawing{Inline: wpInline{
		Extent:  ext,
		DocPr:   wpDocPr{ID: id, Name: fmt.Sprintf("Picture %d", id), Descr: img.Alt},
		Graphic: aGraphic{Data: aGraphicData{URI: uriPicture, Pic: pic}},
	}}
	d.Inline.FramePr.Locks.NoChangeAspect = 1

	return &wR{Content: []any{d}}
}

// embed stores a media payload once per package and returns its part name.
func (b *builder) embed(data []byte, contentType, ext string) string {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if name, ok := b.media[key]; ok {
		return name
	}
	b.mediaN++
	name := fmt.Sprintf("word/media/image%d%s", b.mediaN, ext)
	b.w.AddPart(name, contentType, data)
	b.media[key] = name
	b.log.Debug("media embedded", zap.String("part", name), zap.String("type", contentType), zap.Int("bytes", len(data)))
	return name
}

// imageExtent picks the display size in EMU: the exact data-*-emu values,
// then CSS pixels, then the natural size of the payload, scaled down to the
// text column width.
func imageExtent(img *htmldoc.Image) (int64, int64) {
	cx, cy := img.WidthEMU, img.HeightEMU
	if cx <= 0 && img.WidthPx > 0 {
		cx = units.PxToEMU(img.WidthPx)
	}
	if cy <= 0 && img.HeightPx > 0 {
		cy = units.PxToEMU(img.HeightPx)
	}

	if cx <= 0 || cy <= 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
			nw := units.PxToEMU(float64(cfg.Width))
			nh := units.PxToEMU(float64(cfg.Height))
			switch {
			case cx <= 0 && cy <= 0:
				cx, cy = nw, nh
			case cx <= 0:
				cx = cy * nw / nh
			default:
				cy = cx * nh / nw
			}
		}
	}
	if cx <= 0 {
		cx = units.PxToEMU(defaultImagePx)
	}
	if cy <= 0 {
		cy = cx
	}

	if limit := units.CmToEMU(maxImageWidthCm); cx > limit {
		cy = cy * limit / cx
		cx = limit
	}
	return cx, cy
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
