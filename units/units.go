// Package units converts between the length systems used by WordprocessingML
// and CSS.
//
// OOXML measures most lengths in twips (1/1440 inch), drawing extents in EMU
// (914400 per inch), font sizes in half-points and borders in eighths of a
// point. CSS uses px (1/96 inch) and pt (1/72 inch). Every conversion pair is
// defined exactly once here so decode and encode stay exact inverses.
package units

import (
	"math"
	"strconv"
)

const (
	TwipsPerInch  = 1440
	PxPerInch     = 96
	PtPerInch     = 72
	TwipsPerPoint = 20
	EMUPerInch    = 914400
	EMUPerPx      = EMUPerInch / PxPerInch // 9525
	CmPerInch     = 2.54
)

// TwipsToPx converts twips to CSS pixels.
func TwipsToPx(twips int) float64 {
	return float64(twips) / TwipsPerInch * PxPerInch
}

// PxToTwips converts CSS pixels to twips, rounding to the nearest twip.
func PxToTwips(px float64) int {
	return int(math.Round(px / PxPerInch * TwipsPerInch))
}

// TwipsToPt converts twips to points.
func TwipsToPt(twips int) float64 {
	return float64(twips) / TwipsPerPoint
}

// PtToTwips converts points to twips.
func PtToTwips(pt float64) int {
	return int(math.Round(pt * TwipsPerPoint))
}

// PxToPt converts CSS pixels to points.
func PxToPt(px float64) float64 {
	return px / PxPerInch * PtPerInch
}

// PtToPx converts points to CSS pixels.
func PtToPx(pt float64) float64 {
	return pt / PtPerInch * PxPerInch
}

// TwipsToCm converts twips to centimetres, rounded to two decimals.
func TwipsToCm(twips int) float64 {
	return Round2(float64(twips) / TwipsPerInch * CmPerInch)
}

// CmToTwips converts centimetres to twips.
func CmToTwips(cm float64) int {
	return int(math.Round(cm / CmPerInch * TwipsPerInch))
}

// EMUToPx converts English Metric Units to CSS pixels.
func EMUToPx(emu int64) float64 {
	return float64(emu) / EMUPerPx
}

// PxToEMU converts CSS pixels to English Metric Units.
func PxToEMU(px float64) int64 {
	return int64(math.Round(px * EMUPerPx))
}

// CmToEMU converts centimetres to English Metric Units.
func CmToEMU(cm float64) int64 {
	return int64(math.Round(cm / CmPerInch * EMUPerInch))
}

// EighthsToPx converts a border width in eighths of a point to CSS pixels.
func EighthsToPx(eighths int) float64 {
	return PtToPx(float64(eighths) / 8)
}

// PxToEighths converts a CSS pixel border width to eighths of a point.
func PxToEighths(px float64) int {
	return int(math.Round(PxToPt(px) * 8))
}

// HalfPoints is a font size in half-points, the native OOXML unit. Keeping
// sizes as integers avoids drift across repeated decode/encode cycles.
type HalfPoints int

// HalfPointsFromPt rounds a point size to the nearest half point.
func HalfPointsFromPt(pt float64) HalfPoints {
	return HalfPoints(math.Round(pt * 2))
}

// ParseHalfPoints parses a w:sz value. It returns false for malformed or
// non-positive values.
func ParseHalfPoints(s string) (HalfPoints, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return HalfPoints(n), true
}

// Pt returns the size in points.
func (h HalfPoints) Pt() float64 {
	return float64(h) / 2
}

// String formats the size in points without trailing zeros, e.g. "14" or
// "10.5".
func (h HalfPoints) String() string {
	return FormatFloat(h.Pt())
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatFloat formats v with at most two decimals and no trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}
