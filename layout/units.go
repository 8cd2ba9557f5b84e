package layout

import (
	"strconv"
	"strings"
)

// 样式数值以 pt 表达，页面几何以 mm 表达；本文件负责两者之间的换算。

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To converts this length to target unit. Unit-less lengths are returned as-is,
// so "10" means 10pt for ToPT and 10mm for ToMM.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		return l.Value * PtToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseRawLengthStr parses a theme length string preserving its unit.
// Unparseable input yields a zero Length with UnitNone.
func ParseRawLengthStr(value string) Length {
	l, _ := parseRawLength(value)
	return l
}

func parseRawLength(value string) (Length, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// DefaultLeadingFactor is used when a style gives no leading.
const DefaultLeadingFactor = 1.2

// LineHeightSpec is either a factor of the font size (1.2x) or an absolute length (12pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight parses "1.2x" or an absolute length. ok is false for empty or invalid input.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return LineHeightSpec{}, false
	}
	if factor, found := strings.CutSuffix(v, "x"); found {
		f, err := strconv.ParseFloat(factor, 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l, ok := parseRawLength(v)
	if !ok || l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve computes the absolute line height in target unit using the given fontSize (which carries its unit).
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * DefaultLeadingFactor
	}
}

// parseLength converts a geometry value to mm; bare numbers are mm.
func parseLength(value string) float64 {
	l, ok := parseRawLength(value)
	if !ok {
		return 0
	}
	return l.ToMM()
}

// parsePoints converts a style value to pt; bare numbers are pt.
func parsePoints(value string) float64 {
	l, ok := parseRawLength(value)
	if !ok {
		return 0
	}
	return l.ToPT()
}

// parseDimension resolves percentages against reference (mm).
func parseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if pct, found := strings.CutSuffix(v, "%"); found {
		if f, err := strconv.ParseFloat(pct, 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return parseLength(v)
}

func isLength(value string) bool {
	_, ok := parseRawLength(value)
	return ok
}
