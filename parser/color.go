// SPDX-License-Identifier: MIT

package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB colour.
type Color struct {
	R, G, B uint8
}

type namedColor struct {
	name  string
	code  rune
	color Color
}

// The sixteen legacy colours in code order.
var namedColors = []namedColor{
	{"black", '0', Color{0x00, 0x00, 0x00}},
	{"dark_blue", '1', Color{0x00, 0x00, 0xAA}},
	{"dark_green", '2', Color{0x00, 0xAA, 0x00}},
	{"dark_aqua", '3', Color{0x00, 0xAA, 0xAA}},
	{"dark_red", '4', Color{0xAA, 0x00, 0x00}},
	{"dark_purple", '5', Color{0xAA, 0x00, 0xAA}},
	{"gold", '6', Color{0xFF, 0xAA, 0x00}},
	{"gray", '7', Color{0xAA, 0xAA, 0xAA}},
	{"dark_gray", '8', Color{0x55, 0x55, 0x55}},
	{"blue", '9', Color{0x55, 0x55, 0xFF}},
	{"green", 'a', Color{0x55, 0xFF, 0x55}},
	{"aqua", 'b', Color{0x55, 0xFF, 0xFF}},
	{"red", 'c', Color{0xFF, 0x55, 0x55}},
	{"light_purple", 'd', Color{0xFF, 0x55, 0xFF}},
	{"yellow", 'e', Color{0xFF, 0xFF, 0x55}},
	{"white", 'f', Color{0xFF, 0xFF, 0xFF}},
}

var (
	colorsByName = map[string]Color{}
	colorsByCode = map[rune]Color{}
	namesByColor = map[Color]namedColor{}
)

func init() {
	for _, nc := range namedColors {
		colorsByName[nc.name] = nc.color
		colorsByCode[nc.code] = nc.color
		namesByColor[nc.color] = nc
	}
	colorsByName["grey"] = colorsByName["gray"]
	colorsByName["dark_grey"] = colorsByName["dark_gray"]
}

// Named colours.
var (
	Black       = namedColors[0].color
	DarkBlue    = namedColors[1].color
	DarkGreen   = namedColors[2].color
	DarkAqua    = namedColors[3].color
	DarkRed     = namedColors[4].color
	DarkPurple  = namedColors[5].color
	Gold        = namedColors[6].color
	Gray        = namedColors[7].color
	DarkGray    = namedColors[8].color
	Blue        = namedColors[9].color
	Green       = namedColors[10].color
	Aqua        = namedColors[11].color
	Red         = namedColors[12].color
	LightPurple = namedColors[13].color
	Yellow      = namedColors[14].color
	White       = namedColors[15].color
)

// ParseColor accepts a colour name ("red", "DARK_GRAY"), a hex value
// ("#ff5555") or a single legacy code character ("c").
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := colorsByName[strings.ToLower(s)]; ok {
		return c, nil
	}
	if c, ok := parseHex(s); ok {
		return c, nil
	}
	if r := []rune(s); len(r) == 1 {
		if c, ok := colorsByCode[toLowerASCII(r[0])]; ok {
			return c, nil
		}
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// parseTagColor accepts names and hex values but not code characters, which
// would be ambiguous with numeric tag arguments.
func parseTagColor(s string) (Color, bool) {
	if c, ok := colorsByName[strings.ToLower(s)]; ok {
		return c, true
	}
	return parseHex(s)
}

func parseHex(s string) (Color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Hex returns the colour as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Name returns the legacy colour name when c is one of the sixteen named colours.
func (c Color) Name() (string, bool) {
	nc, ok := namesByColor[c]
	return nc.name, ok
}

// Code returns the legacy code character when c is a named colour.
func (c Color) Code() (rune, bool) {
	nc, ok := namesByColor[c]
	return nc.code, ok
}

func (c Color) String() string {
	if name, ok := c.Name(); ok {
		return name
	}
	return c.Hex()
}

func lerpColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// hsvColor converts a hue in [0,1) at full saturation and value.
func hsvColor(h float64) Color {
	h = (h - math.Floor(h)) * 6
	i := int(h) % 6
	f := h - math.Floor(h)
	q := uint8(math.Round(255 * (1 - f)))
	t := uint8(math.Round(255 * f))
	switch i {
	case 0:
		return Color{255, t, 0}
	case 1:
		return Color{q, 255, 0}
	case 2:
		return Color{0, 255, t}
	case 3:
		return Color{0, q, 255}
	case 4:
		return Color{t, 0, 255}
	default:
		return Color{255, 0, q}
	}
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
