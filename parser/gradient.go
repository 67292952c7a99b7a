// SPDX-License-Identifier: MIT

package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// painter assigns a colour to rune i of n.
type painter interface {
	colorAt(i, n int) Color
}

type gradient struct {
	stops []Color
	phase float64
}

func parseGradient(args []string) (gradient, error) {
	g := gradient{}
	for i, arg := range args {
		if c, ok := parseTagColor(arg); ok {
			g.stops = append(g.stops, c)
			continue
		}
		phase, err := strconv.ParseFloat(arg, 64)
		if err != nil || i != len(args)-1 {
			return gradient{}, fmt.Errorf("gradient argument %q is neither a colour nor a trailing phase", arg)
		}
		if math.IsNaN(phase) || phase < -1 || phase > 1 {
			return gradient{}, fmt.Errorf("gradient phase %g outside [-1, 1]", phase)
		}
		g.phase = phase
	}
	switch len(g.stops) {
	case 0:
		g.stops = []Color{White, Black}
	case 1:
		return gradient{}, fmt.Errorf("gradient needs at least two colours")
	}
	return g, nil
}

func (g gradient) colorAt(i, n int) Color {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	if g.phase != 0 {
		t = math.Mod(t+g.phase+2, 1)
	}
	segments := len(g.stops) - 1
	pos := t * float64(segments)
	seg := int(pos)
	if seg >= segments {
		seg = segments - 1
	}
	return lerpColor(g.stops[seg], g.stops[seg+1], pos-float64(seg))
}

type rainbow struct {
	reversed bool
	phase    float64
}

func parseRainbow(args []string) (rainbow, error) {
	r := rainbow{}
	switch len(args) {
	case 0:
		return r, nil
	case 1:
	default:
		return rainbow{}, fmt.Errorf("rainbow takes at most one argument")
	}
	arg := args[0]
	if strings.HasPrefix(arg, "!") {
		r.reversed = true
		arg = arg[1:]
	}
	if arg == "" {
		return r, nil
	}
	phase, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(phase) || math.IsInf(phase, 0) {
		return rainbow{}, fmt.Errorf("invalid rainbow phase %q", args[0])
	}
	r.phase = phase
	return r, nil
}

func (r rainbow) colorAt(i, n int) Color {
	h := float64(i)/float64(max(n, 1)) + r.phase
	if r.reversed {
		h = -h
	}
	return hsvColor(h)
}

// paint colours every rune under c that has no explicit colour in the
// subtree. Runes with explicit colours still advance the position so the
// gradient stays continuous across them.
func paint(c *Component, p painter) {
	n := runeCount(*c)
	if n == 0 {
		return
	}
	idx := 0
	paintNode(c, p, n, &idx, false)
}

func paintNode(c *Component, p painter, n int, idx *int, colored bool) {
	colored = colored || c.Style.Color != nil
	var runes []Component
	if c.Text != "" {
		if colored {
			*idx += utf8.RuneCountInString(c.Text)
		} else {
			for _, r := range c.Text {
				col := p.colorAt(*idx, n)
				runes = append(runes, Component{Text: string(r), Style: Style{Color: &col}})
				*idx++
			}
			c.Text = ""
		}
	}
	for i := range c.Children {
		paintNode(&c.Children[i], p, n, idx, colored)
	}
	if len(runes) > 0 {
		c.Children = append(runes, c.Children...)
	}
}
