// SPDX-License-Identifier: MIT

package parser

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func renderer(profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	return r
}

func TestRenderANSIWithoutColors(t *testing.T) {
	c := mustParse(t, plainParser(t), "<red>Hello</red>\n<bold>World</bold>\n\n&oend")
	assert.Equal(t, c.PlainText(), RenderANSIWith(renderer(termenv.Ascii), c))
}

func TestRenderANSITrueColor(t *testing.T) {
	c := mustParse(t, plainParser(t), "<#123456>a</#123456>\n<b>b</b>")
	out := RenderANSIWith(renderer(termenv.TrueColor), c)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "a")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	lines := strings.Split(out, "\n")
	assert.NotEqual(t, "a", lines[0])
	assert.NotEqual(t, "b", lines[1])
}

func TestRenderANSIEmpty(t *testing.T) {
	assert.Equal(t, "", RenderANSIWith(renderer(termenv.TrueColor), Component{}))
}
