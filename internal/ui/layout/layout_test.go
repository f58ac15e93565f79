package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	s := "a\nb\nc\nd\ne"

	out, off := Clip(s, 1, 2)
	assert.Equal(t, "b\nc", out)
	assert.Equal(t, 1, off)

	out, off = Clip(s, 10, 2)
	assert.Equal(t, "d\ne", out)
	assert.Equal(t, 3, off)

	out, off = Clip(s, -4, 3)
	assert.Equal(t, "a\nb\nc", out)
	assert.Equal(t, 0, off)

	out, off = Clip(s, 2, 10)
	assert.Equal(t, s, out)
	assert.Equal(t, 0, off)
}

func TestSpreadCentresMiddle(t *testing.T) {
	out := spread("ab", "mid", "xy", 21)
	assert.Equal(t, 21, lipgloss.Width(out))
	assert.Equal(t, 9, strings.Index(out, "mid"))
	assert.True(t, strings.HasSuffix(out, "xy"))
}

func TestSpreadKeepsGapsWhenCrowded(t *testing.T) {
	out := spread("left", "middle", "right", 5)
	assert.Equal(t, "left middle right", out)
}

func TestIsTooSmall(t *testing.T) {
	assert.False(t, IsTooSmall(MinWidth, MinHeight))
	assert.True(t, IsTooSmall(MinWidth-1, MinHeight))
	assert.True(t, IsTooSmall(MinWidth, MinHeight-1))
}

func TestRenderHeaderShowsLearner(t *testing.T) {
	out := RenderHeader("Home", HeaderInfo{Name: "Ada", Streak: 3}, 100)
	assert.Contains(t, out, "Mistake Coach")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "★ 3 day")
	assert.Contains(t, out, "☀")
}

func TestRenderFrameFillsHeight(t *testing.T) {
	out := RenderFrame("head", "body", "foot", 20, 10)
	assert.Equal(t, 10, lipgloss.Height(out))
}
