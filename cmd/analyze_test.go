package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
)

func flagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "analyze"}
	addAnalyzeFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want coach.Mode
		ok   bool
	}{
		{"kids", coach.ModeKids, true},
		{"Kids Mode", coach.ModeKids, true},
		{"STANDARD", coach.ModeStandard, true},
		{"accessibility", coach.ModeAccessibility, true},
		{"turbo", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := parseCategory("mathematics")
	require.True(t, ok)
	assert.Equal(t, coach.CategoryMath, c)

	c, ok = parseCategory("logic/reasoning")
	require.True(t, ok)
	assert.Equal(t, coach.CategoryLogic, c)

	_, ok = parseCategory("astrology")
	assert.False(t, ok)
}

func TestAnalyzeInput_Defaults(t *testing.T) {
	c := flagsCmd(t, "-p", " 1/2 + 1/3 ", "-a", "2/5")
	in, img, err := analyzeInput(c, learner.Profile{AgeGroup: coach.Age18Plus})
	require.NoError(t, err)
	assert.Empty(t, img)
	assert.Equal(t, "1/2 + 1/3", in.Problem)
	assert.Equal(t, coach.CategoryAuto, in.Category)
	assert.Equal(t, coach.ModeStandard, in.Mode)
}

func TestAnalyzeInput_ChildGetsKidsMode(t *testing.T) {
	c := flagsCmd(t, "-p", "2+2", "-a", "5")
	in, _, err := analyzeInput(c, learner.Profile{AgeGroup: coach.Age6to9})
	require.NoError(t, err)
	assert.Equal(t, coach.ModeKids, in.Mode)

	c = flagsCmd(t, "-p", "2+2", "-a", "5", "-m", "standard")
	_, _, err = analyzeInput(c, learner.Profile{AgeGroup: coach.Age6to9})
	assert.ErrorContains(t, err, "not available")
}

func TestAnalyzeInput_Validation(t *testing.T) {
	_, _, err := analyzeInput(flagsCmd(t, "-a", "5"), learner.Profile{})
	assert.ErrorContains(t, err, "--problem")

	_, _, err = analyzeInput(flagsCmd(t, "-p", "2+2"), learner.Profile{})
	assert.ErrorContains(t, err, "--attempt")

	_, _, err = analyzeInput(flagsCmd(t, "-p", "2+2", "-a", "5", "-c", "astrology"), learner.Profile{})
	assert.ErrorContains(t, err, "unknown category")
}

func TestAnalyzeInput_ImageOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	require.NoError(t, os.WriteFile(path, png, 0o644))

	in, img, err := analyzeInput(flagsCmd(t, "--image", path, "-a", "I guessed"), learner.Profile{})
	require.NoError(t, err)
	assert.Equal(t, path, img)
	require.NotNil(t, in.Image)
	assert.Equal(t, "image/png", in.Image.MIMEType)
}
