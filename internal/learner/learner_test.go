package learner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/store"
)

func openKV(t *testing.T) store.KVRepo {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.KV()
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func entry(tag string, cat coach.Category) Entry {
	in := coach.AnalyzeInput{Category: coach.CategoryAuto, Problem: "p", Attempt: "a", Mode: coach.ModeStandard}
	res := &coach.AnalysisResult{Diagnosis: "d", MisconceptionTag: tag, DetectedCategory: cat}
	return NewEntry(in, "", res, time.Now())
}

func TestLoad_Defaults(t *testing.T) {
	kv := openKV(t)

	s, err := Load(context.Background(), kv)
	require.NoError(t, err)

	p := s.Profile()
	assert.Equal(t, 0, p.TotalDiagnostics)
	assert.NotNil(t, p.MisconceptionCounts)
	assert.False(t, p.Personalized())
	assert.Empty(t, s.History())
	assert.Equal(t, ThemeLight, s.Theme())
	assert.True(t, s.IsFirstSession())
}

func TestLoad_CorruptProfileFallsBack(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, ProfileKey, "{not json"))
	require.NoError(t, kv.Put(ctx, ThemeKey, "purple"))

	s, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Profile().TotalDiagnostics)
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestSetPersonalization(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, s.SetPersonalization(ctx, "Ria", coach.Age6to9, false))
	p := s.Profile()
	assert.True(t, p.IsChild())
	assert.False(t, p.HasConsent())

	require.NoError(t, s.SetPersonalization(ctx, "Sam", coach.Age16to17, false))
	assert.True(t, s.Profile().HasConsent(), "non-child brackets are always consented")

	reloaded, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "Sam", reloaded.Profile().UserName)
	assert.True(t, reloaded.Profile().Personalized())
}

func TestRecordAnalysis_UpdatesCounters(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, s.RecordAnalysis(ctx, entry("Adds denominators", coach.CategoryMath)))
	require.NoError(t, s.RecordAnalysis(ctx, entry("", coach.CategoryCoding)))
	require.NoError(t, s.RecordAnalysis(ctx, entry("Adds denominators", coach.CategoryMath)))

	p := s.Profile()
	assert.Equal(t, 3, p.TotalDiagnostics)
	assert.Equal(t, 2, p.MisconceptionCounts["Adds denominators"])
	assert.Equal(t, 1, p.MisconceptionCounts[UnspecifiedTag])
	assert.Equal(t, 2, p.CategoryStats["Mathematics"])
	assert.False(t, s.IsFirstSession())
	assert.Equal(t, []string{"Adds denominators"}, s.PreviousTags())
	assert.Equal(t, 2, s.ConceptCount())

	top := s.TopMisconceptions(5)
	require.Len(t, top, 2)
	assert.Equal(t, Count{Label: "Adds denominators", Count: 2}, top[0])

	share := s.CategoryShare()
	require.Len(t, share, 2)
	assert.Equal(t, Share{Category: "Mathematics", Count: 2, Percent: 66}, share[0])

	reloaded, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Len(t, reloaded.History(), 3)
	assert.Equal(t, 3, reloaded.Profile().TotalDiagnostics)
}

// brokenKV reads normally and fails every write.
type brokenKV struct{ store.KVRepo }

var errDiskFull = errors.New("disk full")

func (brokenKV) Put(context.Context, string, string) error { return errDiskFull }
func (brokenKV) PutAll(context.Context, map[string]string) error { return errDiskFull }

func TestFailedWritesLeaveStateUntouched(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, s.SetPersonalization(ctx, "ana", coach.Age18Plus, false))
	require.NoError(t, s.RecordAnalysis(ctx, entry("Adds denominators", coach.CategoryMath)))
	before := s.Profile()

	s.kv = brokenKV{kv}
	assert.ErrorIs(t, s.RecordAnalysis(ctx, entry("Off by one", coach.CategoryCoding)), errDiskFull)
	assert.ErrorIs(t, s.SetPersonalization(ctx, "bo", coach.Age6to9, true), errDiskFull)
	assert.ErrorIs(t, s.SetTheme(ctx, ThemeDark), errDiskFull)

	assert.Equal(t, before, s.Profile())
	assert.Len(t, s.History(), 1)
	assert.Equal(t, ThemeLight, s.Theme())

	reloaded, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, before.TotalDiagnostics, reloaded.Profile().TotalDiagnostics)
	assert.Equal(t, "ana", reloaded.Profile().UserName)
	assert.Len(t, reloaded.History(), 1)
}

func TestRecordAnalysis_HistoryCapped(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)

	var first Entry
	for i := range HistoryLimit + 1 {
		e := entry(fmt.Sprintf("tag-%d", i), coach.CategoryMath)
		if i == 0 {
			first = e
		}
		require.NoError(t, s.RecordAnalysis(ctx, e))
	}

	h := s.History()
	require.Len(t, h, HistoryLimit)
	assert.Equal(t, "tag-15", h[0].Analysis.MisconceptionTag, "newest first")
	for _, e := range h {
		assert.NotEqual(t, first.ID, e.ID, "oldest entry evicted")
	}
	assert.Equal(t, HistoryLimit+1, s.Profile().TotalDiagnostics)
}

func TestRecordAnalysis_Streak(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)}
	s, err := Load(ctx, kv, WithClock(c.now))
	require.NoError(t, err)

	record := func() int {
		require.NoError(t, s.RecordAnalysis(ctx, entry("x", coach.CategoryMath)))
		return s.Profile().Streak
	}

	assert.Equal(t, 1, record())
	c.t = c.t.Add(3 * time.Hour)
	assert.Equal(t, 1, record(), "same day keeps the streak")
	c.t = c.t.Add(24 * time.Hour)
	assert.Equal(t, 2, record(), "next day extends it")
	c.t = c.t.Add(24 * time.Hour)
	assert.Equal(t, 3, record())
	c.t = c.t.Add(72 * time.Hour)
	assert.Equal(t, 1, record(), "a gap restarts it")
}

func TestReset(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)

	require.NoError(t, s.SetPersonalization(ctx, "Ria", coach.Age10to12, true))
	require.NoError(t, s.SetTheme(ctx, ThemeDark))
	require.NoError(t, s.RecordAnalysis(ctx, entry("x", coach.CategoryMath)))

	require.NoError(t, s.Reset(ctx))

	p := s.Profile()
	assert.Equal(t, 0, p.TotalDiagnostics)
	assert.False(t, p.Personalized())
	assert.Empty(t, s.History())
	assert.Equal(t, ThemeDark, s.Theme())

	_, ok, err := kv.Get(ctx, ProfileKey)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Profile().TotalDiagnostics)
	assert.Empty(t, reloaded.History())
}

func TestToggleTheme(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)

	got, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)

	v, ok, err := kv.Get(ctx, ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestNewEntry_UsesDetectedCategoryForAuto(t *testing.T) {
	in := coach.AnalyzeInput{Category: coach.CategoryAuto, Problem: "why is the sky blue", Language: "Auto"}
	res := &coach.AnalysisResult{DetectedCategory: coach.CategoryScience}

	e := NewEntry(in, "", res, time.UnixMilli(1700000000000))
	assert.Equal(t, coach.CategoryScience, e.Category)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(1700000000000), e.Timestamp)

	in.Category = coach.CategoryWriting
	assert.Equal(t, coach.CategoryWriting, NewEntry(in, "", res, time.Now()).Category)
}

func TestPersonalize(t *testing.T) {
	kv := openKV(t)
	ctx := context.Background()
	s, err := Load(ctx, kv)
	require.NoError(t, err)
	require.NoError(t, s.SetPersonalization(ctx, "Ria", coach.Age10to12, true))

	in := s.Personalize(coach.AnalyzeInput{Problem: "1/2 + 1/3"})
	assert.Equal(t, "Ria", in.LearnerName)
	assert.True(t, in.FirstSession)
	assert.True(t, in.Consent)
	assert.Empty(t, in.PreviousTags)

	require.NoError(t, s.RecordAnalysis(ctx, entry("Adds denominators", coach.CategoryMath)))
	in = s.Personalize(in)
	assert.False(t, in.FirstSession)
	assert.Equal(t, []string{"Adds denominators"}, in.PreviousTags)
}
