// Package learner holds the persisted learner state: the profile, the
// bounded history of analyses and the UI theme.
package learner

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/store"
)

// Storage keys.
const (
	ProfileKey = "emm_user_profile_v1"
	HistoryKey = "emm_diagnostic_history_v1"
	ThemeKey   = "emm_theme_mode"
)

// HistoryLimit is the maximum number of history entries kept.
const HistoryLimit = 15

// UnspecifiedTag counts results that carry no misconception tag.
const UnspecifiedTag = "Unspecified"

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Profile is the learner's aggregate record.
type Profile struct {
	UserName            string         `json:"userName,omitempty"`
	AgeGroup            coach.AgeGroup `json:"ageGroup,omitempty"`
	ParentalConsent     *bool          `json:"parentalConsent,omitempty"`
	TotalDiagnostics    int            `json:"totalDiagnostics"`
	MisconceptionCounts map[string]int `json:"misconceptionCounts"`
	CategoryStats       map[string]int `json:"categoryStats"`
	LastActive          int64          `json:"lastActive"`
	JoinedDate          int64          `json:"joinedDate"`
	Streak              int            `json:"streak"`
}

// HasConsent reports whether parental consent was given.
func (p Profile) HasConsent() bool {
	return p.ParentalConsent != nil && *p.ParentalConsent
}

// IsChild reports whether the learner is in a child age bracket.
func (p Profile) IsChild() bool {
	return p.AgeGroup.IsChild()
}

// Personalized reports whether the setup gate has been completed.
func (p Profile) Personalized() bool {
	return p.UserName != "" && p.AgeGroup != ""
}

// Entry is one saved analysis. Entries are never modified.
type Entry struct {
	ID                      string                `json:"id"`
	Category                coach.Category        `json:"category"`
	Question                string                `json:"question"`
	StudentAnswer           string                `json:"studentAnswer"`
	CorrectAnswer           string                `json:"correctAnswer,omitempty"`
	ImagePreview            string                `json:"imagePreview,omitempty"`
	OutputLanguage          string                `json:"outputLanguage"`
	LearningMode            coach.Mode            `json:"learningMode"`
	AccessibilityPreference coach.Preference      `json:"accessibilityPreference,omitempty"`
	Analysis                *coach.AnalysisResult `json:"analysis,omitempty"`
	Timestamp               int64                 `json:"timestamp"`
}

// Time returns the entry timestamp.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// NewEntry builds a history entry for a submission and its result.
func NewEntry(in coach.AnalyzeInput, imagePreview string, res *coach.AnalysisResult, now time.Time) Entry {
	cat := in.Category
	if res != nil && (cat == "" || cat == coach.CategoryAuto) {
		cat = res.DetectedCategory
	}
	return Entry{
		ID:                      uuid.NewString(),
		Category:                cat,
		Question:                in.Problem,
		StudentAnswer:           in.Attempt,
		CorrectAnswer:           in.CorrectAnswer,
		ImagePreview:            imagePreview,
		OutputLanguage:          in.Language,
		LearningMode:            in.Mode,
		AccessibilityPreference: in.Preference,
		Analysis:                res,
		Timestamp:               now.UnixMilli(),
	}
}

// State is the in-memory learner state backed by a key-value store.
// Every mutation is written through immediately.
type State struct {
	kv  store.KVRepo
	now func() time.Time

	mu      sync.RWMutex
	profile Profile
	history []Entry
	theme   Theme
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// Load reads the persisted state. Missing or corrupt entries fall back to
// defaults.
func Load(ctx context.Context, kv store.KVRepo, opts ...Option) (*State, error) {
	s := &State{kv: kv, now: time.Now, theme: ThemeLight}
	for _, o := range opts {
		o(s)
	}
	s.profile = defaultProfile(s.now())

	if err := loadJSON(ctx, kv, ProfileKey, &s.profile); err != nil {
		return nil, err
	}
	s.profile.ensureMaps()

	if err := loadJSON(ctx, kv, HistoryKey, &s.history); err != nil {
		return nil, err
	}
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}

	theme, ok, err := kv.Get(ctx, ThemeKey)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	if ok && (Theme(theme) == ThemeDark || Theme(theme) == ThemeLight) {
		s.theme = Theme(theme)
	}
	return s, nil
}

func loadJSON(ctx context.Context, kv store.KVRepo, key string, v any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("discarding unreadable learner state", "key", key, "err", err)
	}
	return nil
}

func saveJSON(ctx context.Context, kv store.KVRepo, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Put(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func defaultProfile(now time.Time) Profile {
	return Profile{
		MisconceptionCounts: map[string]int{},
		CategoryStats:       map[string]int{},
		LastActive:          now.UnixMilli(),
		JoinedDate:          now.UnixMilli(),
	}
}

func (p *Profile) ensureMaps() {
	if p.MisconceptionCounts == nil {
		p.MisconceptionCounts = map[string]int{}
	}
	if p.CategoryStats == nil {
		p.CategoryStats = map[string]int{}
	}
}

func (p Profile) clone() Profile {
	p.MisconceptionCounts = maps.Clone(p.MisconceptionCounts)
	p.CategoryStats = maps.Clone(p.CategoryStats)
	return p
}

// Profile returns a copy of the profile.
func (s *State) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.clone()
}

// History returns the entries, newest first.
func (s *State) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Theme returns the current theme.
func (s *State) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetPersonalization saves the setup gate answers. Consent only applies to
// child brackets; other brackets are always treated as consented.
func (s *State) SetPersonalization(ctx context.Context, name string, age coach.AgeGroup, consent bool) error {
	if !age.IsChild() {
		consent = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile.clone()
	p.UserName = name
	p.AgeGroup = age
	p.ParentalConsent = &consent
	if err := saveJSON(ctx, s.kv, ProfileKey, p); err != nil {
		return err
	}
	s.profile = p
	return nil
}

// RecordAnalysis prepends e to the history and updates the profile
// counters and daily streak.
func (s *State) RecordAnalysis(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append([]Entry{e}, s.history...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}

	now := s.now()
	tag := UnspecifiedTag
	cat := e.Category
	if e.Analysis != nil {
		if e.Analysis.MisconceptionTag != "" {
			tag = e.Analysis.MisconceptionTag
		}
		if e.Analysis.DetectedCategory != "" {
			cat = e.Analysis.DetectedCategory
		}
	}
	p := s.profile.clone()
	p.MisconceptionCounts[tag]++
	p.CategoryStats[string(cat)]++
	p.TotalDiagnostics++
	p.Streak = nextStreak(p.Streak, time.UnixMilli(p.LastActive), now, p.TotalDiagnostics == 1)
	p.LastActive = now.UnixMilli()

	hb, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode %s: %w", HistoryKey, err)
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ProfileKey, err)
	}
	if err := s.kv.PutAll(ctx, map[string]string{HistoryKey: string(hb), ProfileKey: string(pb)}); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	s.profile, s.history = p, history
	return nil
}

// nextStreak advances a daily streak: the same calendar day keeps it, the
// next day extends it, and any longer gap restarts it at 1.
func nextStreak(streak int, last, now time.Time, first bool) int {
	if first || streak == 0 {
		return 1
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	switch days := int(today.Sub(lastDay).Hours() / 24); {
	case days <= 0:
		return streak
	case days == 1:
		return streak + 1
	default:
		return 1
	}
}

// SetTheme persists the theme.
func (s *State) SetTheme(ctx context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Put(ctx, ThemeKey, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = t
	return nil
}

// ToggleTheme flips and persists the theme, returning the new one.
func (s *State) ToggleTheme(ctx context.Context) (Theme, error) {
	t := s.Theme().Toggle()
	return t, s.SetTheme(ctx, t)
}

// Reset deletes the profile and history and restores defaults. The theme
// is kept.
func (s *State) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, ProfileKey, HistoryKey); err != nil {
		return fmt.Errorf("reset learner state: %w", err)
	}
	s.profile = defaultProfile(s.now())
	s.history = nil
	return nil
}

// IsFirstSession reports whether no analysis has been recorded yet.
func (s *State) IsFirstSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history) == 0
}

// Personalize fills the learner-specific fields of an analysis request.
func (s *State) Personalize(in coach.AnalyzeInput) coach.AnalyzeInput {
	p := s.Profile()
	in.LearnerName = p.UserName
	in.PreviousTags = s.PreviousTags()
	in.FirstSession = s.IsFirstSession()
	in.Consent = p.HasConsent()
	return in
}

// PreviousTags returns the distinct misconception tags in the history,
// newest first.
func (s *State) PreviousTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tags []string
	for _, e := range s.history {
		if e.Analysis == nil || e.Analysis.MisconceptionTag == "" {
			continue
		}
		if !slices.Contains(tags, e.Analysis.MisconceptionTag) {
			tags = append(tags, e.Analysis.MisconceptionTag)
		}
	}
	return tags
}

// Count is a labelled tally.
type Count struct {
	Label string
	Count int
}

// TopMisconceptions returns up to n tags by count, highest first. Ties
// sort by label.
func (s *State) TopMisconceptions(n int) []Count {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := sortedCounts(s.profile.MisconceptionCounts)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Share is a category with its percentage of all analyses.
type Share struct {
	Category string
	Count    int
	Percent  int
}

// CategoryShare returns each category's share of the recorded analyses.
func (s *State) CategoryShare() []Share {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, v := range s.profile.CategoryStats {
		total += v
	}
	var out []Share
	for _, c := range sortedCounts(s.profile.CategoryStats) {
		out = append(out, Share{Category: c.Label, Count: c.Count, Percent: c.Count * 100 / total})
	}
	return out
}

// ConceptCount is the number of distinct misconceptions seen.
func (s *State) ConceptCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profile.MisconceptionCounts)
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
