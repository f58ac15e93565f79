package coach

import (
	"errors"
	"slices"
)

// Category is the subject area of a problem.
type Category string

const (
	CategoryAuto    Category = "Auto-Detect"
	CategoryCoding  Category = "Coding"
	CategoryMath    Category = "Mathematics"
	CategoryWriting Category = "Writing"
	CategoryLogic   Category = "Logic/Reasoning"
	CategoryScience Category = "Science"
	CategoryGeneral Category = "General Knowledge"
	CategoryOther   Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAuto, CategoryCoding, CategoryMath, CategoryWriting,
	CategoryLogic, CategoryScience, CategoryGeneral, CategoryOther,
}

// NormalizeCategory maps a model-reported category onto a known one.
// Empty, unknown and Auto-Detect values become General Knowledge.
func NormalizeCategory(s string) Category {
	c := Category(s)
	if c == CategoryAuto || !slices.Contains(Categories, c) {
		return CategoryGeneral
	}
	return c
}

// Mode is the teaching style.
type Mode string

const (
	ModeStandard      Mode = "Standard"
	ModeKids          Mode = "Kids Mode"
	ModeAccessibility Mode = "Accessibility Mode"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeStandard, ModeKids, ModeAccessibility}

// Preference is the accessibility preference.
type Preference string

const (
	PreferenceNone  Preference = ""
	PreferenceAudio Preference = "Audio Mode"
	PreferenceText  Preference = "Text Mode"
)

// AgeGroup is the learner's age bracket.
type AgeGroup string

const (
	Age6to9   AgeGroup = "6–9"
	Age10to12 AgeGroup = "10–12"
	Age13to15 AgeGroup = "13–15"
	Age16to17 AgeGroup = "16–17"
	Age18Plus AgeGroup = "18+"
)

// AgeGroups lists every bracket in display order.
var AgeGroups = []AgeGroup{Age6to9, Age10to12, Age13to15, Age16to17, Age18Plus}

// IsChild reports whether the bracket requires parental consent and
// selects Kids mode.
func (a AgeGroup) IsChild() bool {
	return a == Age6to9 || a == Age10to12
}

// Languages lists the supported output languages. "Auto" answers in the
// language of the problem.
var Languages = []string{
	"Auto", "English", "Spanish", "French", "German",
	"Chinese", "Japanese", "Korean", "Portuguese", "Italian",
}

// PracticeCount is how many practice questions a result exposes.
const PracticeCount = 3

// AnalysisResult is the structured coaching response for one mistake.
type AnalysisResult struct {
	LearningStatus           string   `json:"learningStatus"`
	Diagnosis                string   `json:"diagnosis"`
	RootCause                string   `json:"rootCause"`
	CorrectReasoning         string   `json:"correctReasoning"`
	LearningPoint            string   `json:"learningPoint,omitempty"`
	MisconceptionTag         string   `json:"misconceptionTag,omitempty"`
	Confidence               int      `json:"confidence,omitempty"`
	KeyInsight               string   `json:"keyInsight"`
	PracticeQuestions        []string `json:"practiceQuestions"`
	FollowUpQuestion         string   `json:"followUpQuestion"`
	MoreDetails              string   `json:"moreDetails,omitempty"`
	VoiceOnlyResponse        string   `json:"voiceOnlyResponse,omitempty"`
	VoicePromptLanguage      string   `json:"voicePromptLanguage,omitempty"`
	VoicePromptContext       string   `json:"voicePromptContext,omitempty"`
	VoicePromptAttempt       string   `json:"voicePromptAttempt,omitempty"`
	VoiceReprompt            string   `json:"voiceReprompt,omitempty"`
	VoiceFallback            string   `json:"voiceFallback,omitempty"`
	DetectedCategory         Category `json:"detectedCategory"`
	NeedsDomainClarification bool     `json:"needsDomainClarification,omitempty"`
	ClarificationQuestion    string   `json:"clarificationQuestion,omitempty"`
}

// PracticeSet returns at most the first PracticeCount practice questions.
func (r *AnalysisResult) PracticeSet() []string {
	if r == nil {
		return nil
	}
	if len(r.PracticeQuestions) > PracticeCount {
		return r.PracticeQuestions[:PracticeCount]
	}
	return r.PracticeQuestions
}

// IsConsentRequired reports whether r is the local consent advisory.
func (r *AnalysisResult) IsConsentRequired() bool {
	return r != nil && r.MisconceptionTag == consentTag
}

// SpokenSummary is what the voice surfaces read aloud for a result.
func (r *AnalysisResult) SpokenSummary() string {
	if r.VoiceOnlyResponse != "" {
		return r.VoiceOnlyResponse
	}
	return r.Diagnosis + " " + r.KeyInsight
}

// PracticeResult grades one practice answer.
type PracticeResult struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// PracticeEvaluation grades a full practice submission.
type PracticeEvaluation struct {
	Score              int              `json:"score"`
	MaxScore           int              `json:"maxScore"`
	PerformanceMessage string           `json:"performanceMessage"`
	Results            []PracticeResult `json:"results"`
	PatternExplanation string           `json:"patternExplanation,omitempty"`
	LearningSnapshot   []string         `json:"learningSnapshot"`
}

// User-facing failures. Callers show err.Error() of these directly.
var (
	ErrFormat   = errors.New("I couldn't format the coaching session. Please try again.")
	ErrEvaluate = errors.New("I couldn't evaluate your answers. Please try again.")
)

// UserMessage returns the message to show a learner for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return ErrFormat.Error()
	case errors.Is(err, ErrEvaluate):
		return ErrEvaluate.Error()
	}
	return err.Error()
}

const consentTag = "Consent Required"

// ConsentRequiredResult is returned instead of calling the model when Kids
// mode is used without parental consent.
func ConsentRequiredResult() *AnalysisResult {
	return &AnalysisResult{
		LearningStatus:   "Consent Required",
		Diagnosis:        "Parental consent is required to continue. Please confirm to start learning.",
		RootCause:        "Awaiting parent authorization.",
		CorrectReasoning: "Safety is our priority. Please ask a parent or guardian to check the consent box in your profile settings.",
		KeyInsight:       "Parental consent is needed to unlock full learning!",
		PracticeQuestions: []string{
			"Is parental consent given? (True/False)",
			"Is safety important? (True/False)",
			"Ready to learn soon? (True/False)",
		},
		FollowUpQuestion: "Can you ask a parent to verify the settings?",
		MisconceptionTag: consentTag,
		Confidence:       100,
		LearningPoint:    "Safety and Consent",
		DetectedCategory: CategoryGeneral,
	}
}

// AllowedModes returns the teaching modes offered to an age bracket.
// Child brackets always learn in Kids mode.
func AllowedModes(a AgeGroup) []Mode {
	if a.IsChild() {
		return []Mode{ModeKids}
	}
	return []Mode{ModeStandard, ModeAccessibility}
}
