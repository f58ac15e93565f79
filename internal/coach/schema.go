package coach

import (
	"strings"

	"github.com/abhisek/mistakecoach/internal/llm"
)

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

// AnalysisSchema is the response contract for Analyze. Voice and
// clarification fields are optional, so the schema is not strict.
var AnalysisSchema = &llm.Schema{
	Name:        "mistake-analysis",
	Description: "A coaching breakdown of one learner mistake",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"learningStatus":   str("One line naming where the learner is"),
			"diagnosis":        str("What went wrong in How You Tried"),
			"rootCause":        str("The underlying reason for the mistake"),
			"correctReasoning": str("The correct line of reasoning"),
			"learningPoint":    str("The concept to remember, a short phrase"),
			"misconceptionTag": str("A short reusable label for the misconception"),
			"confidence": map[string]any{
				"type":        "integer",
				"description": "Confidence in the diagnosis, 0-100",
			},
			"keyInsight":               str("One line the learner should take away"),
			"practiceQuestions":        strList("Exactly 3 quick practice questions"),
			"followUpQuestion":         str("One question to continue the conversation"),
			"moreDetails":              str("Optional deeper explanation"),
			"voiceOnlyResponse":        str("Spoken version of the coaching, audio mode only"),
			"voicePromptLanguage":      str("Spoken language prompt, audio mode only"),
			"voicePromptContext":       str("Spoken problem prompt, audio mode only"),
			"voicePromptAttempt":       str("Spoken attempt prompt, audio mode only"),
			"voiceReprompt":            str("Spoken re-prompt after silence, audio mode only"),
			"voiceFallback":            str("Spoken fallback when audio fails, audio mode only"),
			"detectedCategory":         str("One of: " + categoryList()),
			"needsDomainClarification": map[string]any{"type": "boolean"},
			"clarificationQuestion":    str("Question to ask when the domain is unclear"),
		},
		"required": []any{
			"learningStatus", "diagnosis", "rootCause", "correctReasoning",
			"keyInsight", "practiceQuestions", "followUpQuestion", "detectedCategory",
		},
	},
}

// EvaluationSchema is the response contract for EvaluatePractice.
var EvaluationSchema = &llm.Schema{
	Name:        "practice-evaluation",
	Description: "Grades for a Learning Check of three practice answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":              map[string]any{"type": "integer", "minimum": 0},
			"maxScore":           map[string]any{"type": "integer", "minimum": 1},
			"performanceMessage": str("Learning Check summary in the score-aware tone"),
			"results": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"isCorrect": map[string]any{"type": "boolean"},
						"feedback":  str("Feedback on this answer"),
					},
					"required": []any{"isCorrect", "feedback"},
				},
			},
			"patternExplanation": str("Pattern across the answers, if any"),
			"learningSnapshot":   strList("3-4 bullets summarizing the session"),
		},
		"required": []any{"score", "maxScore", "performanceMessage", "results", "learningSnapshot"},
	},
}

func categoryList() string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if c != CategoryAuto {
			names = append(names, string(c))
		}
	}
	return strings.Join(names, ", ")
}
