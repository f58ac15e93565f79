package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one mistake and print the coaching breakdown",
	Example: `  mistakecoach analyze -p "1/2 + 1/3" -a "2/5"
  mistakecoach analyze --image worksheet.png -a "I carried the 1 twice" --extras`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in, imagePath, err := analyzeInput(cmd, e.learner.Profile())
		if err != nil {
			return err
		}
		in = e.learner.Personalize(in)

		ctx := cmd.Context()
		res, err := e.coach.Analyze(ctx, in)
		if err != nil {
			return errors.New(coach.UserMessage(err))
		}
		if !res.IsConsentRequired() {
			if err := e.learner.RecordAnalysis(ctx, learner.NewEntry(in, imagePath, res, time.Now())); err != nil {
				return fmt.Errorf("record analysis: %w", err)
			}
		}

		var extras *coach.Extras
		if want, _ := cmd.Flags().GetBool("extras"); want && !res.IsConsentRequired() {
			alt, ex := coach.ExtrasFor(in, res)
			x := e.coach.Extras(ctx, alt, ex)
			extras = &x
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out := struct {
				*coach.AnalysisResult
				AlternativeExplanation string `json:"alternativeExplanation,omitempty"`
				RealLifeExample        string `json:"realLifeExample,omitempty"`
			}{AnalysisResult: res}
			if extras != nil {
				out.AlternativeExplanation = extras.Alternative
				out.RealLifeExample = extras.Example
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printAnalysis(res, extras)
		return nil
	},
}

// analyzeInput builds the request from flags. The mode defaults to the
// first one offered to the learner's age bracket.
func analyzeInput(cmd *cobra.Command, p learner.Profile) (coach.AnalyzeInput, string, error) {
	f := cmd.Flags()
	problem, _ := f.GetString("problem")
	attempt, _ := f.GetString("attempt")
	correct, _ := f.GetString("correct")
	category, _ := f.GetString("category")
	language, _ := f.GetString("language")
	mode, _ := f.GetString("mode")
	imagePath, _ := f.GetString("image")

	in := coach.AnalyzeInput{
		Category:      coach.CategoryAuto,
		Problem:       strings.TrimSpace(problem),
		Attempt:       strings.TrimSpace(attempt),
		CorrectAnswer: strings.TrimSpace(correct),
		Language:      language,
	}
	if category != "" {
		c, ok := parseCategory(category)
		if !ok {
			return in, "", fmt.Errorf("unknown category %q", category)
		}
		in.Category = c
	}

	allowed := coach.AllowedModes(p.AgeGroup)
	in.Mode = allowed[0]
	if mode != "" {
		m, ok := parseMode(mode)
		if !ok || !slices.Contains(allowed, m) {
			return in, "", fmt.Errorf("mode %q is not available for this learner", mode)
		}
		in.Mode = m
	}

	if imagePath != "" {
		img, err := coach.LoadImage(imagePath)
		if err != nil {
			return in, "", err
		}
		in.Image = img
	}
	if in.Problem == "" && in.Image == nil {
		return in, "", errors.New("tell me the problem you're working on (--problem) or attach a screenshot (--image)")
	}
	if in.Attempt == "" {
		return in, "", errors.New("tell me how you tried to solve it (--attempt)")
	}
	return in, imagePath, nil
}

func parseCategory(s string) (coach.Category, bool) {
	for _, c := range coach.Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// parseMode accepts a mode's display name or its first word, e.g. "kids".
func parseMode(s string) (coach.Mode, bool) {
	for _, m := range coach.Modes {
		first, _, _ := strings.Cut(string(m), " ")
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, first) {
			return m, true
		}
	}
	return "", false
}

func printAnalysis(r *coach.AnalysisResult, extras *coach.Extras) {
	sep := strings.Repeat("─", 60)

	fmt.Printf("%s  ·  %s", r.LearningStatus, r.DetectedCategory)
	if r.Confidence > 0 {
		fmt.Printf("  ·  %d%% confident", r.Confidence)
	}
	fmt.Println()
	if r.MisconceptionTag != "" {
		fmt.Printf("Misconception: %s\n", r.MisconceptionTag)
	}
	if r.NeedsDomainClarification && r.ClarificationQuestion != "" {
		fmt.Printf("\n%s\n", r.ClarificationQuestion)
	}

	section := func(title, body string) {
		if body == "" {
			return
		}
		fmt.Println()
		fmt.Println(title)
		fmt.Println(sep)
		fmt.Println(body)
	}
	section("What went wrong", r.Diagnosis)
	section("Why it happened", r.RootCause)
	section("The right way", r.CorrectReasoning)
	section("Key insight", r.KeyInsight)
	section("More details", r.MoreDetails)

	if qs := r.PracticeSet(); len(qs) > 0 {
		fmt.Println()
		fmt.Println("Practice")
		fmt.Println(sep)
		for i, q := range qs {
			fmt.Printf("%d. %s\n", i+1, q)
		}
	}
	section("Think about it", r.FollowUpQuestion)

	if extras != nil {
		section("Another way to see it", extras.Alternative)
		section("In real life", extras.Example)
	}
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}

func addAnalyzeFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringP("problem", "p", "", "The problem or question you were working on")
	f.StringP("attempt", "a", "", "How you tried to solve it")
	f.String("correct", "", "The correct answer, if you know it")
	f.StringP("category", "c", "", "Subject: Coding, Mathematics, Writing, Logic/Reasoning, Science, General Knowledge, Other (default auto-detect)")
	f.StringP("language", "l", "", "Language for the explanation (default English)")
	f.StringP("mode", "m", "", "Teaching mode: standard, kids or accessibility")
	f.String("image", "", "Path to a screenshot of the problem")
	f.Bool("extras", false, "Also fetch an alternative explanation and a real-life example")
	f.Bool("json", false, "Print the result as JSON")
}
