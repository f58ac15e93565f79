package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/voice"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Walk through a mistake by voice",
	Long: "Runs the guided voice intake: pick a language, describe the problem and " +
		"your attempt, then hear the coaching summary. With the console engine, " +
		"prompts are printed and each typed line counts as one utterance.\n\n" +
		"With --coach, talk freely with the study buddy instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		engines, err := voice.NewEngines(e.cfg, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		defer engines.Close()

		ctx := cmd.Context()
		if talk, _ := cmd.Flags().GetBool("coach"); talk {
			if !e.coach.Available() {
				return fmt.Errorf("the study buddy needs a configured LLM provider")
			}
			vc := voice.NewCoach(e.coach, engines.Speaker, engines.Recognizer, voice.FlowConfig(e.cfg), func(t voice.Turn) {
				slog.Debug("voice turn", "learner", t.Learner, "text", t.Text)
			})
			return vc.Run(ctx)
		}

		p := e.learner.Profile()
		mode := coach.AllowedModes(p.AgeGroup)[0]
		base := coach.AnalyzeInput{
			Category:   coach.CategoryAuto,
			Mode:       mode,
			Preference: coach.PreferenceAudio,
		}

		var res *coach.AnalysisResult
		flow := voice.NewFlow(engines.Speaker, engines.Recognizer, voice.FlowConfig(e.cfg),
			voice.WithConsent(mode != coach.ModeKids || p.HasConsent()),
			voice.WithAnalyze(func(ctx context.Context, f voice.Fields) error {
				in := base
				in.Problem, in.Attempt, in.Language = f.Problem, f.Attempt, f.Language
				in = e.learner.Personalize(in)

				r, err := e.coach.Analyze(ctx, in)
				if err != nil {
					_ = engines.Speaker.Speak(ctx, coach.UserMessage(err))
					return err
				}
				if !r.IsConsentRequired() {
					if err := e.learner.RecordAnalysis(ctx, learner.NewEntry(in, "", r, time.Now())); err != nil {
						slog.Error("record analysis", "err", err)
					}
				}
				res = r
				return engines.Speaker.Speak(ctx, r.SpokenSummary())
			}),
			voice.OnStateChange(func(s voice.State) { slog.Debug("voice state", "state", s) }),
		)

		outcome, err := flow.Run(ctx)
		if err != nil {
			return err
		}
		switch outcome {
		case voice.OutcomeAnalyzed:
			fmt.Println()
			printAnalysis(res, nil)
		case voice.OutcomeTextMode:
			fmt.Println("Switched to text mode. Run `mistakecoach analyze` or the TUI to continue.")
		}
		return nil
	},
}

func init() {
	voiceCmd.Flags().Bool("coach", false, "Talk freely with the study buddy")
}
