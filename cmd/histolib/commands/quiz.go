package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/histolib/internal/quiz"
)

// quizCmd represents the quiz command
var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the investing quiz in the terminal",
	Long: `Run one pass over the investing quiz. Answer each question by number;
the best score is kept in the configured score store (SCORE_STORE).

Example:
  go run ./cmd/histolib quiz`,
	RunE: runQuiz,
}

func init() {
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	out = cmd.OutOrStdout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return playQuiz(ctx, a.engine, bufio.NewScanner(cmd.InOrStdin()))
}

// playQuiz drives the engine from line input until the quiz completes
func playQuiz(ctx context.Context, engine *quiz.Engine, in *bufio.Scanner) error {
	state := engine.Start()

	PrintHeader("📈 Investing Quiz")
	if best := state.BestLabel(); best != "" {
		PrintKeyValue("Best", best, 4)
	}

	for state.Phase == quiz.PhaseInProgress {
		printQuestion(state)

		option, err := readOption(in, len(state.Question.Options))
		if err != nil {
			return err
		}

		state, err = engine.Answer(option)
		if err != nil {
			return err
		}
		printFeedback(state.Feedback, state.Question)

		state, err = engine.Advance(ctx)
		if err != nil {
			return err
		}
	}

	printResult(state)
	return nil
}

func printQuestion(s quiz.State) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Question %d of %d · Score %d\n", s.CurrentQuestionIndex+1, s.Total, s.Score)
	fmt.Fprintln(out, headingStyle.Render(s.Question.Text))
	PrintNumberedList(s.Question.Options)
}

// readOption prompts until a valid 1-based choice is entered and returns it 0-based
func readOption(in *bufio.Scanner, n int) (int, error) {
	for {
		fmt.Fprintf(out, "Your answer [1-%d]: ", n)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, fmt.Errorf("read answer: %w", err)
			}
			return 0, fmt.Errorf("read answer: %w", io.ErrUnexpectedEOF)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintf(out, "Please enter a number between 1 and %d\n", n)
	}
}

func printFeedback(f *quiz.Feedback, q *quiz.Question) {
	if f == nil {
		return
	}
	if f.Correct {
		fmt.Fprintln(out, positiveStyle.Render("✓ Correct!"))
	} else {
		answer := ""
		if q != nil && f.CorrectOption < len(q.Options) {
			answer = q.Options[f.CorrectOption]
		}
		fmt.Fprintln(out, negativeStyle.Render("✗ Incorrect. The answer is: "+answer))
	}
	fmt.Fprintln(out, mutedStyle.Render(f.Explanation))
}

func printResult(s quiz.State) {
	r := s.Result
	if r == nil {
		PrintError("Quiz did not complete")
		return
	}

	PrintHeader(fmt.Sprintf("%s %s", r.Band.Icon, r.Band.Title))
	PrintKeyValue("Score", fmt.Sprintf("%d/%d", r.Score, r.Total), 10)
	PrintKeyValue("Correct", strconv.Itoa(r.Correct), 10)
	PrintKeyValue("Incorrect", strconv.Itoa(r.Incorrect), 10)
	PrintKeyValue("Percentage", strconv.FormatFloat(r.Percentage, 'f', 0, 64)+"%", 10)
	PrintSeparator()
	if r.NewBest {
		PrintSuccess("New best score: " + s.BestLabel())
	} else if best := s.BestLabel(); best != "" {
		PrintInfo("Best score: " + best)
	}
}
