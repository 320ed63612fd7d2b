package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"textclassifier/internal/app"
	"textclassifier/internal/clix"
	"textclassifier/internal/results"
	"textclassifier/internal/textinput"
	"textclassifier/pkg/classifier"
)

var quitWords = map[string]bool{"quit": true, "exit": true, "q": true}

func newClassifyCmd() *cobra.Command {
	var (
		inputFile string
		async     bool
	)

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a text, a file of texts, or texts typed interactively",
		Long: `Classifies a single text given as an argument, or every text in --file
(one per line, or a JSON array). With neither, starts an interactive prompt.
Results are printed as a JSON array unless --table or --output is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := GetAppFromContext(cmd.Context())
			if err != nil {
				return err
			}
			out, err := clix.ParseOutput(cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) == 1 && inputFile != "" {
				return errors.New("provide either a text argument or --file, not both")
			}

			ctx := cmd.Context()
			switch {
			case async:
				if inputFile == "" {
					return errors.New("--async requires --file")
				}
				return enqueueFile(ctx, cmd.OutOrStdout(), appInstance, inputFile, out.Path)
			case len(args) == 1:
				res := appInstance.Engine.Classify(ctx, args[0])
				return emitResults(ctx, cmd.OutOrStdout(), appInstance, []classifier.Result{res}, out)
			case inputFile != "":
				texts, err := readTexts(inputFile)
				if err != nil {
					return err
				}
				return emitResults(ctx, cmd.OutOrStdout(), appInstance, appInstance.Engine.ClassifyBatch(ctx, texts), out)
			default:
				return runInteractive(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), appInstance.Engine)
			}
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Path to file containing texts (one per line or JSON array)")
	cmd.Flags().StringP("output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().Bool("table", false, "Render results as a table")
	cmd.Flags().Bool("show-cost", false, "Print token usage and estimated cost after classifying")
	cmd.Flags().BoolVar(&async, "async", false, "Enqueue --file as a background job instead of classifying now")
	return cmd
}

func readTexts(path string) ([]string, error) {
	texts, err := textinput.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts found in %s", path)
	}
	return texts, nil
}

func enqueueFile(ctx context.Context, w io.Writer, a *app.App, path, outputPath string) error {
	texts, err := readTexts(path)
	if err != nil {
		return err
	}
	jobID, err := a.JobClient().EnqueueBatch(ctx, texts, outputPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = results.PathFor(a.Config.Results.Dir, jobID)
	}
	fmt.Fprintf(w, "Enqueued job %s (%d texts), results will be written to %s\n", jobID, len(texts), outputPath)
	return nil
}

func emitResults(ctx context.Context, w io.Writer, a *app.App, res []classifier.Result, out clix.OutputParams) error {
	switch {
	case out.Path != "":
		if err := results.WriteFile(out.Path, res); err != nil {
			return err
		}
		fmt.Fprintf(w, "Results written to %s\n", out.Path)
	case out.Table:
		results.RenderTable(w, res)
	default:
		if err := results.Encode(w, res); err != nil {
			return err
		}
	}

	if out.ShowCost {
		summary, err := a.CostTracker.Summary(ctx)
		if err != nil {
			return fmt.Errorf("read usage summary: %w", err)
		}
		fmt.Fprintf(w, "Calls: %d, input tokens: %d, output tokens: %d, estimated cost: $%.6f\n",
			summary.Calls, summary.InputTokens, summary.OutputTokens, summary.TotalUSD)
	}
	return nil
}

// runInteractive classifies one line at a time until a quit word, EOF or
// cancellation.
func runInteractive(ctx context.Context, in io.Reader, w io.Writer, c classifier.Classifier) error {
	fmt.Fprintln(w, color.CyanString("Text Classifier - Interactive Mode"))
	fmt.Fprintln(w, "Enter text to classify (or 'quit' to exit):")
	fmt.Fprintf(w, "Available labels: %s\n\n", strings.Join(c.Status().Labels, ", "))

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(w, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nExiting...")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(w)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			text := strings.TrimSpace(line)
			if quitWords[strings.ToLower(text)] {
				return nil
			}
			if text == "" {
				continue
			}
			res := c.Classify(ctx, text)
			if err := results.EncodeOne(w, res); err != nil {
				return err
			}
			if res.Failed() {
				fmt.Fprintln(w, color.YellowString("warning: %s", res.Error))
			}
			fmt.Fprintln(w)
		}
	}
}
