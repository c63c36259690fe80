package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/analysis"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/app"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/config"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Cold-drink consumer survey pipeline",
		Long:          "Loads survey CSV files into one dataset and runs five analyses over it, writing CSV tables and a scatter chart.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "YAML configuration file (default $COLDDRINKS_CONFIG_FILE or ./colddrinks.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the full pipeline once",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, flags, "", func(ctx context.Context, a *app.Application) error {
					resp, err := a.RunPipeline(ctx)
					return report(cmd.OutOrStdout(), resp, err)
				})
			},
		},
		&cobra.Command{
			Use:   "extract",
			Short: "Load the survey files and write the hand-off file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, flags, config.HandoffFile, func(ctx context.Context, a *app.Application) error {
					resp, err := a.RunStep(ctx, operations.StepIDExtract)
					if err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "hand-off file: %s\n", a.Paths.HandoffFile)
					}
					return report(cmd.OutOrStdout(), resp, err)
				})
			},
		},
		&cobra.Command{
			Use:   "analyze <name>",
			Short: "Run one analyzer against the hand-off file",
			Long:  "Run one analyzer against the hand-off file written by extract. Names: " + strings.Join(analyzerNames(), ", "),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !isAnalyzer(args[0]) {
					return codeError(2, "unknown analyzer %q, expected one of: %s", args[0], strings.Join(analyzerNames(), ", "))
				}
				return withApp(cmd, flags, config.HandoffFile, func(ctx context.Context, a *app.Application) error {
					resp, err := a.RunStep(ctx, args[0])
					return report(cmd.OutOrStdout(), resp, err)
				})
			},
		},
		&cobra.Command{
			Use:   "schedule",
			Short: "Run the pipeline on an interval and serve the status API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := app.NewApplication(app.Options{ConfigFile: flags.configFile})
				if err != nil {
					return err
				}
				defer func() { _ = infrastructure.CloseLogFile() }()
				return a.Run()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (pipeline %s)\n", config.AppName, version, config.AppVersion)
			},
		},
	)
	return root
}

// withApp builds the application, runs fn under a signal-aware context and
// releases the application afterwards.
func withApp(cmd *cobra.Command, flags rootFlags, handoff string, fn func(context.Context, *app.Application) error) error {
	a, err := app.NewApplication(app.Options{ConfigFile: flags.configFile, Handoff: handoff})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := fn(ctx, a)
	if err := a.Stop(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	_ = infrastructure.CloseLogFile()
	return runErr
}

// report prints one line per step and turns a failed run into exit code 1
func report(w io.Writer, resp *operations.OperationResponse, err error) error {
	if resp != nil {
		ids := make([]string, 0, len(resp.Steps))
		for id := range resp.Steps {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tSTATUS\tATTEMPTS\tDETAIL")
		for _, id := range ids {
			step := resp.Steps[id]
			detail := step.Message
			if step.ErrorText != "" {
				detail = step.ErrorText
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", id, step.Status, step.Attempts, detail)
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "run %s %s in %s\n", resp.ID, resp.Status, resp.Duration)
	}
	if err != nil {
		return codeError(1, "pipeline run failed: %v", err)
	}
	return nil
}

func analyzerNames() []string {
	return []string{
		analysis.AgeVsFrequencyName,
		analysis.MarketingChannelsName,
		analysis.PackagingPreferenceName,
		analysis.TasteVsPriceName,
		analysis.BrandBarriersName,
	}
}

func isAnalyzer(name string) bool {
	for _, n := range analyzerNames() {
		if n == name {
			return true
		}
	}
	return false
}
