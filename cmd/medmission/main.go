package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medmission/medmission/internal/app"
	"github.com/medmission/medmission/internal/config"
	"github.com/medmission/medmission/internal/domain/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "medmission",
		Short:         "Offline patient registration and vitals for medical missions",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(patientCmd())
	rootCmd.AddCommand(vitalsCmd())
	rootCmd.AddCommand(printCmd())
	rootCmd.AddCommand(countersCmd())
	rootCmd.AddCommand(missionCmd())
	rootCmd.AddCommand(servicesCmd())
	rootCmd.AddCommand(doctorCmd())

	return rootCmd
}

type runFunc func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error

// withApp loads the configuration, opens the store for the duration of one
// command and writes the metrics textfile afterwards.
func withApp(run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := app.NewLogger(cmd.ErrOrStderr(), cfg)

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		runErr := run(ctx, cmd, a, args)

		if err := a.WriteMetrics(); err != nil {
			logger.Warn().Err(err).Msg("metrics textfile not written")
		}
		return runErr
	}
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// saved turns a persistence failure into a visible warning. The change is
// already applied in this process but is lost when it exits.
func saved(cmd *cobra.Command, err error) error {
	if errors.Is(err, registry.ErrNotPersisted) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: change was not saved: %v\n", err)
	}
	return err
}

// invalid prints each validation problem and returns a summary error.
func invalid(cmd *cobra.Command, what string, problems []string) error {
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
	}
	return fmt.Errorf("%s: %d problem(s)", what, len(problems))
}
