package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/checks"
	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/jobstore"
	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/slack"
	"github.com/primanata/aws-monitoring-hub-go/internal/application/usecase"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

const arbelGroup = "Aryanoble"

// openStore opens the SQLite backed job store at the configured path.
func (app *CLIApp) openStore() (*jobstore.Store, error) {
	store, err := jobstore.Open(app.cfg.JobStorePath)
	if err != nil {
		return nil, fmt.Errorf("error opening job store: %w", err)
	}
	return store, nil
}

// newExecutor wires the job kinds the Slack commands can submit.
func (app *CLIApp) newExecutor(store *jobstore.Store) *jobstore.Executor {
	exec := jobstore.NewExecutor(store, app.logger)
	exec.Register(slack.KindArbelBudget, app.runArbelBudgetJob)
	exec.Register(slack.KindArbelRDS, app.runArbelRDSJob)
	return exec
}

// arbelAccounts resolves the Aryanoble group, falling back to every
// profile when the group is not configured.
func (app *CLIApp) arbelAccounts() []types.AccountEntry {
	if accounts := app.cfg.AccountsForGroup(arbelGroup); accounts != nil {
		return accounts
	}
	return nil
}

func (app *CLIApp) runArbelBudgetJob(ctx context.Context, payload map[string]string) (string, error) {
	accounts := app.arbelAccounts()
	if len(accounts) == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrUnknownGroup, arbelGroup)
	}

	registry := checks.NewRegistry(app.factory, app.cfg, checks.Options{}, app.logger)
	chk, err := registry.Get("daily-budget")
	if err != nil {
		return "", err
	}

	results, errs := app.runner.RunCheck(ctx, chk, accounts)
	digest := usecase.BuildBudgetDigest(results)
	if ok, reason := app.notifier.SendReport(ctx, chk.Name(), arbelGroup, digest); !ok {
		app.logger.Warn().Str("reason", reason).Msg("slack delivery skipped for budget job")
	}
	if len(errs) > 0 {
		return digest, fmt.Errorf("%d account(s) failed the budget check", len(errs))
	}
	return digest, nil
}

func (app *CLIApp) runArbelRDSJob(ctx context.Context, payload map[string]string) (string, error) {
	accounts := app.arbelAccounts()
	if len(accounts) == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrUnknownGroup, arbelGroup)
	}

	registry := checks.NewRegistry(app.factory, app.cfg, checks.Options{
		WindowHours: windowHoursFromPayload(payload),
	}, app.logger)
	chk, err := registry.Get("daily-arbel")
	if err != nil {
		return "", err
	}

	results, errs := app.runner.RunCheck(ctx, chk, accounts)
	digest := usecase.BuildRDSClientDigest(time.Now(), results)
	if ok, reason := app.notifier.SendReport(ctx, chk.Name(), arbelGroup, digest); !ok {
		app.logger.Warn().Str("reason", reason).Msg("slack delivery skipped for rds job")
	}
	if len(errs) > 0 {
		return digest, fmt.Errorf("%d account(s) failed the RDS check", len(errs))
	}
	return digest, nil
}

// windowHoursFromPayload parses the "window" payload value, accepting
// either a duration ("3h") or a bare hour count ("3").
func windowHoursFromPayload(payload map[string]string) int {
	window := payload["window"]
	if window == "" {
		return 0
	}
	if d, err := time.ParseDuration(window); err == nil && d > 0 {
		return int(d.Hours())
	}
	if n, err := strconv.Atoi(window); err == nil && n > 0 {
		return n
	}
	return 0
}

// newJobsCmd groups the job store operations.
func (app *CLIApp) newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage queued monitoring jobs",
	}

	var window string
	submit := &cobra.Command{
		Use:   "submit <kind>",
		Short: "Queue a job (arbel-budget or arbel-rds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if kind != slack.KindArbelBudget && kind != slack.KindArbelRDS {
				return fmt.Errorf("unknown job kind: %s", kind)
			}
			store, err := app.openStore()
			if err != nil {
				return err
			}

			payload := map[string]string{}
			if kind == slack.KindArbelRDS {
				payload["window"] = window
			}
			job, err := store.Create(kind, payload, "cli")
			if err != nil {
				return err
			}
			app.console.LogSuccess("Job queued: %s", job.JobID)
			return nil
		},
	}
	submit.Flags().StringVar(&window, "window", "3h", "RDS metrics window for arbel-rds jobs")

	status := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			job, err := store.Get(args[0])
			if err != nil {
				return err
			}
			app.console.Printf("Job %s\n", job.JobID)
			app.console.Printf("  Kind:      %s\n", job.Kind)
			app.console.Printf("  Status:    %s\n", job.Status)
			app.console.Printf("  Requested: %s\n", job.RequestedBy)
			if job.Summary != "" {
				app.console.Printf("  Summary:\n%s\n", job.Summary)
			}
			if job.Error != "" {
				app.console.Printf("  Error:     %s\n", job.Error)
			}
			return nil
		},
	}

	runOnce := &cobra.Command{
		Use:   "run <job-id>",
		Short: "Execute a queued job immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			return app.newExecutor(store).RunOnce(cmd.Context(), args[0])
		},
	}

	drain := &cobra.Command{
		Use:   "drain",
		Short: "Execute every queued job in submission order",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			n, err := app.newExecutor(store).DrainQueued(cmd.Context())
			if err != nil {
				return err
			}
			app.console.LogInfo("Processed %d job(s)", n)
			return nil
		},
	}

	cmd.AddCommand(submit, status, runOnce, drain)
	return cmd
}

// newSlackCmd handles slash command texts the way the Slack bot does.
func (app *CLIApp) newSlackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slack",
		Short: "Slack slash command integration",
	}

	var requestedBy string
	var run bool
	dispatch := &cobra.Command{
		Use:   "dispatch <text>...",
		Short: "Interpret a /monitor slash command and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			reply, err := slack.NewDispatcher(store).Dispatch(cmd.Context(), text, requestedBy)
			if err != nil {
				return err
			}
			app.console.Println(reply)

			if run {
				if _, err := app.newExecutor(store).DrainQueued(cmd.Context()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	dispatch.Flags().StringVar(&requestedBy, "user", "cli", "User id recorded on submitted jobs")
	dispatch.Flags().BoolVar(&run, "run", false, "Run queued jobs immediately after dispatching")

	cmd.AddCommand(dispatch)
	return cmd
}
