package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/config"
	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/slack"
	"github.com/primanata/aws-monitoring-hub-go/internal/application/usecase"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
	"github.com/primanata/aws-monitoring-hub-go/pkg/console"
	"github.com/primanata/aws-monitoring-hub-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	console *console.Console
	version string

	args     *types.CLIArgs
	cfg      *types.Config
	factory  *awsclient.Factory
	runner   *usecase.Runner
	notifier *slack.Notifier
	logger   zerolog.Logger
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
		console: console.NewConsole(),
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:               "aws-monhub",
		Short:             "AWS Monitoring Hub CLI",
		Version:           formattedVersion,
		PersistentPreRunE: app.setup,
		SilenceUsage:      true,
	}

	rootCmd.SetVersionTemplate(`{{printf "AWS Monitoring Hub version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringSliceP("profiles", "p", nil, "Specific AWS profiles to use (comma-separated)")
	rootCmd.PersistentFlags().StringP("group", "g", "", "Configured account group to run against")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region for the regional checks")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Number of parallel workers (default from config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		app.newCheckCmd(),
		app.newAllCmd(),
		app.newProfilesCmd(),
		app.newJobsCmd(),
		app.newSlackCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) *types.CLIArgs {
	configFile, _ := cmd.Flags().GetString("config-file")
	profiles, _ := cmd.Flags().GetStringSlice("profiles")
	group, _ := cmd.Flags().GetString("group")
	region, _ := cmd.Flags().GetString("region")
	workers, _ := cmd.Flags().GetInt("workers")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return &types.CLIArgs{
		ConfigFile: configFile,
		Profiles:   profiles,
		Group:      group,
		Region:     region,
		Workers:    workers,
		Verbose:    verbose,
	}
}

// setup carrega a configuração e monta as dependências compartilhadas
// antes de qualquer subcomando executar.
func (app *CLIApp) setup(cmd *cobra.Command, args []string) error {
	app.args = app.parseArgs(cmd)

	level := zerolog.InfoLevel
	if app.args.Verbose {
		level = zerolog.DebugLevel
	}
	app.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	cfg := config.Default()
	if app.args.ConfigFile != "" {
		loaded, err := config.LoadConfigFile(app.args.ConfigFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if app.args.Region != "" {
		cfg.Region = app.args.Region
	}
	if app.args.Workers > 0 {
		cfg.Workers = app.args.Workers
	}

	app.cfg = cfg
	app.factory = awsclient.NewFactory(cfg.Region, app.logger)
	app.runner = usecase.NewRunner(app.factory, cfg, app.logger)
	app.notifier = slack.NewNotifier(cfg.Slack, app.logger)
	return nil
}

// resolveAccounts decides which accounts a command runs against, in
// order of precedence: explicit profiles, configured group, every
// profile found in the AWS config.
func (app *CLIApp) resolveAccounts(cmd *cobra.Command) ([]types.AccountEntry, string, error) {
	profiles := app.args.Profiles
	group := app.args.Group

	if len(profiles) > 0 {
		return usecase.AccountsFromProfiles(app.cfg, profiles), group, nil
	}

	if group != "" {
		accounts := app.cfg.AccountsForGroup(group)
		if accounts == nil {
			return nil, "", fmt.Errorf("%w: %s", types.ErrUnknownGroup, group)
		}
		return accounts, group, nil
	}

	available := awsclient.GetAWSProfiles()
	if len(available) == 0 {
		return nil, "", types.ErrNoProfilesFound
	}
	return usecase.AccountsFromProfiles(app.cfg, available), "", nil
}

// newProfilesCmd lists the AWS profiles visible to the tool.
func (app *CLIApp) newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List AWS profiles found in the local AWS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := awsclient.GetAWSProfiles()
			if len(profiles) == 0 {
				return types.ErrNoProfilesFound
			}
			table := app.console.CreateTable()
			table.AddColumn("Profile")
			table.AddColumn("Account ID")
			table.AddColumn("Display Name")
			for _, p := range profiles {
				id := app.cfg.AccountID(p)
				if id == "" {
					id = "-"
				}
				table.AddRow(p, id, app.cfg.DisplayName(p))
			}
			app.console.Println(table.Render())
			return nil
		},
	}
}
