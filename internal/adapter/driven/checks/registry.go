package checks

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

// Bundles of checks the CLI runs together.
var (
	// AllModeChecks is the full daily assessment.
	AllModeChecks = []string{"cost", "guardduty", "cloudwatch", "notifications", "backup", "daily-arbel"}

	// LightModeChecks skips the slower backup and RDS metric checks.
	LightModeChecks = []string{"cost", "guardduty", "cloudwatch", "notifications"}
)

// Options tune the checks that take CLI parameters.
type Options struct {
	// WindowHours is the RDS metrics lookback, default 12.
	WindowHours int
	// TopN caps the CloudWatch cost breakdown, 0 shows every account.
	TopN int
	// MinMinutes is the alarm verification reporting threshold.
	MinMinutes int
	// Alarms restricts alarm verification to the named alarms.
	Alarms []string
}

// Registry owns every configured checker, keyed by check name.
type Registry struct {
	checkers map[string]checker.Checker
}

func NewRegistry(f *awsclient.Factory, cfg *types.Config, opts Options, logger zerolog.Logger) *Registry {
	list := []checker.Checker{
		NewCostAnomalyChecker(f, logger),
		NewGuardDutyChecker(f, ""),
		NewCloudWatchAlarmChecker(f, ""),
		NewNotificationChecker(f),
		NewBackupStatusChecker(f, cfg.Backup, logger),
		NewDailyArbelChecker(f, cfg.RDS, opts.WindowHours, logger),
		NewDailyBudgetChecker(f, cfg),
		NewEC2ListChecker(f),
		NewAlarmVerificationChecker(f, opts.MinMinutes, opts.Alarms),
		NewCloudWatchCostChecker(f, opts.TopN, logger),
	}
	checkers := make(map[string]checker.Checker, len(list))
	for _, c := range list {
		checkers[c.Name()] = c
	}
	return &Registry{checkers: checkers}
}

// Get resolves a checker by name.
func (r *Registry) Get(name string) (checker.Checker, error) {
	c, ok := r.checkers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownCheck, name)
	}
	return c, nil
}

// Consolidated resolves a checker that contributes a section to the
// consolidated report.
func (r *Registry) Consolidated(name string) (checker.ConsolidatedChecker, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	cc, ok := c.(checker.ConsolidatedChecker)
	if !ok {
		return nil, fmt.Errorf("check %s has no consolidated report section", name)
	}
	return cc, nil
}

// Names lists every registered check, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
