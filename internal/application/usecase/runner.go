// Package usecase orchestrates the monitoring checks across accounts and
// renders the resulting reports.
package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

const defaultWorkers = 5

// Runner fans one check out over a set of accounts with a bounded
// worker pool. Results come back in caller order regardless of which
// worker finished first.
type Runner struct {
	factory *awsclient.Factory
	cfg     *types.Config
	workers int
	logger  zerolog.Logger
}

// NewRunner creates a Runner using cfg.Workers as the pool size.
func NewRunner(factory *awsclient.Factory, cfg *types.Config, logger zerolog.Logger) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Runner{
		factory: factory,
		cfg:     cfg,
		workers: workers,
		logger:  logger,
	}
}

// resolveAccountID prefers the configured account id and falls back to
// an STS GetCallerIdentity lookup.
func (r *Runner) resolveAccountID(ctx context.Context, profile string) string {
	if id := r.cfg.AccountID(profile); id != "" {
		return id
	}
	id, err := r.factory.GetAccountID(ctx, profile)
	if err != nil {
		r.logger.Debug().Str("profile", profile).Err(err).Msg("could not resolve account id")
		return "unknown"
	}
	return id
}

// runOne executes a single check for a single profile, converting a
// panic into an error result so one bad account never aborts the run.
func (r *Runner) runOne(ctx context.Context, chk checker.Checker, profile, accountID string) (result entity.CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("check", chk.Name()).
				Str("profile", profile).
				Interface("panic", rec).
				Msg("check panicked")
			result = entity.NewErrorResult(chk.Name(), fmt.Sprintf("panic: %v", rec))
		}
	}()
	return chk.Check(ctx, profile, accountID)
}

// RunCheck runs one check against every account in parallel. The
// returned slice preserves the account order; errors lists the
// accounts whose check came back with status "error".
func (r *Runner) RunCheck(ctx context.Context, chk checker.Checker, accounts []types.AccountEntry) ([]entity.ProfileResult, []entity.ProfileError) {
	results := make([]entity.ProfileResult, len(accounts))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)

	for i, acct := range accounts {
		wg.Add(1)
		go func(i int, acct types.AccountEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			accountID := acct.AccountID
			if accountID == "" {
				accountID = r.resolveAccountID(ctx, acct.Profile)
			}
			display := acct.DisplayName
			if display == "" {
				display = acct.Profile
			}

			res := r.runOne(ctx, chk, acct.Profile, accountID)
			results[i] = entity.ProfileResult{
				Profile:     acct.Profile,
				AccountID:   accountID,
				DisplayName: display,
				Result:      res,
			}
		}(i, acct)
	}
	wg.Wait()

	var errs []entity.ProfileError
	for _, pr := range results {
		if pr.Result != nil && pr.Result.CheckStatus() == entity.StatusError {
			errs = append(errs, entity.ProfileError{
				Profile:   pr.Profile,
				CheckName: chk.Name(),
				Message:   pr.Result.ErrorMessage(),
			})
		}
	}
	return results, errs
}

// CheckRun bundles the outcome of one check over a group.
type CheckRun struct {
	Checker checker.Checker
	Results []entity.ProfileResult
	Errors  []entity.ProfileError
}

// RunChecks runs multiple checks sequentially, each fanned out over the
// accounts. The checks themselves stay sequential so their AWS API
// pressure comes from one check at a time.
func (r *Runner) RunChecks(ctx context.Context, checkers []checker.Checker, accounts []types.AccountEntry) []CheckRun {
	runs := make([]CheckRun, 0, len(checkers))
	for _, chk := range checkers {
		r.logger.Info().Str("check", chk.Name()).Int("accounts", len(accounts)).Msg("running check")
		results, errs := r.RunCheck(ctx, chk, accounts)
		runs = append(runs, CheckRun{Checker: chk, Results: results, Errors: errs})
	}
	return runs
}

// AccountsFromProfiles wraps bare profile names as account entries,
// enriching them from the configuration when the profile is known.
func AccountsFromProfiles(cfg *types.Config, profiles []string) []types.AccountEntry {
	accounts := make([]types.AccountEntry, 0, len(profiles))
	for _, p := range profiles {
		accounts = append(accounts, types.AccountEntry{
			Profile:     p,
			AccountID:   cfg.AccountID(p),
			DisplayName: cfg.DisplayName(p),
		})
	}
	return accounts
}
