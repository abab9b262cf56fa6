package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/checker"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

type stubChecker struct {
	name    string
	results map[string]entity.CheckResult
	panicOn string

	mu    sync.Mutex
	calls []string
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	s.mu.Lock()
	s.calls = append(s.calls, profile)
	s.mu.Unlock()

	if profile == s.panicOn {
		panic("simulated failure")
	}
	if res, ok := s.results[profile]; ok {
		return res
	}
	return entity.ErrorResult{ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess}}
}

func (s *stubChecker) FormatReport(result entity.CheckResult) string { return "" }

func testAccounts() []types.AccountEntry {
	return []types.AccountEntry{
		{Profile: "alpha", AccountID: "111111111111", DisplayName: "Alpha"},
		{Profile: "beta", AccountID: "222222222222", DisplayName: "Beta"},
		{Profile: "gamma", AccountID: "333333333333", DisplayName: "Gamma"},
	}
}

func newTestRunner(workers int) *Runner {
	return NewRunner(nil, &types.Config{Workers: workers}, zerolog.Nop())
}

func TestRunCheckPreservesAccountOrder(t *testing.T) {
	chk := &stubChecker{
		name: "guardduty",
		results: map[string]entity.CheckResult{
			"alpha": entity.ErrorResult{ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess}},
			"beta":  entity.ErrorResult{ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess}},
			"gamma": entity.ErrorResult{ResultMeta: entity.ResultMeta{Status: entity.StatusSuccess}},
		},
	}

	results, errs := newTestRunner(2).RunCheck(context.Background(), chk, testAccounts())
	require.Len(t, results, 3)
	assert.Empty(t, errs)
	assert.Equal(t, "alpha", results[0].Profile)
	assert.Equal(t, "beta", results[1].Profile)
	assert.Equal(t, "gamma", results[2].Profile)
	assert.Equal(t, "Alpha", results[0].DisplayName)
	assert.Equal(t, "111111111111", results[0].AccountID)
}

func TestRunCheckCollectsErrors(t *testing.T) {
	chk := &stubChecker{
		name: "cost",
		results: map[string]entity.CheckResult{
			"beta": entity.NewErrorResult("cost", "boom"),
		},
	}

	results, errs := newTestRunner(5).RunCheck(context.Background(), chk, testAccounts())
	require.Len(t, results, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, "beta", errs[0].Profile)
	assert.Equal(t, "cost", errs[0].CheckName)
	assert.Equal(t, "boom", errs[0].Message)
}

func TestRunCheckRecoversPanic(t *testing.T) {
	chk := &stubChecker{name: "cloudwatch", panicOn: "gamma"}

	results, errs := newTestRunner(5).RunCheck(context.Background(), chk, testAccounts())
	require.Len(t, results, 3)
	require.Len(t, errs, 1)
	assert.Equal(t, "gamma", errs[0].Profile)
	assert.Contains(t, errs[0].Message, "panic: simulated failure")
	assert.Equal(t, entity.StatusError, results[2].Result.CheckStatus())
}

func TestRunChecksRunsEveryChecker(t *testing.T) {
	a := &stubChecker{name: "cost"}
	b := &stubChecker{name: "guardduty"}

	runs := newTestRunner(2).RunChecks(context.Background(), []checker.Checker{a, b}, testAccounts())
	require.Len(t, runs, 2)
	assert.Equal(t, "cost", runs[0].Checker.Name())
	assert.Equal(t, "guardduty", runs[1].Checker.Name())
	assert.Len(t, a.calls, 3)
	assert.Len(t, b.calls, 3)
}

func TestAccountsFromProfiles(t *testing.T) {
	cfg := &types.Config{Groups: []types.Group{{
		Name: "Aryanoble",
		Accounts: []types.AccountEntry{
			{Profile: "alpha", AccountID: "111111111111", DisplayName: "Alpha Prod"},
		},
	}}}

	accounts := AccountsFromProfiles(cfg, []string{"alpha", "unknown"})
	require.Len(t, accounts, 2)
	assert.Equal(t, "111111111111", accounts[0].AccountID)
	assert.Equal(t, "Alpha Prod", accounts[0].DisplayName)
	assert.Equal(t, "", accounts[1].AccountID)
	assert.Equal(t, "unknown", accounts[1].DisplayName)
}
