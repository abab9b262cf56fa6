package checks

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgettypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

type fakeBudgetsAPI struct {
	budgets       []budgettypes.Budget
	notifications map[string][]budgettypes.Notification
}

func (f *fakeBudgetsAPI) DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error) {
	return &budgets.DescribeBudgetsOutput{Budgets: f.budgets}, nil
}

func (f *fakeBudgetsAPI) DescribeNotificationsForBudget(ctx context.Context, params *budgets.DescribeNotificationsForBudgetInput, optFns ...func(*budgets.Options)) (*budgets.DescribeNotificationsForBudgetOutput, error) {
	return &budgets.DescribeNotificationsForBudgetOutput{
		Notifications: f.notifications[aws.ToString(params.BudgetName)],
	}, nil
}

func dailyBudget(name, limit, actual string) budgettypes.Budget {
	return budgettypes.Budget{
		BudgetName: aws.String(name),
		TimeUnit:   budgettypes.TimeUnitDaily,
		BudgetLimit: &budgettypes.Spend{
			Amount: aws.String(limit),
			Unit:   aws.String("USD"),
		},
		CalculatedSpend: &budgettypes.CalculatedSpend{
			ActualSpend: &budgettypes.Spend{
				Amount: aws.String(actual),
				Unit:   aws.String("USD"),
			},
		},
	}
}

func newBudgetChecker(fake *fakeBudgetsAPI) *DailyBudgetChecker {
	return &DailyBudgetChecker{
		cfg: &types.Config{},
		api: func(ctx context.Context, profile string) (budgetsAPI, error) {
			return fake, nil
		},
	}
}

func TestBudgetCheckOverBudget(t *testing.T) {
	fake := &fakeBudgetsAPI{
		budgets: []budgettypes.Budget{dailyBudget("daily-cost", "7.00", "9.11")},
		notifications: map[string][]budgettypes.Notification{
			"daily-cost": {
				{
					NotificationType:   budgettypes.NotificationTypeActual,
					ComparisonOperator: budgettypes.ComparisonOperatorGreaterThan,
					Threshold:          95,
				},
			},
		},
	}

	result := newBudgetChecker(fake).Check(context.Background(), "connect-prod", "111122223333")
	r, ok := result.(entity.BudgetResult)
	require.True(t, ok)
	require.Len(t, r.Items, 1)

	assert.Equal(t, entity.StatusAttention, r.Status)
	assert.Equal(t, 1, r.OverBudgetCount)
	assert.Equal(t, 1, r.ThresholdExceededCount)

	item := r.Items[0]
	assert.True(t, item.IsOverBudget)
	assert.InDelta(t, 130.14, item.Percent, 0.01)
	assert.InDelta(t, 2.11, item.OverAmount, 0.001)
	assert.Equal(t, []float64{95}, item.ThresholdHits)
}

func TestBudgetCheckSkipsNonDailyAndZeroLimit(t *testing.T) {
	monthly := dailyBudget("monthly-cost", "100.00", "90.00")
	monthly.TimeUnit = budgettypes.TimeUnitMonthly
	fake := &fakeBudgetsAPI{
		budgets: []budgettypes.Budget{
			monthly,
			dailyBudget("zero-limit", "0", "5.00"),
			dailyBudget("healthy", "10.00", "2.00"),
		},
	}

	result := newBudgetChecker(fake).Check(context.Background(), "connect-prod", "111122223333")
	r, ok := result.(entity.BudgetResult)
	require.True(t, ok)
	require.Len(t, r.Items, 1)

	assert.Equal(t, entity.StatusOK, r.Status)
	assert.Equal(t, "healthy", r.Items[0].BudgetName)
}

func TestBudgetCheckSortsByPercentDescending(t *testing.T) {
	fake := &fakeBudgetsAPI{
		budgets: []budgettypes.Budget{
			dailyBudget("low", "10.00", "1.00"),
			dailyBudget("high", "10.00", "9.00"),
			dailyBudget("mid", "10.00", "5.00"),
		},
	}

	result := newBudgetChecker(fake).Check(context.Background(), "connect-prod", "111122223333")
	r := result.(entity.BudgetResult)
	require.Len(t, r.Items, 3)

	assert.Equal(t, "high", r.Items[0].BudgetName)
	assert.Equal(t, "mid", r.Items[1].BudgetName)
	assert.Equal(t, "low", r.Items[2].BudgetName)
}

func TestFormatBudgetBlock(t *testing.T) {
	r := entity.BudgetResult{
		AccountName: "Connect Prod (Non Cis)",
		AccountID:   "111122223333",
		Items: []entity.BudgetItem{
			{
				BudgetName:   "daily-cost",
				Actual:       9.11,
				Limit:        7.00,
				Percent:      130.14,
				OverAmount:   2.11,
				IsOverBudget: true,
			},
			{
				BudgetName:    "daily-usage",
				Actual:        6.80,
				Limit:         7.00,
				Percent:       97.14,
				ThresholdHits: []float64{95},
			},
		},
	}

	text := strings.Join(FormatBudgetBlock(r), "\n")
	assert.Contains(t, text, "Account 111122223333 - Connect Prod (Non Cis)")
	assert.Contains(t, text, "- daily-cost: $9.11 / $7.00 (130.14%) -> Over $2.11")
	assert.Contains(t, text, "- daily-usage: $6.80 / $7.00 (97.14%) -> Exceeded alert threshold (95%)")
}

func TestFormatBudgetBlockNoAlerts(t *testing.T) {
	r := entity.BudgetResult{AccountName: "HRIS", AccountID: "444455556666"}
	lines := FormatBudgetBlock(r)

	require.Len(t, lines, 2)
	assert.Equal(t, "- Tidak ada budget melewati alert threshold", lines[1])
}
