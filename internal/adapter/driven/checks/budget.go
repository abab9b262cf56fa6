package checks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgettypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

type budgetsAPI interface {
	DescribeBudgets(ctx context.Context, params *budgets.DescribeBudgetsInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error)
	DescribeNotificationsForBudget(ctx context.Context, params *budgets.DescribeNotificationsForBudgetInput, optFns ...func(*budgets.Options)) (*budgets.DescribeNotificationsForBudgetOutput, error)
}

// DailyBudgetChecker reports daily AWS Budgets that crossed their alert
// thresholds or ran over their limit.
type DailyBudgetChecker struct {
	cfg *types.Config
	api func(ctx context.Context, profile string) (budgetsAPI, error)
}

func NewDailyBudgetChecker(f *awsclient.Factory, cfg *types.Config) *DailyBudgetChecker {
	return &DailyBudgetChecker{
		cfg: cfg,
		api: func(ctx context.Context, profile string) (budgetsAPI, error) {
			return f.Budgets(ctx, profile)
		},
	}
}

func (c *DailyBudgetChecker) Name() string { return "daily-budget" }

func (c *DailyBudgetChecker) accountName(profile string) string {
	if name := c.cfg.DisplayName(profile); name != profile {
		return name
	}
	words := strings.Split(profile, "-")
	for i, w := range words {
		words[i] = Capitalize(w)
	}
	return strings.Join(words, " ")
}

func thresholdHit(percent float64, n budgettypes.Notification) bool {
	if n.NotificationType != budgettypes.NotificationTypeActual {
		return false
	}
	if n.ComparisonOperator != budgettypes.ComparisonOperatorGreaterThan {
		return false
	}
	return percent > n.Threshold
}

func spendAmount(s *budgettypes.Spend) float64 {
	if s == nil || s.Amount == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*s.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *DailyBudgetChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.BudgetResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	var items []entity.BudgetItem
	input := &budgets.DescribeBudgetsInput{AccountId: aws.String(accountID)}
	for {
		out, err := client.DescribeBudgets(ctx, input)
		if err != nil {
			return entity.BudgetResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}

		for _, b := range out.Budgets {
			if b.TimeUnit != budgettypes.TimeUnitDaily {
				continue
			}
			limit := spendAmount(b.BudgetLimit)
			if limit <= 0 {
				continue
			}
			name := aws.ToString(b.BudgetName)
			var actual float64
			if b.CalculatedSpend != nil {
				actual = spendAmount(b.CalculatedSpend.ActualSpend)
			}
			percent := actual / limit * 100

			notifOut, err := client.DescribeNotificationsForBudget(ctx, &budgets.DescribeNotificationsForBudgetInput{
				AccountId:  aws.String(accountID),
				BudgetName: aws.String(name),
			})
			if err != nil {
				return entity.BudgetResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
			}

			seen := map[float64]bool{}
			var hits []float64
			for _, n := range notifOut.Notifications {
				if thresholdHit(percent, n) && !seen[n.Threshold] {
					seen[n.Threshold] = true
					hits = append(hits, n.Threshold)
				}
			}
			sort.Float64s(hits)

			items = append(items, entity.BudgetItem{
				BudgetName:    name,
				Actual:        actual,
				Limit:         limit,
				Percent:       percent,
				OverAmount:    actual - limit,
				IsOverBudget:  actual > limit,
				ThresholdHits: hits,
			})
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Percent > items[j].Percent })

	thresholdExceeded, overBudget := 0, 0
	for _, it := range items {
		if len(it.ThresholdHits) > 0 {
			thresholdExceeded++
		}
		if it.IsOverBudget {
			overBudget++
		}
	}

	status := entity.StatusOK
	if thresholdExceeded > 0 || overBudget > 0 {
		status = entity.StatusAttention
	}
	return entity.BudgetResult{
		ResultMeta:             entity.ResultMeta{Status: status},
		AccountName:            c.accountName(profile),
		AccountID:              accountID,
		Items:                  items,
		ThresholdExceededCount: thresholdExceeded,
		OverBudgetCount:        overBudget,
	}
}

// FormatBudgetBlock renders the per-account lines used both by the plain
// report and by the WhatsApp digest.
func FormatBudgetBlock(r entity.BudgetResult) []string {
	lines := []string{fmt.Sprintf("Account %s - %s", r.AccountID, r.AccountName)}

	alerted := make([]entity.BudgetItem, 0, len(r.Items))
	for _, it := range r.Items {
		if len(it.ThresholdHits) > 0 || it.IsOverBudget {
			alerted = append(alerted, it)
		}
	}
	if len(alerted) == 0 {
		lines = append(lines, "- Tidak ada budget melewati alert threshold")
		return lines
	}

	for _, it := range alerted {
		line := fmt.Sprintf("- %s: $%.2f / $%.2f (%.2f%%)", it.BudgetName, it.Actual, it.Limit, it.Percent)
		if it.IsOverBudget {
			line += fmt.Sprintf(" -> Over $%.2f", it.OverAmount)
		} else {
			parts := make([]string, len(it.ThresholdHits))
			for i, t := range it.ThresholdHits {
				parts[i] = fmt.Sprintf("%.0f%%", t)
			}
			line += fmt.Sprintf(" -> Exceeded alert threshold (%s)", strings.Join(parts, ", "))
		}
		lines = append(lines, line)
	}
	return lines
}

func (c *DailyBudgetChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.BudgetResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}
	return strings.Join(FormatBudgetBlock(r), "\n")
}
