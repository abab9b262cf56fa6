package checks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type costUsageAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type organizationsAPI interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

// CloudWatchCostChecker breaks the month-to-date CloudWatch spend down by
// linked account, as seen from a payer account profile.
type CloudWatchCostChecker struct {
	region string
	topN   int
	ceFor  func(ctx context.Context, profile string) (costUsageAPI, error)
	orgFor func(ctx context.Context, profile string) (organizationsAPI, error)
	now    func() time.Time
	logger zerolog.Logger
}

func NewCloudWatchCostChecker(f *awsclient.Factory, topN int, logger zerolog.Logger) *CloudWatchCostChecker {
	return &CloudWatchCostChecker{
		region: f.DefaultRegion(),
		topN:   topN,
		ceFor: func(ctx context.Context, profile string) (costUsageAPI, error) {
			return f.CostExplorer(ctx, profile)
		},
		orgFor: func(ctx context.Context, profile string) (organizationsAPI, error) {
			return f.Organizations(ctx, profile)
		},
		now:    time.Now,
		logger: logger,
	}
}

func (c *CloudWatchCostChecker) Name() string { return "cloudwatch-cost" }

func cloudWatchCostFilter(region string) *cetypes.Expression {
	service := &cetypes.Expression{
		Dimensions: &cetypes.DimensionValues{
			Key:    cetypes.DimensionService,
			Values: []string{"AmazonCloudWatch"},
		},
	}
	if region == "" || strings.EqualFold(region, "all") {
		return service
	}
	return &cetypes.Expression{
		And: []cetypes.Expression{
			*service,
			{
				Dimensions: &cetypes.DimensionValues{
					Key:    cetypes.DimensionRegion,
					Values: []string{region},
				},
			},
		},
	}
}

// accountNames is a best-effort Organizations lookup. Access is often
// denied outside the payer account and that must not fail the report.
func (c *CloudWatchCostChecker) accountNames(ctx context.Context, profile string) map[string]string {
	names := map[string]string{}
	client, err := c.orgFor(ctx, profile)
	if err != nil {
		return names
	}
	input := &organizations.ListAccountsInput{}
	for {
		out, err := client.ListAccounts(ctx, input)
		if err != nil {
			c.logger.Debug().Err(err).Str("profile", profile).Msg("organizations lookup failed")
			return names
		}
		for _, acc := range out.Accounts {
			names[aws.ToString(acc.Id)] = aws.ToString(acc.Name)
		}
		if out.NextToken == nil {
			return names
		}
		input.NextToken = out.NextToken
	}
}

func (c *CloudWatchCostChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.ceFor(ctx, profile)
	if err != nil {
		return entity.LinkedAccountCostResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	today := c.now().UTC()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	end := today.AddDate(0, 0, 1).Format("2006-01-02")

	out, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod:  &cetypes.DateInterval{Start: aws.String(start), End: aws.String(end)},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost", "UsageQuantity"},
		Filter:      cloudWatchCostFilter(c.region),
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("LINKED_ACCOUNT")},
		},
	})
	if err != nil {
		return entity.LinkedAccountCostResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	names := c.accountNames(ctx, profile)

	var accounts []entity.AccountCost
	var totalCost, totalUsage float64
	if len(out.ResultsByTime) > 0 {
		for _, g := range out.ResultsByTime[0].Groups {
			if len(g.Keys) == 0 {
				continue
			}
			id := g.Keys[0]
			cost := metricAmount(g.Metrics, "UnblendedCost")
			usage := metricAmount(g.Metrics, "UsageQuantity")
			totalCost += cost
			totalUsage += usage
			accounts = append(accounts, entity.AccountCost{
				AccountID:   id,
				AccountName: names[id],
				Cost:        cost,
				Usage:       usage,
			})
		}
	}

	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Cost > accounts[j].Cost })
	if c.topN > 0 && len(accounts) > c.topN {
		accounts = accounts[:c.topN]
	}

	return entity.LinkedAccountCostResult{
		ResultMeta:  entity.ResultMeta{Status: entity.StatusSuccess},
		Service:     "AmazonCloudWatch",
		Region:      c.region,
		PeriodStart: start,
		PeriodEnd:   end,
		TotalCost:   totalCost,
		TotalUsage:  totalUsage,
		Accounts:    accounts,
	}
}

func metricAmount(metrics map[string]cetypes.MetricValue, key string) float64 {
	m, ok := metrics[key]
	if !ok || m.Amount == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*m.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *CloudWatchCostChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.LinkedAccountCostResult)
	if !ok || r.Status != entity.StatusSuccess {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	region := r.Region
	if region == "" {
		region = "ALL"
	}
	lines := []string{
		fmt.Sprintf("CloudWatch Cost & Usage | Region: %s | %s - %s (end exclusive)", region, r.PeriodStart, r.PeriodEnd),
		"| # | Account | Name | UnblendedCost (USD) | UsageQuantity |",
		"| --- | --- | --- | --- | --- |",
	}
	for i, a := range r.Accounts {
		lines = append(lines, fmt.Sprintf("| %d | %s | %s | $%.2f | %.2f |",
			i+1, a.AccountID, a.AccountName, a.Cost, a.Usage))
	}
	lines = append(lines, fmt.Sprintf("|  |  | TOTAL | $%.2f | %.2f |", r.TotalCost, r.TotalUsage))
	return strings.Join(lines, "\n")
}
