// Package awsclient builds and caches AWS SDK clients per profile.
package awsclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/notifications"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/savingsplans"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
)

// Factory caches aws.Config and service clients keyed by profile and region.
// It is safe for concurrent use by the check runner.
type Factory struct {
	region      string
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
	logger      zerolog.Logger
}

// NewFactory creates a Factory. region is the default region applied to
// regional clients when a check does not override it.
func NewFactory(region string, logger zerolog.Logger) *Factory {
	return &Factory{
		region:      region,
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
		logger:      logger,
	}
}

// DefaultRegion returns the region regional clients are built in.
func (f *Factory) DefaultRegion() string { return f.region }

func (f *Factory) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cfg, ok := f.cfgCache[profile]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	f.cfgCache[profile] = cfg
	return cfg, nil
}

func (f *Factory) getServiceClient(ctx context.Context, profile, region, service string) (interface{}, error) {
	if region == "" {
		region = f.region
	}
	cacheKey := fmt.Sprintf("%s-%s-%s", profile, region, service)

	f.mu.Lock()
	if client, ok := f.clientCache[cacheKey]; ok {
		f.mu.Unlock()
		return client, nil
	}
	f.mu.Unlock()

	cfg, err := f.getAWSConfig(ctx, profile)
	if err != nil {
		return nil, err
	}

	regionalCfg := cfg.Copy()
	regionalCfg.Region = region

	var client interface{}
	switch service {
	case "sts":
		client = sts.NewFromConfig(regionalCfg)
	case "ec2":
		client = ec2.NewFromConfig(regionalCfg)
	case "costexplorer":
		// Cost Explorer and Budgets only exist in us-east-1.
		regionalCfg.Region = "us-east-1"
		client = costexplorer.NewFromConfig(regionalCfg)
	case "budgets":
		regionalCfg.Region = "us-east-1"
		client = budgets.NewFromConfig(regionalCfg)
	case "rds":
		client = rds.NewFromConfig(regionalCfg)
	case "cloudwatch":
		client = cloudwatch.NewFromConfig(regionalCfg)
	case "guardduty":
		client = guardduty.NewFromConfig(regionalCfg)
	case "backup":
		client = backup.NewFromConfig(regionalCfg)
	case "notifications":
		// Notification Center only exists in us-east-1.
		regionalCfg.Region = "us-east-1"
		client = notifications.NewFromConfig(regionalCfg)
	case "savingsplans":
		regionalCfg.Region = "us-east-1"
		client = savingsplans.NewFromConfig(regionalCfg)
	case "organizations":
		regionalCfg.Region = "us-east-1"
		client = organizations.NewFromConfig(regionalCfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	f.mu.Lock()
	f.clientCache[cacheKey] = client
	f.mu.Unlock()

	f.logger.Debug().Str("profile", profile).Str("region", regionalCfg.Region).Str("service", service).Msg("created AWS client")
	return client, nil
}

// STS returns a cached STS client for the profile.
func (f *Factory) STS(ctx context.Context, profile string) (*sts.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "sts")
	if err != nil {
		return nil, err
	}
	return c.(*sts.Client), nil
}

// EC2 returns a cached EC2 client for the profile in the given region.
func (f *Factory) EC2(ctx context.Context, profile, region string) (*ec2.Client, error) {
	c, err := f.getServiceClient(ctx, profile, region, "ec2")
	if err != nil {
		return nil, err
	}
	return c.(*ec2.Client), nil
}

// CostExplorer returns a cached Cost Explorer client, always us-east-1.
func (f *Factory) CostExplorer(ctx context.Context, profile string) (*costexplorer.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "costexplorer")
	if err != nil {
		return nil, err
	}
	return c.(*costexplorer.Client), nil
}

// Budgets returns a cached Budgets client, always us-east-1.
func (f *Factory) Budgets(ctx context.Context, profile string) (*budgets.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "budgets")
	if err != nil {
		return nil, err
	}
	return c.(*budgets.Client), nil
}

// RDS returns a cached RDS client for the profile in the given region.
func (f *Factory) RDS(ctx context.Context, profile, region string) (*rds.Client, error) {
	c, err := f.getServiceClient(ctx, profile, region, "rds")
	if err != nil {
		return nil, err
	}
	return c.(*rds.Client), nil
}

// CloudWatch returns a cached CloudWatch client for the profile in the
// given region.
func (f *Factory) CloudWatch(ctx context.Context, profile, region string) (*cloudwatch.Client, error) {
	c, err := f.getServiceClient(ctx, profile, region, "cloudwatch")
	if err != nil {
		return nil, err
	}
	return c.(*cloudwatch.Client), nil
}

// GuardDuty returns a cached GuardDuty client for the profile in the
// given region.
func (f *Factory) GuardDuty(ctx context.Context, profile, region string) (*guardduty.Client, error) {
	c, err := f.getServiceClient(ctx, profile, region, "guardduty")
	if err != nil {
		return nil, err
	}
	return c.(*guardduty.Client), nil
}

// Backup returns a cached AWS Backup client for the profile in the
// given region.
func (f *Factory) Backup(ctx context.Context, profile, region string) (*backup.Client, error) {
	c, err := f.getServiceClient(ctx, profile, region, "backup")
	if err != nil {
		return nil, err
	}
	return c.(*backup.Client), nil
}

// Notifications returns a cached User Notifications client, always
// us-east-1.
func (f *Factory) Notifications(ctx context.Context, profile string) (*notifications.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "notifications")
	if err != nil {
		return nil, err
	}
	return c.(*notifications.Client), nil
}

// Organizations returns a cached Organizations client for the payer
// account profile.
func (f *Factory) Organizations(ctx context.Context, profile string) (*organizations.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "organizations")
	if err != nil {
		return nil, err
	}
	return c.(*organizations.Client), nil
}

// SavingsPlans returns a cached Savings Plans client, always us-east-1.
func (f *Factory) SavingsPlans(ctx context.Context, profile string) (*savingsplans.Client, error) {
	c, err := f.getServiceClient(ctx, profile, "us-east-1", "savingsplans")
	if err != nil {
		return nil, err
	}
	return c.(*savingsplans.Client), nil
}

// GetAccountID resolves the account id of a profile via STS.
func (f *Factory) GetAccountID(ctx context.Context, profile string) (string, error) {
	client, err := f.STS(ctx, profile)
	if err != nil {
		return "", err
	}

	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID for profile %s: %w", profile, err)
	}
	return *result.Account, nil
}

// GetAWSProfiles lists the profile names found in ~/.aws/credentials
// and ~/.aws/config, sorted. Falls back to ["default"].
func GetAWSProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}

	credentialsPath := filepath.Join(homeDir, ".aws", "credentials")
	configPath := filepath.Join(homeDir, ".aws", "config")

	profiles := make(map[string]bool)
	profileRegex := regexp.MustCompile(`\[([^]]+)\]`)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		matches := profileRegex.FindAllStringSubmatch(string(content), -1)
		for _, match := range matches {
			profileName := match[1]
			if isConfig {
				profileName = strings.TrimPrefix(profileName, "profile ")
			}
			profiles[profileName] = true
		}
	}

	parseFile(credentialsPath, false)
	parseFile(configPath, true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}
