package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/savingsplans"
	sptypes "github.com/aws/aws-sdk-go-v2/service/savingsplans/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// Every lifecycle state is listed so retired and returned plans stay
// visible in the inventory.
var savingsPlanStates = []sptypes.SavingsPlanState{
	sptypes.SavingsPlanStateQueued,
	sptypes.SavingsPlanStateQueuedDeleted,
	sptypes.SavingsPlanStateActive,
	sptypes.SavingsPlanStatePaymentFailed,
	sptypes.SavingsPlanStatePaymentPending,
	sptypes.SavingsPlanStateRetired,
	sptypes.SavingsPlanStateReturned,
	sptypes.SavingsPlanStatePendingReturn,
}

type ec2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

type savingsPlansAPI interface {
	DescribeSavingsPlans(ctx context.Context, params *savingsplans.DescribeSavingsPlansInput, optFns ...func(*savingsplans.Options)) (*savingsplans.DescribeSavingsPlansOutput, error)
}

// EC2ListChecker inventories instances in the default region and the
// account's Savings Plans.
type EC2ListChecker struct {
	region string
	ec2For func(ctx context.Context, profile string) (ec2API, error)
	spFor  func(ctx context.Context, profile string) (savingsPlansAPI, error)
}

func NewEC2ListChecker(f *awsclient.Factory) *EC2ListChecker {
	return &EC2ListChecker{
		region: f.DefaultRegion(),
		ec2For: func(ctx context.Context, profile string) (ec2API, error) {
			return f.EC2(ctx, profile, "")
		},
		spFor: func(ctx context.Context, profile string) (savingsPlansAPI, error) {
			return f.SavingsPlans(ctx, profile)
		},
	}
}

func (c *EC2ListChecker) Name() string { return "ec2list" }

func (c *EC2ListChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	spClient, err := c.spFor(ctx, profile)
	if err != nil {
		return entity.EC2ListResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}
	plans, err := c.listSavingsPlans(ctx, spClient)
	if err != nil {
		return entity.EC2ListResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}

	ec2Client, err := c.ec2For(ctx, profile)
	if err != nil {
		return entity.EC2ListResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}
	instances, err := c.listInstances(ctx, ec2Client)
	if err != nil {
		return entity.EC2ListResult{ResultMeta: awsclient.ErrorMeta(err, profile), Region: c.region}
	}

	running, stopped := 0, 0
	for _, inst := range instances {
		switch inst.State {
		case "running":
			running++
		case "stopped":
			stopped++
		}
	}

	return entity.EC2ListResult{
		ResultMeta:   entity.ResultMeta{Status: entity.StatusSuccess},
		Region:       c.region,
		Total:        len(instances),
		Running:      running,
		Stopped:      stopped,
		Instances:    instances,
		SavingsPlans: plans,
	}
}

func (c *EC2ListChecker) listInstances(ctx context.Context, client ec2API) ([]entity.EC2Instance, error) {
	var instances []entity.EC2Instance
	input := &ec2.DescribeInstancesInput{}
	for {
		out, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, res := range out.Reservations {
			for _, inst := range res.Instances {
				instances = append(instances, convertInstance(inst))
			}
		}
		if out.NextToken == nil {
			return instances, nil
		}
		input.NextToken = out.NextToken
	}
}

func convertInstance(inst ec2types.Instance) entity.EC2Instance {
	name := "-"
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == "Name" {
			name = aws.ToString(tag.Value)
			break
		}
	}
	e := entity.EC2Instance{
		InstanceID: aws.ToString(inst.InstanceId),
		Name:       name,
		Type:       string(inst.InstanceType),
	}
	if inst.State != nil {
		e.State = string(inst.State.Name)
	}
	if inst.Placement != nil {
		e.AvailabilityZone = aws.ToString(inst.Placement.AvailabilityZone)
	}
	if inst.LaunchTime != nil {
		e.Launched = inst.LaunchTime.Format("2006-01-02 15:04:05")
	}
	return e
}

func (c *EC2ListChecker) listSavingsPlans(ctx context.Context, client savingsPlansAPI) ([]entity.SavingsPlan, error) {
	var plans []entity.SavingsPlan
	input := &savingsplans.DescribeSavingsPlansInput{States: savingsPlanStates}
	for {
		out, err := client.DescribeSavingsPlans(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, p := range out.SavingsPlans {
			plans = append(plans, convertSavingsPlan(p))
		}
		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			return plans, nil
		}
		input.NextToken = out.NextToken
	}
}

func convertSavingsPlan(p sptypes.SavingsPlan) entity.SavingsPlan {
	termYears := 0
	if secs := p.TermDurationInSeconds; secs > 0 {
		termYears = int((time.Duration(secs) * time.Second).Hours()/(365*24) + 0.5)
	}
	planType := string(p.SavingsPlanType)
	region := aws.ToString(p.Region)
	if region == "" {
		if planType == string(sptypes.SavingsPlanTypeCompute) {
			region = "All (Compute SP)"
		} else {
			region = "-"
		}
	}
	return entity.SavingsPlan{
		ID:          aws.ToString(p.SavingsPlanId),
		Type:        planType,
		TermYears:   termYears,
		State:       string(p.State),
		Region:      region,
		Start:       aws.ToString(p.Start),
		End:         aws.ToString(p.End),
		Payment:     string(p.PaymentOption),
		Description: aws.ToString(p.Description),
	}
}

func (c *EC2ListChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.EC2ListResult)
	if !ok || r.Status != entity.StatusSuccess {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	lines := []string{
		fmt.Sprintf("EC2 LIST | Region %s", r.Region),
		fmt.Sprintf("Savings Plans: %d found", len(r.SavingsPlans)),
	}
	for _, p := range r.SavingsPlans {
		lines = append(lines, fmt.Sprintf("  - %s | %s | %d-year | %s | Region %s | Payment %s | Start %s | End %s",
			p.ID, p.Type, p.TermYears, p.State, p.Region, p.Payment, p.Start, p.End))
	}
	lines = append(lines, "", fmt.Sprintf("Instances: %d found", r.Total))
	for _, inst := range r.Instances {
		lines = append(lines, fmt.Sprintf("  - %s | %s | %s | %s | %s | %s",
			inst.InstanceID, inst.Name, inst.Type, inst.State, inst.AvailabilityZone, inst.Launched))
	}
	return strings.Join(lines, "\n")
}
