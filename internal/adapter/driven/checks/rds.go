package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/rs/zerolog"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

// One-minute resolution keeps short spikes visible in the breach periods.
const metricPeriodSeconds = 60

// Evaluation order for report output.
var arbelMetricOrder = []string{
	"ACUUtilization",
	"CPUUtilization",
	"FreeableMemory",
	"DatabaseConnections",
}

type metricDataAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

type rdsClusterAPI interface {
	DescribeDBClusters(ctx context.Context, params *rds.DescribeDBClustersInput, optFns ...func(*rds.Options)) (*rds.DescribeDBClustersOutput, error)
}

// DailyArbelChecker evaluates ACU, CPU, freeable memory and connection
// metrics for the configured RDS clusters and writes the Indonesian
// daily report lines.
type DailyArbelChecker struct {
	targets     []types.RDSTarget
	windowHours int
	cwFor       func(ctx context.Context, profile, region string) (metricDataAPI, error)
	rdsFor      func(ctx context.Context, profile, region string) (rdsClusterAPI, error)
	now         func() time.Time
	logger      zerolog.Logger
}

func NewDailyArbelChecker(f *awsclient.Factory, targets []types.RDSTarget, windowHours int, logger zerolog.Logger) *DailyArbelChecker {
	if windowHours <= 0 {
		windowHours = 12
	}
	return &DailyArbelChecker{
		targets:     targets,
		windowHours: windowHours,
		cwFor: func(ctx context.Context, profile, region string) (metricDataAPI, error) {
			return f.CloudWatch(ctx, profile, region)
		},
		rdsFor: func(ctx context.Context, profile, region string) (rdsClusterAPI, error) {
			return f.RDS(ctx, profile, region)
		},
		now:    time.Now,
		logger: logger,
	}
}

func (c *DailyArbelChecker) Name() string         { return "daily-arbel" }
func (c *DailyArbelChecker) SectionTitle() string { return "DAILY ARBEL METRICS" }

func (c *DailyArbelChecker) target(profile string) *types.RDSTarget {
	for i := range c.targets {
		if c.targets[i].Profile == profile {
			return &c.targets[i]
		}
	}
	return nil
}

func (c *DailyArbelChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	t := c.target(profile)
	if t == nil {
		return entity.RDSMetricsResult{
			ResultMeta: entity.ResultMeta{Status: entity.StatusSkipped},
			Reason:     "profile not configured",
		}
	}

	cw, err := c.cwFor(ctx, profile, t.Region)
	if err != nil {
		return entity.RDSMetricsResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	instances := map[string]string{}
	if t.Writer != "" {
		instances["writer"] = t.Writer
	} else if t.ClusterID != "" {
		writer, err := c.detectWriter(ctx, profile, t)
		if err != nil {
			c.logger.Warn().Err(err).Str("cluster", t.ClusterID).Msg("writer detection failed")
		}
		instances["writer"] = writer
	}
	if t.Reader != "" {
		instances["reader"] = t.Reader
	}

	thresholds := resolveThresholds(t.Thresholds)

	reports := map[string]entity.InstanceMetrics{}
	anyWarn := false
	for role, instID := range instances {
		if instID == "" {
			reports[role] = entity.InstanceMetrics{
				Metrics: map[string]entity.MetricReading{
					"ACUUtilization": {Status: entity.MetricStatusNoData, Message: "Instance not found"},
				},
			}
			continue
		}

		series, err := c.fetchMetrics(ctx, cw, instID)
		if err != nil {
			return entity.RDSMetricsResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
		}

		evaluations := map[string]entity.MetricReading{}
		for _, metric := range arbelMetricOrder {
			status, msg := evaluateMetric(metric, series[metric], thresholds[metric])
			evaluations[metric] = entity.MetricReading{Status: status, Message: msg}
			if status == entity.MetricStatusWarn {
				anyWarn = true
			}
		}
		reports[role] = entity.InstanceMetrics{InstanceID: instID, Metrics: evaluations}
	}

	status := entity.StatusOK
	if anyWarn {
		status = entity.StatusAttention
	}
	return entity.RDSMetricsResult{
		ResultMeta:  entity.ResultMeta{Status: status},
		AccountName: t.AccountName,
		AccountID:   accountID,
		ClusterID:   t.ClusterID,
		Region:      t.Region,
		WindowHours: c.windowHours,
		Instances:   reports,
	}
}

func (c *DailyArbelChecker) detectWriter(ctx context.Context, profile string, t *types.RDSTarget) (string, error) {
	client, err := c.rdsFor(ctx, profile, t.Region)
	if err != nil {
		return "", err
	}
	out, err := client.DescribeDBClusters(ctx, &rds.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(t.ClusterID),
	})
	if err != nil {
		return "", err
	}
	for _, cluster := range out.DBClusters {
		for _, member := range cluster.DBClusterMembers {
			if aws.ToBool(member.IsClusterWriter) {
				return aws.ToString(member.DBInstanceIdentifier), nil
			}
		}
	}
	return "", nil
}

// metricSeries keeps the time-ordered datapoints of one metric.
type metricSeries struct {
	timestamps []time.Time
	values     []float64
}

func (s metricSeries) last() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}

func (c *DailyArbelChecker) fetchMetrics(ctx context.Context, cw metricDataAPI, instanceID string) (map[string]metricSeries, error) {
	end := c.now().UTC()
	start := end.Add(-time.Duration(c.windowHours) * time.Hour)

	idBase := strings.NewReplacer("-", "_", ".", "_").Replace(instanceID)
	queries := make([]cwtypes.MetricDataQuery, 0, len(arbelMetricOrder))
	for _, metric := range arbelMetricOrder {
		queries = append(queries, cwtypes.MetricDataQuery{
			Id: aws.String(fmt.Sprintf("%s_%s_average", idBase, strings.ToLower(metric))),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String("AWS/RDS"),
					MetricName: aws.String(metric),
					Dimensions: []cwtypes.Dimension{
						{Name: aws.String("DBInstanceIdentifier"), Value: aws.String(instanceID)},
					},
				},
				Period: aws.Int32(metricPeriodSeconds),
				Stat:   aws.String("Average"),
			},
			ReturnData: aws.Bool(true),
		})
	}

	out, err := cw.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		MetricDataQueries: queries,
		StartTime:         aws.Time(start),
		EndTime:           aws.Time(end),
		ScanBy:            cwtypes.ScanByTimestampDescending,
	})
	if err != nil {
		return nil, err
	}

	series := map[string]metricSeries{}
	for _, item := range out.MetricDataResults {
		id := aws.ToString(item.Id)
		var metric string
		for _, m := range arbelMetricOrder {
			if strings.Contains(id, strings.ToLower(m)) {
				metric = m
				break
			}
		}
		if metric == "" {
			continue
		}

		type point struct {
			t time.Time
			v float64
		}
		points := make([]point, 0, len(item.Values))
		for i := range item.Values {
			if i >= len(item.Timestamps) {
				break
			}
			ts := item.Timestamps[i]
			if ts.Before(start) || ts.After(end) {
				continue
			}
			points = append(points, point{t: ts, v: item.Values[i]})
		}
		if len(points) == 0 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

		s := metricSeries{
			timestamps: make([]time.Time, len(points)),
			values:     make([]float64, len(points)),
		}
		for i, p := range points {
			s.timestamps[i] = p.t
			s.values[i] = p.v
		}
		series[metric] = s
	}
	return series, nil
}

func resolveThresholds(t types.RDSThresholds) map[string]float64 {
	acu, cpu, memGB, conns := t.ACUPercent, t.CPUPercent, t.FreeableMemoryGB, t.Connections
	if acu == 0 {
		acu = 75
	}
	if cpu == 0 {
		cpu = 75
	}
	if memGB == 0 {
		memGB = 10
	}
	if conns == 0 {
		conns = 1500
	}
	return map[string]float64{
		"ACUUtilization":      acu,
		"CPUUtilization":      cpu,
		"FreeableMemory":      memGB * 1024 * 1024 * 1024,
		"DatabaseConnections": conns,
	}
}

// breachPeriod is one contiguous run of datapoints past the threshold.
type breachPeriod struct {
	peak    float64
	start   string
	end     string
	minutes int
}

// breachPeriods groups threshold violations into periods, where a gap of
// more than five minutes between datapoints starts a new period. Periods
// shorter than ten minutes are dropped as noise.
func breachPeriods(s metricSeries, threshold float64, above bool) []breachPeriod {
	type point struct {
		t time.Time
		v float64
	}
	var breached []point
	for i, v := range s.values {
		if (above && v > threshold) || (!above && v < threshold) {
			breached = append(breached, point{t: s.timestamps[i], v: v})
		}
	}
	if len(breached) == 0 {
		return nil
	}

	var groups [][]point
	current := []point{breached[0]}
	for i := 1; i < len(breached); i++ {
		if breached[i].t.Sub(breached[i-1].t) <= 5*time.Minute {
			current = append(current, breached[i])
		} else {
			groups = append(groups, current)
			current = []point{breached[i]}
		}
	}
	groups = append(groups, current)

	var periods []breachPeriod
	for _, group := range groups {
		peak := group[0].v
		for _, p := range group {
			if (above && p.v > peak) || (!above && p.v < peak) {
				peak = p.v
			}
		}
		minutes := int(group[len(group)-1].t.Sub(group[0].t).Minutes())
		if minutes < 10 {
			continue
		}
		periods = append(periods, breachPeriod{
			peak:    peak,
			start:   group[0].t.In(entity.WIB).Format("15:04"),
			end:     group[len(group)-1].t.In(entity.WIB).Format("15:04"),
			minutes: minutes,
		})
	}
	return periods
}

func evaluateMetric(metric string, s metricSeries, threshold float64) (string, string) {
	if len(s.values) == 0 {
		return entity.MetricStatusNoData, "Data tidak tersedia"
	}
	last := s.last()

	switch metric {
	case "ACUUtilization", "CPUUtilization":
		label := "ACU Utilization"
		if metric == "CPUUtilization" {
			label = "CPU Utilization"
		}
		periods := breachPeriods(s, threshold, true)
		detail := joinPeriods(periods, func(p breachPeriod) string {
			return fmt.Sprintf("%.0f%% pukul %s-%s WIB (%d menit)", p.peak, p.start, p.end, p.minutes)
		})
		if last > threshold {
			msg := fmt.Sprintf("%s: %.0f%% (di atas %d%%)", label, last, int(threshold))
			if detail != "" {
				msg += " | " + detail
			}
			return entity.MetricStatusWarn, msg
		}
		if detail != "" {
			return entity.MetricStatusPastWarn,
				fmt.Sprintf("%s: %.0f%% (sekarang normal, sempat > %d%% | %s)", label, last, int(threshold), detail)
		}
		return entity.MetricStatusOK, fmt.Sprintf("%s: %.0f%% (normal)", label, last)

	case "FreeableMemory":
		periods := breachPeriods(s, threshold, false)
		detail := joinPeriods(periods, func(p breachPeriod) string {
			return fmt.Sprintf("%s pukul %s-%s WIB (%d menit)", humanGB(p.peak), p.start, p.end, p.minutes)
		})
		if last < threshold {
			msg := fmt.Sprintf("Freeable Memory: %s (rendah < %s)", humanGB(last), humanGB(threshold))
			if detail != "" {
				msg += " | " + detail
			}
			return entity.MetricStatusWarn, msg
		}
		if detail != "" {
			return entity.MetricStatusPastWarn,
				fmt.Sprintf("Freeable Memory: %s (sekarang normal, sempat < %s | %s)", humanGB(last), humanGB(threshold), detail)
		}
		return entity.MetricStatusOK, fmt.Sprintf("Freeable Memory: %s (normal)", humanGB(last))

	case "DatabaseConnections":
		periods := breachPeriods(s, threshold, true)
		detail := joinPeriods(periods, func(p breachPeriod) string {
			return fmt.Sprintf("%d connections pukul %s-%s WIB (%d menit)", int(p.peak), p.start, p.end, p.minutes)
		})
		if last > threshold {
			msg := fmt.Sprintf("DB Connections: %d (di atas %d)", int(last), int(threshold))
			if detail != "" {
				msg += " | " + detail
			}
			return entity.MetricStatusWarn, msg
		}
		if detail != "" {
			return entity.MetricStatusPastWarn,
				fmt.Sprintf("DB Connections: %d (sekarang normal, sempat > %d | %s)", int(last), int(threshold), detail)
		}
		return entity.MetricStatusOK, fmt.Sprintf("DB Connections: %d (normal)", int(last))
	}

	return entity.MetricStatusNoData, fmt.Sprintf("%s: Data tidak tersedia", metric)
}

func joinPeriods(periods []breachPeriod, render func(breachPeriod) string) string {
	if len(periods) == 0 {
		return ""
	}
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = render(p)
	}
	return strings.Join(parts, ", ")
}

// roleOrder puts the writer first, then the reader, then anything else.
func roleOrder(instances map[string]entity.InstanceMetrics) []string {
	var roles []string
	for role := range instances {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		rank := func(r string) int {
			switch r {
			case "writer":
				return 0
			case "reader":
				return 1
			}
			return 2
		}
		if rank(roles[i]) != rank(roles[j]) {
			return rank(roles[i]) < rank(roles[j])
		}
		return roles[i] < roles[j]
	})
	return roles
}

func (c *DailyArbelChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.RDSMetricsResult)
	if !ok {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}
	if r.Status == entity.StatusSkipped {
		return fmt.Sprintf("Daily Arbel skipped: %s", r.Reason)
	}
	if r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", r.Error)
	}

	now := c.now().In(entity.WIB)
	hello, waktu := entity.GreetingWIB(now)

	lines := []string{
		fmt.Sprintf("%s Team,", hello),
		fmt.Sprintf("Berikut Daily report untuk akun id %s (%s) pada %s ini (Data per %s, monitoring %d jam terakhir)",
			r.AccountName, r.AccountID, waktu, entity.FormatWIBClock(now), r.WindowHours),
		now.Format("02-01-2006"),
		"",
		"Summary:",
	}

	for _, role := range roleOrder(r.Instances) {
		data := r.Instances[role]
		instID := data.InstanceID
		if instID == "" {
			instID = "N/A"
		}
		lines = append(lines, "", fmt.Sprintf("%s (%s):", Capitalize(role), instID))
		for _, metric := range arbelMetricOrder {
			if reading, ok := data.Metrics[metric]; ok {
				lines = append(lines, fmt.Sprintf("* %s", reading.Message))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (c *DailyArbelChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.RDSMetricsResult)
	if !ok || r.Status == entity.StatusError || r.Status == entity.StatusSkipped {
		return 0
	}
	count := 0
	for _, inst := range r.Instances {
		for _, m := range inst.Metrics {
			if m.Status == entity.MetricStatusWarn {
				count++
			}
		}
	}
	return count
}

func (c *DailyArbelChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "DAILY ARBEL METRICS"}

	if len(errors) > 0 {
		lines = append(lines, "Status: ERROR - Daily Arbel check failed")
		return renderErrors(lines, errors)
	}

	type warning struct {
		profile   string
		accountID string
		count     int
	}
	var warnings []warning
	for _, pr := range results {
		r, ok := pr.Result.(entity.RDSMetricsResult)
		if !ok || r.Status == entity.StatusSkipped {
			continue
		}
		if n := c.CountIssues(pr.Result); n > 0 {
			warnings = append(warnings, warning{profile: pr.Profile, accountID: pr.AccountID, count: n})
		}
	}

	if len(warnings) == 0 {
		lines = append(lines, "Status: All RDS metrics normal")
		return lines
	}
	lines = append(lines, fmt.Sprintf("Status: %d accounts with metric warnings", len(warnings)))
	for _, w := range warnings {
		lines = append(lines, fmt.Sprintf("  * %s (%s): %d metric warnings", w.profile, w.accountID, w.count))
	}
	return lines
}
