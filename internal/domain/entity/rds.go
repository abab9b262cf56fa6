package entity

// RDS metric statuses for the daily metrics check.
const (
	MetricStatusOK       = "ok"
	MetricStatusWarn     = "warn"
	MetricStatusPastWarn = "past-warn"
	MetricStatusNoData   = "no-data"
)

// MetricReading is the evaluation of one CloudWatch metric for an instance.
// Message is the ready-to-send Indonesian summary line.
type MetricReading struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// InstanceMetrics holds the evaluated metrics of one DB instance role.
type InstanceMetrics struct {
	InstanceID string                   `json:"instance_id"`
	Metrics    map[string]MetricReading `json:"metrics"`
}

// RDSMetricsResult is the outcome of the daily RDS metrics check.
// Instances is keyed by role ("writer", "reader"). Status is "OK" or
// "ATTENTION REQUIRED" on success, "skipped" for unconfigured profiles.
type RDSMetricsResult struct {
	ResultMeta
	AccountName string                     `json:"account_name"`
	AccountID   string                     `json:"account_id"`
	ClusterID   string                     `json:"cluster_id"`
	Region      string                     `json:"region"`
	WindowHours int                        `json:"window_hours"`
	Instances   map[string]InstanceMetrics `json:"instances"`
	Reason      string                     `json:"reason,omitempty"`
}
