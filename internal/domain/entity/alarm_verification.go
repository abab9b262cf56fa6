package entity

// Recommended actions for a verified alarm.
const (
	ActionReportNow         = "REPORT_NOW"
	ActionMonitor           = "MONITOR"
	ActionNoReportRecovered = "NO_REPORT_RECOVERED"
	ActionNoReportTransient = "NO_REPORT_TRANSIENT"
)

// AlarmVerification is the duration analysis of one CloudWatch alarm.
type AlarmVerification struct {
	AlarmName             string `json:"alarm_name"`
	Status                string `json:"status"`
	State                 string `json:"current_state,omitempty"`
	Reason                string `json:"reason,omitempty"`
	ShouldReport          bool   `json:"should_report"`
	RecommendedAction     string `json:"recommended_action,omitempty"`
	OngoingMinutes        int    `json:"ongoing_minutes,omitempty"`
	BreachDurationMinutes int    `json:"breach_duration_minutes,omitempty"`
	BreachStart           string `json:"breach_start,omitempty"`
	BreachEnd             string `json:"breach_end,omitempty"`
	Message               string `json:"message,omitempty"`
}

// AlarmVerificationResult is the outcome of the alarm duration check.
type AlarmVerificationResult struct {
	ResultMeta
	MinDurationMinutes int                 `json:"min_duration_minutes"`
	Alarms             []AlarmVerification `json:"alarms"`
}
