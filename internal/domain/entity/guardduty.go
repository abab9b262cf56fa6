package entity

// GuardDutyFinding is one finding summarized for the report.
type GuardDutyFinding struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Updated  string `json:"updated"`
}

// GuardDutyResult is the outcome of the GuardDuty findings check.
// Status is "disabled" when the account has no detector.
type GuardDutyResult struct {
	ResultMeta
	Findings int                `json:"findings"`
	Details  []GuardDutyFinding `json:"details"`
}
