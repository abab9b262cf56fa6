package entity

// AlarmDetail is one CloudWatch alarm currently in ALARM state.
type AlarmDetail struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Updated string `json:"updated"`
}

// CloudWatchAlarmResult is the outcome of the active alarms check.
type CloudWatchAlarmResult struct {
	ResultMeta
	Count   int           `json:"count"`
	Details []AlarmDetail `json:"details"`
}
