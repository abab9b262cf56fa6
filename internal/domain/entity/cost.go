package entity

// CostMonitor is one Cost Explorer anomaly monitor.
type CostMonitor struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Dimension       string `json:"dimension,omitempty"`
	ServicesTracked int32  `json:"services_tracked"`
	LastEvaluated   string `json:"last_evaluated,omitempty"`
}

// CostAnomalyRootCause points at the service and usage type behind an anomaly.
type CostAnomalyRootCause struct {
	Service       string  `json:"service,omitempty"`
	Region        string  `json:"region,omitempty"`
	UsageType     string  `json:"usage_type,omitempty"`
	LinkedAccount string  `json:"linked_account,omitempty"`
	Contribution  float64 `json:"contribution"`
}

// CostAnomaly is one anomaly reported by a Cost Explorer anomaly monitor.
type CostAnomaly struct {
	MonitorName   string                 `json:"monitor_name"`
	AnomalyID     string                 `json:"anomaly_id"`
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date,omitempty"`
	Score         float64                `json:"score"`
	Impact        float64                `json:"impact"`
	ActualSpend   float64                `json:"actual_spend"`
	ExpectedSpend float64                `json:"expected_spend"`
	ImpactPercent float64                `json:"impact_percent"`
	RootCauses    []CostAnomalyRootCause `json:"root_causes,omitempty"`
}

// CostAnomalyResult is the outcome of the cost anomalies check for one account.
type CostAnomalyResult struct {
	ResultMeta
	TotalMonitors         int           `json:"total_monitors"`
	TotalAnomalies        int           `json:"total_anomalies"`
	TodayAnomalyCount     int           `json:"today_anomaly_count"`
	YesterdayAnomalyCount int           `json:"yesterday_anomaly_count"`
	Monitors              []CostMonitor `json:"monitors"`
	Anomalies             []CostAnomaly `json:"anomalies"`
}

// AccountCost is the month-to-date CloudWatch spend of one linked account.
type AccountCost struct {
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name,omitempty"`
	Cost        float64 `json:"cost"`
	Usage       float64 `json:"usage"`
}

// LinkedAccountCostResult holds the top-N linked account cost breakdown.
type LinkedAccountCostResult struct {
	ResultMeta
	Service     string        `json:"service"`
	Region      string        `json:"region"`
	PeriodStart string        `json:"period_start"`
	PeriodEnd   string        `json:"period_end"`
	TotalCost   float64       `json:"total_cost"`
	TotalUsage  float64       `json:"total_usage"`
	Accounts    []AccountCost `json:"accounts"`
}
