package entity

// BudgetItem is one daily budget with its consumption state.
type BudgetItem struct {
	BudgetName    string    `json:"budget_name"`
	Actual        float64   `json:"actual"`
	Limit         float64   `json:"limit"`
	Percent       float64   `json:"percent"`
	OverAmount    float64   `json:"over_amount"`
	IsOverBudget  bool      `json:"is_over_budget"`
	ThresholdHits []float64 `json:"threshold_hits,omitempty"`
}

// BudgetResult is the outcome of the daily budget check for one account.
// Status is "OK" or "ATTENTION REQUIRED" on success. Items are sorted
// by percent consumed, highest first.
type BudgetResult struct {
	ResultMeta
	AccountName            string       `json:"account_name"`
	AccountID              string       `json:"account_id"`
	Items                  []BudgetItem `json:"items"`
	ThresholdExceededCount int          `json:"threshold_exceeded_count"`
	OverBudgetCount        int          `json:"over_budget_count"`
}
