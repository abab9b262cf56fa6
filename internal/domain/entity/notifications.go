package entity

// NotificationEvent is one Notification Center event.
type NotificationEvent struct {
	EventType string `json:"event_type"`
	Headline  string `json:"headline"`
	Created   string `json:"created"`
}

// NotificationResult is the outcome of the notification center check.
type NotificationResult struct {
	ResultMeta
	TodayCount   int                 `json:"today_count"`
	TotalManaged int                 `json:"total_managed"`
	RegularCount int                 `json:"regular_count"`
	TodayEvents  []NotificationEvent `json:"today_events"`
	AllEvents    []NotificationEvent `json:"all_events"`
}
