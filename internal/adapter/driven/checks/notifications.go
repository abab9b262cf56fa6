package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/notifications"
	ntypes "github.com/aws/aws-sdk-go-v2/service/notifications/types"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/awsclient"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

type notificationsManagedEvent = ntypes.ManagedNotificationEventOverview

type notificationsAPI interface {
	ListManagedNotificationEvents(ctx context.Context, params *notifications.ListManagedNotificationEventsInput, optFns ...func(*notifications.Options)) (*notifications.ListManagedNotificationEventsOutput, error)
	ListNotificationEvents(ctx context.Context, params *notifications.ListNotificationEventsInput, optFns ...func(*notifications.Options)) (*notifications.ListNotificationEventsOutput, error)
}

// NotificationChecker reads the Notification Center, which only lives
// in us-east-1.
type NotificationChecker struct {
	api func(ctx context.Context, profile string) (notificationsAPI, error)
	now func() time.Time
}

func NewNotificationChecker(f *awsclient.Factory) *NotificationChecker {
	return &NotificationChecker{
		api: func(ctx context.Context, profile string) (notificationsAPI, error) {
			return f.Notifications(ctx, profile)
		},
		now: time.Now,
	}
}

func (c *NotificationChecker) Name() string         { return "notifications" }
func (c *NotificationChecker) SectionTitle() string { return "NOTIFICATION CENTER" }

func (c *NotificationChecker) Check(ctx context.Context, profile, accountID string) entity.CheckResult {
	client, err := c.api(ctx, profile)
	if err != nil {
		return entity.NotificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	dayStart := entity.StartOfWIBDay(c.now())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	todayOut, err := client.ListManagedNotificationEvents(ctx, &notifications.ListManagedNotificationEventsInput{
		StartTime: aws.Time(dayStart),
		EndTime:   aws.Time(dayEnd),
	})
	if err != nil {
		return entity.NotificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	allOut, err := client.ListManagedNotificationEvents(ctx, &notifications.ListManagedNotificationEventsInput{})
	if err != nil {
		return entity.NotificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	regularOut, err := client.ListNotificationEvents(ctx, &notifications.ListNotificationEventsInput{})
	if err != nil {
		return entity.NotificationResult{ResultMeta: awsclient.ErrorMeta(err, profile)}
	}

	todayEvents := make([]entity.NotificationEvent, 0, len(todayOut.ManagedNotificationEvents))
	for _, e := range todayOut.ManagedNotificationEvents {
		todayEvents = append(todayEvents, convertManagedEvent(e))
	}
	allEvents := make([]entity.NotificationEvent, 0, len(allOut.ManagedNotificationEvents))
	for _, e := range allOut.ManagedNotificationEvents {
		allEvents = append(allEvents, convertManagedEvent(e))
	}

	return entity.NotificationResult{
		ResultMeta:   entity.ResultMeta{Status: entity.StatusSuccess},
		TodayCount:   len(todayEvents),
		TotalManaged: len(allEvents),
		RegularCount: len(regularOut.NotificationEvents),
		TodayEvents:  todayEvents,
		AllEvents:    allEvents,
	}
}

func convertManagedEvent(e notificationsManagedEvent) entity.NotificationEvent {
	out := entity.NotificationEvent{EventType: "N/A", Headline: "N/A"}
	if e.CreationTime != nil {
		out.Created = e.CreationTime.UTC().Format(time.RFC3339)
	}
	if e.NotificationEvent != nil {
		if e.NotificationEvent.SourceEventMetadata != nil && e.NotificationEvent.SourceEventMetadata.EventType != nil {
			out.EventType = *e.NotificationEvent.SourceEventMetadata.EventType
		}
		if e.NotificationEvent.MessageComponents != nil && e.NotificationEvent.MessageComponents.Headline != nil {
			out.Headline = *e.NotificationEvent.MessageComponents.Headline
		}
	}
	return out
}

func (c *NotificationChecker) FormatReport(result entity.CheckResult) string {
	r, ok := result.(entity.NotificationResult)
	if !ok || r.Status == entity.StatusError {
		return fmt.Sprintf("ERROR: %s", result.ErrorMessage())
	}

	lines := []string{
		"AWS NOTIFICATION CENTER",
		fmt.Sprintf("Today: %d new | Total: %d", r.TodayCount, r.TotalManaged),
	}

	show := r.TodayEvents
	label := "Today's notifications:"
	limit := 5
	if len(show) == 0 && len(r.AllEvents) > 0 {
		show = r.AllEvents
		label = "Latest notifications (for reference):"
		limit = 3
	}
	if len(show) > 0 {
		lines = append(lines, "", label)
		for i, e := range show {
			if i == limit {
				break
			}
			lines = append(lines,
				"",
				fmt.Sprintf("* [%s] %s", orNA(e.Created), e.EventType),
				fmt.Sprintf("  %s", truncate(e.Headline, 150)),
			)
		}
	}
	return strings.Join(lines, "\n")
}

func (c *NotificationChecker) CountIssues(result entity.CheckResult) int {
	r, ok := result.(entity.NotificationResult)
	if !ok || r.Status == entity.StatusError {
		return 0
	}
	return r.TodayCount
}

func (c *NotificationChecker) RenderSection(results []entity.ProfileResult, errors []entity.ProfileError) []string {
	lines := []string{"", "NOTIFICATION CENTER"}

	if len(errors) > 0 {
		lines = append(lines, "Status: ERROR - Notification Center check failed")
		return renderErrors(lines, errors)
	}

	totalToday, totalManaged := 0, 0
	var firstToday []entity.NotificationEvent
	var allEvents []entity.NotificationEvent
	any := false
	for _, pr := range results {
		r, ok := pr.Result.(entity.NotificationResult)
		if !ok || r.Status != entity.StatusSuccess {
			continue
		}
		any = true
		if firstToday == nil && len(r.TodayEvents) > 0 {
			firstToday = r.TodayEvents
		}
		totalToday += r.TodayCount
		totalManaged += r.TotalManaged
		allEvents = append(allEvents, r.AllEvents...)
	}

	if !any {
		lines = append(lines, "Status: No data")
		return lines
	}

	if totalToday == 0 {
		lines = append(lines, fmt.Sprintf("Status: No new notifications today (%d existing available)", totalManaged))
	} else {
		lines = append(lines, fmt.Sprintf("Status: %d new notifications detected today", totalToday), "", "Today's Notifications:")
		for i, e := range firstToday {
			if i == 3 {
				break
			}
			lines = append(lines,
				fmt.Sprintf("  * Event Type: %s", e.EventType),
				fmt.Sprintf("    Description: %s", e.Headline),
			)
		}
	}

	if len(allEvents) > 0 {
		sort.Slice(allEvents, func(i, j int) bool { return allEvents[i].Created > allEvents[j].Created })
		lines = append(lines, "", fmt.Sprintf("All Notifications (%d total):", len(allEvents)))
		for i, e := range allEvents {
			if i == 5 {
				break
			}
			lines = append(lines,
				fmt.Sprintf("  * [%s] %s", orNA(e.Created), e.EventType),
				fmt.Sprintf("    %s", truncate(e.Headline, 120)),
			)
		}
		if len(allEvents) > 5 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(allEvents)-5))
		}
	}
	return lines
}
