package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/primanata/aws-monitoring-hub-go/internal/adapter/driven/jobstore"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

// Command actions understood by the dispatcher.
const (
	ActionRun    = "run"
	ActionStatus = "status"
)

// Job kinds produced by run commands.
const (
	KindArbelBudget = "arbel-budget"
	KindArbelRDS    = "arbel-rds"
)

const defaultRDSWindow = "3h"

// Command is a parsed slash command.
type Command struct {
	Action  string
	Kind    string
	JobID   string
	Payload map[string]string
}

// ParseCommand interprets the text of a /monitor slash command.
//
//	/monitor status <job-id>
//	/monitor run arbel budget
//	/monitor run arbel rds [--window 3h]
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) > 0 && fields[0] == "/monitor" {
		fields = fields[1:]
	}

	if len(fields) == 2 && fields[0] == "status" {
		return Command{Action: ActionStatus, JobID: fields[1]}, nil
	}

	if len(fields) >= 3 && fields[0] == "run" && fields[1] == "arbel" {
		switch fields[2] {
		case "budget":
			return Command{Action: ActionRun, Kind: KindArbelBudget, Payload: map[string]string{}}, nil
		case "rds":
			window := defaultRDSWindow
			rest := fields[3:]
			for i := 0; i < len(rest); i++ {
				if rest[i] == "--window" && i+1 < len(rest) {
					window = rest[i+1]
					i++
				}
			}
			return Command{
				Action:  ActionRun,
				Kind:    KindArbelRDS,
				Payload: map[string]string{"window": window},
			}, nil
		}
	}

	return Command{}, fmt.Errorf("unsupported command: %s", strings.TrimSpace(text))
}

// Dispatcher executes parsed commands against the job store.
type Dispatcher struct {
	store *jobstore.Store
}

// NewDispatcher cria um Dispatcher sobre o job store.
func NewDispatcher(store *jobstore.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Dispatch handles a slash command text and returns the reply to post back.
func (d *Dispatcher) Dispatch(ctx context.Context, text, requestedBy string) (string, error) {
	cmd, err := ParseCommand(text)
	if err != nil {
		return err.Error(), nil
	}

	switch cmd.Action {
	case ActionRun:
		job, err := d.store.Create(cmd.Kind, cmd.Payload, requestedBy)
		if err != nil {
			return "", fmt.Errorf("error creating job: %w", err)
		}
		return fmt.Sprintf("Job diterima: %s", job.JobID), nil
	case ActionStatus:
		job, err := d.store.Get(cmd.JobID)
		if errors.Is(err, types.ErrJobNotFound) {
			return fmt.Sprintf("Job tidak ditemukan: %s", cmd.JobID), nil
		}
		if err != nil {
			return "", fmt.Errorf("error fetching job: %w", err)
		}
		return fmt.Sprintf("Job %s status: %s", job.JobID, job.Status), nil
	}

	return fmt.Sprintf("unsupported command: %s", strings.TrimSpace(text)), nil
}
