// Package audit persists the per-run trail of how every reconciled value was
// derived, as append-only JSON lines under logs/.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Action identifies a derivation decision worth auditing.
type Action string

const (
	ActionProposalMatched     Action = "proposal-matched"
	ActionProposalDeclined    Action = "proposal-declined"
	ActionPaymentOnly         Action = "payment-only"
	ActionAppointmentOverride Action = "appointment-override"
	ActionAPIDegraded         Action = "api-degraded"
	ActionEnrichFailed        Action = "enrich-failed"
)

// Event is one row of the audit trail.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	Date       string    `json:"date,omitempty"`
	PatientID  int       `json:"patient_id,omitempty"`
	ProposalID int       `json:"proposal_id,omitempty"`
	InvoiceID  int       `json:"invoice_id,omitempty"`
	Action     Action    `json:"action"`
	Details    string    `json:"details,omitempty"`
}

const (
	logDir  = "logs"
	logFile = "logs/audit.jsonl"
)

// Trail appends events for a single run, stamping each with the run ID.
type Trail struct {
	root  string
	runID string
}

// NewTrail creates a Trail rooted at the workspace directory.
func NewTrail(root string) *Trail {
	return &Trail{root: root, runID: uuid.NewString()}
}

// RunID returns the trail's run identifier.
func (t *Trail) RunID() string {
	return t.runID
}

// Record appends one event to <root>/logs/audit.jsonl, creating the file if
// needed.
func (t *Trail) Record(e Event) error {
	e.RunID = t.runID
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Join(t.root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(t.root, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit trail: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Read returns all events from <root>/logs/audit.jsonl. A missing file is an
// empty trail.
func Read(root string) ([]Event, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit trail: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for i := 1; scanner.Scan(); i++ {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit trail: %w", err)
	}
	return events, nil
}
