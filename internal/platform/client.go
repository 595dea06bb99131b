// Package platform is the single point of contact with the external
// practice-management API. It owns memoized lookups and the retry policy.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/clinsync-dev/clinsync/internal/model"
)

const (
	// appointmentWindowDays bounds the appointment search around a date.
	appointmentWindowDays = 7
	// invoiceWindowDays bounds the invoice detail lookup window.
	invoiceWindowDays = 180
)

type proposalKey struct {
	patientID int
	date      civil.Date
}

// Client calls the practice-management REST API. Procedure names and
// category groups are memoized for the process lifetime; proposal and
// appointment lookups are memoized per batch and cleared by ResetBatch.
// Not safe for concurrent use; enrichment is strictly sequential.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	log     zerolog.Logger

	procNames    map[int]string
	groups       []model.CategoryGroup
	groupsLoaded bool

	proposals    map[proposalKey][]model.Proposal
	appointments map[int][]model.Appointment
}

// NewClient creates a Client for the given base URL and bearer token.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		hc:           &http.Client{Timeout: 30 * time.Second},
		log:          log,
		procNames:    make(map[int]string),
		proposals:    make(map[proposalKey][]model.Proposal),
		appointments: make(map[int][]model.Appointment),
	}
}

// ResetBatch clears the batch-scoped memos (proposals, appointments).
// Procedure names and category groups survive for the process.
func (c *Client) ResetBatch() {
	c.proposals = make(map[proposalKey][]model.Proposal)
	c.appointments = make(map[int][]model.Appointment)
}

// ListTransactions fetches the transaction report for a date range. This is
// the primary feed: failures here are fatal to the batch, so errors are
// returned as-is for the caller to abort on.
func (c *Client) ListTransactions(ctx context.Context, from, to civil.Date, accountType string) ([]model.Transaction, error) {
	query := url.Values{}
	query.Set("start", from.String())
	query.Set("end", to.String())
	if accountType != "" {
		query.Set("account_type", accountType)
	}

	var resp transactionsResponse
	if err := c.getJSON(ctx, "/v1/transactions", query, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching transaction report: %w", err)
	}

	txns := make([]model.Transaction, 0, len(resp.Transactions))
	for _, row := range resp.Transactions {
		txn, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("malformed transaction report: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// ListProposals fetches a patient's proposals for a date, memoized per
// (patient, date) within the batch.
func (c *Client) ListProposals(ctx context.Context, patientID int, date civil.Date) ([]model.Proposal, error) {
	key := proposalKey{patientID: patientID, date: date}
	if cached, ok := c.proposals[key]; ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("date", date.String())

	var resp proposalsResponse
	err := c.getJSON(ctx, fmt.Sprintf("/v1/patients/%d/proposals", patientID), query, &resp)
	if errors.Is(err, errNotFound) {
		c.proposals[key] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	proposals := make([]model.Proposal, 0, len(resp.Proposals))
	for _, row := range resp.Proposals {
		proposals = append(proposals, row.toModel())
	}
	c.proposals[key] = proposals
	return proposals, nil
}

// GetInvoice fetches invoice detail within a window around the given date.
// A missing invoice is a valid nil answer, not an error.
func (c *Client) GetInvoice(ctx context.Context, invoiceID int, around civil.Date) (*model.Invoice, error) {
	query := url.Values{}
	query.Set("start", around.AddDays(-invoiceWindowDays).String())
	query.Set("end", around.AddDays(invoiceWindowDays).String())

	var row invoiceRow
	err := c.getJSON(ctx, fmt.Sprintf("/v1/invoices/%d", invoiceID), query, &row)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// ProcedureName resolves a procedure's display name, memoized by ID for the
// process lifetime. Unknown procedures memoize as empty.
func (c *Client) ProcedureName(ctx context.Context, procedureID int) (string, error) {
	if name, ok := c.procNames[procedureID]; ok {
		return name, nil
	}

	var row procedureRow
	err := c.getJSON(ctx, fmt.Sprintf("/v1/procedures/%d", procedureID), nil, &row)
	if errors.Is(err, errNotFound) {
		c.procNames[procedureID] = ""
		return "", nil
	}
	if err != nil {
		return "", err
	}

	c.procNames[procedureID] = row.Name
	return row.Name, nil
}

// CategoryGroups fetches the category-group listing, loaded once per process.
func (c *Client) CategoryGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	if c.groupsLoaded {
		return c.groups, nil
	}

	var resp categoryGroupsResponse
	if err := c.getJSON(ctx, "/v1/categories/groups", nil, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			c.groups, c.groupsLoaded = nil, true
			return nil, nil
		}
		return nil, err
	}

	groups := make([]model.CategoryGroup, 0, len(resp.Groups))
	for _, row := range resp.Groups {
		groups = append(groups, model.CategoryGroup{
			Category:     model.Category(row.Category),
			ProcedureIDs: row.ProcedureIDs,
		})
	}
	c.groups, c.groupsLoaded = groups, true
	return groups, nil
}

// SearchAppointments fetches a patient's appointments in a +/-7 day window
// around the date, memoized per patient within the batch.
func (c *Client) SearchAppointments(ctx context.Context, patientID int, around civil.Date) ([]model.Appointment, error) {
	if cached, ok := c.appointments[patientID]; ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("start", around.AddDays(-appointmentWindowDays).String())
	query.Set("end", around.AddDays(appointmentWindowDays).String())

	var resp appointmentsResponse
	err := c.getJSON(ctx, fmt.Sprintf("/v1/patients/%d/appointments", patientID), query, &resp)
	if errors.Is(err, errNotFound) {
		c.appointments[patientID] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	appts := make([]model.Appointment, 0, len(resp.Appointments))
	for _, row := range resp.Appointments {
		appt, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		appts = append(appts, appt)
	}
	c.appointments[patientID] = appts
	return appts, nil
}
