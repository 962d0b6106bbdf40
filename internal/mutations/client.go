package mutations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libmirror/internal/services"
	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// codeOK is the per-item response code of an accepted mutation.
const codeOK = "OK"

var batchItems = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "libmirror_batch_items_total",
		Help: "Total number of submitted mutation records by endpoint and result",
	},
	[]string{"endpoint", "result"},
)

// Poster sends a JSON body to a path relative to the service base URL.
//
// [services.APIService] satisfies it.
type Poster interface {
	Post(ctx context.Context, path string, data []byte) (*services.APIResponse, error)
}

// Journal records submitted batches. err is the error Submit returned, if any.
type Journal interface {
	RecordBatch(ctx context.Context, endpoint string, batch Batch, outcome Outcome, err error) error
}

// ItemResult is the server's verdict on one submitted record.
type ItemResult struct {
	Index    int
	ID       string
	ClientID string
	OK       bool
	Reason   string
}

// Outcome holds one [ItemResult] per submitted record, in submission order.
type Outcome struct {
	Results []ItemResult
}

// Success reports whether every record was accepted.
func (o Outcome) Success() bool {
	for _, r := range o.Results {
		if !r.OK {
			return false
		}
	}
	return true
}

// Failed returns the rejected results.
func (o Outcome) Failed() []ItemResult {
	var failed []ItemResult
	for _, r := range o.Results {
		if !r.OK {
			failed = append(failed, r)
		}
	}
	return failed
}

// FailedRecords returns the records of b that were rejected, in submission order.
//
// Create records carry generated ids and links; replan their payloads with a
// [Planner] rather than resubmitting them as they are.
func (o Outcome) FailedRecords(b Batch) Batch {
	var out Batch
	for _, r := range o.Failed() {
		if r.Index >= 0 && r.Index < len(b.Records) {
			out.Records = append(out.Records, b.Records[r.Index])
		}
	}
	return out
}

// ItemError is the error form of a rejected [ItemResult].
type ItemError struct {
	Index  int
	ID     string
	Reason string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("mutation %d (%s) rejected: %s", e.Index, e.ID, e.Reason)
}

// PartialFailure reports a batch whose transport succeeded but whose items were not all accepted.
type PartialFailure struct {
	Endpoint string
	Outcome  Outcome
	errs     *multierror.Error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%d of %d mutations rejected by %s: %v",
		len(e.Outcome.Failed()), len(e.Outcome.Results), e.Endpoint, e.errs)
}

// Unwrap exposes the per-item [*ItemError] values.
func (e *PartialFailure) Unwrap() error {
	return e.errs.ErrorOrNil()
}

func newPartialFailure(endpoint string, outcome Outcome) *PartialFailure {
	var errs *multierror.Error
	for _, r := range outcome.Failed() {
		errs = multierror.Append(errs, &ItemError{Index: r.Index, ID: r.ID, Reason: r.Reason})
	}
	errs.ErrorFormat = func(es []error) string {
		msgs := make([]string, len(es))
		for i, err := range es {
			msgs[i] = err.Error()
		}
		return strings.Join(msgs, "; ")
	}
	return &PartialFailure{Endpoint: endpoint, Outcome: outcome, errs: errs}
}

type mutateRequest struct {
	Mutations []Record `json:"mutations"`
}

type mutateResponse struct {
	Items []struct {
		ID           string `json:"id"`
		ClientID     string `json:"client_id"`
		ResponseCode string `json:"response_code"`
	} `json:"mutate_response"`
}

// Client submits batches to the remote batch endpoints.
type Client struct {
	poster  Poster
	journal Journal
	logger  *log.Logger
}

// NewClient creates a [Client]. journal and logger may be nil.
func NewClient(poster Poster, journal Journal, logger *log.Logger) *Client {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Client{poster: poster, journal: journal, logger: logger}
}

// Submit posts batch to endpoint as a single request.
//
// A transport failure yields a [*shared.TransportError]; a non-2xx status, an unparseable
// body, or a result count that does not match the batch yields a [*shared.ProtocolError].
// If the server rejected some records the full [Outcome] is returned with a [*PartialFailure].
func (c *Client) Submit(ctx context.Context, endpoint string, batch Batch) (Outcome, error) {
	outcome, err := c.submit(ctx, endpoint, batch)
	if c.journal != nil {
		if jerr := c.journal.RecordBatch(ctx, endpoint, batch, outcome, err); jerr != nil {
			c.logger.Warn("failed to journal batch", "endpoint", endpoint, "error", jerr)
		}
	}
	return outcome, err
}

func (c *Client) submit(ctx context.Context, endpoint string, batch Batch) (Outcome, error) {
	if batch.Len() == 0 {
		return Outcome{}, fmt.Errorf("%w: empty batch", shared.ErrInvalidInput)
	}

	body, err := json.Marshal(mutateRequest{Mutations: batch.Records})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode batch: %w", err)
	}

	c.logger.Debug("submitting batch", "endpoint", endpoint, "records", batch.Len())
	resp, err := c.poster.Post(ctx, endpoint, body)
	if err != nil {
		return Outcome{}, &shared.TransportError{Op: "submit " + endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Outcome{}, &shared.ProtocolError{StatusCode: resp.StatusCode, Message: shared.Truncate(string(resp.Body), 200)}
	}

	var parsed mutateResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return Outcome{}, &shared.ProtocolError{StatusCode: resp.StatusCode, Message: "unparseable batch response", Err: err}
	}

	if len(parsed.Items) != batch.Len() {
		return Outcome{}, &shared.ProtocolError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("expected %d results, got %d", batch.Len(), len(parsed.Items)),
		}
	}

	outcome := Outcome{Results: make([]ItemResult, len(parsed.Items))}
	for i, item := range parsed.Items {
		id := item.ID
		if id == "" {
			id = batch.Records[i].ID
		}
		result := ItemResult{Index: i, ID: id, ClientID: item.ClientID, OK: item.ResponseCode == codeOK}
		if result.OK {
			batchItems.WithLabelValues(endpoint, "ok").Inc()
		} else {
			result.Reason = item.ResponseCode
			batchItems.WithLabelValues(endpoint, "rejected").Inc()
		}
		outcome.Results[i] = result
	}

	if !outcome.Success() {
		pf := newPartialFailure(endpoint, outcome)
		c.logger.Warn("batch partially rejected", "endpoint", endpoint, "failed", len(pf.Outcome.Failed()), "total", batch.Len())
		return outcome, pf
	}

	c.logger.Info("batch accepted", "endpoint", endpoint, "records", batch.Len())
	return outcome, nil
}
