package mutations

import (
	"fmt"

	"github.com/desertthunder/libmirror/internal/shared"
	"github.com/google/uuid"
)

// IDGenerator produces unique ids for new entities.
type IDGenerator interface {
	NewID() (string, error)
}

// TimeOrderedIDs generates UUIDv7 ids. Within one process they are strictly
// increasing, so lexical order matches generation order.
type TimeOrderedIDs struct{}

func (TimeOrderedIDs) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// Plan is the output of [Planner.PlanAppend]: the batch to submit and the ids it introduces.
type Plan struct {
	Batch Batch
	IDs   []string
}

// Planner builds linked create records. It performs no I/O.
type Planner struct {
	ids IDGenerator
}

// NewPlanner returns a [Planner] drawing ids from ids, or [TimeOrderedIDs] when nil.
func NewPlanner(ids IDGenerator) *Planner {
	if ids == nil {
		ids = TimeOrderedIDs{}
	}
	return &Planner{ids: ids}
}

// PlanAppend links payloads into a run that follows tailID, the id of the list's current
// last entry (empty for an empty list).
//
// The first record's predecessor is tailID, each later record's predecessor is the id of
// the record before it, each record's follower is the id of the record after it, and the
// last record has no follower. Every call draws fresh ids; ids from a plan whose batch was
// rejected are never handed out again.
func (p *Planner) PlanAppend(tailID string, payloads []Payload) (Plan, error) {
	if len(payloads) == 0 {
		return Plan{}, fmt.Errorf("%w: nothing to append", shared.ErrInvalidInput)
	}

	ids := make([]string, len(payloads))
	for i := range payloads {
		id, err := p.ids.NewID()
		if err != nil {
			return Plan{}, err
		}
		ids[i] = id
	}

	records := make([]Record, len(payloads))
	prev := tailID
	for i, payload := range payloads {
		r := Create(ids[i], payload)
		r.PrecedingID = prev
		if i+1 < len(ids) {
			r.FollowingID = ids[i+1]
		}
		records[i] = r
		prev = ids[i]
	}

	return Plan{Batch: Batch{Records: records}, IDs: ids}, nil
}

// PlanCreate builds a single unlinked create record with a fresh id.
func (p *Planner) PlanCreate(payload Payload) (Record, error) {
	id, err := p.ids.NewID()
	if err != nil {
		return Record{}, err
	}
	return Create(id, payload), nil
}
