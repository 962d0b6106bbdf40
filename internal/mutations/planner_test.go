package mutations

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/libmirror/internal/shared"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() (string, error) {
	s.n++
	return fmt.Sprintf("id-%d", s.n), nil
}

type failingIDs struct{}

func (failingIDs) NewID() (string, error) { return "", errors.New("entropy exhausted") }

func payloads(names ...string) []Payload {
	out := make([]Payload, len(names))
	for i, n := range names {
		out[i] = Payload{"trackId": n}
	}
	return out
}

func TestPlanner(t *testing.T) {
	t.Run("chain integrity", func(t *testing.T) {
		plan, err := NewPlanner(nil).PlanAppend("T0", payloads("A", "B", "C"))
		require.NoError(t, err)

		records := plan.Batch.Records
		require.Len(t, records, 3)

		assert.Equal(t, "T0", records[0].PrecedingID)
		assert.Equal(t, records[0].ID, records[1].PrecedingID)
		assert.Equal(t, records[1].ID, records[2].PrecedingID)

		assert.Equal(t, records[1].ID, records[0].FollowingID)
		assert.Equal(t, records[2].ID, records[1].FollowingID)
		assert.Empty(t, records[2].FollowingID)

		assert.Equal(t, plan.IDs, plan.Batch.IDs())
		assert.Len(t, map[string]bool{records[0].ID: true, records[1].ID: true, records[2].ID: true}, 3)
		assert.True(t, sort.StringsAreSorted(plan.IDs), "ids should sort in generation order: %v", plan.IDs)

		for i, r := range records {
			assert.Equal(t, KindCreate, r.Kind)
			assert.Equal(t, payloads("A", "B", "C")[i], r.Payload)
		}
	})

	t.Run("empty list has no predecessor", func(t *testing.T) {
		plan, err := NewPlanner(&seqIDs{}).PlanAppend("", payloads("A"))
		require.NoError(t, err)

		assert.Empty(t, plan.Batch.Records[0].PrecedingID)
		assert.Empty(t, plan.Batch.Records[0].FollowingID)
		assert.Equal(t, []string{"id-1"}, plan.IDs)
	})

	t.Run("replanning draws fresh ids", func(t *testing.T) {
		p := NewPlanner(nil)
		first, err := p.PlanAppend("T0", payloads("A", "B"))
		require.NoError(t, err)
		second, err := p.PlanAppend("T0", payloads("A", "B"))
		require.NoError(t, err)

		assert.NotContains(t, second.IDs, first.IDs[0])
		assert.NotContains(t, second.IDs, first.IDs[1])
		assert.Less(t, first.IDs[1], second.IDs[0])
	})

	t.Run("nothing to append", func(t *testing.T) {
		_, err := NewPlanner(nil).PlanAppend("T0", nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("PlanCreate", func(t *testing.T) {
		r, err := NewPlanner(&seqIDs{}).PlanCreate(Payload{"name": "new"})
		require.NoError(t, err)
		assert.Equal(t, KindCreate, r.Kind)
		assert.Equal(t, "id-1", r.ID)
		assert.Empty(t, r.PrecedingID)
	})

	t.Run("id generator failure", func(t *testing.T) {
		_, err := NewPlanner(failingIDs{}).PlanAppend("T0", payloads("A"))
		assert.Error(t, err)
	})
}

func TestRecordJSON(t *testing.T) {
	t.Run("create merges id and links", func(t *testing.T) {
		r := Create("new", Payload{"trackId": "t1"})
		r.PrecedingID = "prev"

		data, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"create":{"trackId":"t1","clientId":"new","precedingEntryId":"prev"}}`, string(data))
	})

	t.Run("create leaves the payload untouched", func(t *testing.T) {
		p := Payload{"name": "x"}
		_, err := json.Marshal(Create("new", p))
		require.NoError(t, err)
		assert.Equal(t, Payload{"name": "x"}, p)
	})

	t.Run("update", func(t *testing.T) {
		data, err := json.Marshal(Update("e1", Payload{"name": "renamed"}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"update":{"id":"e1","name":"renamed"}}`, string(data))
	})

	t.Run("delete", func(t *testing.T) {
		data, err := json.Marshal(Delete("e1"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"delete":"e1"}`, string(data))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := json.Marshal(Record{Kind: "move", ID: "x"})
		assert.Error(t, err)
	})
}
