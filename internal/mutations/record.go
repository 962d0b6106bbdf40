package mutations

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Kind is the operation a [Record] performs.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Payload is the entity body of a create or update record.
type Payload map[string]any

// Record is one mutation in a [Batch].
//
// For creates, ID is the client-generated id of the new entity. For updates and
// deletes it is the id of the existing entity.
type Record struct {
	Kind        Kind
	ID          string
	PrecedingID string
	FollowingID string
	Payload     Payload
}

// Create builds a create record for a new entity with client id id.
func Create(id string, payload Payload) Record {
	return Record{Kind: KindCreate, ID: id, Payload: payload}
}

// Update builds an update record for the entity id.
func Update(id string, payload Payload) Record {
	return Record{Kind: KindUpdate, ID: id, Payload: payload}
}

// Delete builds a delete record for the entity id.
func Delete(id string) Record {
	return Record{Kind: KindDelete, ID: id}
}

// MarshalJSON encodes the record as {"<kind>": body}. Deletes carry the bare id;
// creates and updates carry the payload with id and link fields merged in.
func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindDelete:
		return json.Marshal(map[string]string{string(KindDelete): r.ID})
	case KindCreate, KindUpdate:
		body := make(Payload, len(r.Payload)+3)
		maps.Copy(body, r.Payload)
		if r.Kind == KindCreate {
			body["clientId"] = r.ID
		} else {
			body["id"] = r.ID
		}
		if r.PrecedingID != "" {
			body["precedingEntryId"] = r.PrecedingID
		}
		if r.FollowingID != "" {
			body["followingEntryId"] = r.FollowingID
		}
		return json.Marshal(map[string]Payload{string(r.Kind): body})
	default:
		return nil, fmt.Errorf("unknown mutation kind %q", r.Kind)
	}
}

// Batch is an ordered list of records submitted in one request.
type Batch struct {
	Records []Record
}

// Len returns the number of records.
func (b Batch) Len() int { return len(b.Records) }

// IDs returns the record ids in submission order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Records))
	for i, r := range b.Records {
		ids[i] = r.ID
	}
	return ids
}
