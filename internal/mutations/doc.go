// Package mutations plans and submits batched changes to server-held collections.
//
// Ordered collections on the server are linked lists: every entry names the entry
// before and after it. [Planner] turns a run of new payloads into create records whose
// link fields splice the run onto the current tail in one pass. Ids are UUIDv7, so
// they also sort in the order they were generated.
//
// [Client] submits a [Batch] as one request and maps the response back to one
// [ItemResult] per submitted record. The remote service is treated as best-effort
// per item: a rejected item says nothing about whether its neighbours were applied.
// Rejections surface as a [*PartialFailure] alongside the full [Outcome].
//
// Neither type touches caches; callers reconcile their snapshots after a submit.
package mutations
