/*
Package ingest wires the pipeline together: the HTTP ingress that validates
and enqueues events, the background consumer that drains the queue into the
store, and the stats view reconciling the broker counter against unique
persisted rows.

Delivery semantics: at-least-once up to the dequeue, at-most-once after it.
The list-queue has no ack; an envelope popped by a consumer that crashes
before commit is lost, which surfaces as spurious estimated_duplicate_dropped.
The received counter is incremented at consume time, not enqueue time; the
total_received_queued field name is kept for wire compatibility.
*/
package ingest
