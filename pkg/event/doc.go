/*
Package event defines the canonical event envelope flowing through the
ingestion pipeline.

An Event is parsed and validated once at the HTTP ingress, travels through
the broker as canonical JSON (see Render), and is parsed again by the
consumer before being persisted. Parse(Render(e)) always yields e.

Timestamps are normalised at validation time: offset-bearing ISO-8601 inputs
are converted to UTC and the offset is discarded, so the stored instant is
timezone-naive UTC regardless of what the producer sent.
*/
package event
