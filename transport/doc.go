// Package transport moves envelopes between processes.
//
// Over NATS, one envelope is one message: the body is the encoded payload and
// the identity travels in headers (Record-Id, Record-Name, Sent-At) next to a
// Nats-Msg-Id for deduplication. Subjects are <prefix>.<long name>.
//
// For files, a Recorder writes length-prefixed frames that a Player reads back:
//
//	u32 frame length | u32 type id | i64 sent (µs) | payload
//
// The frame length counts the type id, the stamp and the payload. All integers
// are big-endian like the payload itself.
package transport
