// Package opendavinci is a typed-record messaging substrate: records with a
// stable numeric identity, a binary stream codec, envelopes that carry any
// record with timestamps, visitor-based traversal, and latest-value
// delivery surfaces.
//
// # Layers
//
// Records and traversal:
//   - visit: the pre-order traversal engine and visitor contract
//   - record: the TypedRecord contract, field descriptors and Accept
//   - scenegraph: node trees traversed with the same visitor engine
//
// Wire and identity:
//   - codec: big-endian binary encoding of any record, plus a text rendering
//   - schema: the built-in record shapes (Sample, Beacon, VehicleControl,
//     Vector3, Pose, SensorBoardData)
//   - registry: numeric ID and long name to record factory, sealed after build
//   - envelope: a record tagged with its ID and sent/received/sample stamps
//
// Delivery and transport:
//   - delivery: one latest-value cell per record type, routed by ID
//   - transport: envelopes over NATS subjects and length-framed recordings
//   - natsclient: the NATS connection with circuit breaker and metrics
//
// Process:
//   - config: layered JSON/YAML configuration validated by JSON schema
//   - metric, health, monitor: Prometheus metrics, /health and a websocket
//     view of the delivery surface
//   - cmd/recordbus: publish, consume, record and replay modes
//
// # Wire Format
//
// Fields are written in declaration order with no framing: bool as one
// byte (0 or 1), integers and floats big-endian at their natural width,
// text as a u32 length followed by the bytes. Nested records are inlined.
//
//	Beacon{active: true, code: -7, label: "abc"}
//	01 FF FF FF F9 00 00 00 03 61 62 63
//
// # Running
//
//	recordbus -mode publish -nats nats://localhost:4222
//	recordbus -mode consume -config site.yaml
//	RECORDBUS_RECORD_PATH=session.rec recordbus -mode record
//	RECORDBUS_RECORD_PATH=session.rec recordbus -mode replay
package opendavinci
