// Package codec converts records to and from their byte-stream form.
//
// # Wire format
//
// Fields are written strictly in declaration order with no per-field tags:
//
//	bool      1 byte, 0x00 or 0x01
//	int8      1 byte, two's complement
//	int32     4 bytes, two's complement
//	uint32    4 bytes
//	float32   4 bytes, IEEE-754 binary32
//	float64   8 bytes, IEEE-754 binary64
//	text      uint32 byte count, then the raw UTF-8 bytes, no terminator
//	nested    the nested record's fields, inlined, no framing
//
// Every multi-byte value uses big-endian (network) byte order. The order is a
// process-wide constant, so producers and consumers never negotiate it.
//
// Because nested records carry no length prefix, a reader must use exactly the
// shape the writer used. There is no support for decoding a record written by a
// different revision of its shape.
//
// # Decoding
//
// Decoding always fills a fresh scratch record and only hands it out once every
// field has been read; a failed decode returns an error and no record.
//
//	pose, err := codec.Decode[schema.Pose](data)
//	if errors.Is(err, errors.ErrTruncatedInput) {
//	    // incomplete input, drop it
//	}
package codec
