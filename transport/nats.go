package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/metric"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/registry"
)

// Header names carried on every record message.
const (
	HeaderRecordID   = "Record-Id"
	HeaderRecordName = "Record-Name"
	HeaderSentAt     = "Sent-At"
	HeaderMsgID      = nats.MsgIdHdr
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "records"

// MsgPublisher is the publishing side of a NATS connection.
type MsgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg) error
}

// MsgSubscriber is the subscribing side of a NATS connection.
type MsgSubscriber interface {
	Subscribe(ctx context.Context, subject string, handler func(context.Context, *nats.Msg)) (*nats.Subscription, error)
}

// Subject returns the subject an envelope of the given long name is published on.
func Subject(prefix, longName string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + longName
}

// ToMsg encodes e into a message for subject.
func ToMsg(c *codec.Codec, subject string, e *envelope.Envelope) (*nats.Msg, error) {
	if e == nil {
		return nil, errors.WrapInvalid(errors.ErrNilEnvelope, "Transport", "ToMsg", "check envelope")
	}
	data, err := e.Encode(c)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Transport", "ToMsg", "encode payload")
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(HeaderRecordID, strconv.FormatUint(uint64(e.TypeID()), 10))
	msg.Header.Set(HeaderRecordName, e.LongName())
	msg.Header.Set(HeaderMsgID, uuid.NewString())
	if !e.Sent().IsZero() {
		msg.Header.Set(HeaderSentAt, strconv.FormatInt(e.Sent().Microseconds(), 10))
	}
	return msg, nil
}

// FromMsg decodes a message produced by ToMsg. The Record-Name header, when
// present, must match the name registered for Record-Id.
func FromMsg(c *codec.Codec, reg *registry.Registry, msg *nats.Msg) (*envelope.Envelope, error) {
	if msg == nil || msg.Header == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: message without headers", errors.ErrInvalidData),
			"Transport", "FromMsg", "read headers")
	}

	raw := msg.Header.Get(HeaderRecordID)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s header %q", errors.ErrInvalidData, HeaderRecordID, raw),
			"Transport", "FromMsg", "parse record id")
	}

	shape, ok := reg.Lookup(uint32(id))
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %d", errors.ErrUnknownType, id), "Transport", "FromMsg", "shape lookup")
	}
	if name := msg.Header.Get(HeaderRecordName); name != "" && name != shape.LongName {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: id %d is %s, header says %s", errors.ErrTypeMismatch, id, shape.LongName, name),
			"Transport", "FromMsg", "check record name")
	}

	r, err := c.Decode(msg.Data, shape.Factory)
	if err != nil {
		return nil, err
	}
	e, err := envelope.Wrap(r)
	if err != nil {
		return nil, err
	}

	if sent := msg.Header.Get(HeaderSentAt); sent != "" {
		us, err := strconv.ParseInt(sent, 10, 64)
		if err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s header %q", errors.ErrInvalidData, HeaderSentAt, sent),
				"Transport", "FromMsg", "parse sent stamp")
		}
		e.StampSent(timestamp.TimeStamp(us))
	}
	return e, nil
}

// Publisher sends envelopes over NATS.
type Publisher struct {
	conn    MsgPublisher
	codec   *codec.Codec
	prefix  string
	clock   timestamp.Clock
	metrics *metric.Metrics
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherMetrics counts published envelopes into m.
func WithPublisherMetrics(m *metric.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// WithPublisherClock sets the clock used to stamp unsent envelopes.
func WithPublisherClock(c timestamp.Clock) PublisherOption {
	return func(p *Publisher) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewPublisher returns a Publisher on subjects under prefix.
func NewPublisher(conn MsgPublisher, c *codec.Codec, prefix string, opts ...PublisherOption) *Publisher {
	if c == nil {
		c = codec.Default()
	}
	p := &Publisher{
		conn:   conn,
		codec:  c,
		prefix: prefix,
		clock:  timestamp.SystemClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish stamps e as sent if it was not stamped yet, then publishes it.
func (p *Publisher) Publish(ctx context.Context, e *envelope.Envelope) error {
	if e == nil {
		return errors.WrapInvalid(errors.ErrNilEnvelope, "Publisher", "Publish", "check envelope")
	}
	if e.Sent().IsZero() {
		e.StampSent(p.clock.Now())
	}

	msg, err := ToMsg(p.codec, Subject(p.prefix, e.LongName()), e)
	if err != nil {
		return err
	}
	if err := p.conn.PublishMsg(ctx, msg); err != nil {
		return errors.WrapTransient(err, "Publisher", "Publish", "publish "+msg.Subject)
	}
	p.metrics.RecordPublished(e.LongName())
	return nil
}

// Subscriber receives envelopes from NATS and hands them to a handler.
type Subscriber struct {
	conn    MsgSubscriber
	codec   *codec.Codec
	reg     *registry.Registry
	prefix  string
	clock   timestamp.Clock
	logger  *slog.Logger
	metrics *metric.Metrics
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithSubscriberLogger sets the logger for dropped messages.
func WithSubscriberLogger(l *slog.Logger) SubscriberOption {
	return func(s *Subscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubscriberMetrics counts received envelopes and decode failures into m.
func WithSubscriberMetrics(m *metric.Metrics) SubscriberOption {
	return func(s *Subscriber) { s.metrics = m }
}

// WithSubscriberClock sets the clock used for received stamps.
func WithSubscriberClock(c timestamp.Clock) SubscriberOption {
	return func(s *Subscriber) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewSubscriber returns a Subscriber decoding shapes known to reg.
func NewSubscriber(conn MsgSubscriber, c *codec.Codec, reg *registry.Registry, prefix string, opts ...SubscriberOption) *Subscriber {
	if c == nil {
		c = codec.Default()
	}
	s := &Subscriber{
		conn:   conn,
		codec:  c,
		reg:    reg,
		prefix: prefix,
		clock:  timestamp.SystemClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "transport", "prefix", s.prefix)
	return s
}

// Subscribe delivers every decodable envelope under the prefix to handler.
// Messages that fail to decode are logged, counted and skipped.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(context.Context, *envelope.Envelope)) (*nats.Subscription, error) {
	return s.conn.Subscribe(ctx, Subject(s.prefix, ">"), func(msgCtx context.Context, msg *nats.Msg) {
		e, err := FromMsg(s.codec, s.reg, msg)
		if err != nil {
			name := msg.Header.Get(HeaderRecordName)
			s.metrics.RecordDecodeFailure(name, reason(err))
			s.logger.Warn("dropping undecodable message", "subject", msg.Subject, "error", err)
			return
		}
		e.StampReceived(s.clock.Now())
		s.metrics.RecordReceived(e.LongName())
		handler(msgCtx, e)
	})
}

// Channel subscribes and forwards envelopes into a channel of the given
// capacity, at least one. When the channel is full the newest envelope is dropped.
func (s *Subscriber) Channel(ctx context.Context, capacity int) (<-chan *envelope.Envelope, *nats.Subscription, error) {
	if capacity < 1 {
		capacity = 1
	}
	ch := make(chan *envelope.Envelope, capacity)
	sub, err := s.Subscribe(ctx, func(_ context.Context, e *envelope.Envelope) {
		select {
		case ch <- e:
		default:
			s.metrics.RecordDrop("handoff", e.LongName())
			s.logger.Debug("handoff channel full", "type", e.LongName())
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return ch, sub, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, errors.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, errors.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, errors.ErrTruncatedInput):
		return "truncated"
	case errors.Is(err, errors.ErrMalformedField):
		return "malformed"
	default:
		return "invalid"
	}
}
