package protocol

import (
	"bufio"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ProtocolVersion is written into every envelope.
const ProtocolVersion = 1

// ErrUnknownMessage is returned when an envelope carries an unsupported type.
var ErrUnknownMessage = errors.New("unknown message type")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelopeType string

const (
	envelopeSnapshot envelopeType = "snapshot"
	envelopeOpacity  envelopeType = "opacity"
	envelopeCommand  envelopeType = "command"
)

// envelope is the line-delimited JSON form of a message. Durations travel as
// whole milliseconds.
type envelope struct {
	Version         int          `json:"v"`
	Type            envelopeType `json:"type"`
	TimerID         string       `json:"timer_id,omitempty"`
	RemainingMillis int64        `json:"remaining_ms,omitempty"`
	Running         bool         `json:"running,omitempty"`
	Initial         bool         `json:"initial,omitempty"`
	Name            string       `json:"name,omitempty"`
	FlashOnComplete bool         `json:"flash,omitempty"`
	Kind            CommandKind  `json:"kind,omitempty"`
	Value           float64      `json:"value,omitempty"`
}

// Encoder writes messages as JSON lines.
type Encoder struct {
	writer io.Writer
}

// NewEncoder returns an encoder writing to writer.
func NewEncoder(writer io.Writer) *Encoder {
	return &Encoder{writer: writer}
}

// Encode writes one Update or Command.
func (encoder *Encoder) Encode(message any) error {
	var env envelope
	switch value := message.(type) {
	case Snapshot:
		env = envelope{
			Type:            envelopeSnapshot,
			TimerID:         value.TimerID,
			RemainingMillis: value.Remaining.Milliseconds(),
			Running:         value.Running,
			Initial:         value.Initial,
			Name:            value.Name,
			FlashOnComplete: value.FlashOnComplete,
		}
	case Opacity:
		env = envelope{Type: envelopeOpacity, TimerID: value.TimerID, Value: value.Value}
	case Command:
		env = envelope{Type: envelopeCommand, TimerID: value.TimerID, Kind: value.Kind, Value: value.Value}
	default:
		return errors.Wrapf(ErrUnknownMessage, "encode %T", message)
	}
	env.Version = ProtocolVersion

	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	raw = append(raw, '\n')
	if _, err := encoder.writer.Write(raw); err != nil {
		return errors.Wrap(err, "write envelope")
	}
	return nil
}

// Decoder reads JSON-line messages.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder returns a decoder reading from reader.
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(reader)}
}

// Decode returns the next message: a Snapshot, an Opacity or a Command.
// It returns io.EOF when the stream ends.
func (decoder *Decoder) Decode() (any, error) {
	if !decoder.scanner.Scan() {
		if err := decoder.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "read envelope")
		}
		return nil, io.EOF
	}

	var env envelope
	if err := json.Unmarshal(decoder.scanner.Bytes(), &env); err != nil {
		return nil, errors.Wrap(err, "unmarshal envelope")
	}

	switch env.Type {
	case envelopeSnapshot:
		return Snapshot{
			TimerID:         env.TimerID,
			Remaining:       time.Duration(env.RemainingMillis) * time.Millisecond,
			Running:         env.Running,
			Initial:         env.Initial,
			Name:            env.Name,
			FlashOnComplete: env.FlashOnComplete,
		}, nil
	case envelopeOpacity:
		return Opacity{TimerID: env.TimerID, Value: env.Value}, nil
	case envelopeCommand:
		return Command{Kind: env.Kind, TimerID: env.TimerID, Value: env.Value}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownMessage, "decode %q", env.Type)
	}
}
