package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownKind is returned when a frame names no known event or response.
var ErrUnknownKind = errors.New("protocol: unknown frame kind")

// Frame kinds on the wire.
const (
	KindStop     = "stop"
	KindStep     = "step"
	KindContinue = "continue"
	KindPress    = "press"
	KindRelease  = "release"
	KindMouse    = "mouse"
	KindSetDelta = "delta"
	KindNewGame  = "new-game"
	KindStopped  = "stopped"
)

// Frame is the msgpack representation of a single Event or Response.
// Only the fields relevant to Kind are set.
type Frame struct {
	Kind  string  `msgpack:"k"`
	Code  int32   `msgpack:"c,omitempty"`
	X     int32   `msgpack:"x,omitempty"`
	Y     int32   `msgpack:"y,omitempty"`
	Value float64 `msgpack:"v,omitempty"`
}

// EventFrame converts ev to its wire frame.
func EventFrame(ev Event) Frame {
	switch e := ev.(type) {
	case StopEvent:
		return Frame{Kind: KindStop}
	case StepEvent:
		return Frame{Kind: KindStep}
	case ContinueEvent:
		return Frame{Kind: KindContinue}
	case PressEvent:
		return Frame{Kind: KindPress, Code: e.Code}
	case ReleaseEvent:
		return Frame{Kind: KindRelease, Code: e.Code}
	case MouseEvent:
		return Frame{Kind: KindMouse, X: e.X, Y: e.Y}
	case SetDeltaEvent:
		return Frame{Kind: KindSetDelta, Value: e.Value}
	default:
		panic(fmt.Sprintf("protocol: unhandled event %T", ev))
	}
}

// Event converts f back to an Event.
func (f Frame) Event() (Event, error) {
	switch f.Kind {
	case KindStop:
		return Stop, nil
	case KindStep:
		return Step, nil
	case KindContinue:
		return Continue, nil
	case KindPress:
		return Press(f.Code), nil
	case KindRelease:
		return Release(f.Code), nil
	case KindMouse:
		return Mouse(f.X, f.Y), nil
	case KindSetDelta:
		return SetDelta(f.Value), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, f.Kind)
	}
}

// ResponseFrame converts r to its wire frame.
func ResponseFrame(r Response) Frame {
	switch r.(type) {
	case NewGameResponse:
		return Frame{Kind: KindNewGame}
	case StoppedResponse:
		return Frame{Kind: KindStopped}
	default:
		panic(fmt.Sprintf("protocol: unhandled response %T", r))
	}
}

// Response converts f back to a Response.
func (f Frame) Response() (Response, error) {
	switch f.Kind {
	case KindNewGame:
		return NewGame, nil
	case KindStopped:
		return Stopped, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, f.Kind)
	}
}

// Encoder writes frames to a stream.
type Encoder struct {
	enc *msgpack.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: msgpack.NewEncoder(w)}
}

// WriteEvent encodes ev.
func (e *Encoder) WriteEvent(ev Event) error {
	return e.write(EventFrame(ev))
}

// WriteResponse encodes r.
func (e *Encoder) WriteResponse(r Response) error {
	return e.write(ResponseFrame(r))
}

func (e *Encoder) write(f Frame) error {
	if err := e.enc.Encode(&f); err != nil {
		return fmt.Errorf("protocol: encode %s: %w", f.Kind, err)
	}
	return nil
}

// Decoder reads frames from a stream.
type Decoder struct {
	dec *msgpack.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: msgpack.NewDecoder(r)}
}

// ReadEvent decodes the next event. io.EOF is returned unwrapped at a clean
// end of stream.
func (d *Decoder) ReadEvent() (Event, error) {
	f, err := d.read()
	if err != nil {
		return nil, err
	}
	return f.Event()
}

// ReadResponse decodes the next response.
func (d *Decoder) ReadResponse() (Response, error) {
	f, err := d.read()
	if err != nil {
		return nil, err
	}
	return f.Response()
}

func (d *Decoder) read() (Frame, error) {
	var f Frame
	if err := d.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, io.EOF
		}
		return f, fmt.Errorf("protocol: decode: %w", err)
	}
	return f, nil
}
