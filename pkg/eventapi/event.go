package eventapi

import (
	"encoding/json"
	"fmt"

	"github.com/chatpaint/paintd/pkg/paint"
)

// Frame ops.
const (
	OpDispatch  = "dispatch"
	OpHello     = "hello"
	OpHeartbeat = "heartbeat"
	OpSubscribe = "subscribe"
)

// Dispatch event types applied to the registry.
const (
	TypeCosmeticCreate    = "cosmetic.create"
	TypeEntitlementCreate = "entitlement.create"
	TypeEntitlementDelete = "entitlement.delete"
)

// Frame is one message on the event stream.
type Frame struct {
	Op string          `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
}

// Dispatch is the payload of a dispatch frame.
type Dispatch struct {
	Type string       `json:"type"`
	Body paint.Record `json:"body"`
}

// Subscription asks the server for one event type.
type Subscription struct {
	Type string `json:"type"`
}

// Applier receives decoded events. *registry.Registry satisfies it.
type Applier interface {
	AddKnownPaint(rec paint.Record)
	Assign(paintID, username string)
	Clear(paintID, username string)
}

// DecodeFrame parses a raw message. Frames other than dispatch return a nil
// Dispatch and no error.
func DecodeFrame(msg []byte) (*Frame, *Dispatch, error) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return nil, nil, fmt.Errorf("decode frame: %w", err)
	}
	if f.Op != OpDispatch {
		return &f, nil, nil
	}

	var d Dispatch
	if err := json.Unmarshal(f.D, &d); err != nil {
		return &f, nil, fmt.Errorf("decode dispatch: %w", err)
	}
	if d.Type == "" {
		return &f, nil, fmt.Errorf("dispatch without type")
	}
	return &f, &d, nil
}

// Apply routes a dispatch to the registry. It reports whether the event
// type was recognised and carried the fields it needs.
func Apply(target Applier, d *Dispatch) bool {
	switch d.Type {
	case TypeCosmeticCreate:
		obj := d.Body.Object("object")
		if len(obj) == 0 {
			return false
		}
		target.AddKnownPaint(obj)
		return true

	case TypeEntitlementCreate, TypeEntitlementDelete:
		paintID := d.Body.String("paint_id")
		username := d.Body.String("username")
		if paintID == "" || username == "" {
			return false
		}
		if d.Type == TypeEntitlementCreate {
			target.Assign(paintID, username)
		} else {
			target.Clear(paintID, username)
		}
		return true
	}
	return false
}

// Subscriptions are the event types the client subscribes to.
var Subscriptions = []string{
	TypeCosmeticCreate,
	TypeEntitlementCreate,
	TypeEntitlementDelete,
}

func subscribeFrame(eventType string) ([]byte, error) {
	d, err := json.Marshal(Subscription{Type: eventType})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Op: OpSubscribe, D: d})
}
