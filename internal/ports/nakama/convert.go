package nakama

import (
	"fmt"

	"klondike/internal/app"
	"klondike/internal/domain"
	"klondike/internal/ports/wire"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventGameDealt:     OpGameDealt,
	app.EventCardsMoved:    OpCardsMoved,
	app.EventMoveCompleted: OpMoveCompleted,
	app.EventMoveRejected:  OpMoveRejected,
	app.EventWarning:       OpWarning,
	app.EventHint:          OpHintResult,
	app.EventGameWon:       OpGameWon,
}

// request is a decoded client message body.
type request struct {
	fields map[string]*structpb.Value
}

// decodeRequest reads a client message. An empty body is a valid request.
func decodeRequest(data []byte) (request, error) {
	s := &structpb.Struct{}
	if len(data) > 0 {
		if err := proto.Unmarshal(data, s); err != nil {
			return request{}, fmt.Errorf("invalid request body: %w", err)
		}
	}
	return request{fields: s.GetFields()}, nil
}

func (r request) card() (domain.SuitRank, error) {
	return domain.ParseSuitRank(r.fields["card"].GetStringValue())
}

func (r request) spot() (domain.PlayfieldSpot, error) {
	return domain.ParseSpot(r.fields["spot"].GetStringValue())
}

// encodeRequest builds a client message body.
func encodeRequest(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// snapshotToStruct encodes the whole table for a joining client.
func snapshotToStruct(s domain.Snapshot, score int64) (*structpb.Struct, error) {
	return structpb.NewStruct(wire.Snapshot(s, score))
}

// eventToStruct maps an app event to its op code and wire body.
func eventToStruct(ev app.Event) (int64, *structpb.Struct, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("no op code for event %s", ev.Kind)
	}
	fields, err := wire.Event(ev)
	if err != nil {
		return 0, nil, err
	}
	body, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return opCode, body, nil
}
