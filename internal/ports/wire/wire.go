// Package wire renders app events and table views as plain maps that both
// transports serialize: the Nakama adapter as structpb, the WebSocket server
// as JSON. Numbers are ints, cards are codes such as "10H", and spots are
// {"area", "index"} objects.
package wire

import (
	"fmt"

	"klondike/internal/app"
	"klondike/internal/domain"
)

// Fields is one wire body.
type Fields = map[string]interface{}

func Spot(s domain.PlayfieldSpot) Fields {
	return Fields{
		"area":  s.Area.String(),
		"index": s.Index,
	}
}

func Cards(cards []domain.SuitRank) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Code())
	}
	return out
}

func Placements(ps []domain.Placement) []interface{} {
	out := make([]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, Fields{
			"card":    p.Card.Code(),
			"spot":    Spot(p.Spot),
			"face_up": p.FaceUp,
		})
	}
	return out
}

func Counts(c domain.PileCounts) Fields {
	foundation := make([]interface{}, 0, len(c.Foundation))
	for _, n := range c.Foundation {
		foundation = append(foundation, n)
	}
	tableau := make([]interface{}, 0, len(c.Tableau))
	for _, n := range c.Tableau {
		tableau = append(tableau, n)
	}
	return Fields{
		"stock":      c.Stock,
		"waste":      c.Waste,
		"hand":       c.Hand,
		"foundation": foundation,
		"tableau":    tableau,
		"moves":      c.Moves,
	}
}

func views(vs []domain.CardView) []interface{} {
	out := make([]interface{}, 0, len(vs))
	for _, v := range vs {
		out = append(out, Fields{
			"card":    v.Card.Code(),
			"face_up": v.FaceUp,
		})
	}
	return out
}

// Snapshot renders the whole table for a joining or resuming client.
func Snapshot(s domain.Snapshot, score int64) Fields {
	foundation := make([]interface{}, 0, len(s.Foundation))
	for _, f := range s.Foundation {
		foundation = append(foundation, views(f))
	}
	tableau := make([]interface{}, 0, len(s.Tableau))
	for _, t := range s.Tableau {
		tableau = append(tableau, views(t))
	}
	fields := Fields{
		"stock":      views(s.Stock),
		"waste":      views(s.Waste),
		"hand":       views(s.Hand),
		"foundation": foundation,
		"tableau":    tableau,
		"moves":      s.Moves,
		"won":        s.Won,
		"score":      score,
	}
	if s.HandOrigin != nil {
		fields["hand_origin"] = Spot(*s.HandOrigin)
	}
	return fields
}

// Score is the body sent after a batch changed the table score.
func Score(score, delta int64) Fields {
	return Fields{"score": score, "delta": delta}
}

// Error is the body sent privately when a request fails.
func Error(code int, message string) Fields {
	return Fields{"code": code, "message": message}
}

// Event renders one app event.
func Event(ev app.Event) (Fields, error) {
	switch p := ev.Payload.(type) {
	case app.GameDealtPayload:
		return Fields{
			"placements": Placements(p.Placements),
			"counts":     Counts(p.Counts),
		}, nil
	case app.CardsMovedPayload:
		return Fields{"placements": Placements(p.Placements)}, nil
	case app.MoveCompletedPayload:
		return Fields{
			"kind":  p.Kind.String(),
			"from":  Spot(p.From),
			"to":    Spot(p.To),
			"cards": Cards(p.Cards),
			"moves": p.Moves,
		}, nil
	case app.MoveRejectedPayload:
		return Fields{
			"cards":  Cards(p.Cards),
			"to":     Spot(p.To),
			"reason": p.Reason,
		}, nil
	case app.WarningPayload:
		return Fields{
			"spot":   Spot(p.Spot),
			"reason": p.Reason,
		}, nil
	case app.HintPayload:
		fields := Fields{"found": p.Found}
		if p.Found {
			fields["action"] = p.Action
			fields["from"] = Spot(p.From)
			fields["to"] = Spot(p.To)
		}
		// Draw and recycle hints name no card.
		if p.Found && (p.Action == "place" || p.Action == "flip") {
			fields["card"] = p.Card.Code()
		}
		return fields, nil
	case app.GameWonPayload:
		return Fields{"moves": p.Moves}, nil
	default:
		return nil, fmt.Errorf("unknown event %s with payload %T", ev.Kind, ev.Payload)
	}
}
