package terminal

import (
	"strings"
	"testing"

	"klondike/internal/app"
	"klondike/internal/domain"
)

func TestRenderBoard(t *testing.T) {
	var s domain.Snapshot
	s.Stock = []domain.CardView{{Card: domain.SuitRank{Suit: domain.Spades, Rank: domain.King}}}
	s.Waste = []domain.CardView{{Card: domain.SuitRank{Suit: domain.Hearts, Rank: domain.Seven}, FaceUp: true}}
	s.Tableau[0] = []domain.CardView{
		{Card: domain.SuitRank{Suit: domain.Diamonds, Rank: domain.Nine}},
		{Card: domain.SuitRank{Suit: domain.Clubs, Rank: domain.Ace}, FaceUp: true},
	}
	s.Moves = 4

	out, err := RenderBoard(s, 35)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, want := range []string{"Tableau", "Stock", "Foundations", "A♣", "7♥", FaceDown, "35", "(4 moves)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("board is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "9♦") {
		t.Fatalf("face-down card leaked onto the board:\n%s", out)
	}
}

func TestDescribe(t *testing.T) {
	ac := domain.SuitRank{Suit: domain.Clubs, Rank: domain.Ace}
	tests := []struct {
		name string
		ev   app.Event
		want string
	}{
		{"Moved", app.Event{Kind: app.EventMoveCompleted, Payload: app.MoveCompletedPayload{
			Kind: domain.MovePlace, From: domain.TableauSpot(0), To: domain.FoundationSpot(0), Cards: []domain.SuitRank{ac},
		}}, "Moved A♣"},
		{"Draw", app.Event{Kind: app.EventMoveCompleted, Payload: app.MoveCompletedPayload{Kind: domain.MoveDraw}}, ""},
		{"Rejected", app.Event{Kind: app.EventMoveRejected, Payload: app.MoveRejectedPayload{
			Cards: []domain.SuitRank{ac}, To: domain.TableauSpot(3), Reason: "illegal move",
		}}, "illegal move"},
		{"NoHint", app.Event{Kind: app.EventHint, Payload: app.HintPayload{}}, "No moves left"},
		{"DrawHint", app.Event{Kind: app.EventHint, Payload: app.HintPayload{Found: true, Action: "draw"}}, "draw from the stock"},
		{"Won", app.Event{Kind: app.EventGameWon, Payload: app.GameWonPayload{Moves: 90}}, "90 moves"},
		{"CardsMoved", app.Event{Kind: app.EventCardsMoved, Payload: app.CardsMovedPayload{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.ev)
			if tt.want == "" {
				if got != "" {
					t.Fatalf("Describe = %q, want nothing", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("Describe = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}
