// Package terminal is a pterm front end for one Klondike table: a board
// renderer, a command parser and a session that ties them to the app service.
package terminal

import (
	"fmt"
	"strings"

	"klondike/internal/app"
	"klondike/internal/domain"

	"github.com/pterm/pterm"
)

// FaceDown is the display for hidden cards.
const FaceDown = "▓▓"

const cellWidth = 5

// CardLabel renders a card. The two suit buckets get different colours.
func CardLabel(v domain.CardView) string {
	return cell(v, 0)
}

// cell renders v padded to width, padding before colouring so columns line up.
func cell(v domain.CardView, width int) string {
	if !v.FaceUp {
		return pterm.Gray(fmt.Sprintf("%-*s", width, FaceDown))
	}
	text := fmt.Sprintf("%-*s", width, v.Card.String())
	if v.Card.Suit < domain.Hearts {
		return pterm.LightCyan(text)
	}
	return pterm.LightRed(text)
}

func emptyCell(width int) string {
	return pterm.Gray(fmt.Sprintf("%-*s", width, "--"))
}

func topCell(pile []domain.CardView) string {
	if len(pile) == 0 {
		return emptyCell(0)
	}
	return CardLabel(pile[len(pile)-1])
}

func box(title, body string) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(1).WithRightPadding(1)
	return pterm.Panel{Data: pbox.WithTitle(title).WithTitleTopLeft().Sprint(body)}
}

// tableauRows lays the seven columns out side by side, top of the column last.
func tableauRows(s domain.Snapshot) string {
	depth := 0
	for _, col := range s.Tableau {
		if len(col) > depth {
			depth = len(col)
		}
	}

	var b strings.Builder
	for i := 0; i < domain.NumTableaus; i++ {
		b.WriteString(pterm.Gray(fmt.Sprintf("%-*s", cellWidth, fmt.Sprintf("t%d", i))))
	}
	for row := 0; row < depth || row == 0; row++ {
		b.WriteString("\n")
		for _, col := range s.Tableau {
			switch {
			case row < len(col):
				b.WriteString(cell(col[row], cellWidth))
			case row == 0:
				b.WriteString(emptyCell(cellWidth))
			default:
				b.WriteString(strings.Repeat(" ", cellWidth))
			}
		}
	}
	return b.String()
}

// RenderBoard draws the whole table.
func RenderBoard(s domain.Snapshot, score int64) (string, error) {
	stock := emptyCell(0)
	if len(s.Stock) > 0 {
		stock = pterm.Gray(FaceDown)
	}
	stockBody := fmt.Sprintf("%s  %d", stock, len(s.Stock))

	waste := make([]string, 0, 3)
	from := len(s.Waste) - 3
	if from < 0 {
		from = 0
	}
	for _, v := range s.Waste[from:] {
		waste = append(waste, CardLabel(v))
	}
	wasteBody := strings.Join(waste, " ")
	if wasteBody == "" {
		wasteBody = emptyCell(0)
	}

	foundations := make([]string, 0, domain.NumFoundations)
	for i, f := range s.Foundation {
		foundations = append(foundations, fmt.Sprintf("f%d %s", i, topCell(f)))
	}

	top := []pterm.Panel{
		box("Stock", stockBody),
		box("Waste", wasteBody),
		box("Foundations", strings.Join(foundations, "  ")),
	}
	middle := []pterm.Panel{box("Tableau", tableauRows(s))}

	handBody := emptyCell(0)
	if len(s.Hand) > 0 {
		cards := make([]string, len(s.Hand))
		for i, v := range s.Hand {
			cards[i] = CardLabel(v)
		}
		handBody = strings.Join(cards, " ")
		if s.HandOrigin != nil {
			handBody += pterm.Gray(" from " + s.HandOrigin.String())
		}
	}
	bottom := []pterm.Panel{
		box("Hand", handBody),
		box("Score", fmt.Sprintf("%d  (%d moves)", score, s.Moves)),
	}

	return pterm.DefaultPanel.WithPanels([][]pterm.Panel{top, middle, bottom}).Srender()
}

// Describe turns an event into a log line. Events the board already shows
// produce an empty string.
func Describe(ev app.Event) string {
	switch p := ev.Payload.(type) {
	case app.GameDealtPayload:
		return pterm.Info.Sprintfln("New deal: %d cards in the stock.", p.Counts.Stock)
	case app.MoveCompletedPayload:
		switch p.Kind {
		case domain.MoveFlip:
			return pterm.Info.Sprintfln("Turned over %s on %s.", p.Cards[0], p.From)
		case domain.MoveDraw:
			return ""
		case domain.MoveRecycle:
			return pterm.Info.Sprintfln("Waste recycled into the stock.")
		default:
			return pterm.Info.Sprintfln("Moved %s from %s to %s.", joinCards(p.Cards), p.From, p.To)
		}
	case app.MoveRejectedPayload:
		return pterm.Warning.Sprintfln("%s cannot go on %s: %s", joinCards(p.Cards), p.To, p.Reason)
	case app.WarningPayload:
		return pterm.Warning.Sprintfln("%s: %s", p.Spot, p.Reason)
	case app.HintPayload:
		if !p.Found {
			return pterm.Info.Sprintfln("No moves left. Try deal.")
		}
		switch p.Action {
		case "draw":
			return pterm.Info.Sprintfln("Hint: draw from the stock.")
		case "recycle":
			return pterm.Info.Sprintfln("Hint: recycle the waste.")
		case "flip":
			return pterm.Info.Sprintfln("Hint: turn over the top of %s.", p.From)
		default:
			return pterm.Info.Sprintfln("Hint: %s from %s to %s.", p.Card, p.From, p.To)
		}
	case app.GameWonPayload:
		return pterm.Success.Sprintfln("You won in %d moves!", p.Moves)
	default:
		return ""
	}
}

func joinCards(cards []domain.SuitRank) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
