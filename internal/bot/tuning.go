package bot

// Tuning weighs the ranked brain's selection rules.
type Tuning struct {
	FoundationWeight  float64
	RevealWeight      float64
	FlipWeight        float64
	WasteWeight       float64
	EmptyColumnWeight float64
	IdlePenalty       float64
}

// DefaultTuning ranks free flips highest and moves that only rearrange
// face-up runs lowest.
var DefaultTuning = Tuning{
	FoundationWeight:  6.0,
	RevealWeight:      8.0,
	FlipWeight:        10.0,
	WasteWeight:       3.0,
	EmptyColumnWeight: 2.0,
	IdlePenalty:       -4.0,
}
