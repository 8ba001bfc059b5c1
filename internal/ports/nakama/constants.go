package nakama

const (
	// RpcNewTable is the Nakama RPC id clients call to open a fresh solitaire table.
	RpcNewTable = "klondike_new_table"

	// RpcResumeTable returns the caller's running table, creating one when none exists.
	RpcResumeTable = "klondike_resume_table"

	// RpcTableStatus returns the pile-count summary of a table by match id.
	RpcTableStatus = "klondike_status"

	// MatchNameKlondike is the authoritative match handler name registered with Nakama.
	MatchNameKlondike = "klondike_table"

	// GameLabel is the "game" value of every table's match label.
	GameLabel = "klondike"

	// WalletCurrencyPoints is the wallet key that accumulates score deltas.
	WalletCurrencyPoints = "points"

	// ConfigPath is where MatchInit looks for the game configuration.
	ConfigPath = "data/klondike_config.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDeal         int64 = 1
	OpClickCard    int64 = 2 // {"card": "QH"}
	OpClickSpot    int64 = 3 // {"spot": "t4"}
	OpDraw         int64 = 4
	OpRecycle      int64 = 5
	OpReturnHand   int64 = 6
	OpAutoMove     int64 = 7 // {"card": "QH"}
	OpAutoComplete int64 = 8
	OpHint         int64 = 9
	OpSnapshot     int64 = 10

	// Server -> Client events
	OpGameDealt     int64 = 101
	OpCardsMoved    int64 = 102
	OpMoveCompleted int64 = 103
	OpMoveRejected  int64 = 104
	OpWarning       int64 = 105
	OpHintResult    int64 = 106
	OpGameWon       int64 = 107
	OpTableSnapshot int64 = 108 // sent privately
	OpScoreChanged  int64 = 109
	OpGameError     int64 = 110 // sent privately
)

// Signal payloads understood by MatchSignal.
const (
	SignalStatus = "status"
)
