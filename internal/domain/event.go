package domain

// Event type labels as they appear in unified timelines.
const (
	EventTransfer = "TRANSFER"
	EventSwap     = "V2_Swap"
	EventSwapV3   = "V3_Swap"
	EventMint     = "V2_Mint"
	EventMintV3   = "V3_Mint"
	EventBurn     = "V2_Burn"
	EventBurnV3   = "V3_Burn"
)

// TokenPosition identifies which side of a pair the analyzed token occupies.
type TokenPosition int

// Pair token positions.
const (
	Token0 TokenPosition = 0
	Token1 TokenPosition = 1
)

// TransferEvent is a single ERC-20 Transfer log for the analyzed token.
type TransferEvent struct {
	BlockNumber int64   // block the log was emitted in
	TxHash      string  // transaction hash, lowercase hex
	LogIndex    int     // index of the log within the block
	From        string  // sender address, lowercase hex
	To          string  // recipient address, lowercase hex
	Value       float64 // token amount, already decimal-adjusted
}

// SwapEvent is a DEX pair Swap log (Uniswap V2 or V3 shape).
type SwapEvent struct {
	BlockNumber int64   // block the log was emitted in
	TxHash      string  // transaction hash, lowercase hex
	LogIndex    int     // index of the log within the block
	PairAddress string  // emitting pool address, lowercase hex
	Sender      string  // swap sender (router or trader)
	Recipient   string  // swap output recipient
	Amount0In   float64 // token0 paid into the pool
	Amount1In   float64 // token1 paid into the pool
	Amount0Out  float64 // token0 paid out of the pool
	Amount1Out  float64 // token1 paid out of the pool
}

// MintEvent is a liquidity-provision Mint log on a pair.
type MintEvent struct {
	BlockNumber int64   // block the log was emitted in
	TxHash      string  // transaction hash, lowercase hex
	LogIndex    int     // index of the log within the block
	PairAddress string  // emitting pool address, lowercase hex
	Sender      string  // mint sender (usually the router)
	Amount0     float64 // token0 deposited
	Amount1     float64 // token1 deposited
}

// BurnEvent is a liquidity-removal Burn log on a pair.
type BurnEvent struct {
	BlockNumber int64   // block the log was emitted in
	TxHash      string  // transaction hash, lowercase hex
	LogIndex    int     // index of the log within the block
	PairAddress string  // emitting pool address, lowercase hex
	Sender      string  // burn sender
	To          string  // liquidity recipient
	Amount0     float64 // token0 withdrawn
	Amount1     float64 // token1 withdrawn
}
