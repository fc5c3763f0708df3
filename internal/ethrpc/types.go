package ethrpc

// Log is one EVM event log as returned by eth_getLogs / eth_subscribe.
type Log struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"` // hex quantity
	TransactionHash string   `json:"transactionHash"`
	LogIndex        string   `json:"logIndex"` // hex quantity
	Removed         bool     `json:"removed"`
}

// LogFilter is the eth_getLogs / eth_subscribe("logs") filter object.
type LogFilter struct {
	FromBlock string     `json:"fromBlock,omitempty"` // hex quantity or tag
	ToBlock   string     `json:"toBlock,omitempty"`
	Address   string     `json:"address,omitempty"`
	Topics    [][]string `json:"topics,omitempty"`
}

// Well-known event signature hashes (topic 0).
const (
	TopicTransfer = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	TopicV2Swap   = "0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822"
	TopicV2Mint   = "0x4c209b5fc8ad50758f13e2e1088ba56a560dff690a1c6fef26394f4c03821c4f"
	TopicV2Burn   = "0xdccd412f0b1252819cb1fd330b93224ca42612892bb3f4f789976e6d81936496"
	TopicV3Swap   = "0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67"
	TopicV3Mint   = "0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde"
	TopicV3Burn   = "0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c"
)
