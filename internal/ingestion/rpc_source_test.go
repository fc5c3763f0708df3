package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"evm-token-lab/internal/ethrpc"
)

// logsServer answers every eth_getLogs request with the given logs.
func logsServer(t *testing.T, logs []map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64        `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "eth_getLogs" {
			t.Errorf("expected eth_getLogs, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  logs,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestRPCEventSource_FetchTransfers(t *testing.T) {
	server := logsServer(t, []map[string]interface{}{
		{
			"address":         "0xtoken",
			"topics":          []string{ethrpc.TopicTransfer, topicAddr(fromAddr), topicAddr(toAddr)},
			"data":            "0x" + word(1_000_000_000_000_000_000),
			"blockNumber":     "0x64",
			"transactionHash": "0xhash1",
			"logIndex":        "0x0",
		},
		{
			"address":         "0xtoken",
			"topics":          []string{ethrpc.TopicTransfer, topicAddr(fromAddr), topicAddr(toAddr)},
			"data":            "0x" + word(2_000_000_000_000_000_000),
			"blockNumber":     "0x65",
			"transactionHash": "0xhash2",
			"logIndex":        "0x1",
			"removed":         true, // reorged out, must be skipped
		},
	})
	defer server.Close()

	src := NewRPCEventSource(ethrpc.NewHTTPClient(server.URL))

	transfers, err := src.FetchTransfers(context.Background(), "0xtoken", 100, 200)
	if err != nil {
		t.Fatalf("FetchTransfers: %v", err)
	}

	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer (removed log skipped), got %d", len(transfers))
	}
	if transfers[0].TxHash != "0xhash1" {
		t.Errorf("expected 0xhash1, got %s", transfers[0].TxHash)
	}
	if transfers[0].Value != 1 {
		t.Errorf("expected value 1, got %f", transfers[0].Value)
	}
}

func TestRPCEventSource_FetchPairEvents(t *testing.T) {
	swapData := "0x" + word(1_000_000_000_000_000_000) + word(0) + word(0) + word(500_000)
	mintData := "0x" + word(3_000_000_000_000_000_000) + word(900_000)

	server := logsServer(t, []map[string]interface{}{
		{
			"address":         pairAddr,
			"topics":          []string{ethrpc.TopicV2Swap, topicAddr(fromAddr), topicAddr(toAddr)},
			"data":            swapData,
			"blockNumber":     "0x64",
			"transactionHash": "0xswap1",
			"logIndex":        "0x0",
		},
		{
			"address":         pairAddr,
			"topics":          []string{ethrpc.TopicV2Mint, topicAddr(fromAddr)},
			"data":            mintData,
			"blockNumber":     "0x65",
			"transactionHash": "0xmint1",
			"logIndex":        "0x1",
		},
	})
	defer server.Close()

	src := NewRPCEventSource(ethrpc.NewHTTPClient(server.URL))
	src.Token1Decimals = 6

	events, err := src.FetchPairEvents(context.Background(), pairAddr, 100, 200)
	if err != nil {
		t.Fatalf("FetchPairEvents: %v", err)
	}

	if len(events.Swaps) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(events.Swaps))
	}
	if events.Swaps[0].Amount0In != 1 || events.Swaps[0].Amount1Out != 0.5 {
		t.Errorf("wrong swap amounts: %+v", events.Swaps[0])
	}

	if len(events.Mints) != 1 {
		t.Fatalf("expected 1 mint, got %d", len(events.Mints))
	}
	if events.Mints[0].Amount0 != 3 || events.Mints[0].Amount1 != 0.9 {
		t.Errorf("wrong mint amounts: %+v", events.Mints[0])
	}

	if len(events.Burns) != 0 {
		t.Errorf("expected no burns, got %d", len(events.Burns))
	}
}
