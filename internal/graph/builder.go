package graph

import (
	"sort"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/evmaddr"
)

// SwapAction is one classified swap attributed to an address, kept for
// cluster scoring and the active-trader analysis.
type SwapAction struct {
	Block int64   // block the swap landed in
	Type  string  // BUY | SELL | MIXED | SWAP
	Value float64 // token amount moved
}

// BuildResult is the graph plus the side tables the scorer consumes. The
// action history is an explicit map owned here and read by consumers; no
// package-level state.
type BuildResult struct {
	Graph   *AddressGraph
	Sources []string                // sorted source addresses
	Actions map[string][]SwapAction // per-address classified swap history
}

// Build constructs the relationship graph from a classified timeline in
// three passes: source identification, source-funding edges, and
// coordinated-swap edges.
func Build(records []*domain.TimelineRecord, excluded ...string) *BuildResult {
	g := NewAddressGraph(excluded...)
	sources := make(map[string]struct{})

	// Pass 1: sources. Recipients of zero-address transfers and mint
	// initiators are presumed close to the deployer.
	for _, r := range records {
		switch {
		case r.EventType == domain.EventTransfer && r.FromAddress == evmaddr.Zero:
			if n := g.EnsureNode(r.ToAddress); n != nil {
				n.IsSource = true
				sources[r.ToAddress] = struct{}{}
			}
		case r.TransactionType == domain.TxTypeMint:
			for _, init := range r.Initiators {
				if n := g.EnsureNode(init); n != nil {
					n.IsSource = true
					sources[init] = struct{}{}
				}
				if r.ToAddress != "" && r.ToAddress != init {
					g.AddEdge(init, r.ToAddress, EdgeMintFunding, WeightFunding, r.BlockNumber, "", r.Value)
				}
			}
		}
	}

	// Pass 2: funding edges from sources to distinct recipients.
	for _, r := range records {
		if r.EventType != domain.EventTransfer || r.TransactionType != "" {
			continue
		}
		if _, isSource := sources[r.FromAddress]; !isSource {
			continue
		}
		if r.ToAddress == "" || r.ToAddress == r.FromAddress {
			continue
		}
		g.AddEdge(r.FromAddress, r.ToAddress, EdgeSourceFunding, WeightFunding, r.BlockNumber, "", r.Value)
	}

	// Pass 3: coordinated swaps. Identical (block, action, value) from two
	// or more distinct initiators is treated as scripted activity.
	type coordKey struct {
		block  int64
		txType string
		value  float64
	}
	coordGroups := make(map[coordKey][]string)
	var coordOrder []coordKey
	actions := make(map[string][]SwapAction)

	for _, r := range records {
		if !isSwapType(r.TransactionType) || len(r.Initiators) == 0 {
			continue
		}
		key := coordKey{r.BlockNumber, r.TransactionType, r.Value}
		for _, init := range r.Initiators {
			n := g.EnsureNode(init)
			if n == nil {
				continue
			}
			n.IsSwapper = true
			n.SwapCount++
			actions[init] = append(actions[init], SwapAction{
				Block: r.BlockNumber,
				Type:  r.TransactionType,
				Value: r.Value,
			})
			if _, ok := coordGroups[key]; !ok {
				coordOrder = append(coordOrder, key)
			}
			coordGroups[key] = appendUnique(coordGroups[key], init)
		}
	}

	for _, key := range coordOrder {
		members := coordGroups[key]
		if len(members) < 2 {
			continue
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.AddEdge(members[i], members[j], EdgeCoordinatedSwap, WeightCoordinatedSwap,
					key.block, key.txType, key.value)
			}
		}
	}

	sourceList := make([]string, 0, len(sources))
	for addr := range sources {
		sourceList = append(sourceList, addr)
	}
	sort.Strings(sourceList)

	return &BuildResult{
		Graph:   g,
		Sources: sourceList,
		Actions: actions,
	}
}

func isSwapType(txType string) bool {
	switch txType {
	case domain.TxTypeBuy, domain.TxTypeSell, domain.TxTypeMixed, domain.TxTypeSwap:
		return true
	}
	return false
}

func appendUnique(list []string, addr string) []string {
	for _, a := range list {
		if a == addr {
			return list
		}
	}
	return append(list, addr)
}
