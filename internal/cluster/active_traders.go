package cluster

import (
	"fmt"
	"sort"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/graph"
)

// topActiveTraders is the N of the secondary most-active-trader analysis.
const topActiveTraders = 5

// activeTraderLinks reports, for the most active swap initiators outside the
// cluster, their direct funding and coordination links into it. Informational
// only; the cluster and its confidence are unchanged.
func activeTraderLinks(build *graph.BuildResult, clusterAddrs []string) []*domain.ActiveTraderLinks {
	inCluster := make(map[string]struct{}, len(clusterAddrs))
	for _, a := range clusterAddrs {
		inCluster[a] = struct{}{}
	}

	var traders []*graph.Node
	for _, n := range build.Graph.Nodes() {
		if !n.IsSwapper {
			continue
		}
		if _, ok := inCluster[n.Address]; ok {
			continue
		}
		traders = append(traders, n)
	}
	sort.Slice(traders, func(i, j int) bool {
		if traders[i].SwapCount != traders[j].SwapCount {
			return traders[i].SwapCount > traders[j].SwapCount
		}
		return traders[i].Address < traders[j].Address
	})
	if len(traders) > topActiveTraders {
		traders = traders[:topActiveTraders]
	}

	members := make([]string, len(clusterAddrs))
	copy(members, clusterAddrs)
	sort.Strings(members)

	var out []*domain.ActiveTraderLinks
	for _, trader := range traders {
		links := &domain.ActiveTraderLinks{
			Address:   trader.Address,
			SwapCount: trader.SwapCount,
		}
		for _, member := range members {
			for _, edgeType := range []string{graph.EdgeSourceFunding, graph.EdgeMintFunding} {
				edge := build.Graph.EdgeBetween(trader.Address, member, edgeType)
				if edge == nil {
					continue
				}
				if edge.From == member {
					links.FundedByCluster = true
				} else {
					links.FundedCluster = true
				}
			}
			if edge := build.Graph.EdgeBetween(trader.Address, member, graph.EdgeCoordinatedSwap); edge != nil {
				links.CoordinatedWithCluster = true
				if links.CoordinatedActionDetails == "" {
					links.CoordinatedActionDetails = fmt.Sprintf("%s with %s in block %d", edge.Action, member, edge.Block)
				}
			}
		}
		out = append(out, links)
	}
	return out
}
