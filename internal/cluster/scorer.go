package cluster

import (
	"fmt"
	"sort"
	"strings"

	"evm-token-lab/internal/domain"
	"evm-token-lab/internal/graph"
)

// Scoring weights for the community heuristic.
const (
	scorePerMember      = 2.0
	scorePerCoordEdge   = 2.5
	scoreBothSided      = 3.0
	scorePumpDump       = 2.5
	scoreOneSided       = 1.0
	scoreSourceLinked   = 1.5
	scoreSelfWash       = 2.0
	selfWashMinSwaps    = 4
	confidenceHighMin   = 9.0
	confidenceMediumMin = 5.0
)

// ClusterID assigned to every identified owner cluster.
const ClusterID = "RugPull_Owner_Cluster_1"

const fallbackReasoning = "Insufficient transactional links; cluster identified from token source addresses."

// Engine runs partitioning and scoring for one token's graph.
type Engine struct {
	partitioner Partitioner
}

// NewEngine creates a scoring engine over the given partitioner.
func NewEngine(p Partitioner) *Engine {
	return &Engine{partitioner: p}
}

// Identify produces the owner-cluster verdict for a built graph. It never
// returns an error: empty graphs and partition failures degrade to the
// source-address fallback, and the no-evidence case is a well-formed result
// with confidence None.
func (e *Engine) Identify(build *graph.BuildResult, tokenAddress string) *domain.ClusterResult {
	outcome := e.partitionOutcome(build)
	result := e.score(outcome, build)
	result.TokenAddress = tokenAddress
	if result.ConfidenceLevel != domain.ConfidenceNone {
		result.ActiveTraders = activeTraderLinks(build, result.Addresses)
	}
	return result
}

// partitionOutcome decides between the fallback and partitioned paths.
func (e *Engine) partitionOutcome(build *graph.BuildResult) *Outcome {
	if !build.Graph.HasEdges() {
		return &Outcome{Kind: OutcomeFallback, Sources: build.Sources}
	}
	assignment, err := e.partitioner.Partition(build.Graph)
	if err != nil {
		return &Outcome{
			Kind:    OutcomeFallback,
			Sources: build.Sources,
			Note:    fmt.Sprintf("community detection failed (%v); fell back to source addresses", err),
		}
	}
	return &Outcome{
		Kind:        OutcomePartitioned,
		Sources:     build.Sources,
		Communities: communitiesOf(assignment),
	}
}

// score branches on the outcome variant and assembles the final cluster.
func (e *Engine) score(outcome *Outcome, build *graph.BuildResult) *domain.ClusterResult {
	if outcome.Kind == OutcomeFallback {
		return fallbackResult(outcome.Sources, outcome.Note)
	}

	var (
		best        []string
		bestScore   float64
		bestReasons []string
	)
	for _, members := range outcome.Communities {
		score, reasons := scoreCommunity(build, members)
		if score > bestScore {
			best, bestScore, bestReasons = members, score, reasons
		}
	}

	if bestScore <= 0 {
		return fallbackResult(outcome.Sources, outcome.Note)
	}

	confidence := domain.ConfidenceLow
	switch {
	case bestScore >= confidenceHighMin:
		confidence = domain.ConfidenceHigh
	case bestScore >= confidenceMediumMin:
		confidence = domain.ConfidenceMedium
	}

	return &domain.ClusterResult{
		ClusterID:       ClusterID,
		Addresses:       unionAddresses(best, outcome.Sources),
		ConfidenceLevel: confidence,
		Reasoning:       strings.Join(bestReasons, " "),
	}
}

// scoreCommunity applies the multi-factor heuristic to one candidate
// community, returning the score and the textual justification of each
// contributing factor.
func scoreCommunity(build *graph.BuildResult, members []string) (float64, []string) {
	g := build.Graph
	memberSet := make(map[string]struct{}, len(members))
	for _, m := range members {
		memberSet[m] = struct{}{}
	}

	var coordEdges []*graph.Edge
	sourceLinked := false
	for _, m := range members {
		if n := g.Node(m); n != nil && n.IsSource {
			sourceLinked = true
		}
		for _, edge := range g.EdgesOf(m) {
			if edge.Type == graph.EdgeSourceFunding {
				sourceLinked = true
			}
			if edge.Type != graph.EdgeCoordinatedSwap || edge.A != m {
				continue // count each internal edge once, from its A endpoint
			}
			if _, ok := memberSet[edge.B]; ok {
				coordEdges = append(coordEdges, edge)
			}
		}
	}

	buys, sells := 0, 0
	for _, m := range members {
		for _, a := range build.Actions[m] {
			switch a.Type {
			case domain.TxTypeBuy:
				buys++
			case domain.TxTypeSell:
				sells++
			case domain.TxTypeMixed:
				buys++
				sells++
			}
		}
	}

	var score float64
	var reasons []string

	if len(coordEdges) > 0 {
		score += scorePerMember*float64(len(members)) + scorePerCoordEdge*float64(len(coordEdges))
		reasons = append(reasons, fmt.Sprintf("Community of %d addresses has %d internal links from same-block-identical-value swaps.",
			len(members), len(coordEdges)))
	}

	switch {
	case buys > 0 && sells > 0:
		score += scoreBothSided
		reasons = append(reasons, "Community exhibits both buy and sell activity.")
		for _, edge := range coordEdges {
			if strings.HasPrefix(edge.Action, domain.TxTypeBuy) {
				score += scorePumpDump
				reasons = append(reasons, "Coordinated buys followed by sells suggest a pump-and-dump pattern.")
				break
			}
		}
	case buys > 0 || sells > 0:
		score += scoreOneSided
		reasons = append(reasons, "Community shows one-sided trading activity.")
	}

	if sourceLinked {
		score += scoreSourceLinked
		reasons = append(reasons, "Cluster is linked to initial token source/minter.")
	}

	if len(members) == 1 {
		if n := g.Node(members[0]); n != nil && n.SwapCount > selfWashMinSwaps && buys > 1 && sells > 1 {
			score += scoreSelfWash
			reasons = append(reasons, "Single address with significant buy/sell activity, potential self-wash trading.")
		}
	}

	return score, reasons
}

// fallbackResult builds the cluster from source addresses alone.
func fallbackResult(sources []string, note string) *domain.ClusterResult {
	if len(sources) == 0 {
		return &domain.ClusterResult{
			ConfidenceLevel: domain.ConfidenceNone,
			Message:         "No cluster identified: no transactional links or source addresses found.",
		}
	}
	reasoning := fallbackReasoning
	if note != "" {
		reasoning = note + " " + reasoning
	}
	addrs := make([]string, len(sources))
	copy(addrs, sources)
	sort.Strings(addrs)
	return &domain.ClusterResult{
		ClusterID:       ClusterID,
		Addresses:       addrs,
		ConfidenceLevel: domain.ConfidenceMedium,
		Reasoning:       reasoning,
	}
}

// unionAddresses merges and sorts two address sets.
func unionAddresses(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, x := range b {
		set[x] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}
