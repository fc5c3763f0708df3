package cluster

import (
	"reflect"
	"testing"

	"evm-token-lab/internal/graph"
)

// twoCliqueGraph builds two internally dense address groups joined by
// nothing, which any sane modularity optimizer separates.
func twoCliqueGraph() *graph.AddressGraph {
	g := graph.NewAddressGraph()
	cliqueA := []string{"0xa1", "0xa2", "0xa3"}
	cliqueB := []string{"0xb1", "0xb2", "0xb3"}
	for _, clique := range [][]string{cliqueA, cliqueB} {
		for i := 0; i < len(clique); i++ {
			for j := i + 1; j < len(clique); j++ {
				g.AddEdge(clique[i], clique[j], graph.EdgeCoordinatedSwap, graph.WeightCoordinatedSwap, 10, "BUY", 1)
			}
		}
	}
	return g
}

func TestLouvainPartitioner_SeparatesDisconnectedCliques(t *testing.T) {
	p := NewLouvainPartitioner()

	assignment, err := p.Partition(twoCliqueGraph())
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(assignment) != 6 {
		t.Fatalf("expected 6 assigned addresses, got %d", len(assignment))
	}

	if assignment["0xa1"] != assignment["0xa2"] || assignment["0xa2"] != assignment["0xa3"] {
		t.Errorf("clique A split: %v", assignment)
	}
	if assignment["0xb1"] != assignment["0xb2"] || assignment["0xb2"] != assignment["0xb3"] {
		t.Errorf("clique B split: %v", assignment)
	}
	if assignment["0xa1"] == assignment["0xb1"] {
		t.Errorf("disconnected cliques merged: %v", assignment)
	}
}

func TestLouvainPartitioner_Deterministic(t *testing.T) {
	p := NewLouvainPartitioner()

	first, err := p.Partition(twoCliqueGraph())
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Partition(twoCliqueGraph())
		if err != nil {
			t.Fatalf("Partition failed on run %d: %v", i, err)
		}
		if !reflect.DeepEqual(communitiesOf(first), communitiesOf(again)) {
			t.Fatalf("run %d produced different communities:\n%v\nvs\n%v",
				i, communitiesOf(first), communitiesOf(again))
		}
	}
}

func TestLouvainPartitioner_EmptyGraph(t *testing.T) {
	p := NewLouvainPartitioner()

	assignment, err := p.Partition(graph.NewAddressGraph())
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(assignment) != 0 {
		t.Errorf("expected empty assignment, got %v", assignment)
	}
}

func TestCommunitiesOf_SortedAndOrdered(t *testing.T) {
	assignment := map[string]int{
		"0xcc": 1,
		"0xaa": 0,
		"0xbb": 1,
		"0xdd": 0,
	}

	communities := communitiesOf(assignment)

	if len(communities) != 2 {
		t.Fatalf("expected 2 communities, got %d", len(communities))
	}
	// Communities ordered by lexicographic minimum member, members sorted
	if !reflect.DeepEqual(communities[0], []string{"0xaa", "0xdd"}) {
		t.Errorf("first community wrong: %v", communities[0])
	}
	if !reflect.DeepEqual(communities[1], []string{"0xbb", "0xcc"}) {
		t.Errorf("second community wrong: %v", communities[1])
	}
}
