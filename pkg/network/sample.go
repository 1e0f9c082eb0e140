package network

// sampleEdges is the five-router topology the simulator starts with.
var sampleEdges = []Edge{
	{Source: 1, Target: 2, Weight: 3},
	{Source: 1, Target: 3, Weight: 2},
	{Source: 2, Target: 4, Weight: 5},
	{Source: 2, Target: 3, Weight: 1},
	{Source: 3, Target: 4, Weight: 2},
	{Source: 2, Target: 0, Weight: 5},
	{Source: 3, Target: 0, Weight: 7},
}

// Sample returns the default topology: routers 0–4 with seven links, in a
// network of DefaultCapacity.
func Sample() *Network {
	n := New(DefaultCapacity)
	for i := 0; i < 5; i++ {
		_, _ = n.AddNode()
	}
	for _, e := range sampleEdges {
		_ = n.UpsertEdge(e.Source, e.Target, e.Weight)
	}
	return n
}
