package agent

// Edge is one transition of the workflow graph. Conditional edges are
// resolved at run time (fan-out after query generation, the loop-or-finalize
// decision after reflection).
type Edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Conditional bool   `json:"conditional"`
}

// Topology is a static, serializable description of the workflow graph for
// introspection. It does not participate in the control loop.
type Topology struct {
	Entry string   `json:"entry"`
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// GraphEnd marks the terminal pseudo-node.
const GraphEnd = "__end__"

// WorkflowTopology describes the research workflow's state machine.
func WorkflowTopology() Topology {
	return Topology{
		Entry: nodeGenerateQuery,
		Nodes: []string{nodeGenerateQuery, nodeWebResearch, nodeReflection, nodeFinalize},
		Edges: []Edge{
			{From: nodeGenerateQuery, To: nodeWebResearch, Conditional: true},
			{From: nodeWebResearch, To: nodeReflection, Conditional: false},
			{From: nodeReflection, To: nodeWebResearch, Conditional: true},
			{From: nodeReflection, To: nodeFinalize, Conditional: true},
			{From: nodeFinalize, To: GraphEnd, Conditional: false},
		},
	}
}
