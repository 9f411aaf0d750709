package connect

import "github.com/leapstack-labs/leapflow/pkg/core"

// DefaultStyle is used for accepted pairs without a dedicated treatment.
var DefaultStyle = core.EdgeStyle{Stroke: "#666", StrokeWidth: 2}

type pair struct {
	source, target core.NodeType
}

var styles = map[pair]core.EdgeStyle{
	// Data feed.
	{core.NodeDataModel, core.NodeAtomicAnalysis}:        {Stroke: "#FFEB3B", StrokeWidth: 3, StrokeDasharray: "5,5"},
	{core.NodePrerequisite, core.NodePreCheck}:           {Stroke: "#1890FF", StrokeWidth: 2},
	{core.NodePreCheck, core.NodeAtomicAnalysis}:         {Stroke: "#52C41A", StrokeWidth: 2},
	{core.NodeAtomicAnalysis, core.NodeAnalysisResult}:   {Stroke: "#722ED1", StrokeWidth: 2},
	{core.NodeAnalysisResult, core.NodeAnalysisResource}: {Stroke: "#F5222D", StrokeWidth: 2},
}

// StyleFor returns the stroke for an edge between the two types. It does
// not check admissibility.
func StyleFor(source, target core.NodeType) core.EdgeStyle {
	if s, ok := styles[pair{source, target}]; ok {
		return s
	}
	return DefaultStyle
}
