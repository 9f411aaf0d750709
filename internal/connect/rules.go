// Package connect decides which node types may be linked by an edge and how
// accepted edges are drawn.
//
// Rules are a pure function of the two endpoint types. A target-side rule
// for analysisResult is evaluated before the source-side table.
package connect

import (
	"errors"
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// allowed maps a source type to the target types it may link to. Absent
// sources and empty lists are terminal.
var allowed = map[core.NodeType][]core.NodeType{
	core.NodePrerequisite:     {core.NodePreCheck},
	core.NodePreCheck:         {core.NodeAtomicAnalysis, core.NodeAnalysisResult},
	core.NodeAtomicAnalysis:   {core.NodeAnalysisResult},
	core.NodeDataModel:        {core.NodeAtomicAnalysis, core.NodeDataModel},
	core.NodeAnalysisResult:   {core.NodeAnalysisResource},
	core.NodeAnalysisResource: nil,
}

// targetOnly restricts which sources may reach a target type regardless of
// the source table.
var targetOnly = map[core.NodeType][]core.NodeType{
	core.NodeAnalysisResult: {core.NodePreCheck, core.NodeAtomicAnalysis},
}

// RejectionError describes a refused connection. It wraps
// core.ErrInvalidConnection.
type RejectionError struct {
	Source core.NodeType
	Target core.NodeType
	// Message is suitable for showing to the user.
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s → %s: %s", e.Source, e.Target, e.Message)
}

// Unwrap returns core.ErrInvalidConnection.
func (e *RejectionError) Unwrap() error {
	return core.ErrInvalidConnection
}

// Validate reports whether an edge from a node of type source to one of
// type target is admissible and returns the style it is drawn with.
func Validate(source, target core.NodeType) (core.EdgeStyle, error) {
	if sources, ok := targetOnly[target]; ok && !slices.Contains(sources, source) {
		return core.EdgeStyle{}, &RejectionError{
			Source:  source,
			Target:  target,
			Message: fmt.Sprintf("%s nodes only accept connections from %s", target, joinTypes(sources)),
		}
	}

	targets, known := allowed[source]
	if !known {
		return core.EdgeStyle{}, &RejectionError{
			Source:  source,
			Target:  target,
			Message: fmt.Sprintf("unknown source type %q", source),
		}
	}
	if !slices.Contains(targets, target) {
		msg := fmt.Sprintf("%s nodes are terminal and cannot connect onward", source)
		if len(targets) > 0 {
			msg = fmt.Sprintf("%s nodes can only connect to %s", source, joinTypes(targets))
		}
		return core.EdgeStyle{}, &RejectionError{Source: source, Target: target, Message: msg}
	}
	return StyleFor(source, target), nil
}

// Allowed reports whether Validate would accept the pair.
func Allowed(source, target core.NodeType) bool {
	_, err := Validate(source, target)
	return err == nil
}

// Targets returns every type a source type may connect to, in table order.
func Targets(source core.NodeType) []core.NodeType {
	var out []core.NodeType
	for _, t := range allowed[source] {
		if Allowed(source, t) {
			out = append(out, t)
		}
	}
	return out
}

// UserMessage extracts the user-facing text from a connection error.
func UserMessage(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Message
	}
	return err.Error()
}

func joinTypes(types []core.NodeType) string {
	switch len(types) {
	case 0:
		return "nothing"
	case 1:
		return string(types[0])
	}
	out := ""
	for i, t := range types {
		switch {
		case i == 0:
		case i == len(types)-1:
			out += " or "
		default:
			out += ", "
		}
		out += string(t)
	}
	return out
}
