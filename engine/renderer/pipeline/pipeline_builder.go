package pipeline

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"

// builder collects construction state, including the first insertion error.
type builder struct {
	p   *pipeline
	err error
}

// PipelineBuilderOption is a function that configures a pipeline during construction.
type PipelineBuilderOption func(*builder)

// WithNode is an option builder that appends a stage to the pipeline.
//
// Parameters:
//   - node: the stage to append
//
// Returns:
//   - PipelineBuilderOption: a function that appends the stage to a pipeline
func WithNode(node effect.Node) PipelineBuilderOption {
	return func(b *builder) {
		if b.err != nil {
			return
		}
		b.err = b.p.Append(node)
	}
}

// WithNodes is an option builder that appends several stages, in order.
//
// Parameters:
//   - nodes: the stages to append
//
// Returns:
//   - PipelineBuilderOption: a function that appends the stages to a pipeline
func WithNodes(nodes ...effect.Node) PipelineBuilderOption {
	return func(b *builder) {
		for _, n := range nodes {
			WithNode(n)(b)
		}
	}
}
