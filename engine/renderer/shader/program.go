package shader

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies which programmable stage a shader source belongs to.
type Stage int

const (
	// StageVertex is the vertex stage, run once per vertex.
	StageVertex Stage = iota

	// StageFragment is the fragment stage, run once per covered pixel.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ErrShaderCompilation is matched by every CompilationError.
var ErrShaderCompilation = errors.New("shader compilation failed")

// CompilationError reports that the rendering engine rejected a shader source.
// The message comes from the engine verbatim.
type CompilationError struct {
	Key   string
	Stage Stage
	Err   error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compile %s shader %q: %v", e.Stage, e.Key, e.Err)
}

// Unwrap exposes both the engine error and ErrShaderCompilation to errors.Is.
func (e *CompilationError) Unwrap() []error {
	return []error{ErrShaderCompilation, e.Err}
}

// Program is the opaque handle to a compiled vertex + fragment shader pair.
// Materials hand it to the renderer so a surface can be drawn with it.
type Program interface {
	// Key retrieves the unique identifier of the program, used for caching and lookups.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// Source retrieves the uninterpreted source text of one stage.
	//
	// Parameters:
	//   - stage: the stage to look up
	//
	// Returns:
	//   - string: the source as supplied at compile time
	Source(stage Stage) string

	// Release frees any engine resources held by the program. Safe to call more than once.
	Release()
}

// Compiler is the boundary to the external rendering engine that turns source text into a Program.
type Compiler interface {
	// Compile builds a program from a vertex and fragment source pair.
	//
	// Parameters:
	//   - key: a unique identifier for the program
	//   - vertexSource: vertex stage source text
	//   - fragmentSource: fragment stage source text
	//
	// Returns:
	//   - Program: the compiled program
	//   - error: a *CompilationError if the engine rejected either stage
	Compile(key, vertexSource, fragmentSource string) (Program, error)
}

// sourceProgram is a Program that only retains its sources.
type sourceProgram struct {
	key     string
	sources [2]string
}

var _ Program = &sourceProgram{}

func (p *sourceProgram) Key() string {
	return p.key
}

func (p *sourceProgram) Source(stage Stage) string {
	if stage < StageVertex || stage > StageFragment {
		return ""
	}
	return p.sources[stage]
}

func (p *sourceProgram) Release() {}

// headlessCompiler accepts any non-empty source pair without a GPU.
type headlessCompiler struct{}

// NewHeadlessCompiler returns a Compiler for running without a GPU device (tools, tests, previews).
// It rejects blank sources and otherwise passes the text through untouched.
//
// Returns:
//   - Compiler: the headless compiler
func NewHeadlessCompiler() Compiler {
	return headlessCompiler{}
}

func (headlessCompiler) Compile(key, vertexSource, fragmentSource string) (Program, error) {
	if strings.TrimSpace(vertexSource) == "" {
		return nil, &CompilationError{Key: key, Stage: StageVertex, Err: errors.New("empty source")}
	}
	if strings.TrimSpace(fragmentSource) == "" {
		return nil, &CompilationError{Key: key, Stage: StageFragment, Err: errors.New("empty source")}
	}
	return &sourceProgram{key: key, sources: [2]string{vertexSource, fragmentSource}}, nil
}
