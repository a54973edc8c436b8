package ops

import (
	"fmt"
	"sort"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/config"
	"github.com/hdlforge/hdlforge/internal/engine"
	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

// Operation binds a name to the step definitions the classifier tracks and
// to the spawn-descriptor builder invoked at per-run preparation time.
// CompileOrder asks the command layer to regenerate the project's compile
// order file during that same preparation step.
type Operation struct {
	Name             string
	Description      string
	Steps            []classify.StepDefinition
	SupportsParallel bool
	CompileOrder     bool
	Spawn            func(proj *config.Project, runDir string) engine.SpawnSpec
}

// Registry is the static operation table, built by explicit enumeration at
// startup and validated before first use.
type Registry struct {
	ops   map[string]Operation
	order []string
}

// NewRegistry builds and validates a registry: every step pattern must
// compile and no operation or step id may repeat.
func NewRegistry(operations ...Operation) (*Registry, error) {
	r := &Registry{ops: make(map[string]Operation, len(operations))}

	for _, op := range operations {
		if _, exists := r.ops[op.Name]; exists {
			return nil, forgeerrors.NewValidationError(op.Name, "duplicate operation name", nil)
		}

		seen := make(map[string]struct{}, len(op.Steps))
		for _, step := range op.Steps {
			if _, dup := seen[step.ID]; dup {
				field := fmt.Sprintf("%s.%s", op.Name, step.ID)
				return nil, forgeerrors.NewValidationError(field, "duplicate step id", nil)
			}
			seen[step.ID] = struct{}{}
		}

		if _, err := classify.NewClassifier(op.Steps); err != nil {
			return nil, forgeerrors.NewValidationError(op.Name, err.Error(), err)
		}

		r.ops[op.Name] = op
		r.order = append(r.order, op.Name)
	}

	sort.Strings(r.order)
	return r, nil
}

// Get returns the named operation.
func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names lists registered operation names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Default enumerates the built-in operations.
func Default() (*Registry, error) {
	return NewRegistry(buildOperation(), exportOperation(), openOperation())
}
