package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/metagrad/internal/tensor"
)

// Sequential is a container that chains modules together.
//
// Modules are applied in order: output = moduleN(...module2(module1(input))).
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewQuadratic(backend),
//	    nn.NewQuadratic(backend),
//	)
//	output := model.Forward(input)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all parameters from all modules.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// NamedParameters qualifies each child's parameter names with the child's
// index, so the weights of two stacked layers become "0.weight" and
// "1.weight".
func (s *Sequential[B]) NamedParameters() []NamedParameter[B] {
	var named []NamedParameter[B]
	for i, module := range s.modules {
		prefix := strconv.Itoa(i) + "."
		for _, np := range NamedParameters(module) {
			named = append(named, NamedParameter[B]{Name: prefix + np.Name, Param: np.Param})
		}
	}
	return named
}

// Clone rebuilds every child around its slice of params. All children
// must implement Cloner.
func (s *Sequential[B]) Clone(params []*Parameter[B]) (Module[B], error) {
	clone := &Sequential[B]{modules: make([]Module[B], len(s.modules))}
	offset := 0
	for i, module := range s.modules {
		cloner, ok := module.(Cloner[B])
		if !ok {
			return nil, fmt.Errorf("sequential: module %d (%T) does not implement Cloner", i, module)
		}
		n := len(module.Parameters())
		if offset+n > len(params) {
			return nil, fmt.Errorf("sequential: clone needs more than %d parameters", len(params))
		}
		child, err := cloner.Clone(params[offset : offset+n])
		if err != nil {
			return nil, fmt.Errorf("sequential: module %d: %w", i, err)
		}
		clone.modules[i] = child
		offset += n
	}
	if offset != len(params) {
		return nil, fmt.Errorf("sequential: clone got %d parameters, used %d", len(params), offset)
	}
	return clone, nil
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at index i.
func (s *Sequential[B]) Module(i int) Module[B] {
	return s.modules[i]
}
