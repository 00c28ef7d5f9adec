// Package nn implements neural network modules for metagrad.
//
// This package provides building blocks for differentiable models:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named trainable tensors with accumulated gradients
//   - Quadratic: The W^T W x layer used to exercise second derivatives
//   - Sequential: Container for stacking layers
//
// Parameters hold float64 values. Second-order checks compare against
// closed-form values at tolerances float32 cannot meet.
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"fmt"

	"github.com/born-ml/metagrad/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B]

	// Parameters returns all trainable parameters of this module, in a
	// stable order.
	Parameters() []*Parameter[B]
}

// Cloner is implemented by modules that can rebuild themselves around a
// new set of parameters. params has the order of Parameters().
//
// The meta package uses it to produce model copies whose parameters are
// graph-connected copies of the originals.
type Cloner[B tensor.Backend] interface {
	Clone(params []*Parameter[B]) (Module[B], error)
}

// NamedParameter pairs a parameter with its qualified name inside a model.
type NamedParameter[B tensor.Backend] struct {
	Name  string
	Param *Parameter[B]
}

// namedModule is implemented by containers that qualify their children's
// parameter names.
type namedModule[B tensor.Backend] interface {
	NamedParameters() []NamedParameter[B]
}

// NamedParameters returns the model's parameters as an ordered name to
// parameter mapping. Containers such as Sequential prefix child names with
// the child index ("0.weight"); leaf modules use Parameter.Name.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	if nm, ok := m.(namedModule[B]); ok {
		return nm.NamedParameters()
	}

	params := m.Parameters()
	named := make([]NamedParameter[B], len(params))
	for i, p := range params {
		named[i] = NamedParameter[B]{Name: p.Name(), Param: p}
	}
	return named
}

// SetParameter replaces the tensor of the parameter called name.
//
// The replacement does not need to be a leaf: a tensor produced by recorded
// operations keeps its graph, so later losses differentiate through it.
func SetParameter[B tensor.Backend](m Module[B], name string, t *tensor.Tensor[float64, B]) error {
	for _, np := range NamedParameters(m) {
		if np.Name != name {
			continue
		}
		if !np.Param.Tensor().Shape().Equal(t.Shape()) {
			return fmt.Errorf("set parameter %q: shape %v does not match %v",
				name, t.Shape(), np.Param.Tensor().Shape())
		}
		np.Param.SetTensor(t)
		return nil
	}
	return fmt.Errorf("set parameter %q: no such parameter", name)
}

// ZeroGrad clears the gradients of every parameter in m.
func ZeroGrad[B tensor.Backend](m Module[B]) {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}
