package nn_test

import (
	"testing"

	"github.com/born-ml/metagrad/internal/autodiff"
	"github.com/born-ml/metagrad/internal/backend/cpu"
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func column(t *testing.T, backend Backend, values ...float64) *tensor.Tensor[float64, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values), 1}, backend)
	require.NoError(t, err)
	return x
}

func TestParameter(t *testing.T) {
	backend := cpu.New()
	w := tensor.Ones[float64](tensor.Shape{2, 3}, backend)
	param := nn.NewParameter("weight", w)

	assert.Equal(t, "weight", param.Name())
	assert.Same(t, w, param.Tensor())
	assert.Nil(t, param.Grad())

	grad := tensor.Full[float64](tensor.Shape{2, 3}, 0.5, backend)
	param.SetGrad(grad)
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())

	replacement := tensor.Zeros[float64](tensor.Shape{2, 3}, backend)
	param.SetTensor(replacement)
	assert.Same(t, replacement, param.Tensor())
	assert.Equal(t, "weight", param.Name())
}

func TestQuadraticForward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	q := nn.NewQuadratic(backend)

	out := q.Forward(column(t, backend, 0.32, 0.72))

	assert.Equal(t, tensor.Shape{2, 1}, out.Shape())
	assert.InDeltaSlice(t, []float64{0.441808, 0.083216}, out.Data(), 1e-12)
	assert.Equal(t, nn.DefaultQuadraticWeight, q.Weight().Tensor().Data())
}

func TestNewQuadraticFrom(t *testing.T) {
	backend := cpu.New()

	q, err := nn.NewQuadraticFrom([]float64{1, 0, 0, 0, 2, 0, 0, 0, 3}, 3, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3}, q.Weight().Tensor().Shape())

	x, err := tensor.FromSlice([]float64{1, 1, 1}, tensor.Shape{3, 1}, backend)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9}, q.Forward(x).Data())

	_, err = nn.NewQuadraticFrom([]float64{1, 2, 3}, 2, backend)
	require.Error(t, err)

	_, err = nn.NewQuadraticFrom(nil, 0, backend)
	require.Error(t, err)
}

func TestNamedParameters(t *testing.T) {
	backend := cpu.New()

	q := nn.NewQuadratic(backend)
	named := nn.NamedParameters[*cpu.CPUBackend](q)
	require.Len(t, named, 1)
	assert.Equal(t, "weight", named[0].Name)
	assert.Same(t, q.Weight(), named[0].Param)

	first, second := nn.NewQuadratic(backend), nn.NewQuadratic(backend)
	seq := nn.NewSequential[*cpu.CPUBackend](first, second)
	named = nn.NamedParameters[*cpu.CPUBackend](seq)
	require.Len(t, named, 2)
	assert.Equal(t, "0.weight", named[0].Name)
	assert.Equal(t, "1.weight", named[1].Name)
	assert.Same(t, first.Weight(), named[0].Param)
	assert.Same(t, second.Weight(), named[1].Param)
}

func TestSetParameter(t *testing.T) {
	backend := cpu.New()
	first, second := nn.NewQuadratic(backend), nn.NewQuadratic(backend)
	seq := nn.NewSequential[*cpu.CPUBackend](first, second)

	replacement := tensor.Eye[float64](2, backend)
	require.NoError(t, nn.SetParameter[*cpu.CPUBackend](seq, "1.weight", replacement))
	assert.Same(t, replacement, second.Weight().Tensor())
	assert.Equal(t, nn.DefaultQuadraticWeight, first.Weight().Tensor().Data())

	err := nn.SetParameter[*cpu.CPUBackend](seq, "2.weight", replacement)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such parameter")

	err = nn.SetParameter[*cpu.CPUBackend](seq, "0.weight", tensor.Eye[float64](3, backend))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape")
}

func TestAccumulateGrads(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	q := nn.NewQuadratic(backend)
	loss := q.Forward(column(t, backend, 0.32, 0.72)).Sum()
	grads := autodiff.Backward(loss, backend)

	// d/dW sum(WᵀWx) = W(x·1ᵀ + 1·xᵀ)
	expected := []float64{0.6744, 1.0784, 0.4744, 0.7184}

	nn.AccumulateGrads(q.Parameters(), grads)
	require.NotNil(t, q.Weight().Grad())
	assert.InDeltaSlice(t, expected, q.Weight().Grad().Data(), 1e-12)

	nn.AccumulateGrads(q.Parameters(), grads)
	doubled := make([]float64, len(expected))
	for i, v := range expected {
		doubled[i] = 2 * v
	}
	assert.InDeltaSlice(t, doubled, q.Weight().Grad().Data(), 1e-12)

	nn.ZeroGrad[Backend](q)
	assert.Nil(t, q.Weight().Grad())

	// Parameters absent from the map are left alone.
	other := nn.NewQuadratic(backend)
	nn.AccumulateGrads(other.Parameters(), grads)
	assert.Nil(t, other.Weight().Grad())
}

func TestSequentialForward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	seq := nn.NewSequential[Backend](nn.NewQuadratic(backend), nn.NewQuadratic(backend))

	out := seq.Forward(column(t, backend, 0.32, 0.72))
	assert.InDeltaSlice(t, []float64{0.4735365856, 0.0702604224}, out.Data(), 1e-12)
	assert.Equal(t, 2, seq.Len())
	assert.Len(t, seq.Parameters(), 2)
}

func TestClone(t *testing.T) {
	backend := cpu.New()
	q := nn.NewQuadratic(backend)

	p := nn.NewParameter("weight", tensor.Eye[float64](2, backend))
	clone, err := q.Clone([]*nn.Parameter[*cpu.CPUBackend]{p})
	require.NoError(t, err)
	assert.Same(t, p, clone.Parameters()[0])
	assert.NotSame(t, q.Weight(), clone.Parameters()[0])

	_, err = q.Clone(nil)
	require.Error(t, err)

	bad := nn.NewParameter("weight", tensor.Eye[float64](3, backend))
	_, err = q.Clone([]*nn.Parameter[*cpu.CPUBackend]{bad})
	require.Error(t, err)

	seq := nn.NewSequential[*cpu.CPUBackend](nn.NewQuadratic(backend), nn.NewQuadratic(backend))
	p0 := nn.NewParameter("weight", tensor.Eye[float64](2, backend))
	p1 := nn.NewParameter("weight", tensor.Eye[float64](2, backend))
	seqClone, err := seq.Clone([]*nn.Parameter[*cpu.CPUBackend]{p0, p1})
	require.NoError(t, err)
	named := nn.NamedParameters(seqClone)
	require.Len(t, named, 2)
	assert.Equal(t, "1.weight", named[1].Name)
	assert.Same(t, p1, named[1].Param)

	_, err = seq.Clone([]*nn.Parameter[*cpu.CPUBackend]{p0})
	require.Error(t, err)
}
