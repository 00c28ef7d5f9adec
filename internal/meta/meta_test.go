package meta_test

import (
	"testing"

	"github.com/born-ml/metagrad/internal/autodiff"
	"github.com/born-ml/metagrad/internal/backend/cpu"
	"github.com/born-ml/metagrad/internal/meta"
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/oracle"
	"github.com/born-ml/metagrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/num-analysis/linalg"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

const lr = 0.1

// Gradient of aᵀW2ᵀW2x with respect to W, W2 = W − lr·∂(aᵀWᵀWx)/∂W.
var expectedGrad = []float64{0.3972, 0.6762, 0.2869, 0.4458}

var (
	leftInput  = []float64{1, 1}       // a
	rightInput = []float64{0.32, 0.72} // x
)

func newBackend() Backend {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	return backend
}

func inputs(t *testing.T, backend Backend) (a, x *tensor.Tensor[float64, Backend]) {
	t.Helper()
	a, err := tensor.FromSlice(leftInput, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	x, err = tensor.FromSlice(rightInput, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)
	return a, x
}

func oracleWeight(t *testing.T) *linalg.Matrix {
	t.Helper()
	w, err := oracle.FromData(2, 2, nn.DefaultQuadraticWeight)
	require.NoError(t, err)
	return w
}

func quadraticLoss(a, w, x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
	out := w.MatMul(x)
	out = w.T().MatMul(out)
	return a.MatMul(out)
}

func TestGradsOfGradsWithQuadraticFunction(t *testing.T) {
	backend := newBackend()
	weight := nn.NewQuadratic(backend).Weight().Tensor()
	a, x := inputs(t, backend)

	// First forward and backward pass, keeping the backward graph.
	loss := quadraticLoss(a, weight, x)
	grads := autodiff.BackwardWith(loss, backend, autodiff.BackwardOptions{RetainGraph: true, CreateGraph: true})
	require.Contains(t, grads, weight.Raw())
	weightGrad := tensor.New[float64](grads[weight.Raw()], backend)

	// W' = W·(x·a + (x·a)ᵀ)
	var m, firstExpected *tensor.Tensor[float64, Backend]
	backend.NoGrad(func() {
		m = x.MatMul(a)
		m = m.Add(m.T())
		firstExpected = weight.MatMul(m)
	})
	assert.True(t, weightGrad.AllClose(firstExpected, 1e-8))
	assert.InDeltaSlice(t, oracle.QuadraticGrad(oracleWeight(t), leftInput, rightInput).Data,
		weightGrad.Data(), 1e-8)

	// Differentiable SGD step.
	weight2 := weight.Sub(weightGrad.MulScalar(lr))

	// Second forward and backward pass.
	loss2 := quadraticLoss(a, weight2, x)
	grads2 := autodiff.Backward(loss2, backend)
	require.Contains(t, grads2, weight.Raw())
	require.Contains(t, grads2, weight2.Raw())
	gradW := tensor.New[float64](grads2[weight.Raw()], backend)
	gradW2 := tensor.New[float64](grads2[weight2.Raw()], backend)

	// W'  = W2'·(I − lr·M)
	// W2' = W2·M
	var w2Expected, wExpected *tensor.Tensor[float64, Backend]
	backend.NoGrad(func() {
		w2Expected = weight2.MatMul(m)
		wExpected = w2Expected.MatMul(tensor.Eye[float64](2, backend).Sub(m.MulScalar(lr)))
	})
	assert.True(t, gradW.AllClose(wExpected, 1e-8))
	assert.True(t, gradW2.AllClose(w2Expected, 1e-8))

	assert.InDeltaSlice(t, oracle.QuadraticSecondOrderGrad(oracleWeight(t), leftInput, rightInput, lr).Data,
		gradW.Data(), 1e-8)
	assert.InDeltaSlice(t, expectedGrad, gradW.Data(), 1e-4)

	assert.Zero(t, backend.Tape().NumOps(), "plain backward frees the graph")
}

func TestUpdateParamsWithQuadraticLayer(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)

	quad := nn.NewQuadratic(backend)
	quadClone, err := meta.CloneModel[Backend](quad)
	require.NoError(t, err)

	// Inner loop.
	loss := quadClone.Forward(x).Sum()
	require.NoError(t, meta.UpdateParams(nn.NamedParameters(quadClone), quadClone, loss, lr))

	// Outer loop.
	loss2 := quadClone.Forward(x).Sum()
	grads := autodiff.Backward(loss2, backend)
	nn.AccumulateGrads(quad.Parameters(), grads)

	require.NotNil(t, quad.Weight().Grad())
	assert.InDeltaSlice(t, expectedGrad, quad.Weight().Grad().Data(), 1e-4)
	assert.InDeltaSlice(t, oracle.QuadraticSecondOrderGrad(oracleWeight(t), leftInput, rightInput, lr).Data,
		quad.Weight().Grad().Data(), 1e-8)
}

func TestUpdateParamsReplacesParameters(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)

	quad := nn.NewQuadratic(backend)
	clone, err := meta.CloneModel[Backend](quad)
	require.NoError(t, err)
	before := clone.Parameters()[0].Tensor()

	loss := clone.Forward(x).Sum()
	require.NoError(t, meta.UpdateParams(nn.NamedParameters(clone), clone, loss, lr))

	after := clone.Parameters()[0].Tensor()
	assert.NotSame(t, before, after)
	assert.InDeltaSlice(t, oracle.UpdatedWeight(oracleWeight(t), leftInput, rightInput, lr).Data, after.Data(), 1e-12)
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data(), "original model must not change")
	assert.Equal(t, nn.DefaultQuadraticWeight, before.Data(), "old parameter tensor must not change")
}

func TestUpdateParamsDeterministic(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)
	quad := nn.NewQuadratic(backend)

	run := func() []float64 {
		clone, err := meta.CloneModel[Backend](quad)
		require.NoError(t, err)
		loss := clone.Forward(x).Sum()
		require.NoError(t, meta.UpdateParams(nn.NamedParameters(clone), clone, loss, lr))
		grads := autodiff.Backward(clone.Forward(x).Sum(), backend)
		raw, ok := grads[quad.Weight().Tensor().Raw()]
		require.True(t, ok)
		return append([]float64(nil), raw.AsFloat64()...)
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data())
}

func TestUpdateParamsSequential(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)

	model := nn.NewSequential[Backend](nn.NewQuadratic(backend), nn.NewQuadratic(backend))
	clone, err := meta.CloneModel[Backend](model)
	require.NoError(t, err)

	loss := clone.Forward(x).Sum()
	require.NoError(t, meta.UpdateParams(nn.NamedParameters(clone), clone, loss, lr))

	grads := autodiff.Backward(clone.Forward(x).Sum(), backend)
	nn.AccumulateGrads(model.Parameters(), grads)
	for _, np := range nn.NamedParameters[Backend](model) {
		assert.NotNil(t, np.Param.Grad(), np.Name)
	}
}

func TestUpdateParamsTiedSequential(t *testing.T) {
	// One step on W·W with the summed gradient of both uses.
	ref := newBackend()
	_, refX := inputs(t, ref)
	refQuad := nn.NewQuadratic(ref)
	refGrads := autodiff.Backward(nn.NewSequential[Backend](refQuad, refQuad).Forward(refX).Sum(), ref)
	g := refGrads[refQuad.Weight().Tensor().Raw()].AsFloat64()
	want := make([]float64, len(g))
	for i := range g {
		want[i] = nn.DefaultQuadraticWeight[i] - lr*g[i]
	}

	backend := newBackend()
	_, x := inputs(t, backend)
	quad := nn.NewQuadratic(backend)
	model := nn.NewSequential[Backend](quad, quad)

	clone, err := meta.CloneModel[Backend](model)
	require.NoError(t, err)
	cloned := clone.Parameters()
	require.Len(t, cloned, 2)
	assert.Same(t, cloned[0], cloned[1], "tied weight must stay tied in the copy")
	assert.NotSame(t, quad.Weight(), cloned[0])

	loss := clone.Forward(x).Sum()
	require.NoError(t, meta.UpdateParams(nn.NamedParameters(clone), clone, loss, lr))

	seq := clone.(*nn.Sequential[Backend])
	layer0 := seq.Module(0).Parameters()[0].Tensor()
	layer1 := seq.Module(1).Parameters()[0].Tensor()
	assert.Equal(t, layer0.Data(), layer1.Data())
	assert.InDeltaSlice(t, want, layer0.Data(), 1e-12)
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data())

	grads := autodiff.Backward(clone.Forward(x).Sum(), backend)
	assert.Contains(t, grads, quad.Weight().Tensor().Raw())
}

func TestUpdateParamsUnknownName(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)

	quad := nn.NewQuadratic(backend)
	before := quad.Weight().Tensor()
	params := append(nn.NamedParameters[Backend](quad), nn.NamedParameter[Backend]{
		Name:  "bogus",
		Param: quad.Weight(),
	})

	loss := quad.Forward(x).Sum()
	err := meta.UpdateParams[Backend](params, quad, loss, lr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Same(t, before, quad.Weight().Tensor(), "no parameter may change on error")
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data())
}

func TestUpdateParamsNoGradient(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)

	seq := nn.NewSequential[Backend](nn.NewQuadratic(backend), nn.NewQuadratic(backend))
	before := seq.Parameters()[0].Tensor()

	// Only the first layer contributes to the loss.
	loss := seq.Module(0).Forward(x).Sum()
	err := meta.UpdateParams[Backend](nn.NamedParameters[Backend](seq), seq, loss, lr)
	require.ErrorIs(t, err, meta.ErrNoGradient)
	assert.Contains(t, err.Error(), "1.weight")
	assert.Same(t, before, seq.Parameters()[0].Tensor(), "no parameter may change on error")
}

func TestUpdateParamsNotRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	_, x := inputs(t, backend)

	quad := nn.NewQuadratic(backend)
	loss := quad.Forward(x).Sum()
	err := meta.UpdateParams[Backend](nn.NamedParameters[Backend](quad), quad, loss, lr)
	require.ErrorIs(t, err, meta.ErrNoGradient)
}

func TestUpdateParamsNotDifferentiable(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice(rightInput, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)

	quad := nn.NewQuadratic(backend)
	loss := quad.Forward(x).Sum()
	err = meta.UpdateParams[*cpu.CPUBackend](nn.NamedParameters[*cpu.CPUBackend](quad), quad, loss, lr)
	require.ErrorIs(t, err, meta.ErrNotDifferentiable)
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data())
}

func TestCloneModel(t *testing.T) {
	backend := newBackend()
	quad := nn.NewQuadratic(backend)

	clone, err := meta.CloneModel[Backend](quad)
	require.NoError(t, err)
	require.IsType(t, &nn.Quadratic[Backend]{}, clone)

	original := quad.Weight()
	copied := clone.Parameters()[0]
	assert.NotSame(t, original, copied)
	assert.NotSame(t, original.Tensor().Raw(), copied.Tensor().Raw())
	assert.Equal(t, original.Name(), copied.Name())
	assert.Equal(t, original.Tensor().Data(), copied.Tensor().Data())

	// Storage is independent.
	copied.Tensor().Set(42, 0, 0)
	assert.InDelta(t, 0.94, original.Tensor().At(0, 0), 0)

	// The copy was recorded, so gradients reach the original.
	_, x := inputs(t, backend)
	grads := autodiff.Backward(clone.Forward(x).Sum(), backend)
	assert.Contains(t, grads, original.Tensor().Raw())
}

func TestCloneModelWithoutRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	quad := nn.NewQuadratic(backend)

	clone, err := meta.CloneModel[Backend](quad)
	require.NoError(t, err)
	assert.Zero(t, backend.Tape().NumOps())
	assert.Equal(t, quad.Weight().Tensor().Data(), clone.Parameters()[0].Tensor().Data())
}

type frozen struct {
	inner *nn.Quadratic[Backend]
}

func (f frozen) Forward(x *tensor.Tensor[float64, Backend]) *tensor.Tensor[float64, Backend] {
	return f.inner.Forward(x)
}

func (f frozen) Parameters() []*nn.Parameter[Backend] {
	return f.inner.Parameters()
}

func TestCloneModelNotCloneable(t *testing.T) {
	backend := newBackend()
	_, err := meta.CloneModel[Backend](frozen{inner: nn.NewQuadratic(backend)})
	require.ErrorIs(t, err, meta.ErrNotCloneable)
}

func TestAdaptSingleStep(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)
	quad := nn.NewQuadratic(backend)

	lossFn := func(m nn.Module[Backend]) *tensor.Tensor[float64, Backend] {
		return m.Forward(x).Sum()
	}
	fast, err := meta.Adapt[Backend](quad, lossFn, meta.AdaptConfig{LR: lr})
	require.NoError(t, err)
	assert.Equal(t, nn.DefaultQuadraticWeight, quad.Weight().Tensor().Data())

	grads := autodiff.Backward(lossFn(fast), backend)
	nn.AccumulateGrads(quad.Parameters(), grads)
	require.NotNil(t, quad.Weight().Grad())
	assert.InDeltaSlice(t, expectedGrad, quad.Weight().Grad().Data(), 1e-4)
}

// twoStepLoss evaluates sum(W2ᵀW2x) after two SGD steps from w using the
// closed-form first-order gradient.
func twoStepLoss(w *linalg.Matrix) float64 {
	a := linalg.Vector(leftInput)
	x := linalg.Vector(rightInput)
	w2 := oracle.UpdatedWeight(oracle.UpdatedWeight(w, a, x, lr), a, x, lr)

	out := w2.Transpose().Mul(w2.Mul(linalg.NewMatrixColumn(x)))
	return out.Get(0, 0) + out.Get(1, 0)
}

func TestAdaptMultiStep(t *testing.T) {
	backend := newBackend()
	_, x := inputs(t, backend)
	quad := nn.NewQuadratic(backend)

	lossFn := func(m nn.Module[Backend]) *tensor.Tensor[float64, Backend] {
		return m.Forward(x).Sum()
	}
	fast, err := meta.Adapt[Backend](quad, lossFn, meta.AdaptConfig{Steps: 2, LR: lr})
	require.NoError(t, err)

	grads := autodiff.Backward(lossFn(fast), backend)
	raw, ok := grads[quad.Weight().Tensor().Raw()]
	require.True(t, ok)

	const h = 1e-6
	numeric := make([]float64, 4)
	for i := range numeric {
		plus := append([]float64(nil), nn.DefaultQuadraticWeight...)
		minus := append([]float64(nil), nn.DefaultQuadraticWeight...)
		plus[i] += h
		minus[i] -= h
		wp, _ := oracle.FromData(2, 2, plus)
		wm, _ := oracle.FromData(2, 2, minus)
		numeric[i] = (twoStepLoss(wp) - twoStepLoss(wm)) / (2 * h)
	}
	assert.InDeltaSlice(t, numeric, raw.AsFloat64(), 1e-6)
}

func TestAdaptConfig(t *testing.T) {
	backend := newBackend()
	quad := nn.NewQuadratic(backend)
	lossFn := func(m nn.Module[Backend]) *tensor.Tensor[float64, Backend] {
		return m.Parameters()[0].Tensor().Sum()
	}

	_, err := meta.Adapt[Backend](quad, lossFn, meta.AdaptConfig{})
	require.Error(t, err)

	_, err = meta.Adapt[Backend](quad, lossFn, meta.AdaptConfig{Steps: -1, LR: lr})
	require.Error(t, err)

	fast, err := meta.Adapt[Backend](quad, lossFn, meta.AdaptConfig{Steps: 3, LR: lr})
	require.NoError(t, err)
	// d/dW sum(W) = 1, so three steps subtract 3·lr everywhere.
	for i, v := range fast.Parameters()[0].Tensor().Data() {
		assert.InDelta(t, nn.DefaultQuadraticWeight[i]-3*lr, v, 1e-12)
	}
}
