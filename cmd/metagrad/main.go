// Package main provides the metagrad CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/born-ml/metagrad/internal/autodiff"
	"github.com/born-ml/metagrad/internal/backend/cpu"
	"github.com/born-ml/metagrad/internal/meta"
	"github.com/born-ml/metagrad/internal/nn"
	"github.com/born-ml/metagrad/internal/oracle"
	"github.com/born-ml/metagrad/internal/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("metagrad %s\n", version)
	case "check":
		if err := check(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("metagrad - differentiable parameter updates for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  check      Compare the second-order gradient of a differentiable")
	fmt.Println("             SGD step on Wᵀ W x against its closed form")
}

type backendT = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	lr := fs.Float64("lr", 0.1, "Inner learning rate")
	x0 := fs.Float64("x0", 0.32, "First input component")
	x1 := fs.Float64("x1", 0.72, "Second input component")
	atol := fs.Float64("atol", 1e-8, "Absolute tolerance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	xs := []float64{*x0, *x1}
	x, err := tensor.FromSlice(xs, tensor.Shape{2, 1}, backend)
	if err != nil {
		return err
	}

	model := nn.NewQuadratic(backend)
	fast, err := meta.CloneModel[backendT](model)
	if err != nil {
		return err
	}
	if err := meta.UpdateParams(nn.NamedParameters(fast), fast, fast.Forward(x).Sum(), *lr); err != nil {
		return err
	}
	grads := autodiff.Backward(fast.Forward(x).Sum(), backend)
	nn.AccumulateGrads(model.Parameters(), grads)
	got := model.Weight().Grad()
	if got == nil {
		return fmt.Errorf("%w: weight", meta.ErrNoGradient)
	}

	w, err := oracle.FromData(2, 2, nn.DefaultQuadraticWeight)
	if err != nil {
		return err
	}
	want := oracle.QuadraticSecondOrderGrad(w, []float64{1, 1}, xs, *lr).Data

	fmt.Printf("lr=%g x=%v\n", *lr, xs)
	fmt.Printf("autodiff:    %v\n", got.Data())
	fmt.Printf("closed form: %v\n", want)

	for i, v := range got.Data() {
		if d := v - want[i]; d > *atol || d < -*atol {
			return fmt.Errorf("element %d: got %g, want %g (atol %g)", i, v, want[i], *atol)
		}
	}
	fmt.Println("ok")
	return nil
}
