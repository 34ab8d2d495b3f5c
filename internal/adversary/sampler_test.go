package adversary

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/advhover/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUniformBoxWithinBound(t *testing.T) {
	tests := []struct {
		name  string
		bound [3]float64
	}{
		{"default", DefaultBound},
		{"zero axis", [3]float64{1e-3, 0, 1e-4}},
		{"all zero", [3]float64{}},
		{"wide", [3]float64{10, 5, 1}},
	}

	s := dynamo.Hovering(r3.Vec{Z: 1})
	for _, tt := range tests {
		u, err := NewUniformBox(tt.bound, 42)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		for n := 0; n < 5000; n++ {
			d := u.Sample(s)
			for i := range d {
				if d[i] < -tt.bound[i] || d[i] > tt.bound[i] {
					t.Fatalf("%s: axis %d sample %v outside [-%v, %v]", tt.name, i, d[i], tt.bound[i], tt.bound[i])
				}
			}
		}
	}
}

func TestUniformBoxCoversBox(t *testing.T) {
	u, _ := NewUniformBox(DefaultBound, 7)
	var lo, hi dynamo.Disturbance
	for n := 0; n < 5000; n++ {
		d := u.Sample(dynamo.AgentState{})
		for i := range d {
			lo[i] = math.Min(lo[i], d[i])
			hi[i] = math.Max(hi[i], d[i])
		}
	}
	for i, b := range DefaultBound {
		if lo[i] > -0.9*b || hi[i] < 0.9*b {
			t.Errorf("axis %d: samples span [%v, %v], expected close to ±%v", i, lo[i], hi[i], b)
		}
	}
}

func TestUniformBoxSeeded(t *testing.T) {
	a, _ := NewUniformBox(DefaultBound, 3)
	b, _ := NewUniformBox(DefaultBound, 3)
	c, _ := NewUniformBox(DefaultBound, 4)

	same, differ := true, false
	for n := 0; n < 10; n++ {
		da, db, dc := a.Sample(dynamo.AgentState{}), b.Sample(dynamo.AgentState{}), c.Sample(dynamo.AgentState{})
		if da != db {
			same = false
		}
		if da != dc {
			differ = true
		}
	}
	if !same {
		t.Error("equal seeds should replay the same sequence")
	}
	if !differ {
		t.Error("different seeds should produce different sequences")
	}
}

func TestNew(t *testing.T) {
	torque := [3]float64{1e-3, 0, 0}

	s, err := New("constant", DefaultBound, torque, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Sample(dynamo.AgentState{}); d != dynamo.Disturbance(torque) {
		t.Errorf("constant sampler returned %v", d)
	}

	s, err = New("zero", DefaultBound, torque, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := s.Sample(dynamo.AgentState{}); d != (dynamo.Disturbance{}) {
		t.Errorf("zero sampler returned %v", d)
	}

	if _, err := New("hamilton_jacobi", DefaultBound, torque, 0); !errors.Is(err, dynamo.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if len(Kinds()) != 3 {
		t.Errorf("expected 3 kinds, got %v", Kinds())
	}
}

func TestValidateBound(t *testing.T) {
	tests := []struct {
		bound [3]float64
		ok    bool
	}{
		{DefaultBound, true},
		{[3]float64{}, true},
		{[3]float64{-1e-3, 0, 0}, false},
		{[3]float64{0, math.NaN(), 0}, false},
		{[3]float64{0, 0, math.Inf(1)}, false},
	}

	for _, tt := range tests {
		err := ValidateBound(tt.bound)
		if tt.ok && err != nil {
			t.Errorf("%v: unexpected error %v", tt.bound, err)
		}
		if !tt.ok && !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("%v: expected ErrParameterBounds, got %v", tt.bound, err)
		}
	}

	if _, err := New("uniform", [3]float64{-1, 0, 0}, [3]float64{}, 0); err == nil {
		t.Error("uniform sampler should reject a negative bound")
	}
}
