package types_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/calque-lang/calque/pkg/types"
)

// Helper functions

func approx(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("got %v, want %v", got, want)
	}
}

func vec(xs ...float64) types.Value {
	elems := make([]types.Value, len(xs))
	for i, x := range xs {
		elems[i] = types.Number(x)
	}
	return types.Vector(elems...)
}

func leavesOf(t *testing.T, v types.Value) []float64 {
	t.Helper()
	if v.Kind() != types.KindVector {
		t.Fatalf("expected vector, got %s", v.Kind())
	}
	var out []float64
	for _, e := range v.AsVector() {
		out = append(out, e.Float())
	}
	return out
}

// Scalar reduction

func TestFloatScalarReduction(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want float64
	}{
		{"number", types.Number(2.5), 2.5},
		{"rational", types.Rational(big.NewRat(7, 2)), 3.5},
		{"vector sums leaves", vec(1, 2, 3), 6},
		{"nested vector sums leaves", types.Vector(vec(1, 2), types.Number(3)), 6},
		{"percent is fraction", types.Percent(40), 0.4},
		{"bool true", types.Bool(true), 1},
		{"bool false", types.Bool(false), 0},
		{"unit uses magnitude", types.Unit(types.Number(5), "km"), 5},
		{"empty", types.Empty, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, tt.v.Float(), tt.want, 1e-12)
		})
	}
}

func TestFloatMatrixSumsAllLeaves(t *testing.T) {
	m, err := types.MakeMatrix([][]types.Value{
		{types.Number(1), types.Number(2)},
		{types.Number(3), types.Number(4)},
	})
	if err != nil {
		t.Fatalf("MakeMatrix: %v", err)
	}
	approx(t, m.Float(), 10, 0)
}

func TestMakeMatrixRejectsRaggedRows(t *testing.T) {
	_, err := types.MakeMatrix([][]types.Value{
		{types.Number(1), types.Number(2)},
		{types.Number(3)},
	})
	if err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

// Broadcasting

func TestCombineBroadcasting(t *testing.T) {
	add := func(a, b float64) float64 { return a + b }
	tests := []struct {
		name string
		a, b types.Value
		want []float64
	}{
		{"vector plus scalar", vec(1, 2, 3), types.Number(1), []float64{2, 3, 4}},
		{"scalar plus vector", types.Number(1), vec(1, 2, 3), []float64{2, 3, 4}},
		{"length one replicates", vec(10), vec(1, 2, 3), []float64{11, 12, 13}},
		{"shorter side zero-pads", vec(1, 2), vec(1, 2, 3), []float64{2, 4, 3}},
		{"equal lengths", vec(1, 2), vec(3, 4), []float64{4, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leavesOf(t, tt.a.Combine(tt.b, add))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				approx(t, got[i], tt.want[i], 1e-12)
			}
		})
	}
}

func TestCombineMatrixBroadcast(t *testing.T) {
	m, _ := types.MakeMatrix([][]types.Value{
		{types.Number(1), types.Number(2)},
		{types.Number(3), types.Number(4)},
	})
	got := m.Combine(types.Number(1), func(a, b float64) float64 { return a + b })
	if got.Kind() != types.KindMatrix {
		t.Fatalf("expected matrix, got %s", got.Kind())
	}
	rows := got.AsRows()
	want := [][]float64{{2, 3}, {4, 5}}
	for i, row := range rows {
		for j, e := range row {
			approx(t, e.Float(), want[i][j], 0)
		}
	}
}

func TestCombineUnitTagSurvives(t *testing.T) {
	got := types.Rational(big.NewRat(5, 1)).Combine(
		types.Unit(types.Number(1), "km"),
		func(a, b float64) float64 { return a * b })
	if got.Kind() != types.KindUnit {
		t.Fatalf("expected unit, got %s", got.Kind())
	}
	if got.UnitTag() != "km" {
		t.Errorf("unit tag = %q, want km", got.UnitTag())
	}
	approx(t, got.Float(), 5, 0)
}

func TestMapPreservesShape(t *testing.T) {
	double := func(x float64) float64 { return 2 * x }

	v := vec(1, 2, 3).Map(double)
	got := leavesOf(t, v)
	for i, want := range []float64{2, 4, 6} {
		approx(t, got[i], want, 0)
	}

	u := types.Unit(types.Number(3), "kg").Map(double)
	if u.Kind() != types.KindUnit || u.UnitTag() != "kg" {
		t.Fatalf("unit lost under map: %v", u)
	}
	approx(t, u.Float(), 6, 0)
}

func TestAsVectorFlattensMatrix(t *testing.T) {
	m, _ := types.MakeMatrix([][]types.Value{
		{types.Number(1), types.Number(2)},
		{types.Number(3), types.Number(4)},
	})
	flat := m.AsVector()
	if len(flat) != 4 {
		t.Fatalf("len = %d, want 4", len(flat))
	}
	for i, want := range []float64{1, 2, 3, 4} {
		approx(t, flat[i].Float(), want, 0)
	}
}

// Rendering

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    types.Value
		want string
	}{
		{"integer rational", types.Int(42), "42"},
		{"fraction", types.Rational(big.NewRat(1, 3)), "1/3"},
		{"float", types.Number(2.5), "2.5"},
		{"vector", vec(1, 2), "{1, 2}"},
		{"percent", types.Percent(10), "10%"},
		{"unit", types.Unit(types.Number(5), "km"), "5 km"},
		{"bool", types.Bool(true), "true"},
		{"empty", types.Empty, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Angle units

func TestAngleUnitConversions(t *testing.T) {
	approx(t, types.Degrees.ToRadians(180), math.Pi, 1e-12)
	approx(t, types.Gradians.ToRadians(200), math.Pi, 1e-12)
	approx(t, types.Radians.ToRadians(1.5), 1.5, 0)
	approx(t, types.Degrees.FromRadians(math.Pi), 180, 1e-12)
}

func TestParseAngleUnit(t *testing.T) {
	for _, s := range []string{"degrees", "deg", "DEG"} {
		u, err := types.ParseAngleUnit(s)
		if err != nil || u != types.Degrees {
			t.Errorf("ParseAngleUnit(%q) = %v, %v", s, u, err)
		}
	}
	if _, err := types.ParseAngleUnit("turns"); err == nil {
		t.Error("expected error for unknown unit")
	}
}
