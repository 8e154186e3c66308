package boxy

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func pointsClose(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		p    Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translation", Translation(10, 20), Pt(1, 2), Pt(11, 22)},
		{"scaling", Scaling(2, 3), Pt(5, 5), Pt(10, 15)},
		{"rotation 90deg", Rotation(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"rotation 180deg", Rotation(math.Pi), Pt(1, 0), Pt(-1, 0)},
		{"translate then scale", Scaling(2, 2).Translate(5, 0), Pt(1, 1), Pt(12, 2)},
		{"scale then translate", Translation(5, 0).Scale(2, 2), Pt(1, 1), Pt(7, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if !pointsClose(got, tt.want) {
				t.Errorf("TransformPoint(%+v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMultiplyOrder(t *testing.T) {
	// m.Multiply(o) applies o first.
	m := Translation(10, 0).Multiply(Scaling(2, 2))
	got := m.TransformPoint(Pt(1, 1))
	want := Pt(12, 2)
	if !pointsClose(got, want) {
		t.Errorf("translate*scale applied to (1,1) = %+v, want %+v", got, want)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"identity", Identity()},
		{"translation", Translation(-7, 13)},
		{"scaling", Scaling(2, 0.5)},
		{"rotation", Rotation(0.3)},
		{"composite", Translation(4, 5).Rotate(1.1).Scale(3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Pt(17, -6)
			back := tt.m.Invert().TransformPoint(tt.m.TransformPoint(p))
			if !pointsClose(back, p) {
				t.Errorf("inverse round trip moved %+v to %+v", p, back)
			}
		})
	}
}

func TestInvertSingular(t *testing.T) {
	if got := Scaling(0, 0).Invert(); !got.IsIdentity() {
		t.Errorf("singular matrix inverted to %v, want identity", got)
	}
}

func TestOrtho2D(t *testing.T) {
	m := Ortho2D(800, 600)
	tests := []struct {
		name string
		p    Point
		want Point
	}{
		{"top-left to (-1,1)", Pt(0, 0), Pt(-1, 1)},
		{"bottom-right to (1,-1)", Pt(800, 600), Pt(1, -1)},
		{"center to origin", Pt(400, 300), Pt(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.TransformPoint(tt.p)
			if !pointsClose(got, tt.want) {
				t.Errorf("Ortho2D maps %+v to %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if Translation(1, 0).IsIdentity() {
		t.Error("Translation(1,0).IsIdentity() = true")
	}
	if math.Abs(Identity()[0]-1) > epsilon {
		t.Error("identity diagonal is not 1")
	}
}
