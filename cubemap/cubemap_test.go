package cubemap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNew_RejectsBadResolution(t *testing.T) {
	for _, res := range []int{0, -1, -16} {
		if _, err := New(res); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("New(%d): expected ErrInvalidArgument, got %v", res, err)
		}
	}
}

func TestNewFill_SetsEveryTexel(t *testing.T) {
	c, err := NewFill(8, mgl32.Vec3{0.25, 0.5, 0.75})
	if err != nil {
		t.Fatalf("NewFill: %v", err)
	}
	for f := 0; f < FaceCount; f++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if got := c.At(f, x, y); got != (mgl32.Vec3{0.25, 0.5, 0.75}) {
					t.Fatalf("face %d texel (%d,%d) = %v", f, x, y, got)
				}
			}
		}
	}
}

func TestNewRand_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c, err := NewRand(16, 0.5, 0.25, rng)
	if err != nil {
		t.Fatalf("NewRand: %v", err)
	}
	for f := 0; f < FaceCount; f++ {
		for _, v := range c.Faces[f] {
			if v < 0.25 || v >= 0.75 {
				t.Fatalf("value %v outside [0.25, 0.75)", v)
			}
		}
	}
}

func TestDownsample_BoxAverage(t *testing.T) {
	c, _ := New(4)
	// Distinct 2x2 blocks on face 0: block (bx,by) holds value 4*by+bx.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := float32(4*(y/2) + x/2)
			c.Set(0, x, y, mgl32.Vec3{v, v, v})
		}
	}
	half, err := c.Downsample()
	if err != nil {
		t.Fatalf("Downsample: %v", err)
	}
	if half.Res != 2 {
		t.Fatalf("expected resolution 2, got %d", half.Res)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := float32(4*y + x)
			if got := half.At(0, x, y); got.X() != want {
				t.Errorf("texel (%d,%d) = %v, want %v", x, y, got.X(), want)
			}
		}
	}
}

func TestDownsample_AveragesWithinBlock(t *testing.T) {
	c, _ := New(2)
	c.Set(0, 0, 0, mgl32.Vec3{1, 0, 0})
	c.Set(0, 1, 0, mgl32.Vec3{0, 1, 0})
	c.Set(0, 0, 1, mgl32.Vec3{0, 0, 1})
	c.Set(0, 1, 1, mgl32.Vec3{1, 1, 1})
	half, err := c.Downsample()
	if err != nil {
		t.Fatalf("Downsample: %v", err)
	}
	want := mgl32.Vec3{0.5, 0.5, 0.5}
	if got := half.At(0, 0, 0); got != want {
		t.Errorf("average = %v, want %v", got, want)
	}
}

func TestDownsample_RejectsMinimumResolution(t *testing.T) {
	c, _ := New(1)
	if _, err := c.Downsample(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	c, _ := NewFill(4, mgl32.Vec3{1, 1, 1})
	d := c.Clone()
	d.Set(0, 0, 0, mgl32.Vec3{0, 0, 0})
	if c.At(0, 0, 0) != (mgl32.Vec3{1, 1, 1}) {
		t.Error("mutating the clone changed the original")
	}
}

func TestNewProcedural_DeterministicAndBounded(t *testing.T) {
	a, err := NewProcedural(8, 42)
	if err != nil {
		t.Fatalf("NewProcedural: %v", err)
	}
	b, _ := NewProcedural(8, 42)
	for f := 0; f < FaceCount; f++ {
		for i, v := range a.Faces[f] {
			if v != b.Faces[f][i] {
				t.Fatalf("same seed produced different noise at face %d index %d", f, i)
			}
			if v < -0.5 || v > 1.5 {
				t.Fatalf("noise value %v far outside expected range", v)
			}
		}
	}
}

func TestPanoramaRoll_WrapsColumns(t *testing.T) {
	p, err := NewPanorama(2, 4)
	if err != nil {
		t.Fatalf("NewPanorama: %v", err)
	}
	for x := 0; x < 4; x++ {
		p.Set(x, 0, mgl32.Vec3{float32(x), 0, 0})
	}
	rolled := p.Roll(1)
	for x := 0; x < 4; x++ {
		want := float32((x + 3) % 4)
		if got := rolled.At(x, 0); got.X() != want {
			t.Errorf("rolled col %d = %v, want %v", x, got.X(), want)
		}
	}
	// Negative and full-period rolls.
	if back := rolled.Roll(-1); back.At(2, 0) != p.At(2, 0) {
		t.Error("roll(-1) did not undo roll(1)")
	}
	if same := p.Roll(4); same.At(1, 0) != p.At(1, 0) {
		t.Error("full-period roll changed the panorama")
	}
}

func TestPanoramaSampleBilinear_ColumnPeriodicity(t *testing.T) {
	p, _ := NewPanorama(4, 8)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			p.Set(x, y, mgl32.Vec3{float32(x), float32(y), 0})
		}
	}
	// Sampling half a texel left of column 0 and half a texel right of
	// the last column touches the same wrapped texel pair.
	a := p.SampleBilinear(1, -0.5)
	b := p.SampleBilinear(1, float32(p.W)-0.5)
	if a != b {
		t.Errorf("wraparound mismatch: %v vs %v", a, b)
	}
}
