package renderer

import (
	"math"
	"testing"

	"github.com/richinsley/goshaderbg/headless"
)

func TestComputeSurface(t *testing.T) {
	type spec struct {
		w, h, ratio, scale float64
		expW, expH         int
	}
	specs := []spec{
		{1920, 1080, 2, 0.75, 2880, 1620},
		{1366, 768, 1.25, 0.75, 1280, 720},
		{1280, 720, 1, 1, 1280, 720},
		{375, 812, 3, 0.75, 843, 1827},
		{1, 1, 1, 0.5, 1, 1},
		{800, 600, 0, 1, 800, 600},
	}

	for index, s := range specs {
		got := ComputeSurface(s.w, s.h, s.ratio, s.scale)
		if got.BackingWidth != s.expW || got.BackingHeight != s.expH {
			t.Fatalf("[spec %d] expected %dx%d; got %dx%d", index, s.expW, s.expH, got.BackingWidth, got.BackingHeight)
		}
	}
}

func TestComputeSurfaceFloors(t *testing.T) {
	for _, ratio := range []float64{1, 1.25, 1.5, 2, 2.625, 3} {
		for w := 100.0; w < 4000; w += 137 {
			h := w * 0.61
			s := ComputeSurface(w, h, ratio, 0.75)
			if s.BackingWidth != int(math.Floor(w*ratio*0.75)) || s.BackingHeight != int(math.Floor(h*ratio*0.75)) {
				t.Fatalf("%vx%v@%v: got %dx%d", w, h, ratio, s.BackingWidth, s.BackingHeight)
			}
		}
	}
}

func TestResizeController(t *testing.T) {
	host := headless.New(1920, 1080, 2)
	dev := newMockDevice()
	r := NewResizeController(host, dev, 0.75)
	if err := r.Apply(); err != nil {
		t.Fatal(err)
	}

	bw, bh := host.BackingSize()
	if bw != 2880 || bh != 1620 || dev.viewportW != 2880 || dev.viewportH != 1620 {
		t.Fatalf("expected 2880x1620 backing and viewport; got %dx%d / %dx%d", bw, bh, dev.viewportW, dev.viewportH)
	}

	r.Apply()
	host.Resize(1920, 1080, 2)
	r.Sync()
	if dev.viewportCalls != 1 {
		t.Fatalf("expected unchanged inputs to leave the surface alone; got %d viewport calls", dev.viewportCalls)
	}

	host.Resize(1280, 800, 1.5)
	if dev.viewportCalls != 1 {
		t.Fatal("expected the resize event itself to make no GPU calls")
	}
	if err := r.Sync(); err != nil {
		t.Fatal(err)
	}
	s := r.Surface()
	if s.BackingWidth != 1440 || s.BackingHeight != 900 || dev.viewportW != 1440 || dev.viewportH != 900 {
		t.Fatalf("expected 1440x900 after resize; got %+v, viewport %dx%d", s, dev.viewportW, dev.viewportH)
	}

	r.Stop()
	r.Stop()
	host.Resize(640, 480, 1)
	r.Sync()
	r.Apply()
	if r.Surface().BackingWidth != 1440 || dev.viewportCalls != 2 {
		t.Fatal("expected no resize handling after Stop")
	}
}

func TestResizeKeepsLastGoodSurfaceOnFailure(t *testing.T) {
	host := headless.New(800, 600, 1)
	store := &flakySurface{}
	host.SetSurface(store)
	dev := newMockDevice()
	r := NewResizeController(host, dev, 1)
	if err := r.Apply(); err != nil {
		t.Fatal(err)
	}

	type spec struct {
		failures   int
		expW, expH int
		expErr     bool
	}
	specs := []spec{
		// Rejected by the backing store: nothing moves.
		{1, 800, 600, true},
		// Same inputs retried: now accepted.
		{0, 1024, 768, false},
		// Already applied: nothing to retry.
		{0, 1024, 768, false},
	}

	host.Resize(1024, 768, 1)
	for index, s := range specs {
		store.failures = s.failures
		err := r.Sync()
		if (err != nil) != s.expErr {
			t.Fatalf("[spec %d] expected error=%t; got %v", index, s.expErr, err)
		}
		got := r.Surface()
		if got.BackingWidth != s.expW || got.BackingHeight != s.expH {
			t.Fatalf("[spec %d] expected surface %dx%d; got %dx%d", index, s.expW, s.expH, got.BackingWidth, got.BackingHeight)
		}
		if store.w != s.expW || store.h != s.expH || dev.viewportW != s.expW || dev.viewportH != s.expH {
			t.Fatalf("[spec %d] expected store and viewport %dx%d; got %dx%d / %dx%d",
				index, s.expW, s.expH, store.w, store.h, dev.viewportW, dev.viewportH)
		}
	}
}
