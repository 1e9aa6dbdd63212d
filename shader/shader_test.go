package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSourcesUseBackgroundABI(t *testing.T) {
	src := Default()
	if !strings.Contains(src.Vertex, "in vec2 "+PositionAttrib) {
		t.Fatalf("expected vertex shader to declare %q", PositionAttrib)
	}
	for _, decl := range []string{
		"uniform vec2 " + ResolutionUniform,
		"uniform float " + TimeUniform,
		"uniform vec2 " + MouseUniform,
	} {
		if !strings.Contains(src.Fragment, decl) {
			t.Fatalf("expected fragment shader to declare %q", decl)
		}
	}
}

func TestLoadFragment(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.frag")
	body := "precision highp float;\nuniform float time;\nout vec4 c;\nvoid main(){ c = vec4(time); }\n"
	if err := os.WriteFile(bare, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := LoadFragment(bare)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(src.Fragment, "#version 300 es\n") {
		t.Fatalf("expected a version directive to be prepended; got %q", src.Fragment[:20])
	}
	if src.Vertex != Default().Vertex {
		t.Fatal("expected the standard vertex shader to be kept")
	}

	versioned := filepath.Join(dir, "versioned.frag")
	if err := os.WriteFile(versioned, []byte("#version 300 es\n"+body), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err = LoadFragment(versioned)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(src.Fragment, "#version") != 1 {
		t.Fatalf("expected exactly one version directive; got %q", src.Fragment)
	}

	empty := filepath.Join(dir, "empty.frag")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err = LoadFragment(empty); err == nil {
		t.Fatal("expected an error for an empty shader file")
	}
	if _, err = LoadFragment(filepath.Join(dir, "missing.frag")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestPresentationUniforms(t *testing.T) {
	type spec struct {
		p                  Presentation
		fbW, fbH           int
		rx, ry, zoom, opac float32
	}
	specs := []spec{
		{Sharp, 1920, 1080, 0, 0, 1, 1},
		{Presentation{Blur: 40, Zoom: 1.1, Opacity: 0.9}, 2000, 1000, 0.02, 0.04, 1.1, 0.9},
		{Presentation{Blur: 40, Zoom: 1.1, Opacity: 0.9}, 0, 0, 0, 0, 1.1, 0.9},
		{Presentation{Blur: -3, Zoom: 0.5, Opacity: 2}, 800, 600, 0, 0, 1, 1},
		{Presentation{}, 800, 600, 0, 0, 1, 0},
	}

	for index, s := range specs {
		rx, ry, zoom, opac := s.p.Uniforms(s.fbW, s.fbH)
		if rx != s.rx || ry != s.ry || zoom != s.zoom || opac != s.opac {
			t.Fatalf("[spec %d] expected (%v,%v,%v,%v); got (%v,%v,%v,%v)",
				index, s.rx, s.ry, s.zoom, s.opac, rx, ry, zoom, opac)
		}
	}
}

func TestBlitShadersDeclarePresentationUniforms(t *testing.T) {
	_, fs := BlitShaders()
	for _, name := range []string{BlitTextureUniform, BlitRadiusUniform, BlitZoomUniform, BlitOpacityUniform} {
		if !strings.Contains(fs, name) {
			t.Fatalf("expected blit fragment shader to declare %q", name)
		}
	}
}
