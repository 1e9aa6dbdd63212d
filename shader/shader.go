package shader

import (
	"fmt"
	"os"
	"strings"
)

// Sources is a vertex/fragment pair written against the background ABI:
// attribute "position" (vec2) and uniforms "resolution" (vec2),
// "time" (float) and "mouse" (vec2).
type Sources struct {
	Vertex   string
	Fragment string
}

// Names of the fixed inputs shared by the renderer and every fragment asset.
const (
	PositionAttrib    = "position"
	ResolutionUniform = "resolution"
	TimeUniform       = "time"
	MouseUniform      = "mouse"
)

// ────────────────────────────── WebGL2 (ESSL 3.00) ──────────────────────────────

const vertexShaderSource = `#version 300 es
in vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`

// Domain-warped fbm with a fake bump-lit normal and a pointer glow.
const fluidFragmentShaderSource = `#version 300 es
precision highp float;

uniform vec2 resolution;
uniform float time;
uniform vec2 mouse;

out vec4 fragColor;

vec2 rotate(vec2 p, float a) {
    float c = cos(a);
    float s = sin(a);
    return vec2(p.x * c - p.y * s, p.x * s + p.y * c);
}

float hash(vec2 p) {
    p = fract(p * vec2(123.34, 456.21));
    p += dot(p, p + 45.32);
    return fract(p.x * p.y);
}

float noise(vec2 x) {
    vec2 i = floor(x);
    vec2 f = fract(x);
    float a = hash(i);
    float b = hash(i + vec2(1.0, 0.0));
    float c = hash(i + vec2(0.0, 1.0));
    float d = hash(i + vec2(1.0, 1.0));
    vec2 u = f * f * (3.0 - 2.0 * f);
    return mix(a, b, u.x) + (c - a) * u.y * (1.0 - u.x) + (d - b) * u.x * u.y;
}

float fbm(vec2 x) {
    float v = 0.0;
    float a = 0.5;
    vec2 shift = vec2(100.0);
    for (int i = 0; i < 5; ++i) {
        v += a * noise(x);
        x = rotate(x, 0.5) * 2.0 + shift;
        a *= 0.5;
    }
    return v;
}

void main() {
    vec2 uv = gl_FragCoord.xy / resolution.xy;
    vec2 p = uv * 2.0 - 1.0;
    float aspect = resolution.x / resolution.y;
    p.x *= aspect;

    vec2 m = mouse * 2.0 - 1.0;
    m.x *= aspect;
    float pull = smoothstep(1.5, 0.0, length(p - m)) * 0.5;
    p -= normalize(p - m + 1e-5) * pull * 0.2;

    float t = time * 0.15;

    vec2 q = vec2(fbm(p + 0.0 * t), fbm(p + vec2(1.0)));
    vec2 r = vec2(fbm(p + q + vec2(1.7, 9.2) + 0.15 * t),
                  fbm(p + q + vec2(8.3, 2.8) + 0.126 * t));
    float f = fbm(p + r);

    float dx = fbm(p + r + vec2(0.02, 0.0)) - f;
    float dy = fbm(p + r + vec2(0.0, 0.02)) - f;
    vec3 normal = normalize(vec3(dx, dy, 0.015));
    float diffuse = max(0.0, dot(normal, normalize(vec3(1.0))));

    vec3 col = mix(vec3(0.0, 0.0, 0.02), vec3(0.0, 0.1, 0.15), smoothstep(0.0, 1.0, f));
    col = mix(col, vec3(0.0, 1.0, 0.6), smoothstep(0.2, 0.8, diffuse) * 2.0 * f);
    col = mix(col, vec3(0.0, 0.8, 1.0), smoothstep(0.6, 0.95, diffuse) * 1.5 * f);

    col *= smoothstep(0.0, 0.6, f + 0.1);
    col -= dot(uv - 0.5, uv - 0.5) * 0.6;

    fragColor = vec4(col, 1.0);
}
`

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const blitVertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// 17-tap two-ring blur. Weights sum to one; opacity fades towards black.
const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform vec2 u_radius;
uniform float u_zoom;
uniform float u_opacity;

const vec2 taps[8] = vec2[8](
    vec2(1.0, 0.0), vec2(-1.0, 0.0), vec2(0.0, 1.0), vec2(0.0, -1.0),
    vec2(0.7071, 0.7071), vec2(-0.7071, 0.7071), vec2(0.7071, -0.7071), vec2(-0.7071, -0.7071)
);

void main() {
    vec2 uv = (frag_uv - 0.5) / u_zoom + 0.5;
    vec4 c = texture(u_texture, uv) * 0.2;
    for (int i = 0; i < 8; i++) {
        c += texture(u_texture, uv + taps[i] * u_radius) * 0.06;
        c += texture(u_texture, uv + taps[i] * u_radius * 0.5) * 0.04;
    }
    fragColor = vec4(c.rgb * u_opacity, 1.0);
}
`

// Default returns the built-in fluid background.
func Default() Sources {
	return Sources{Vertex: vertexShaderSource, Fragment: fluidFragmentShaderSource}
}

// WithFragment keeps the standard vertex stage and swaps the visual.
func WithFragment(fragment string) Sources {
	return Sources{Vertex: vertexShaderSource, Fragment: fragment}
}

// LoadFragment reads a replacement fragment shader from disk. The source must
// target WebGL2 and may only rely on the three background uniforms.
func LoadFragment(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Sources{}, fmt.Errorf("failed to read fragment shader: %w", err)
	}
	src := string(data)
	if strings.TrimSpace(src) == "" {
		return Sources{}, fmt.Errorf("fragment shader %s is empty", path)
	}
	if !strings.HasPrefix(strings.TrimSpace(src), "#version") {
		src = "#version 300 es\n" + src
	}
	return WithFragment(src), nil
}

// BlitShaders returns the desktop GL pair used to upscale the backing store
// into the window. Attribute 0 carries the quad.
func BlitShaders() (vertex, fragment string) {
	return blitVertexShaderSourceGL, blitFragmentShaderSourceGL
}

// Blit uniform names.
const (
	BlitTextureUniform = "u_texture"
	BlitRadiusUniform  = "u_radius"
	BlitZoomUniform    = "u_zoom"
	BlitOpacityUniform = "u_opacity"
)

// Presentation softens the upscaled backing store: a blur, a zoom that
// pushes the blurred edges off screen and a fade towards black.
type Presentation struct {
	// Blur radius in window framebuffer pixels.
	Blur    float64
	Zoom    float64
	Opacity float64
}

// Sharp shows the backing store as is.
var Sharp = Presentation{Blur: 0, Zoom: 1, Opacity: 1}

// Uniforms returns the blit uniform values for a framebuffer of fbWidth x
// fbHeight pixels. Out of range fields fall back to their Sharp values.
func (p Presentation) Uniforms(fbWidth, fbHeight int) (radiusX, radiusY, zoom, opacity float32) {
	if p.Blur > 0 && fbWidth > 0 && fbHeight > 0 {
		radiusX = float32(p.Blur / float64(fbWidth))
		radiusY = float32(p.Blur / float64(fbHeight))
	}
	zoom = 1
	if p.Zoom >= 1 {
		zoom = float32(p.Zoom)
	}
	opacity = 1
	if p.Opacity >= 0 && p.Opacity <= 1 {
		opacity = float32(p.Opacity)
	}
	return
}
