package glsl

import "strconv"

// Sources is a vertex and fragment shader pair.
type Sources struct {
	Vertex, Fragment string
}

// Color modes selected by the colorMode uniform.
const (
	ColorModePlain  = 0
	ColorModeLookup = 1
)

// HalfFFTSize is the define that sizes the color lookup table array.
const HalfFFTSize = "HALF_FFT_SIZE"

const shadeFunc = `
uniform vec3 colorLookupTable[HALF_FFT_SIZE];
uniform int colorMode;

vec3 shade(float m) {
	if (colorMode == 1) {
		int b = int(floor(m * 255.0 + 0.5));
		int i = clamp(b * HALF_FFT_SIZE / 256, 0, HALF_FFT_SIZE - 1);
		return colorLookupTable[i];
	}
	return vec3(m, 0.0, 0.0);
}
`

const meshVertex = `#version 410 core
in vec3 position;
in vec2 uv;
in vec3 normal;

uniform mat4 projection;
uniform mat4 view;
uniform mat4 model;

out vec2 vUv;
out vec3 vNormal;

void main() {
	vUv = uv;
	vNormal = normal;
	gl_Position = projection * view * model * vec4(position, 1.0);
}
`

const meshFragment = `#version 410 core
in vec2 vUv;
in vec3 vNormal;

uniform sampler2D tAudioData;
uniform sampler2D tSpectrogram;
uniform float sampleRate;
uniform float averageMagnitude;
uniform vec2 mouse;
` + shadeFunc + `
out vec4 fragColor;

void main() {
	float m = texture(tAudioData, vec2(vUv.x, 0.5)).r;
	vec3 history = texture(tSpectrogram, vec2(vUv.x, 1.0 - vUv.y)).rgb;
	float glow = 1.0 - smoothstep(0.0, 0.5, distance(vUv * 2.0 - 1.0, mouse));
	float light = 0.6 + 0.4 * max(dot(normalize(vNormal), vec3(0.0, 0.0, 1.0)), 0.0);
	vec3 c = mix(shade(m), history, 0.5) + 0.1 * glow * averageMagnitude / 255.0;
	fragColor = vec4(c * light, 1.0);
}
`

const scrollVertex = `#version 410 core
in vec2 position;

void main() {
	gl_Position = vec4(position, 0.0, 1.0);
}
`

// Row 0 of the target takes the newest spectrum, every other row copies the row below
// it in the previous frame.
const scrollFragment = `#version 410 core
uniform sampler2D tPrev;
uniform sampler2D tAudioData;
uniform int hasAudio;
` + shadeFunc + `
out vec4 fragColor;

void main() {
	ivec2 p = ivec2(gl_FragCoord.xy);
	if (p.y > 0) {
		fragColor = texelFetch(tPrev, p - ivec2(0, 1), 0);
		return;
	}
	if (hasAudio == 0) {
		fragColor = vec4(0.0, 0.0, 0.0, 1.0);
		return;
	}
	int w = textureSize(tPrev, 0).x;
	int n = textureSize(tAudioData, 0).x;
	float m = texelFetch(tAudioData, ivec2(p.x * n / w, 0), 0).r;
	fragColor = vec4(shade(m), 1.0);
}
`

// MeshUniforms are the uniforms declared by the mesh program.
var MeshUniforms = []string{
	"projection", "view", "model",
	"tAudioData", "tSpectrogram", "sampleRate", "averageMagnitude", "mouse",
	"colorLookupTable", "colorMode",
}

// ScrollUniforms are the uniforms declared by the history scroll program.
var ScrollUniforms = []string{
	"tPrev", "tAudioData", "hasAudio", "colorLookupTable", "colorMode",
}

// Mesh returns the mesh program for a spectrum of bins entries.
func Mesh(bins int) Sources {
	d := defines(bins)
	return Sources{Vertex: meshVertex, Fragment: InjectDefines(meshFragment, d)}
}

// Scroll returns the history scroll program for a spectrum of bins entries.
func Scroll(bins int) Sources {
	d := defines(bins)
	return Sources{Vertex: scrollVertex, Fragment: InjectDefines(scrollFragment, d)}
}

func defines(bins int) map[string]string {
	return map[string]string{HalfFFTSize: strconv.Itoa(bins)}
}
