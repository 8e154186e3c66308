package boxy

// WGSL sources for the two quad programs. Both consume the same vertex
// layout: position vec2<f32> at location 0, uv vec3<f32> (u, v, atlas
// layer) at location 1, premultiplied color vec4<u8 normalized> at
// location 2.

// atlasShaderWGSL samples the atlas array and multiplies by the vertex
// color and the mask coverage at the fragment's screen position.
const atlasShaderWGSL = `
struct Uniforms {
    projection: mat4x4<f32>,
    screen_size: vec2<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var atlasTex: texture_2d_array<f32>;
@group(0) @binding(2) var atlasSampler: sampler;
@group(0) @binding(3) var maskTex: texture_2d<f32>;
@group(0) @binding(4) var maskSampler: sampler;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec3<f32>,
    @location(2) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec3<f32>,
    @location(1) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = uniforms.projection * vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(atlasTex, atlasSampler, in.uv.xy, i32(in.uv.z));
    let screen_uv = in.clip_position.xy / uniforms.screen_size;
    let coverage = textureSample(maskTex, maskSampler, screen_uv).a;
    return texel * in.color * coverage;
}
`

// maskShaderWGSL renders coverage geometry into a mask target. It samples
// the atlas so image-shaped masks work, but applies no outer mask itself.
const maskShaderWGSL = `
struct Uniforms {
    projection: mat4x4<f32>,
    screen_size: vec2<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var atlasTex: texture_2d_array<f32>;
@group(0) @binding(2) var atlasSampler: sampler;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec3<f32>,
    @location(2) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec3<f32>,
    @location(1) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = uniforms.projection * vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(atlasTex, atlasSampler, in.uv.xy, i32(in.uv.z));
    return texel * in.color;
}
`

// maskUniformName is the binding the renderer probes for to decide whether
// a program consumes a mask texture.
const maskUniformName = "maskTex"
