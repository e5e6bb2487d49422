package ui

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/jyane/jvb/vb"
)

const vertexShader = `#version 330 core
layout(location = 0) in vec2 position;
out vec2 uv;
void main() {
	uv = vec2((position.x + 1.0) / 2.0, (1.0 - position.y) / 2.0);
	gl_Position = vec4(position, 0.0, 1.0);
}
`

const fragmentShader = `#version 330 core
in vec2 uv;
out vec4 color;
uniform sampler2D frame;
void main() {
	color = vec4(texture(frame, uv).rgb, 1.0);
}
`

// Two triangles covering the whole viewport.
var quad = []float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// screen is a video sink drawing frames into a texture.
type screen struct {
	fb      *vb.FrameBuffer
	ready   bool
	program uint32
	texture uint32
	vao     uint32
	vbo     uint32
}

func newScreen(format vb.PixelFormat, gamma bool) (*screen, error) {
	program, err := newProgram()
	if err != nil {
		return nil, err
	}
	s := &screen{fb: vb.NewFrameBuffer(format, gamma), program: program}
	gl.UseProgram(program)

	gl.GenVertexArrays(1, &s.vao)
	gl.BindVertexArray(s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.GenTextures(1, &s.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	pixelFormat, pixelType := texelLayout(format)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, vb.ScreenWidth, vb.ScreenHeight, 0, pixelFormat, pixelType, gl.Ptr(s.fb.Pix))
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("frame\x00")), 0)
	return s, nil
}

// texelLayout maps a frame buffer format to what TexImage2D takes.
func texelLayout(format vb.PixelFormat) (uint32, uint32) {
	switch format {
	case vb.PixelFormatRGB565:
		return gl.RGB, gl.UNSIGNED_SHORT_5_6_5
	case vb.PixelFormatXRGB1555:
		return gl.BGRA, gl.UNSIGNED_SHORT_1_5_5_5_REV
	}
	return gl.BGRA, gl.UNSIGNED_BYTE
}

func (s *screen) FrameBuffer() *vb.FrameBuffer {
	return s.fb
}

func (s *screen) FrameReady(fb *vb.FrameBuffer) {
	s.ready = true
}

// draw updates the texture with the latest frame and renders it.
func (s *screen) draw() {
	s.ready = false
	pixelFormat, pixelType := texelLayout(s.fb.Format)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, vb.ScreenWidth, vb.ScreenHeight, pixelFormat, pixelType, gl.Ptr(s.fb.Pix))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quad)/2))
}

func (s *screen) delete() {
	gl.DeleteTextures(1, &s.texture)
	gl.DeleteBuffers(1, &s.vbo)
	gl.DeleteVertexArrays(1, &s.vao)
	gl.DeleteProgram(s.program)
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("Failed to compile shader: %s", log)
	}
	return shader, nil
}

// newProgram links the shaders drawing the frame texture.
func newProgram() (uint32, error) {
	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("Failed to link program: %s", log)
	}
	return program, nil
}
