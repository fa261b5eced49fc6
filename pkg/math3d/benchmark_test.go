package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkTransformPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.TransformPoint(v)
	}
}

func BenchmarkTransformDirection(b *testing.B) {
	m := RotateX(0.3).Mul(RotateY(0.5))
	v := V3(0, 1, 0)

	for b.Loop() {
		_ = m.TransformDirection(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkModelViewProjection(b *testing.B) {
	// Same product the shaders cache in SetMatrices
	model := Translate(V3(0, -0.05, 0)).Mul(ScaleUniform(1.4))
	view := LookAt(V3(0, 0.1, 4.2), Zero3(), Up())
	proj := Perspective(Radians(45), 1, 0.1, 10)

	for b.Loop() {
		_ = proj.Mul(view).Mul(model)
	}
}
