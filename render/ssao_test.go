package render

import "testing"

func TestBuildSSAOKernelDeterministicAndBounded(t *testing.T) {
	a := BuildSSAOKernel()
	b := BuildSSAOKernel()
	if a != b {
		t.Fatalf("kernel generation is not deterministic")
	}
	for i, v := range a {
		length := v.Length()
		if length > 1.01 {
			t.Fatalf("sample %d exceeds unit hemisphere: length %f", i, length)
		}
		if v.Z < 0 {
			t.Fatalf("sample %d has negative Z, expected +Z hemisphere", i)
		}
	}
}

func TestBuildSSAONoiseTiles4x4(t *testing.T) {
	noise := BuildSSAONoise()
	if len(noise) != 16 {
		t.Fatalf("expected 16 noise vectors, got %d", len(noise))
	}
	for _, v := range noise {
		if v.X < -1 || v.X > 1 || v.Y < -1 || v.Y > 1 {
			t.Fatalf("noise rotation vector out of [-1,1] range: %v", v)
		}
	}
}
