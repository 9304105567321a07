package core

import "testing"

func TestNewCubeMeshDataHasTwentyFourVerticesAndThirtySixIndices(t *testing.T) {
	data := NewCubeMeshData(2.0)
	if len(data.Vertices) != 24 {
		t.Fatalf("expected 24 vertices (4 per face x 6 faces), got %d", len(data.Vertices))
	}
	if len(data.Indices) != 36 {
		t.Fatalf("expected 36 indices (2 triangles per face x 6 faces), got %d", len(data.Indices))
	}
	for _, idx := range data.Indices {
		if int(idx) >= len(data.Vertices) {
			t.Fatalf("index %d out of range for %d vertices", idx, len(data.Vertices))
		}
	}
}

func TestNewCubeMeshDataScalesWithSize(t *testing.T) {
	data := NewCubeMeshData(4.0)
	for _, v := range data.Vertices {
		if v.Position.X != 2.0 && v.Position.X != -2.0 {
			t.Fatalf("expected half-extent 2.0 for size 4.0, got X=%f", v.Position.X)
		}
	}
}
