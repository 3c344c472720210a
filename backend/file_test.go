package backend

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFileWriterRetrieverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "stream.meta")
	dataPath := filepath.Join(dir, "stream.data")

	w := NewFileWriter(metaPath, dataPath)
	meta := []byte("metadata-blob")
	components := []byte("0123456789abcdefghij")

	if err := w.WriteMetadata(meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	if err := w.WriteComponents(components); err != nil {
		t.Fatalf("WriteComponents: %v", err)
	}

	r := NewFileRetriever(metaPath, dataPath)
	defer r.Close()

	got, err := r.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if !bytes.Equal(got, meta) {
		t.Errorf("LoadMetadata = %q, want %q", got, meta)
	}

	first, err := r.RetrieveComponents(5)
	if err != nil {
		t.Fatalf("RetrieveComponents(5): %v", err)
	}
	if !bytes.Equal(first, components[:5]) {
		t.Errorf("first retrieve = %q, want %q", first, components[:5])
	}
	if r.Offset() != 5 {
		t.Errorf("Offset = %d, want 5", r.Offset())
	}

	second, err := r.RetrieveComponents(5)
	if err != nil {
		t.Fatalf("RetrieveComponents(5): %v", err)
	}
	if !bytes.Equal(second, components[5:10]) {
		t.Errorf("second retrieve = %q, want %q", second, components[5:10])
	}
	if r.Offset() != 10 {
		t.Errorf("Offset = %d, want 10", r.Offset())
	}
	if r.TotalRetrievedSize() != 10 {
		t.Errorf("TotalRetrievedSize = %d, want 10", r.TotalRetrievedSize())
	}
}

func TestFileRetrieverShortFinalRead(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "stream.meta")
	dataPath := filepath.Join(dir, "stream.data")

	w := NewFileWriter(metaPath, dataPath)
	if err := w.WriteMetadata([]byte("m")); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	components := []byte("abc")
	if err := w.WriteComponents(components); err != nil {
		t.Fatalf("WriteComponents: %v", err)
	}

	r := NewFileRetriever(metaPath, dataPath)
	defer r.Close()

	got, err := r.RetrieveComponents(10)
	if err != nil {
		t.Fatalf("RetrieveComponents(10): %v", err)
	}
	if !bytes.Equal(got, components) {
		t.Errorf("short read = %q, want %q", got, components)
	}
	if r.TotalRetrievedSize() != 3 {
		t.Errorf("TotalRetrievedSize = %d, want 3 (actual bytes read, not requested)", r.TotalRetrievedSize())
	}
}

func TestWriterOverwritesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "stream.meta")
	dataPath := filepath.Join(dir, "stream.data")

	w := NewFileWriter(metaPath, dataPath)
	if err := w.WriteMetadata([]byte("first-and-much-longer")); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	if err := w.WriteMetadata([]byte("second")); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}

	r := NewFileRetriever(metaPath, dataPath)
	got, err := r.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if !bytes.Equal(got, []byte("second")) {
		t.Errorf("LoadMetadata = %q, want %q (total overwrite)", got, "second")
	}
}
