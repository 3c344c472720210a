package backend

import (
	"os"

	"github.com/go-mdr/mdr"
)

// FileWriter writes metadata and packed components to two files, total
// overwrite semantics on every call. Adapted from original_source's
// OrderedFileWriter.
type FileWriter struct {
	MetadataPath   string
	ComponentsPath string
}

// NewFileWriter constructs a FileWriter targeting metadataPath and
// componentsPath.
func NewFileWriter(metadataPath, componentsPath string) *FileWriter {
	return &FileWriter{MetadataPath: metadataPath, ComponentsPath: componentsPath}
}

func (w *FileWriter) WriteMetadata(data []byte) error {
	if err := os.WriteFile(w.MetadataPath, data, 0o644); err != nil {
		return mdr.NewError(mdr.KindBackendIO, "FileWriter.WriteMetadata", err)
	}
	return nil
}

func (w *FileWriter) WriteComponents(data []byte) error {
	if err := os.WriteFile(w.ComponentsPath, data, 0o644); err != nil {
		return mdr.NewError(mdr.KindBackendIO, "FileWriter.WriteComponents", err)
	}
	return nil
}

// FileRetriever reads metadata in one shot and serves successive,
// non-overlapping prefixes of the components file. Adapted from
// original_source's OrderedFileRetriever, with the retrieved-size
// accounting corrected to accumulate actual bytes read rather than the
// post-read offset (see DESIGN.md).
type FileRetriever struct {
	MetadataPath   string
	ComponentsPath string

	offset uint32
	total  uint64
	file   *os.File
	opened bool
}

// NewFileRetriever constructs a FileRetriever targeting metadataPath and
// componentsPath.
func NewFileRetriever(metadataPath, componentsPath string) *FileRetriever {
	return &FileRetriever{MetadataPath: metadataPath, ComponentsPath: componentsPath}
}

func (r *FileRetriever) LoadMetadata() ([]byte, error) {
	b, err := os.ReadFile(r.MetadataPath)
	if err != nil {
		return nil, mdr.NewError(mdr.KindBackendIO, "FileRetriever.LoadMetadata", err)
	}
	return b, nil
}

// RetrieveComponents reads the next retrieveSize bytes of the components
// file, starting from wherever the previous call left off. It keeps the
// underlying file open across calls and reads at the tracked offset, so
// repeated small retrievals don't pay an open cost each time.
func (r *FileRetriever) RetrieveComponents(retrieveSize uint32) ([]byte, error) {
	if !r.opened {
		f, err := os.Open(r.ComponentsPath)
		if err != nil {
			return nil, mdr.NewError(mdr.KindBackendIO, "FileRetriever.RetrieveComponents", err)
		}
		r.file = f
		r.opened = true
	}

	buf := make([]byte, retrieveSize)
	n, err := r.file.ReadAt(buf, int64(r.offset))
	if err != nil && n == 0 {
		return nil, mdr.NewError(mdr.KindBackendIO, "FileRetriever.RetrieveComponents", err)
	}
	buf = buf[:n]

	r.offset += uint32(n)
	r.total += uint64(n)

	return buf, nil
}

func (r *FileRetriever) Offset() uint32 { return r.offset }

// TotalRetrievedSize returns the cumulative bytes actually read across all
// RetrieveComponents calls. The original C++ retriever accumulates this
// counter from the post-read seek offset, which over-counts whenever a read
// comes up short; this accumulates only the bytes a call actually returned.
func (r *FileRetriever) TotalRetrievedSize() uint64 { return r.total }

// Close releases the underlying file handle, if one was opened.
func (r *FileRetriever) Close() error {
	if r.opened {
		err := r.file.Close()
		r.opened = false
		return err
	}
	return nil
}
