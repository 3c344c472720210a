// Package backend implements the Writer/Retriever contract: the storage
// boundary between the refactor/reconstruct engine and wherever metadata and
// packed components actually live. A Retriever's retrieve calls must yield
// consecutive, non-overlapping ranges starting at offset 0, matching the
// chunk-order bookkeeping refactor.Refactor and reconstruct.Reconstruct both
// assume.
package backend

// Writer accepts a refactor's two outputs: the metadata blob and the packed
// component stream. Both calls are idempotent, total-overwrite operations —
// calling either twice replaces, not appends.
type Writer interface {
	WriteMetadata(data []byte) error
	WriteComponents(data []byte) error
}

// Retriever is the read side: LoadMetadata returns the whole metadata blob
// in one call, while each RetrieveComponents call returns the next
// retrieveSize bytes of the packed stream, following on from the range the
// previous call returned.
type Retriever interface {
	LoadMetadata() ([]byte, error)
	RetrieveComponents(retrieveSize uint32) ([]byte, error)
	// Offset reports the number of component bytes consumed so far.
	Offset() uint32
	// TotalRetrievedSize reports the cumulative number of bytes actually
	// read across every RetrieveComponents call, for instrumentation.
	TotalRetrievedSize() uint64
}
