package lossless

import (
	"sync"

	"github.com/go-mdr/mdr"
)

// registry is a Backend-keyed codec lookup, adapted from the name/UID-keyed
// registry pattern used for pluggable pixel codecs elsewhere in the corpus.
type registry struct {
	mu     sync.RWMutex
	codecs map[Backend]codec
}

var defaultRegistry = &registry{codecs: make(map[Backend]codec)}

func registerCodec(b Backend, c codec) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.codecs[b] = c
}

func resolve(b Backend) (codec, error) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	c, ok := defaultRegistry.codecs[b]
	if !ok {
		return nil, mdr.NewError(mdr.KindInvalidArgument, "lossless.resolve", mdr.Error("unknown lossless backend: "+b.String()))
	}
	return c, nil
}

func init() {
	registerCodec(BackendStore, storeCodec{})
	registerCodec(BackendFlate, flateCodec{})
	registerCodec(BackendXZ, xzCodec{})
}
