package collector

import (
	"github.com/hazyhaar/mapsieve/collector/internal/store"
)

// Store is the merchant database handle. Re-exported from internal.
type Store = store.Store

// OpenStore opens the database at path, creating the file and its
// schema when missing.
func OpenStore(path string) (*Store, error) {
	return store.Open(path)
}
