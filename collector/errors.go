package collector

import (
	"errors"

	"github.com/hazyhaar/mapsieve/collector/internal/store"
)

// ErrDuplicateMerchant is returned when a merchant with the same name and
// first phone number is already recorded. Re-exported from the store.
var ErrDuplicateMerchant = store.ErrDuplicateMerchant

// ErrNotSearchResults is returned when a collection run starts on a screen
// that is not a search results list.
var ErrNotSearchResults = errors.New("collector: current screen is not a search results list")

// ErrNoDevice is returned by device-backed operations when no controller
// was configured.
var ErrNoDevice = errors.New("collector: no device controller configured")
