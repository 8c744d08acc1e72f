package store

import "errors"

// ErrDuplicateMerchant is returned when a merchant with the same name and
// first phone number is already recorded.
var ErrDuplicateMerchant = errors.New("store: merchant already recorded")
