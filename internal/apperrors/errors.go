package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCurrencyMismatch indicates that money arithmetic was attempted across
// differing currencies. Always fatal to that operation; amounts are never
// silently coerced.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrRateUnavailable indicates that no exchange rate could be obtained for a
// currency pair after the whole fallback chain was exhausted. Callers must
// surface the affected figure as unavailable rather than assume a 1:1 rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")
