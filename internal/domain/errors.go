package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMissingAPIKey = errors.New("no API key provided")
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrRateLimited   = errors.New("rate limited")
	ErrInvalidStake  = errors.New("stake must be a positive finite amount")
	ErrInvalidOdds   = errors.New("odds price must be nonzero")
	ErrNoScan        = errors.New("no scan has completed yet")
	ErrLockHeld      = errors.New("lock already held")
	ErrScanRunning   = errors.New("a scan is already running")
)
