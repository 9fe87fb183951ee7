package honeybadger

import "errors"

// Errors returned by the core's entry points. Peer misbehavior is never
// reported through these; it is recorded in the FaultLog instead (see
// faultlog.go) and processing continues.
var (
	// errUnknownSender is returned by HandleMessage when the sender is not
	// a member of the validator set.
	errUnknownSender = errors.New("honeybadger: message from unknown sender")

	// errAlreadyHaveInput is returned by Input when a proposal has already
	// been submitted for the current epoch. The spec permits either
	// rejecting or silently ignoring a second Input in the same epoch; we
	// reject, so callers find out immediately rather than believing a
	// second contribution was queued.
	errAlreadyHaveInput = errors.New("honeybadger: input already provided for current epoch")
)
