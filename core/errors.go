package core

import "errors"

// Sentinel errors returned by the System facade. Per §7 these are the
// exception: Registry and Chain mutators report failure via a bare bool
// return, never an error; only the facade operations listed here surface a
// distinguishable failure reason to callers.
var (
	// ErrUserExists is returned by (*System).RegisterUser when handle is
	// already registered. This is the one in-band "loud" failure in §7.
	ErrUserExists = errors.New("resourcechain: handle already registered")

	// ErrUnknownUser is returned when a facade operation references a
	// handle that has not been registered.
	ErrUnknownUser = errors.New("resourcechain: unknown user handle")

	// ErrInsufficientBalance is returned when a non-system transaction would
	// overdraw its sender.
	ErrInsufficientBalance = errors.New("resourcechain: insufficient balance")

	// ErrResourceNotFound is returned by (*System).Download when the owner's
	// registry has no record with the requested id.
	ErrResourceNotFound = errors.New("resourcechain: resource not found")

	// ErrResourceInactive is returned when an operation requires an active
	// resource but the target has been deactivated.
	ErrResourceInactive = errors.New("resourcechain: resource inactive")

	// ErrSelfDownload is returned when a downloader and owner identity are
	// the same handle.
	ErrSelfDownload = errors.New("resourcechain: cannot download own resource")

	// ErrEmptyPool is returned by mining when the pending pool has nothing
	// to confirm. Not a failure per §7 — a boundary condition.
	ErrEmptyPool = errors.New("resourcechain: pending pool is empty")
)
