package inventory

import (
	"errors"

	"cadash/internal/dce"
)

// Inventory invariant violations. All are programming/data errors the
// caller must correct; none are transient.
var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateName covers every per-namespace name collision:
	// ca name/address/serial, location name, cluster name/admin host,
	// vendor name+model, stream config name/stream id, and channel or
	// recorder names within one role config.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrDuplicateDeviceID is returned when a non-sentinel channel or
	// recorder id is already taken within the same role config.
	ErrDuplicateDeviceID = errors.New("duplicate device id")

	// ErrEmptyValue is returned for blank required fields.
	ErrEmptyValue = errors.New("empty value not allowed")

	// ErrInvalidRole is returned for a role name outside
	// primary|secondary|experimental.
	ErrInvalidRole = errors.New("invalid ca role")

	// ErrInvalidEnvironment is returned for a cluster env outside
	// prod|dev|stage.
	ErrInvalidEnvironment = errors.New("invalid cluster environment")

	// ErrAssociationExists is returned when attaching a second config
	// (role/vendor/location/mhpearl) to an owner that already has one,
	// or a second role to a ca, or a duplicate primary/secondary role
	// to a location.
	ErrAssociationExists = errors.New("association already exists")

	// ErrInvalidOperation is returned for updates outside an entity's
	// updateable-field set and for disallowed structural changes
	// (updating a role, deleting a vendor).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidJSON is returned when a channel source_layout update
	// does not parse as JSON or lacks the required "video" key.
	ErrInvalidJSON = errors.New("invalid json value")

	// ErrMissingVendor is returned when a ca references an unknown vendor.
	ErrMissingVendor = errors.New("vendor not in inventory")

	// ErrMissingConfig is returned when deriving a device config and a
	// required value (capture card id, a channel or recorder device id)
	// is still unset or at its sentinel. Shared with the dce package,
	// which raises it during assembly.
	ErrMissingConfig = dce.ErrMissingConfig
)
