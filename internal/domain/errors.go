package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Node / network errors
	ErrUnreachableNode       = errors.New("no route reaches this demand node")
	ErrNodeCannotManufacture = errors.New("node does not have manufacturing capability")
	ErrNodeCannotStore       = errors.New("node does not support the requested storage mode")
	ErrStateNotAdmitted      = errors.New("node capabilities do not admit this cohort state")

	// Truck errors
	ErrPalletCapacityExceeded = errors.New("required pallets exceed truck pallet capacity")
	ErrMissingStopRoute       = errors.New("truck has an intermediate stop with no matching route")

	// Shelf-life / cohort errors
	ErrShelfLifeInfeasible = errors.New("remaining shelf life is below minimum acceptance")
	ErrCohortExpired       = errors.New("cohort has aged past its state shelf life")
	ErrPhantomShipment     = errors.New("shipment departure precedes horizon start")
	ErrInvalidCohortState  = errors.New("cohort state is not one of frozen, ambient, thawed")

	// Validation errors
	ErrMissingRequiredField          = errors.New("missing required field")
	ErrCrossReferenceUnresolved      = errors.New("cross-reference could not be resolved")
	ErrNegativeOrZeroCapacity        = errors.New("capacity parameter must be positive")
	ErrMissingLaborForCriticalDate   = errors.New("labor calendar missing a critical date")
	ErrDemandExceedsAbsoluteCapacity = errors.New("demand exceeds absolute production capacity")

	// Solver errors
	ErrSolverTimeout    = errors.New("solver exceeded its time limit")
	ErrSolverInfeasible = errors.New("solver proved the model infeasible")
	ErrSolverError      = errors.New("solver returned an error")

	// Builder errors — index-set inconsistency is a programmer bug, not a
	// recoverable condition, but a sentinel still names the category.
	ErrIndexSetInconsistent = errors.New("cohort index set inconsistent with model invariants")
)
