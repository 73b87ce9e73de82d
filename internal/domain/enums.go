package domain

// BaseUOM is the canonical unit that all convertible quantities normalize to.
const BaseUOM = "EA"

// UnknownSupplier is the supplier name used when detection finds nothing.
const UnknownSupplier = "Unknown Supplier"

// ErrorSupplier marks a document whose processing failed entirely.
const ErrorSupplier = "Error"

// UnitClass partitions unit-of-measure tokens into conversion behaviors.
type UnitClass string

const (
	// UnitClassMeasurable covers weight/length/volume/time units. They have no
	// fixed conversion to a countable base unit and are never convertible.
	UnitClassMeasurable UnitClass = "measurable"
	// UnitClassBase covers tokens equivalent to the base unit (EA, PC, UNIT).
	UnitClassBase UnitClass = "base"
	// UnitClassFixedMultiplier covers units with a fixed base-unit multiplier
	// (PR x2, DZ x12, GROSS x144).
	UnitClassFixedMultiplier UnitClass = "fixed_multiplier"
	// UnitClassPack covers container units (CS, BX, PK, ...) that convert only
	// when a pack quantity is independently known.
	UnitClassPack UnitClass = "pack"
	// UnitClassCount covers COUNT/CNT, treated like pack units but with lower
	// confidence since the token itself does not imply a container.
	UnitClassCount UnitClass = "count"
	// UnitClassUnknown covers empty or unmapped tokens, which fall back to
	// base-unit behavior at reduced confidence.
	UnitClassUnknown UnitClass = "unknown"
)

// Strategy identifies which extraction path produced the candidate items.
type Strategy string

const (
	StrategyLLMPrimary  Strategy = "llm_primary"
	StrategyGeneric     Strategy = "generic"
	StrategyLLMFallback Strategy = "llm_fallback"
	StrategyNone        Strategy = "none"
)
