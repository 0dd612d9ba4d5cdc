package sbi

import "github.com/Luchangcheng2333/rustsbi-jh7100/internal/sbierr"

// Base extension function IDs (standard SBI Base extension, spec.md §4.5).
const (
	fnGetSpecVersion = 0
	fnGetImplID      = 1
	fnGetImplVersion = 2
	fnProbeExtension = 3
	fnGetMvendorID   = 4
	fnGetMarchID     = 5
	fnGetMimpID      = 6
)

// specVersion encodes SBI v0.3 as (major<<24)|minor.
const specVersion = 0<<24 | 3

func baseEcall(function uint64, args [6]uint64) Result {
	switch function {
	case fnGetSpecVersion:
		return ok(specVersion)
	case fnGetImplID:
		return ok(providers.ImplID)
	case fnGetImplVersion:
		return ok(providers.ImplVer)
	case fnProbeExtension:
		if Probe(args[0]) {
			return ok(1)
		}
		return ok(0)
	case fnGetMvendorID, fnGetMarchID, fnGetMimpID:
		// This firmware does not run on real silicon from a named
		// vendor; spec.md does not mandate non-zero values here, so
		// these read as zero (SBI permits implementations to report 0
		// when the field does not apply).
		return ok(0)
	default:
		return errOf(sbierr.NotSupported)
	}
}
