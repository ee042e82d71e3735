package backend

// AccountCapacityBytes is the provider's fixed free-tier allowance per
// account (15 GiB).
const AccountCapacityBytes uint64 = 15 << 30

// CutoffBytes is 95% of the fixed capacity (14.25 GiB).
const CutoffBytes uint64 = AccountCapacityBytes / 20 * 19

const extendThreshold = 0.95

// QuotaSnapshot is an ephemeral view of one account's usage, fetched fresh
// for every extension decision and never persisted.
type QuotaSnapshot struct {
	Used  uint64
	Limit uint64
	Ratio float64
}

func NewQuotaSnapshot(used, limit uint64) QuotaSnapshot {
	s := QuotaSnapshot{Used: used, Limit: limit}
	if limit > 0 {
		s.Ratio = float64(used) / float64(limit)
	}
	return s
}

// CanExtend reports whether the chain may grow. The ratio check and the
// absolute-byte check restate the same 95%-of-capacity threshold; both are
// kept so a zero or missing limit degrades to the absolute check. Boundary
// inclusive: exactly 14.25 GiB used permits extension.
func CanExtend(s QuotaSnapshot) bool {
	return s.Ratio >= extendThreshold || s.Used >= CutoffBytes
}

// GateExtension returns ErrQuotaNotExhausted when the snapshot does not yet
// permit extension. Advisory: callers report it and stop, nothing is
// mutated.
func GateExtension(s QuotaSnapshot) error {
	if !CanExtend(s) {
		return ErrQuotaNotExhausted
	}
	return nil
}
