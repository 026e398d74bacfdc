package asdu

// Quality carries the BL/SB/NT/IV descriptor bits original_source packs into
// the high nibble of most monitor-direction object bodies, plus the OV
// (overflow) bit the step-position, bitstring, measured-value and
// packed-single-point types carry in bit 0 of the same octet (integrated
// totals carry their own flags and no Quality). Point-information types (M_SP/M_DP and their timed forms) pack
// their value into that same low bit instead — see object.go — so those
// callers never set Overflow.
type Quality struct {
	Overflow    bool
	Blocked     bool
	Substituted bool
	NotTopical  bool
	Invalid     bool
}

// qualityBits returns the high-nibble BL/SB/NT/IV bits of q, OR'd onto
// low, which the caller has already populated with whatever occupies the
// low nibble for its type (an overflow bit, a value bit, or nothing).
func qualityBits(q Quality, low byte) byte {
	b := low
	if q.Blocked {
		b |= 0x10
	}
	if q.Substituted {
		b |= 0x20
	}
	if q.NotTopical {
		b |= 0x40
	}
	if q.Invalid {
		b |= 0x80
	}
	return b
}

// parseQualityBits extracts the high-nibble BL/SB/NT/IV bits shared by every
// quality octet in the closed type set. hasOverflow selects whether bit 0
// is also read as the OV flag.
func parseQualityBits(b byte, hasOverflow bool) Quality {
	q := Quality{
		Blocked:     b&0x10 != 0,
		Substituted: b&0x20 != 0,
		NotTopical:  b&0x40 != 0,
		Invalid:     b&0x80 != 0,
	}
	if hasOverflow {
		q.Overflow = b&0x01 != 0
	}
	return q
}
