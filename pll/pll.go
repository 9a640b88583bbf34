// Package pll recovers a bit clock from flux transition timings.
//
// Flux capture devices record the time between magnetic transitions;
// the encoded bits are defined by how many fixed-width cells pass
// between transitions. Drive speed wobble makes the real cell width
// drift, so a fixed divider falls out of step on long streams. PLL
// implements the classic software phase-locked loop: every observed
// transition nudges the clock period toward the observed spacing and
// absorbs part of the phase error, keeping the decode window centred
// on the drive's actual clock.
package pll

// Clock bounds in nanoseconds. The centre is the 2us half-bit cell of
// double density MFM; adjustment stays within 10% of centre.
const (
	ClockCentre = 2000

	clockMaxAdjPct = 10
	clockMin       = ClockCentre * (100 - clockMaxAdjPct) / 100
	clockMax       = ClockCentre * (100 + clockMaxAdjPct) / 100

	// Fractions of the phase mismatch fed back into the clock period
	// and the clock phase after each transition.
	periodAdjPct = 5
	phaseAdjPct  = 60

	// tickNanos is the width of one capture tick.
	tickNanos = 25
)

// Source supplies flux transition intervals in 25ns ticks. A zero
// return means the source has no transitions to offer.
type Source interface {
	NextFlux() uint32
}

// PLL demodulates half-bit cells from a flux source. The zero value is
// not usable; construct with New.
type PLL struct {
	src          Source
	clock        int
	flux         int
	time         int
	clockedZeros int
}

// New returns a PLL reading from src, tuned to the centre clock.
func New(src Source) *PLL {
	return &PLL{src: src, clock: ClockCentre}
}

// NextBit consumes flux up to the next cell boundary and returns the
// demodulated half-bit: 1 when a transition landed inside the cell, 0
// when none did. A source with no transitions left yields 0 without
// moving the clock.
func (p *PLL) NextBit() int {
	for p.flux < p.clock/2 {
		t := p.src.NextFlux()
		if t == 0 {
			return 0
		}
		p.flux += tickNanos * int(t)
	}

	p.time += p.clock
	p.flux -= p.clock

	if p.flux >= p.clock/2 {
		// No transition in this cell.
		p.clockedZeros++
		return 0
	}

	if p.clockedZeros <= 3 {
		// In sync: tune the period by a fraction of the phase error.
		p.clock += p.flux * periodAdjPct / 100
	} else {
		// Out of sync: drift the period back toward centre.
		p.clock += (ClockCentre - p.clock) * periodAdjPct / 100
	}

	// Keep the period within the capture range of the loop.
	if p.clock < clockMin {
		p.clock = clockMin
	}
	if p.clock > clockMax {
		p.clock = clockMax
	}

	// Snap the phase partway onto the observed transition.
	newFlux := p.flux * (100 - phaseAdjPct) / 100
	p.time += p.flux - newFlux
	p.flux = newFlux

	p.clockedZeros = 0
	return 1
}

// Clock returns the current half-bit period in nanoseconds.
func (p *PLL) Clock() int { return p.clock }

// Time returns the total nanoseconds of input consumed so far.
func (p *PLL) Time() int { return p.time }
