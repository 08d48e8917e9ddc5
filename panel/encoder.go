package panel

// encoderSteps maps prev<<2|cur phase codes to tick increments. The eight
// single-bit Gray transitions count plus or minus one tick; repeats and
// double-bit jumps are contact noise and count zero.
var encoderSteps = [16]int{
	0, +1, -1, 0,
	-1, 0, 0, +1,
	+1, 0, 0, -1,
	0, -1, +1, 0,
}

// Decoder turns raw quadrature phase samples into whole detent steps.
// Ticks accumulate until a full detent's worth is reached; the remainder
// carries over so slow or jittery rotation never loses movement.
type Decoder struct {
	prev      uint8
	primed    bool
	acc       int
	perDetent int
	reverse   bool
}

// NewDecoder returns a decoder emitting one step per ticksPerDetent valid
// transitions. reverse flips the sign of every reported step.
func NewDecoder(ticksPerDetent int, reverse bool) *Decoder {
	if ticksPerDetent < 1 {
		ticksPerDetent = 1
	}
	return &Decoder{perDetent: ticksPerDetent, reverse: reverse}
}

// Sample feeds one A/B reading and returns the number of whole detents it
// completes, usually zero. The first call only establishes the starting
// phase.
func (d *Decoder) Sample(a, b bool) int {
	code := phaseCode(a, b)
	if !d.primed {
		d.prev = code
		d.primed = true
		return 0
	}
	if code == d.prev {
		return 0
	}
	d.acc += encoderSteps[d.prev<<2|code]
	d.prev = code

	steps := d.acc / d.perDetent
	if steps == 0 {
		return 0
	}
	d.acc -= steps * d.perDetent
	if d.reverse {
		steps = -steps
	}
	return steps
}

func phaseCode(a, b bool) uint8 {
	var code uint8
	if a {
		code |= 2
	}
	if b {
		code |= 1
	}
	return code
}
