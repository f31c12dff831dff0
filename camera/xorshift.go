package camera

// A 32-bit xorshift pseudo-random generator. The zero state is a fixed
// point of the generator and must be avoided.
type xorshift uint32

func (x *xorshift) next() uint32 {
	s := uint32(*x)
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	*x = xorshift(s)
	return s
}

// Get a float in [0, 1) using the low 24 bits of the next value.
func (x *xorshift) float() float32 {
	return float32(x.next()&0xFFFFFF) / float32(0x1000000)
}

// Mix the image coordinates into the generator state so that neighbouring
// samples follow different sequences.
func (x *xorshift) perturb(u, v float32) {
	s := uint32(*x) ^ uint32(u*10000.0+v*1000.0)
	if s == 0 {
		s = 1
	}
	*x = xorshift(s)
}

// Sample a point in the unit disk using rejection sampling.
func (x *xorshift) unitDisk() (float32, float32) {
	for {
		dx := 2.0*x.float() - 1.0
		dy := 2.0*x.float() - 1.0
		if dx*dx+dy*dy < 1.0 {
			return dx, dy
		}
	}
}
