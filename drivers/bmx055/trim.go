package bmx055

// Trim holds the factory calibration of one chip.
type Trim struct {
	X1, Y1 int8
	X2, Y2 int8
	XY1    uint8
	XY2    int8
	Z1     uint16
	Z2     int16
	Z3     int16
	Z4     int16
	XYZ1   uint16
}

// parseTrim decodes the trim block read from 0x5D.
func parseTrim(b []byte) Trim {
	le16 := func(i int) uint16 {
		i -= regTrimX1
		return uint16(b[i+1])<<8 | uint16(b[i])
	}
	at := func(reg int) byte { return b[reg-regTrimX1] }

	return Trim{
		X1:   int8(at(0x5D)),
		Y1:   int8(at(0x5E)),
		Z4:   int16(le16(0x62)),
		X2:   int8(at(0x64)),
		Y2:   int8(at(0x65)),
		Z2:   int16(le16(0x68)),
		Z1:   le16(0x6A),
		XYZ1: le16(0x6C) & 0x7FFF,
		Z3:   int16(le16(0x6E)),
		XY2:  int8(at(0x70)),
		XY1:  at(0x71),
	}
}

// Compensate converts a raw sample to a field in 1/16 µT. It returns
// ErrOverflow if any axis overflowed or the trim cannot be applied.
func (t Trim) Compensate(r Raw) (Field, error) {
	x, okX := t.compensateXY(r.X, r.RHall, t.X1, t.X2)
	y, okY := t.compensateXY(r.Y, r.RHall, t.Y1, t.Y2)
	z, okZ := t.compensateZ(r.Z, r.RHall)
	if !okX || !okY || !okZ {
		return Field{X: x, Y: y, Z: z}, ErrOverflow
	}
	return Field{X: x, Y: y, Z: z}, nil
}

func (t Trim) compensateXY(raw int16, rhall uint16, d1, d2 int8) (int32, bool) {
	if raw == overflowXY {
		return 0, false
	}
	r0 := rhall
	if r0 == 0 {
		r0 = t.XYZ1
	}
	if r0 == 0 {
		return 0, false
	}

	v := int16(uint16(int32(t.XYZ1)*16384/int32(r0)) - 0x4000)
	sq := int32(v) * int32(v)
	a := int32(t.XY2) * (sq / 128)
	b := int32(v) * int32(int16(t.XY1)*128)
	c := (a+b)/512 + 0x100000
	e := c * (int32(d2) + 0xA0) / 4096
	out := int32(int16(int32(raw) * e / 8192))
	return out + int32(d1)*8, true
}

func (t Trim) compensateZ(raw int16, rhall uint16) (int32, bool) {
	if raw == overflowZ {
		return 0, false
	}
	if t.Z2 == 0 || t.Z1 == 0 || rhall == 0 || t.XYZ1 == 0 {
		return 0, false
	}

	z0 := int32(int16(rhall) - int16(t.XYZ1))
	z1 := int32(t.Z3) * z0 / 4
	z2 := (int32(raw) - int32(t.Z4)) * 32768
	z3 := int32(t.Z1) * int32(int16(rhall)*2)
	z4 := int32(int16((z3 + 32768) / 65536))
	den := int32(t.Z2) + z4
	if den == 0 {
		return 0, false
	}
	out := (z2 - z1) / den

	switch {
	case out > 32767:
		out = 32767
	case out < -32767:
		out = -32767
	}
	return out, true
}
