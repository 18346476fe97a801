package cpu

// executeCB decodes one CB-prefixed opcode. The byte splits into an operand
// register (bits 0-2, the same B,C,D,E,H,L,(HL),A encoding as the primary
// table), an operation group (bits 6-7), and a bit index or shift variant
// (bits 3-5).
func (c *CPU) executeCB(cb byte) uint8 {
	reg := cb & 7
	opg := (cb >> 6) & 3
	y := (cb >> 3) & 7

	switch opg {
	case 0: // rotate/shift/swap
		v := c.reg8(reg)
		var cv byte
		switch y {
		case 0: // RLC
			cv = (v >> 7) & 1
			v = (v << 1) | cv
		case 1: // RRC
			cv = v & 1
			v = (v >> 1) | (cv << 7)
		case 2: // RL
			cv = (v >> 7) & 1
			cin := byte(0)
			if c.F&flagC != 0 {
				cin = 1
			}
			v = (v << 1) | cin
		case 3: // RR
			cv = v & 1
			cin := byte(0)
			if c.F&flagC != 0 {
				cin = 1
			}
			v = (v >> 1) | (cin << 7)
		case 4: // SLA
			cv = (v >> 7) & 1
			v <<= 1
		case 5: // SRA
			cv = v & 1
			v = (v >> 1) | (v & 0x80)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
			cv = 0
		case 7: // SRL
			cv = v & 1
			v >>= 1
		}
		c.setReg8(reg, v)
		c.setZNHC(v == 0, false, false, cv == 1)
		if reg == 6 {
			return 4
		}
		return 2
	case 1: // BIT y,r
		v := c.reg8(reg)
		bit := (v >> y) & 1
		c.F = (c.F & flagC) | flagH
		if bit == 0 {
			c.F |= flagZ
		}
		if reg == 6 {
			return 3
		}
		return 2
	case 2: // RES y,r
		v := c.reg8(reg) &^ (1 << y)
		c.setReg8(reg, v)
		if reg == 6 {
			return 4
		}
		return 2
	default: // SET y,r
		v := c.reg8(reg) | (1 << y)
		c.setReg8(reg, v)
		if reg == 6 {
			return 4
		}
		return 2
	}
}
