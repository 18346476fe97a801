package cpu

import "github.com/kestrelhollow/dmg-core/internal/irq"

// Step executes one unit of work and returns the m-cycles it consumed: a
// pending interrupt dispatch (5), one stalled m-cycle while halted or
// frozen (1), or one decoded instruction.
func (c *CPU) Step() uint8 {
	if c.frozen {
		return 1
	}

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.IME = true
		}
	}

	ic := c.bus.IRQ()

	if c.IME {
		if bit, ok := ic.Highest(); ok {
			return c.serviceInterrupt(ic, bit)
		}
	}

	if c.halted {
		if ic.Pending() != 0 {
			c.halted = false
		} else {
			return 1
		}
	}

	op := c.fetch8()
	return c.execute(op)
}

func (c *CPU) serviceInterrupt(ic *irq.Controller, bit int) uint8 {
	ic.Clear(bit)
	c.IME = false
	c.halted = false
	c.push16(c.PC)
	c.PC = irq.Vector(bit)
	return 5
}

// execute decodes and runs a single primary opcode, returning m-cycles.
func (c *CPU) execute(op byte) uint8 {
	switch op {
	case 0x00: // NOP
		return 1
	case 0x10: // STOP, consumes its mandatory trailing $00
		c.fetch8()
		return 1
	case 0x76: // HALT
		if c.IME {
			c.halted = true
		} else if c.bus.IRQ().Pending() != 0 {
			c.haltBugPending = true
		} else {
			c.halted = true
		}
		return 1

	// 8-bit immediate loads
	case 0x06:
		c.B = c.fetch8()
		return 2
	case 0x0E:
		c.C = c.fetch8()
		return 2
	case 0x16:
		c.D = c.fetch8()
		return 2
	case 0x1E:
		c.E = c.fetch8()
		return 2
	case 0x26:
		c.H = c.fetch8()
		return 2
	case 0x2E:
		c.L = c.fetch8()
		return 2
	case 0x36:
		c.write8(c.getHL(), c.fetch8())
		return 3
	case 0x3E:
		c.A = c.fetch8()
		return 2

	// LD r,r' and LD r,(HL) / LD (HL),r across the full 0x40-0x7F block.
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		d := (op >> 3) & 7
		s := op & 7
		c.setReg8(d, c.reg8(s))
		if d == 6 || s == 6 {
			return 2
		}
		return 1

	// 16-bit immediate loads
	case 0x01:
		c.setBC(c.fetch16())
		return 3
	case 0x11:
		c.setDE(c.fetch16())
		return 3
	case 0x21:
		c.setHL(c.fetch16())
		return 3
	case 0x31:
		c.SP = c.fetch16()
		return 3
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 5

	// LD (BC)/(DE),A and A,(BC)/(DE)
	case 0x02:
		c.write8(c.getBC(), c.A)
		return 2
	case 0x12:
		c.write8(c.getDE(), c.A)
		return 2
	case 0x0A:
		c.A = c.read8(c.getBC())
		return 2
	case 0x1A:
		c.A = c.read8(c.getDE())
		return 2

	// LDI/LDD via HL
	case 0x22:
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 2
	case 0x2A:
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 2
	case 0x32:
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 2
	case 0x3A:
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 2

	// LDH (a8),A / A,(a8) and (C),A / A,(C)
	case 0xE0:
		n := uint16(c.fetch8())
		c.write8(0xFF00+n, c.A)
		return 3
	case 0xF0:
		n := uint16(c.fetch8())
		c.A = c.read8(0xFF00 + n)
		return 3
	case 0xE2:
		c.write8(0xFF00+uint16(c.C), c.A)
		return 2
	case 0xF2:
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 2
	case 0xEA:
		addr := c.fetch16()
		c.write8(addr, c.A)
		return 4
	case 0xFA:
		addr := c.fetch16()
		c.A = c.read8(addr)
		return 4

	// Rotates/flag ops on A
	case 0x07: // RLCA
		cv := (c.A >> 7) & 1
		c.A = (c.A << 1) | cv
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x0F: // RRCA
		cv := c.A & 1
		c.A = (c.A >> 1) | (cv << 7)
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x17: // RLA
		cv := (c.A >> 7) & 1
		cin := byte(0)
		if c.F&flagC != 0 {
			cin = 1
		}
		c.A = (c.A << 1) | cin
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x1F: // RRA
		cv := c.A & 1
		cin := byte(0)
		if c.F&flagC != 0 {
			cin = 1
		}
		c.A = (c.A >> 1) | (cin << 7)
		c.setZNHC(false, false, false, cv == 1)
		return 1
	case 0x27: // DAA
		a := c.A
		cf := c.F&flagC != 0
		if c.F&flagN == 0 {
			if cf || a > 0x99 {
				a += 0x60
				cf = true
			}
			if c.F&flagH != 0 || (a&0x0F) > 9 {
				a += 0x06
			}
		} else {
			if cf {
				a -= 0x60
			}
			if c.F&flagH != 0 {
				a -= 0x06
			}
		}
		c.A = a
		c.setZNHC(c.A == 0, c.F&flagN != 0, false, cf)
		return 1
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (flagZ | flagC)) | flagN | flagH
		return 1
	case 0x37: // SCF
		c.F = (c.F & flagZ) | flagC
		return 1
	case 0x3F: // CCF
		cy := c.F&flagC == 0
		c.F = (c.F & flagZ)
		if cy {
			c.F |= flagC
		}
		return 1

	// INC/DEC r and (HL)
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		idx := (op >> 3) & 7
		old := c.reg8(idx)
		v := old + 1
		c.setReg8(idx, v)
		c.setZNHC(v == 0, false, (old&0x0F) == 0x0F, c.F&flagC != 0)
		return 1
	case 0x34:
		addr := c.getHL()
		old := c.read8(addr)
		v := old + 1
		c.write8(addr, v)
		c.setZNHC(v == 0, false, (old&0x0F) == 0x0F, c.F&flagC != 0)
		return 3
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		idx := (op >> 3) & 7
		old := c.reg8(idx)
		v := old - 1
		c.setReg8(idx, v)
		c.setZNHC(v == 0, true, (old&0x0F) == 0x00, c.F&flagC != 0)
		return 1
	case 0x35:
		addr := c.getHL()
		old := c.read8(addr)
		v := old - 1
		c.write8(addr, v)
		c.setZNHC(v == 0, true, (old&0x0F) == 0x00, c.F&flagC != 0)
		return 3

	// ALU A,r / A,(HL) / A,d8
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		r, z, n, h, cy := c.add8(c.A, c.reg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		r, z, n, h, cy := c.adc8(c.A, c.reg8(op&7), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		r, z, n, h, cy := c.sub8(c.A, c.reg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		r, z, n, h, cy := c.sbc8(c.A, c.reg8(op&7), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		r, z, n, h, cy := c.and8(c.A, c.reg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		r, z, n, h, cy := c.xor8(c.A, c.reg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		r, z, n, h, cy := c.or8(c.A, c.reg8(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		z, n, h, cy := c.cp8(c.A, c.reg8(op&7))
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)

	// ALU A,d8
	case 0xC6:
		r, z, n, h, cy := c.add8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xCE:
		r, z, n, h, cy := c.adc8(c.A, c.fetch8(), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xD6:
		r, z, n, h, cy := c.sub8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xDE:
		r, z, n, h, cy := c.sbc8(c.A, c.fetch8(), c.F&flagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xE6:
		r, z, n, h, cy := c.and8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xEE:
		r, z, n, h, cy := c.xor8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xF6:
		r, z, n, h, cy := c.or8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 2
	case 0xFE:
		z, n, h, cy := c.cp8(c.A, c.fetch8())
		c.setZNHC(z, n, h, cy)
		return 2

	// Jumps/calls/returns
	case 0xC3:
		c.PC = c.fetch16()
		return 4
	case 0xE9:
		c.PC = c.getHL()
		return 1
	case 0x18:
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 3
	case 0x20:
		off := int8(c.fetch8())
		if c.F&flagZ == 0 {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x28:
		off := int8(c.fetch8())
		if c.F&flagZ != 0 {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x30:
		off := int8(c.fetch8())
		if c.F&flagC == 0 {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0x38:
		off := int8(c.fetch8())
		if c.F&flagC != 0 {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 3
		}
		return 2
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 6
	case 0xC9:
		c.PC = c.pop16()
		return 4
	case 0xD9:
		c.PC = c.pop16()
		c.IME = true
		return 4
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 4
	case 0xC4:
		addr := c.fetch16()
		if c.F&flagZ == 0 {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xCC:
		addr := c.fetch16()
		if c.F&flagZ != 0 {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xD4:
		addr := c.fetch16()
		if c.F&flagC == 0 {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xDC:
		addr := c.fetch16()
		if c.F&flagC != 0 {
			c.push16(c.PC)
			c.PC = addr
			return 6
		}
		return 3
	case 0xC0:
		if c.F&flagZ == 0 {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xC8:
		if c.F&flagZ != 0 {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xD0:
		if c.F&flagC == 0 {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xD8:
		if c.F&flagC != 0 {
			c.PC = c.pop16()
			return 5
		}
		return 2
	case 0xC2:
		addr := c.fetch16()
		if c.F&flagZ == 0 {
			c.PC = addr
			return 4
		}
		return 3
	case 0xCA:
		addr := c.fetch16()
		if c.F&flagZ != 0 {
			c.PC = addr
			return 4
		}
		return 3
	case 0xD2:
		addr := c.fetch16()
		if c.F&flagC == 0 {
			c.PC = addr
			return 4
		}
		return 3
	case 0xDA:
		addr := c.fetch16()
		if c.F&flagC != 0 {
			c.PC = addr
			return 4
		}
		return 3

	// 16-bit INC/DEC, ADD HL,rr
	case 0x03:
		c.setBC(c.getBC() + 1)
		return 2
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 2
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 2
	case 0x33:
		c.SP++
		return 2
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 2
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 2
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 2
	case 0x3B:
		c.SP--
		return 2
	case 0x09:
		c.addHL(c.getBC())
		return 2
	case 0x19:
		c.addHL(c.getDE())
		return 2
	case 0x29:
		c.addHL(c.getHL())
		return 2
	case 0x39:
		c.addHL(c.SP)
		return 2

	// Stack/SP ops
	case 0xF8: // LD HL,SP+e8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.setHL(uint16(int32(c.SP) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 3
	case 0xF9:
		c.SP = c.getHL()
		return 2
	case 0xE8: // ADD SP,e8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SP = uint16(int32(c.SP) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 4

	case 0xF3: // DI
		c.IME = false
		c.imeDelay = 0
		return 1
	case 0xFB: // EI
		c.imeDelay = 2
		return 1

	case 0xCB:
		return c.executeCB(c.fetch8())

	// PUSH/POP
	case 0xF5:
		c.push16(c.getAF())
		return 4
	case 0xC5:
		c.push16(c.getBC())
		return 4
	case 0xD5:
		c.push16(c.getDE())
		return 4
	case 0xE5:
		c.push16(c.getHL())
		return 4
	case 0xF1:
		c.setAF(c.pop16())
		return 3
	case 0xC1:
		c.setBC(c.pop16())
		return 3
	case 0xD1:
		c.setDE(c.pop16())
		return 3
	case 0xE1:
		c.setHL(c.pop16())
		return 3

	// The eleven genuinely-undefined DMG opcodes: freeze per the spec's
	// illegal-opcode policy rather than silently treating them as NOP.
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		c.PC--
		c.frozen = true
		return 1

	default:
		// Unreachable: every opcode not covered above is one of the illegal
		// opcodes handled explicitly.
		c.PC--
		c.frozen = true
		return 1
	}
}

// aluCycles returns the m-cycle cost of an ALU A,r8 opcode: 2 when the
// operand is (HL) (encoded as register slot 6), else 1.
func aluCycles(op byte) uint8 {
	if op&7 == 6 {
		return 2
	}
	return 1
}

func (c *CPU) addHL(operand uint16) {
	hl := c.getHL()
	r := uint32(hl) + uint32(operand)
	h := ((hl & 0x0FFF) + (operand & 0x0FFF)) > 0x0FFF
	c.setHL(uint16(r))
	c.setZNHC(c.F&flagZ != 0, false, h, r > 0xFFFF)
}
