package chip8

// InstructionSize is the width of every CHIP-8 instruction word in bytes.
const InstructionSize = 2

// execute dispatches a decoded instruction. By the time execute is called,
// m.pc already points past the fetched word (step advances it during
// fetch); handlers that jump overwrite m.pc outright, and conditional
// skips add one more InstructionSize on top.
func (m *Machine) execute(d Decoded) error {
	switch d.Hi {
	case 0x0:
		switch d.Op {
		case 0x00E0:
			return m.opCLS()
		case 0x00EE:
			return m.opRET()
		default:
			return m.opSYS() // 0nnn, ignored
		}

	case 0x1:
		return m.opJP(d)
	case 0x2:
		return m.opCALL(d)
	case 0x3:
		return m.opSEvk(d)
	case 0x4:
		return m.opSNEvk(d)
	case 0x5:
		if d.N != 0 {
			return m.invalid(d)
		}
		return m.opSEvv(d)
	case 0x6:
		return m.opLDvk(d)
	case 0x7:
		return m.opADDvk(d)

	case 0x8:
		switch d.N {
		case 0x0:
			return m.opLDvv(d)
		case 0x1:
			return m.opOR(d)
		case 0x2:
			return m.opAND(d)
		case 0x3:
			return m.opXOR(d)
		case 0x4:
			return m.opADDvv(d)
		case 0x5:
			return m.opSUB(d)
		case 0x6:
			return m.opSHR(d)
		case 0x7:
			return m.opSUBN(d)
		case 0xE:
			return m.opSHL(d)
		default:
			return m.invalid(d)
		}

	case 0x9:
		if d.N != 0 {
			return m.invalid(d)
		}
		return m.opSNEvv(d)

	case 0xA:
		return m.opLDI(d)
	case 0xB:
		return m.opJPV0(d)
	case 0xC:
		return m.opRND(d)
	case 0xD:
		return m.opDRW(d)

	case 0xE:
		switch d.KK {
		case 0x9E:
			return m.opSKP(d)
		case 0xA1:
			return m.opSKNP(d)
		default:
			return m.invalid(d)
		}

	case 0xF:
		switch d.KK {
		case 0x07:
			return m.opLDvDT(d)
		case 0x0A:
			return m.opLDvK(d)
		case 0x15:
			return m.opLDDTv(d)
		case 0x18:
			return m.opLDSTv(d)
		case 0x1E:
			return m.opADDIv(d)
		case 0x29:
			return m.opLDF(d)
		case 0x33:
			return m.opLDB(d)
		case 0x55:
			return m.opLDIv(d)
		case 0x65:
			return m.opLDvI(d)
		default:
			return m.invalid(d)
		}
	}

	return m.invalid(d)
}

func (m *Machine) invalid(d Decoded) error {
	// m.pc already advanced past the offending word; report where it was
	// fetched from, not where we'd land next.
	return &InvalidInstructionError{PC: m.pc - InstructionSize, Opcode: d.Op}
}

// 00E0 - CLS
func (m *Machine) opCLS() error {
	m.fb.Clear()
	m.drawDirty = true
	return nil
}

// 00EE - RET
func (m *Machine) opRET() error {
	addr, err := m.st.pop()
	if err != nil {
		return err
	}

	m.pc = addr
	return nil
}

// 0nnn - SYS, treated as a no-op.
func (m *Machine) opSYS() error {
	return nil
}

// 1nnn - JP nnn
func (m *Machine) opJP(d Decoded) error {
	m.pc = d.NNN
	return nil
}

// 2nnn - CALL nnn
func (m *Machine) opCALL(d Decoded) error {
	if err := m.st.push(m.pc); err != nil {
		return err
	}

	m.pc = d.NNN
	return nil
}

// 3xkk - SE Vx, kk
func (m *Machine) opSEvk(d Decoded) error {
	if m.regs[d.X] == d.KK {
		m.pc += InstructionSize
	}
	return nil
}

// 4xkk - SNE Vx, kk
func (m *Machine) opSNEvk(d Decoded) error {
	if m.regs[d.X] != d.KK {
		m.pc += InstructionSize
	}
	return nil
}

// 5xy0 - SE Vx, Vy
func (m *Machine) opSEvv(d Decoded) error {
	if m.regs[d.X] == m.regs[d.Y] {
		m.pc += InstructionSize
	}
	return nil
}

// 6xkk - LD Vx, kk
func (m *Machine) opLDvk(d Decoded) error {
	m.regs[d.X] = d.KK
	return nil
}

// 7xkk - ADD Vx, kk (mod 256, VF unchanged)
func (m *Machine) opADDvk(d Decoded) error {
	m.regs[d.X] += d.KK
	return nil
}

// 8xy0 - LD Vx, Vy
func (m *Machine) opLDvv(d Decoded) error {
	m.regs[d.X] = m.regs[d.Y]
	return nil
}

// 8xy1 - OR Vx, Vy
func (m *Machine) opOR(d Decoded) error {
	m.regs[d.X] |= m.regs[d.Y]
	return nil
}

// 8xy2 - AND Vx, Vy
func (m *Machine) opAND(d Decoded) error {
	m.regs[d.X] &= m.regs[d.Y]
	return nil
}

// 8xy3 - XOR Vx, Vy
func (m *Machine) opXOR(d Decoded) error {
	m.regs[d.X] ^= m.regs[d.Y]
	return nil
}

// 8xy4 - ADD Vx, Vy, with carry into VF
func (m *Machine) opADDvv(d Decoded) error {
	x, y := m.regs[d.X], m.regs[d.Y]
	sum := uint16(x) + uint16(y)

	m.regs[d.X] = uint8(sum)
	if sum > 0xFF {
		m.regs[FlagRegister] = 1
	} else {
		m.regs[FlagRegister] = 0
	}
	return nil
}

// 8xy5 - SUB Vx, Vy; VF = 1 iff no borrow (Vx >= Vy)
func (m *Machine) opSUB(d Decoded) error {
	x, y := m.regs[d.X], m.regs[d.Y]

	m.regs[d.X] = x - y
	if x >= y {
		m.regs[FlagRegister] = 1
	} else {
		m.regs[FlagRegister] = 0
	}
	return nil
}

// 8xy6 - SHR Vx; VF = Vx&1 (pre-shift), Vx >>= 1
func (m *Machine) opSHR(d Decoded) error {
	x := m.regs[d.X]

	m.regs[FlagRegister] = x & 1
	m.regs[d.X] = x >> 1
	return nil
}

// 8xy7 - SUBN Vx, Vy; Vx = Vy - Vx, VF = 1 iff no borrow (Vy >= Vx)
func (m *Machine) opSUBN(d Decoded) error {
	x, y := m.regs[d.X], m.regs[d.Y]

	m.regs[d.X] = y - x
	if y >= x {
		m.regs[FlagRegister] = 1
	} else {
		m.regs[FlagRegister] = 0
	}
	return nil
}

// 8xyE - SHL Vx; VF = (Vx>>7)&1 (pre-shift), Vx <<= 1
func (m *Machine) opSHL(d Decoded) error {
	x := m.regs[d.X]

	m.regs[FlagRegister] = (x >> 7) & 1
	m.regs[d.X] = x << 1
	return nil
}

// 9xy0 - SNE Vx, Vy
func (m *Machine) opSNEvv(d Decoded) error {
	if m.regs[d.X] != m.regs[d.Y] {
		m.pc += InstructionSize
	}
	return nil
}

// Annn - LD I, nnn
func (m *Machine) opLDI(d Decoded) error {
	m.index = d.NNN
	return nil
}

// Bnnn - JP V0, nnn
func (m *Machine) opJPV0(d Decoded) error {
	m.pc = d.NNN + uint16(m.regs[0])
	return nil
}

// Cxkk - RND Vx, kk
func (m *Machine) opRND(d Decoded) error {
	m.regs[d.X] = m.rand.Uint8() & d.KK
	return nil
}

// Dxyn - DRW Vx, Vy, n
func (m *Machine) opDRW(d Decoded) error {
	end := int(m.index) + int(d.N)
	if end > MemorySize {
		return ErrOutOfBounds
	}

	sprite := m.mem[m.index:end]
	x, y := m.regs[d.X], m.regs[d.Y]

	collision := m.fb.Draw(x, y, sprite)
	if collision {
		m.regs[FlagRegister] = 1
	} else {
		m.regs[FlagRegister] = 0
	}

	m.drawDirty = true
	return nil
}

// Ex9E - SKP Vx
func (m *Machine) opSKP(d Decoded) error {
	if m.kp.IsPressed(Key(m.regs[d.X])) {
		m.pc += InstructionSize
	}
	return nil
}

// ExA1 - SKNP Vx
func (m *Machine) opSKNP(d Decoded) error {
	if !m.kp.IsPressed(Key(m.regs[d.X])) {
		m.pc += InstructionSize
	}
	return nil
}

// Fx07 - LD Vx, DT
func (m *Machine) opLDvDT(d Decoded) error {
	m.regs[d.X] = m.delay.get(timeNow())
	return nil
}

// Fx0A - LD Vx, K; blocks until a key is pressed.
func (m *Machine) opLDvK(d Decoded) error {
	key, ok := m.kp.WaitForPress()
	if !ok {
		// Cancelled: leave Vx untouched and rewind PC so that, were the
		// machine ever resumed, it would retry this instruction.
		m.pc -= InstructionSize
		return nil
	}

	m.regs[d.X] = uint8(key)
	return nil
}

// Fx15 - LD DT, Vx
func (m *Machine) opLDDTv(d Decoded) error {
	m.delay.set(timeNow(), m.regs[d.X])
	return nil
}

// Fx18 - LD ST, Vx
func (m *Machine) opLDSTv(d Decoded) error {
	m.sound.set(timeNow(), m.regs[d.X])
	return nil
}

// Fx1E - ADD I, Vx (wraps at 0x10000; CHIP-8 does not define a carry flag
// for this instruction, so VF is left untouched)
func (m *Machine) opADDIv(d Decoded) error {
	m.index += uint16(m.regs[d.X])
	return nil
}

// Fx29 - LD F, Vx
func (m *Machine) opLDF(d Decoded) error {
	m.index = FontBase(m.regs[d.X])
	return nil
}

// Fx33 - LD B, Vx
func (m *Machine) opLDB(d Decoded) error {
	v := m.regs[d.X]

	end := int(m.index) + 2
	if end >= MemorySize {
		return ErrOutOfBounds
	}

	m.mem[m.index] = v / 100
	m.mem[m.index+1] = (v / 10) % 10
	m.mem[m.index+2] = v % 10
	return nil
}

// Fx55 - LD [I], Vx
func (m *Machine) opLDIv(d Decoded) error {
	end := int(m.index) + int(d.X)
	if end >= MemorySize {
		return ErrOutOfBounds
	}

	for i := uint8(0); i <= d.X; i++ {
		m.mem[m.index+uint16(i)] = m.regs[i]
	}
	return nil
}

// Fx65 - LD Vx, [I]
func (m *Machine) opLDvI(d Decoded) error {
	end := int(m.index) + int(d.X)
	if end >= MemorySize {
		return ErrOutOfBounds
	}

	for i := uint8(0); i <= d.X; i++ {
		m.regs[i] = m.mem[m.index+uint16(i)]
	}
	return nil
}
