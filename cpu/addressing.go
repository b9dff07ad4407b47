package cpu

// resolveAddress computes the effective address for mode, advancing PC past
// the instruction's operand bytes and setting BoundsCrossed when the
// computed address lands on a different page than its un-indexed base (the
// condition that, for the modes spec.md's opcode table marks PageCross,
// adds one clock to the instruction).
//
// The return value is meaningless for Implied and Accumulator; callers
// switch on Opcode.Mode, not on the address, to decide whether to touch
// memory at all.
func (c *Cpu) resolveAddress(mode AddressingMode) uint16 {
	switch mode {
	case Implied, Accumulator:
		return 0

	case Immediate:
		addr := c.PC
		c.PC++
		return addr

	case ZeroPage:
		addr := uint16(c.Bus.Read(c.PC))
		c.PC++
		return addr

	case ZeroPageX:
		base := c.Bus.Read(c.PC)
		c.PC++
		return uint16(base + c.X)

	case ZeroPageY:
		base := c.Bus.Read(c.PC)
		c.PC++
		return uint16(base + c.Y)

	case Absolute:
		addr := c.Bus.Read16(c.PC)
		c.PC += 2
		return addr

	case AbsoluteX:
		base := c.Bus.Read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.X)
		c.BoundsCrossed = pageOf(base) != pageOf(addr)
		return addr

	case AbsoluteY:
		base := c.Bus.Read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.Y)
		c.BoundsCrossed = pageOf(base) != pageOf(addr)
		return addr

	case Indirect:
		ptr := c.Bus.Read16(c.PC)
		c.PC += 2
		return c.readIndirect(ptr)

	case IndirectX: // (zp,X)
		base := c.Bus.Read(c.PC)
		c.PC++
		ptr := base + c.X
		lo := uint16(c.Bus.Read(uint16(ptr)))
		hi := uint16(c.Bus.Read(uint16(ptr + 1)))
		return hi<<8 | lo

	case IndirectY: // (zp),Y
		base := c.Bus.Read(c.PC)
		c.PC++
		lo := uint16(c.Bus.Read(uint16(base)))
		hi := uint16(c.Bus.Read(uint16(base + 1)))
		ptr := hi<<8 | lo
		addr := ptr + uint16(c.Y)
		c.BoundsCrossed = pageOf(ptr) != pageOf(addr)
		return addr

	case Relative:
		offset := int8(c.Bus.Read(c.PC))
		c.PC++
		// The target and the page-cross test are both relative to PC after
		// the operand fetch (the address of the next instruction), the
		// conventional form; branch then jumps to addr unchanged.
		base := c.PC
		addr := uint16(int32(base) + int32(offset))
		c.BoundsCrossed = pageOf(base) != pageOf(addr)
		return addr

	default:
		return 0
	}
}

// pageOf returns the high byte of addr, used to detect page crossings.
func pageOf(addr uint16) uint16 { return addr & 0xFF00 }

// readIndirect implements JMP (Indirect)'s page-boundary bug: if the
// pointer's low byte is 0xFF, the high byte of the target is fetched from
// the start of the same page rather than the next one.
func (c *Cpu) readIndirect(ptr uint16) uint16 {
	lo := uint16(c.Bus.Read(ptr))
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr &^ 0x00FF
	} else {
		hiAddr = ptr + 1
	}
	hi := uint16(c.Bus.Read(hiAddr))
	return hi<<8 | lo
}
