// Package trace renders the nestest-compatible trace line for a 6502
// instruction about to execute. It never mutates the Cpu it inspects: every
// operand it needs is recomputed with Bus.Peek, duplicating the relevant
// slice of the addressing resolver's arithmetic in a side-effect-free form.
package trace

import (
	"fmt"

	"gonenes/cpu"
)

// Line renders c's current state (PC pointing at a not-yet-fetched opcode)
// as one nestest-format trace record. Callers wire this into Cpu.Tracer.
func Line(c *cpu.Cpu) string {
	opByte := c.Bus.Peek(c.PC)
	opc := cpu.OpcodeAt(opByte)

	raw := rawBytes(c, opc)
	bytesCol := joinHex(raw)

	prefix := byte(' ')
	if opc.Illegal {
		prefix = '*'
	}
	mne := fmt.Sprintf("%c%s", prefix, opc.Mnemonic.String())

	args := operandString(c, opc)

	return fmt.Sprintf("%04X  %-9s%-4s %-27s A:%02X X:%02X Y:%02X P:%02X SP:%02X",
		c.PC, bytesCol, mne, args, c.A, c.X, c.Y, c.P, c.S)
}

// rawBytes returns the instruction's encoded bytes (opcode plus operand),
// per opc.Length, read without disturbing PC.
func rawBytes(c *cpu.Cpu, opc cpu.Opcode) []byte {
	b := make([]byte, opc.Length)
	for i := range b {
		b[i] = c.Bus.Peek(c.PC + uint16(i))
	}
	return b
}

func joinHex(b []byte) string {
	s := ""
	for i, v := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X", v)
	}
	return s
}

// operandString renders ARGS per the addressing mode's nestest convention.
// Each branch recomputes the same address the real resolver would, using
// Peek so the preview has no observable effect on the Cpu.
func operandString(c *cpu.Cpu, opc cpu.Opcode) string {
	pc := c.PC + 1 // first operand byte, if any

	switch opc.Mode {
	case cpu.Implied:
		return ""

	case cpu.Accumulator:
		return "A"

	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", c.Bus.Peek(pc))

	case cpu.ZeroPage:
		zp := c.Bus.Peek(pc)
		return fmt.Sprintf("$%02X = %02X", zp, c.Bus.Peek(uint16(zp)))

	case cpu.ZeroPageX:
		zp := c.Bus.Peek(pc)
		ea := zp + c.X
		return fmt.Sprintf("$%02X,X @ %02X = %02X", zp, ea, c.Bus.Peek(uint16(ea)))

	case cpu.ZeroPageY:
		zp := c.Bus.Peek(pc)
		ea := zp + c.Y
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", zp, ea, c.Bus.Peek(uint16(ea)))

	case cpu.Relative:
		offset := int8(c.Bus.Peek(pc))
		target := uint16(int32(pc+1) + int32(offset))
		return fmt.Sprintf("$%04X", target)

	case cpu.Absolute:
		addr := c.Bus.Peek16(pc)
		if opc.Mnemonic == cpu.JMP || opc.Mnemonic == cpu.JSR {
			return fmt.Sprintf("$%04X", addr)
		}
		return fmt.Sprintf("$%04X = %02X", addr, c.Bus.Peek(addr))

	case cpu.AbsoluteX:
		base := c.Bus.Peek16(pc)
		ea := base + uint16(c.X)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", base, ea, c.Bus.Peek(ea))

	case cpu.AbsoluteY:
		base := c.Bus.Peek16(pc)
		ea := base + uint16(c.Y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", base, ea, c.Bus.Peek(ea))

	case cpu.Indirect:
		ptr := c.Bus.Peek16(pc)
		target := peekIndirect(c, ptr)
		return fmt.Sprintf("($%04X) = %04X", ptr, target)

	case cpu.IndirectX:
		zp := c.Bus.Peek(pc)
		ea := zp + c.X
		lo := uint16(c.Bus.Peek(uint16(ea)))
		hi := uint16(c.Bus.Peek(uint16(ea + 1)))
		ptr := hi<<8 | lo
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", zp, ea, ptr, c.Bus.Peek(ptr))

	case cpu.IndirectY:
		zp := c.Bus.Peek(pc)
		lo := uint16(c.Bus.Peek(uint16(zp)))
		hi := uint16(c.Bus.Peek(uint16(zp + 1)))
		base := hi<<8 | lo
		ea := base + uint16(c.Y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", zp, base, ea, c.Bus.Peek(ea))

	default:
		return ""
	}
}

// peekIndirect mirrors the JMP (Indirect) page-boundary bug, read-only.
func peekIndirect(c *cpu.Cpu, ptr uint16) uint16 {
	lo := uint16(c.Bus.Peek(ptr))
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr &^ 0x00FF
	} else {
		hiAddr = ptr + 1
	}
	hi := uint16(c.Bus.Peek(hiAddr))
	return hi<<8 | lo
}
