// Package mem implements the NES CPU's unified 16-bit address space: 2 KiB
// of mirrored internal RAM plus a mapper-0 cartridge read path. It is a
// thin collaborator — the interesting behavior lives in the cpu package,
// which borrows the Bus mutably on every access.
package mem

// cart is the subset of cartridge.ROM the bus needs. Declared locally
// (rather than importing the cartridge package directly) so mem has no
// dependency on cartridge's iNES-parsing concerns — it only needs
// something that answers PRG-ROM reads.
type cart interface {
	ReadPRG(addr uint16) byte
}

// ramSize is the NES's internal RAM; addresses up to 0x1FFF mirror it.
const ramSize = 0x0800

// Bus is the CPU's memory: internal RAM plus a borrowed, read-only
// cartridge image. The source stores a back-pointer from the bus to the
// CPU, but never reads it; that reverse link is dead state and is not
// modeled here. The CPU instead holds an exclusive mutable reference to
// the Bus for the duration of a Step.
type Bus struct {
	ram [ramSize]byte
	rom cart // nil until a cartridge is attached
}

// NewBus returns a Bus with zeroed RAM and no cartridge attached.
func NewBus() *Bus {
	return &Bus{}
}

// AttachCartridge connects a mapper-0 image to the 0x4020-0xFFFF window.
func (b *Bus) AttachCartridge(rom cart) {
	b.rom = rom
}

// Read returns the byte at addr. Reads have no side effects in this core,
// so Read and Peek coincide; Peek exists so a richer bus (one with
// side-effecting registers) can later diverge without touching callers
// that only ever want to observe, not consume, a byte (the trace
// formatter).
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr <= 0x1FFF:
		return b.ram[addr%ramSize]
	case addr < 0x4020:
		return 0 // unmapped PPU/APU/IO window
	case b.rom != nil:
		return b.rom.ReadPRG(addr)
	default:
		return 0
	}
}

// Read16 performs two sequential Read calls and combines them little-endian.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return hi<<8 | lo
}

// Peek is semantically identical to Read in this core.
func (b *Bus) Peek(addr uint16) byte { return b.Read(addr) }

// Peek16 is semantically identical to Read16 in this core.
func (b *Bus) Peek16(addr uint16) uint16 { return b.Read16(addr) }

// Write stores data in RAM when addr is within the mirrored RAM window;
// all other writes (unmapped I/O, cartridge space) are silently ignored.
func (b *Bus) Write(addr uint16, data byte) {
	if addr <= 0x1FFF {
		b.ram[addr%ramSize] = data
	}
}
