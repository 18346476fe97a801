// Package cart implements DMG cartridge header parsing and the memory bank
// controllers (ROM-only, MBC1, MBC2, MBC3, MBC5) that sit behind $0000-$7FFF
// and $A000-$BFFF on the bus.
package cart

import "errors"

// ErrROMTooSmall is returned by Load when the image is too short to contain
// a valid header ($0150 bytes).
var ErrROMTooSmall = errors.New("cart: ROM too small to contain header")

// ErrUnsupportedMBC is returned by Load when the header's cartridge type
// byte ($0147) names a controller this core does not implement.
var ErrUnsupportedMBC = errors.New("cart: unsupported cartridge type")

// ErrOutOfRangeBankAccess indicates an implementation fault rather than a
// malformed ROM: a bank-select register produced an offset outside the
// controller's allocated RAM. Every bank register is masked to its
// architectural bit width before reaching ramIndex, so this should be
// unreachable; it panics instead of threading an error through every
// Read/Write call, per Go's convention for programmer errors.
var ErrOutOfRangeBankAccess = errors.New("cart: bank-select register produced an out-of-range RAM offset")

// ramIndex computes a banked external-RAM offset and panics with
// ErrOutOfRangeBankAccess if the bank register's value would index outside
// the allocated ram slice.
func ramIndex(ram []byte, bank int, addr, base uint16) int {
	off := bank*0x2000 + int(addr-base)
	if off < 0 || off >= len(ram) {
		panic(ErrOutOfRangeBankAccess)
	}
	return off
}

// Cartridge is the interface the bus drives for both ROM and external-RAM
// accesses. Write reports whether it touched battery-backed RAM, so a host
// can decide when to persist ExternalRAM().
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte) (dirty bool)

	// ExternalRAM returns the cartridge's battery-backed RAM, or nil if the
	// controller has none. LoadExternalRAM restores a previously saved copy;
	// lengths must match what ExternalRAM would return.
	ExternalRAM() []byte
	LoadExternalRAM(data []byte)
}

// Load parses a ROM image's header and constructs the matching Cartridge.
func Load(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	// External RAM is always overallocated to the controller's architectural
	// maximum rather than trusting header byte $0149, which some ROMs
	// misreport.
	switch h.CartType {
	case 0x00:
		return newROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return newMBC1(rom), nil
	case 0x05, 0x06:
		return newMBC2(rom), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return newMBC3(rom), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return newMBC5(rom), nil
	default:
		return nil, ErrUnsupportedMBC
	}
}
