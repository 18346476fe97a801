package cart

import "testing"

func TestLoadROMTooSmall(t *testing.T) {
	if _, err := Load(make([]byte, 16)); err != ErrROMTooSmall {
		t.Fatalf("got err %v want ErrROMTooSmall", err)
	}
}

func TestLoadUnsupportedMBC(t *testing.T) {
	rom := buildROM("TEST", 0xFE, 0x00, 0x00, 2*0x4000)
	if _, err := Load(rom); err != ErrUnsupportedMBC {
		t.Fatalf("got err %v want ErrUnsupportedMBC", err)
	}
}

func TestLoadDispatchesByCartType(t *testing.T) {
	cases := []struct {
		cartType byte
		banks    int
	}{
		{0x00, 2}, {0x01, 4}, {0x05, 4}, {0x0F, 4}, {0x19, 4},
	}
	for _, c := range cases {
		cart, err := Load(buildROM("TEST", c.cartType, 0x00, 0x00, c.banks*0x4000))
		if err != nil {
			t.Fatalf("cartType %#02x: unexpected error %v", c.cartType, err)
		}
		if cart == nil {
			t.Fatalf("cartType %#02x: nil cartridge", c.cartType)
		}
	}
}

func TestBatteryRoundTrip(t *testing.T) {
	rom := buildROM("TEST", 0x01, 0x00, 0x00, 4*0x4000) // MBC1
	cart, err := Load(rom)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cart.Write(0x0000, 0x0A) // enable RAM
	cart.Write(0xA000, 0x7E)

	blob, err := EncodeBatteryRAM(0x01, cart)
	if err != nil {
		t.Fatalf("EncodeBatteryRAM: %v", err)
	}
	if len(blob) == 0 {
		t.Fatalf("expected non-empty battery blob")
	}

	fresh, _ := Load(rom)
	fresh.Write(0x0000, 0x0A)
	if err := DecodeBatteryRAM(blob, fresh); err != nil {
		t.Fatalf("DecodeBatteryRAM: %v", err)
	}
	if got := fresh.Read(0xA000); got != 0x7E {
		t.Fatalf("restored RAM byte got %#02x want 0x7E", got)
	}
}
