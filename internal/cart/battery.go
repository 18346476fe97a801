package cart

import (
	"bytes"
	"encoding/gob"
)

// batteryEnvelope wraps a cartridge's external RAM for host persistence. It
// exists so hosts have a container that records the cartridge type
// alongside the RAM bytes, instead of a bare byte slice.
type batteryEnvelope struct {
	CartType byte
	RAM      []byte
}

// EncodeBatteryRAM wraps a cartridge's external RAM into a persistable blob.
func EncodeBatteryRAM(cartType byte, c Cartridge) ([]byte, error) {
	ram := c.ExternalRAM()
	if ram == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(batteryEnvelope{CartType: cartType, RAM: ram}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBatteryRAM restores external RAM from a blob produced by
// EncodeBatteryRAM into the given cartridge.
func DecodeBatteryRAM(blob []byte, c Cartridge) error {
	if len(blob) == 0 {
		return nil
	}
	var env batteryEnvelope
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&env); err != nil {
		return err
	}
	c.LoadExternalRAM(env.RAM)
	return nil
}
