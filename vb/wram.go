package vb

const WramSize = 64 * 1024

// Wram is the console's working RAM, mirrored every 64 KiB.
type Wram struct {
	data [WramSize]byte
}

func NewWram() *Wram {
	return &Wram{}
}

func (w *Wram) readByte(address uint32) byte {
	return w.data[address&(WramSize-1)]
}

func (w *Wram) writeByte(address uint32, data byte) {
	w.data[address&(WramSize-1)] = data
}

func (w *Wram) readHalfword(address uint32) uint16 {
	address = address & (WramSize - 1) &^ 1
	return uint16(w.data[address]) | uint16(w.data[address+1])<<8
}

func (w *Wram) writeHalfword(address uint32, data uint16) {
	address = address & (WramSize - 1) &^ 1
	w.data[address] = byte(data)
	w.data[address+1] = byte(data >> 8)
}
