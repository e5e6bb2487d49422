package vb

import "github.com/golang/glog"

// CCR bits
const (
	linkStatus           = 1 << 1
	linkStart            = 1 << 2
	linkInterruptInhibit = 1 << 7
)

// LinkPort is the communication port on the back of the unit. No peer can be
// attached, so a transfer completes as soon as it's started and receives 0.
// TODO(jyane): Emulate link port interrupt.
type LinkPort struct {
	control         byte
	auxControl      byte
	transmitData    byte
	receiveData     byte
	transfers       int
	warnedInterrupt bool
}

func NewLinkPort() *LinkPort {
	return &LinkPort{}
}

func (l *LinkPort) readControl() byte {
	return l.control | 0x69 // unused bits read as 1
}

func (l *LinkPort) writeControl(data byte) {
	l.control = data &^ (linkStart | linkStatus)
	if data&linkStart != 0 {
		l.transfers++
		l.receiveData = 0
		if data&linkInterruptInhibit == 0 && !l.warnedInterrupt {
			glog.Warningln("Link port interrupts are not emulated.")
			l.warnedInterrupt = true
		}
	}
}

func (l *LinkPort) readAuxControl() byte {
	return l.auxControl | 0x60
}

func (l *LinkPort) writeAuxControl(data byte) {
	l.auxControl = data & 0x9f
}

func (l *LinkPort) readTransmitData() byte {
	return l.transmitData
}

func (l *LinkPort) writeTransmitData(data byte) {
	l.transmitData = data
}

func (l *LinkPort) readReceiveData() byte {
	return l.receiveData
}
