// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package ledger_concordium

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// Channel is the HID channel used by Ledger devices.
	Channel    uint16 = 0x0101
	PacketSize        = 64

	tagAPDU = 0x05
	// channel(2) tag(1) sequence(2)
	packetHeaderSize = 5
	// The first packet also carries the total length.
	firstHeaderSize = packetHeaderSize + 2
)

var (
	ErrPacketSize         = errors.New("ledger: packet size too small")
	ErrCommandTooLong     = errors.New("ledger: command exceeds 65535 bytes")
	ErrShortPacket        = errors.New("ledger: packet shorter than its header")
	ErrUnexpectedChannel  = errors.New("ledger: unexpected channel")
	ErrUnexpectedTag      = errors.New("ledger: unexpected tag")
	ErrUnexpectedSequence = errors.New("ledger: unexpected sequence number")
	ErrIncompleteResponse = errors.New("ledger: incomplete response")
)

// WrapCommandAPDU splits a command into HID packets of packetSize bytes:
//
//	channel(2) | tag 0x05 | sequence(2) | [total length(2), first packet only] | data
//
// The last packet is zero padded.
func WrapCommandAPDU(channel uint16, command []byte, packetSize int) ([][]byte, error) {
	if packetSize <= firstHeaderSize {
		return nil, ErrPacketSize
	}
	if len(command) > math.MaxUint16 {
		return nil, ErrCommandTooLong
	}

	var packets [][]byte
	rest := command
	for seq := 0; seq == 0 || len(rest) > 0; seq++ {
		packet := make([]byte, packetSize)
		binary.BigEndian.PutUint16(packet[0:2], channel)
		packet[2] = tagAPDU
		binary.BigEndian.PutUint16(packet[3:5], uint16(seq))

		offset := packetHeaderSize
		if seq == 0 {
			binary.BigEndian.PutUint16(packet[5:7], uint16(len(command)))
			offset = firstHeaderSize
		}
		n := copy(packet[offset:], rest)
		rest = rest[n:]
		packets = append(packets, packet)
	}
	return packets, nil
}

// ResponseAssembler rebuilds a response from HID packets received in order.
type ResponseAssembler struct {
	channel uint16
	seq     uint16
	total   int
	started bool
	buf     []byte
}

func NewResponseAssembler(channel uint16) *ResponseAssembler {
	return &ResponseAssembler{channel: channel}
}

// Add consumes the next packet and reports whether the response is complete.
// Padding after the announced length is dropped.
func (a *ResponseAssembler) Add(packet []byte) (bool, error) {
	if len(packet) < packetHeaderSize {
		return false, ErrShortPacket
	}
	if ch := binary.BigEndian.Uint16(packet[0:2]); ch != a.channel {
		return false, fmt.Errorf("%w: 0x%04x", ErrUnexpectedChannel, ch)
	}
	if packet[2] != tagAPDU {
		return false, fmt.Errorf("%w: 0x%02x", ErrUnexpectedTag, packet[2])
	}
	if seq := binary.BigEndian.Uint16(packet[3:5]); seq != a.seq {
		return false, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedSequence, seq, a.seq)
	}

	data := packet[packetHeaderSize:]
	if !a.started {
		if len(packet) < firstHeaderSize {
			return false, ErrShortPacket
		}
		a.total = int(binary.BigEndian.Uint16(packet[5:7]))
		a.buf = make([]byte, 0, a.total)
		a.started = true
		data = packet[firstHeaderSize:]
	}
	a.seq++

	if missing := a.total - len(a.buf); len(data) > missing {
		data = data[:missing]
	}
	a.buf = append(a.buf, data...)
	return a.Done(), nil
}

// Done reports whether the announced length has been received.
func (a *ResponseAssembler) Done() bool {
	return a.started && len(a.buf) == a.total
}

// Response returns the reassembled response, or nil before Done.
func (a *ResponseAssembler) Response() []byte {
	if !a.Done() {
		return nil
	}
	return a.buf
}

// UnwrapResponseAPDU reassembles a complete response from its packets.
func UnwrapResponseAPDU(channel uint16, packets [][]byte) ([]byte, error) {
	a := NewResponseAssembler(channel)
	for _, packet := range packets {
		done, err := a.Add(packet)
		if err != nil {
			return nil, err
		}
		if done {
			return a.Response(), nil
		}
	}
	return nil, ErrIncompleteResponse
}
