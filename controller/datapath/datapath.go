// Copyright 2026 The flowgate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datapath models the switches programmed by the controller: their
// identifiers, ports and link addresses, the rules and packet-outs sent to
// them and the events they report.
package datapath

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// ErrClosed is returned when writing to a switch whose control channel is
// already closed.
var ErrClosed = serrors.New("datapath closed")

// DPID is the 64-bit datapath identifier of a switch.
type DPID uint64

// String formats the DPID as eight colon separated hex octets.
func (d DPID) String() string {
	var b strings.Builder
	for i := 7; i >= 0; i-- {
		fmt.Fprintf(&b, "%02x", byte(d>>(8*i)))
		if i > 0 {
			b.WriteByte(':')
		}
	}
	return b.String()
}

// DPIDFromBytes builds a DPID from its big-endian wire representation. Inputs
// shorter than eight bytes are treated as left padded with zeros.
func DPIDFromBytes(raw []byte) (DPID, error) {
	if len(raw) > 8 {
		return 0, serrors.New("datapath id too long", "len", len(raw))
	}
	var d DPID
	for _, b := range raw {
		d = d<<8 | DPID(b)
	}
	return d, nil
}

// Port is a switch-local interface number.
type Port uint32

// Reserved ports.
const (
	PortFlood      Port = 0xfffffffb
	PortController Port = 0xfffffffd
	PortAny        Port = 0xffffffff
)

func (p Port) String() string {
	switch p {
	case PortFlood:
		return "flood"
	case PortController:
		return "controller"
	case PortAny:
		return "any"
	default:
		return fmt.Sprintf("%d", uint32(p))
	}
}

// NoBuffer is the buffer id of a frame that is not buffered on the switch.
const NoBuffer uint32 = 0xffffffff

// MAC is a comparable 48-bit link address.
type MAC [6]byte

// MACFromHardwareAddr converts a net.HardwareAddr. Only 48-bit addresses are
// accepted.
func MACFromHardwareAddr(addr net.HardwareAddr) (MAC, error) {
	var m MAC
	if len(addr) != len(m) {
		return m, serrors.New("invalid link address length", "len", len(addr))
	}
	copy(m[:], addr)
	return m, nil
}

// MustParseMAC parses s and panics on error. Meant for tests and constants.
func MustParseMAC(s string) MAC {
	hw, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	m, err := MACFromHardwareAddr(hw)
	if err != nil {
		panic(err)
	}
	return m
}

// HardwareAddr returns a copy of the address as net.HardwareAddr.
func (m MAC) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), m[:]...))
}

func (m MAC) String() string {
	return m.HardwareAddr().String()
}

// Match selects the frames a rule applies to. A wildcard match ignores all
// other fields.
type Match struct {
	Wildcard bool
	InPort   Port
	Src      MAC
	Dst      MAC
}

// MatchAll returns the wildcard match.
func MatchAll() Match {
	return Match{Wildcard: true}
}

// Rule is a forwarding rule to be installed on a switch. Matching frames are
// output on OutPort. A zero HardTimeout installs a permanent rule.
type Rule struct {
	Match       Match
	Priority    uint16
	Cookie      uint64
	HardTimeout time.Duration
	OutPort     Port
	// MaxLen is the number of bytes sent to the controller when OutPort is
	// PortController.
	MaxLen uint16
	// SendFlowRemoved asks the switch to notify the controller when the
	// rule is removed.
	SendFlowRemoved bool
}

// PacketOut instructs a switch to forward a single frame. Buffered frames are
// referenced by BufferID and carry no Data.
type PacketOut struct {
	BufferID uint32
	InPort   Port
	OutPort  Port
	Data     []byte
}

// Buffered indicates whether the frame is held in a switch buffer.
func (p PacketOut) Buffered() bool {
	return p.BufferID != NoBuffer
}

// Switch is the controller side of a switch control channel.
type Switch interface {
	// ID returns the datapath id learned during the handshake.
	ID() DPID
	// InstallRule adds the rule to the switch flow table.
	InstallRule(rule Rule) error
	// SendPacketOut forwards one frame through the switch.
	SendPacketOut(pkt PacketOut) error
}
