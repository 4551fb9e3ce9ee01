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

package datapath

import "fmt"

// EventKind classifies switch originated events.
type EventKind uint8

const (
	EventHandshake EventKind = iota + 1
	EventPacketIn
	EventFlowRemoved
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventHandshake:
		return "handshake"
	case EventPacketIn:
		return "packet_in"
	case EventFlowRemoved:
		return "flow_removed"
	case EventDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Event is a switch originated event. Exactly one of PacketIn and FlowRemoved
// is set for the corresponding kinds; handshake and disconnect events only
// carry the switch.
type Event struct {
	Kind        EventKind
	Switch      Switch
	PacketIn    *PacketIn
	FlowRemoved *FlowRemoved
}

// PacketIn is a frame that did not match any specific rule.
type PacketIn struct {
	InPort   Port
	BufferID uint32
	// Data holds the frame, starting with the Ethernet header.
	Data []byte
}

// RemovalReason is the reason reported by the switch for a rule removal.
type RemovalReason uint8

// Removal reasons, numbered as on the wire.
const (
	RemovedIdleTimeout RemovalReason = iota
	RemovedHardTimeout
	RemovedDelete
	RemovedGroupDelete
)

func (r RemovalReason) String() string {
	switch r {
	case RemovedIdleTimeout:
		return "idle_timeout"
	case RemovedHardTimeout:
		return "hard_timeout"
	case RemovedDelete:
		return "delete"
	case RemovedGroupDelete:
		return "group_delete"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// FlowRemoved reports that a rule installed with the send flow removed flag
// left the switch flow table.
type FlowRemoved struct {
	Cookie   uint64
	Priority uint16
	Reason   RemovalReason
	Match    Match
}
