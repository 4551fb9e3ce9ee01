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

// Package session keeps the per-switch state learned by the controller: the
// link address to port table and the cache of installed flow rules.
//
// All state is owned by a Registry keyed by datapath id. Callers never hold
// references to the tables themselves; every mutation goes through the
// Registry methods.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// DefaultMACTableSize is the default capacity of the per-switch link address
// table.
const DefaultMACTableSize = 4096

// State is the lifecycle state of a switch session.
type State uint8

const (
	// Connecting is the state of a session until the fallback rule is
	// installed.
	Connecting State = iota
	// FallbackInstalled is the state after the fallback rule was installed.
	FallbackInstalled
	// Active is the state in which frames are processed.
	Active
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case FallbackInstalled:
		return "fallback_installed"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FlowKey identifies a per-flow rule on a switch.
type FlowKey struct {
	DPID   datapath.DPID
	InPort datapath.Port
	Src    datapath.MAC
	Dst    datapath.MAC
}

func (k FlowKey) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", k.DPID, k.InPort, k.Src, k.Dst)
}

// FlowRecord describes a rule the controller believes to be installed.
type FlowRecord struct {
	Key         FlowKey
	Cookie      uint64
	Priority    uint16
	HardTimeout time.Duration
	OutPort     datapath.Port
	InstalledAt time.Time
}

// Session is the state of one switch.
type Session struct {
	dpid datapath.DPID

	mu           sync.Mutex
	state        State
	disconnected bool
	// owner is the control channel of the current connection.
	owner datapath.Switch
	macs         *arc.ARCCache[datapath.MAC, datapath.Port]
	flows        map[FlowKey]FlowRecord
}

func newSession(dpid datapath.DPID, macTableSize int) *Session {
	return &Session{
		dpid:  dpid,
		state: Connecting,
		macs:  newMACTable(macTableSize),
		flows: make(map[FlowKey]FlowRecord),
	}
}

// DPID returns the datapath id of the switch.
func (s *Session) DPID() datapath.DPID {
	return s.dpid
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the session to state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Connected indicates whether the control channel of the switch is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disconnected
}

// Info is a point in time snapshot of a session.
type Info struct {
	DPID        datapath.DPID
	State       State
	Connected   bool
	LearnedMACs int
	Flows       []FlowRecord
}

func (s *Session) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		DPID:        s.dpid,
		State:       s.state,
		Connected:   !s.disconnected,
		LearnedMACs: s.macs.Len(),
		Flows:       sortedFlows(s.flows),
	}
}

func sortedFlows(m map[FlowKey]FlowRecord) []FlowRecord {
	flows := make([]FlowRecord, 0, len(m))
	for _, rec := range m {
		flows = append(flows, rec)
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Cookie < flows[j].Cookie })
	return flows
}

func newMACTable(size int) *arc.ARCCache[datapath.MAC, datapath.Port] {
	macs, err := arc.NewARC[datapath.MAC, datapath.Port](size)
	if err != nil {
		// The size is checked in NewRegistry.
		panic(serrors.Wrap("creating link address table", err, "size", size))
	}
	return macs
}
