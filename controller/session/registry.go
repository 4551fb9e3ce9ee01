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

package session

import (
	"sort"
	"sync"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// Registry holds the sessions of all switches that ever connected. It is safe
// for concurrent use.
type Registry struct {
	macTableSize int

	mu       sync.RWMutex
	sessions map[datapath.DPID]*Session
}

// NewRegistry creates a registry whose sessions learn at most macTableSize
// link addresses each.
func NewRegistry(macTableSize int) (*Registry, error) {
	if macTableSize <= 0 {
		return nil, serrors.New("link address table size must be positive",
			"size", macTableSize)
	}
	return &Registry{
		macTableSize: macTableSize,
		sessions:     make(map[datapath.DPID]*Session),
	}, nil
}

// EnsureSession returns the session of dpid, creating it if necessary.
func (r *Registry) EnsureSession(dpid datapath.DPID) *Session {
	r.mu.RLock()
	s, ok := r.sessions[dpid]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[dpid]; ok {
		return s
	}
	s = newSession(dpid, r.macTableSize)
	r.sessions[dpid] = s
	return s
}

// Session returns the session of dpid if it exists.
func (r *Registry) Session(dpid datapath.DPID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[dpid]
	return s, ok
}

// Reset prepares the session of a (re)connecting switch: the link address
// table starts empty and the state goes back to Connecting. owner becomes the
// control channel of the session. Flow records are retained.
func (r *Registry) Reset(dpid datapath.DPID, owner datapath.Switch) *Session {
	s := r.EnsureSession(dpid)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.macs = newMACTable(r.macTableSize)
	s.state = Connecting
	s.disconnected = false
	s.owner = owner
	return s
}

// Learn records that mac was seen on port. A previous entry for the same
// address is overwritten.
func (r *Registry) Learn(dpid datapath.DPID, mac datapath.MAC, port datapath.Port) {
	s := r.EnsureSession(dpid)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.macs.Add(mac, port)
}

// LookupPort returns the port mac was last seen on.
func (r *Registry) LookupPort(dpid datapath.DPID, mac datapath.MAC) (datapath.Port, bool) {
	s, ok := r.Session(dpid)
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.macs.Get(mac)
}

// Disconnect marks the session of dpid as disconnected if owner is its
// current control channel. It reports whether the session was marked; the
// disconnect of a connection that was already replaced by a reconnect is
// ignored. Nothing is purged.
func (r *Registry) Disconnect(dpid datapath.DPID, owner datapath.Switch) bool {
	s, ok := r.Session(dpid)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner != owner {
		return false
	}
	s.disconnected = true
	return true
}

// ActiveCount returns the number of connected switches whose session is
// Active.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.sessions {
		s.mu.Lock()
		if !s.disconnected && s.state == Active {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Flow returns the record stored for key.
func (r *Registry) Flow(key FlowKey) (FlowRecord, bool) {
	s, ok := r.Session(key.DPID)
	if !ok {
		return FlowRecord{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.flows[key]
	return rec, ok
}

// StoreFlow adds or replaces the record for rec.Key.
func (r *Registry) StoreFlow(rec FlowRecord) {
	s := r.EnsureSession(rec.Key.DPID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[rec.Key] = rec
}

// DeleteFlow removes the record for key. Deleting an unknown key is a no-op.
func (r *Registry) DeleteFlow(key FlowKey) {
	s, ok := r.Session(key.DPID)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, key)
}

// Flows returns the records of dpid ordered by cookie.
func (r *Registry) Flows(dpid datapath.DPID) []FlowRecord {
	s, ok := r.Session(dpid)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedFlows(s.flows)
}

// Sessions returns a snapshot of all sessions ordered by datapath id.
func (r *Registry) Sessions() []Info {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].DPID < infos[j].DPID })
	return infos
}
