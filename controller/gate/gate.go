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

// Package gate implements the access gate: an allow-list of two addresses,
// the principal and the gateway, that all bridged traffic must touch.
//
// The gate fails closed. Until both addresses are set, no traffic is
// permitted.
package gate

import "sync/atomic"

// Gate holds the principal and gateway addresses. Each address is stored
// independently; there is no atomicity across the two fields. The zero value
// is an unarmed gate ready for use.
type Gate struct {
	principal atomic.Pointer[string]
	gateway   atomic.Pointer[string]
}

// New returns a gate pre-armed with the given addresses. Empty strings leave
// the corresponding field unset.
func New(principal, gateway string) *Gate {
	g := &Gate{}
	if principal != "" {
		g.SetPrincipal(principal)
	}
	if gateway != "" {
		g.SetGateway(gateway)
	}
	return g
}

// SetPrincipal overwrites the principal address.
func (g *Gate) SetPrincipal(address string) {
	g.principal.Store(&address)
}

// SetGateway overwrites the gateway address.
func (g *Gate) SetGateway(address string) {
	g.gateway.Store(&address)
}

// Ready indicates whether both addresses are set.
func (g *Gate) Ready() bool {
	_, pOK := load(&g.principal)
	_, gOK := load(&g.gateway)
	return pOK && gOK
}

// Permits reports whether traffic between src and dst may be bridged. It is
// false while the gate is not ready, otherwise true iff either endpoint is the
// principal or the gateway.
func (g *Gate) Permits(src, dst string) bool {
	principal, pOK := load(&g.principal)
	gateway, gOK := load(&g.gateway)
	if !pOK || !gOK {
		return false
	}
	return src == principal || dst == principal || src == gateway || dst == gateway
}

// Snapshot returns the current addresses. Unset fields are empty.
func (g *Gate) Snapshot() (principal, gateway string) {
	principal, _ = load(&g.principal)
	gateway, _ = load(&g.gateway)
	return principal, gateway
}

func load(p *atomic.Pointer[string]) (string, bool) {
	v := p.Load()
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}
