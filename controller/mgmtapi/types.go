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

package mgmtapi

import "time"

// StatusResponse is the body of successful calls without payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// GateResponse describes the access gate.
type GateResponse struct {
	Principal string `json:"principal,omitempty"`
	Gateway   string `json:"gateway,omitempty"`
	Ready     bool   `json:"ready"`
}

// SwitchesResponse lists the switch sessions.
type SwitchesResponse struct {
	Switches []Switch `json:"switches"`
}

// Switch describes a switch session.
type Switch struct {
	Dpid        string `json:"dpid"`
	State       string `json:"state"`
	Connected   bool   `json:"connected"`
	LearnedMacs int    `json:"learned_macs"`
	Flows       []Flow `json:"flows"`
}

// Flow describes an installed per-flow rule.
type Flow struct {
	Cookie      uint64    `json:"cookie"`
	InPort      uint32    `json:"in_port"`
	Src         string    `json:"src"`
	Dst         string    `json:"dst"`
	OutPort     uint32    `json:"out_port"`
	Priority    uint16    `json:"priority"`
	HardTimeout string    `json:"hard_timeout"`
	InstalledAt time.Time `json:"installed_at"`
}
