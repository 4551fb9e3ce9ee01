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

// Package config describes the configuration of the flow controller.
package config

import (
	"io"
	"net/netip"
	"time"

	"github.com/netgate-lab/flowgate/controller/flow"
	"github.com/netgate-lab/flowgate/controller/ofchannel"
	"github.com/netgate-lab/flowgate/controller/session"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
	"github.com/netgate-lab/flowgate/pkg/private/util"
	"github.com/netgate-lab/flowgate/private/config"
	"github.com/netgate-lab/flowgate/private/env"
	api "github.com/netgate-lab/flowgate/private/mgmtapi"
)

const (
	// DefaultListenAddr is the default address switches connect to.
	DefaultListenAddr = ":6653"
	// DefaultEventQueueSize is the default capacity of the event queue
	// between the control channels and the dispatcher.
	DefaultEventQueueSize = 1024
	// DefaultAPIAddr is the default address of the control API.
	DefaultAPIAddr = "127.0.0.1:8080"
)

var _ config.Config = (*Config)(nil)

// Config is the flow controller configuration.
type Config struct {
	General    env.General      `toml:"general,omitempty"`
	Logging    log.Config       `toml:"log,omitempty"`
	Metrics    env.Metrics      `toml:"metrics,omitempty"`
	API        api.Config       `toml:"api,omitempty"`
	Controller ControllerConfig `toml:"controller,omitempty"`
	Gate       GateConfig       `toml:"gate,omitempty"`
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Gate,
	)
	if cfg.API.Addr == "" {
		cfg.API.Addr = DefaultAPIAddr
	}
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Gate,
	)
}

// Sample generates a sample config file for the flow controller.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, config.CtxMap{config.ID: idSample},
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.Controller,
		&cfg.Gate,
	)
}

func (cfg *Config) ConfigName() string {
	return "flowgate_config"
}

var _ config.Config = (*ControllerConfig)(nil)

// ControllerConfig holds the settings of the control channel and the
// forwarding logic.
type ControllerConfig struct {
	// ListenAddr is the TCP address switches connect to.
	ListenAddr string `toml:"listen_addr,omitempty"`
	// HandshakeTimeout bounds the OpenFlow hello and features exchange.
	HandshakeTimeout util.DurWrap `toml:"handshake_timeout,omitempty"`
	// EventQueueSize is the capacity of the dispatcher event queue.
	EventQueueSize int `toml:"event_queue_size,omitempty"`
	// MACTableSize is the number of link addresses learned per switch.
	MACTableSize int `toml:"mac_table_size,omitempty"`
	// FlowPriority is the priority of per-flow rules.
	FlowPriority int `toml:"flow_priority,omitempty"`
	// FlowHardTimeout is the hard timeout of per-flow rules.
	FlowHardTimeout util.DurWrap `toml:"flow_hard_timeout,omitempty"`
	// ReinstallPolicy selects the timeout of rules reinstalled after a
	// removal (refresh|permanent).
	ReinstallPolicy string `toml:"reinstall_policy,omitempty"`
	// PacketInMaxLen is the number of frame bytes the fallback rule sends to
	// the controller.
	PacketInMaxLen int `toml:"packet_in_max_len,omitempty"`
}

func (cfg *ControllerConfig) InitDefaults() {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	initDurWrap(&cfg.HandshakeTimeout, ofchannel.DefaultHandshakeTimeout)
	if cfg.EventQueueSize == 0 {
		cfg.EventQueueSize = DefaultEventQueueSize
	}
	if cfg.MACTableSize == 0 {
		cfg.MACTableSize = session.DefaultMACTableSize
	}
	if cfg.FlowPriority == 0 {
		cfg.FlowPriority = int(flow.DefaultPriority)
	}
	initDurWrap(&cfg.FlowHardTimeout, flow.DefaultHardTimeout)
	if cfg.ReinstallPolicy == "" {
		cfg.ReinstallPolicy = string(flow.ReinstallRefresh)
	}
	if cfg.PacketInMaxLen == 0 {
		cfg.PacketInMaxLen = int(flow.DefaultControllerMaxLen)
	}
}

func (cfg *ControllerConfig) Validate() error {
	if cfg.ListenAddr == "" {
		return serrors.New("listen_addr must be set")
	}
	if cfg.HandshakeTimeout.Duration <= 0 {
		return serrors.New("handshake_timeout must be positive",
			"value", cfg.HandshakeTimeout)
	}
	if cfg.EventQueueSize <= 0 {
		return serrors.New("event_queue_size must be positive", "value", cfg.EventQueueSize)
	}
	if cfg.MACTableSize <= 0 {
		return serrors.New("mac_table_size must be positive", "value", cfg.MACTableSize)
	}
	// Priority 0 is reserved for the fallback rule.
	if cfg.FlowPriority < 1 || cfg.FlowPriority > 0xffff {
		return serrors.New("flow_priority out of range", "value", cfg.FlowPriority)
	}
	if cfg.FlowHardTimeout.Duration <= 0 ||
		cfg.FlowHardTimeout.Duration > 0xffff*time.Second ||
		cfg.FlowHardTimeout.Duration%time.Second != 0 {

		return serrors.New("flow_hard_timeout must be a whole number of seconds in [1s, 65535s]",
			"value", cfg.FlowHardTimeout)
	}
	if err := flow.ReinstallPolicy(cfg.ReinstallPolicy).Validate(); err != nil {
		return err
	}
	if cfg.PacketInMaxLen < 0 || cfg.PacketInMaxLen > 0xffff {
		return serrors.New("packet_in_max_len out of range", "value", cfg.PacketInMaxLen)
	}
	return nil
}

func (cfg *ControllerConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, controllerSample)
}

func (cfg *ControllerConfig) ConfigName() string {
	return "controller"
}

var _ config.Config = (*GateConfig)(nil)

// GateConfig optionally pre-arms the access gate. Both addresses can be
// changed at runtime through the control API.
type GateConfig struct {
	config.NoDefaulter
	// Principal is the address of the principal endpoint.
	Principal string `toml:"principal,omitempty"`
	// Gateway is the address of the gateway endpoint.
	Gateway string `toml:"gateway,omitempty"`
}

func (cfg *GateConfig) Validate() error {
	for name, v := range map[string]string{"principal": cfg.Principal, "gateway": cfg.Gateway} {
		if v == "" {
			continue
		}
		if _, err := netip.ParseAddr(v); err != nil {
			return serrors.Wrap("invalid gate address", err, "field", name)
		}
	}
	return nil
}

func (cfg *GateConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, gateSample)
}

func (cfg *GateConfig) ConfigName() string {
	return "gate"
}

func initDurWrap(w *util.DurWrap, def time.Duration) {
	if w.Duration == 0 {
		w.Duration = def
	}
}
