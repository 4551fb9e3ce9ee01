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

// Package controller contains the parts of the flow controller shared by its
// subpackages.
package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values used by the controller metrics.
const (
	ResultOK    = "ok"
	ResultError = "error"

	RuleFallback  = "fallback"
	RuleFlow      = "flow"
	RuleReinstall = "reinstall"

	ActionFlood   = "flood"
	ActionUnicast = "unicast"
)

// Metrics defines the metrics of the flow controller.
type Metrics struct {
	EventsTotal        *prometheus.CounterVec
	PacketInsTotal     *prometheus.CounterVec
	DroppedFramesTotal *prometheus.CounterVec
	PacketOutsTotal    *prometheus.CounterVec
	RulesTotal         *prometheus.CounterVec
	FlowsRemovedTotal  *prometheus.CounterVec
	ConnectedSwitches  prometheus.Gauge
}

// NewMetrics initializes the controller metrics and registers them with reg.
// If reg is nil, the default registry is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_events_total",
				Help: "Total number of switch events processed by the dispatcher.",
			},
			[]string{"kind"},
		),
		PacketInsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_packet_ins_total",
				Help: "Total number of packet-ins by frame classification.",
			},
			[]string{"class"},
		),
		DroppedFramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_dropped_frames_total",
				Help: "Total number of packet-in frames dropped by the controller.",
			},
			[]string{"reason"},
		),
		PacketOutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_packet_outs_total",
				Help: "Total number of packet-outs sent to switches.",
			},
			[]string{"action", "result"},
		),
		RulesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_rules_programmed_total",
				Help: "Total number of rules programmed on switches.",
			},
			[]string{"rule", "result"},
		),
		FlowsRemovedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgate_flows_removed_total",
				Help: "Total number of flow removal notifications received.",
			},
			[]string{"reason"},
		),
		ConnectedSwitches: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "flowgate_connected_switches",
				Help: "Number of switches with an established control channel.",
			},
		),
	}
}

// Result returns the result label value for err.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
