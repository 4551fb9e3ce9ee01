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

// Package flow decides when forwarding rules are programmed on a switch and
// keeps the flow cache of the session registry in sync with what the switch
// reports.
package flow

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/netgate-lab/flowgate/controller"
	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/controller/session"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

const (
	// FallbackPriority is the priority of the match-all rule.
	FallbackPriority uint16 = 0
	// DefaultPriority is the default priority of per-flow rules.
	DefaultPriority uint16 = 1
	// DefaultHardTimeout is the default hard timeout of per-flow rules.
	DefaultHardTimeout = 10 * time.Second
	// DefaultControllerMaxLen requests complete frames on the controller
	// port.
	DefaultControllerMaxLen uint16 = 0xffff
)

// ErrNoPort indicates that no output port is known for a flow.
var ErrNoPort = serrors.New("no output port known")

// ReinstallPolicy controls the hard timeout of rules reinstalled after a
// removal notification.
type ReinstallPolicy string

const (
	// ReinstallRefresh reinstalls with the hard timeout of the removed rule,
	// so the new rule expires again.
	ReinstallRefresh ReinstallPolicy = "refresh"
	// ReinstallPermanent reinstalls without timeout.
	ReinstallPermanent ReinstallPolicy = "permanent"
)

// Validate checks that the policy is known.
func (p ReinstallPolicy) Validate() error {
	switch p {
	case ReinstallRefresh, ReinstallPermanent:
		return nil
	default:
		return serrors.New("unknown reinstall policy", "policy", string(p))
	}
}

// CookieAllocator hands out cookies. Cookies start at 1 and increase strictly
// for the lifetime of the allocator. The zero value is ready for use.
type CookieAllocator struct {
	last atomic.Uint64
}

// Next returns a fresh cookie.
func (a *CookieAllocator) Next() uint64 {
	return a.last.Add(1)
}

// Outcome is the result of reconciling a removal notification.
type Outcome int

const (
	// Ignored means no record existed for the flow.
	Ignored Outcome = iota
	// Deleted means the record was dropped.
	Deleted
	// Reinstalled means the rule was programmed again with a new cookie.
	Reinstalled
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Deleted:
		return "deleted"
	case Reinstalled:
		return "reinstalled"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Installer programs rules on switches and records installed per-flow rules
// in the registry. A record is only stored after the switch accepted the rule.
type Installer struct {
	// Registry holds the flow cache. Required.
	Registry *session.Registry
	// Priority of per-flow rules. Zero selects DefaultPriority.
	Priority uint16
	// HardTimeout of newly installed per-flow rules. Zero installs permanent
	// rules.
	HardTimeout time.Duration
	// ReinstallPolicy selects the timeout of reinstalled rules. Empty selects
	// ReinstallRefresh.
	ReinstallPolicy ReinstallPolicy
	// ControllerMaxLen is the number of bytes the fallback rule sends to the
	// controller. Zero selects DefaultControllerMaxLen.
	ControllerMaxLen uint16
	// Metrics is optional.
	Metrics *controller.Metrics
	// Now is used to timestamp records. Defaults to time.Now.
	Now func() time.Time

	cookies CookieAllocator
}

// InstallFallback programs the match-all rule that sends every unmatched
// frame to the controller. The rule has no timeout and is not cached.
func (i *Installer) InstallFallback(ctx context.Context, sw datapath.Switch) error {
	rule := datapath.Rule{
		Match:    datapath.MatchAll(),
		Priority: FallbackPriority,
		OutPort:  datapath.PortController,
		MaxLen:   i.controllerMaxLen(),
	}
	err := sw.InstallRule(rule)
	i.countRule(controller.RuleFallback, err)
	if err != nil {
		return serrors.Wrap("installing fallback rule", err, "dpid", sw.ID())
	}
	log.FromCtx(ctx).Debug("Installed fallback rule", "dpid", sw.ID())
	return nil
}

// EnsureFlow makes sure a rule for key forwarding to outPort is installed.
// If a record exists its cookie is returned and the switch is not touched.
// Otherwise a rule with a new cookie is programmed and recorded; installed
// is true in that case.
func (i *Installer) EnsureFlow(ctx context.Context, sw datapath.Switch, key session.FlowKey,
	outPort datapath.Port) (cookie uint64, installed bool, err error) {

	if rec, ok := i.Registry.Flow(key); ok {
		return rec.Cookie, false, nil
	}
	rec, err := i.program(sw, key, outPort, i.HardTimeout)
	i.countRule(controller.RuleFlow, err)
	if err != nil {
		return 0, false, err
	}
	log.FromCtx(ctx).Debug("Installed flow rule", "flow", key, "cookie", rec.Cookie,
		"out_port", outPort)
	return rec.Cookie, true, nil
}

// ReconcileRemoved updates the flow cache after the switch reported the
// removal of the rule for key. Unknown keys are ignored. An explicit delete
// drops the record. Any other reason reinstalls the rule with a new cookie,
// forwarding to the port the destination was last learned on, or to the port
// of the removed rule if the destination is no longer known.
func (i *Installer) ReconcileRemoved(ctx context.Context, sw datapath.Switch,
	key session.FlowKey, reason datapath.RemovalReason) (Outcome, error) {

	rec, ok := i.Registry.Flow(key)
	if !ok {
		return Ignored, nil
	}
	if reason == datapath.RemovedDelete {
		i.Registry.DeleteFlow(key)
		log.FromCtx(ctx).Debug("Dropped deleted flow", "flow", key, "cookie", rec.Cookie)
		return Deleted, nil
	}
	outPort, ok := i.Registry.LookupPort(key.DPID, key.Dst)
	if !ok {
		outPort = rec.OutPort
	}
	if outPort == 0 {
		return Ignored, serrors.Wrap("reinstalling flow rule", ErrNoPort, "flow", key)
	}
	timeout := rec.HardTimeout
	if i.ReinstallPolicy == ReinstallPermanent {
		timeout = 0
	}
	newRec, err := i.program(sw, key, outPort, timeout)
	i.countRule(controller.RuleReinstall, err)
	if err != nil {
		return Ignored, err
	}
	log.FromCtx(ctx).Debug("Reinstalled flow rule", "flow", key, "reason", reason,
		"old_cookie", rec.Cookie, "cookie", newRec.Cookie, "out_port", outPort)
	return Reinstalled, nil
}

func (i *Installer) program(sw datapath.Switch, key session.FlowKey, outPort datapath.Port,
	timeout time.Duration) (session.FlowRecord, error) {

	cookie := i.cookies.Next()
	rule := datapath.Rule{
		Match: datapath.Match{
			InPort: key.InPort,
			Src:    key.Src,
			Dst:    key.Dst,
		},
		Priority:        i.priority(),
		Cookie:          cookie,
		HardTimeout:     timeout,
		OutPort:         outPort,
		SendFlowRemoved: true,
	}
	if err := sw.InstallRule(rule); err != nil {
		return session.FlowRecord{}, serrors.Wrap("installing flow rule", err,
			"flow", key, "cookie", cookie)
	}
	rec := session.FlowRecord{
		Key:         key,
		Cookie:      cookie,
		Priority:    rule.Priority,
		HardTimeout: timeout,
		OutPort:     outPort,
		InstalledAt: i.now(),
	}
	i.Registry.StoreFlow(rec)
	return rec, nil
}

func (i *Installer) priority() uint16 {
	if i.Priority == 0 {
		return DefaultPriority
	}
	return i.Priority
}

func (i *Installer) controllerMaxLen() uint16 {
	if i.ControllerMaxLen == 0 {
		return DefaultControllerMaxLen
	}
	return i.ControllerMaxLen
}

func (i *Installer) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}

func (i *Installer) countRule(rule string, err error) {
	if i.Metrics == nil {
		return
	}
	i.Metrics.RulesTotal.WithLabelValues(rule, controller.Result(err)).Inc()
}
