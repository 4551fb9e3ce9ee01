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

package controller_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/controller"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := controller.NewMetrics(reg)
	m.RulesTotal.WithLabelValues(controller.RuleFlow, controller.Result(nil)).Inc()
	m.RulesTotal.WithLabelValues(controller.RuleFlow, controller.Result(errors.New("x"))).Inc()
	m.ConnectedSwitches.Inc()

	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.RulesTotal.WithLabelValues(controller.RuleFlow, controller.ResultOK)))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.RulesTotal.WithLabelValues(controller.RuleFlow, controller.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectedSwitches))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)

	// A second registry accepts a second set of metrics.
	assert.NotPanics(t, func() { controller.NewMetrics(prometheus.NewRegistry()) })
}
