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

package service_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/private/service"
)

func TestConfigStatusPage(t *testing.T) {
	cfg := struct {
		ID string `toml:"id"`
	}{ID: "flowgate-1"}
	rr := httptest.NewRecorder()
	service.NewConfigStatusPage(cfg).Handler(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "flowgate-1")
}

func TestLogLevelStatusPage(t *testing.T) {
	page := service.NewLogLevelStatusPage()
	orig := log.ConsoleLevel.Level()
	defer log.ConsoleLevel.SetLevel(orig)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"level":"debug"}`))
	req.Header.Set("Content-Type", "application/json")
	page.Handler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "debug", log.ConsoleLevel.String())
}
