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

// Package mgmtapi contains the building blocks shared by the management APIs
// of flowgate services: the [api] configuration block and RFC 7807 problem
// responses.
package mgmtapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/netgate-lab/flowgate/private/config"
)

// Problem types used in problem responses.
const (
	BadRequest    = "/problems/bad-request"
	InternalError = "/problems/internal-error"
	NotFound      = "/problems/not-found"
	Unsupported   = "/problems/unsupported-media-type"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	// Detail is a human-readable explanation specific to this occurrence.
	Detail *string `json:"detail,omitempty"`
	// Status is the HTTP status code.
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Type is a URI reference that identifies the problem type.
	Type *string `json:"type,omitempty"`
}

// StringRef returns the pointer to the given string.
func StringRef(s string) *string {
	return &s
}

// ErrorResponse writes the problem document to w.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}

// Config is the configuration of the management API.
type Config struct {
	config.NoDefaulter
	config.NoValidator
	// Addr is the address the management API listens on. If empty, the API
	// is disabled.
	Addr string `toml:"addr,omitempty"`
}

func (c *Config) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, apiSample)
}

func (c *Config) ConfigName() string {
	return "api"
}

const apiSample = `
# The address to expose the API on (host:port or ip:port or :port).
# If not set, the service specific default is used.
addr = ""
`
