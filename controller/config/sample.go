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

package config

const idSample = "flowgate-1"

const controllerSample = `
# The TCP address switches connect to. (default ":6653")
listen_addr = ":6653"
# The time a switch has to complete the OpenFlow handshake. (default 3s)
handshake_timeout = "3s"
# The capacity of the queue between the switch connections and the event
# dispatcher. (default 1024)
event_queue_size = 1024
# The number of link addresses learned per switch. The least valuable entries
# are evicted when the table is full. (default 4096)
mac_table_size = 4096
# The priority of per-flow rules. Priority 0 is reserved for the match-all
# rule that sends frames to the controller. (default 1)
flow_priority = 1
# The hard timeout of per-flow rules. (default 10s)
flow_hard_timeout = "10s"
# The timeout of rules reinstalled after the switch removed them.
#
# - refresh:   the reinstalled rule keeps the timeout of the removed rule.
# - permanent: the reinstalled rule never expires.
#
# (default refresh)
reinstall_policy = "refresh"
# The number of frame bytes sent to the controller for unmatched frames.
# (default 65535)
packet_in_max_len = 65535
`

const gateSample = `
# The address of the principal endpoint. Until both addresses are set, no
# traffic is forwarded. Both can be set at runtime through the control API.
# (default "")
principal = ""
# The address of the gateway endpoint. (default "")
gateway = ""
`
