// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gtnewhorizons/recipemap/pkg/defaults"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg := parseConfig()

	assert.Empty(t, cfg.Address)
	assert.Equal(t, defaults.ServerPort, cfg.Port)
	assert.EqualValues(t, defaults.ServerRateLimit, cfg.RateLimit)
	assert.Equal(t, defaults.ServerRateLimitBurst, cfg.RateLimitBurst)
	assert.EqualValues(t, 1<<20, cfg.MaxRequestBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestParseConfigEnvironment(t *testing.T) {
	tests := []struct {
		name         string
		port         string
		shutdown     string
		wantPort     int
		wantShutdown time.Duration
	}{
		{"port override", "9090", "", 9090, defaults.ServerShutdownTimeout},
		{"port zero picks a free port", "0", "", 0, defaults.ServerShutdownTimeout},
		{"invalid port keeps default", "http", "", defaults.ServerPort, defaults.ServerShutdownTimeout},
		{"negative port keeps default", "-1", "", defaults.ServerPort, defaults.ServerShutdownTimeout},
		{"shutdown override", "", "5", defaults.ServerPort, 5 * time.Second},
		{"zero shutdown keeps default", "", "0", defaults.ServerPort, defaults.ServerShutdownTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", tt.shutdown)

			cfg := parseConfig()
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tt.wantShutdown, cfg.ShutdownTimeout)
		})
	}
}
