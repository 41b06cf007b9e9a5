// Copyright 2026 The Venue Analytics Coordinator Authors
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

// Package cfg is responsible for loading and accessing the coordinator's
// configuration (§6): the worker pool's worker count and per-worker queue
// capacity, sourced from the "openwifi.analytics.*" namespace.
package cfg

import (
	"fmt"
	"runtime"

	"github.com/go-ini/ini"
)

var (
	// instance is the single instance of configuration sections; once
	// loaded, this package should always return it.
	instance *Sections

	// dataSources is a pointer to the data-source loading function; unit
	// tests override this to point at fixtures instead of the real config
	// path.
	dataSources = defaultDataSources
)

const (
	configPath = "/etc/default/venuecoordd.cfg"

	defaultConfig = `
[Analytics]
workers = 0
queue_size = 1024
`
)

// Sections encapsulates all the configuration sections.
type Sections struct {
	// Analytics defines the worker pool's sizing. See Analytics for the
	// clamping and default rules applied after load.
	Analytics *Analytics `ini:"Analytics,omitempty"`
}

// Analytics mirrors the "openwifi.analytics.*" configuration namespace (§6).
type Analytics struct {
	// Workers is openwifi.analytics.workers: the worker pool's worker
	// count. 0 means "use the default", resolved by WorkerCount().
	Workers int `ini:"workers,omitempty"`
	// QueueSize is openwifi.analytics.queue.size: the per-worker queue
	// capacity. 0 means "use the default", resolved by QueueCapacity().
	QueueSize int `ini:"queue_size,omitempty"`
}

const (
	minWorkers = 2
	maxWorkers = 128
	minQueue   = 64
	defQueue   = 1024
)

// WorkerCount resolves the configured worker count against the defaulting
// and clamping rule in §6: default max(2, NumCPU), clamped to [2,128].
func (a *Analytics) WorkerCount() int {
	n := a.Workers
	if n <= 0 {
		n = runtime.NumCPU()
		if n < minWorkers {
			n = minWorkers
		}
	}
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// QueueCapacity resolves the configured per-worker queue capacity against
// the defaulting and clamping rule in §6: default 1024, minimum 64.
func (a *Analytics) QueueCapacity() int {
	n := a.QueueSize
	if n <= 0 {
		n = defQueue
	}
	if n < minQueue {
		n = minQueue
	}
	return n
}

func defaultDataSources(extraDefaults []byte) []interface{} {
	var res []interface{}
	if len(extraDefaults) > 0 {
		res = append(res, extraDefaults)
	}
	return append(res, []interface{}{
		[]byte(defaultConfig),
		configPath,
		configPath + ".distro",
		configPath + ".template",
	}...)
}

// Load loads the default configuration plus whatever is found at the
// default config file locations.
func Load(extraDefaults []byte) error {
	opts := ini.LoadOptions{Loose: true, Insensitive: true}

	sources := dataSources(extraDefaults)
	cfg, err := ini.LoadSources(opts, sources[0], sources[1:]...)
	if err != nil {
		return fmt.Errorf("cfg: failed to load configuration: %w", err)
	}

	sections := new(Sections)
	if err := cfg.MapTo(sections); err != nil {
		return fmt.Errorf("cfg: failed to map configuration to object: %w", err)
	}
	if sections.Analytics == nil {
		sections.Analytics = &Analytics{}
	}

	instance = sections
	return nil
}

// Get returns the configuration instance previously loaded with Load().
func Get() *Sections {
	if instance == nil {
		panic("cfg package was not initialized, Load() should be called in the early initialization code path")
	}
	return instance
}
