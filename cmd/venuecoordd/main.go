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

// venuecoordd is the Venue Analytics Coordinator daemon executable.
package main

import (
	"context"
	"os"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/kardianos/service"
	"github.com/openwifi/venue-analytics-coordinator/cfg"
	"github.com/openwifi/venue-analytics-coordinator/internal/bus"
	"github.com/openwifi/venue-analytics-coordinator/internal/coordinator"
	"github.com/openwifi/venue-analytics-coordinator/internal/receiver"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
	"github.com/openwifi/venue-analytics-coordinator/internal/telemetry"
	"github.com/openwifi/venue-analytics-coordinator/internal/watcher"
	"github.com/openwifi/venue-analytics-coordinator/internal/workerpool"
)

var version string

// program wires the daemon's lifecycle into the kardianos/service
// interface: Start must not block, Stop must return once everything has
// quiesced.
type program struct {
	cancel context.CancelFunc

	coord    *coordinator.Coordinator
	recv     *receiver.Receiver
	pool     *workerpool.Pool
	dispatch *dispatcher
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
	return nil
}

func (p *program) Stop(s service.Service) error {
	// Shutdown order: Event Receiver -> Coordinator -> Worker Pool, so no
	// new events produce watcher work that would outlive the pool (§5).
	if p.recv != nil {
		p.recv.Stop()
	}
	if p.coord != nil {
		p.coord.Stop()
	}
	if p.pool != nil {
		p.pool.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// dispatcher bridges a Watcher's inbound telemetry calls to the worker
// pool's sharded Enqueue. A production telemetry ingress (REST/gRPC
// handler, message consumer) is external to this core (§1); this type
// exists only so the wiring below is exercised end to end.
type dispatcher struct {
	pool *workerpool.Pool
}

func (d *dispatcher) Dispatch(w watcher.Interface, serial uint64, msgType telemetry.MsgType, payload []byte) bool {
	return d.pool.Enqueue(w, serial, msgType, payload)
}

func (p *program) run(ctx context.Context) {
	logger.Infof("venuecoordd: starting (version %s)", version)

	sections := cfg.Get()
	p.pool = workerpool.New(sections.Analytics.WorkerCount(), sections.Analytics.QueueCapacity())
	p.pool.Start()

	// The board store, time-points store, provisioning SDK and topic bus
	// are external collaborators (§1, §6); no production backend for them
	// ships in this core, so the daemon runs against the same in-memory
	// fakes this module's tests use. Swapping in real implementations only
	// requires satisfying the store.BoardsDB / store.TimePointsDB /
	// store.ProvisioningSDK / bus.Topic interfaces.
	boardsDB := store.NewFakeBoardsDB()
	timePointsDB := store.NewFakeTimePointsDB()
	sdk := store.NewFakeProvisioningSDK()
	topic := bus.NewFakeTopic(true)

	p.coord = coordinator.New(coordinator.Options{
		BoardsDB:     boardsDB,
		TimePointsDB: timePointsDB,
		SDK:          sdk,
		NewWatcher: func(boardID, venueID string, devices []uint64) watcher.Interface {
			return watcher.NewFake(venueID, devices)
		},
	})
	if err := p.coord.Start(ctx); err != nil {
		logger.Errorf("venuecoordd: coordinator failed to start: %v", err)
		return
	}

	p.recv = receiver.New(topic, p.coord)
	if err := p.recv.Start(ctx); err != nil {
		logger.Errorf("venuecoordd: receiver failed to start: %v", err)
		return
	}

	p.dispatch = &dispatcher{pool: p.pool}

	logger.Infof("venuecoordd: started, %d workers", p.pool.WorkerCount())
	<-ctx.Done()
	logger.Infof("venuecoordd: stopped")
}

func main() {
	opts := logger.LogOpts{LoggerName: "venuecoordd"}
	logger.Init(context.Background(), opts)

	if err := cfg.Load(nil); err != nil {
		logger.Fatalf("venuecoordd: failed to load configuration: %v", err)
	}

	svcConfig := &service.Config{
		Name:        "venuecoordd",
		DisplayName: "Venue Analytics Coordinator",
		Description: "Maintains per-venue board and watcher state from provisioning events.",
	}

	prg := &program{}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		logger.Fatalf("venuecoordd: failed to construct service: %v", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "install", "uninstall", "start", "stop", "restart":
			if err := service.Control(s, os.Args[1]); err != nil {
				logger.Fatalf("venuecoordd: service control %q failed: %v", os.Args[1], err)
			}
			return
		}
	}

	if err := s.Run(); err != nil {
		logger.Fatalf("venuecoordd: %v", err)
	}
}
