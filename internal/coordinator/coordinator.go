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

// Package coordinator implements the convergence engine that owns the
// boardId → Watcher mapping and keeps it consistent with the persisted
// board store and the upstream provisioning SDK (§3, §4.c).
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
	"github.com/openwifi/venue-analytics-coordinator/internal/watcher"
	"github.com/openwifi/venue-analytics-coordinator/scheduler"
)

const (
	slowPollInterval  = time.Minute
	reconcileInterval = 3 * time.Minute
	reconcileJobID    = "venue-analytics-coordinator-reconcile"
)

// NewWatcherFunc constructs the watcher for a newly created board. devices
// is already sorted and duplicate-free (§3).
type NewWatcherFunc func(boardID, venueID string, devices []uint64) watcher.Interface

// Options configures a Coordinator.
type Options struct {
	BoardsDB     store.BoardsDB
	TimePointsDB store.TimePointsDB
	SDK          store.ProvisioningSDK
	NewWatcher   NewWatcherFunc
}

// Coordinator owns the live boardId → Watcher mapping (§3) and the two
// periodic convergence loops (§4.c). The zero value is not usable; build
// one with New.
type Coordinator struct {
	boardsDB     store.BoardsDB
	timePointsDB store.TimePointsDB
	sdk          store.ProvisioningSDK
	newWatcher   NewWatcherFunc

	// mu guards every field below, per §5: "the coordinator owns a single
	// mutex protecting Watchers, ExistingBoards, ExistingVersions, and
	// BoardsToWatch".
	mu               sync.Mutex
	watchers         map[string]watcher.Interface
	existingBoards   map[string][]uint64
	existingVersions map[string]uint64
	boardsToWatch    map[string]store.BoardRecord

	running int32
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New allocates a Coordinator. Start must be called before it converges
// anything.
func New(opts Options) *Coordinator {
	return &Coordinator{
		boardsDB:         opts.BoardsDB,
		timePointsDB:     opts.TimePointsDB,
		sdk:              opts.SDK,
		newWatcher:       opts.NewWatcher,
		watchers:         make(map[string]watcher.Interface),
		existingBoards:   make(map[string][]uint64),
		existingVersions: make(map[string]uint64),
		boardsToWatch:    make(map[string]store.BoardRecord),
	}
}

// Start loads boards from the store into BoardsToWatch, starts the slow
// polling thread and schedules the reconciliation timer (§4.c).
func (c *Coordinator) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return nil
	}
	c.stopCh = make(chan struct{})

	c.refreshBoardsToWatch(ctx)

	c.wg.Add(1)
	go c.slowPollLoop(ctx)

	job := &reconcileJob{c: c}
	if err := scheduler.Get().ScheduleJob(ctx, job, false); err != nil {
		logger.Errorf("coordinator: failed to schedule reconciliation job: %v", err)
	}

	return nil
}

// Stop signals shutdown, wakes and joins the polling thread, and stops the
// reconciliation timer.
func (c *Coordinator) Stop() {
	if !atomic.CompareAndSwapInt32(&c.running, 1, 0) {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
	scheduler.Get().UnscheduleJob(reconcileJobID)
}

// Watching reports whether boardID is currently watched (id ∈
// ExistingBoards).
func (c *Coordinator) Watching(boardID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.existingBoards[boardID]
	return ok
}

// GetDevices copies the watcher's current device list to out. out is left
// empty if boardID is unwatched.
func (c *Coordinator) GetDevices(boardID string, out *[]watcher.DeviceInfo) {
	c.mu.Lock()
	w, ok := c.watchers[boardID]
	c.mu.Unlock()

	if !ok {
		*out = (*out)[:0]
		return
	}
	w.GetDevices(out)
}

// watchedBoardIDs returns a snapshot of every board id currently carrying a
// live watcher, for the reconciliation timer to iterate over without
// holding the lock during UpdateBoard calls.
func (c *Coordinator) watchedBoardIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.watchers))
	for id := range c.watchers {
		ids = append(ids, id)
	}
	return ids
}
