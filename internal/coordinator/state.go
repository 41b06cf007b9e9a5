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

package coordinator

import (
	"context"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/openwifi/venue-analytics-coordinator/internal/serialnum"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
)

// AddBoard looks up boardID in the store and, if found, inserts it into
// BoardsToWatch. A missing board is logged and ignored.
func (c *Coordinator) AddBoard(ctx context.Context, boardID string) {
	rec, found, err := c.boardsDB.GetRecord(ctx, boardID, boardID)
	if err != nil {
		logger.Errorf("coordinator: AddBoard(%s): store lookup failed: %v", boardID, err)
		return
	}
	if !found {
		logger.Infof("coordinator: AddBoard(%s): no such board in the store, ignoring", boardID)
		return
	}

	c.mu.Lock()
	c.boardsToWatch[boardID] = rec
	c.mu.Unlock()
}

// UpdateBoard looks up boardID, queries the provisioning SDK for its current
// device list, and applies it via ApplyDeviceUpdate using the board's
// last-known version. If the venue no longer exists the board is retired.
// SDK failures are transient upstream errors (§7): swallowed and logged,
// left for the next periodic pass to retry.
func (c *Coordinator) UpdateBoard(ctx context.Context, boardID string) {
	rec, found, err := c.boardsDB.GetRecord(ctx, boardID, boardID)
	if err != nil {
		logger.Errorf("coordinator: UpdateBoard(%s): store lookup failed: %v", boardID, err)
		return
	}
	if !found {
		logger.Infof("coordinator: UpdateBoard(%s): no such board in the store, ignoring", boardID)
		return
	}

	venue := rec.Venue()
	devices, venueExists, err := c.sdk.GetDevices(ctx, venue.VenueID, venue.MonitorSubVenues)
	if err != nil {
		logger.Errorf("coordinator: UpdateBoard(%s): provisioning SDK query failed: %v", boardID, err)
		return
	}
	if !venueExists {
		c.RetireBoard(ctx, boardID)
		return
	}

	c.mu.Lock()
	lastKnown := c.existingVersions[boardID]
	c.mu.Unlock()

	c.ApplyDeviceUpdate(ctx, boardID, serialnum.NormalizeAll(devices), lastKnown)
}

// StopBoard stops and removes the watcher for boardID and erases it from
// ExistingBoards and ExistingVersions. It does not touch the board store or
// the time-points store — callers that mean "this board is gone for good"
// (HandleProvisioningEvent's delete path, RetireBoard) do that themselves.
func (c *Coordinator) StopBoard(boardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.watchers[boardID]; ok {
		w.Stop()
		delete(c.watchers, boardID)
	}
	delete(c.existingBoards, boardID)
	delete(c.existingVersions, boardID)
}

// RetireBoard logs a retirement notice, stops the watcher, deletes the board
// record and its associated time-points. Called when the upstream venue no
// longer exists.
func (c *Coordinator) RetireBoard(ctx context.Context, boardID string) {
	logger.Warningf("coordinator: retiring board %s, venue no longer exists upstream", boardID)

	c.StopBoard(boardID)

	if err := c.boardsDB.DeleteRecord(ctx, boardID); err != nil {
		logger.Errorf("coordinator: RetireBoard(%s): failed to delete board record: %v", boardID, err)
	}
	if err := c.timePointsDB.DeleteBoard(ctx, boardID); err != nil {
		logger.Errorf("coordinator: RetireBoard(%s): failed to delete time-points: %v", boardID, err)
	}

	c.mu.Lock()
	delete(c.boardsToWatch, boardID)
	c.mu.Unlock()
}

// ApplyDeviceUpdate is the single convergence primitive (§4.c). version==0
// means the caller does not assert a version (the slow poll's SDK-sourced
// path) and the version guard is skipped entirely; UpdateBoard passes the
// board's last-known version instead.
func (c *Coordinator) ApplyDeviceUpdate(ctx context.Context, boardID string, devices []uint64, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.existingVersions[boardID]
	if version != 0 && cur != 0 && version < cur {
		logger.Debugf("coordinator: dropping stale update for board %s: version=%d < current=%d", boardID, version, cur)
		return
	}

	w, hasWatcher := c.watchers[boardID]
	if !hasWatcher {
		if len(devices) == 0 {
			delete(c.existingBoards, boardID)
			delete(c.existingVersions, boardID)
			return
		}

		venueID := c.lookupVenueID(ctx, boardID)
		w = c.newWatcher(boardID, venueID, devices)
		w.Start()
		c.watchers[boardID] = w
	} else if !serialnum.Equal(c.existingBoards[boardID], devices) {
		w.ModifySerialNumbers(devices)
	}

	c.existingBoards[boardID] = devices
	if version != 0 {
		c.existingVersions[boardID] = version
	}
}

// lookupVenueID resolves a board's venue id from the board store. It is the
// one blocking I/O call allowed inside the coordinator's critical section —
// it runs only on the new-watcher path, immediately before constructing it.
func (c *Coordinator) lookupVenueID(ctx context.Context, boardID string) string {
	rec, found, err := c.boardsDB.GetRecord(ctx, boardID, boardID)
	if err != nil {
		logger.Errorf("coordinator: lookupVenueID(%s): store lookup failed: %v", boardID, err)
		return ""
	}
	if !found {
		return ""
	}
	return rec.Venue().VenueID
}

// refreshBoardsToWatch replaces the BoardsToWatch snapshot with the current
// contents of the board store.
func (c *Coordinator) refreshBoardsToWatch(ctx context.Context) {
	snapshot := make(map[string]store.BoardRecord)
	err := c.boardsDB.Iterate(ctx, func(rec store.BoardRecord) error {
		snapshot[rec.ID] = rec
		return nil
	})
	if err != nil {
		logger.Errorf("coordinator: refreshBoardsToWatch: store iteration failed: %v", err)
		return
	}

	c.mu.Lock()
	c.boardsToWatch = snapshot
	c.mu.Unlock()
}
