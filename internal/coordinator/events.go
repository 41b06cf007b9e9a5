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
	"github.com/openwifi/venue-analytics-coordinator/internal/provisioning"
	"github.com/openwifi/venue-analytics-coordinator/internal/serialnum"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
)

// HandleProvisioningEvent dispatches a parsed provisioning event on its
// eventType (§4.c's state machine).
func (c *Coordinator) HandleProvisioningEvent(ctx context.Context, e provisioning.Event) {
	if e.IsDelete() {
		c.StopBoard(e.Board.ID)
		if err := c.boardsDB.DeleteRecord(ctx, e.Board.ID); err != nil {
			logger.Errorf("coordinator: delete event for %s: failed to delete board record: %v", e.Board.ID, err)
		}
		if err := c.timePointsDB.DeleteBoard(ctx, e.Board.ID); err != nil {
			logger.Errorf("coordinator: delete event for %s: failed to delete time-points: %v", e.Board.ID, err)
		}
		c.mu.Lock()
		delete(c.boardsToWatch, e.Board.ID)
		c.mu.Unlock()
		return
	}

	_, found, err := c.boardsDB.GetRecord(ctx, e.Board.ID, e.Board.ID)
	if err != nil {
		logger.Errorf("coordinator: event %s for board %s: store lookup failed: %v", e.EventType, e.Board.ID, err)
		return
	}
	if !found {
		rec := store.BoardRecord{
			ID:   e.Board.ID,
			Name: e.Board.Name,
			VenueList: []store.VenueBinding{{
				VenueID:          e.Board.VenueID,
				MonitorSubVenues: e.Board.MonitorSubVenues,
			}},
		}
		if err := c.boardsDB.CreateRecord(ctx, rec); err != nil {
			logger.Errorf("coordinator: event %s for board %s: failed to persist synthesized record: %v", e.EventType, e.Board.ID, err)
			return
		}
	}

	c.StartBoard(ctx, e)
}

// StartBoard computes the sorted unique device set from e.Board.Devices and
// applies it through ApplyDeviceUpdate with the event's asserted version.
func (c *Coordinator) StartBoard(ctx context.Context, e provisioning.Event) {
	devices := serialnum.NormalizeAll(e.Board.Devices)
	c.ApplyDeviceUpdate(ctx, e.Board.ID, devices, e.Board.Version)
}

// startBoardFromRecord is the SDK-sourced counterpart to StartBoard, used by
// the slow poll loop: it queries the provisioning SDK live for the board's
// current devices and applies the result with version=0, since the store
// does not carry a provisioning version for boards it has not seen an event
// for yet.
func (c *Coordinator) startBoardFromRecord(ctx context.Context, rec store.BoardRecord) {
	venue := rec.Venue()
	devices, venueExists, err := c.sdk.GetDevices(ctx, venue.VenueID, venue.MonitorSubVenues)
	if err != nil {
		logger.Errorf("coordinator: startBoardFromRecord(%s): provisioning SDK query failed: %v", rec.ID, err)
		return
	}
	if !venueExists {
		c.RetireBoard(ctx, rec.ID)
		return
	}

	c.ApplyDeviceUpdate(ctx, rec.ID, serialnum.NormalizeAll(devices), 0)
}
