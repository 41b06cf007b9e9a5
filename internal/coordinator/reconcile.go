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
	"time"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
)

// slowPollLoop re-reads the full board table once per sleep interval,
// starting or retiring boards as needed (§4.c). Each wait also selects on
// stopCh, so Stop ends the loop without waiting out the interval (a pass
// already in progress finishes first).
func (c *Coordinator) slowPollLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		case <-time.After(slowPollInterval):
		}

		c.slowPollOnce(ctx)
	}
}

func (c *Coordinator) slowPollOnce(ctx context.Context) {
	c.refreshBoardsToWatch(ctx)

	c.mu.Lock()
	recs := make([]store.BoardRecord, 0, len(c.boardsToWatch))
	for _, rec := range c.boardsToWatch {
		recs = append(recs, rec)
	}
	c.mu.Unlock()

	for _, rec := range recs {
		if !c.Watching(rec.ID) {
			c.startBoardFromRecord(ctx, rec)
			continue
		}

		venue := rec.Venue()
		exists, err := c.sdk.VenueExists(ctx, venue.VenueID)
		if err != nil {
			logger.Errorf("coordinator: slow poll: VenueExists(%s) for board %s failed: %v", venue.VenueID, rec.ID, err)
			continue
		}
		if !exists {
			c.RetireBoard(ctx, rec.ID)
		}
	}
}

// reconcileJob drives the 3-minute reconciliation timer via the scheduler
// package: for every currently-watched board, call UpdateBoard.
type reconcileJob struct {
	c *Coordinator
}

func (j *reconcileJob) ID() string { return reconcileJobID }

func (j *reconcileJob) Interval() (time.Duration, bool) { return reconcileInterval, false }

func (j *reconcileJob) ShouldEnable(context.Context) bool { return true }

func (j *reconcileJob) Run(ctx context.Context) (bool, error) {
	for _, id := range j.c.watchedBoardIDs() {
		j.c.UpdateBoard(ctx, id)
	}
	return true, nil
}
