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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openwifi/venue-analytics-coordinator/internal/provisioning"
	"github.com/openwifi/venue-analytics-coordinator/internal/store"
	"github.com/openwifi/venue-analytics-coordinator/internal/watcher"
)

func newTestCoordinator() (*Coordinator, *store.FakeBoardsDB, *store.FakeTimePointsDB, *store.FakeProvisioningSDK) {
	boards := store.NewFakeBoardsDB()
	points := store.NewFakeTimePointsDB()
	sdk := store.NewFakeProvisioningSDK()

	c := New(Options{
		BoardsDB:     boards,
		TimePointsDB: points,
		SDK:          sdk,
		NewWatcher: func(boardID, venueID string, devices []uint64) watcher.Interface {
			return watcher.NewFake(venueID, devices)
		},
	})
	return c, boards, points, sdk
}

func deviceEvent(eventType, boardID, venueID string, version uint64, devices []string) provisioning.Event {
	return provisioning.Event{
		EventType: eventType,
		Board: provisioning.Board{
			ID:      boardID,
			VenueID: venueID,
			Version: version,
			Devices: devices,
		},
	}
}

// S1 — create then update in order.
func TestHandleProvisioningEventCreateThenUpdate(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:01", "00:00:00:00:00:02"}))
	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 2,
		[]string{"00:00:00:00:00:02", "00:00:00:00:00:03"}))

	c.mu.Lock()
	gotDevices := c.existingBoards["B1"]
	gotVersion := c.existingVersions["B1"]
	_, hasWatcher := c.watchers["B1"]
	watcherCount := len(c.watchers)
	c.mu.Unlock()

	wantDevices := []uint64{0x2, 0x3}
	if diff := cmp.Diff(wantDevices, gotDevices); diff != "" {
		t.Errorf("ExistingBoards[B1] mismatch (-want +got):\n%s", diff)
	}
	if gotVersion != 2 {
		t.Errorf("ExistingVersions[B1] = %d, want 2", gotVersion)
	}
	if !hasWatcher {
		t.Errorf("expected a watcher for B1")
	}
	if watcherCount != 1 {
		t.Errorf("watcher count = %d, want exactly 1", watcherCount)
	}
}

// S2 — a stale version is dropped without any state change.
func TestHandleProvisioningEventStaleDropped(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:01", "00:00:00:00:00:02"}))
	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 2,
		[]string{"00:00:00:00:00:02", "00:00:00:00:00:03"}))

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:09"}))

	c.mu.Lock()
	gotDevices := c.existingBoards["B1"]
	gotVersion := c.existingVersions["B1"]
	c.mu.Unlock()

	wantDevices := []uint64{0x2, 0x3}
	if diff := cmp.Diff(wantDevices, gotDevices); diff != "" {
		t.Errorf("ExistingBoards[B1] mismatch after stale event (-want +got):\n%s", diff)
	}
	if gotVersion != 2 {
		t.Errorf("ExistingVersions[B1] = %d, want 2 (stale event must not bump it)", gotVersion)
	}
}

// S3 — version 0 always applies, even with an empty device list, and
// leaves the watcher alive and ExistingVersions untouched.
func TestHandleProvisioningEventVersionZeroAlwaysApplies(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:01", "00:00:00:00:00:02"}))
	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 2,
		[]string{"00:00:00:00:00:02", "00:00:00:00:00:03"}))

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 0, nil))

	c.mu.Lock()
	gotDevices := c.existingBoards["B1"]
	gotVersion := c.existingVersions["B1"]
	_, hasWatcher := c.watchers["B1"]
	c.mu.Unlock()

	if len(gotDevices) != 0 {
		t.Errorf("ExistingBoards[B1] = %v, want empty", gotDevices)
	}
	if !hasWatcher {
		t.Errorf("watcher for B1 must survive an empty device list")
	}
	if gotVersion != 2 {
		t.Errorf("ExistingVersions[B1] = %d, want 2 (unchanged by a version=0 update)", gotVersion)
	}
}

// S4 — delete cascades to the watcher, the board store and the time-points
// store.
func TestHandleProvisioningEventDelete(t *testing.T) {
	c, boards, points, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:01"}))

	c.HandleProvisioningEvent(ctx, provisioning.Event{
		EventType: provisioning.EventBoardDeleted,
		Board:     provisioning.Board{ID: "B1"},
	})

	c.mu.Lock()
	_, hasWatcher := c.watchers["B1"]
	_, hasBoard := c.existingBoards["B1"]
	_, hasVersion := c.existingVersions["B1"]
	c.mu.Unlock()

	if hasWatcher {
		t.Errorf("watcher for B1 must be gone after delete")
	}
	if hasBoard || hasVersion {
		t.Errorf("ExistingBoards/ExistingVersions must have no B1 key after delete")
	}
	if _, found, _ := boards.GetRecord(ctx, "B1", "B1"); found {
		t.Errorf("board store must have no B1 record after delete")
	}
	if got := points.DeleteCount("B1"); got != 1 {
		t.Errorf("TimePointsDB.DeleteBoard(B1) called %d times, want 1", got)
	}
}

// S5 — duplicate and unsorted devices normalize to the sorted, deduped set.
func TestHandleProvisioningEventNormalizesDevices(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:05", "00:00:00:00:00:02", "00:00:00:00:00:05"}))

	c.mu.Lock()
	got := c.existingBoards["B1"]
	c.mu.Unlock()

	want := []uint64{0x2, 0x5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExistingBoards[B1] mismatch (-want +got):\n%s", diff)
	}
}

// P2 (invariant I1): dom(Watchers) = dom(ExistingBoards) after any
// operation, including a sequence that clears a board's device list.
func TestInvariantWatchersMatchesExistingBoards(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	steps := []provisioning.Event{
		deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1, []string{"00:00:00:00:00:01"}),
		deviceEvent(provisioning.EventBoardUpdated, "B1", "V1", 2, nil),
		deviceEvent(provisioning.EventBoardCreated, "B2", "V2", 1, []string{"00:00:00:00:00:02"}),
	}

	for _, e := range steps {
		c.HandleProvisioningEvent(ctx, e)

		c.mu.Lock()
		for id := range c.watchers {
			if _, ok := c.existingBoards[id]; !ok {
				t.Errorf("watcher %s has no matching ExistingBoards entry", id)
			}
		}
		for id := range c.existingBoards {
			if _, ok := c.watchers[id]; !ok {
				t.Errorf("ExistingBoards[%s] has no matching watcher", id)
			}
		}
		c.mu.Unlock()
	}
}

// P3 (idempotence of replay): applying the same event twice is the same as
// applying it once.
func TestApplyDeviceUpdateIdempotent(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	e := deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1, []string{"00:00:00:00:00:01", "00:00:00:00:00:02"})

	c.HandleProvisioningEvent(ctx, e)
	c.mu.Lock()
	firstDevices := append([]uint64(nil), c.existingBoards["B1"]...)
	firstVersion := c.existingVersions["B1"]
	c.mu.Unlock()

	c.HandleProvisioningEvent(ctx, e)
	c.mu.Lock()
	secondDevices := c.existingBoards["B1"]
	secondVersion := c.existingVersions["B1"]
	watcherCount := len(c.watchers)
	c.mu.Unlock()

	if diff := cmp.Diff(firstDevices, secondDevices); diff != "" {
		t.Errorf("replaying the same event changed ExistingBoards (-first +second):\n%s", diff)
	}
	if firstVersion != secondVersion {
		t.Errorf("replaying the same event changed ExistingVersions: %d -> %d", firstVersion, secondVersion)
	}
	if watcherCount != 1 {
		t.Errorf("replaying the same event must not create a second watcher, got %d", watcherCount)
	}
}

// P4 (sort/dedup closure): ExistingBoards is always strictly ascending and
// duplicate-free.
func TestExistingBoardsStaysSortedAndUnique(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:09", "00:00:00:00:00:01", "00:00:00:00:00:09", "00:00:00:00:00:05"}))

	c.mu.Lock()
	got := c.existingBoards["B1"]
	c.mu.Unlock()

	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("ExistingBoards[B1] not strictly ascending at index %d: %v", i, got)
		}
	}
}

// Venue gone mid-reconciliation retires the board.
func TestUpdateBoardRetiresWhenVenueGone(t *testing.T) {
	c, boards, points, sdk := newTestCoordinator()
	ctx := context.Background()

	c.HandleProvisioningEvent(ctx, deviceEvent(provisioning.EventBoardCreated, "B1", "V1", 1,
		[]string{"00:00:00:00:00:01"}))

	sdk.SetVenue("V1", false, nil)
	c.UpdateBoard(ctx, "B1")

	if c.Watching("B1") {
		t.Errorf("board B1 must not be watched once its venue is gone")
	}
	if _, found, _ := boards.GetRecord(ctx, "B1", "B1"); found {
		t.Errorf("board store must have no B1 record after retirement")
	}
	if got := points.DeleteCount("B1"); got != 1 {
		t.Errorf("TimePointsDB.DeleteBoard(B1) called %d times, want 1", got)
	}
}
