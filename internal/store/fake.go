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

package store

import (
	"context"
	"fmt"
	"sync"
)

// FakeBoardsDB is an in-memory BoardsDB used by tests and by the default
// wiring in cmd/venuecoordd; it is not a production backend.
type FakeBoardsDB struct {
	mu      sync.Mutex
	records map[string]BoardRecord
}

// NewFakeBoardsDB allocates an empty FakeBoardsDB.
func NewFakeBoardsDB() *FakeBoardsDB {
	return &FakeBoardsDB{records: make(map[string]BoardRecord)}
}

// Seed inserts a record directly, bypassing CreateRecord, for test setup.
func (f *FakeBoardsDB) Seed(rec BoardRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = rec
}

func (f *FakeBoardsDB) GetRecord(_ context.Context, _, id string) (BoardRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, found := f.records[id]
	return rec, found, nil
}

func (f *FakeBoardsDB) CreateRecord(_ context.Context, rec BoardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.records[rec.ID]; exists {
		return fmt.Errorf("store: board %q already exists", rec.ID)
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *FakeBoardsDB) UpdateRecord(_ context.Context, rec BoardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = rec
	return nil
}

func (f *FakeBoardsDB) DeleteRecord(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *FakeBoardsDB) Iterate(_ context.Context, fn func(BoardRecord) error) error {
	f.mu.Lock()
	recs := make([]BoardRecord, 0, len(f.records))
	for _, rec := range f.records {
		recs = append(recs, rec)
	}
	f.mu.Unlock()

	for _, rec := range recs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// FakeTimePointsDB is an in-memory TimePointsDB used by tests and by the
// default wiring in cmd/venuecoordd.
type FakeTimePointsDB struct {
	mu      sync.Mutex
	deleted map[string]int
	points  []TimePointRecord
}

// NewFakeTimePointsDB allocates an empty FakeTimePointsDB.
func NewFakeTimePointsDB() *FakeTimePointsDB {
	return &FakeTimePointsDB{deleted: make(map[string]int)}
}

func (f *FakeTimePointsDB) DeleteBoard(_ context.Context, boardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted[boardID]++

	kept := f.points[:0]
	for _, p := range f.points {
		if p.BoardID != boardID {
			kept = append(kept, p)
		}
	}
	f.points = kept
	return nil
}

func (f *FakeTimePointsDB) DeleteRecords(_ context.Context, filter TimePointFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.points[:0]
	for _, p := range f.points {
		if filter(p) {
			f.deleted[p.BoardID]++
			continue
		}
		kept = append(kept, p)
	}
	f.points = kept
	return nil
}

// DeleteCount returns how many times boardID has been targeted for
// deletion, for test assertions (scenario S4).
func (f *FakeTimePointsDB) DeleteCount(boardID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted[boardID]
}

// FakeProvisioningSDK is an in-memory ProvisioningSDK used by tests and by
// the default wiring in cmd/venuecoordd.
type FakeProvisioningSDK struct {
	mu      sync.Mutex
	venues  map[string]bool
	devices map[string][]string
	err     error
}

// NewFakeProvisioningSDK allocates a FakeProvisioningSDK with all venues
// absent until SetVenue is called.
func NewFakeProvisioningSDK() *FakeProvisioningSDK {
	return &FakeProvisioningSDK{
		venues:  make(map[string]bool),
		devices: make(map[string][]string),
	}
}

// SetVenue configures whether venueID exists and what devices it reports.
func (f *FakeProvisioningSDK) SetVenue(venueID string, exists bool, devices []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.venues[venueID] = exists
	f.devices[venueID] = devices
}

// SetError makes every subsequent call fail with err, simulating a
// transient upstream error (§7).
func (f *FakeProvisioningSDK) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeProvisioningSDK) VenueExists(_ context.Context, venueID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.venues[venueID], nil
}

func (f *FakeProvisioningSDK) GetDevices(_ context.Context, venueID string, _ bool) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	return f.devices[venueID], f.venues[venueID], nil
}
