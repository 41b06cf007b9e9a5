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

// Package store defines the external collaborators the Coordinator depends
// on but does not own: the persisted board and time-points tables, and the
// upstream provisioning SDK (§6). Production implementations of these
// (a real database, a real SDK client) are explicitly out of scope (§1);
// only the contracts and in-memory test fakes live here.
package store

import "context"

// VenueBinding is one element of a board's venueList (§3). Only the first
// binding is semantically meaningful to the Coordinator.
type VenueBinding struct {
	VenueID          string
	MonitorSubVenues bool
}

// BoardRecord is the persisted board row (§3).
type BoardRecord struct {
	ID        string
	Name      string
	VenueList []VenueBinding
}

// Venue returns the board's first venue binding, or the zero value if the
// board has no venue bound.
func (b BoardRecord) Venue() VenueBinding {
	if len(b.VenueList) == 0 {
		return VenueBinding{}
	}
	return b.VenueList[0]
}

// BoardsDB is the persisted board table (§6).
type BoardsDB interface {
	// GetRecord looks up a board by key/id. found is false if no such record
	// exists; it is not an error condition.
	GetRecord(ctx context.Context, key, id string) (rec BoardRecord, found bool, err error)
	CreateRecord(ctx context.Context, rec BoardRecord) error
	UpdateRecord(ctx context.Context, rec BoardRecord) error
	DeleteRecord(ctx context.Context, id string) error
	// Iterate calls fn once per stored board record. Iteration stops early
	// if fn returns an error.
	Iterate(ctx context.Context, fn func(BoardRecord) error) error
}

// TimePointRecord identifies a stored analytics time-point by the board it
// was collected for.
type TimePointRecord struct {
	BoardID string
}

// TimePointFilter selects time-point records for bulk deletion.
type TimePointFilter func(TimePointRecord) bool

// TimePointsDB is the persisted analytics time-points table (§6).
type TimePointsDB interface {
	DeleteBoard(ctx context.Context, boardID string) error
	DeleteRecords(ctx context.Context, filter TimePointFilter) error
}

// ProvisioningSDK is the upstream provisioning SDK (§6).
type ProvisioningSDK interface {
	// VenueExists reports whether venueID is still known upstream.
	VenueExists(ctx context.Context, venueID string) (bool, error)
	// GetDevices returns the current device serial list for a venue and
	// whether the venue still exists upstream.
	GetDevices(ctx context.Context, venueID string, monitorSubVenues bool) (devices []string, venueExists bool, err error)
}
