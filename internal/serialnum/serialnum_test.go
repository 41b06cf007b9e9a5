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

package serialnum

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    uint64
		wantErr bool
	}{
		{"colon separated", "00:00:00:00:00:01", 1, false},
		{"dash separated", "00-00-00-00-00-09", 9, false},
		{"bare hex", "a1b2c3", 0xa1b2c3, false},
		{"empty", "", 0, true},
		{"malformed", "not-a-hex-zz", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("Normalize(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeAllSortsAndDedups(t *testing.T) {
	// Scenario S5: duplicate & unsorted devices normalize to the sorted,
	// duplicate-free set.
	got := NormalizeAll([]string{
		"00:00:00:00:00:05",
		"00:00:00:00:00:02",
		"00:00:00:00:00:05",
	})
	want := []uint64{0x2, 0x5}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAllSkipsMalformed(t *testing.T) {
	got := NormalizeAll([]string{"00:00:00:00:00:01", "zz", "00:00:00:00:00:02"})
	want := []uint64{1, 2}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	if !Equal([]uint64{1, 2, 3}, []uint64{1, 2, 3}) {
		t.Errorf("Equal() = false, want true for identical sets")
	}
	if Equal([]uint64{1, 2}, []uint64{1, 2, 3}) {
		t.Errorf("Equal() = true, want false for differing lengths")
	}
	if Equal([]uint64{1, 2}, []uint64{1, 3}) {
		t.Errorf("Equal() = true, want false for differing contents")
	}
}
