// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package alloc

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestFindFreeSpace(t *testing.T) {
	tests := []struct {
		name      string
		occupied  []Extent
		dataStart int64
		capacity  int64
		length    int64
		want      int64
		wantErr   error
	}{
		{
			name:      "empty store places at data start",
			dataStart: 100,
			capacity:  1000,
			length:    10,
			want:      100,
		},
		{
			name:      "exact fit of whole region",
			dataStart: 100,
			capacity:  110,
			length:    10,
			want:      100,
		},
		{
			name:      "after single extent",
			occupied:  []Extent{{Offset: 100, Length: 50}},
			dataStart: 100,
			capacity:  1000,
			length:    10,
			want:      150,
		},
		{
			name:      "first fit takes earliest adequate gap",
			occupied:  []Extent{{Offset: 110, Length: 10}, {Offset: 200, Length: 10}},
			dataStart: 100,
			capacity:  1000,
			length:    10,
			want:      100,
		},
		{
			name:      "skips gap that is too narrow",
			occupied:  []Extent{{Offset: 105, Length: 10}, {Offset: 200, Length: 10}},
			dataStart: 100,
			capacity:  1000,
			length:    10,
			want:      115,
		},
		{
			name:      "first fit, not best fit",
			occupied:  []Extent{{Offset: 130, Length: 10}, {Offset: 152, Length: 10}},
			dataStart: 100,
			capacity:  1000,
			length:    12,
			want:      100,
		},
		{
			name:      "unsorted input",
			occupied:  []Extent{{Offset: 300, Length: 10}, {Offset: 100, Length: 200}},
			dataStart: 100,
			capacity:  1000,
			length:    5,
			want:      310,
		},
		{
			name:      "empty extents ignored",
			occupied:  []Extent{{Offset: 100, Length: 0}},
			dataStart: 100,
			capacity:  1000,
			length:    5,
			want:      100,
		},
		{
			name:      "tail gap too small",
			occupied:  []Extent{{Offset: 100, Length: 895}},
			dataStart: 100,
			capacity:  1000,
			length:    6,
			wantErr:   ErrNoSpace,
		},
		{
			name:      "data start beyond capacity",
			dataStart: 2000,
			capacity:  1000,
			length:    1,
			wantErr:   ErrNoSpace,
		},
		{
			name:      "extent past capacity clips tail",
			occupied:  []Extent{{Offset: 900, Length: 500}},
			dataStart: 100,
			capacity:  1000,
			length:    900,
			wantErr:   ErrNoSpace,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FindFreeSpace(test.occupied, test.dataStart, test.capacity, test.length)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("FindFreeSpace() err = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindFreeSpace() error: %v", err)
			}
			if got != test.want {
				t.Errorf("FindFreeSpace() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestFindFreeSpaceRejectsZeroLength(t *testing.T) {
	if _, err := FindFreeSpace(nil, 0, 100, 0); err == nil {
		t.Fatal("FindFreeSpace(length=0) succeeded, want error")
	}
}

func TestFindFreeSpaceDoesNotMutateInput(t *testing.T) {
	occupied := []Extent{{Offset: 300, Length: 10}, {Offset: 100, Length: 10}}
	original := slices.Clone(occupied)

	if _, err := FindFreeSpace(occupied, 0, 1000, 5); err != nil {
		t.Fatalf("FindFreeSpace: %v", err)
	}
	if !slices.Equal(occupied, original) {
		t.Errorf("input reordered: %v, want %v", occupied, original)
	}
}

func TestGaps(t *testing.T) {
	occupied := []Extent{{Offset: 20, Length: 10}, {Offset: 50, Length: 5}}
	got := Gaps(occupied, 10, 100)
	want := []Extent{
		{Offset: 10, Length: 10},
		{Offset: 30, Length: 20},
		{Offset: 55, Length: 45},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Gaps() = %v, want %v", got, want)
	}

	if largest := Largest(got); largest != (Extent{Offset: 55, Length: 45}) {
		t.Errorf("Largest() = %v, want {55 45}", largest)
	}
}

func TestGapsFullRegion(t *testing.T) {
	if gaps := Gaps([]Extent{{Offset: 0, Length: 100}}, 0, 100); len(gaps) != 0 {
		t.Errorf("Gaps() on full region = %v, want none", gaps)
	}
	if largest := Largest(nil); largest != (Extent{}) {
		t.Errorf("Largest(nil) = %v, want zero extent", largest)
	}
}

// TestPlacementNeverOverlaps allocates random lengths until the region
// fills and checks that no two placements ever share a byte.
func TestPlacementNeverOverlaps(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))
	const dataStart, capacity = 64, 64 * 1024

	for round := range 20 {
		var placed []Extent
		for {
			length := int64(random.IntN(512) + 1)
			offset, err := FindFreeSpace(placed, dataStart, capacity, length)
			if errors.Is(err, ErrNoSpace) {
				break
			}
			if err != nil {
				t.Fatalf("round %d: FindFreeSpace: %v", round, err)
			}
			extent := Extent{Offset: offset, Length: length}
			if extent.Offset < dataStart || extent.End() > capacity {
				t.Fatalf("round %d: extent %v outside [%d, %d)", round, extent, dataStart, capacity)
			}
			for _, other := range placed {
				if extent.Overlaps(other) {
					t.Fatalf("round %d: extent %v overlaps %v", round, extent, other)
				}
			}
			placed = append(placed, extent)

			// Free a random extent now and then to exercise gap reuse.
			if len(placed) > 4 && random.IntN(3) == 0 {
				victim := random.IntN(len(placed))
				placed = slices.Delete(placed, victim, victim+1)
			}
		}
	}
}
