// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "testing"

func TestEntityType_OrdinalRoundTrip(t *testing.T) {
	for i := 1; i < EntityTypeCount; i++ {
		entityType := EntityType(i)
		got, err := EntityTypeFromOrdinal(entityType.ToOrdinal())
		if err != nil {
			t.Fatalf("%d: EntityTypeFromOrdinal(%d) returned error: %v", i, entityType.ToOrdinal(), err)
		}
		if got != entityType {
			t.Fatalf("%d: EntityTypeFromOrdinal(%d) = %d, want %d", i, entityType.ToOrdinal(), got, entityType)
		}
	}
}

func TestEntityTypeFromOrdinal_OutOfRange(t *testing.T) {
	_, err := EntityTypeFromOrdinal(255)
	if err == nil {
		t.Fatal("expected error for out-of-range ordinal 255")
	}
	if want := "decode error: invalid entity type integer 255"; err.Error() != want {
		t.Fatalf("got error %q, want %q", err.Error(), want)
	}
}

func TestEntityType_UnmarshalTextError(t *testing.T) {
	var entityType EntityType
	err := entityType.UnmarshalText([]byte("NotARealEntityType"))
	if err == nil {
		t.Fatal("expected error for unknown entity type name")
	}
	if want := "decode error: invalid entity type NotARealEntityType"; err.Error() != want {
		t.Fatalf("got error %q, want %q", err.Error(), want)
	}
}
