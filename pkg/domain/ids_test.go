package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vetblood/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePetID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePetID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePetID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParsePetID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PetID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	petID := PetID(uuid.New())
	clinicID := ClinicID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ PetID = clinicID   // compile error
	// var _ ClinicID = petID   // compile error

	assert.NotEqual(t, uuid.UUID(petID), uuid.UUID(clinicID))
}

// TestIDJSONWireForm pins the API wire form: IDs serialize as UUID strings,
// never as uuid.UUID's underlying byte array.
func TestIDJSONWireForm(t *testing.T) {
	id := NewUserID()

	b, err := json.Marshal(struct {
		ID      UserID     `json:"id"`
		Clinics []ClinicID `json:"clinics"`
	}{ID: id, Clinics: []ClinicID{NewClinicID()}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"`+id.String()+`"`)
	assert.NotContains(t, string(b), `"id":[`)

	var decoded struct {
		ID UserID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, id, decoded.ID)
}

func TestStatusEnums(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (string, bool)
		valid   []string
		invalid []string
	}{
		{
			name: "stock status",
			parse: func(s string) (string, bool) {
				v, err := ParseStockStatus(s)
				return string(v), err == nil
			},
			valid:   []string{"active", "booked", "expired"},
			invalid: []string{"", "reserved", "ACTIVE", "done"},
		},
		{
			name: "search status",
			parse: func(s string) (string, bool) {
				v, err := ParseSearchStatus(s)
				return string(v), err == nil
			},
			valid:   []string{"active", "closed"},
			invalid: []string{"", "open", "cancelled"},
		},
		{
			name: "donation status",
			parse: func(s string) (string, bool) {
				v, err := ParseDonationStatus(s)
				return string(v), err == nil
			},
			valid:   []string{"planned", "completed", "cancelled"},
			invalid: []string{"", "scheduled", "no_show"},
		},
		{
			name: "user role",
			parse: func(s string) (string, bool) {
				v, err := ParseUserRole(s)
				return string(v), err == nil
			},
			valid:   []string{"owner", "donor", "clinic"},
			invalid: []string{"", "admin", "Owner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.valid {
				got, ok := tt.parse(s)
				require.True(t, ok, "expected %q to parse", s)
				assert.Equal(t, s, got)
			}
			for _, s := range tt.invalid {
				_, ok := tt.parse(s)
				assert.False(t, ok, "expected %q to be rejected", s)
			}
		})
	}
}

func TestLocationIsZero(t *testing.T) {
	assert.True(t, Location{}.IsZero())
	assert.False(t, Location{Latitude: 55.0, Longitude: 37.0}.IsZero())
	assert.False(t, Location{Latitude: 55.0}.IsZero())
}
