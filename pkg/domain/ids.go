// Package domain holds typed identifiers and closed enumerations shared by
// every layer. Typed UUIDs prevent cross-entity ID mix-ups at compile time
// (a PetID can never be passed where a ClinicID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "vetblood/pkg/domain-errors"
)

// Typed entity identifiers.
type (
	UserID    uuid.UUID
	PetID     uuid.UUID
	ClinicID  uuid.UUID
	StockID   uuid.UUID
	SearchID  uuid.UUID
	DonationID uuid.UUID
	ChatID    uuid.UUID
	MessageID uuid.UUID
)

// TelegramID is the external messaging identity, unique per User.
type TelegramID int64

func (t TelegramID) IsNil() bool { return t == 0 }

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParsePetID(s string) (PetID, error) {
	u, err := parseUUID(s)
	return PetID(u), err
}

func ParseClinicID(s string) (ClinicID, error) {
	u, err := parseUUID(s)
	return ClinicID(u), err
}

func ParseStockID(s string) (StockID, error) {
	u, err := parseUUID(s)
	return StockID(u), err
}

func ParseSearchID(s string) (SearchID, error) {
	u, err := parseUUID(s)
	return SearchID(u), err
}

func ParseDonationID(s string) (DonationID, error) {
	u, err := parseUUID(s)
	return DonationID(u), err
}

func ParseChatID(s string) (ChatID, error) {
	u, err := parseUUID(s)
	return ChatID(u), err
}

func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID(s)
	return MessageID(u), err
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id PetID) String() string      { return uuid.UUID(id).String() }
func (id ClinicID) String() string   { return uuid.UUID(id).String() }
func (id StockID) String() string    { return uuid.UUID(id).String() }
func (id SearchID) String() string   { return uuid.UUID(id).String() }
func (id DonationID) String() string { return uuid.UUID(id).String() }
func (id ChatID) String() string     { return uuid.UUID(id).String() }
func (id MessageID) String() string  { return uuid.UUID(id).String() }

// Defined types do not inherit uuid.UUID's encoding methods, so each ID
// delegates explicitly; without these, JSON encodes IDs as byte arrays.
func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id PetID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ClinicID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id StockID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id SearchID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id DonationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ChatID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id MessageID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PetID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ClinicID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *StockID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SearchID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DonationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ChatID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MessageID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PetID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ClinicID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id StockID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SearchID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ChatID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewPetID() PetID           { return PetID(uuid.New()) }
func NewClinicID() ClinicID     { return ClinicID(uuid.New()) }
func NewStockID() StockID       { return StockID(uuid.New()) }
func NewSearchID() SearchID     { return SearchID(uuid.New()) }
func NewDonationID() DonationID { return DonationID(uuid.New()) }
func NewChatID() ChatID         { return ChatID(uuid.New()) }
func NewMessageID() MessageID   { return MessageID(uuid.New()) }
