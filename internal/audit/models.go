// Package audit records the append-only action log. Entries are written
// through the caller's transaction on write paths so a row and its audit
// record commit or roll back together.
package audit

import (
	"time"

	"vetblood/pkg/domain"
)

// Action tags recorded by the system. Free-form detail rides in Entry.Details.
const (
	ActionRegistration  = "registration"
	ActionProfileView   = "profile_view"
	ActionProfileUpdate = "profile_update"
	ActionProfileDelete = "profile_delete"
	ActionClinicCreate  = "vet_clinic_create"
	ActionClinicUpdate  = "vet_clinic_update"
	ActionClinicDelete  = "vet_clinic_delete"
	ActionPetCreate     = "pet_create"
	ActionPetUpdate     = "pet_update"
	ActionPetDelete     = "pet_delete"
	ActionStockCreate   = "stock_create"
	ActionStockUpdate   = "stock_update"
	ActionStockDelete   = "stock_delete"
	ActionStockBook     = "stock_book"
	ActionSearchCreate  = "search_create"
	ActionSearchUpdate  = "search_update"
	ActionSearchDelete  = "search_delete"
	ActionDonationPlan   = "donation_plan"
	ActionDonationUpdate = "donation_update"
	ActionDonationDelete = "donation_delete"
	ActionChatCreate    = "chat_create"
	ActionChatDelete    = "chat_delete"
	ActionMessageSend   = "message_send"
	ActionMessageDelete = "message_delete"
)

// Entry is one append-only audit record. Never mutated or deleted by the
// system itself.
type Entry struct {
	ActorID   domain.UserID
	Action    string
	Details   map[string]any
	Timestamp time.Time
}
