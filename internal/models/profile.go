package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxSavedAddresses = 10

type AddressLabel string

const (
	AddressHome  AddressLabel = "Home"
	AddressWork  AddressLabel = "Work"
	AddressOther AddressLabel = "Other"
)

func (l AddressLabel) Valid() bool {
	switch l {
	case AddressHome, AddressWork, AddressOther:
		return true
	}
	return false
}

var (
	Genders     = []string{"Male", "Female", "Other"}
	BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// SavedAddress is a delivery address kept on a profile. Its fields are
// those of an order address.
type SavedAddress struct {
	ID    uuid.UUID    `json:"_id"`
	Label AddressLabel `json:"type"`
	Address
}

// Profile holds the personal details of a user. One row per user, created
// empty on first read.
type Profile struct {
	UserID      uuid.UUID      `gorm:"type:uuid;primaryKey"       json:"userId"`
	FullName    string         `json:"fullName"`
	DateOfBirth *time.Time     `json:"dateOfBirth,omitempty"`
	BloodGroup  string         `json:"bloodGroup,omitempty"`
	Gender      string         `json:"gender,omitempty"`
	Addresses   []SavedAddress `gorm:"type:text;serializer:json" json:"addresses"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (p *Profile) FindAddress(id uuid.UUID) (int, bool) {
	for i, a := range p.Addresses {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}
