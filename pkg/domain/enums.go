package domain

import (
	"strings"

	dErrors "btoflow/pkg/domain-errors"
)

// FlatType is a unit category with independent inventory and price per project.
type FlatType string

const (
	FlatTypeTwoRooms   FlatType = "TWO_ROOMS"
	FlatTypeThreeRooms FlatType = "THREE_ROOMS"
)

// FlatTypes lists every known flat type in display order.
func FlatTypes() []FlatType {
	return []FlatType{FlatTypeTwoRooms, FlatTypeThreeRooms}
}

// ParseFlatType validates a flat type token.
func ParseFlatType(raw string) (FlatType, error) {
	switch FlatType(strings.ToUpper(strings.TrimSpace(raw))) {
	case FlatTypeTwoRooms:
		return FlatTypeTwoRooms, nil
	case FlatTypeThreeRooms:
		return FlatTypeThreeRooms, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown flat type: expected TWO_ROOMS or THREE_ROOMS")
	}
}

func (f FlatType) String() string { return string(f) }

// MaritalStatus gates which flat types an applicant may select.
type MaritalStatus string

const (
	MaritalStatusSingle  MaritalStatus = "SINGLE"
	MaritalStatusMarried MaritalStatus = "MARRIED"
)

// ParseMaritalStatus validates a marital status token.
func ParseMaritalStatus(raw string) (MaritalStatus, error) {
	switch MaritalStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case MaritalStatusSingle:
		return MaritalStatusSingle, nil
	case MaritalStatusMarried:
		return MaritalStatusMarried, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown marital status: expected SINGLE or MARRIED")
	}
}

func (m MaritalStatus) String() string { return string(m) }
