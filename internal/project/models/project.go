package models

import (
	"time"

	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
)

// Project is the aggregate root for a housing project.
//
// Invariants:
//   - Unit counts per flat type are never negative
//   - len(OfficerIDs) <= OfficerSlot
//   - An officer appears in OfficerIDs at most once
//   - Visibility gates new applications only; existing applications, bookings,
//     and officer views are unaffected by toggling it off
type Project struct {
	ID           domain.ProjectID
	Name         string
	Neighborhood string
	Units        map[domain.FlatType]int
	Prices       map[domain.FlatType]float64
	OpensAt      time.Time
	ClosesAt     time.Time
	ManagerID    domain.NRIC
	OfficerSlot  int
	OfficerIDs   []domain.NRIC
	Visible      bool
}

// New validates and constructs a project.
func New(id domain.ProjectID, name, neighborhood string, managerID domain.NRIC, officerSlot int) (*Project, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project name cannot be empty")
	}
	if officerSlot < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "officer slot capacity cannot be negative")
	}
	return &Project{
		ID:           id,
		Name:         name,
		Neighborhood: neighborhood,
		Units:        make(map[domain.FlatType]int),
		Prices:       make(map[domain.FlatType]float64),
		ManagerID:    managerID,
		OfficerSlot:  officerSlot,
	}, nil
}

// SetFlatType registers inventory and pricing for one flat type.
func (p *Project) SetFlatType(ft domain.FlatType, units int, price float64) error {
	if units < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "unit count cannot be negative")
	}
	if p.Units == nil {
		p.Units = make(map[domain.FlatType]int)
	}
	if p.Prices == nil {
		p.Prices = make(map[domain.FlatType]float64)
	}
	p.Units[ft] = units
	p.Prices[ft] = price
	return nil
}

// UnitsFor returns the remaining inventory for a flat type.
func (p *Project) UnitsFor(ft domain.FlatType) int {
	return p.Units[ft]
}

// Offers reports whether the project carries the flat type at all.
func (p *Project) Offers(ft domain.FlatType) bool {
	_, ok := p.Units[ft]
	return ok
}

// CanReserveUnit checks that one unit of the flat type remains.
// A zero count here is fatal to the operation, never clamped.
func (p *Project) CanReserveUnit(ft domain.FlatType) error {
	if p.Units[ft] <= 0 {
		return sentinel.ErrNoUnits
	}
	return nil
}

// ApplyReserveUnit decrements inventory by exactly one.
// Call CanReserveUnit first inside the same store critical section.
func (p *Project) ApplyReserveUnit(ft domain.FlatType) {
	p.Units[ft]--
}

// ApplyReleaseUnit returns one unit to the pool. Used only to compensate a
// booking whose application persist failed.
func (p *Project) ApplyReleaseUnit(ft domain.FlatType) {
	p.Units[ft]++
}

// HasOfficer reports whether the NRIC is already attached to the project.
func (p *Project) HasOfficer(nric domain.NRIC) bool {
	for _, id := range p.OfficerIDs {
		if id == nric {
			return true
		}
	}
	return false
}

// CanAddOfficer checks slot capacity and duplicate membership.
func (p *Project) CanAddOfficer(nric domain.NRIC) error {
	if p.HasOfficer(nric) {
		return sentinel.ErrConflict
	}
	if len(p.OfficerIDs) >= p.OfficerSlot {
		return sentinel.ErrSlotFull
	}
	return nil
}

// ApplyAddOfficer appends the officer, consuming one slot.
// Call CanAddOfficer first inside the same store critical section.
func (p *Project) ApplyAddOfficer(nric domain.NRIC) {
	p.OfficerIDs = append(p.OfficerIDs, nric)
}

// ApplyRemoveOfficer detaches the officer. Used only to compensate a
// registration approval whose registration persist failed.
func (p *Project) ApplyRemoveOfficer(nric domain.NRIC) {
	for i, id := range p.OfficerIDs {
		if id == nric {
			p.OfficerIDs = append(p.OfficerIDs[:i], p.OfficerIDs[i+1:]...)
			return
		}
	}
}

// RemainingSlots returns how many officer slots are still open.
func (p *Project) RemainingSlots() int {
	return p.OfficerSlot - len(p.OfficerIDs)
}

// Clone returns a deep copy so store snapshots stay isolated from callers.
func (p *Project) Clone() *Project {
	clone := *p
	clone.Units = make(map[domain.FlatType]int, len(p.Units))
	for k, v := range p.Units {
		clone.Units[k] = v
	}
	clone.Prices = make(map[domain.FlatType]float64, len(p.Prices))
	for k, v := range p.Prices {
		clone.Prices[k] = v
	}
	clone.OfficerIDs = append([]domain.NRIC(nil), p.OfficerIDs...)
	return &clone
}
