package models

import (
	"strconv"
	"time"

	id "archivist/pkg/domain"
	dErrors "archivist/pkg/domain-errors"
)

// ContainerState is shared by boxes, folders and packages.
type ContainerState string

const (
	ContainerOpen ContainerState = "open"
	ContainerFull ContainerState = "full"
)

// Location is the shelf position of a box. Folders carry a copy of their
// box's location for display.
type Location struct {
	Shelf  string `json:"shelf,omitempty"`
	Module string `json:"module,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// Capacity is the occupancy bookkeeping shared by every container kind.
//
// Invariants:
//   - 0 <= Occupancy <= Limit
//   - Only an Open container accepts new items
type Capacity struct {
	Limit     int            `json:"capacity"`
	Occupancy int            `json:"occupancy"`
	State     ContainerState `json:"state"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	Notes     string         `json:"notes,omitempty"`
}

// CanAccept fails with CapacityExceeded unless one more item fits.
func (c *Capacity) CanAccept(kind string) error {
	if c.State != ContainerOpen {
		return dErrors.Newf(dErrors.CodeCapacityExceeded, "%s is not open", kind)
	}
	if c.Occupancy >= c.Limit {
		return dErrors.Newf(dErrors.CodeCapacityExceeded, "%s is full (%d/%d)", kind, c.Occupancy, c.Limit)
	}
	return nil
}

// Place adds one item and reports whether the container is now at capacity.
// Call CanAccept first.
func (c *Capacity) Place() bool {
	c.Occupancy++
	return c.Occupancy >= c.Limit
}

// Close marks the container full.
func (c *Capacity) Close(now time.Time, notes string) {
	c.State = ContainerFull
	closed := now
	c.ClosedAt = &closed
	if notes != "" {
		c.Notes = notes
	}
}

// Reopen returns a full container to service.
func (c *Capacity) Reopen() {
	c.State = ContainerOpen
	c.ClosedAt = nil
}

// Box holds folders. Boxes are numbered per office and many may be open at once.
type Box struct {
	ID        id.BoxID    `json:"id"`
	OfficeID  id.OfficeID `json:"office_id"`
	Number    int64       `json:"number"`
	Location  Location    `json:"location"`
	Capacity  Capacity    `json:"capacity"`
	CreatedAt time.Time   `json:"created_at"`
}

// Folder holds the documents of one case file; its capacity counts folios.
// Folder numbers are global and never reset.
type Folder struct {
	ID         id.FolderID    `json:"id"`
	OfficeID   id.OfficeID    `json:"office_id"`
	BoxID      *id.BoxID      `json:"box_id,omitempty"`
	CaseFileID *id.CaseFileID `json:"case_file_id,omitempty"`
	Number     int64          `json:"number"`
	Location   Location       `json:"location"`
	Capacity   Capacity       `json:"capacity"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Package holds case files. At most one package is open at any time.
type Package struct {
	ID        id.PackageID `json:"id"`
	Number    string       `json:"number"`
	Capacity  Capacity     `json:"capacity"`
	CreatedAt time.Time    `json:"created_at"`
}

// FormatPackageNumber renders a package counter value.
func FormatPackageNumber(n int64) string {
	return strconv.FormatInt(n, 10)
}

// NewBox returns an open, empty box.
func NewBox(boxID id.BoxID, office id.OfficeID, number int64, capacity int, loc Location, now time.Time) (*Box, error) {
	if capacity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "box capacity must be positive")
	}
	return &Box{
		ID:        boxID,
		OfficeID:  office,
		Number:    number,
		Location:  loc,
		Capacity:  Capacity{Limit: capacity, State: ContainerOpen},
		CreatedAt: now,
	}, nil
}

// NewFolder returns an open, empty folder. A parent box lends its location.
func NewFolder(folderID id.FolderID, office id.OfficeID, parent *Box, number int64, capacity int, now time.Time) (*Folder, error) {
	if capacity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "folder capacity must be positive")
	}
	f := &Folder{
		ID:        folderID,
		OfficeID:  office,
		Number:    number,
		Capacity:  Capacity{Limit: capacity, State: ContainerOpen},
		CreatedAt: now,
	}
	if parent != nil {
		boxID := parent.ID
		f.BoxID = &boxID
		f.Location = parent.Location
	}
	return f, nil
}

// NewPackage returns an open, empty package.
func NewPackage(packageID id.PackageID, number int64, capacity int, now time.Time) (*Package, error) {
	if capacity <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "package capacity must be positive")
	}
	return &Package{
		ID:        packageID,
		Number:    FormatPackageNumber(number),
		Capacity:  Capacity{Limit: capacity, State: ContainerOpen},
		CreatedAt: now,
	}, nil
}
