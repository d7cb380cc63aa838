package memory

import (
	"context"
	"sort"

	"archivist/internal/records/models"
	id "archivist/pkg/domain"
)

// Boxes

func (s *Store) CreateBox(_ context.Context, b *models.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.boxes {
		if existing.OfficeID == b.OfficeID && existing.Number == b.Number {
			return conflict("box number")
		}
	}
	s.boxes[b.ID] = cloneBox(b)
	return nil
}

func (s *Store) GetBox(_ context.Context, boxID id.BoxID) (*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boxes[boxID]
	if !ok {
		return nil, notFound("box")
	}
	return cloneBox(b), nil
}

func (s *Store) GetBoxForUpdate(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	return s.GetBox(ctx, boxID)
}

func (s *Store) UpdateBox(_ context.Context, b *models.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boxes[b.ID]; !ok {
		return notFound("box")
	}
	s.boxes[b.ID] = cloneBox(b)
	return nil
}

func (s *Store) ListBoxes(_ context.Context, office id.OfficeID) ([]*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Box
	for _, b := range s.boxes {
		if b.OfficeID == office {
			out = append(out, cloneBox(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Folders

func (s *Store) CreateFolder(_ context.Context, f *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.BoxID != nil {
		if _, ok := s.boxes[*f.BoxID]; !ok {
			return notFound("box")
		}
	}
	for _, existing := range s.folders {
		if existing.Number == f.Number {
			return conflict("folder number")
		}
	}
	s.folders[f.ID] = cloneFolder(f)
	return nil
}

func (s *Store) GetFolder(_ context.Context, folderID id.FolderID) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.folders[folderID]
	if !ok {
		return nil, notFound("folder")
	}
	return cloneFolder(f), nil
}

func (s *Store) GetFolderForUpdate(ctx context.Context, folderID id.FolderID) (*models.Folder, error) {
	return s.GetFolder(ctx, folderID)
}

func (s *Store) UpdateFolder(_ context.Context, f *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[f.ID]; !ok {
		return notFound("folder")
	}
	s.folders[f.ID] = cloneFolder(f)
	return nil
}

// Packages

// LockPackages is a no-op; the memory runner already serializes units of work.
func (s *Store) LockPackages(context.Context) error {
	return nil
}

func (s *Store) openPackageLocked(except id.PackageID) *models.Package {
	for _, p := range s.packages {
		if p.ID != except && p.Capacity.State == models.ContainerOpen {
			return p
		}
	}
	return nil
}

func (s *Store) CreatePackage(_ context.Context, p *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.packages {
		if existing.Number == p.Number {
			return conflict("package number")
		}
	}
	if p.Capacity.State == models.ContainerOpen && s.openPackageLocked(p.ID) != nil {
		return conflict("packages_single_open")
	}
	s.packages[p.ID] = clonePackage(p)
	return nil
}

func (s *Store) GetPackage(_ context.Context, packageID id.PackageID) (*models.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[packageID]
	if !ok {
		return nil, notFound("package")
	}
	return clonePackage(p), nil
}

func (s *Store) GetPackageForUpdate(ctx context.Context, packageID id.PackageID) (*models.Package, error) {
	return s.GetPackage(ctx, packageID)
}

func (s *Store) GetOpenPackage(_ context.Context) (*models.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.openPackageLocked(id.PackageID{}); p != nil {
		return clonePackage(p), nil
	}
	return nil, notFound("open package")
}

func (s *Store) UpdatePackage(_ context.Context, p *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[p.ID]; !ok {
		return notFound("package")
	}
	if p.Capacity.State == models.ContainerOpen && s.openPackageLocked(p.ID) != nil {
		return conflict("packages_single_open")
	}
	s.packages[p.ID] = clonePackage(p)
	return nil
}

func (s *Store) ListPackages(_ context.Context, state models.ContainerState) ([]*models.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Package
	for _, p := range s.packages {
		if state == "" || p.Capacity.State == state {
			out = append(out, clonePackage(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return packageNumberAfter(out[i].Number, out[j].Number)
	})
	return out, nil
}

// packageNumberAfter orders decimal package numbers numerically, so "10"
// sorts above "9".
func packageNumberAfter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}
