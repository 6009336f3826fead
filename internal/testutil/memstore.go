package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/xxxsen/propinspect/internal/model"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/repo"
)

// MemStore is an in-memory stand-in for the postgres repos with the same
// ownership and share filtering rules.
type MemStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	inspections map[string]model.Inspection
	items       map[string][]model.InspectionItem
	photos      map[string][]model.Photo
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[string]model.User),
		inspections: make(map[string]model.Inspection),
		items:       make(map[string][]model.InspectionItem),
		photos:      make(map[string][]model.Photo),
	}
}

type MemUsers struct{ *MemStore }

type MemInspections struct{ *MemStore }

type MemItems struct{ *MemStore }

type MemPhotos struct{ *MemStore }

func (m *MemStore) Users() MemUsers             { return MemUsers{m} }
func (m *MemStore) Inspections() MemInspections { return MemInspections{m} }
func (m *MemStore) Items() MemItems             { return MemItems{m} }
func (m *MemStore) Photos() MemPhotos           { return MemPhotos{m} }

// Raw returns the stored row regardless of owner, state or share flag.
func (m *MemStore) Raw(inspectionID string) (model.Inspection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	insp, ok := m.inspections[inspectionID]
	return insp, ok
}

func (u MemUsers) Create(ctx context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	u.users[user.ID] = *user
	return nil
}

func (u MemUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (u MemUsers) GetByID(ctx context.Context, userID string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &user, nil
}

func (s MemInspections) Create(ctx context.Context, insp *model.Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inspections[insp.ID]; ok {
		return appErr.ErrConflict
	}
	stored := *insp
	stored.ShareToken = ""
	stored.ShareEnabled = false
	stored.SharedAt = 0
	s.inspections[insp.ID] = stored
	return nil
}

// owned must be called with the lock held.
func (s MemInspections) owned(inspectorID, inspectionID string) (model.Inspection, bool) {
	insp, ok := s.inspections[inspectionID]
	if !ok || insp.InspectorID != inspectorID || insp.State != repo.InspectionStateNormal {
		return model.Inspection{}, false
	}
	return insp, true
}

func (s MemInspections) Update(ctx context.Context, insp *model.Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.owned(insp.InspectorID, insp.ID)
	if !ok {
		return appErr.ErrNotFound
	}
	stored.PropertyName = insp.PropertyName
	stored.PropertyAddress = insp.PropertyAddress
	stored.InspectionDate = insp.InspectionDate
	stored.Status = insp.Status
	stored.Notes = insp.Notes
	stored.Mtime = insp.Mtime
	s.inspections[insp.ID] = stored
	return nil
}

func (s MemInspections) Delete(ctx context.Context, inspectorID, inspectionID string, mtime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.owned(inspectorID, inspectionID)
	if !ok {
		return appErr.ErrNotFound
	}
	stored.State = repo.InspectionStateDeleted
	stored.ShareEnabled = false
	stored.Mtime = mtime
	s.inspections[inspectionID] = stored
	return nil
}

func (s MemInspections) GetByID(ctx context.Context, inspectorID, inspectionID string) (*model.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.owned(inspectorID, inspectionID)
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &stored, nil
}

func (s MemInspections) List(ctx context.Context, inspectorID string, limit, offset uint) ([]model.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.Inspection, 0)
	for _, insp := range s.inspections {
		if insp.InspectorID == inspectorID && insp.State == repo.InspectionStateNormal {
			items = append(items, insp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Mtime == items[j].Mtime {
			return items[i].ID > items[j].ID
		}
		return items[i].Mtime > items[j].Mtime
	})
	if offset >= uint(len(items)) {
		return []model.Inspection{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < uint(len(items)) {
		items = items[:limit]
	}
	return items, nil
}

func (s MemInspections) SetShareToken(ctx context.Context, inspectorID, inspectionID, token string, sharedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, insp := range s.inspections {
		if id != inspectionID && insp.ShareToken == token {
			return appErr.ErrConflict
		}
	}
	stored, ok := s.owned(inspectorID, inspectionID)
	if !ok {
		return appErr.ErrNotFound
	}
	stored.ShareToken = token
	stored.ShareEnabled = true
	stored.SharedAt = sharedAt
	s.inspections[inspectionID] = stored
	return nil
}

func (s MemInspections) DisableShare(ctx context.Context, inspectorID, inspectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.owned(inspectorID, inspectionID)
	if !ok {
		return appErr.ErrNotFound
	}
	stored.ShareEnabled = false
	s.inspections[inspectionID] = stored
	return nil
}

func (s MemInspections) GetByShareToken(ctx context.Context, token string) (*model.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, insp := range s.inspections {
		if insp.ShareToken == token && insp.ShareEnabled && insp.State == repo.InspectionStateNormal {
			copied := insp
			return &copied, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s MemInspections) DisableSharesBefore(ctx context.Context, cutoff int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for id, insp := range s.inspections {
		if insp.ShareEnabled && insp.SharedAt < cutoff {
			insp.ShareEnabled = false
			s.inspections[id] = insp
			affected++
		}
	}
	return affected, nil
}

func (s MemItems) ReplaceByInspection(ctx context.Context, inspectorID, inspectionID string, items []model.InspectionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[inspectionID] = append([]model.InspectionItem(nil), items...)
	kept := make(map[string]bool, len(items))
	for _, item := range items {
		kept[item.ID] = true
	}
	photos := s.photos[inspectionID]
	for i := range photos {
		if photos[i].ItemID != "" && !kept[photos[i].ItemID] {
			photos[i].ItemID = ""
		}
	}
	return nil
}

func (s MemItems) ListByInspection(ctx context.Context, inspectorID, inspectionID string) ([]model.InspectionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.InspectionItem, 0)
	for _, item := range s.items[inspectionID] {
		if item.InspectorID == inspectorID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s MemPhotos) Create(ctx context.Context, photo *model.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[photo.InspectionID] = append(s.photos[photo.InspectionID], *photo)
	return nil
}

func (s MemPhotos) ListByInspection(ctx context.Context, inspectionID string) ([]model.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Photo{}, s.photos[inspectionID]...), nil
}

func (s MemPhotos) GetByID(ctx context.Context, inspectionID, photoID string) (*model.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, photo := range s.photos[inspectionID] {
		if photo.ID == photoID {
			copied := photo
			return &copied, nil
		}
	}
	return nil, appErr.ErrNotFound
}
