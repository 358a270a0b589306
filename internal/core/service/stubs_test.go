package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/infrastructure/lock"
)

// ---------------------------------------------------------------------------
// In-memory store shared by all stub repositories
// ---------------------------------------------------------------------------

type memStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	characters map[string]*domain.Character
	rooms      map[string]*domain.Room
	catalog    map[string]*domain.CatalogItem
	inventory  map[string]*domain.InventoryItem
	attempts   map[string]*domain.PurchaseAttempt

	// Fault injection.
	setBalanceErr func(userID string, old, next int64) error
	createInvHook func() error
	setRoomErr    error
	createCharErr error
	balanceWrites int
	latency       time.Duration // widens race windows in concurrency tests
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[string]*domain.User),
		characters: make(map[string]*domain.Character),
		rooms:      make(map[string]*domain.Room),
		catalog:    make(map[string]*domain.CatalogItem),
		inventory:  make(map[string]*domain.InventoryItem),
		attempts:   make(map[string]*domain.PurchaseAttempt),
	}
}

func (s *memStore) wait() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

// ── users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct{ *memStore }

func (r stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	r.users[u.ID] = &clone
	out := clone
	return &out, nil
}

func (r stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r stubUserRepo) SetBalance(_ context.Context, id string, balance int64) error {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if r.setBalanceErr != nil {
		if err := r.setBalanceErr(id, u.Balance, balance); err != nil {
			return err
		}
	}
	u.Balance = balance
	r.balanceWrites++
	return nil
}

// ── characters ───────────────────────────────────────────────────────────────

type stubCharacterRepo struct{ *memStore }

func (r stubCharacterRepo) Create(_ context.Context, c *domain.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createCharErr != nil {
		return r.createCharErr
	}
	clone := *c
	r.characters[c.ID] = &clone
	return nil
}

func (r stubCharacterRepo) FindByID(_ context.Context, id string) (*domain.Character, error) {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.characters[id]
	if !ok {
		return nil, domain.ErrCharacterNotFound
	}
	clone := *c
	return &clone, nil
}

func (r stubCharacterRepo) FindByUserID(_ context.Context, userID string) (*domain.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.characters {
		if c.UserID == userID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCharacterNotFound
}

func (r stubCharacterRepo) SetRoom(_ context.Context, id, roomID string) error {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setRoomErr != nil {
		return r.setRoomErr
	}
	c, ok := r.characters[id]
	if !ok {
		return domain.ErrCharacterNotFound
	}
	c.RoomID = roomID
	return nil
}

func (r stubCharacterRepo) ListByRoom(_ context.Context, roomID string) ([]*domain.Character, error) {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Character
	for _, c := range r.characters {
		if c.RoomID == roomID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stubCharacterRepo) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	members, err := r.ListByRoom(ctx, roomID)
	return int64(len(members)), err
}

// ── rooms ────────────────────────────────────────────────────────────────────

type stubRoomRepo struct{ *memStore }

func (r stubRoomRepo) Create(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r stubRoomRepo) FindByID(_ context.Context, id string) (*domain.Room, error) {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	clone := *room
	return &clone, nil
}

func (r stubRoomRepo) Save(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r stubRoomRepo) ListByStatus(_ context.Context, status domain.RoomStatus) ([]*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Room
	for _, room := range r.rooms {
		if room.Status == status {
			clone := *room
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── catalog & inventory ──────────────────────────────────────────────────────

type stubCatalogRepo struct{ *memStore }

func (r stubCatalogRepo) Create(_ context.Context, item *domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.catalog[item.ID] = &clone
	return nil
}

func (r stubCatalogRepo) FindByID(_ context.Context, id string) (*domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.catalog[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (r stubCatalogRepo) List(_ context.Context) ([]*domain.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.CatalogItem, 0, len(r.catalog))
	for _, item := range r.catalog {
		clone := *item
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubInventoryRepo struct{ *memStore }

func (r stubInventoryRepo) FindStack(_ context.Context, userID, itemID string) (*domain.InventoryItem, error) {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.inventory {
		if inv.UserID == userID && inv.ItemID == itemID {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, domain.ErrInventoryNotFound
}

func (r stubInventoryRepo) Create(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	hook := r.createInvHook
	r.mu.Unlock()
	if hook != nil {
		if err := hook(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.inventory[item.ID] = &clone
	return nil
}

func (r stubInventoryRepo) Save(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.inventory[item.ID] = &clone
	return nil
}

func (r stubInventoryRepo) ListByUser(_ context.Context, userID string) ([]*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.InventoryItem
	for _, inv := range r.inventory {
		if inv.UserID == userID {
			clone := *inv
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ── purchase attempts ────────────────────────────────────────────────────────

type stubPurchaseRepo struct{ *memStore }

func (r stubPurchaseRepo) Insert(_ context.Context, a *domain.PurchaseAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attempts[a.RequestID]; ok {
		return domain.ErrDuplicateRequest
	}
	clone := *a
	r.attempts[a.RequestID] = &clone
	return nil
}

func (r stubPurchaseRepo) FindByRequestID(_ context.Context, id string) (*domain.PurchaseAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	clone := *a
	return &clone, nil
}

func (r stubPurchaseRepo) Save(_ context.Context, a *domain.PurchaseAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.attempts[a.RequestID] = &clone
	return nil
}

func (r stubPurchaseRepo) ListByStatus(_ context.Context, status domain.AttemptStatus) ([]*domain.PurchaseAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PurchaseAttempt
	for _, a := range r.attempts {
		if a.Status == status {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ── events ───────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.RoomEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.RoomEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []ports.RoomEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.RoomEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestLocker() *lock.Keyed {
	return lock.NewKeyed(2*time.Second, 5*time.Second)
}

func (s *memStore) seedUser(id string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &domain.User{ID: id, Username: id, Role: domain.RolePlayer, Balance: balance}
}

func (s *memStore) seedCharacter(id, userID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[id] = &domain.Character{ID: id, UserID: userID, Name: id, RoomID: roomID}
}

func (s *memStore) seedRoom(id string, maxPlayers int, status domain.RoomStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := domain.NewRoom(id, id, "host", maxPlayers, time.Now().UTC())
	r.Status = status
	s.rooms[id] = r
}

func (s *memStore) seedItem(id string, price int64, stackable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[id] = &domain.CatalogItem{ID: id, Name: id, Price: price, Stackable: stackable}
}

func (s *memStore) balance(userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].Balance
}

func (s *memStore) inventoryRows(userID string) []*domain.InventoryItem {
	items, _ := stubInventoryRepo{s}.ListByUser(context.Background(), userID)
	return items
}

func (s *memStore) roomOf(characterID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.characters[characterID].RoomID
}

func (s *memStore) roomStatus(roomID string) domain.RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[roomID].Status
}

func (s *memStore) members(roomID string) int {
	n, _ := stubCharacterRepo{s}.CountByRoom(context.Background(), roomID)
	return int(n)
}
