package repo

import (
	"context"
	"encoding/json"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"
)

// MemoryStore keeps all entities in process. A transaction holds the write
// lock for its whole duration and restores a snapshot if fn fails.
type MemoryStore struct {
	mu sync.RWMutex

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64

	users    map[int64]models.User
	products map[int64]models.Product
	orders   map[int64]models.Order
	outbox   []OutboxRecord

	now func() time.Time
}

// OutboxRecord is an event the memory outbox accepted.
type OutboxRecord struct {
	ID          string
	AggregateID string
	Type        string
	Payload     []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:    1,
		nextProductID: 1,
		nextOrderID:   1,
		users:         make(map[int64]models.User),
		products:      make(map[int64]models.Product),
		orders:        make(map[int64]models.Order),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the memory backend through the repository ports.
func (m *MemoryStore) Store() Store {
	return Store{
		Tx:       &MemoryTx{store: m},
		Users:    &MemoryUsers{store: m},
		Products: &MemoryProducts{store: m},
		Orders:   &MemoryOrders{store: m},
		Outbox:   &MemoryOutbox{store: m},
	}
}

type txKey struct{}

func isTx(ctx context.Context) bool {
	b, ok := ctx.Value(txKey{}).(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}

func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}

func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

type memorySnapshot struct {
	nextUserID, nextProductID, nextOrderID int64

	users    map[int64]models.User
	products map[int64]models.Product
	orders   map[int64]models.Order
	outbox   []OutboxRecord
}

func (m *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		nextUserID:    m.nextUserID,
		nextProductID: m.nextProductID,
		nextOrderID:   m.nextOrderID,
		users:         maps.Clone(m.users),
		products:      maps.Clone(m.products),
		orders:        maps.Clone(m.orders),
		outbox:        append([]OutboxRecord(nil), m.outbox...),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.nextUserID, m.nextProductID, m.nextOrderID = s.nextUserID, s.nextProductID, s.nextOrderID
	m.users, m.products, m.orders, m.outbox = s.users, s.products, s.orders, s.outbox
}

// OutboxEvents returns a copy of everything enqueued so far.
func (m *MemoryStore) OutboxEvents() []OutboxRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]OutboxRecord(nil), m.outbox...)
}

type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	txCtx, hooks := withHooks(context.WithValue(ctx, txKey{}, true))
	if err := tx.run(txCtx, fn); err != nil {
		return err
	}
	hooks.run()
	return nil
}

func (tx *MemoryTx) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	snap := tx.store.snapshot()
	if err := fn(ctx); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

type MemoryUsers struct{ store *MemoryStore }

var _ Users = (*MemoryUsers)(nil)

func (r *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperr.New(apperr.TypeUserExists, "")
		}
	}
	u.ID = m.nextUserID
	m.nextUserID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) GetByID(ctx context.Context, id int64) (models.User, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	u, ok := m.users[id]
	if !ok {
		return models.User{}, notFound(apperr.TypeUserNotFound)
	}
	return u, nil
}

func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return models.User{}, notFound(apperr.TypeUserNotFound)
}

func (r *MemoryUsers) List(ctx context.Context) ([]models.User, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUsers) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	u, ok := m.users[id]
	if !ok {
		return notFound(apperr.TypeUserNotFound)
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (r *MemoryUsers) CountByRole(ctx context.Context, role models.Role) (int, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// LockAdmins counts administrators. The transaction lock already serializes writers.
func (r *MemoryUsers) LockAdmins(ctx context.Context) (int, error) {
	return r.CountByRole(ctx, models.RoleAdmin)
}

func (r *MemoryUsers) Delete(ctx context.Context, id int64) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	if _, ok := m.users[id]; !ok {
		return notFound(apperr.TypeUserNotFound)
	}
	delete(m.users, id)
	return nil
}

type MemoryProducts struct{ store *MemoryStore }

var _ Products = (*MemoryProducts)(nil)

func (r *MemoryProducts) Create(ctx context.Context, p *models.Product) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	p.ID = m.nextProductID
	m.nextProductID++
	now := m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = *p
	return nil
}

func (r *MemoryProducts) GetByID(ctx context.Context, id int64) (models.Product, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, notFound(apperr.TypeProductNotFound)
	}
	return p, nil
}

// GetForUpdate needs no row lock here: a memory transaction owns the whole store.
func (r *MemoryProducts) GetForUpdate(ctx context.Context, id int64) (models.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *MemoryProducts) List(ctx context.Context) ([]models.Product, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryProducts) Update(ctx context.Context, p *models.Product) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	cur, ok := m.products[p.ID]
	if !ok {
		return notFound(apperr.TypeProductNotFound)
	}
	p.CreatedBy = cur.CreatedBy
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = m.now()
	m.products[p.ID] = *p
	return nil
}

func (r *MemoryProducts) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	p, ok := m.products[id]
	if !ok {
		return 0, notFound(apperr.TypeProductNotFound)
	}
	if p.Stock+delta < 0 {
		return p.Stock, apperr.Stock(p.Name)
	}
	p.Stock += delta
	p.UpdatedAt = m.now()
	m.products[id] = p
	return p.Stock, nil
}

func (r *MemoryProducts) Delete(ctx context.Context, id int64) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	if _, ok := m.products[id]; !ok {
		return notFound(apperr.TypeProductNotFound)
	}
	m.deleteProduct(id)
	return nil
}

// deleteProduct detaches order items from the product, like "on delete set null".
func (m *MemoryStore) deleteProduct(id int64) {
	delete(m.products, id)
	for oid, o := range m.orders {
		changed := false
		items := append([]models.OrderItem(nil), o.Items...)
		for i := range items {
			if items[i].ProductID != nil && *items[i].ProductID == id {
				items[i].ProductID = nil
				changed = true
			}
		}
		if changed {
			o.Items = items
			m.orders[oid] = o
		}
	}
}

func (r *MemoryProducts) CountByCreator(ctx context.Context, userID int64) (int, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	n := 0
	for _, p := range m.products {
		if p.CreatedBy == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryProducts) DeleteByCreator(ctx context.Context, userID int64) (int, error) {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	n := 0
	for id, p := range m.products {
		if p.CreatedBy == userID {
			m.deleteProduct(id)
			n++
		}
	}
	return n, nil
}

type MemoryOrders struct{ store *MemoryStore }

var _ Orders = (*MemoryOrders)(nil)

func (r *MemoryOrders) Create(ctx context.Context, o *models.Order) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	if _, ok := m.users[o.UserID]; !ok {
		return notFound(apperr.TypeUserNotFound)
	}
	o.ID = m.nextOrderID
	m.nextOrderID++
	now := m.now()
	o.CreatedAt, o.UpdatedAt = now, now
	o.Items = append([]models.OrderItem(nil), o.Items...)
	m.orders[o.ID] = *o
	*o = m.withUser(*o)
	return nil
}

func (m *MemoryStore) withUser(o models.Order) models.Order {
	if u, ok := m.users[o.UserID]; ok {
		o.UserName, o.UserEmail = u.Name, u.Email
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (r *MemoryOrders) GetByID(ctx context.Context, id int64) (models.Order, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, notFound(apperr.TypeOrderNotFound)
	}
	return m.withUser(o), nil
}

func (r *MemoryOrders) List(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, func(models.Order) bool { return true })
}

func (r *MemoryOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.list(ctx, func(o models.Order) bool { return o.UserID == userID })
}

// list returns matching orders newest first.
func (r *MemoryOrders) list(ctx context.Context, keep func(models.Order) bool) ([]models.Order, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	out := make([]models.Order, 0)
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, m.withUser(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryOrders) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	o, ok := m.orders[id]
	if !ok {
		return notFound(apperr.TypeOrderNotFound)
	}
	if o.Status != from {
		return apperr.New(apperr.TypeOrderState, "")
	}
	o.Status = to
	o.UpdatedAt = m.now()
	m.orders[id] = o
	return nil
}

func (r *MemoryOrders) CountByUser(ctx context.Context, userID int64) (int, error) {
	m := r.store
	m.rlock(ctx)
	defer m.runlock(ctx)

	n := 0
	for _, o := range m.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryOrders) DeleteByUser(ctx context.Context, userID int64) (int, error) {
	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	n := 0
	for id, o := range m.orders {
		if o.UserID == userID {
			delete(m.orders, id)
			n++
		}
	}
	return n, nil
}

type MemoryOutbox struct{ store *MemoryStore }

var _ Outbox = (*MemoryOutbox)(nil)

func (r *MemoryOutbox) Enqueue(ctx context.Context, eventID, aggregateID, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	m := r.store
	m.wlock(ctx)
	defer m.wunlock(ctx)

	m.outbox = append(m.outbox, OutboxRecord{ID: eventID, AggregateID: aggregateID, Type: eventType, Payload: b})
	return nil
}
