package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashrajoria/farm-marketplace/models"
	"github.com/yashrajoria/farm-marketplace/repository"
)

// ---- in-memory product repository ----
//
// Mirrors the conditional-update semantics of the real store: the quantity
// check and the decrement happen under one lock, so concurrent approvals
// cannot both pass the check.

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	log      []models.ActivityLogEntry
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (m *memProductRepo) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) Save(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) SaveWithLog(_ context.Context, p *models.Product, entry *models.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	m.log = append(m.log, *entry)
	return nil
}

func (m *memProductRepo) ListApproved(_ context.Context, q models.ListProductsQuery) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.Status != models.ProductApproved || !p.IsActive {
			continue
		}
		if !q.IncludeOutOfStock && p.Quantity == 0 {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProductRepo) ListByFarmer(_ context.Context, farmerID uuid.UUID, status string, _, _ int) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.FarmerID != farmerID || !p.IsActive {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProductRepo) ListPending(_ context.Context, _, _ int) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.Status == models.ProductPending && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memProductRepo) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.ViewCount++
	}
	return nil
}

func (m *memProductRepo) CompareAndDecrement(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	return true, nil
}

func (m *memProductRepo) IncrementQuantity(_ context.Context, id uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Quantity += qty
	}
	return nil
}

func (m *memProductRepo) quantity(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Quantity
}

// ---- in-memory order repository ----

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	log       []models.ActivityLogEntry
	updateErr error // injected failure for the status+log transaction
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *memOrderRepo) CreateWithLog(_ context.Context, order *models.Order, entry *models.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	m.log = append(m.log, *entry)
	return nil
}

func (m *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *memOrderRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) UpdateStatusWithLog(_ context.Context, order *models.Order, from string, entries []models.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// same guard as the conditional UPDATE: the transition only lands if
	// the stored status still matches what the caller read
	if cur.Status != from {
		return repository.ErrStatusConflict
	}
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	m.log = append(m.log, entries...)
	return nil
}

func (m *memOrderRepo) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

func (m *memOrderRepo) logActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.log))
	for i, e := range m.log {
		actions[i] = e.Action
	}
	return actions
}

// ---- in-memory cart repository ----

type memCartRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*models.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[uuid.UUID]*models.Cart)}
}

func (m *memCartRepo) Get(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Lines = append([]models.CartLine(nil), c.Lines...)
	return &cp, nil
}

func (m *memCartRepo) Save(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cart
	cp.Lines = append([]models.CartLine(nil), cart.Lines...)
	m.carts[cart.UserID] = &cp
	return nil
}

func (m *memCartRepo) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

// ---- in-memory message repository ----

type memMessageRepo struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (m *memMessageRepo) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.msgs = append(m.msgs, &cp)
	return nil
}

func (m *memMessageRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ID == id {
			cp := *msg
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memMessageRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	// newest first, matching the SQL ordering
	for i := len(m.msgs) - 1; i >= 0; i-- {
		msg := m.msgs[i]
		if msg.SenderID == userID || msg.ReceiverID == userID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *memMessageRepo) ListThread(_ context.Context, threadID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.msgs {
		if msg.ThreadID == threadID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *memMessageRepo) MarkThreadRead(_ context.Context, threadID string, receiverID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ThreadID == threadID && msg.ReceiverID == receiverID && !msg.IsRead {
			msg.IsRead = true
			readAt := at
			msg.ReadAt = &readAt
		}
	}
	return nil
}

func (m *memMessageRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, msg := range m.msgs {
		if msg.ReceiverID == userID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

// ---- in-memory user repository ----

type memUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	log     []models.ActivityLogEntry
	findErr error
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	m := &memUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) ListByRole(_ context.Context, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUserRepo) SaveWithLog(_ context.Context, u *models.User, entry *models.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	m.log = append(m.log, *entry)
	return nil
}
