// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

// MemoryRepository keeps every table in process memory. One mutex
// serializes transactions; a failed transaction restores the snapshot taken
// when it began.
type MemoryRepository struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	accounts   map[uuid.UUID]models.Account
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	orders     map[uuid.UUID]models.Order
	orderItems map[uuid.UUID]models.OrderItem
	reviews    map[uuid.UUID]models.Review
	messages   map[uuid.UUID]models.Message
	resources  map[uuid.UUID]models.EducationalResource
	bookmarks  map[uuid.UUID]models.ResourceBookmark

	seq      uint64
	inserted map[uuid.UUID]uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		data: &memData{
			accounts:   make(map[uuid.UUID]models.Account),
			categories: make(map[uuid.UUID]models.Category),
			products:   make(map[uuid.UUID]models.Product),
			orders:     make(map[uuid.UUID]models.Order),
			orderItems: make(map[uuid.UUID]models.OrderItem),
			reviews:    make(map[uuid.UUID]models.Review),
			messages:   make(map[uuid.UUID]models.Message),
			resources:  make(map[uuid.UUID]models.EducationalResource),
			bookmarks:  make(map[uuid.UUID]models.ResourceBookmark),
			inserted:   make(map[uuid.UUID]uint64),
		},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		accounts:   cloneMap(d.accounts),
		categories: cloneMap(d.categories),
		products:   cloneMap(d.products),
		orders:     cloneMap(d.orders),
		orderItems: cloneMap(d.orderItems),
		reviews:    cloneMap(d.reviews),
		messages:   cloneMap(d.messages),
		resources:  cloneMap(d.resources),
		bookmarks:  cloneMap(d.bookmarks),
		seq:        d.seq,
		inserted:   cloneMap(d.inserted),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *MemoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) Transaction(ctx context.Context, fn func(Repository) error) (err error) {
	if r.inTx {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.data.clone()
	tx := &MemoryRepository{mu: r.mu, data: r.data, inTx: true}

	defer func() {
		if p := recover(); p != nil {
			*r.data = *saved
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		*r.data = *saved
	}
	return err
}

func (r *MemoryRepository) HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error) {
	defer r.lock()()

	for _, item := range r.data.orderItems {
		if item.ProductID != productID {
			continue
		}
		if orderID != nil && item.OrderID != *orderID {
			continue
		}
		order, ok := r.data.orders[item.OrderID]
		if ok && order.BuyerID == buyerID && order.Status == models.OrderStatusDelivered {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Accounts() AccountRepository {
	return memAccounts{memTable[models.Account]{r, func(d *memData) map[uuid.UUID]models.Account { return d.accounts }, accountBase}}
}

func (r *MemoryRepository) Categories() CategoryRepository {
	return memCategories{memTable[models.Category]{r, func(d *memData) map[uuid.UUID]models.Category { return d.categories }, categoryBase}}
}

func (r *MemoryRepository) Products() ProductRepository {
	return memProducts{memTable[models.Product]{r, func(d *memData) map[uuid.UUID]models.Product { return d.products }, productBase}}
}

func (r *MemoryRepository) Orders() OrderRepository {
	return memOrders{memTable[models.Order]{r, func(d *memData) map[uuid.UUID]models.Order { return d.orders }, orderBase}}
}

func (r *MemoryRepository) OrderItems() OrderItemRepository {
	return memOrderItems{memTable[models.OrderItem]{r, func(d *memData) map[uuid.UUID]models.OrderItem { return d.orderItems }, orderItemBase}}
}

func (r *MemoryRepository) Reviews() ReviewRepository {
	return memReviews{memTable[models.Review]{r, func(d *memData) map[uuid.UUID]models.Review { return d.reviews }, reviewBase}}
}

func (r *MemoryRepository) Messages() MessageRepository {
	return memMessages{memTable[models.Message]{r, func(d *memData) map[uuid.UUID]models.Message { return d.messages }, messageBase}}
}

func (r *MemoryRepository) Resources() ResourceRepository {
	return memResources{memTable[models.EducationalResource]{r, func(d *memData) map[uuid.UUID]models.EducationalResource { return d.resources }, resourceBase}}
}

func (r *MemoryRepository) Bookmarks() BookmarkRepository {
	return memBookmarks{memTable[models.ResourceBookmark]{r, func(d *memData) map[uuid.UUID]models.ResourceBookmark { return d.bookmarks }, bookmarkBase}}
}

func accountBase(r *models.Account) *models.BaseModel              { return &r.BaseModel }
func categoryBase(r *models.Category) *models.BaseModel            { return &r.BaseModel }
func productBase(r *models.Product) *models.BaseModel              { return &r.BaseModel }
func orderBase(r *models.Order) *models.BaseModel                  { return &r.BaseModel }
func orderItemBase(r *models.OrderItem) *models.BaseModel          { return &r.BaseModel }
func reviewBase(r *models.Review) *models.BaseModel                { return &r.BaseModel }
func messageBase(r *models.Message) *models.BaseModel              { return &r.BaseModel }
func resourceBase(r *models.EducationalResource) *models.BaseModel { return &r.BaseModel }
func bookmarkBase(r *models.ResourceBookmark) *models.BaseModel    { return &r.BaseModel }

type memTable[T any] struct {
	repo *MemoryRepository
	rows func(*memData) map[uuid.UUID]T
	base func(*T) *models.BaseModel
}

func (t memTable[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	defer t.repo.lock()()

	row, ok := t.rows(t.repo.data)[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &row, nil
}

func (t memTable[T]) Create(ctx context.Context, row *T) error {
	defer t.repo.lock()()

	b := t.base(row)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	table := t.rows(t.repo.data)
	if _, exists := table[b.ID]; exists {
		return apperrors.Integrity(apperrors.ViolationDuplicate, "id", "id %s already exists", b.ID)
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	t.repo.data.seq++
	t.repo.data.inserted[b.ID] = t.repo.data.seq
	table[b.ID] = *row
	return nil
}

func (t memTable[T]) Update(ctx context.Context, row *T) error {
	defer t.repo.lock()()

	b := t.base(row)
	table := t.rows(t.repo.data)
	if _, exists := table[b.ID]; !exists {
		return apperrors.ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	table[b.ID] = *row
	return nil
}

func (t memTable[T]) Delete(ctx context.Context, id uuid.UUID) error {
	defer t.repo.lock()()

	table := t.rows(t.repo.data)
	if _, exists := table[id]; !exists {
		return apperrors.ErrNotFound
	}
	delete(table, id)
	delete(t.repo.data.inserted, id)
	return nil
}

// list returns matching rows, newest first.
func (t memTable[T]) list(match func(*T) bool) []T {
	defer t.repo.lock()()

	out := make([]T, 0)
	for _, row := range t.rows(t.repo.data) {
		row := row
		if match(&row) {
			out = append(out, row)
		}
	}
	inserted := t.repo.data.inserted
	sort.SliceStable(out, func(i, j int) bool {
		return inserted[t.base(&out[i]).ID] > inserted[t.base(&out[j]).ID]
	})
	return out
}

func (t memTable[T]) first(match func(*T) bool) (*T, error) {
	rows := t.list(match)
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

func all[T any](*T) bool { return true }

type memAccounts struct{ memTable[models.Account] }

func (r memAccounts) List(ctx context.Context) ([]models.Account, error) {
	return r.list(all[models.Account]), nil
}

func (r memAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.first(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })
}

type memCategories struct{ memTable[models.Category] }

func (r memCategories) List(ctx context.Context) ([]models.Category, error) {
	rows := r.list(all[models.Category])
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (r memCategories) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(func(c *models.Category) bool { return strings.EqualFold(c.Name, name) })
}

type memProducts struct{ memTable[models.Product] }

func (r memProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	search := strings.ToLower(filter.Search)
	return r.list(func(p *models.Product) bool {
		switch {
		case filter.FarmerID != nil && p.FarmerID != *filter.FarmerID:
			return false
		case filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID):
			return false
		case filter.ActiveOnly && !p.IsActive:
			return false
		case filter.InStock && p.StockQuantity <= 0:
			return false
		case filter.Tag != "" && !p.HasTag(filter.Tag):
			return false
		case search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search):
			return false
		}
		return true
	}), nil
}

type memOrders struct{ memTable[models.Order] }

func (r memOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	return r.list(func(o *models.Order) bool {
		switch {
		case filter.PartyID != nil && !o.HasParty(*filter.PartyID):
			return false
		case filter.BuyerID != nil && o.BuyerID != *filter.BuyerID:
			return false
		case filter.FarmerID != nil && o.FarmerID != *filter.FarmerID:
			return false
		case filter.Status != nil && o.Status != *filter.Status:
			return false
		}
		return true
	}), nil
}

// GetForUpdate needs no extra locking: transactions already hold the store mutex.
func (r memOrders) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.Get(ctx, id)
}

type memOrderItems struct{ memTable[models.OrderItem] }

func (r memOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return r.list(func(i *models.OrderItem) bool { return i.OrderID == orderID }), nil
}

func (r memOrderItems) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.OrderItem, error) {
	return r.list(func(i *models.OrderItem) bool { return i.ProductID == productID }), nil
}

type memReviews struct{ memTable[models.Review] }

func (r memReviews) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	return r.list(func(v *models.Review) bool { return v.ProductID == productID }), nil
}

func (r memReviews) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Review, error) {
	return r.list(func(v *models.Review) bool { return v.BuyerID == buyerID }), nil
}

func (r memReviews) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Review, error) {
	return r.list(func(v *models.Review) bool { return v.OrderID != nil && *v.OrderID == orderID }), nil
}

func (r memReviews) FindByKey(ctx context.Context, productID, buyerID uuid.UUID, orderID *uuid.UUID) (*models.Review, error) {
	key := models.Review{ProductID: productID, BuyerID: buyerID, OrderID: orderID}
	return r.first(func(v *models.Review) bool { return v.SameKey(&key) })
}

type memMessages struct{ memTable[models.Message] }

func (r memMessages) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Message, error) {
	return r.list(func(m *models.Message) bool { return m.SenderID == accountID || m.ReceiverID == accountID }), nil
}

func (r memMessages) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Message, error) {
	return r.list(func(m *models.Message) bool { return m.ProductID != nil && *m.ProductID == productID }), nil
}

func (r memMessages) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Message, error) {
	return r.list(func(m *models.Message) bool { return m.OrderID != nil && *m.OrderID == orderID }), nil
}

type memResources struct{ memTable[models.EducationalResource] }

func (r memResources) List(ctx context.Context) ([]models.EducationalResource, error) {
	return r.list(all[models.EducationalResource]), nil
}

func (r memResources) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.EducationalResource, error) {
	return r.list(func(e *models.EducationalResource) bool { return e.AuthoredBy(authorID) }), nil
}

func (r memResources) IncrementViews(ctx context.Context, id uuid.UUID) error {
	defer r.repo.lock()()

	row, ok := r.repo.data.resources[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.ViewCount++
	r.repo.data.resources[id] = row
	return nil
}

type memBookmarks struct{ memTable[models.ResourceBookmark] }

func (r memBookmarks) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ResourceBookmark, error) {
	return r.list(func(b *models.ResourceBookmark) bool { return b.UserID == userID }), nil
}

func (r memBookmarks) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.ResourceBookmark, error) {
	return r.list(func(b *models.ResourceBookmark) bool { return b.ResourceID == resourceID }), nil
}

func (r memBookmarks) FindByKey(ctx context.Context, userID, resourceID uuid.UUID) (*models.ResourceBookmark, error) {
	return r.first(func(b *models.ResourceBookmark) bool { return b.UserID == userID && b.ResourceID == resourceID })
}
