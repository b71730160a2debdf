package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/infra"
	"shoestore/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CartManager hands out the per-shopper cart store. A cart is exclusively
// owned by one shopper; the manager only guards the registry itself.
type CartManager struct {
	repo    repository.CartRepository
	ledger  StockReader
	catalog infra.CatalogClientInterface
	logger  *zap.Logger

	redisClient *redis.Client

	mu    sync.Mutex
	carts map[uint64]*Cart
}

func NewCartManager(repo repository.CartRepository, ledger StockReader, catalog infra.CatalogClientInterface, logger *zap.Logger) *CartManager {
	return &CartManager{
		repo:    repo,
		ledger:  ledger,
		catalog: catalog,
		logger:  logger,
		carts:   make(map[uint64]*Cart),
	}
}

func (m *CartManager) SetRedisClient(client *redis.Client) {
	m.redisClient = client
}

// Cart returns the shopper's store, hydrating it from the combined
// cart-with-stock read on first access. No identity means no cart.
func (m *CartManager) Cart(ctx context.Context, userID uint64) (*Cart, error) {
	if userID == 0 {
		return nil, domain.ErrNoCart
	}

	m.mu.Lock()
	cart, ok := m.carts[userID]
	m.mu.Unlock()
	if ok {
		return cart, nil
	}

	lines, err := m.repo.LoadCartWithStock(ctx, userID)
	if err != nil {
		return nil, &domain.TransientError{Op: "cart load", Err: err}
	}

	cart = &Cart{
		userID:   userID,
		repo:     m.repo,
		ledger:   m.ledger,
		shoes:    m,
		logger:   m.logger,
		lines:    lines,
		keyLocks: make(map[domain.LineKey]*sync.Mutex),
	}
	cart.invalidate = func() { m.Invalidate(userID) }

	m.mu.Lock()
	if existing, ok := m.carts[userID]; ok {
		cart = existing
	} else {
		m.carts[userID] = cart
	}
	m.mu.Unlock()
	return cart, nil
}

// Invalidate drops the in-memory store so the next access re-hydrates from
// storage. Used after checkout and on conflicts.
func (m *CartManager) Invalidate(userID uint64) {
	m.mu.Lock()
	delete(m.carts, userID)
	m.mu.Unlock()
}

// getShoe resolves catalog details for a shoe, via a short-lived redis cache
// when one is configured. Prices barely move minute to minute; stock does,
// which is why only catalog data is ever cached here.
func (m *CartManager) getShoe(ctx context.Context, shoeID uint64) (*infra.ShoeInfo, error) {
	cacheKey := fmt.Sprintf("shoe:%d", shoeID)

	if m.redisClient != nil {
		cached, err := m.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var info infra.ShoeInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return &info, nil
			}
		}
	}

	info, err := m.catalog.GetShoeByID(ctx, shoeID)
	if err != nil {
		return nil, err
	}

	if m.redisClient != nil && info != nil {
		if data, err := json.Marshal(info); err == nil {
			m.redisClient.Set(ctx, cacheKey, data, time.Minute)
		}
	}

	return info, nil
}

type shoeGetter interface {
	getShoe(ctx context.Context, shoeID uint64) (*infra.ShoeInfo, error)
}

// Cart holds a shopper's line items. Every quantity-changing mutation checks
// fresh availability, applies locally, then issues one remote write; on
// remote failure the touched line is restored to its pre-mutation image.
// Mutations on the same line identity are serialized so a late rollback
// cannot clobber a newer successful write; different keys proceed
// concurrently, and a rollback never touches lines it did not mutate.
type Cart struct {
	userID     uint64
	repo       repository.CartRepository
	ledger     StockReader
	shoes      shoeGetter
	logger     *zap.Logger
	invalidate func()

	mu       sync.Mutex
	lines    []domain.CartLine
	keyLocks map[domain.LineKey]*sync.Mutex
}

func (c *Cart) UserID() uint64 { return c.userID }

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Subtotal is always computed from the current lines, never cached.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum int64
	for i := range c.lines {
		sum += c.lines[i].LineTotal()
	}
	return sum
}

// AddItem appends a line, or merges quantities when a line with the same
// (shoe, size, color) identity already exists.
func (c *Cart) AddItem(ctx context.Context, shoeID uint64, size, color string, quantity int64) (*domain.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}
	key := domain.LineKey{ShoeID: shoeID, Size: size, Color: color}
	unlock := c.lockKey(key)
	defer unlock()

	existing, found := c.lineByKey(key)

	tentative := quantity
	if found {
		tentative += existing.Quantity
	}

	available, err := c.ledger.Available(ctx, shoeID, size)
	if err != nil {
		return nil, err
	}
	if tentative > available {
		return nil, &domain.StockExceededError{ShoeID: shoeID, Size: size, Available: available}
	}

	if found {
		lineID := existing.ID
		err := c.run(ctx, []domain.LineKey{key},
			func() { c.applyQuantity(lineID, tentative, available) },
			func(ctx context.Context) error { return c.repo.UpdateQuantity(ctx, lineID, tentative) },
		)
		if err != nil {
			return nil, err
		}
		merged, _ := c.lineByID(lineID)
		return &merged, nil
	}

	info, err := c.shoes.getShoe(ctx, shoeID)
	if err != nil {
		return nil, &domain.TransientError{Op: "catalog lookup", Err: err}
	}
	if info == nil {
		return nil, domain.ErrShoeNotFound
	}

	line := domain.CartLine{
		UserID:        c.userID,
		ShoeID:        shoeID,
		Quantity:      quantity,
		Size:          size,
		Color:         color,
		Brand:         info.Brand,
		ShoeName:      info.Name,
		UnitPrice:     info.Price,
		ShoeImage:     info.Image,
		StockSnapshot: available,
	}

	var insertedID uint64
	err = c.run(ctx, []domain.LineKey{key},
		func() { c.lines = append(c.lines, line) },
		func(ctx context.Context) error {
			row := line
			if err := c.repo.Insert(ctx, &row); err != nil {
				return err
			}
			insertedID = row.ID
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].ID == 0 && c.lines[i].Key() == key {
			c.lines[i].ID = insertedID
		}
	}
	c.mu.Unlock()

	added, _ := c.lineByID(insertedID)
	return &added, nil
}

// UpdateQuantity sets a line's quantity. Requests below 1 are normalized to
// 1, not treated as no-ops; the stock ceiling still applies.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID uint64, quantity int64) (*domain.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	line, found := c.lineByID(lineID)
	if !found {
		return nil, domain.ErrLineNotFound
	}

	unlock := c.lockKey(line.Key())
	defer unlock()

	// Re-read: the line may have changed while waiting for the key lock.
	line, found = c.lineByID(lineID)
	if !found {
		return nil, domain.ErrLineNotFound
	}

	available, err := c.ledger.Available(ctx, line.ShoeID, line.Size)
	if err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, &domain.StockExceededError{ShoeID: line.ShoeID, Size: line.Size, Available: available}
	}

	err = c.run(ctx, []domain.LineKey{line.Key()},
		func() { c.applyQuantity(lineID, quantity, available) },
		func(ctx context.Context) error { return c.repo.UpdateQuantity(ctx, lineID, quantity) },
	)
	if err != nil {
		return nil, err
	}

	updated, _ := c.lineByID(lineID)
	return &updated, nil
}

// RemoveItem deletes a line. Shrinking the cart is always safe, so there is
// no stock check.
func (c *Cart) RemoveItem(ctx context.Context, lineID uint64) error {
	line, found := c.lineByID(lineID)
	if !found {
		return domain.ErrLineNotFound
	}

	unlock := c.lockKey(line.Key())
	defer unlock()

	if _, found := c.lineByID(lineID); !found {
		return domain.ErrLineNotFound
	}

	return c.run(ctx, []domain.LineKey{line.Key()},
		func() { c.removeLine(lineID) },
		func(ctx context.Context) error { return c.repo.Delete(ctx, lineID) },
	)
}

// Clear empties the cart. No stock check; it touches every current identity.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]domain.LineKey, 0, len(c.lines))
	for i := range c.lines {
		keys = append(keys, c.lines[i].Key())
	}
	c.mu.Unlock()

	return c.run(ctx, keys,
		func() { c.lines = nil },
		func(ctx context.Context) error { return c.repo.DeleteAll(ctx, c.userID) },
	)
}

// lineImage is the pre-mutation state of one identity key: the line as it
// was, or nil if no line existed under that key.
type lineImage struct {
	key  domain.LineKey
	line *domain.CartLine
}

// run is the single apply-then-rollback helper behind every mutation: capture
// the pre-image of each touched identity, apply the optimistic local change,
// issue the one remote write, and on failure repair only the touched
// identities. Lines under other keys are never disturbed, so a rollback here
// cannot clobber a concurrent mutation on a different key.
func (c *Cart) run(ctx context.Context, keys []domain.LineKey, apply func(), remote func(context.Context) error) error {
	c.mu.Lock()
	images := make([]lineImage, 0, len(keys))
	for _, key := range keys {
		img := lineImage{key: key}
		for i := range c.lines {
			if c.lines[i].Key() == key {
				cp := c.lines[i]
				img.line = &cp
				break
			}
		}
		images = append(images, img)
	}
	apply()
	c.mu.Unlock()

	if err := remote(ctx); err != nil {
		c.restore(images)
		c.logger.Warn("cart write failed, rolled back",
			zap.Uint64("user_id", c.userID),
			zap.Error(err))
		return &domain.TransientError{Op: "cart write", Err: err}
	}

	if err := ctx.Err(); err != nil {
		// The write already landed; undoing it locally would diverge from
		// storage. This copy can no longer claim authority, so force the next
		// access to re-hydrate.
		if c.invalidate != nil {
			c.invalidate()
		}
		return err
	}

	return nil
}

// restore puts each touched identity back to its pre-mutation image, leaving
// every other line alone.
func (c *Cart) restore(images []lineImage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, img := range images {
		idx := -1
		for i := range c.lines {
			if c.lines[i].Key() == img.key {
				idx = i
				break
			}
		}
		switch {
		case img.line == nil && idx >= 0:
			c.lines = append(c.lines[:idx:idx], c.lines[idx+1:]...)
		case img.line != nil && idx >= 0:
			c.lines[idx] = *img.line
		case img.line != nil && idx < 0:
			c.lines = append(c.lines, *img.line)
		}
	}
}

// lockKey serializes mutations that touch the same line identity.
func (c *Cart) lockKey(key domain.LineKey) func() {
	c.mu.Lock()
	l, ok := c.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.keyLocks[key] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (c *Cart) lineByID(lineID uint64) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return c.lines[i], true
		}
	}
	return domain.CartLine{}, false
}

func (c *Cart) lineByKey(key domain.LineKey) (domain.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Key() == key {
			return c.lines[i], true
		}
	}
	return domain.CartLine{}, false
}

// applyQuantity must run inside run's apply callback (holds c.mu).
func (c *Cart) applyQuantity(lineID uint64, quantity, stockSnapshot int64) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Quantity = quantity
			c.lines[i].StockSnapshot = stockSnapshot
			return
		}
	}
}

// removeLine must run inside run's apply callback (holds c.mu).
func (c *Cart) removeLine(lineID uint64) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
			return
		}
	}
}
