package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopique/storefront/cart/pkg/request"
	"github.com/shopique/storefront/internal/repository"
)

type lineKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type fakeCartStore struct {
	lines map[lineKey]repository.CartLine
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{lines: map[lineKey]repository.CartLine{}}
}

func (f *fakeCartStore) Get(_ context.Context, userID uuid.UUID) ([]repository.CartLine, error) {
	lines := []repository.CartLine{}
	for key, line := range f.lines {
		if key.userID == userID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (f *fakeCartStore) AddItem(
	_ context.Context,
	userID, productID uuid.UUID,
	delta int32,
) error {
	key := lineKey{userID: userID, productID: productID}
	line, ok := f.lines[key]
	if !ok {
		line = repository.CartLine{
			UserID:    userID,
			ProductID: productID,
			Selected:  true,
			UpdatedAt: time.Now(),
		}
	}
	line.Quantity += delta
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	f.lines[key] = line
	return nil
}

func (f *fakeCartStore) SetQuantity(
	_ context.Context,
	userID, productID uuid.UUID,
	quantity int32,
) error {
	key := lineKey{userID: userID, productID: productID}
	if quantity <= 0 {
		delete(f.lines, key)
		return nil
	}
	line, ok := f.lines[key]
	if !ok {
		return nil
	}
	line.Quantity = quantity
	f.lines[key] = line
	return nil
}

func (f *fakeCartStore) Remove(_ context.Context, userID, productID uuid.UUID) error {
	delete(f.lines, lineKey{userID: userID, productID: productID})
	return nil
}

func (f *fakeCartStore) SetSelected(
	_ context.Context,
	userID uuid.UUID,
	productIDs []uuid.UUID,
	selected bool,
) error {
	for _, productID := range productIDs {
		key := lineKey{userID: userID, productID: productID}
		if line, ok := f.lines[key]; ok {
			line.Selected = selected
			f.lines[key] = line
		}
	}
	return nil
}

func (f *fakeCartStore) Clear(_ context.Context, userID uuid.UUID) error {
	for key := range f.lines {
		if key.userID == userID {
			delete(f.lines, key)
		}
	}
	return nil
}

type fakeProductStore struct {
	products map[uuid.UUID]repository.Product
}

func (f *fakeProductStore) FindByID(_ context.Context, id uuid.UUID) (repository.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func newFixture() (*CartService, *fakeCartStore, *fakeProductStore) {
	carts := newFakeCartStore()
	products := &fakeProductStore{products: map[uuid.UUID]repository.Product{}}
	return NewCartService(carts, products), carts, products
}

func TestFindCartEmptyIsNotAnError(t *testing.T) {
	svc, _, _ := newFixture()

	cart, err := svc.FindCart(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestAddItemMergesQuantity(t *testing.T) {
	svc, _, products := newFixture()
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "teapot", Price: decimal.RequireFromString("22"),
	}

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: 2,
	})
	require.NoError(t, err)
	cart, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: 3,
	})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.EqualValues(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, "teapot", cart.Lines[0].Name)
	assert.True(t, cart.Lines[0].Selected)
}

func TestAddItemDefaultsToOne(t *testing.T) {
	svc, _, products := newFixture()
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{ID: productID}

	cart, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID,
	})

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.EqualValues(t, 1, cart.Lines[0].Quantity)
}

func TestAddItemNegativeDeltaFlooredToOne(t *testing.T) {
	svc, _, products := newFixture()
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{ID: productID}

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: 2,
	})
	require.NoError(t, err)
	cart, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: -5,
	})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.EqualValues(t, 1, cart.Lines[0].Quantity)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: uuid.New(), ProductID: uuid.New(), Quantity: 1,
	})

	assert.Error(t, err)
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	svc, _, products := newFixture()
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{ID: productID}

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: 2,
	})
	require.NoError(t, err)
	cart, err := svc.UpdateItem(context.Background(), request.UpdateCartItem{
		UserID: userID, ProductID: productID, Quantity: 0,
	})
	require.NoError(t, err)

	assert.Empty(t, cart.Lines)
}

func TestSelectItemsTogglesOnlyNamedLines(t *testing.T) {
	svc, _, products := newFixture()
	userID := uuid.New()
	firstID := uuid.New()
	secondID := uuid.New()
	products.products[firstID] = repository.Product{ID: firstID}
	products.products[secondID] = repository.Product{ID: secondID}

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: firstID, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: secondID, Quantity: 1,
	})
	require.NoError(t, err)

	cart, err := svc.SelectItems(context.Background(), request.SelectCartItems{
		UserID: userID, ProductIDs: []uuid.UUID{firstID}, Selected: false,
	})
	require.NoError(t, err)

	selected := map[uuid.UUID]bool{}
	for _, line := range cart.Lines {
		selected[line.ProductID] = line.Selected
	}
	assert.False(t, selected[firstID])
	assert.True(t, selected[secondID])
}

func TestClearCartRemovesOnlyOwnLines(t *testing.T) {
	svc, carts, products := newFixture()
	userID := uuid.New()
	otherID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{ID: productID}

	_, err := svc.AddItem(context.Background(), request.AddCartItem{
		UserID: userID, ProductID: productID, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), request.AddCartItem{
		UserID: otherID, ProductID: productID, Quantity: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), userID))

	mine, err := svc.FindCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, mine.Lines)
	theirs, err := carts.Get(context.Background(), otherID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestFindCartKeepsLineWhenProductVanished(t *testing.T) {
	svc, carts, _ := newFixture()
	userID := uuid.New()
	productID := uuid.New()
	require.NoError(t, carts.AddItem(context.Background(), userID, productID, 1))

	cart, err := svc.FindCart(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Empty(t, cart.Lines[0].Name)
	assert.True(t, cart.Lines[0].Price.IsZero())
}
