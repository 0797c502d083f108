package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopique/storefront/internal/constants"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/order/pkg/request"
	"github.com/shopique/storefront/order/pkg/response"
)

type fakeProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]repository.Product

	// failDecrement forces DecrementStock to report a lost race for the
	// given product even when validation saw enough stock.
	failDecrement map[uuid.UUID]bool
	findErr       error
}

func (f *fakeProductStore) FindByID(_ context.Context, id uuid.UUID) (repository.Product, error) {
	if f.findErr != nil {
		return repository.Product{}, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (f *fakeProductStore) DecrementStock(_ context.Context, id uuid.UUID, qty int32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDecrement[id] {
		return false, nil
	}
	product, ok := f.products[id]
	if !ok || product.Stock < qty {
		return false, nil
	}
	product.Stock -= qty
	f.products[id] = product
	return true, nil
}

func (f *fakeProductStore) IncrementStock(_ context.Context, id uuid.UUID, qty int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product := f.products[id]
	product.Stock += qty
	f.products[id] = product
	return nil
}

func (f *fakeProductStore) stock(id uuid.UUID) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakeCartStore struct {
	lines         []repository.CartLine
	removed       []uuid.UUID
	getErr        error
	removeManyErr error
}

func (f *fakeCartStore) Get(_ context.Context, userID uuid.UUID) ([]repository.CartLine, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	lines := []repository.CartLine{}
	for _, line := range f.lines {
		if line.UserID == userID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (f *fakeCartStore) RemoveMany(
	_ context.Context,
	userID uuid.UUID,
	productIDs []uuid.UUID,
) error {
	if f.removeManyErr != nil {
		return f.removeManyErr
	}
	f.removed = append(f.removed, productIDs...)
	return nil
}

type fakeOrderStore struct {
	orders    []repository.Order
	createErr error
}

func (f *fakeOrderStore) Create(_ context.Context, order repository.Order) (repository.Order, error) {
	if f.createErr != nil {
		return repository.Order{}, f.createErr
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderStore) FindByUser(_ context.Context, userID uuid.UUID) ([]repository.Order, error) {
	orders := []repository.Order{}
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

type fakeProductCache struct {
	deleted []uuid.UUID
}

func (f *fakeProductCache) Del(_ context.Context, ids ...uuid.UUID) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture(trust bool) (*OrderService, *fakeProductStore, *fakeCartStore, *fakeOrderStore, *fakeProductCache) {
	products := &fakeProductStore{
		products:      map[uuid.UUID]repository.Product{},
		failDecrement: map[uuid.UUID]bool{},
	}
	carts := &fakeCartStore{}
	orders := &fakeOrderStore{}
	cache := &fakeProductCache{}
	return NewOrderService(products, carts, orders, cache, trust), products, carts, orders, cache
}

func TestCreateOrderMissingUser(t *testing.T) {
	svc, _, _, _, _ := newFixture(true)

	result := svc.CreateOrder(context.Background(), request.Checkout{UserID: uuid.Nil})

	assert.Equal(t, response.CodeMissingUser, result.Code)
	assert.Nil(t, result.Order)
}

func TestCreateOrderFromExplicitItems(t *testing.T) {
	svc, products, carts, orders, cache := newFixture(true)
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "espresso beans", Price: price("12.50"), Stock: 10,
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: userID,
		Items: []request.CheckoutItem{
			{ProductID: productID, Name: "espresso beans", Price: price("12.50"), Quantity: 3},
		},
	})

	require.Equal(t, response.CodeOK, result.Code)
	require.NotNil(t, result.Order)
	assert.Equal(t, constants.OrderStatusPaid, result.Order.Status)
	assert.True(t, result.Order.Total.Equal(price("37.50")))
	assert.EqualValues(t, 7, products.stock(productID))
	require.Len(t, orders.orders, 1)
	assert.Equal(t, []uuid.UUID{productID}, carts.removed)
	assert.Equal(t, []uuid.UUID{productID}, cache.deleted)
}

func TestCreateOrderFromSelectedCartLines(t *testing.T) {
	svc, products, carts, _, _ := newFixture(true)
	userID := uuid.New()
	selectedID := uuid.New()
	unselectedID := uuid.New()
	products.products[selectedID] = repository.Product{
		ID: selectedID, Name: "grinder", Price: price("80"), Stock: 5,
	}
	products.products[unselectedID] = repository.Product{
		ID: unselectedID, Name: "kettle", Price: price("40"), Stock: 5,
	}
	carts.lines = []repository.CartLine{
		{UserID: userID, ProductID: selectedID, Quantity: 2, Selected: true},
		{UserID: userID, ProductID: unselectedID, Quantity: 1, Selected: false},
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{UserID: userID})

	require.Equal(t, response.CodeOK, result.Code)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, "grinder", result.Order.Items[0].Name)
	assert.True(t, result.Order.Total.Equal(price("160")))
	assert.EqualValues(t, 3, products.stock(selectedID))
	assert.EqualValues(t, 5, products.stock(unselectedID))
	assert.Equal(t, []uuid.UUID{selectedID}, carts.removed)
}

func TestCreateOrderEmptySelection(t *testing.T) {
	svc, products, carts, _, _ := newFixture(true)
	userID := uuid.New()
	productID := uuid.New()
	products.products[productID] = repository.Product{ID: productID, Stock: 5}
	carts.lines = []repository.CartLine{
		{UserID: userID, ProductID: productID, Quantity: 1, Selected: false},
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{UserID: userID})

	assert.Equal(t, response.CodeEmptySelection, result.Code)
}

func TestCreateOrderMissingProductReference(t *testing.T) {
	svc, _, _, _, _ := newFixture(true)

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: uuid.Nil, Quantity: 1}},
	})

	assert.Equal(t, response.CodeMissingProductReference, result.Code)
}

func TestCreateOrderProductNotFound(t *testing.T) {
	svc, _, _, _, _ := newFixture(true)

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.Equal(t, response.CodeProductNotFound, result.Code)
}

func TestCreateOrderVanishedCartProduct(t *testing.T) {
	svc, _, carts, _, _ := newFixture(true)
	userID := uuid.New()
	carts.lines = []repository.CartLine{
		{UserID: userID, ProductID: uuid.New(), Quantity: 1, Selected: true},
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{UserID: userID})

	assert.Equal(t, response.CodeProductNotFound, result.Code)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, products, _, orders, _ := newFixture(true)
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "v60", Price: price("9"), Stock: 2,
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: productID, Quantity: 3}},
	})

	assert.Equal(t, response.CodeInsufficientStock, result.Code)
	assert.EqualValues(t, 2, products.stock(productID))
	assert.Empty(t, orders.orders)
}

func TestCreateOrderCompensatesOnLostReservationRace(t *testing.T) {
	svc, products, _, orders, _ := newFixture(true)
	firstID := uuid.New()
	secondID := uuid.New()
	products.products[firstID] = repository.Product{
		ID: firstID, Name: "filter papers", Price: price("4"), Stock: 10,
	}
	products.products[secondID] = repository.Product{
		ID: secondID, Name: "scale", Price: price("25"), Stock: 10,
	}
	products.failDecrement[secondID] = true

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items: []request.CheckoutItem{
			{ProductID: firstID, Quantity: 2},
			{ProductID: secondID, Quantity: 1},
		},
	})

	assert.Equal(t, response.CodeInsufficientStock, result.Code)
	assert.EqualValues(t, 10, products.stock(firstID))
	assert.Empty(t, orders.orders)
}

func TestCreateOrderQuantityFlooredToOne(t *testing.T) {
	svc, products, _, _, _ := newFixture(true)
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "mug", Price: price("6"), Stock: 5,
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: productID, Price: price("6"), Quantity: 0}},
	})

	require.Equal(t, response.CodeOK, result.Code)
	require.Len(t, result.Order.Items, 1)
	assert.EqualValues(t, 1, result.Order.Items[0].Quantity)
	assert.EqualValues(t, 4, products.stock(productID))
}

func TestCreateOrderRepricesWhenTrustDisabled(t *testing.T) {
	svc, products, _, _, _ := newFixture(false)
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "aeropress", Price: price("35"), Stock: 5,
	}

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items: []request.CheckoutItem{
			{ProductID: productID, Name: "bargain", Price: price("0.01"), Quantity: 1},
		},
	})

	require.Equal(t, response.CodeOK, result.Code)
	assert.Equal(t, "aeropress", result.Order.Items[0].Name)
	assert.True(t, result.Order.Total.Equal(price("35")))
}

func TestCreateOrderSystemErrorOnCreateFailure(t *testing.T) {
	svc, products, _, orders, _ := newFixture(true)
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "carafe", Price: price("18"), Stock: 5,
	}
	orders.createErr = errors.New("connection reset")

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: productID, Price: price("18"), Quantity: 1}},
	})

	assert.Equal(t, response.CodeSystemError, result.Code)
}

func TestCreateOrderSucceedsWhenCartReconciliationFails(t *testing.T) {
	svc, products, carts, _, _ := newFixture(true)
	productID := uuid.New()
	products.products[productID] = repository.Product{
		ID: productID, Name: "dripper", Price: price("14"), Stock: 5,
	}
	carts.removeManyErr = errors.New("connection reset")

	result := svc.CreateOrder(context.Background(), request.Checkout{
		UserID: uuid.New(),
		Items:  []request.CheckoutItem{{ProductID: productID, Price: price("14"), Quantity: 1}},
	})

	assert.Equal(t, response.CodeOK, result.Code)
}

func TestFindOrdersMapsStoredOrders(t *testing.T) {
	svc, _, _, orders, _ := newFixture(true)
	userID := uuid.New()
	orders.orders = []repository.Order{
		{ID: uuid.New(), UserID: userID, Total: price("10"), Status: constants.OrderStatusPaid},
		{ID: uuid.New(), UserID: uuid.New(), Total: price("99"), Status: constants.OrderStatusPaid},
	}

	found, err := svc.FindOrders(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, userID, found[0].UserID)
}
