package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/shopique/storefront/internal/errors"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/product/pkg/request"
)

type fakeProductStore struct {
	products map[uuid.UUID]repository.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[uuid.UUID]repository.Product{}}
}

func (f *fakeProductStore) Insert(_ context.Context, p repository.Product) (repository.Product, error) {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductStore) FindByID(_ context.Context, id uuid.UUID) (repository.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProductStore) FindByName(_ context.Context, name string) (repository.Product, error) {
	for _, p := range f.products {
		if p.Name == name {
			return p, nil
		}
	}
	return repository.Product{}, pgx.ErrNoRows
}

func (f *fakeProductStore) Update(_ context.Context, p repository.Product) (repository.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return repository.Product{}, pgx.ErrNoRows
	}
	p.UpdatedAt = time.Now()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) FindProducts(
	_ context.Context,
	filter repository.ProductFilter,
) ([]repository.Product, error) {
	products := []repository.Product{}
	for _, p := range f.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.MinStock != nil && p.Stock < *filter.MinStock {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProductStore) FindByCategory(
	_ context.Context,
	category string,
	limit int32,
) ([]repository.Product, error) {
	products := []repository.Product{}
	for _, p := range f.products {
		if p.Category == category && int32(len(products)) < limit {
			products = append(products, p)
		}
	}
	return products, nil
}

type fakeProductCache struct {
	entries map[uuid.UUID]repository.Product
	hits    int
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: map[uuid.UUID]repository.Product{}}
}

func (f *fakeProductCache) Get(_ context.Context, id uuid.UUID) (repository.Product, error) {
	p, ok := f.entries[id]
	if !ok {
		return repository.Product{}, errors.New("cache miss")
	}
	f.hits++
	return p, nil
}

func (f *fakeProductCache) Set(_ context.Context, product repository.Product) error {
	f.entries[product.ID] = product
	return nil
}

func (f *fakeProductCache) Del(_ context.Context, ids ...uuid.UUID) error {
	for _, id := range ids {
		delete(f.entries, id)
	}
	return nil
}

type fakeUserStore struct {
	favorites map[uuid.UUID]map[uuid.UUID]bool
	products  *fakeProductStore
}

func (f *fakeUserStore) ToggleFavorite(
	_ context.Context,
	userID, productID uuid.UUID,
) (bool, error) {
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[uuid.UUID]bool{}
	}
	if f.favorites[userID][productID] {
		delete(f.favorites[userID], productID)
		return false, nil
	}
	f.favorites[userID][productID] = true
	return true, nil
}

func (f *fakeUserStore) FindFavorites(
	_ context.Context,
	userID uuid.UUID,
) ([]repository.Product, error) {
	products := []repository.Product{}
	for productID := range f.favorites[userID] {
		if p, ok := f.products.products[productID]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

type fakeCommentStore struct {
	comments []repository.Comment
}

func (f *fakeCommentStore) Insert(
	_ context.Context,
	comment repository.Comment,
) (repository.Comment, error) {
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, comment)
	return comment, nil
}

func (f *fakeCommentStore) FindByProduct(
	_ context.Context,
	productID uuid.UUID,
) ([]repository.Comment, error) {
	comments := []repository.Comment{}
	for _, comment := range f.comments {
		if comment.ProductID == productID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (f *fakeCommentStore) CountDistinctCommenters(
	_ context.Context,
	productID uuid.UUID,
) (int64, error) {
	users := map[uuid.UUID]bool{}
	for _, comment := range f.comments {
		if comment.ProductID == productID {
			users[comment.UserID] = true
		}
	}
	return int64(len(users)), nil
}

type fakeOrderStore struct {
	buyers map[uuid.UUID]int64
}

func (f *fakeOrderStore) CountDistinctBuyers(
	_ context.Context,
	productID uuid.UUID,
) (int64, error) {
	return f.buyers[productID], nil
}

func newFixture() (*ProductService, *fakeProductStore, *fakeProductCache, *fakeCommentStore, *fakeOrderStore) {
	products := newFakeProductStore()
	cache := newFakeProductCache()
	users := &fakeUserStore{favorites: map[uuid.UUID]map[uuid.UUID]bool{}, products: products}
	comments := &fakeCommentStore{}
	orders := &fakeOrderStore{buyers: map[uuid.UUID]int64{}}
	return NewProductService(products, cache, users, comments, orders), products, cache, comments, orders
}

func seed(products *fakeProductStore, name, category, price string, stock int32, age time.Duration) uuid.UUID {
	id := uuid.New()
	products.products[id] = repository.Product{
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedAt: time.Now().Add(-age),
	}
	return id
}

func TestInsertProductRejectsDuplicateName(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	seed(products, "french press", "brewing", "30", 5, time.Hour)

	_, err := svc.InsertProduct(context.Background(), request.InsertProduct{
		Name: "french press", Price: decimal.RequireFromString("28"), Category: "brewing",
	})

	assert.ErrorIs(t, err, inErrors.ErrProductExist)
}

func TestFindProductByIDFillsCache(t *testing.T) {
	svc, products, cache, _, _ := newFixture()
	id := seed(products, "moka pot", "brewing", "25", 5, time.Hour)

	first, err := svc.FindProductByID(context.Background(), id)
	require.NoError(t, err)
	second, err := svc.FindProductByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestFindProductByIDNotFound(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	_, err := svc.FindProductByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestFindProductsFuzzySearch(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	seed(products, "ceramic pour over dripper", "brewing", "14", 5, time.Hour)
	seed(products, "electric gooseneck kettle", "brewing", "60", 5, time.Hour)
	seed(products, "denim apron", "apparel", "35", 5, time.Hour)

	page, err := svc.FindProducts(context.Background(), request.FindProducts{Search: "driper"})

	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "ceramic pour over dripper", page.Products[0].Name)
}

func TestFindProductsSortOverridesMatchRank(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	seed(products, "kettle small", "brewing", "40", 5, time.Hour)
	seed(products, "kettle large", "brewing", "60", 5, time.Hour)

	page, err := svc.FindProducts(context.Background(), request.FindProducts{
		Search: "kettle", Sort: "price_desc",
	})

	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "kettle large", page.Products[0].Name)
}

func TestFindProductsNewestFirstByDefault(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	seed(products, "old roast", "coffee", "10", 5, 48*time.Hour)
	seed(products, "fresh roast", "coffee", "12", 5, time.Hour)

	page, err := svc.FindProducts(context.Background(), request.FindProducts{})

	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "fresh roast", page.Products[0].Name)
}

func TestFindProductsPagination(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	for i := 0; i < 5; i++ {
		seed(products, uuid.NewString(), "coffee", "10", 5, time.Duration(i)*time.Hour)
	}

	page, err := svc.FindProducts(context.Background(), request.FindProducts{
		Page: 2, PageSize: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.Page)

	past, err := svc.FindProducts(context.Background(), request.FindProducts{
		Page: 9, PageSize: 2,
	})
	require.NoError(t, err)
	assert.Empty(t, past.Products)
}

func TestFindProductsInStockFilter(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	seed(products, "in stock", "coffee", "10", 3, time.Hour)
	seed(products, "sold out", "coffee", "10", 0, time.Hour)

	page, err := svc.FindProducts(context.Background(), request.FindProducts{InStock: true})

	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "in stock", page.Products[0].Name)
}

func TestUpdateProductEvictsCache(t *testing.T) {
	svc, products, cache, _, _ := newFixture()
	id := seed(products, "grinder", "brewing", "80", 5, time.Hour)
	_, err := svc.FindProductByID(context.Background(), id)
	require.NoError(t, err)
	require.Contains(t, cache.entries, id)

	_, err = svc.UpdateProduct(context.Background(), request.UpdateProduct{
		ID: id, Name: "grinder", Price: decimal.RequireFromString("75"), Category: "brewing", Stock: 5,
	})
	require.NoError(t, err)

	assert.NotContains(t, cache.entries, id)
}

func TestToggleFavoriteFlipsState(t *testing.T) {
	svc, products, _, _, _ := newFixture()
	userID := uuid.New()
	id := seed(products, "scale", "brewing", "25", 5, time.Hour)

	first, err := svc.ToggleFavorite(context.Background(), userID, id)
	require.NoError(t, err)
	second, err := svc.ToggleFavorite(context.Background(), userID, id)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestToggleFavoriteUnknownProduct(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	_, err := svc.ToggleFavorite(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestInsertCommentUnknownProduct(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	_, err := svc.InsertComment(context.Background(), request.InsertComment{
		UserID: uuid.New(), ProductID: uuid.New(), Content: "great",
	})

	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestFindCounts(t *testing.T) {
	svc, products, _, comments, orders := newFixture()
	id := seed(products, "carafe", "brewing", "18", 5, time.Hour)
	orders.buyers[id] = 4
	commenter := uuid.New()
	for i := 0; i < 2; i++ {
		_, err := svc.InsertComment(context.Background(), request.InsertComment{
			UserID: commenter, ProductID: id, Content: "nice",
		})
		require.NoError(t, err)
	}
	require.Len(t, comments.comments, 2)

	counts, err := svc.FindCounts(context.Background(), id)

	require.NoError(t, err)
	assert.EqualValues(t, 4, counts.Buyers)
	assert.EqualValues(t, 1, counts.Commenters)
}
