package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	inErrors "github.com/shopique/storefront/internal/errors"
	"github.com/shopique/storefront/internal/log"
	inOtel "github.com/shopique/storefront/internal/otel"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/product/internal/otel"
	"github.com/shopique/storefront/product/pkg/request"
	"github.com/shopique/storefront/product/pkg/response"
)

const defaultPageSize = 20

type ProductStore interface {
	Insert(c context.Context, p repository.Product) (repository.Product, error)
	FindByID(c context.Context, id uuid.UUID) (repository.Product, error)
	FindByName(c context.Context, name string) (repository.Product, error)
	Update(c context.Context, p repository.Product) (repository.Product, error)
	Delete(c context.Context, id uuid.UUID) error
	FindProducts(c context.Context, filter repository.ProductFilter) ([]repository.Product, error)
	FindByCategory(c context.Context, category string, limit int32) ([]repository.Product, error)
}

type ProductCache interface {
	Get(c context.Context, id uuid.UUID) (repository.Product, error)
	Set(c context.Context, product repository.Product) error
	Del(c context.Context, ids ...uuid.UUID) error
}

type UserStore interface {
	ToggleFavorite(c context.Context, userID, productID uuid.UUID) (bool, error)
	FindFavorites(c context.Context, userID uuid.UUID) ([]repository.Product, error)
}

type CommentStore interface {
	Insert(c context.Context, comment repository.Comment) (repository.Comment, error)
	FindByProduct(c context.Context, productID uuid.UUID) ([]repository.Comment, error)
	CountDistinctCommenters(c context.Context, productID uuid.UUID) (int64, error)
}

type OrderStore interface {
	CountDistinctBuyers(c context.Context, productID uuid.UUID) (int64, error)
}

type ProductService struct {
	products ProductStore
	cache    ProductCache
	users    UserStore
	comments CommentStore
	orders   OrderStore
}

func NewProductService(
	products ProductStore,
	cache ProductCache,
	users UserStore,
	comments CommentStore,
	orders OrderStore,
) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		users:    users,
		comments: comments,
		orders:   orders,
	}
}

func (s *ProductService) InsertProduct(
	c context.Context,
	param request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Str("productName", param.Name).
		Logger()

	logger.Info().Msg("checking product name uniqueness")
	_, err := s.products.FindByName(c, param.Name)
	if err == nil {
		err = fmt.Errorf("product name=%s already exists with error=%w", param.Name, inErrors.ErrProductExist)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding product by name with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("checked product name uniqueness")

	logger.Info().Msg("inserting product")
	product, err := s.products.Insert(c, repository.Product{
		ID:          uuid.New(),
		Name:        param.Name,
		Price:       param.Price,
		Stock:       param.Stock,
		Category:    param.Category,
		Description: param.Description,
		Image:       param.Image,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")

	return response.NewProduct(product), nil
}

// FindProductByID serves reads through the product cache; misses fall
// back to the database and refill the cache.
func (s *ProductService) FindProductByID(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductByID").
		Str(log.KeyProductID, id.String()).
		Logger()

	cached, err := s.cache.Get(c, id)
	if err == nil {
		logger.Debug().Msg("found product in cache")
		return response.NewProduct(cached), nil
	}
	logger.Debug().Err(err).Msg("product cache miss")

	logger.Info().Msg("finding product")
	product, err := s.products.FindByID(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("product not found")
			return response.Product{}, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product")

	if err := s.cache.Set(c, product); err != nil {
		logger.Warn().Err(err).Msg("failed caching product")
	}
	return response.NewProduct(product), nil
}

// FindProducts runs the catalog query. Structured filters are pushed
// into SQL; the free-text search is fuzzy-matched in memory over name,
// description and category, and the sort is applied after matching, so
// an explicit sort order wins over match rank.
func (s *ProductService) FindProducts(
	c context.Context,
	param request.FindProducts,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str("search", param.Search).
		Str("category", param.Category).
		Str("sort", param.Sort).
		Logger()

	filter := repository.ProductFilter{
		Category: param.Category,
		MinPrice: param.MinPrice,
		MaxPrice: param.MaxPrice,
	}
	if param.InStock {
		minStock := int32(1)
		filter.MinStock = &minStock
	}

	logger.Info().Msg("finding products")
	products, err := s.products.FindProducts(c, filter)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("found products")

	if search := strings.TrimSpace(param.Search); search != "" {
		products = fuzzyFilter(search, products)
		logger.Info().Int(log.KeyProducts, len(products)).Msg("fuzzy matched products")
	}

	sortProducts(param.Sort, products)

	total := len(products)
	page := param.Page
	if page < 1 {
		page = 1
	}
	pageSize := param.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return response.ProductPage{
		Products: response.NewProducts(products[start:end]),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func fuzzyFilter(search string, products []repository.Product) []repository.Product {
	haystack := make([]string, 0, len(products))
	for _, product := range products {
		haystack = append(haystack, strings.Join(
			[]string{product.Name, product.Description, product.Category},
			" ",
		))
	}
	ranks := fuzzy.RankFindNormalizedFold(search, haystack)
	sort.Sort(ranks)

	matched := make([]repository.Product, 0, len(ranks))
	for _, rank := range ranks {
		matched = append(matched, products[rank.OriginalIndex])
	}
	return matched
}

func sortProducts(order string, products []repository.Product) {
	switch order {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case "name":
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

func (s *ProductService) FindByCategory(
	c context.Context,
	category string,
	limit int32,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindByCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindByCategory").
		Str("category", category).
		Logger()

	logger.Info().Msg("finding products by category")
	products, err := s.products.FindByCategory(c, category, limit)
	if err != nil {
		err = fmt.Errorf("failed finding products by category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("found products by category")

	return response.NewProducts(products), nil
}

func (s *ProductService) UpdateProduct(
	c context.Context,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, param.ID.String()).
		Logger()

	logger.Info().Msg("updating product")
	product, err := s.products.Update(c, repository.Product{
		ID:          param.ID,
		Name:        param.Name,
		Price:       param.Price,
		Stock:       param.Stock,
		Category:    param.Category,
		Description: param.Description,
		Image:       param.Image,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("product not found")
			return response.Product{}, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product")

	if err := s.cache.Del(c, param.ID); err != nil {
		logger.Warn().Err(err).Msg("failed evicting product cache")
	}
	return response.NewProduct(product), nil
}

func (s *ProductService) DeleteProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger.Info().Msg("deleting product")
	err := s.products.Delete(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("product not found")
			return inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	if err := s.cache.Del(c, id); err != nil {
		logger.Warn().Err(err).Msg("failed evicting product cache")
	}
	return nil
}

// ToggleFavorite flips the favorite mark and reports the new state.
func (s *ProductService) ToggleFavorite(
	c context.Context,
	userID, productID uuid.UUID,
) (bool, error) {
	c, span := otel.Tracer.Start(c, "ProductService ToggleFavorite")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService ToggleFavorite").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	if _, err := s.products.FindByID(c, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("product not found")
			return false, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}

	logger.Info().Msg("toggling favorite")
	isFavorite, err := s.users.ToggleFavorite(c, userID, productID)
	if err != nil {
		err = fmt.Errorf("failed toggling favorite with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	logger.Info().Bool("isFavorite", isFavorite).Msg("toggled favorite")

	return isFavorite, nil
}

func (s *ProductService) FindFavorites(
	c context.Context,
	userID uuid.UUID,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindFavorites")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindFavorites").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger.Info().Msg("finding favorites")
	products, err := s.users.FindFavorites(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding favorites with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("found favorites")

	return response.NewProducts(products), nil
}

func (s *ProductService) InsertComment(
	c context.Context,
	param request.InsertComment,
) (response.Comment, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertComment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertComment").
		Str(log.KeyUserID, param.UserID.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Logger()

	if _, err := s.products.FindByID(c, param.ProductID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("product not found")
			return response.Comment{}, inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Comment{}, err
	}

	logger.Info().Msg("inserting comment")
	comment, err := s.comments.Insert(c, repository.Comment{
		ID:        uuid.New(),
		UserID:    param.UserID,
		ProductID: param.ProductID,
		Content:   param.Content,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting comment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Comment{}, err
	}
	logger.Info().Msg("inserted comment")

	return response.NewComment(comment), nil
}

func (s *ProductService) FindComments(
	c context.Context,
	productID uuid.UUID,
) ([]response.Comment, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindComments")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindComments").
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger.Info().Msg("finding comments")
	comments, err := s.comments.FindByProduct(c, productID)
	if err != nil {
		err = fmt.Errorf("failed finding comments with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("commentCount", len(comments)).Msg("found comments")

	mapped := make([]response.Comment, 0, len(comments))
	for _, comment := range comments {
		mapped = append(mapped, response.NewComment(comment))
	}
	return mapped, nil
}

// FindCounts aggregates a product's distinct buyers and commenters.
func (s *ProductService) FindCounts(
	c context.Context,
	productID uuid.UUID,
) (response.ProductCounts, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindCounts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindCounts").
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger.Info().Msg("counting distinct buyers")
	buyers, err := s.orders.CountDistinctBuyers(c, productID)
	if err != nil {
		err = fmt.Errorf("failed counting distinct buyers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductCounts{}, err
	}

	logger.Info().Msg("counting distinct commenters")
	commenters, err := s.comments.CountDistinctCommenters(c, productID)
	if err != nil {
		err = fmt.Errorf("failed counting distinct commenters with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductCounts{}, err
	}

	return response.ProductCounts{
		ProductID:  productID,
		Buyers:     buyers,
		Commenters: commenters,
	}, nil
}
