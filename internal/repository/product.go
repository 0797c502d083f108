package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// ProductFilter narrows FindProducts; zero values mean "no constraint".
type ProductFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinStock *int32
}

const productColumns = `id, name, price, stock, category, description, image, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	p := Product{}
	price := pgtype.Numeric{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&price,
		&p.Stock,
		&p.Category,
		&p.Description,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	p.Price = decimalFromNumeric(price)
	return p, nil
}

func (s *ProductStore) Insert(c context.Context, p Product) (Product, error) {
	row := s.pool.QueryRow(
		c,
		`insert into products (id, name, price, stock, category, description, image)
		 values ($1, $2, $3, $4, $5, $6, $7)
		 returning `+productColumns,
		p.ID,
		p.Name,
		numericFromDecimal(p.Price),
		p.Stock,
		p.Category,
		p.Description,
		p.Image,
	)
	return scanProduct(row)
}

func (s *ProductStore) FindByID(c context.Context, id uuid.UUID) (Product, error) {
	row := s.pool.QueryRow(
		c,
		`select `+productColumns+` from products where id = $1`,
		id,
	)
	return scanProduct(row)
}

func (s *ProductStore) FindByName(c context.Context, name string) (Product, error) {
	row := s.pool.QueryRow(
		c,
		`select `+productColumns+` from products where name = $1`,
		name,
	)
	return scanProduct(row)
}

func (s *ProductStore) Update(c context.Context, p Product) (Product, error) {
	row := s.pool.QueryRow(
		c,
		`update products
		 set name = $2,
		     price = $3,
		     stock = $4,
		     category = $5,
		     description = $6,
		     image = $7,
		     updated_at = now()
		 where id = $1
		 returning `+productColumns,
		p.ID,
		p.Name,
		numericFromDecimal(p.Price),
		p.Stock,
		p.Category,
		p.Description,
		p.Image,
	)
	return scanProduct(row)
}

func (s *ProductStore) Delete(c context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(c, `delete from products where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *ProductStore) FindProducts(c context.Context, filter ProductFilter) ([]Product, error) {
	conditions := []string{}
	args := []interface{}{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, numericFromDecimal(*filter.MinPrice))
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, numericFromDecimal(*filter.MaxPrice))
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.MinStock != nil {
		args = append(args, *filter.MinStock)
		conditions = append(conditions, fmt.Sprintf("stock >= $%d", len(args)))
	}

	query := `select ` + productColumns + ` from products`
	if len(conditions) > 0 {
		query += " where " + strings.Join(conditions, " and ")
	}

	rows, err := s.pool.Query(c, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductStore) FindByCategory(
	c context.Context,
	category string,
	limit int32,
) ([]Product, error) {
	rows, err := s.pool.Query(
		c,
		`select `+productColumns+` from products where category = $1 limit $2`,
		category,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// DecrementStock applies the conditional decrement that backs checkout
// reservation. It reports false when the product's remaining stock is
// below qty; the statement is atomic, so two concurrent reservations
// for the last unit cannot both succeed.
func (s *ProductStore) DecrementStock(c context.Context, id uuid.UUID, qty int32) (bool, error) {
	tag, err := s.pool.Exec(
		c,
		`update products
		 set stock = stock - $2, updated_at = now()
		 where id = $1 and stock >= $2`,
		id,
		qty,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementStock restores stock when a later line of the same checkout
// fails reservation.
func (s *ProductStore) IncrementStock(c context.Context, id uuid.UUID, qty int32) error {
	_, err := s.pool.Exec(
		c,
		`update products
		 set stock = stock + $2, updated_at = now()
		 where id = $1`,
		id,
		qty,
	)
	return err
}
