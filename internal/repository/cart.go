package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartStore persists one cart line per (user, product). Every mutator
// is a single SQL statement, so concurrent mutations of the same cart
// never clobber each other the way a whole-document overwrite would.
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

const cartColumns = `user_id, product_id, quantity, selected, created_at, updated_at`

func (s *CartStore) Get(c context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := s.pool.Query(
		c,
		`select `+cartColumns+` from cart_items where user_id = $1 order by created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []CartLine{}
	for rows.Next() {
		line := CartLine{}
		err := rows.Scan(
			&line.UserID,
			&line.ProductID,
			&line.Quantity,
			&line.Selected,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// AddItem merges qty into an existing line or appends a new one with
// selected defaulting to true. The merged quantity is floored at 1.
func (s *CartStore) AddItem(c context.Context, userID, productID uuid.UUID, qty int32) error {
	_, err := s.pool.Exec(
		c,
		`insert into cart_items (user_id, product_id, quantity, selected)
		 values ($1, $2, greatest($3, 1), true)
		 on conflict (user_id, product_id) do update
		 set quantity = greatest(cart_items.quantity + $3, 1),
		     updated_at = now()`,
		userID,
		productID,
		qty,
	)
	return err
}

// SetQuantity overwrites a line's quantity; qty <= 0 removes the line.
func (s *CartStore) SetQuantity(c context.Context, userID, productID uuid.UUID, qty int32) error {
	if qty <= 0 {
		return s.Remove(c, userID, productID)
	}
	_, err := s.pool.Exec(
		c,
		`update cart_items
		 set quantity = $3, updated_at = now()
		 where user_id = $1 and product_id = $2`,
		userID,
		productID,
		qty,
	)
	return err
}

func (s *CartStore) Remove(c context.Context, userID, productID uuid.UUID) error {
	_, err := s.pool.Exec(
		c,
		`delete from cart_items where user_id = $1 and product_id = $2`,
		userID,
		productID,
	)
	return err
}

func (s *CartStore) RemoveMany(c context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(
		c,
		`delete from cart_items where user_id = $1 and product_id = any($2)`,
		userID,
		productIDs,
	)
	return err
}

func (s *CartStore) SetSelected(
	c context.Context,
	userID uuid.UUID,
	productIDs []uuid.UUID,
	selected bool,
) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(
		c,
		`update cart_items
		 set selected = $3, updated_at = now()
		 where user_id = $1 and product_id = any($2)`,
		userID,
		productIDs,
		selected,
	)
	return err
}

func (s *CartStore) Clear(c context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(c, `delete from cart_items where user_id = $1`, userID)
	return err
}
