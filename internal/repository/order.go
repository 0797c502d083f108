package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderStore is append-only: orders and their line-item snapshots are
// written once and never updated or deleted.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create writes the order and its items inside one transaction, so a
// stored order is never half-written.
func (s *OrderStore) Create(c context.Context, order Order) (Order, error) {
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return
		}
	}()

	row := tx.QueryRow(
		c,
		`insert into orders (id, user_id, total, status)
		 values ($1, $2, $3, $4)
		 returning id, user_id, total, status, created_at, updated_at`,
		order.ID,
		order.UserID,
		numericFromDecimal(order.Total),
		order.Status,
	)
	inserted, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}

	for i, item := range order.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = inserted.ID
		_, err := tx.Exec(
			c,
			`insert into order_items (id, order_id, product_id, name, price, quantity)
			 values ($1, $2, $3, $4, $5, $6)`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			numericFromDecimal(item.Price),
			item.Quantity,
		)
		if err != nil {
			return Order{}, fmt.Errorf("failed inserting orderItem with error=%w", err)
		}
		order.Items[i] = item
	}

	err = tx.Commit(c)
	if err != nil {
		return Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}

	inserted.Items = order.Items
	return inserted, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	order := Order{}
	total := pgtype.Numeric{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	order.Total = decimalFromNumeric(total)
	return order, nil
}

// FindByUser returns the user's orders newest-first with their item
// snapshots attached.
func (s *OrderStore) FindByUser(c context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := s.pool.Query(
		c,
		`select id, user_id, total, status, created_at, updated_at
		 from orders
		 where user_id = $1
		 order by created_at desc`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	orderIndex := map[uuid.UUID]int{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		order.Items = []OrderItem{}
		orderIndex[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}

	itemRows, err := s.pool.Query(
		c,
		`select id, order_id, product_id, name, price, quantity
		 from order_items
		 where order_id = any($1)`,
		orderIDs,
	)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := OrderItem{}
		price := pgtype.Numeric{}
		err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&price,
			&item.Quantity,
		)
		if err != nil {
			return nil, err
		}
		item.Price = decimalFromNumeric(price)
		if i, ok := orderIndex[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

// CountDistinctBuyers reports how many distinct users have an order
// containing the product.
func (s *OrderStore) CountDistinctBuyers(c context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(
		c,
		`select count(distinct o.user_id)
		 from orders o
		 join order_items oi on oi.order_id = o.id
		 where oi.product_id = $1`,
		productID,
	).Scan(&count)
	return count, err
}
