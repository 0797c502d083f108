package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentStore is append-only per (user, product) call.
type CommentStore struct {
	pool *pgxpool.Pool
}

func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

func (s *CommentStore) Insert(c context.Context, comment Comment) (Comment, error) {
	row := s.pool.QueryRow(
		c,
		`insert into comments (id, user_id, product_id, content)
		 values ($1, $2, $3, $4)
		 returning id, user_id, product_id, content, created_at`,
		comment.ID,
		comment.UserID,
		comment.ProductID,
		comment.Content,
	)
	inserted := Comment{}
	err := row.Scan(
		&inserted.ID,
		&inserted.UserID,
		&inserted.ProductID,
		&inserted.Content,
		&inserted.CreatedAt,
	)
	if err != nil {
		return Comment{}, err
	}
	return inserted, nil
}

// FindByProduct returns the product's comments newest-first with the
// author's name and email attached.
func (s *CommentStore) FindByProduct(c context.Context, productID uuid.UUID) ([]Comment, error) {
	rows, err := s.pool.Query(
		c,
		`select cm.id, cm.user_id, cm.product_id, cm.content, cm.created_at,
		        u.name, u.email
		 from comments cm
		 join users u on u.id = cm.user_id
		 where cm.product_id = $1
		 order by cm.created_at desc`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment := Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.ProductID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UserName,
			&comment.UserEmail,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *CommentStore) CountDistinctCommenters(
	c context.Context,
	productID uuid.UUID,
) (int64, error) {
	var count int64
	err := s.pool.QueryRow(
		c,
		`select count(distinct user_id) from comments where product_id = $1`,
		productID,
	).Scan(&count)
	return count, err
}
