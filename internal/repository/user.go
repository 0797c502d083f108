package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, name, email, password, role, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	u := User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *UserStore) Insert(c context.Context, u User) (User, error) {
	row := s.pool.QueryRow(
		c,
		`insert into users (id, name, email, password, role)
		 values ($1, $2, $3, $4, $5)
		 returning `+userColumns,
		u.ID,
		u.Name,
		u.Email,
		u.Password,
		u.Role,
	)
	return scanUser(row)
}

func (s *UserStore) FindByEmail(c context.Context, email string) (User, error) {
	row := s.pool.QueryRow(c, `select `+userColumns+` from users where email = $1`, email)
	return scanUser(row)
}

func (s *UserStore) FindByID(c context.Context, id uuid.UUID) (User, error) {
	row := s.pool.QueryRow(c, `select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) FindAll(c context.Context) ([]User, error) {
	rows, err := s.pool.Query(c, `select `+userColumns+` from users order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdatePassword(c context.Context, id uuid.UUID, password string) error {
	tag, err := s.pool.Exec(
		c,
		`update users set password = $2, updated_at = now() where id = $1`,
		id,
		password,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ToggleFavorite flips the product's membership in the user's favorite
// set and reports whether it is a favorite afterwards. The insert and
// delete are each a single statement keyed on the primary key, so a
// double toggle cannot create duplicates.
func (s *UserStore) ToggleFavorite(
	c context.Context,
	userID, productID uuid.UUID,
) (bool, error) {
	tag, err := s.pool.Exec(
		c,
		`delete from user_favorites where user_id = $1 and product_id = $2`,
		userID,
		productID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = s.pool.Exec(
		c,
		`insert into user_favorites (user_id, product_id)
		 values ($1, $2)
		 on conflict (user_id, product_id) do nothing`,
		userID,
		productID,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserStore) FindFavorites(c context.Context, userID uuid.UUID) ([]Product, error) {
	rows, err := s.pool.Query(
		c,
		`select p.id, p.name, p.price, p.stock, p.category, p.description, p.image,
		        p.created_at, p.updated_at
		 from user_favorites f
		 join products p on p.id = f.product_id
		 where f.user_id = $1
		 order by f.created_at desc`,
		userID,
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
