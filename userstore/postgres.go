package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sessiongate "github.com/zeroleaf/sessiongate"
)

// Postgres looks up users in a table of the shape
//
//	CREATE TABLE users (
//	    id            uuid PRIMARY KEY,
//	    login         text UNIQUE NOT NULL,
//	    password_hash text NOT NULL,
//	    roles         text[] NOT NULL DEFAULT '{}'
//	);
//
// The pool's lifecycle belongs to the caller.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// FindByID implements sessiongate.UserStore.
func (p *Postgres) FindByID(ctx context.Context, id string) (*sessiongate.User, error) {
	return p.queryOne(ctx,
		`SELECT id, login, password_hash, roles FROM users WHERE id = $1`, id)
}

// FindByLogin implements sessiongate.UserStore.
func (p *Postgres) FindByLogin(ctx context.Context, login string) (*sessiongate.User, error) {
	return p.queryOne(ctx,
		`SELECT id, login, password_hash, roles FROM users WHERE login = $1`, login)
}

func (p *Postgres) queryOne(ctx context.Context, query string, arg any) (*sessiongate.User, error) {
	user := &sessiongate.User{}
	err := p.pool.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sessiongate.ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return user, nil
}
