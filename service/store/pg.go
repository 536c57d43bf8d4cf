package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PG implements UserStore and MembershipResolver over the relational schema
// owned by the CRUD layer (users, guild_members, channels). Queries are all
// parameterized; membership means an active (non-left) guild_members row.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// Open connects a pgx pool and pings it so startup fails fast on a bad URL.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

func (s *PG) GetUser(ctx context.Context, id string) (*User, error) {
	const q = `SELECT id, username, COALESCE(avatar, ''), deactivated
	           FROM users WHERE id = $1`

	u := &User{}
	err := s.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Username, &u.Avatar, &u.Deactivated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return u, nil
}

func (s *PG) ChannelsForUser(ctx context.Context, userID string) ([]Channel, error) {
	const q = `SELECT c.id, c.guild_id, c.type
	           FROM channels c
	           JOIN guild_members gm ON gm.guild_id = c.guild_id
	           WHERE gm.user_id = $1 AND gm.left_at IS NULL`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query channels")
	}
	defer rows.Close()

	var out []Channel
	for rows.Next() {
		var c Channel
		if err := rows.Scan(&c.ID, &c.GuildID, &c.Kind); err != nil {
			return nil, errors.Wrap(err, "scan channel")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "iterate channels")
}

func (s *PG) GuildsForUser(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT guild_id FROM guild_members
	           WHERE user_id = $1 AND left_at IS NULL`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query guilds")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan guild")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterate guilds")
}

func (s *PG) ResolveChannel(ctx context.Context, userID, channelID string) (Channel, bool, error) {
	const q = `SELECT c.id, c.guild_id, c.type
	           FROM channels c
	           JOIN guild_members gm ON gm.guild_id = c.guild_id
	           WHERE c.id = $1 AND gm.user_id = $2 AND gm.left_at IS NULL`

	var c Channel
	err := s.pool.QueryRow(ctx, q, channelID, userID).Scan(&c.ID, &c.GuildID, &c.Kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, false, nil
	}
	if err != nil {
		return Channel{}, false, errors.Wrap(err, "resolve channel")
	}
	return c, true, nil
}
