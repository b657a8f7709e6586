package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casino-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

// inMemoryUserRepo stores users in a map. It hands out copies so the
// services' in-transaction mutations only become visible through
// UpdateBalance, matching how the real repository behaves.
type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryUserRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Balance = balance
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// --- In-Memory Game Repo ---

type inMemoryGameRepo struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*domain.Game
}

func newInMemoryGameRepo() *inMemoryGameRepo {
	return &inMemoryGameRepo{games: make(map[uuid.UUID]*domain.Game)}
}

func (r *inMemoryGameRepo) Create(ctx context.Context, tx pgx.Tx, g *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.ID] = cloneGame(g)
	return nil
}

func (r *inMemoryGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	return cloneGame(g), nil
}

func (r *inMemoryGameRepo) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.games {
		if g.UserID == userID && g.Status == domain.GameStatusActive {
			return cloneGame(g), nil
		}
	}
	return nil, nil
}

func (r *inMemoryGameRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Game, error) {
	return r.GetByID(ctx, id)
}

// UpdateActive keeps the production guard: the write only lands while
// the stored game is still ACTIVE.
func (r *inMemoryGameRepo) UpdateActive(ctx context.Context, tx pgx.Tx, g *domain.Game) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.games[g.ID]
	if !ok || stored.Status != domain.GameStatusActive {
		return false, nil
	}
	r.games[g.ID] = cloneGame(g)
	return true, nil
}

func cloneGame(g *domain.Game) *domain.Game {
	c := *g
	c.Hands = make([]*domain.Hand, len(g.Hands))
	for i, h := range g.Hands {
		c.Hands[i] = cloneHand(h)
	}
	c.Dealer = cloneHand(g.Dealer)
	c.Deck = append([]domain.Card(nil), g.Deck...)
	if g.ResolvedAt != nil {
		resolved := *g.ResolvedAt
		c.ResolvedAt = &resolved
	}
	return &c
}

func cloneHand(h *domain.Hand) *domain.Hand {
	c := *h
	c.Cards = append([]domain.Card(nil), h.Cards...)
	return &c
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactional units behind a single
// mutex, standing in for the row locks the postgres repositories take
// with SELECT ... FOR UPDATE. That keeps read-modify-write cycles
// atomic, so the concurrency tests can assert exact balances.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &noopTx{unlock: &t.mu}, nil
}

// noopTx is a no-op pgx.Tx for in-memory testing. Commit and Rollback
// both release the transactor mutex; the services call Rollback via
// defer even after a successful Commit, so release happens once.
type noopTx struct {
	once   sync.Once
	unlock *sync.Mutex
}

func (t *noopTx) release() {
	t.once.Do(t.unlock.Unlock)
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
