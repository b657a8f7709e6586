package service

import (
	"context"
	"testing"
	"time"

	"casino-platform/internal/core/domain"
	"casino-platform/internal/core/ports/mocks"
	"casino-platform/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testMinBet = int64(100)
	testMaxBet = int64(1_000_000)
)

type gameTestDeps struct {
	svc        *GameServiceImpl
	gameRepo   *mocks.MockGameRepository
	userRepo   *mocks.MockUserRepository
	ledger     *mocks.MockWalletLedger
	transactor *mocks.MockDBTransactor
	locker     *mocks.MockGameLocker
	ctrl       *gomock.Controller
}

func setupGameService(t *testing.T, rng domain.RandSource) *gameTestDeps {
	ctrl := gomock.NewController(t)
	d := &gameTestDeps{
		gameRepo:   mocks.NewMockGameRepository(ctrl),
		userRepo:   mocks.NewMockUserRepository(ctrl),
		ledger:     mocks.NewMockWalletLedger(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		locker:     mocks.NewMockGameLocker(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewGameService(
		d.gameRepo, d.userRepo, d.ledger, d.transactor, d.locker,
		rng, testMinBet, testMaxBet, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

// scriptedRand drives ShuffleDeck deterministically: every Fisher-Yates
// step swaps in place except the indices listed in swaps.
type scriptedRand struct{ swaps map[int]int }

func (s scriptedRand) Next(low, highExclusive int) int {
	i := highExclusive - 1
	if j, ok := s.swaps[i]; ok {
		return j
	}
	return i
}

func noRelease() {}

func cardOf(suit domain.Suit, rank domain.Rank) domain.Card {
	return domain.Card{Suit: suit, Rank: rank}
}

func handOf(stake int64, cards ...domain.Card) *domain.Hand {
	return domain.NewHand(stake, cards...)
}

func testGame(userID uuid.UUID, bet int64, player, dealer *domain.Hand, deck []domain.Card) *domain.Game {
	return &domain.Game{
		ID:        uuid.New(),
		UserID:    userID,
		Bet:       bet,
		Status:    domain.GameStatusActive,
		Hands:     []*domain.Hand{player},
		Dealer:    dealer,
		Deck:      deck,
		CreatedAt: time.Now().UTC(),
	}
}

// ==================== InitializeGame Tests ====================

func TestGameService_InitializeGame_Success(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.gameRepo.EXPECT().GetActiveByUserID(ctx, userID).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(100)).Return(int64(900), nil)
	d.gameRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.InitializeGame(ctx, userID, 100)
	require.NoError(t, err)
	require.NotNil(t, result)

	game := result.Game
	assert.Equal(t, domain.GameStatusActive, game.Status)
	assert.Equal(t, userID, game.UserID)
	assert.Equal(t, int64(100), game.Bet)
	require.Len(t, game.Hands, 1)
	assert.Equal(t, 2, game.Hands[0].Size())
	assert.Equal(t, 2, game.Dealer.Size())
	assert.Len(t, game.Deck, 48)
	assert.Equal(t, int64(900), result.Balance)
}

func TestGameService_InitializeGame_NaturalSettlesImmediately(t *testing.T) {
	// Place A♠ at deck position 0 and 10♥ at position 2 so the opening
	// deal gives the player a natural.
	rng := scriptedRand{swaps: map[int]int{21: 2, 12: 0}}
	d := setupGameService(t, rng)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.gameRepo.EXPECT().GetActiveByUserID(ctx, userID).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(100)).Return(int64(900), nil)
	// Natural pays 3:2 on top of the returned stake.
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(250)).Return(int64(1150), nil)
	d.gameRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.InitializeGame(ctx, userID, 100)
	require.NoError(t, err)

	game := result.Game
	assert.True(t, game.Hands[0].IsBlackjack())
	assert.Equal(t, domain.GameStatusBlackjack, game.Status)
	assert.Equal(t, domain.OutcomeBlackjack, game.Hands[0].Outcome)
	require.NotNil(t, game.ResolvedAt)
	assert.Equal(t, int64(1150), result.Balance)
}

func TestGameService_InitializeGame_InvalidBet(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	result, err := d.svc.InitializeGame(context.Background(), uuid.New(), 0)
	assert.Nil(t, result)
	assertAppError(t, err, "WAL_002")
}

func TestGameService_InitializeGame_BetOutsideLimits(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	result, err := d.svc.InitializeGame(context.Background(), uuid.New(), testMinBet-1)
	assert.Nil(t, result)
	assertAppError(t, err, "VAL_001")

	result, err = d.svc.InitializeGame(context.Background(), uuid.New(), testMaxBet+1)
	assert.Nil(t, result)
	assertAppError(t, err, "VAL_001")
}

func TestGameService_InitializeGame_ActiveGameExists(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	existing := testGame(userID, 100, handOf(100), handOf(0), nil)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.gameRepo.EXPECT().GetActiveByUserID(ctx, userID).Return(existing, nil)

	result, err := d.svc.InitializeGame(ctx, userID, 100)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_002")
}

func TestGameService_InitializeGame_InsufficientFunds(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.gameRepo.EXPECT().GetActiveByUserID(ctx, userID).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(500)).Return(int64(0), apperror.ErrInsufficientFunds())

	result, err := d.svc.InitializeGame(ctx, userID, 500)
	assert.Nil(t, result)
	assertAppError(t, err, "WAL_001")
}

func TestGameService_InitializeGame_LockTimeout(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.locker.EXPECT().Acquire(ctx, userID).Return(nil, apperror.ErrLockTimeout(context.DeadlineExceeded))

	result, err := d.svc.InitializeGame(ctx, userID, 100)
	assert.Nil(t, result)
	assertAppError(t, err, "SYS_003")
}

// ==================== Hit Tests ====================

func TestGameService_Hit_DealsCard(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Hearts, domain.Two), cardOf(domain.Hearts, domain.Three)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Hearts, domain.Ten)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(0)).Return(int64(900), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.Hit(ctx, game.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusActive, result.Game.Status)
	assert.Equal(t, 3, result.Game.Hands[0].Size())
	assert.Equal(t, 15, result.Game.Hands[0].Value())
	assert.Equal(t, int64(900), result.Balance)
}

func TestGameService_Hit_BustSettlesGame(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Hearts, domain.King), cardOf(domain.Hearts, domain.Nine)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Hearts, domain.Five)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	// Bust pays nothing; the zero credit is the locked balance read.
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(0)).Return(int64(900), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.Hit(ctx, game.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusPlayerBust, result.Game.Status)
	assert.Equal(t, domain.OutcomeBust, result.Game.Hands[0].Outcome)
	require.NotNil(t, result.Game.ResolvedAt)
	assert.Equal(t, 2, result.Game.Dealer.Size(), "dealer does not draw against a bust")
	assert.Equal(t, int64(900), result.Balance)
}

func TestGameService_Hit_OnTwentyOneRejected(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Hearts, domain.Ace), cardOf(domain.Hearts, domain.King)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.Hit(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_003")
}

func TestGameService_Hit_GameOver(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100, handOf(100), handOf(0), nil)
	game.Status = domain.GameStatusPlayerWin

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.Hit(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_004")
}

func TestGameService_Hit_WrongUser(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()
	tx := &mockTx{}

	game := testGame(owner, 100, handOf(100), handOf(0), nil)

	d.locker.EXPECT().Acquire(ctx, intruder).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.Hit(ctx, game.ID, intruder)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_001")
}

func TestGameService_Hit_ConcurrencyConflict(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Hearts, domain.Two), cardOf(domain.Hearts, domain.Three)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Hearts, domain.Ten)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(0)).Return(int64(900), nil)
	// The ACTIVE guard lost: another request settled the row first.
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(false, nil)

	result, err := d.svc.Hit(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_005")
}

// ==================== Stand Tests ====================

func TestGameService_Stand_SettlesAgainstDealer(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Hearts, domain.King), cardOf(domain.Hearts, domain.Nine)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	// 19 beats 17: win pays double the stake.
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(200)).Return(int64(1100), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.Stand(ctx, game.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusPlayerWin, result.Game.Status)
	assert.Equal(t, domain.OutcomeWin, result.Game.Hands[0].Outcome)
	assert.Equal(t, int64(1100), result.Balance)
}

func TestGameService_Stand_AdvancesToNextSplitHand(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	first := handOf(100, cardOf(domain.Spades, domain.Eight), cardOf(domain.Hearts, domain.Five))
	first.FromSplit = true
	second := handOf(100, cardOf(domain.Hearts, domain.Eight), cardOf(domain.Hearts, domain.Six))
	second.FromSplit = true

	game := testGame(userID, 100, first,
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)
	game.Hands = append(game.Hands, second)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(0)).Return(int64(800), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.Stand(ctx, game.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusActive, result.Game.Status)
	assert.Equal(t, 1, result.Game.CurrentHand)
	assert.Same(t, second, result.Game.ActiveHand())
}

// ==================== DoubleDown Tests ====================

func TestGameService_DoubleDown_Success(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Spades, domain.Five), cardOf(domain.Spades, domain.Six)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Hearts, domain.Ten)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	// Second stake reservation for the doubled hand.
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(100)).Return(int64(800), nil)
	// 21 beats 17 at the doubled stake.
	d.ledger.EXPECT().Credit(ctx, tx, userID, int64(400)).Return(int64(1200), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.DoubleDown(ctx, game.ID, userID)
	require.NoError(t, err)

	handAfter := result.Game.Hands[0]
	assert.True(t, handAfter.Doubled)
	assert.Equal(t, int64(200), handAfter.Stake)
	assert.Equal(t, 3, handAfter.Size())
	assert.Equal(t, domain.GameStatusPlayerWin, result.Game.Status)
	assert.Equal(t, int64(1200), result.Balance)
}

func TestGameService_DoubleDown_InsufficientFunds(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Spades, domain.Five), cardOf(domain.Spades, domain.Six)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Hearts, domain.Ten)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(100)).Return(int64(0), apperror.ErrInsufficientFunds())

	result, err := d.svc.DoubleDown(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "WAL_001")
}

func TestGameService_DoubleDown_ThreeCardHandRejected(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Spades, domain.Five), cardOf(domain.Spades, domain.Six), cardOf(domain.Spades, domain.Two)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.DoubleDown(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_003")
}

// ==================== Split Tests ====================

func TestGameService_Split_Success(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Spades, domain.Eight), cardOf(domain.Hearts, domain.Eight)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		[]domain.Card{cardOf(domain.Diamonds, domain.Five), cardOf(domain.Diamonds, domain.Six)},
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)
	// The second hand carries its own full stake.
	d.ledger.EXPECT().Debit(ctx, tx, userID, int64(100)).Return(int64(800), nil)
	d.gameRepo.EXPECT().UpdateActive(ctx, tx, game).Return(true, nil)

	result, err := d.svc.Split(ctx, game.ID, userID)
	require.NoError(t, err)

	g := result.Game
	require.Len(t, g.Hands, 2)
	assert.Equal(t, domain.GameStatusActive, g.Status)
	assert.Equal(t, 0, g.CurrentHand)
	for _, h := range g.Hands {
		assert.Equal(t, 2, h.Size())
		assert.Equal(t, int64(100), h.Stake)
		assert.True(t, h.FromSplit)
	}
	assert.Equal(t, cardOf(domain.Spades, domain.Eight), g.Hands[0].Cards[0])
	assert.Equal(t, cardOf(domain.Hearts, domain.Eight), g.Hands[1].Cards[0])
	assert.Empty(t, g.Deck)
	assert.Equal(t, int64(800), result.Balance)
}

func TestGameService_Split_UnequalRanksRejected(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	game := testGame(userID, 100,
		handOf(100, cardOf(domain.Spades, domain.King), cardOf(domain.Hearts, domain.Queen)),
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.Split(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_003")
}

func TestGameService_Split_ResplitRejected(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	child := handOf(100, cardOf(domain.Spades, domain.Eight), cardOf(domain.Hearts, domain.Eight))
	child.FromSplit = true
	game := testGame(userID, 100, child,
		handOf(0, cardOf(domain.Diamonds, domain.King), cardOf(domain.Diamonds, domain.Seven)),
		nil,
	)

	d.locker.EXPECT().Acquire(ctx, userID).Return(noRelease, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.gameRepo.EXPECT().GetByIDForUpdate(ctx, tx, game.ID).Return(game, nil)

	result, err := d.svc.Split(ctx, game.ID, userID)
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_003")
}

// ==================== GetGame Tests ====================

func TestGameService_GetGame_Success(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	game := testGame(userID, 100, handOf(100), handOf(0), nil)

	d.gameRepo.EXPECT().GetByID(ctx, game.ID).Return(game, nil)
	d.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, Balance: 900}, nil)

	result, err := d.svc.GetGame(ctx, game.ID, userID)
	require.NoError(t, err)
	assert.Same(t, game, result.Game)
	assert.Equal(t, int64(900), result.Balance)
}

func TestGameService_GetGame_NotFound(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	gameID := uuid.New()

	d.gameRepo.EXPECT().GetByID(ctx, gameID).Return(nil, nil)

	result, err := d.svc.GetGame(ctx, gameID, uuid.New())
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_001")
}

func TestGameService_GetGame_WrongUserLooksLikeNotFound(t *testing.T) {
	d := setupGameService(t, scriptedRand{})
	defer d.ctrl.Finish()

	ctx := context.Background()
	game := testGame(uuid.New(), 100, handOf(100), handOf(0), nil)

	d.gameRepo.EXPECT().GetByID(ctx, game.ID).Return(game, nil)

	result, err := d.svc.GetGame(ctx, game.ID, uuid.New())
	assert.Nil(t, result)
	assertAppError(t, err, "GAME_001")
}

// ==================== Helper ====================

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}
