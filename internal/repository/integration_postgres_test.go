package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/referearn/backend/internal/db"
	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/repository"
	"github.com/referearn/backend/internal/services"
)

// These tests run the ledger services against Postgres so the conditional
// SQL statements are exercised under real concurrency.

const racers = 10

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration")
	}
	if _, err := db.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func newStores(pool *pgxpool.Pool) services.Stores {
	return services.Stores{
		Pool:        pool,
		Accounts:    repository.NewAccountRepo(pool),
		Tasks:       repository.NewTaskRepo(pool),
		Settings:    repository.NewSettingsRepo(pool),
		Withdrawals: repository.NewWithdrawalRepo(pool),
		Points:      repository.NewPointsRepo(pool),
	}
}

func uniqueID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func balanceOf(t *testing.T, pool *pgxpool.Pool, id string) int64 {
	t.Helper()
	var b int64
	if err := pool.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE id = $1`, id).Scan(&b); err != nil {
		t.Fatalf("read balance of %s: %v", id, err)
	}
	return b
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func credit(t *testing.T, pool *pgxpool.Pool, id string, amount int64) {
	t.Helper()
	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	if _, err := repository.NewAccountRepo(pool).AddPoints(ctx, tx, id, amount); err != nil {
		t.Fatalf("credit %s: %v", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

func TestPostgres_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	st := newStores(pool)

	settings, err := services.NewSettingsResolver(st.Settings).Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve settings: %v", err)
	}

	id := uniqueID("wd")
	if _, err := services.NewAccountService(st, nil, nil).Register(ctx, id, models.Profile{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	const fits = 3
	credit(t, pool, id, fits*settings.MinWithdraw)

	svc := services.NewWithdrawalService(st, nil, nil)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestWithdraw(ctx, services.WithdrawInput{
				AccountID: id,
				Amount:    settings.MinWithdraw,
				Method:    settings.WithdrawMethods[0],
				Details:   "wallet",
			})
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case !errors.Is(err, services.ErrInsufficientBalance):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != fits {
		t.Errorf("succeeded: got %d, want %d", succeeded, fits)
	}
	if got := balanceOf(t, pool, id); got != 0 {
		t.Errorf("balance: got %d, want 0", got)
	}
	if got := countRows(t, pool, `SELECT count(*) FROM withdrawal_requests WHERE account_id = $1`, id); got != fits {
		t.Errorf("withdrawal rows: got %d, want %d", got, fits)
	}
	if got := countRows(t, pool, `SELECT count(*) FROM points_ledger WHERE account_id = $1 AND entry_type = $2`, id, models.PointsEntryWithdrawal); got != fits {
		t.Errorf("withdrawal ledger rows: got %d, want %d", got, fits)
	}
}

func TestPostgres_DeductPointsRejectsOverdraw(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	st := newStores(pool)

	id := uniqueID("deduct")
	if _, err := services.NewAccountService(st, nil, nil).Register(ctx, id, models.Profile{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	credit(t, pool, id, 5)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	if _, err := repository.NewAccountRepo(pool).DeductPoints(ctx, tx, id, 6); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func TestPostgres_DuplicateTaskCompletionCreditsOnce(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	st := newStores(pool)

	settings, err := services.NewSettingsResolver(st.Settings).Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve settings: %v", err)
	}

	taskID := uniqueID("task")
	if err := st.Tasks.Upsert(ctx, &models.Task{ID: taskID, Name: "Join channel", Link: "https://t.me/x"}); err != nil {
		t.Fatalf("upsert task: %v", err)
	}
	id := uniqueID("tc")
	if _, err := services.NewAccountService(st, nil, nil).Register(ctx, id, models.Profile{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := services.NewTaskService(st, nil, nil)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CompleteTask(ctx, id, taskID)
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case !errors.Is(err, services.ErrAlreadyCompleted):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("succeeded: got %d, want 1", succeeded)
	}
	if got := balanceOf(t, pool, id); got != settings.TaskPoints {
		t.Errorf("balance: got %d, want %d", got, settings.TaskPoints)
	}
	if got := countRows(t, pool, `SELECT count(*) FROM completed_tasks WHERE account_id = $1 AND task_id = $2`, id, taskID); got != 1 {
		t.Errorf("completed_tasks rows: got %d, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func TestPostgres_ConcurrentJoinsCreditReferrerExactly(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	st := newStores(pool)

	settings, err := services.NewSettingsResolver(st.Settings).Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve settings: %v", err)
	}

	accounts := services.NewAccountService(st, nil, nil)
	referrer := uniqueID("ref")
	code, err := accounts.Register(ctx, referrer, models.Profile{})
	if err != nil {
		t.Fatalf("register referrer: %v", err)
	}

	var wg sync.WaitGroup
	joiners := make([]string, racers)
	for i := range joiners {
		joiners[i] = uniqueID("join")
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := accounts.JoinWithReferral(ctx, id, models.Profile{}, code); err != nil {
				t.Errorf("join %s: %v", id, err)
			}
		}(joiners[i])
	}
	wg.Wait()

	if got, want := balanceOf(t, pool, referrer), int64(racers)*settings.ReferBonus; got != want {
		t.Errorf("referrer balance: got %d, want %d", got, want)
	}
	for _, id := range joiners {
		if got := balanceOf(t, pool, id); got != models.JoinBonus {
			t.Errorf("joiner %s balance: got %d, want %d", id, got, models.JoinBonus)
		}
	}
}

func TestPostgres_ConcurrentRegisterSameID(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	accounts := services.NewAccountService(newStores(pool), nil, nil)

	id := uniqueID("dup")
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := accounts.Register(ctx, id, models.Profile{})
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case !errors.Is(err, services.ErrAlreadyRegistered):
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("succeeded: got %d, want 1", succeeded)
	}
	if got := countRows(t, pool, `SELECT count(*) FROM accounts WHERE id = $1`, id); got != 1 {
		t.Errorf("account rows: got %d, want 1", got)
	}
}
