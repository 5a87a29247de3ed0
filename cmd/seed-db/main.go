// Command seed-db loads the membership plans, store products and exercise
// library from a JSON file and creates the first administrator.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/domain/subscription"
	"github.com/xenking/efitness/internal/domain/training"
	"github.com/xenking/efitness/internal/repository"
)

type seedFile struct {
	Plans []struct {
		Name           string          `json:"name"`
		Description    string          `json:"description"`
		DurationMonths int             `json:"durationMonths"`
		Price          decimal.Decimal `json:"price"`
	} `json:"plans"`
	Products []struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Brand       string          `json:"brand"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
	} `json:"products"`
	Exercises []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	} `json:"exercises"`
}

type options struct {
	databaseURL   string
	seedFile      string
	adminEmail    string
	adminPassword string
	bcryptCost    int
}

func main() {
	var opts options

	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.seedFile, "seed-file", "db/seed/seed.json", "path to seed JSON file (.json or .json.gz)")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin@efitness.local", "email of the initial SuperAdmin")
	flag.StringVar(&opts.adminPassword, "admin-password", "", "password of the initial SuperAdmin (or GYM_SEED_ADMIN_PASSWORD env)")
	flag.IntVar(&opts.bcryptCost, "bcrypt-cost", 10, "bcrypt cost for the admin password")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if opts.adminPassword == "" {
		opts.adminPassword = os.Getenv("GYM_SEED_ADMIN_PASSWORD")
	}
	if opts.adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or GYM_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, opts options) error {
	data, err := readSeed(opts.seedFile)
	if err != nil {
		return err
	}

	slog.Info("connecting to database")

	pool, err := repository.Connect(ctx, opts.databaseURL, 5, time.Second)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedPlans(gctx, pool, data) })
	g.Go(func() error { return seedProducts(gctx, pool, data) })
	g.Go(func() error { return seedExercises(gctx, pool, data) })
	g.Go(func() error { return seedAdmin(gctx, pool, opts) })
	return g.Wait()
}

func readSeed(path string) (*seedFile, error) {
	slog.Info("reading seed file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	var data seedFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "parse seed JSON")
	}
	return &data, nil
}

// Rows are matched by name so reruns only insert what is missing.

func seedPlans(ctx context.Context, pool *pgxpool.Pool, data *seedFile) error {
	repo := repository.NewSubscriptionRepository(pool)
	existing, err := repo.ListPlans(ctx)
	if err != nil {
		return errors.Wrap(err, "list plans")
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.PlanName] = true
	}

	for _, p := range data.Plans {
		if have[p.Name] {
			continue
		}
		plan := &subscription.Plan{
			PlanName:       p.Name,
			Description:    p.Description,
			DurationMonths: p.DurationMonths,
			Price:          p.Price,
		}
		if plan.DurationMonths <= 0 || !plan.Price.IsPositive() {
			return errors.Errorf("plan %q: duration and price must be positive", p.Name)
		}
		id, err := repo.CreatePlan(ctx, plan)
		if err != nil {
			return errors.Wrapf(err, "create plan %q", p.Name)
		}
		slog.Info("created plan", slog.Int64("id", id), slog.String("name", p.Name))
	}
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, data *seedFile) error {
	repo := repository.NewProductRepository(pool)
	existing, err := repo.List(ctx, product.Filter{})
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}

	for _, p := range data.Products {
		if have[p.Name] {
			continue
		}
		id, err := repo.Create(ctx, &product.Product{
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Brand:       p.Brand,
			Price:       p.Price,
			Stock:       p.Stock,
			IsActive:    true,
		})
		if err != nil {
			return errors.Wrapf(err, "create product %q", p.Name)
		}
		slog.Info("created product", slog.Int64("id", id), slog.String("name", p.Name))
	}
	return nil
}

func seedExercises(ctx context.Context, pool *pgxpool.Pool, data *seedFile) error {
	repo := repository.NewTrainingRepository(pool)
	existing, err := repo.Exercises(ctx)
	if err != nil {
		return errors.Wrap(err, "list exercises")
	}
	have := make(map[string]bool, len(existing))
	for _, e := range existing {
		have[e.ExerciseName] = true
	}

	for _, e := range data.Exercises {
		if have[e.Name] {
			continue
		}
		id, err := repo.CreateExercise(ctx, &training.Exercise{
			ExerciseName: e.Name,
			Description:  e.Description,
			Category:     e.Category,
		})
		if err != nil {
			return errors.Wrapf(err, "create exercise %q", e.Name)
		}
		slog.Info("created exercise", slog.Int64("id", id), slog.String("name", e.Name))
	}
	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, opts options) error {
	repo := repository.NewAccountRepository(pool)
	_, err := repo.GetByEmail(ctx, account.RoleAdmin, opts.adminEmail)
	switch {
	case err == nil:
		slog.Info("admin already exists", slog.String("email", opts.adminEmail))
		return nil
	case !errors.Is(err, account.ErrNotFound):
		return errors.Wrap(err, "look up admin")
	}

	hash, err := account.BcryptHasher{Cost: opts.bcryptCost}.Hash(opts.adminPassword)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	id, err := repo.Create(ctx, &account.Account{
		Role:         account.RoleAdmin,
		FullName:     "Administrator",
		Email:        opts.adminEmail,
		PasswordHash: hash,
		AdminLevel:   account.LevelSuperAdmin,
	})
	if err != nil {
		return errors.Wrap(err, "create admin")
	}
	slog.Info("created admin", slog.Int64("id", id), slog.String("email", opts.adminEmail))
	return nil
}
