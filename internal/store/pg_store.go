package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations to the database at url.
func Migrate(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = "id::text AS id, name, price, category, subcategory, description, image_url, created_at, updated_at"

type productRow struct {
	ID          string `db:"id"`
	Name        string
	Price       int64
	Category    string
	Subcategory string
	Description string
	ImageURL    string    `db:"image_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toProduct() Product {
	return Product{
		ID:          r.ID,
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func collectOne(rows pgx.Rows) (*Product, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, err
	}
	p := row.toProduct()
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
func (p *PgStore) FindByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storeerrors.ErrProductNotFound
	}
	rows, _ := p.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := collectOne(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %s: %w", storeerrors.ErrFailedToFindProduct, id, err)
	}
	return product, nil
}

func (p *PgStore) Find(ctx context.Context, filter Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Subcategory != "" {
		args = append(args, filter.Subcategory)
		where = append(where, fmt.Sprintf("subcategory = $%d", len(args)))
	}
	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, _ := p.db.Query(ctx, query, args...)
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrFailedToFindProduct, err)
	}
	products := make([]Product, len(list))
	for i, r := range list {
		products[i] = r.toProduct()
	}
	return products, nil
}

func (p *PgStore) Create(ctx context.Context, in Product) (*Product, error) {
	rows, _ := p.db.Query(ctx,
		`INSERT INTO products (name, price, category, subcategory, description, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+productColumns,
		in.Name, in.Price, in.Category, in.Subcategory, in.Description, in.ImageURL)
	product, err := collectOne(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrCreateProduct, err)
	}
	return product, nil
}

func (p *PgStore) Update(ctx context.Context, in Product) (*Product, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return nil, storeerrors.ErrProductNotFound
	}
	rows, _ := p.db.Query(ctx,
		`UPDATE products
		 SET name = $2, price = $3, category = $4, subcategory = $5, description = $6, image_url = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		in.ID, in.Name, in.Price, in.Category, in.Subcategory, in.Description, in.ImageURL)
	product, err := collectOne(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %s: %w", storeerrors.ErrUpdateProduct, in.ID, err)
	}
	return product, nil
}

func (p *PgStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storeerrors.ErrProductNotFound
	}
	tag, err := p.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", storeerrors.ErrDeleteProduct, id, err)
	}
	if tag.RowsAffected() == 0 {
		return storeerrors.ErrProductNotFound
	}
	return nil
}
