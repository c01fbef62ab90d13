package recipe

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//go:embed seed.sql
var seedSQL string

// ErrNotFound is returned by delete operations when the row does not exist.
var ErrNotFound = errors.New("not found")

const recipeColumns = `id, title_he, title_en, description_he, description_en, ingredients_he, ingredients_en,
	instructions_he, instructions_en, image_url, tried, rating, prep_time, cook_time, servings, course, cuisine,
	nutrition, equipment, created_at`

// PostgresStore implements the recipe and label store on PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// Options configures NewPostgresStore.
type Options struct {
	MaxOpenConns int
	Migrate      bool
	Seed         bool
}

// NewPostgresStore connects to the database, applies migrations and seeds an
// empty catalogue when asked to.
func NewPostgresStore(ctx context.Context, dataSourceName string, opts Options) (*PostgresStore, error) {
	if opts.Migrate {
		if err := RunMigrations(dataSourceName); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := &PostgresStore{db: db}
	if opts.Seed {
		if err := s.Seed(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RunMigrations applies the embedded migrations using golang-migrate.
func RunMigrations(databaseURL string) error {
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Seed inserts the default labels and sample recipes when no labels exist.
func (s *PostgresStore) Seed(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM labels"); err != nil {
		return fmt.Errorf("failed to count labels: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, seedSQL); err != nil {
			return fmt.Errorf("failed to seed catalogue: %w", err)
		}
		return nil
	})
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLabels returns every label ordered by id.
func (s *PostgresStore) ListLabels(ctx context.Context) ([]Label, error) {
	labels := []Label{}
	if err := s.db.SelectContext(ctx, &labels, "SELECT id, name_he, name_en, emoji FROM labels ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// CreateLabel inserts l and sets its ID.
func (s *PostgresStore) CreateLabel(ctx context.Context, l *Label) error {
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO labels (name_he, name_en, emoji) VALUES ($1, $2, $3) RETURNING id",
		l.NameHe, l.NameEn, l.Emoji,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// DeleteLabel removes a label and its recipe associations.
func (s *PostgresStore) DeleteLabel(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM labels WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return expectOneRow(res)
}

// recipeRow mirrors the recipes table; JSON columns are scanned as bytes.
type recipeRow struct {
	Recipe
	NutritionJSON []byte `db:"nutrition"`
	EquipmentJSON []byte `db:"equipment"`
}

func (row *recipeRow) toRecipe() (*Recipe, error) {
	r := row.Recipe
	if len(row.NutritionJSON) > 0 {
		if err := json.Unmarshal(row.NutritionJSON, &r.Nutrition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nutrition: %w", err)
		}
	}
	if len(row.EquipmentJSON) > 0 {
		if err := json.Unmarshal(row.EquipmentJSON, &r.Equipment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal equipment: %w", err)
		}
	}
	r.Labels = []Label{}
	r.normalize()
	return &r, nil
}

// ListRecipes returns recipes matching f, newest first, with labels attached.
func (s *PostgresStore) ListRecipes(ctx context.Context, f Filter) ([]*Recipe, error) {
	var args []interface{}
	query := "SELECT " + recipeColumns + " FROM recipes WHERE 1=1"

	paramCount := 1
	if ids := uniqueIDs(f.LabelIDs); len(ids) > 0 {
		query += fmt.Sprintf(` AND id IN (
			SELECT recipe_id FROM recipe_labels WHERE label_id = ANY($%d)
			GROUP BY recipe_id HAVING COUNT(DISTINCT label_id) = $%d)`, paramCount, paramCount+1)
		args = append(args, pq.Array(ids), len(ids))
		paramCount += 2
	}
	if f.Tried != nil {
		query += fmt.Sprintf(" AND tried = $%d", paramCount)
		args = append(args, *f.Tried)
		paramCount++
	}
	query += " ORDER BY created_at DESC, id DESC"

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*Recipe, 0, len(rows))
	for i := range rows {
		r, err := rows[i].toRecipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	if err := s.attachLabels(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe returns the recipe with id, or nil when it does not exist.
func (s *PostgresStore) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var row recipeRow
	err := s.db.GetContext(ctx, &row, "SELECT "+recipeColumns+" FROM recipes WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	r, err := row.toRecipe()
	if err != nil {
		return nil, err
	}
	if err := s.attachLabels(ctx, []*Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) attachLabels(ctx context.Context, recipes []*Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	byID := make(map[int64]*Recipe, len(recipes))
	ids := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	var links []struct {
		RecipeID int64 `db:"recipe_id"`
		Label
	}
	err := s.db.SelectContext(ctx, &links, `
		SELECT rl.recipe_id, l.id, l.name_he, l.name_en, l.emoji
		FROM recipe_labels rl JOIN labels l ON l.id = rl.label_id
		WHERE rl.recipe_id = ANY($1)
		ORDER BY l.id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load recipe labels: %w", err)
	}

	for _, link := range links {
		if r, ok := byID[link.RecipeID]; ok {
			r.Labels = append(r.Labels, link.Label)
		}
	}
	return nil
}

// CreateRecipe inserts r with its label associations and sets ID and
// CreatedAt.
func (s *PostgresStore) CreateRecipe(ctx context.Context, r *Recipe) error {
	r.normalize()
	nutritionJSON, equipmentJSON, err := marshalDetails(r)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO recipes (title_he, title_en, description_he, description_en, ingredients_he, ingredients_en,
				instructions_he, instructions_en, image_url, tried, rating, prep_time, cook_time, servings, course,
				cuisine, nutrition, equipment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			RETURNING id, created_at`,
			r.TitleHe, r.TitleEn, r.DescriptionHe, r.DescriptionEn, r.IngredientsHe, r.IngredientsEn,
			r.InstructionsHe, r.InstructionsEn, r.ImageURL, r.Tried, r.Rating, r.PrepTime, r.CookTime, r.Servings,
			r.Course, r.Cuisine, nutritionJSON, equipmentJSON,
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceLabels(ctx, tx, r.ID, r.LabelIDs)
	})
}

// UpdateRecipe overwrites the stored fields of r. Label associations are
// replaced only when r.LabelIDs is non-nil.
func (s *PostgresStore) UpdateRecipe(ctx context.Context, r *Recipe) error {
	r.normalize()
	nutritionJSON, equipmentJSON, err := marshalDetails(r)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE recipes SET title_he = $2, title_en = $3, description_he = $4, description_en = $5,
				ingredients_he = $6, ingredients_en = $7, instructions_he = $8, instructions_en = $9, image_url = $10,
				tried = $11, rating = $12, prep_time = $13, cook_time = $14, servings = $15, course = $16,
				cuisine = $17, nutrition = $18, equipment = $19
			WHERE id = $1`,
			r.ID, r.TitleHe, r.TitleEn, r.DescriptionHe, r.DescriptionEn, r.IngredientsHe, r.IngredientsEn,
			r.InstructionsHe, r.InstructionsEn, r.ImageURL, r.Tried, r.Rating, r.PrepTime, r.CookTime, r.Servings,
			r.Course, r.Cuisine, nutritionJSON, equipmentJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}
		if r.LabelIDs == nil {
			return nil
		}
		return replaceLabels(ctx, tx, r.ID, r.LabelIDs)
	})
}

// DeleteRecipe removes a recipe; label links cascade.
func (s *PostgresStore) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return expectOneRow(res)
}

func replaceLabels(ctx context.Context, tx *sqlx.Tx, recipeID int64, labelIDs []int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_labels WHERE recipe_id = $1", recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe labels: %w", err)
	}
	ids := uniqueIDs(labelIDs)
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO recipe_labels (recipe_id, label_id)
		SELECT $1, id FROM labels WHERE id = ANY($2)
		ON CONFLICT DO NOTHING`, recipeID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to save recipe labels: %w", err)
	}
	return nil
}

// marshalDetails encodes the JSONB columns as text; lib/pq would send a
// []byte parameter as bytea.
func marshalDetails(r *Recipe) (nutrition, equipment string, err error) {
	n, err := json.Marshal(r.Nutrition)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal nutrition: %w", err)
	}
	e, err := json.Marshal(r.Equipment)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal equipment: %w", err)
	}
	return string(n), string(e), nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParseIDs parses a comma-separated id list such as "1,2,3", ignoring
// blanks and invalid entries.
func ParseIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return uniqueIDs(ids)
}
