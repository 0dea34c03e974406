package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/heyhaiden/commercial-draft-app-sub000/go/internal/dbconfig"
)

// catalogNamespace derives stable item ids from names so reseeding updates
// rows instead of duplicating them.
var catalogNamespace = uuid.MustParse("4f3c4d0e-6a51-4a4b-9a57-1f0c2f7de1a2")

// Item mirrors one entry of the catalog YAML
type Item struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Title      string         `yaml:"title"`
	Category   string         `yaml:"category"`
	ImageURL   string         `yaml:"image_url"`
	Attributes map[string]any `yaml:"attributes"`
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// parseCatalog decodes and validates the file, filling in missing ids.
func parseCatalog(data []byte) ([]Item, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}

	seen := make(map[string]bool, len(f.Items))
	for i := range f.Items {
		it := &f.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" || strings.TrimSpace(it.Title) == "" {
			return nil, fmt.Errorf("item %d: name and title are required", i+1)
		}
		key := strings.ToLower(it.Name)
		if seen[key] {
			return nil, fmt.Errorf("item %d: duplicate name %q", i+1, it.Name)
		}
		seen[key] = true

		if it.ID == "" {
			it.ID = uuid.NewSHA1(catalogNamespace, []byte(key)).String()
		} else if _, err := uuid.Parse(it.ID); err != nil {
			return nil, fmt.Errorf("item %d: invalid id %q: %w", i+1, it.ID, err)
		}
	}
	return f.Items, nil
}

func main() {
	path := os.Getenv("CATALOG_PATH")
	if path == "" {
		path = "go/internal/assets/catalog.yaml"
	}

	// 1) Load the catalog
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read YAML: %v\n", err)
		os.Exit(1)
	}
	items, err := parseCatalog(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse catalog: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(items)
		inserted int
		updated  int
		errs     int
	)

	for _, it := range items {
		var attrs []byte
		if len(it.Attributes) > 0 {
			if attrs, err = json.Marshal(it.Attributes); err != nil {
				fmt.Fprintf(os.Stderr, "error encoding attributes for %s: %v\n", it.Name, err)
				errs++
				continue
			}
		}

		var wasInserted bool
		err := pool.QueryRow(ctx, `
            INSERT INTO items (id, name, title, category, image_url, attributes)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (id) DO UPDATE SET
              name = EXCLUDED.name,
              title = EXCLUDED.title,
              category = EXCLUDED.category,
              image_url = EXCLUDED.image_url,
              attributes = EXCLUDED.attributes
            RETURNING (xmax = 0)
        `,
			it.ID, it.Name, it.Title, it.Category, it.ImageURL, attrs,
		).Scan(&wasInserted)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting item %s: %v\n", it.Name, err)
			errs++
			continue
		}
		if wasInserted {
			inserted++
		} else {
			updated++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Catalog seed complete: %d total, %d inserted, %d updated, %d errors\n",
		total, inserted, updated, errs,
	)
}
