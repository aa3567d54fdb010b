package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/xavierca1/lead-capture/internal/entity"
)

const relevanceThreshold = 30

// Match is one scored search hit. Score is a 0-100 partial-ratio.
type Match struct {
	Product entity.Product `json:"product"`
	Score   int            `json:"score"`
}

// Index holds every tenant's catalog in memory. It is built once at startup
// from <dir>/<tenant_id>.json files and read-only afterwards, so concurrent
// requests share it without locking.
type Index struct {
	products map[string][]entity.Product
}

// LoadDir builds the index from a directory of per-tenant JSON files. A
// missing directory is not an error: the service runs with an empty catalog.
func LoadDir(dir string) (*Index, error) {
	ix := &Index{products: make(map[string][]entity.Product)}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.Printf("[catalog] data directory %s does not exist, starting empty", dir)
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		tenantID := strings.TrimSuffix(e.Name(), ".json")
		products, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			// One broken tenant file must not take the service down.
			log.Printf("[catalog] skipping %s: %v", e.Name(), err)
			continue
		}
		ix.products[tenantID] = products
		log.Printf("[catalog] loaded %d products for tenant %s", len(products), tenantID)
	}

	return ix, nil
}

func loadFile(path string) ([]entity.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return products, nil
}

func (ix *Index) Products(tenantID string) []entity.Product {
	return ix.products[tenantID]
}

// Search fuzzy-matches the query against each product's name, description
// and categories independently and keeps the best of the three scores.
// Products below the relevance threshold are dropped; results come back
// sorted by score, best first.
func (ix *Index) Search(tenantID, query string, limit int) []Match {
	products := ix.products[tenantID]
	if len(products) == 0 {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = len(products)
	}

	var matches []Match
	for _, p := range products {
		score := bestScore(query, p.Name, p.Description, p.Categories)
		if score > relevanceThreshold {
			matches = append(matches, Match{Product: p, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func bestScore(query string, fields ...string) int {
	best := 0
	for _, f := range fields {
		if f == "" {
			continue
		}
		if s := fuzzy.PartialRatio(query, strings.ToLower(f)); s > best {
			best = s
		}
	}
	return best
}

func (ix *Index) ProductByID(tenantID string, id int64) (entity.Product, bool) {
	for _, p := range ix.products[tenantID] {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

func (ix *Index) ProductsByCategory(tenantID, category string, limit int) []entity.Product {
	category = strings.ToLower(category)

	var out []entity.Product
	for _, p := range ix.products[tenantID] {
		if strings.Contains(strings.ToLower(p.Categories), category) {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (ix *Index) ProductsByBrand(tenantID, brand string, limit int) []entity.Product {
	brand = strings.ToLower(brand)

	var out []entity.Product
	for _, p := range ix.products[tenantID] {
		if strings.Contains(strings.ToLower(p.Brand), brand) {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
