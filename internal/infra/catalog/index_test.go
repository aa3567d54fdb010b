package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skincareJSON = `[
	{
		"ID": 101,
		"SKU": "CRV-MOIST-473",
		"Name": "CeraVe Moisturizing Cream",
		"Short description": "Daily face and body moisturizer",
		"Description": "Rich moisturizing cream with hyaluronic acid and ceramides for dry skin.",
		"Categories": "Skincare > Moisturizers",
		"Brand": "CeraVe",
		"Regular price": 19.99,
		"Sale price": 0,
		"In stock?": 1
	},
	{
		"ID": 102,
		"SKU": "CRV-CLNS-355",
		"Name": "CeraVe Hydrating Cleanser",
		"Short description": "Gentle non-foaming cleanser",
		"Description": "Hydrating facial cleanser for normal to dry skin.",
		"Categories": "Skincare > Cleansers",
		"Brand": "CeraVe",
		"Regular price": 15.99,
		"Sale price": 12.49,
		"In stock?": 1
	},
	{
		"ID": 103,
		"SKU": "LRP-SUN-50",
		"Name": "Anthelios Sunscreen SPF 50",
		"Short description": "",
		"Description": "Broad spectrum facial sunscreen.",
		"Categories": "Skincare > Sunscreen",
		"Brand": "La Roche-Posay",
		"Regular price": 34.99,
		"Sale price": 0,
		"In stock?": 1
	}
]`

func writeCatalogDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// TestLoadDir - per-tenant files load under the filename tenant id
func TestLoadDir(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{
		"tenant-skincare.json": skincareJSON,
		"tenant-empty.json":    `[]`,
		"notes.txt":            "ignore me",
	})

	ix, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Len(t, ix.Products("tenant-skincare"), 3)
	assert.Empty(t, ix.Products("tenant-empty"))
	assert.Empty(t, ix.Products("notes"))
	assert.Empty(t, ix.Products("unknown-tenant"))
}

// TestLoadDirMissingDirectory - a missing data dir means an empty index, not a failure
func TestLoadDirMissingDirectory(t *testing.T) {
	ix, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, ix.Search("tenant-skincare", "moisturizer", 5))
}

// TestLoadDirSkipsBrokenFile - one bad tenant file must not sink the rest
func TestLoadDirSkipsBrokenFile(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{
		"tenant-skincare.json": skincareJSON,
		"tenant-broken.json":   `{"not": "an array"`,
	})

	ix, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, ix.Products("tenant-skincare"), 3)
	assert.Empty(t, ix.Products("tenant-broken"))
}

// TestSearchRelevance - close matches score above the threshold, noise stays out
func TestSearchRelevance(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	matches := ix.Search("tenant-skincare", "cerave moisturizer", 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, "CeraVe Moisturizing Cream", matches[0].Product.Name)
	assert.Greater(t, matches[0].Score, 30)

	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}
}

// TestSearchNoMatch - an unrelated query returns nothing
func TestSearchNoMatch(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Empty(t, ix.Search("tenant-skincare", "xyzqwv", 5))
	assert.Empty(t, ix.Search("tenant-skincare", "", 5))
	assert.Empty(t, ix.Search("tenant-skincare", "   ", 5))
}

// TestSearchTenantScoped - one tenant's catalog never answers for another
func TestSearchTenantScoped(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Empty(t, ix.Search("tenant-other", "cerave moisturizer", 5))
}

// TestSearchLimit
func TestSearchLimit(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	matches := ix.Search("tenant-skincare", "cerave skincare", 1)
	assert.Len(t, matches, 1)
}

// TestProductByID
func TestProductByID(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	p, ok := ix.ProductByID("tenant-skincare", 102)
	require.True(t, ok)
	assert.Equal(t, "CeraVe Hydrating Cleanser", p.Name)
	assert.Equal(t, 12.49, p.DisplayPrice())

	_, ok = ix.ProductByID("tenant-skincare", 999)
	assert.False(t, ok)
	_, ok = ix.ProductByID("tenant-other", 102)
	assert.False(t, ok)
}

// TestProductsByCategory
func TestProductsByCategory(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	all := ix.ProductsByCategory("tenant-skincare", "skincare", 0)
	assert.Len(t, all, 3)

	sun := ix.ProductsByCategory("tenant-skincare", "sunscreen", 0)
	require.Len(t, sun, 1)
	assert.Equal(t, "Anthelios Sunscreen SPF 50", sun[0].Name)

	limited := ix.ProductsByCategory("tenant-skincare", "skincare", 2)
	assert.Len(t, limited, 2)
}

// TestProductsByBrand
func TestProductsByBrand(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"tenant-skincare.json": skincareJSON})
	ix, err := LoadDir(dir)
	require.NoError(t, err)

	cerave := ix.ProductsByBrand("tenant-skincare", "cerave", 0)
	assert.Len(t, cerave, 2)

	lrp := ix.ProductsByBrand("tenant-skincare", "roche", 0)
	require.Len(t, lrp, 1)
	assert.Equal(t, "Anthelios Sunscreen SPF 50", lrp[0].Name)

	assert.Empty(t, ix.ProductsByBrand("tenant-skincare", "nivea", 0))
	assert.Empty(t, ix.ProductsByBrand("tenant-other", "cerave", 0))
	assert.Len(t, ix.ProductsByBrand("tenant-skincare", "cerave", 1), 1)
}
