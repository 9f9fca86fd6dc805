package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchsuite/billingd/internal/domain"
	"github.com/mchsuite/billingd/internal/store"
)

// testFlushDelay is long enough that no deferred flush fires during a
// test; durability paths call FlushNow explicitly.
const testFlushDelay = time.Hour

func newTestEngine(t *testing.T) (*Engine, *store.BlobStore) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := store.Open(filepath.Join(dir, "store.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	e, err := Open(filepath.Join(dir, "work"), blobs, testFlushDelay)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, blobs
}

func TestOpenSeedsFirstStart(t *testing.T) {
	e, blobs := newTestEngine(t)

	cats, err := e.Categories()
	require.NoError(t, err)
	assert.Equal(t, SystemCategories, cats)

	items, err := e.Items()
	require.NoError(t, err)
	assert.Len(t, items, len(starterItems))
	assert.NotZero(t, items[0].UpdatedAt)

	buttons, err := e.Buttons()
	require.NoError(t, err)
	assert.Len(t, buttons, len(inpatientButtons)+len(outpatientButtons))
	assert.Equal(t, "ipd-blood", buttons[0].ID)
	assert.Equal(t, domain.TerminalInpatient, buttons[0].TargetTerminal)

	// first seed is flushed synchronously
	blob, err := blobs.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, blob)
}

func TestUpsertAndDeleteItem(t *testing.T) {
	e, _ := newTestEngine(t)

	item := &domain.RegistryItem{ID: 9001, Name: "Ibuprofen", Price: 5, Type: "Tablet", Category: "PHARMACY"}
	require.NoError(t, e.UpsertItem(item))
	assert.NotZero(t, item.UpdatedAt)

	got, err := e.Item(9001)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", got.Name)

	item.Price = 6
	require.NoError(t, e.UpsertItem(item))
	got, err = e.Item(9001)
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.Price)

	require.NoError(t, e.DeleteItem(9001))
	_, err = e.Item(9001)
	assert.Error(t, err)

	// deleting an absent id is not an error
	assert.NoError(t, e.DeleteItem(9001))
}

func TestUpsertItemRequiresName(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.UpsertItem(&domain.RegistryItem{ID: 9001, Name: "   "})
	assert.Error(t, err)
}

func TestReplaceItemsFinalStateEquivalence(t *testing.T) {
	// a sequence of upserts and deletes and a single replace with the
	// same final rows must leave identical queryable state
	rows := []domain.RegistryItem{
		{ID: 1, Name: "A", Price: 1, Category: "OTHER", UpdatedAt: 111},
		{ID: 2, Name: "B", Price: 2, Category: "OTHER", UpdatedAt: 222},
	}

	stepwise, _ := newTestEngine(t)
	require.NoError(t, stepwise.ReplaceItems(nil))
	r0 := rows[0]
	r1 := rows[1]
	extra := domain.RegistryItem{ID: 3, Name: "C", Price: 3, Category: "OTHER", UpdatedAt: 333}
	require.NoError(t, stepwise.UpsertItem(&extra))
	require.NoError(t, stepwise.UpsertItem(&r1))
	require.NoError(t, stepwise.UpsertItem(&r0))
	require.NoError(t, stepwise.DeleteItem(3))

	bulk, _ := newTestEngine(t)
	require.NoError(t, bulk.ReplaceItems(rows))

	a, err := stepwise.Items()
	require.NoError(t, err)
	b, err := bulk.Items()
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestReplaceItemsRollbackOnFailure(t *testing.T) {
	e, _ := newTestEngine(t)

	before, err := e.Items()
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// a duplicated primary key fails the rewrite partway through
	bad := []domain.RegistryItem{
		{ID: 1, Name: "First", Category: "OTHER"},
		{ID: 1, Name: "Duplicate", Category: "OTHER"},
	}
	err = e.ReplaceItems(bad)
	require.Error(t, err)

	after, err := e.Items()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddCategory(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.AddCategory("DENTAL"))
	cats, err := e.Categories()
	require.NoError(t, err)
	assert.Contains(t, cats, "DENTAL")
	// appended, not sorted in
	assert.Equal(t, "DENTAL", cats[len(cats)-1])

	assert.Error(t, e.AddCategory("DENTAL"))
	assert.Error(t, e.AddCategory("  "))
}

func TestDeleteCategoryCascades(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.DeleteCategory("X-RAY"))

	cats, err := e.Categories()
	require.NoError(t, err)
	assert.NotContains(t, cats, "X-RAY")

	items, err := e.Items()
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "X-RAY", item.Category)
	}

	buttons, err := e.Buttons()
	require.NoError(t, err)
	for _, b := range buttons {
		assert.NotEqual(t, "X-RAY", b.MappedCategory)
	}
}

func TestQuery(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Query("SELECT COUNT(*) AS n FROM registry_items")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"n"}, res.Columns)

	res, err = e.Query("UPDATE registry_items SET price = price + 1 WHERE id = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	_, err = e.Query("   ")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	source, _ := newTestEngine(t)
	require.NoError(t, source.AddCategory("DENTAL"))
	blob, err := source.ExportSnapshot()
	require.NoError(t, err)

	target, _ := newTestEngine(t)
	require.NoError(t, target.ImportSnapshot(blob))

	wantItems, err := source.Items()
	require.NoError(t, err)
	gotItems, err := target.Items()
	require.NoError(t, err)
	assert.Equal(t, wantItems, gotItems)

	wantCats, err := source.Categories()
	require.NoError(t, err)
	gotCats, err := target.Categories()
	require.NoError(t, err)
	assert.Equal(t, wantCats, gotCats)

	wantButtons, err := source.Buttons()
	require.NoError(t, err)
	gotButtons, err := target.Buttons()
	require.NoError(t, err)
	assert.Equal(t, wantButtons, gotButtons)
}

func TestImportRejectsInvalidBlob(t *testing.T) {
	e, _ := newTestEngine(t)
	before, err := e.Items()
	require.NoError(t, err)

	err = e.ImportSnapshot([]byte("definitely not a database"))
	require.True(t, errors.Is(err, ErrImportFormat))

	// prior state is untouched
	after, err := e.Items()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportSwapFailureKeepsEngineAlive(t *testing.T) {
	source, _ := newTestEngine(t)
	blob, err := source.ExportSnapshot()
	require.NoError(t, err)

	dir := t.TempDir()
	blobs, err := store.Open(filepath.Join(dir, "store.bolt"))
	require.NoError(t, err)
	defer blobs.Close()
	workdir := filepath.Join(dir, "work")
	e, err := Open(workdir, blobs, testFlushDelay)
	require.NoError(t, err)
	defer e.Close()

	before, err := e.Items()
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// a valid blob passes validation, then the swap itself fails
	// because the live path cannot be replaced
	dbPath := filepath.Join(workdir, "catalog.sqlite")
	require.NoError(t, os.Remove(dbPath))
	require.NoError(t, os.Mkdir(dbPath, 0755))

	err = e.ImportSnapshot(blob)
	require.Error(t, err)

	// the engine still serves its prior state
	after, err := e.Items()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, e.AddCategory("DENTAL"))
	cats, err := e.Categories()
	require.NoError(t, err)
	assert.Contains(t, cats, "DENTAL")
}

func TestAddCategorySurfacesProbeFailure(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Query("DROP TABLE categories")
	require.NoError(t, err)

	// the uniqueness probe fails and must surface, not fall through to
	// the insert
	assert.Error(t, e.AddCategory("DENTAL"))
}

func TestCloseFlushesAndReopenRestores(t *testing.T) {
	dir := t.TempDir()
	blobs, err := store.Open(filepath.Join(dir, "store.bolt"))
	require.NoError(t, err)
	defer blobs.Close()
	workdir := filepath.Join(dir, "work")

	e, err := Open(workdir, blobs, testFlushDelay)
	require.NoError(t, err)
	require.NoError(t, e.AddCategory("DENTAL"))
	require.NoError(t, e.Close())

	reopened, err := Open(workdir, blobs, testFlushDelay)
	require.NoError(t, err)
	defer reopened.Close()

	cats, err := reopened.Categories()
	require.NoError(t, err)
	assert.Contains(t, cats, "DENTAL")

	// restored engines never reseed
	items, err := reopened.Items()
	require.NoError(t, err)
	assert.Len(t, items, len(starterItems))
}
