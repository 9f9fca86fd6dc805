// Package registry owns the catalog schema and lifecycle: items,
// categories and terminal-button mappings inside an embedded sqlite
// engine, restored from and flushed to a blob store.
package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mchsuite/billingd/internal/domain"
	"github.com/mchsuite/billingd/internal/store"
)

var (
	// ErrStoreInit is fatal: the embedded engine could not be
	// constructed and the application must not proceed.
	ErrStoreInit = errors.New("registry: embedded engine could not be constructed")

	// ErrImportFormat means the supplied blob is not a valid catalog
	// database. The current engine state is left untouched.
	ErrImportFormat = errors.New("registry: snapshot is not a valid catalog database")
)

var sqliteMagic = []byte("SQLite format 3\x00")

// Engine is the sole authority over the catalog. All relational
// mutations go through it; every mutation schedules a deferred flush of
// the serialized database to the blob store.
type Engine struct {
	mu      sync.Mutex
	db      *gorm.DB
	blobs   *store.BlobStore
	flusher *Flusher
	workdir string
	dbPath  string
}

// Open restores the last persisted snapshot from the blob store, or
// creates the schema and seeds default data when none exists. The seed
// path force-flushes before returning so a first start is durable.
func Open(workdir string, blobs *store.BlobStore, flushDelay time.Duration) (*Engine, error) {
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return nil, errors.Wrapf(ErrStoreInit, "workdir: %v", err)
	}
	dbPath := filepath.Join(workdir, "catalog.sqlite")

	blob, err := blobs.Load()
	if err != nil {
		return nil, errors.Wrapf(ErrStoreInit, "load snapshot: %v", err)
	}
	restored := blob != nil
	if restored {
		if err := os.WriteFile(dbPath, blob, 0644); err != nil {
			return nil, errors.Wrapf(ErrStoreInit, "restore snapshot: %v", err)
		}
	} else {
		_ = os.Remove(dbPath)
	}

	db, err := openSqlite(dbPath)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreInit, "open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		return nil, errors.Wrapf(ErrStoreInit, "migrate: %v", err)
	}

	e := &Engine{
		db:      db,
		blobs:   blobs,
		workdir: workdir,
		dbPath:  dbPath,
	}
	e.flusher = NewFlusher(flushDelay, e.persist)

	if !restored {
		if err := e.SeedDefaults(); err != nil {
			return nil, err
		}
	}
	zap.L().Info("catalog engine ready",
		zap.Bool("restored", restored),
		zap.String("path", dbPath))
	return e, nil
}

func openSqlite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// SeedDefaults rewrites the catalog with the built-in categories,
// starter price list and terminal button layouts, then flushes
// synchronously: the caller is explicitly waiting on this state.
func (e *Engine) SeedDefaults() error {
	now := time.Now().UnixMilli()

	cats := make([]domain.Category, 0, len(SystemCategories))
	for _, name := range SystemCategories {
		cats = append(cats, domain.Category{Name: name})
	}
	items := make([]domain.RegistryItem, 0, len(starterItems))
	for i, s := range starterItems {
		items = append(items, domain.RegistryItem{
			ID:        int64(i + 1),
			Name:      s.Name,
			Price:     s.Price,
			Type:      s.Type,
			Strength:  s.Strength,
			Category:  s.Category,
			UpdatedAt: now,
		})
	}
	buttons := seedButtons(domain.TerminalInpatient, inpatientButtons)
	buttons = append(buttons, seedButtons(domain.TerminalOutpatient, outpatientButtons)...)

	e.mu.Lock()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range domain.Tables {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&cats).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Create(&buttons).Error
	})
	e.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "seed defaults")
	}
	zap.L().Info("seeded default catalog",
		zap.Int("categories", len(cats)),
		zap.Int("items", len(items)),
		zap.Int("buttons", len(buttons)))
	return e.flusher.FlushNow()
}

// UpsertItem inserts the item or, on id conflict, overwrites every
// field of the existing row. UpdatedAt is stamped when not supplied.
func (e *Engine) UpsertItem(item *domain.RegistryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return errors.New("registry: item name is required")
	}
	if item.UpdatedAt == 0 {
		item.UpdatedAt = time.Now().UnixMilli()
	}
	e.mu.Lock()
	err := e.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(item).Error
	e.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "upsert item")
	}
	e.flusher.Schedule()
	return nil
}

// DeleteItem removes one row by id. Deleting an absent id is not an
// error.
func (e *Engine) DeleteItem(id int64) error {
	e.mu.Lock()
	err := e.db.Delete(&domain.RegistryItem{}, id).Error
	e.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "delete item")
	}
	e.flusher.Schedule()
	return nil
}

// ReplaceItems rewrites the whole registry table in one transaction:
// delete all, insert all. A failure mid-rewrite rolls back and leaves
// the prior rows intact.
func (e *Engine) ReplaceItems(items []domain.RegistryItem) error {
	now := time.Now().UnixMilli()
	for i := range items {
		if items[i].UpdatedAt == 0 {
			items[i].UpdatedAt = now
		}
	}
	e.mu.Lock()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.RegistryItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	e.mu.Unlock()
	if err != nil {
		zap.L().Error("registry rewrite rolled back", zap.Error(err))
		return errors.Wrap(err, "replace items")
	}
	e.flusher.Schedule()
	return nil
}

// ReplaceCategories rewrites the category table in one transaction.
func (e *Engine) ReplaceCategories(names []string) error {
	cats := make([]domain.Category, 0, len(names))
	for _, name := range names {
		cats = append(cats, domain.Category{Name: name})
	}
	e.mu.Lock()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Category{}).Error; err != nil {
			return err
		}
		if len(cats) == 0 {
			return nil
		}
		return tx.Create(&cats).Error
	})
	e.mu.Unlock()
	if err != nil {
		zap.L().Error("category rewrite rolled back", zap.Error(err))
		return errors.Wrap(err, "replace categories")
	}
	e.flusher.Schedule()
	return nil
}

// ReplaceButtons rewrites the terminal button table in one transaction.
func (e *Engine) ReplaceButtons(buttons []domain.TerminalButton) error {
	e.mu.Lock()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.TerminalButton{}).Error; err != nil {
			return err
		}
		if len(buttons) == 0 {
			return nil
		}
		return tx.Create(&buttons).Error
	})
	e.mu.Unlock()
	if err != nil {
		zap.L().Error("button rewrite rolled back", zap.Error(err))
		return errors.Wrap(err, "replace buttons")
	}
	e.flusher.Schedule()
	return nil
}

// AddCategory inserts a category, enforcing name uniqueness before the
// insert.
func (e *Engine) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("registry: category name is required")
	}
	e.mu.Lock()
	var count int64
	if err := e.db.Model(&domain.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		e.mu.Unlock()
		return errors.Wrap(err, "add category")
	}
	if count > 0 {
		e.mu.Unlock()
		return errors.Errorf("registry: category %q already exists", name)
	}
	err := e.db.Create(&domain.Category{Name: name}).Error
	e.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "add category")
	}
	e.flusher.Schedule()
	return nil
}

// DeleteCategory removes the category and cascades into its registry
// items and any terminal buttons mapped to it, all in one transaction.
func (e *Engine) DeleteCategory(name string) error {
	e.mu.Lock()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category = ?", name).Delete(&domain.RegistryItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mapped_category = ?", name).Delete(&domain.TerminalButton{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Category{Name: name}).Error
	})
	e.mu.Unlock()
	if err != nil {
		zap.L().Error("category cascade delete rolled back", zap.String("category", name), zap.Error(err))
		return errors.Wrap(err, "delete category")
	}
	e.flusher.Schedule()
	return nil
}

// QueryResult holds rows from the raw-statement escape hatch.
type QueryResult struct {
	Columns      []string                 `json:"columns"`
	Rows         []map[string]interface{} `json:"rows"`
	RowsAffected int64                    `json:"rows_affected"`
}

// Query executes a raw statement for operational inspection. Read
// statements return ordered rows; anything else is executed and
// schedules a flush. First-class business writes must go through the
// typed operations.
func (e *Engine) Query(sql string, args ...interface{}) (*QueryResult, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, errors.New("registry: empty statement")
	}
	upper := strings.ToUpper(sql)
	isRead := strings.HasPrefix(upper, "SELECT") ||
		strings.HasPrefix(upper, "EXPLAIN") ||
		strings.HasPrefix(upper, "PRAGMA")

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &QueryResult{}
	if !isRead {
		exec := e.db.Exec(sql, args...)
		if exec.Error != nil {
			return nil, errors.Wrap(exec.Error, "exec statement")
		}
		result.RowsAffected = exec.RowsAffected
		e.flusher.Schedule()
		return result, nil
	}

	rows, err := e.db.Raw(sql, args...).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	result.Columns = columns
	result.Rows = make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// Items returns all registry items ordered by id.
func (e *Engine) Items() ([]domain.RegistryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var items []domain.RegistryItem
	if err := e.db.Order("id").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	return items, nil
}

// Item returns one registry item by id.
func (e *Engine) Item(id int64) (*domain.RegistryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var item domain.RegistryItem
	if err := e.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Categories returns the category names in insertion order.
func (e *Engine) Categories() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var names []string
	if err := e.db.Model(&domain.Category{}).Order("rowid").Pluck("name", &names).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return names, nil
}

// Buttons returns all terminal buttons in insertion order.
func (e *Engine) Buttons() ([]domain.TerminalButton, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var buttons []domain.TerminalButton
	if err := e.db.Order("rowid").Find(&buttons).Error; err != nil {
		return nil, errors.Wrap(err, "list buttons")
	}
	return buttons, nil
}

// ExportSnapshot serializes the current database to an opaque blob.
// VACUUM INTO yields a consistent standalone file regardless of any
// in-progress journal.
func (e *Engine) ExportSnapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exportLocked()
}

func (e *Engine) exportLocked() ([]byte, error) {
	tmp := filepath.Join(e.workdir, fmt.Sprintf(".export-%d.sqlite", time.Now().UnixNano()))
	defer os.Remove(tmp)
	if err := e.db.Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return nil, errors.Wrap(err, "export snapshot")
	}
	blob, err := os.ReadFile(tmp)
	if err != nil {
		return nil, errors.Wrap(err, "read exported snapshot")
	}
	return blob, nil
}

// ImportSnapshot replaces the engine state with the supplied blob. The
// blob is validated as a catalog database before the live engine is
// touched, then staged to a temp file and renamed over the live path so
// the swap is atomic. The live handle stays open until the rename has
// succeeded; any failure leaves the engine serving its prior state. A
// successful import flushes synchronously.
func (e *Engine) ImportSnapshot(blob []byte) error {
	e.mu.Lock()
	if err := validateSnapshot(e.workdir, blob); err != nil {
		e.mu.Unlock()
		return err
	}
	tmp := filepath.Join(e.workdir, fmt.Sprintf(".swap-%d.sqlite", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		e.mu.Unlock()
		return errors.Wrap(err, "stage snapshot")
	}
	if err := os.Rename(tmp, e.dbPath); err != nil {
		_ = os.Remove(tmp)
		e.mu.Unlock()
		return errors.Wrap(err, "swap snapshot")
	}
	// the old handle still reads the replaced inode; drop it and attach
	// to the imported file
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	db, err := openSqlite(e.dbPath)
	if err != nil {
		e.mu.Unlock()
		return errors.Wrapf(ErrStoreInit, "reopen after import: %v", err)
	}
	e.db = db
	e.mu.Unlock()

	zap.L().Info("catalog snapshot imported", zap.Int("bytes", len(blob)))
	return e.flusher.FlushNow()
}

func validateSnapshot(workdir string, blob []byte) error {
	if !bytes.HasPrefix(blob, sqliteMagic) {
		return ErrImportFormat
	}
	tmp := filepath.Join(workdir, fmt.Sprintf(".import-%d.sqlite", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return errors.Wrap(err, "stage snapshot")
	}
	defer os.Remove(tmp)

	db, err := openSqlite(tmp)
	if err != nil {
		return ErrImportFormat
	}
	defer func() {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
	}()
	m := db.Migrator()
	for _, table := range domain.Tables {
		if !m.HasTable(table) {
			return ErrImportFormat
		}
	}
	return nil
}

// FlushNow forces an immediate synchronous flush, cancelling any
// pending deferred one.
func (e *Engine) FlushNow() error {
	return e.flusher.FlushNow()
}

func (e *Engine) persist() error {
	blob, err := e.ExportSnapshot()
	if err != nil {
		return err
	}
	if err := e.blobs.Save(blob); err != nil {
		return errors.WithMessage(err, "flush catalog")
	}
	zap.L().Debug("catalog flushed", zap.Int("bytes", len(blob)))
	return nil
}

// Close stops the flusher, performs a final synchronous flush and
// releases the sqlite handle.
func (e *Engine) Close() error {
	e.flusher.Stop()
	err := e.persist()
	e.mu.Lock()
	defer e.mu.Unlock()
	if sqlDB, derr := e.db.DB(); derr == nil {
		_ = sqlDB.Close()
	}
	return err
}
