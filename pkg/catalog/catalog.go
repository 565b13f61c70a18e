// Package catalog holds the books and movies collections and the operations
// the collection manager performs on them. Items of both kinds share one ID
// namespace.
package catalog

import (
	"errors"
	"fmt"

	"collection_manager/pkg/loader"
	"collection_manager/pkg/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrUnavailable = errors.New("item not available")
	ErrUnknownKind = errors.New("unknown collection")
)

// seedBatchSize bounds the rows per INSERT so large collections stay under
// sqlite's bound-variable limit.
const seedBatchSize = 500

type Catalog struct {
	db    *gorm.DB
	log   *zap.Logger
	maxID int
}

// New wraps an opened store. The store is expected to be empty; use Seed to
// fill it.
func New(db *gorm.DB, log *zap.Logger) *Catalog {
	return &Catalog{db: db, log: log, maxID: -1}
}

// Seed inserts the loaded collections and takes over their maximum ID.
func (c *Catalog) Seed(cols *loader.Collections) error {
	for _, batch := range [][]models.Item{cols.Books, cols.Movies} {
		if len(batch) == 0 {
			continue
		}
		if err := c.db.CreateInBatches(batch, seedBatchSize).Error; err != nil {
			return fmt.Errorf("seed %s: %w", batch[0].Kind, err)
		}
	}
	c.maxID = max(c.maxID, cols.MaxID)
	c.log.Info("Collections loaded",
		zap.Int("books", len(cols.Books)),
		zap.Int("movies", len(cols.Movies)),
		zap.Int("max_id", c.maxID))
	return nil
}

// MaxID is the highest ID assigned so far across both collections.
func (c *Catalog) MaxID() int {
	return c.maxID
}

func (c *Catalog) Count(kind models.Kind) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	var n int64
	if err := c.db.Model(&models.Item{}).Where("kind = ?", kind).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns an item from either collection.
func (c *Catalog) Get(id int) (models.Item, error) {
	var item models.Item
	err := c.db.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Locate reports which collection owns id.
func (c *Catalog) Locate(id int) (models.Kind, error) {
	item, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return item.Kind, nil
}

// CheckIn returns one copy. Availability is not capped at Copies.
func (c *Catalog) CheckIn(id int) (models.Item, error) {
	res := c.db.Model(&models.Item{}).
		Where("id = ?", id).
		Update("available", gorm.Expr("available + 1"))
	if res.Error != nil {
		return models.Item{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	item, err := c.Get(id)
	if err != nil {
		return models.Item{}, err
	}
	c.log.Debug("Checked in", zap.Int("id", id), zap.String("kind", string(item.Kind)), zap.Int("available", item.Available))
	return item, nil
}

// CheckOut lends one copy, refusing when none is available.
func (c *Catalog) CheckOut(id int) (models.Item, error) {
	item, err := c.Get(id)
	if err != nil {
		return models.Item{}, err
	}
	if item.Available <= 0 {
		return item, fmt.Errorf("%w: %d", ErrUnavailable, id)
	}

	res := c.db.Model(&models.Item{}).
		Where("id = ? AND available > 0", id).
		Update("available", gorm.Expr("available - 1"))
	if res.Error != nil {
		return models.Item{}, res.Error
	}
	if res.RowsAffected == 0 {
		return item, fmt.Errorf("%w: %d", ErrUnavailable, id)
	}
	item.Available--
	c.log.Debug("Checked out", zap.Int("id", id), zap.String("kind", string(item.Kind)), zap.Int("available", item.Available))
	return item, nil
}

// NextID is the ID the next added item will receive.
func (c *Catalog) NextID() int {
	return c.maxID + 1
}

// Add stores a new item under the next free ID, ignoring any ID already set
// on it, and returns the stored item.
func (c *Catalog) Add(item models.Item) (models.Item, error) {
	if err := checkKind(item.Kind); err != nil {
		return models.Item{}, err
	}
	item.ID = c.NextID()
	if err := c.db.Create(&item).Error; err != nil {
		return models.Item{}, fmt.Errorf("add %s: %w", item.Kind, err)
	}
	c.maxID = item.ID
	c.log.Info("Item added", zap.Int("id", item.ID), zap.String("kind", string(item.Kind)))
	return item, nil
}

// Page returns up to size items of one kind in ID order, starting at the
// zero-based page index.
func (c *Catalog) Page(kind models.Kind, page, size int) ([]models.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 10
	}
	var items []models.Item
	err := c.db.Where("kind = ?", kind).
		Order("id").
		Offset(page * size).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FieldMatches is the result of searching one field.
type FieldMatches struct {
	Field string
	Items []models.Item
}

// Search scans one field of every item of the given kind for a case-sensitive
// substring. Items without the field never match.
func (c *Catalog) Search(kind models.Kind, field, query string) ([]models.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	var items []models.Item
	err := c.db.Where("kind = ?", kind).
		Where("instr(json_extract(fields, ?), ?) > 0", jsonPath(field), query).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("search %s.%s: %w", kind, field, err)
	}
	return items, nil
}

// Query searches every configured field of kind and returns one result list
// per field, in field order. Lists are neither merged nor deduplicated.
func (c *Catalog) Query(kind models.Kind, query string) ([]FieldMatches, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	fields := models.SearchFields[kind]
	results := make([]FieldMatches, 0, len(fields))
	for _, field := range fields {
		items, err := c.Search(kind, field, query)
		if err != nil {
			return nil, err
		}
		results = append(results, FieldMatches{Field: field, Items: items})
	}
	c.log.Debug("Query", zap.String("kind", string(kind)), zap.String("query", query))
	return results, nil
}

func jsonPath(field string) string {
	return `$."` + field + `"`
}

func checkKind(kind models.Kind) error {
	if kind != models.KindBooks && kind != models.KindMovies {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}
