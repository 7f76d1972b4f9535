package database

import (
	"context"
	"fmt"
	"strings"

	"wa-bulk-sender/internal/contacts"
	"wa-bulk-sender/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

// Close releases the underlying connection pool.
func (s *ContactStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert stores contacts keyed by phone. Existing rows keep their ID, so
// first-import order survives re-imports. Returns the number of rows written.
func (s *ContactStore) Upsert(ctx context.Context, list []contacts.Contact, tags []string) (int, error) {
	joined := normalizeTags(tags)

	seen := make(map[string]int, len(list))
	rows := make([]models.Contact, 0, len(list))
	for _, c := range list {
		row := models.Contact{Phone: c.Phone, Name: c.Name, Message: c.Message, Tags: joined}
		if i, ok := seen[c.Phone]; ok {
			rows[i] = row
			continue
		}
		seen[c.Phone] = len(rows)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "message", "tags", "updated_at"}),
	}).CreateInBatches(&rows, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert contacts: %w", err)
	}
	return len(rows), nil
}

// List returns stored contacts in insertion order, optionally only those
// carrying tag.
func (s *ContactStore) List(ctx context.Context, tag string) ([]models.Contact, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	if tag = strings.TrimSpace(tag); tag != "" {
		q = q.Where("(',' || tags || ',') LIKE ?", "%,"+tag+",%")
	}
	var out []models.Contact
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return out, nil
}

// Recipients loads stored contacts as send targets. Rows whose phone no
// longer passes validation are skipped.
func (s *ContactStore) Recipients(ctx context.Context, tag string) ([]contacts.Contact, []contacts.Rejected, error) {
	rows, err := s.List(ctx, tag)
	if err != nil {
		return nil, nil, err
	}
	var (
		list     []contacts.Contact
		rejected []contacts.Rejected
	)
	for _, r := range rows {
		phone, ok := contacts.NormalizePhone(r.Phone)
		if !ok {
			rejected = append(rejected, contacts.Rejected{Line: int(r.ID), Raw: r.Phone, Reason: "invalid phone"})
			continue
		}
		list = append(list, contacts.Contact{Name: r.Name, Phone: phone, Message: r.Message})
	}
	return list, rejected, nil
}

func normalizeTags(tags []string) string {
	var out []string
	for _, t := range tags {
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return strings.Join(out, ",")
}
