package database

import (
	"context"
	"path/filepath"
	"testing"

	"wa-bulk-sender/internal/config"
	"wa-bulk-sender/internal/contacts"

	"gorm.io/gorm/logger"
)

func openTestStore(t *testing.T) *ContactStore {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "contacts.db")}, logger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := NewContactStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertKeepsFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := []contacts.Contact{
		{Name: "Alice", Phone: "15551234567", Message: "Hi"},
		{Name: "Bob", Phone: "15557654321", Message: "Yo"},
	}
	if n, err := s.Upsert(ctx, first, []string{"vip"}); err != nil || n != 2 {
		t.Fatalf("Upsert: n=%d err=%v", n, err)
	}

	again := []contacts.Contact{
		{Name: "Carol", Phone: "15550001111", Message: "Hey"},
		{Name: "Alice B.", Phone: "15551234567", Message: "Hello again"},
	}
	if _, err := s.Upsert(ctx, again, []string{"vip, spring"}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	rows, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Phone != "15551234567" || rows[0].Name != "Alice B." || rows[0].Message != "Hello again" {
		t.Fatalf("first row not updated in place: %+v", rows[0])
	}
	if rows[0].Tags != "vip,spring" {
		t.Fatalf("tags = %q", rows[0].Tags)
	}
	if rows[1].Phone != "15557654321" || rows[2].Phone != "15550001111" {
		t.Fatalf("order = %s, %s", rows[1].Phone, rows[2].Phone)
	}
}

func TestUpsertDuplicatePhonesInOneBatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	list := []contacts.Contact{
		{Name: "A", Phone: "15551234567"},
		{Name: "A2", Phone: "15551234567"},
	}
	n, err := s.Upsert(ctx, list, nil)
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	rows, _ := s.List(ctx, "")
	if len(rows) != 1 || rows[0].Name != "A2" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestRecipientsByTag(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.Upsert(ctx, []contacts.Contact{{Name: "Alice", Phone: "15551234567", Message: "Hi ${name}"}}, []string{"spring"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, []contacts.Contact{{Name: "Bob", Phone: "15557654321"}}, []string{"springfield"}); err != nil {
		t.Fatal(err)
	}

	list, rejected, err := s.Recipients(ctx, "spring")
	if err != nil {
		t.Fatalf("Recipients: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Alice" || list[0].Message != "Hi ${name}" || len(rejected) != 0 {
		t.Fatalf("list=%+v rejected=%+v", list, rejected)
	}

	all, _, err := s.Recipients(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("all=%+v err=%v", all, err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "mysql"}, logger.Silent); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCloseReleasesDatabase(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.List(context.Background(), ""); err == nil {
		t.Fatalf("List succeeded on a closed store")
	}
}
