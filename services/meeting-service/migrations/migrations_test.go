package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) == 0 || names[0] != "0001_init.sql" {
		t.Fatalf("unexpected migrations: %v", names)
	}
	body, err := files.ReadFile(names[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, table := range []string{"users", "meetings", "meeting_participants", "refresh_tokens", "outbox_events"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Fatalf("missing table %s", table)
		}
	}
}
