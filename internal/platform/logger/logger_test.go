package logger

import "testing"

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"db_password", "hunter2",
		"dsn", "postgres://u:p@h/db",
		"db_host", "localhost",
		"dangling",
	})
	if len(got) != 7 {
		t.Fatalf("len: want=7 got=%d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Fatalf("db_password: want=[REDACTED] got=%v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("dsn: want=[REDACTED] got=%v", got[3])
	}
	if got[5] != "localhost" {
		t.Fatalf("db_host: want=localhost got=%v", got[5])
	}
	if got[6] != "dangling" {
		t.Fatalf("dangling key should be kept: got=%v", got[6])
	}
}

func TestSanitizeValueNestedMap(t *testing.T) {
	out := sanitizeValue("config", map[string]interface{}{"root_password": "x", "name": "swapi"})
	m, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	if m["root_password"] != "[REDACTED]" || m["name"] != "swapi" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("mode", mode).Debug("hello")
	}
}
