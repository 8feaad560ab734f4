package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_WritesJSONWithServiceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "catalog-api"})
	comp := Component("catalog")
	comp.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "catalog-api" || entry["component"] != "catalog" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_StampsDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Output: &buf, Environment: "test", Version: "1.2.3"})
	l := Get()
	Actor(Product(l.Info(), 7, "BK-1"), 3).Msg("product updated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"service":    "catalog-api",
		"env":        "test",
		"version":    "1.2.3",
		"product_id": float64(7),
		"sku":        "BK-1",
		"actor_id":   float64(3),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Fatalf("%s = %v, want %v (entry %v)", k, entry[k], v, entry)
		}
	}
}

func TestProduct_OmitsEmptySKU(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	Product(l.Info(), 9, "").Msg("product deleted")
	if bytes.Contains(buf.Bytes(), []byte("sku")) {
		t.Fatalf("empty sku must be omitted: %s", buf.String())
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output only on the first writer")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
