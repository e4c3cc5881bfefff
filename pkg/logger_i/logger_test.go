package logger_i

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/akolanti/GoIndex/internal/config"
)

func TestLogger_JSONCarriesComponentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", true)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-1")
	NewLogger("tests").WithTrace(ctx).Error("boom", "id", "doc1")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if line["component"] != "tests" || line["traceId"] != "trace-1" || line["id"] != "doc1" {
		t.Errorf("missing attributes: %v", line)
	}
	src, ok := line["source"].(map[string]any)
	if !ok || !strings.HasSuffix(src["file"].(string), "logger_test.go") {
		t.Errorf("source should point at the caller, got %v", line["source"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", false)

	log := NewLogger("tests")
	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestTraceID_Missing(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Error("expected empty trace id")
	}
}

func TestLogger_CreatedBeforeInit(t *testing.T) {
	early := NewLogger("early").With("k", "v")

	var buf bytes.Buffer
	InitWithWriter(&buf, "info", true)
	early.Info("after init")

	if !strings.Contains(buf.String(), `"component":"early"`) || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("early logger did not follow the installed handler: %s", buf.String())
	}
}
