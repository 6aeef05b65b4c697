package monitoring

import (
	"fmt"
	"testing"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("phase %q", "dark")
	if len(*lines) != 1 || (*lines)[0] != `phase "dark"` {
		t.Fatalf("custom logger got %q", *lines)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(*lines) != 1 {
		t.Errorf("no-op logger forwarded a line: %q", *lines)
	}
}

func TestLogger_Prefix(t *testing.T) {
	lines := capture(t)

	logf := Logger("analysis")
	logf("%d tasks", 3)
	Logger("report")("wrote %s", "residency.csv")

	want := []string{"[analysis] 3 tasks", "[report] wrote residency.csv"}
	if len(*lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(*lines), len(want), *lines)
	}
	for i := range want {
		if (*lines)[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, (*lines)[i], want[i])
		}
	}
}

func TestLogger_FollowsSetLogger(t *testing.T) {
	logf := Logger("db")
	lines := capture(t)

	logf("opened")
	if len(*lines) != 1 || (*lines)[0] != "[db] opened" {
		t.Errorf("logger bound before SetLogger got %q", *lines)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
