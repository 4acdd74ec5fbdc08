package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestDBInit(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := run(t, "db", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "initialized successfully") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Migrated") {
		t.Errorf("expected migration count in output, got: %s", out)
	}
}

func TestDBInit_MissingConfig(t *testing.T) {
	if out, err := run(t, "db", "init", "--config", "/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error, got output: %s", out)
	}
}

func TestDBReset_Aborts(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := run(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"db", "reset", "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("db reset failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Aborted.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDBReset_Yes(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := run(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init failed: %v", err)
	}

	out, err := run(t, "db", "reset", "--config", cfgPath, "--yes")
	if err != nil {
		t.Fatalf("db reset failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "reset successfully") {
		t.Errorf("output = %q", out)
	}
}
