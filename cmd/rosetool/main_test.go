package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testMesh() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("ZMS0007\x00")
	w := func(v any) { binary.Write(buf, binary.LittleEndian, v) }
	w(uint32(1 << 1)) // position
	w([6]float32{0, 0, 0, 1, 1, 1})
	w(uint16(0))
	w(uint16(3))
	w([9]float32{0, 0, 0, 1, 0, 0, 0, 1, 1})
	w(uint16(1))
	w([3]uint16{0, 1, 2})
	w(uint16(0))
	w(uint16(0))
	return buf.Bytes()
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	origDir, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(origDir) })
	os.Chdir(dir)
	return dir
}

func TestRun_Usage(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Errorf("no command: exit %d, want 1", code)
	}
	if code := run([]string{"help"}, &stdout, &stderr); code != 0 {
		t.Errorf("help: exit %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "verify") {
		t.Errorf("usage does not list commands:\n%s", stdout.String())
	}
	if code := run([]string{"frobnicate"}, &stdout, &stderr); code != 1 {
		t.Errorf("unknown command: exit %d, want 1", code)
	}
}

func TestRun_FlagErrorsGoToStderr(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	// Usage output must not capture later flag errors.
	run([]string{"help"}, &stdout, &stderr)
	stdout.Reset()

	if code := run([]string{"-no-such-flag", "info"}, &stdout, &stderr); code != 2 {
		t.Errorf("bad flag: exit %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "no-such-flag") {
		t.Errorf("flag error not written to stderr: %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("flag error leaked to stdout: %q", stdout.String())
	}
}

func TestRun_Info(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "M_BODY01.ZMS")
	if err := os.WriteFile(path, testMesh(), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"info", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("info: exit %d, stderr %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Version:   7") {
		t.Errorf("unexpected info output:\n%s", stdout.String())
	}
}

func TestRun_Dump(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "m.zms")
	if err := os.WriteFile(path, testMesh(), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"dump", "-n", "1", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("dump: exit %d, stderr %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "vertices:") {
		t.Errorf("expected YAML document:\n%s", stdout.String())
	}

	if code := run([]string{"dump", filepath.Join(dir, "missing.zms")}, &stdout, &stderr); code != 1 {
		t.Errorf("dump of missing file: exit %d, want 1", code)
	}
}

func TestRun_Verify(t *testing.T) {
	dir := setup(t)
	data := filepath.Join(dir, "3DDATA")
	if err := os.MkdirAll(data, 0755); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(data, "good.zms")
	bad := filepath.Join(data, "bad.zms")
	os.WriteFile(good, testMesh(), 0644)
	os.WriteFile(bad, testMesh()[:30], 0644)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"verify", data}, &stdout, &stderr); code != 1 {
		t.Errorf("verify with a bad file: exit %d, want 1", code)
	}
	out := stdout.String()
	if !strings.Contains(out, "FAIL "+bad) || !strings.Contains(out, "ok   "+good) {
		t.Errorf("unexpected verify output:\n%s", out)
	}

	os.Remove(bad)
	stdout.Reset()
	if code := run([]string{"verify", "-q", data}, &stdout, &stderr); code != 0 {
		t.Errorf("verify clean tree: exit %d, want 0", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output with -q, got:\n%s", stdout.String())
	}
}
