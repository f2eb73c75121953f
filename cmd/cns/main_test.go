package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePayload = `[
  {"codice":"C1","descrizione":"Impianto","responsabile":"Verdi","sottocommesse":[
    {"codice":1,"descrizione":"Posa","scheduledEffort":10,"actualEffort":15,"rapport":[
      {"tecnico":"Rossi","effort":"3,5","data":"06/03/2025","descrizione":"posa cavi"},
      {"tecnico":"Bianchi","effort":"2","data":"01/03/2025","descrizione":"sopralluogo"}
    ]},
    {"codice":2,"descrizione":"Collaudo","scheduledEffort":4,"actualEffort":2,"rapport":[
      {"tecnico":"Rossi","effort":"1","data":"15/01/2025"}
    ]}
  ]},
  {"codice":"C2","descrizione":"Manutenzione","sottocommesse":[]},
  {"codice":"0005","descrizione":"Interna","sottocommesse":[]}
]`

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeConfig writes a config using a sqlite file in a temp dir and
// returns its path.
func writeConfig(t *testing.T, sourceURL, extra string) string {
	t.Helper()
	dir := t.TempDir()
	if sourceURL == "" {
		sourceURL = "http://127.0.0.1:1/api/commesse"
	}
	yaml := fmt.Sprintf("database:\n  path: %s\nsource:\n  url: %s\n  refresh: \"\"\nnotify:\n  digest: \"\"\n%s",
		filepath.Join(dir, "cns.db"), sourceURL, extra)
	path := filepath.Join(dir, "consuntivo.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// refreshedConfig returns a config whose store already holds one snapshot
// of samplePayload.
func refreshedConfig(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, samplePayload)
	}))
	t.Cleanup(srv.Close)
	path := writeConfig(t, srv.URL, "")
	if out, err := runCmd(t, "refresh", "-c", path); err != nil {
		t.Fatalf("refresh: %v\n%s", err, out)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "cns dev") {
		t.Errorf("expected output to contain 'cns dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	for _, want := range []string{"cns 1.0.0", "commit: abc123", "built: 2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	out, err := runCmd(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"version", "db", "doctor", "serve", "refresh", "report", "survey", "digest"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestExecute_ReturnsExitCode(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"nope"})
	if code := execute(cmd); code != 1 {
		t.Errorf("execute = %d, want 1", code)
	}
}
