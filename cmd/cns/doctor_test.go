package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/consuntivo/internal/config"
)

// --- doctor command tests ---

func TestDoctorCmd_Help(t *testing.T) {
	out, err := runCmd(t, "doctor", "--help")
	if err != nil {
		t.Fatalf("doctor --help failed: %v", err)
	}
	if !strings.Contains(out, "diagnostic checks") {
		t.Errorf("expected help to mention 'diagnostic checks', got: %s", out)
	}
	for _, flag := range []string{"--config", "--offline"} {
		if !strings.Contains(out, flag) {
			t.Errorf("expected %s flag in help, got: %s", flag, out)
		}
	}
}

func TestNewDoctorCmd(t *testing.T) {
	cmd := newDoctorCmd()
	if cmd.Use != "doctor" {
		t.Errorf("Use = %q, want %q", cmd.Use, "doctor")
	}
	cfgFlag := cmd.Flags().Lookup("config")
	if cfgFlag == nil {
		t.Fatal("expected --config flag")
	}
	if cfgFlag.DefValue != config.DefaultPath {
		t.Errorf("--config default = %q, want %q", cfgFlag.DefValue, config.DefaultPath)
	}
	if cfgFlag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want %q", cfgFlag.Shorthand, "c")
	}
}

func TestDoctor_Healthy(t *testing.T) {
	path := refreshedConfig(t)
	out, err := runCmd(t, "doctor", "-c", path)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{
		"[PASS] Config file: " + path,
		"[PASS] Database: ",
		"[PASS] Schema: 2/2 tables migrated",
		"[PASS] Snapshot: #1, 3 projects",
		"returned 3 projects",
		"[WARN] Survey invites: no token_secret",
		"[WARN] Slack: not configured",
		"[WARN] Discord: not configured",
		"0 failed, 3 warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_FreshStoreAndSourceDown(t *testing.T) {
	path := writeConfig(t, "", "")
	out, err := runCmd(t, "doctor", "-c", path)
	if err == nil {
		t.Fatalf("expected failure with the source down:\n%s", out)
	}
	if !strings.Contains(err.Error(), "1 check(s) failed") {
		t.Errorf("err = %v, want 1 failed check", err)
	}
	for _, want := range []string{
		"[WARN] Schema: 0/2 tables migrated (run cns db init)",
		"[WARN] Snapshot: no snapshot table",
		"[FAIL] Source: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_Offline(t *testing.T) {
	path := writeConfig(t, "", "")
	if out, err := runCmd(t, "db", "init", "-c", path); err != nil {
		t.Fatalf("db init: %v\n%s", err, out)
	}
	out, err := runCmd(t, "doctor", "-c", path, "--offline")
	if err != nil {
		t.Fatalf("doctor --offline: %v\n%s", err, out)
	}
	for _, want := range []string{
		"[PASS] Schema: 2/2 tables migrated",
		"[WARN] Snapshot: none stored yet (run cns refresh)",
		"[WARN] Source: skipped (--offline)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consuntivo.yaml")
	if err := os.WriteFile(path, []byte("database: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "doctor", "-c", path)
	if err == nil {
		t.Fatal("expected failure for an unreadable config")
	}
	if !strings.Contains(out, "[FAIL] Config file: ") || !strings.Contains(out, "[FAIL] Database: skipped (no config)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCheckChannel(t *testing.T) {
	tests := []struct {
		ch     config.ChannelConfig
		status string
	}{
		{config.ChannelConfig{BotToken: "xoxb", ChannelID: "C1"}, "PASS"},
		{config.ChannelConfig{}, "WARN"},
		{config.ChannelConfig{ChannelID: "C1"}, "FAIL"},
		{config.ChannelConfig{BotToken: "xoxb"}, "FAIL"},
	}
	for _, tt := range tests {
		if got := checkChannel("Slack", tt.ch); got.status != tt.status {
			t.Errorf("checkChannel(%+v) = %s (%s), want %s", tt.ch, got.status, got.detail, tt.status)
		}
	}
}

func TestCheckInvites(t *testing.T) {
	if got := checkInvites(config.SurveyConfig{}); got.status != "WARN" {
		t.Errorf("open surveys: status = %s, want WARN", got.status)
	}
	if got := checkInvites(config.SurveyConfig{TokenSecret: "s"}); got.status != "PASS" {
		t.Errorf("with secret: status = %s, want PASS", got.status)
	}
}

func TestRootCmd_HasDoctorSubcommand(t *testing.T) {
	out, err := runCmd(t, "--help")
	if err != nil {
		t.Fatalf("root --help failed: %v", err)
	}
	if !strings.Contains(out, "doctor") {
		t.Error("root help should list 'doctor' subcommand")
	}
}
