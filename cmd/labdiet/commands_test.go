package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"labdiet/internal/extract"

	"golang.org/x/crypto/bcrypt"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{"label with spaces", []string{"Fasting Blood Sugar = 250"}, map[string]string{"Fasting Blood Sugar": "250"}, false},
		{"value containing equals", []string{"Thyroxine=a=b"}, map[string]string{"Thyroxine": "a=b"}, false},
		{"later wins", []string{"Thyroxine=1", "Thyroxine=2"}, map[string]string{"Thyroxine": "2"}, false},
		{"missing separator", []string{"Thyroxine"}, nil, true},
		{"empty key", []string{"=5"}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parsePairs(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parsePairs() error = %v, wantErr %v", err, tc.wantErr)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestReadReports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t4.txt")
	if err := os.WriteFile(path, []byte("Thyroxine 2.9"), 0o600); err != nil {
		t.Fatal(err)
	}

	reports, err := readReports([]string{"thyroxine=" + path})
	if err != nil {
		t.Fatalf("readReports: %v", err)
	}
	if reports[extract.Thyroxine] != "Thyroxine 2.9" {
		t.Errorf("unexpected reports %v", reports)
	}

	if _, err := readReports([]string{"urine=" + path}); err == nil {
		t.Error("expected error for unknown report kind")
	}
	if _, err := readReports([]string{"thyroxine=" + filepath.Join(dir, "missing.txt")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHashAdminKeyCmd(t *testing.T) {
	cmd := hashAdminKeyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"s3cret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hash := bytes.TrimSpace(out.Bytes())
	if err := bcrypt.CompareHashAndPassword(hash, []byte("s3cret")); err != nil {
		t.Errorf("printed hash does not verify: %v", err)
	}
}
