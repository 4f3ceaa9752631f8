package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"x509lint/internal/config"
)

func newLintTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "lint"}
	registerLintFlags(cmd.Flags())
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	return cmd
}

func TestLoadLintConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}{
		{
			name: "Defaults",
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Input.Kind != config.KindAuto || cfg.Lints.FailOn != "warn" || cfg.Runtime.Concurrency != 4 {
					t.Errorf("unexpected defaults: %+v", cfg)
				}
			},
		},
		{
			name: "Flags Override Env",
			args: []string{"--fail-on", "error", "--lint-workers", "3"},
			env:  map[string]string{"X509LINT_LINTS__FAIL_ON": "warn", "X509LINT_RUNTIME__CONCURRENCY": "2"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Lints.FailOn != "error" {
					t.Errorf("expected fail-on error, got %q", cfg.Lints.FailOn)
				}
				if cfg.Runtime.Concurrency != 2 || cfg.Runtime.LintWorkers != 3 {
					t.Errorf("unexpected runtime: %+v", cfg.Runtime)
				}
			},
		},
		{
			name: "Cert Shorthand",
			args: []string{"--cert"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Input.Kind != config.KindCert {
					t.Errorf("expected kind cert, got %q", cfg.Input.Kind)
				}
			},
		},
		{
			name: "CRL Shorthand Agrees With Kind",
			args: []string{"--crl", "--kind", "crl"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Input.Kind != config.KindCRL {
					t.Errorf("expected kind crl, got %q", cfg.Input.Kind)
				}
			},
		},
		{
			name:    "Cert And CRL",
			args:    []string{"--cert", "--crl"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "Shorthand Conflicts With Kind",
			args:    []string{"--cert", "--kind", "crl"},
			wantErr: "conflicts with --kind",
		},
		{
			name:    "Invalid Fail-On",
			args:    []string{"--fail-on", "info"},
			wantErr: "--fail-on",
		},
		{
			name:    "ZLint Config Without ZLint",
			args:    []string{"--zlint-config", "zlint.toml"},
			wantErr: "requires --zlint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cmd := newLintTestCmd(t, tt.args...)
			cfg, err := loadLintConfig(cmd, []string{"a.pem", "b.pem"})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadLintConfig failed: %v", err)
			}
			if len(cfg.Input.Files) != 2 {
				t.Errorf("expected positional files, got %v", cfg.Input.Files)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadLintConfig_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yamlData := "input:\n  kind: crl\noutput:\n  no_color: true\n"
	if err := os.WriteFile(filepath.Join(dir, "x509lint.yml"), []byte(yamlData), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := loadLintConfig(newLintTestCmd(t), nil)
	if err != nil {
		t.Fatalf("loadLintConfig failed: %v", err)
	}
	if cfg.Input.Kind != config.KindCRL || !cfg.Output.NoColor {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if len(cfg.Input.Files) != 0 {
		t.Errorf("expected no files, got %v", cfg.Input.Files)
	}
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func goExe() string {
	if runtime.GOOS == "windows" {
		return "go.exe"
	}
	return "go"
}

func buildBinary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "x509lint-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command(goExe(), "build", "-o", outPath, "./cmd/x509lint")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build x509lint binary: %v; output=%s", err, string(out))
	}
	return outPath
}

func TestLint_ExitCode3(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binary := buildBinary(t)

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"Invalid Config", []string{"lint", "--console-format", "xml"}, "", "unsupported --console-format"},
		{"Unknown Input", []string{"lint"}, "not a certificate", "could not determine input format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binary, tt.args...)
			cmd.Dir = t.TempDir()
			cmd.Stdin = strings.NewReader(tt.stdin)

			out, err := cmd.CombinedOutput()
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
			}
			if code := exitErr.ProcessState.ExitCode(); code != 3 {
				t.Fatalf("expected exit code 3, got %d; output=%s", code, string(out))
			}
			if !strings.Contains(string(out), tt.want) {
				t.Fatalf("expected %q in output; output=%s", tt.want, string(out))
			}
		})
	}
}
