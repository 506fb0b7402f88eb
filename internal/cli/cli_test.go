package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/sensorgen/internal/config"
	"github.com/zarlcorp/sensorgen/internal/device"
	"github.com/zarlcorp/sensorgen/internal/output"
)

func loadConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestGenerateDefaults(t *testing.T) {
	w := output.New(zfilesystem.NewMemFS())
	if err := Generate(context.Background(), loadConfig(t), w); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := w.Read(output.CSVFile)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 11 {
		t.Errorf("csv rows = %d, want 11", len(rows))
	}

	data, err = w.Read(output.SettingsFile)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var doc struct {
		MqttClients []struct{ ClientId, Username, Password string }
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if len(doc.MqttClients) != 10 {
		t.Errorf("MqttClients = %d, want 10", len(doc.MqttClients))
	}

	// csv row i+1 and json entry i describe the same identity
	for i, c := range doc.MqttClients {
		if rows[i+1][0] != c.Username || rows[i+1][1] != c.Password {
			t.Errorf("row %d = %v, json entry = %+v", i+1, rows[i+1], c)
		}
	}

	if _, err := w.Read(output.WorkbookFile); err == nil {
		t.Error("workbook should not be written by default")
	}
}

func TestGenerateOptionalArtifacts(t *testing.T) {
	w := output.New(zfilesystem.NewMemFS())
	cfg := loadConfig(t, "--count", "3", "--ledger", "--ledger-format", "json", "--xlsx", "--hashed")

	if err := Generate(context.Background(), cfg, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, name := range []string{output.CSVFile, output.SettingsFile, output.LedgerFile + ".json", output.WorkbookFile} {
		data, err := w.Read(name)
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	data, _ := w.Read(output.CSVFile)
	if !strings.HasPrefix(string(data), "user_id,password_hash,salt,is_superuser\r\n") {
		t.Errorf("expected hashed csv header, got %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestGenerateIdempotent(t *testing.T) {
	cfg := loadConfig(t, "--count", "5")

	a := output.New(zfilesystem.NewMemFS())
	b := output.New(zfilesystem.NewMemFS())
	if err := Generate(context.Background(), cfg, a); err != nil {
		t.Fatal(err)
	}
	if err := Generate(context.Background(), cfg, b); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{output.CSVFile, output.SettingsFile} {
		x, _ := a.Read(name)
		y, _ := b.Read(name)
		if !bytes.Equal(x, y) {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := output.New(zfilesystem.NewMemFS())
	err := Generate(ctx, loadConfig(t), w)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := w.Read(output.CSVFile); err == nil {
		t.Error("nothing should be written after cancellation")
	}
}

func TestCmdGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	if err := CmdGenerate(context.Background(), []string{"--out", dir, "--count", "2"}); err != nil {
		t.Fatalf("CmdGenerate: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, output.CSVFile))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "user_id,password,is_superuser\r\nsensor-0,sensor-0,False\r\nsensor-1,sensor-1,False\r\n"
	if string(got) != want {
		t.Errorf("csv = %q, want %q", got, want)
	}

	if _, err := os.Stat(filepath.Join(dir, output.SettingsFile)); err != nil {
		t.Errorf("settings file: %v", err)
	}
}

func TestCmdGenerateBadFlag(t *testing.T) {
	if err := CmdGenerate(context.Background(), []string{"--count", "zero"}); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func TestCmdGenerateHelp(t *testing.T) {
	err := CmdGenerate(context.Background(), []string{"--help"})
	if !IsHelp(err) {
		t.Errorf("err = %v, want help", err)
	}
}

func TestCmdPreview(t *testing.T) {
	var buf bytes.Buffer
	if err := CmdPreview([]string{"--count", "3"}, &buf); err != nil {
		t.Fatalf("CmdPreview: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	for i, line := range lines {
		if !strings.Contains(line, "sensor-"+string(rune('0'+i))) {
			t.Errorf("line %d = %q", i, line)
		}
	}
}

func TestCmdPreviewJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := CmdPreview([]string{"--count", "2", "--client-prefix", "dev", "--json"}, &buf); err != nil {
		t.Fatalf("CmdPreview: %v", err)
	}

	var ids []device.Identity
	if err := json.Unmarshal(buf.Bytes(), &ids); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if len(ids) != 2 || ids[1].ClientID != "dev-1" || ids[1].Username != "sensor-1" {
		t.Errorf("ids = %+v", ids)
	}
}

func TestStyledTable(t *testing.T) {
	out := styledTable(device.Generate(device.Config{Count: 2, ClientPrefix: "c", UserPrefix: "u", PasswordPrefix: "p"}))
	for _, want := range []string{"client id", "c-0", "u-1", "p-1", "2 identities"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, -4) // debug
	log.Debug("artifact written", "file", "x.csv")
	if !strings.Contains(buf.String(), "artifact written") {
		t.Errorf("debug message missing: %q", buf.String())
	}

	buf.Reset()
	log = NewLogger(&buf, 4) // warn
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn, got %q", buf.String())
	}
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(context.Background(), "1.2.3", "version", nil, &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := buf.String(); got != "sensorgen 1.2.3\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), "dev", "frobnicate", nil, &buf)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", ExitCode(err))
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunPreview(t *testing.T) {
	var buf bytes.Buffer
	if err := Run(context.Background(), "dev", "preview", []string{"--count", "1"}, &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "sensor-0") {
		t.Errorf("preview output = %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"help", pflag.ErrHelp, 0},
		{"failure", errors.New("disk full"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCommandsRejectPositionalArgs(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		cmd  string
		args []string
	}{
		{"generate", []string{"--out", dir, "foo"}},
		{"preview", []string{"foo"}},
		{"version", []string{"foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			err := Run(context.Background(), "dev", tt.cmd, tt.args, &bytes.Buffer{})
			if !errors.Is(err, ErrUnexpectedArgs) {
				t.Errorf("err = %v, want ErrUnexpectedArgs", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, output.CSVFile)); err == nil {
		t.Error("generate should write nothing when given positional arguments")
	}
}

func TestLoadLogsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensorgen.yaml")
	if err := os.WriteFile(path, []byte("count: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	config.RegisterFlags(fs)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var logs bytes.Buffer
	cfg, err := load(fs, []string{"--config", path, "--log-level", "debug"}, &logs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Count != 2 {
		t.Errorf("count = %d, want 2", cfg.Count)
	}
	if !strings.Contains(logs.String(), "config loaded") || !strings.Contains(logs.String(), path) {
		t.Errorf("debug log missing config file: %q", logs.String())
	}
}
