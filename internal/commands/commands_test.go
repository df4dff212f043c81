package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/cleared-dev/ynabimport/internal/config"
	"github.com/cleared-dev/ynabimport/internal/rates"
)

const (
	wiseStatement = "../../testdata/wise_statement.csv"
	otpStatement  = "../../testdata/otp_statement.csv"
)

type result struct {
	stdout string
	stderr string
}

func execute(t *testing.T, stdin []byte, args ...string) (result, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String()}, err
}

// writeConfig saves a config that never touches the network unless mutate
// points it at a server.
func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.Default()
	cfg.Conversion.RateURL = ""
	cfg.Conversion.FixedRate = "350"
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(t.TempDir(), "ynabimport.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func golden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func otpBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(otpStatement)
	require.NoError(t, err)
	encoded, err := charmap.Windows1250.NewEncoder().Bytes(data)
	require.NoError(t, err)
	return encoded
}

func TestConvert_ToDir(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	outDir := filepath.Join(t.TempDir(), "exports")

	res, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "Wrote 4 wise transactions to")

	got, err := os.ReadFile(filepath.Join(outDir, "ynab-import.csv"))
	require.NoError(t, err)
	assert.Equal(t, golden(t, "wise_ynab.csv"), string(got))
}

func TestConvert_ToStdout(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	res, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "wise_ynab.csv"), res.stdout)
}

func TestConvert_OTPFromStdin(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	res, err := execute(t, otpBytes(t), "convert", "-", "--config", cfgPath, "-o", "-", "--format", "otp")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "otp_ynab.csv"), res.stdout)
}

func TestConvert_RateFlagOverridesConfig(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	csv := "TransferWise ID,Date,Amount,Currency,Description,Payment Reference,Running Balance,Exchange From,Exchange To,Exchange Rate,Payer Name,Payee Name,Payee Account Number,Merchant,Total fees\n" +
		"CARD-1,25-12-2020,-20.00,EUR,Coffee,,,,,,,,,Coffee Shop,\n"

	res, err := execute(t, []byte(csv), "convert", "-", "--config", cfgPath, "-o", "-", "--rate", "400")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "12/25/2020,Coffee Shop,,Coffee,8000,\n")
}

func TestConvert_FetchesRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		_, _ = w.Write([]byte(`{"EUR_HUF": 350}`))
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Conversion.FixedRate = ""
		c.Conversion.RateURL = srv.URL
	})
	t.Setenv("YNABIMPORT_RATE_API_KEY", "test-key")

	res, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "-o", "-", "--log-level", "trace")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "wise_ynab.csv"), res.stdout)
	assert.Contains(t, res.stderr, "level=TRACE")
	assert.Contains(t, res.stderr, "imported statement")
}

func TestConvert_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Conversion.FixedRate = ""
		c.Conversion.RateURL = srv.URL
	})
	outDir := t.TempDir()

	res, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "--out", outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, rates.RateNotFoundError{})
	assert.Contains(t, res.stderr, "exchange rate unavailable")

	_, statErr := os.Stat(filepath.Join(outDir, "ynab-import.csv"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestConvert_OTPSkipsRateRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Conversion.FixedRate = ""
		c.Conversion.RateURL = srv.URL
	})

	res, err := execute(t, otpBytes(t), "convert", "-", "--config", cfgPath, "-o", "-", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "otp_ynab.csv"), res.stdout)
	assert.NotContains(t, res.stderr, "exchange rate unavailable")
	assert.Zero(t, calls.Load())
}

func TestConvert_PolicyNone(t *testing.T) {
	cfgPath := writeConfig(t, func(c *config.Config) { c.Conversion.FixedRate = "" })

	res, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "-o", "-", "--policy", "none")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "12/25/2020,Coffee Shop,,Card transaction of 20.00 EUR issued by Coffee Shop,20,\n")
}

func TestConvert_UnknownFormat(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	_, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "--format", "chase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chase")
}

func TestConvert_MissingConfig(t *testing.T) {
	_, err := execute(t, nil, "convert", wiseStatement, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvert_MissingStatement(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	_, err := execute(t, nil, "convert", filepath.Join(t.TempDir(), "nope.csv"), "--config", cfgPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConvert_BadLogLevel(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	_, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging config")
}

func TestConvert_RecordsRunAndHistory(t *testing.T) {
	dir := t.TempDir()
	runLog := filepath.Join(dir, "logs", "runs.csv")
	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Output.Dir = filepath.Join(dir, "out")
		c.Output.RunLog = runLog
	})

	_, err := execute(t, nil, "convert", wiseStatement, "--config", cfgPath)
	require.NoError(t, err)
	_, err = execute(t, otpBytes(t), "convert", "-", "--config", cfgPath)
	require.NoError(t, err)

	res, err := execute(t, nil, "history", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "FORMAT")
	assert.Contains(t, lines[1], "wise")
	assert.Contains(t, lines[1], wiseStatement)
	assert.Contains(t, lines[2], "otp")
	assert.Contains(t, lines[2], "stdin")
}

func TestHistory_Empty(t *testing.T) {
	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Output.RunLog = filepath.Join(t.TempDir(), "runs.csv")
	})

	res, err := execute(t, nil, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "No conversions recorded.")
}

func TestHistory_HelpDescribesRunLog(t *testing.T) {
	res, err := execute(t, nil, "history", "--help")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "off unless output.run_log is set")
	assert.Contains(t, res.stdout, "never transactions")
}

func TestHistory_NotConfigured(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	_, err := execute(t, nil, "history", "--config", cfgPath)
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	res, err := execute(t, nil, "show", wiseStatement, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "PAYEE")
	assert.Contains(t, res.stdout, "TRANSFER-111")
	assert.Contains(t, res.stdout, "52500.00")
	assert.Contains(t, res.stdout, "Coffee Shop")
	assert.Contains(t, res.stdout, "4 transactions (wise, batch ")
}

func TestShow_OTP(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	res, err := execute(t, otpBytes(t), "show", "-", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "SPAR MAGYARORSZÁG")
	assert.Contains(t, res.stdout, "-0.50")
	assert.Contains(t, res.stdout, "4 transactions (otp, batch ")
}

func TestFormats(t *testing.T) {
	res, err := execute(t, nil, "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "wise")
	assert.Contains(t, lines[1], "utf-8")
	assert.Contains(t, lines[2], "otp")
	assert.Contains(t, lines[2], "windows-1250")
	assert.Contains(t, lines[2], "';'")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ynabimport.yaml")

	res, err := execute(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = execute(t, nil, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, nil, "config", "init", path, "--force")
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	res, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, res.stdout, "ynabimport version")
	assert.Contains(t, res.stdout, "commit:")
}
