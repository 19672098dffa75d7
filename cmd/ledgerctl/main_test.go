package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/wallet-ledger/config"
	"github.com/finance-tracker/wallet-ledger/internal/domain/entity"
	"github.com/finance-tracker/wallet-ledger/internal/infra/db"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDriftedWallet(t *testing.T, url string) *entity.Wallet {
	t.Helper()

	database, err := db.Open(&config.DatabaseConfig{URL: url})
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	require.NoError(t, database.AutoMigrate())

	wallet := entity.NewWallet(uuid.New(), "Cash", nil)
	wallet.Balance = entity.Balance{
		Amount:        decimal.NewFromInt(50),
		TotalIncome:   decimal.NewFromInt(100),
		TotalExpenses: decimal.Zero,
	}
	require.NoError(t, persistence.NewWalletRepository(database.DB()).Create(context.Background(), wallet))

	return wallet
}

func TestRootCmd(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"migrate", "drift", "stats", "cascade", "token", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	flag := cmd.PersistentFlags().Lookup("database-url")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestDriftCmd_Flags(t *testing.T) {
	cmd := driftCmd()

	fix := cmd.Flag("fix")
	require.NotNil(t, fix)
	assert.Equal(t, "false", fix.DefValue)
	assert.NotNil(t, cmd.Flag("user"))
}

func TestDriftCmd_DetectsAndFixes(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")
	wallet := seedDriftedWallet(t, url)

	out, err := run(t, "--database-url", url, "drift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 wallet(s) drifted")
	assert.Contains(t, out, wallet.ID.String())
	assert.Contains(t, out, "50.00/100.00/0.00")
	assert.Contains(t, out, "0.00/0.00/0.00")

	out, err = run(t, "--database-url", url, "drift", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed")

	out, err = run(t, "--database-url", url, "drift")
	require.NoError(t, err)
	assert.Contains(t, out, "no drift")
}

func TestStatsCmd(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")

	_, err := run(t, "--database-url", url, "stats", "daily", "--user", uuid.NewString())
	require.Error(t, err)

	out, err := run(t, "--database-url", url, "stats", "monthly", "--user", uuid.NewString())
	require.NoError(t, err)
	assert.Contains(t, out, "BUCKET")
	assert.Contains(t, out, "monthly window, 0 transaction(s)")
}

func TestCascadeCmd(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t, "--database-url", url, "cascade", uuid.NewString(), "--batch-size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 transaction(s)")

	_, err = run(t, "--database-url", url, "cascade", "not-a-uuid")
	require.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	out, err := run(t, "token", "--user", uuid.NewString(), "--email", "ops@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	assert.Equal(t, "ledgerctl dev\n", out.String())
}
