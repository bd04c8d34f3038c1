package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monedero-app/monedero/internal/commands"
	"github.com/monedero-app/monedero/internal/config"
	"github.com/monedero-app/monedero/internal/history"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/transfer"
)

// cli runs commands in process against one data home.
type cli struct {
	t    *testing.T
	home string
	in   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	for _, key := range []string{config.EnvHome, config.EnvBackend, config.EnvTimezone, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	return &cli{t: t, home: t.TempDir()}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	cmd := commands.NewRootCommand()
	cmd.SetArgs(append([]string{"--home", c.home}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(c.in))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) register(email, name string) {
	c.t.Helper()
	c.mustRun("register", "--email", email, "--password", "secret", "--name", name,
		"--birth-date", "1995-04-12", "--status", "working")
}

var savedID = regexp.MustCompile(`\(id (\d+)\)`)

func TestRegisterAddList(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("register", "--email", "ana@example.com", "--password", "secret", "--name", "Ana",
		"--birth-date", "1995-04-12", "--status", "studying")
	assert.Contains(t, out, "Welcome, Ana!")

	c.mustRun("add", "income", "1200", "Sueldo")
	c.mustRun("add", "expense", "200", "Cine", "--category", "leisure")
	c.mustRun("add", "income", "5000", "Bono", "-c", "Otros")

	out = c.mustRun("list")
	assert.Contains(t, out, "Balance: Lps 6000.00")
	assert.Contains(t, out, "Transactions (3)")
	assert.Contains(t, out, "Cine [Leisure]")

	out = c.mustRun("whoami")
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "status: Estudia")
}

func TestRegister_MissingBirthDateSavesNothing(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("register", "--email", "ana@example.com", "--password", "secret", "--status", "working")
	require.Error(t, err)
	assert.Contains(t, out, "check these fields: birthDate")
	assert.NotContains(t, out, "Error:")

	out, err = c.run("login", "--email", "ana@example.com", "--password", "secret")
	require.Error(t, err)
	assert.Contains(t, out, "invalid email or password")

	out, err = c.run("list")
	require.Error(t, err)
	assert.Contains(t, out, "log in first")
}

func TestRegister_PasswordFromStdin(t *testing.T) {
	c := newCLI(t)
	c.in = "hunter22\n"

	c.mustRun("register", "--email", "ana@example.com", "--birth-date", "1995-04-12", "--status", "working")
	c.mustRun("logout")

	out := c.mustRun("login", "--email", "ANA@example.com", "--password", "hunter22")
	assert.Contains(t, out, "Logged in as ana@example.com")
}

func TestRegister_Duplicate(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")

	out, err := c.run("register", "--email", "ana@example.com", "--password", "other",
		"--birth-date", "1990-01-01", "--status", "working")
	require.Error(t, err)
	assert.Contains(t, out, "that email is already registered")
}

func TestLogin_WrongPassword(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("logout")

	out, err := c.run("login", "--email", "ana@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "invalid email or password")

	out = c.mustRun("logout")
	assert.Contains(t, out, "Not logged in")
}

func TestAdd_Rejected(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("add", "income", "10")
	require.Error(t, err)
	assert.Contains(t, out, "log in first")

	c.register("ana@example.com", "Ana")

	out, err = c.run("add", "expense", "12.50", "Almuerzo")
	require.Error(t, err)
	assert.Contains(t, out, "check these fields: category")

	out, err = c.run("add", "refund", "abc", "--category", "food")
	require.Error(t, err)
	assert.Contains(t, out, "check these fields: type, amount")

	out = c.mustRun("list")
	assert.Contains(t, out, "Transactions (0)")
}

func TestDelete(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")

	out := c.mustRun("add", "expense", "5", "Bus", "-c", "transport")
	m := savedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	txID := m[1]

	out = c.mustRun("delete", txID)
	assert.Contains(t, out, "Deleted "+txID)

	out = c.mustRun("rm", txID)
	assert.Contains(t, out, "No transaction with id "+txID)

	out = c.mustRun("list")
	assert.Contains(t, out, "Transactions (0)")
	assert.Contains(t, out, "Balance: Lps 0.00")
}

func TestSeedSummaryWeek(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")

	out := c.mustRun("seed")
	assert.Contains(t, out, "Added 6 sample transactions")

	out = c.mustRun("seed")
	assert.Contains(t, out, "nothing seeded")

	out = c.mustRun("summary")
	assert.Contains(t, out, "Balance: Lps 6200.00")
	assert.Contains(t, out, "Income: Lps 9400.00")
	assert.Contains(t, out, "Expenses: Lps 3200.00")
	assert.Contains(t, out, "93.8%")
	assert.Contains(t, out, "6.3%")
	assert.Contains(t, out, "Supermercado [Food]")

	out = c.mustRun("week")
	assert.Contains(t, out, "Balance: Lps 6200.00")
	assert.Contains(t, out, "Activity (last 7 days)")
	assert.Contains(t, out, "Lps -3000.00")

	_, err := c.run("summary", "--period", "decade")
	require.Error(t, err)
}

func TestPerUserIsolation(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("add", "income", "100", "Regalo")
	c.mustRun("logout")

	c.register("luis@example.com", "Luis")
	out := c.mustRun("list")
	assert.Contains(t, out, "Transactions (0)")

	c.mustRun("login", "--email", "ana@example.com", "--password", "secret")
	out = c.mustRun("list")
	assert.Contains(t, out, "Transactions (1)")
	assert.Contains(t, out, "Regalo")
}

func TestExportImport(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("seed")

	file := filepath.Join(t.TempDir(), "ledger.csv")
	out := c.mustRun("export", "--output", file)
	assert.Contains(t, out, "Exported 6 transactions")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), transfer.Header+"\n"))

	out = c.mustRun("export", "--format", "json")
	assert.True(t, strings.HasPrefix(out, "["), out)
	assert.Contains(t, out, `"category": "Comida"`)

	c.mustRun("logout")
	c.register("luis@example.com", "Luis")

	out = c.mustRun("import", file)
	assert.Contains(t, out, "Imported 6 transactions (0 already present)")
	out = c.mustRun("import", file)
	assert.Contains(t, out, "Imported 0 transactions (6 already present)")

	out = c.mustRun("summary")
	assert.Contains(t, out, "Balance: Lps 6200.00")

	_, err = c.run("export", "--format", "xml")
	require.Error(t, err)
}

func TestLog(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("add", "income", "10", "Venta")

	out := c.mustRun("log")
	assert.Contains(t, out, "register")
	assert.Contains(t, out, "income 10.00 Otros")
}

func TestInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init", "--backend", "sqlite", "--currency", "HNL", "--timezone", "America/Tegucigalpa")
	assert.Contains(t, out, "Initialized monedero data home")

	data, err := os.ReadFile(filepath.Join(c.home, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "currency: HNL")

	_, err = c.run("init")
	require.Error(t, err)

	c.register("ana@example.com", "Ana")
	c.mustRun("add", "income", "25", "Venta")
	out = c.mustRun("list")
	assert.Contains(t, out, "Balance: HNL 25.00")

	_, err = os.Stat(filepath.Join(c.home, "monedero.db"))
	require.NoError(t, err)
}

func TestInit_InvalidBackend(t *testing.T) {
	for _, backend := range []string{"postgres", "memory"} {
		t.Run(backend, func(t *testing.T) {
			c := newCLI(t)

			_, err := c.run("init", "--backend", backend)
			require.Error(t, err)

			_, err = os.Stat(filepath.Join(c.home, config.FileName))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestMemoryBackendFromEnvRejected(t *testing.T) {
	c := newCLI(t)
	t.Setenv(config.EnvBackend, "memory")

	_, err := c.run("register", "--email", "ana@example.com", "--password", "secret",
		"--birth-date", "1995-04-12", "--status", "working")
	require.ErrorContains(t, err, "memory keeps nothing between commands")
}

func TestInit_GitSnapshotsEveryChange(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	c := newCLI(t)

	c.mustRun("init", "--git")
	assert.True(t, history.Enabled(c.home))
	count := func() int {
		t.Helper()
		n, err := history.Count(c.home)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, 1, count())

	c.register("ana@example.com", "Ana")
	assert.Equal(t, 2, count())

	c.mustRun("add", "income", "25", "Venta")
	assert.Equal(t, 3, count())

	out := c.mustRun("snapshot", "-m", "manual")
	assert.Contains(t, out, "Nothing changed since the last snapshot")
	assert.Equal(t, 3, count())
}

// corruptList replaces the stored transaction list of the logged-in user.
func (c *cli) corruptList() {
	c.t.Helper()
	files, err := filepath.Glob(filepath.Join(c.home, "data", "*transactions_*"))
	require.NoError(c.t, err)
	require.Len(c.t, files, 1)
	require.NoError(c.t, os.WriteFile(files[0], []byte("{not json"), 0o644))
}

func TestCorruptList(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("add", "income", "25", "Venta")
	c.corruptList()

	out := c.mustRun("list")
	assert.Contains(t, out, notice.StorageUnavailable)
	assert.Contains(t, out, "Transactions (0)")
	assert.Contains(t, out, "Balance: Lps 0.00")

	out = c.mustRun("summary")
	assert.Contains(t, out, notice.StorageUnavailable)

	out, err := c.run("add", "income", "5", "Venta")
	require.Error(t, err)
	assert.Contains(t, out, notice.NothingSaved)

	out, err = c.run("export")
	require.Error(t, err)
	assert.Contains(t, out, notice.ReadFailed)
	assert.NotContains(t, out, notice.NothingSaved)

	out, err = c.run("check")
	require.Error(t, err)
	assert.Contains(t, out, "1 problems in 3 stored values")
	assert.Contains(t, out, "@transactions_")
}

func TestCheck_Clean(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("seed")

	out := c.mustRun("check")
	assert.Contains(t, out, "All 3 stored values are readable.")
}

func TestImport_HeaderlessCSVRejected(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")

	file := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"1747699200000,income,5,Sueldo,Otros,2025-05-20,\n"+
			"1747785600000,expense,3,Bus,Transporte,2025-05-21,\n"), 0o644))

	out, err := c.run("import", file)
	require.Error(t, err)
	assert.Contains(t, out, "first row is not the transactions header")
	assert.NotContains(t, out, "Imported")

	out = c.mustRun("list")
	assert.Contains(t, out, "Transactions (0)")
}

func TestPeriodFlags(t *testing.T) {
	c := newCLI(t)
	c.register("ana@example.com", "Ana")
	c.mustRun("seed")

	out := c.mustRun("list", "--period", "year", "--year", "2020")
	assert.Contains(t, out, "Transactions (0)")

	out, err := c.run("summary", "--period", "month", "--month", "13")
	require.Error(t, err)
	assert.Contains(t, out, "check these fields: period")
}

func TestSnapshot_NotEnabled(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("snapshot")
	require.Error(t, err)
	assert.Contains(t, out, "init --git")
}
