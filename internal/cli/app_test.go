package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insights/internal/dataset/datasettest"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var out, errOut bytes.Buffer
	app := NewApp()
	app.SetOutput(&out, &errOut)
	app.SetArgs(args)
	err = app.Execute(context.Background())
	return out.String(), errOut.String(), err
}

func TestToolCommands_JSON(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	tests := []struct {
		args []string
		tool string
	}{
		{[]string{"revenue"}, "get_revenue_by_category"},
		{[]string{"revenue", "--categories", "home,sports"}, "get_revenue_by_category"},
		{[]string{"ltv", "--top-n", "2", "--segment", "regular"}, "get_customer_ltv"},
		{[]string{"returns", "--category", "clothing"}, "get_return_rates"},
		{[]string{"regions"}, "compare_regions"},
		{[]string{"compare", "--period-label", "mom"}, "compare_time_periods"},
		{[]string{"overview"}, "get_data_overview"},
		{[]string{"payments"}, "get_payment_method_analysis"},
		{[]string{"segments", "--region", "north"}, "get_segment_comparison"},
		{[]string{"trends"}, "get_revenue_trends"},
		{[]string{"capabilities"}, "explain_capabilities"},
		{[]string{"call", "compare_regions"}, "compare_regions"},
		{[]string{"call", "get_customer_ltv", `{"top_n":1}`}, "get_customer_ltv"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.tool, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"--data-dir", dir}, tt.args...)...)
			require.NoError(t, err)

			var env map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &env))
			assert.Equal(t, tt.tool, env["tool_used"])
			assert.NotEmpty(t, env["summary"])
			assert.Contains(t, env, "metadata")
		})
	}
}

func TestToolCommands_FlagsReachParams(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "ltv", "--top-n", "2")
	require.NoError(t, err)

	var env struct {
		Data struct {
			Data []map[string]any `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.Len(t, env.Data.Data, 2)
	assert.Equal(t, "C1", env.Data.Data[0]["customer_id"])
}

func TestRejectedQuery(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "returns", "--category", "toys")
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 2, ExitCode(err))

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, false, env["ok"])
	assert.Equal(t, "invalid_input", env["error_type"])
}

func TestCall_UnknownTool(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "call", "drop_tables")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, stdout, "unknown tool")
}

func TestTableOutput(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "--output", "table", "regions")
	require.NoError(t, err)
	assert.Contains(t, stdout, "North leads in revenue")
	assert.Contains(t, stdout, "total_revenue")
	assert.Contains(t, stdout, "350.00")
	assert.Contains(t, stdout, "data as of 2024-03-15")

	stdout, _, err = execute(t, "--data-dir", dir, "-o", "table", "compare", "--period-label", "qoq")
	require.NoError(t, err)
	assert.Contains(t, stdout, "current_period.revenue")
	assert.Contains(t, stdout, "n/a")

	stdout, _, err = execute(t, "--data-dir", dir, "-o", "table", "tools")
	require.NoError(t, err)
	assert.Contains(t, stdout, "get_customer_ltv")
	assert.Contains(t, stdout, "top_n, region, segment, min_transactions")
}

func TestTableOutput_Rejected(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "-o", "table", "ltv", "--top-n", "0")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, stdout, "invalid_input")
	assert.Contains(t, stdout, "use 1 or more")
}

func TestToolsCommand_JSON(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())

	stdout, _, err := execute(t, "--data-dir", dir, "tools")
	require.NoError(t, err)

	var caps []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &caps))
	assert.Len(t, caps, 10)
}

func TestConfigFile(t *testing.T) {
	dir := datasettest.WriteDir(t, datasettest.Small())
	cfgPath := filepath.Join(t.TempDir(), "shopq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data:\n  dir: "+dir+"\n"), 0o600))

	stdout, _, err := execute(t, "--config", cfgPath, "overview")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"transaction_count": 9`)
}

func TestSetupErrors(t *testing.T) {
	_, _, err := execute(t, "--data-dir", t.TempDir(), "overview")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, err.Error(), "file not found")

	dir := datasettest.WriteDir(t, datasettest.Small())
	_, _, err = execute(t, "--data-dir", dir, "--output", "xml", "overview")
	assert.ErrorContains(t, err, "invalid --output")
}

func TestHelpNeedsNoData(t *testing.T) {
	stdout, _, err := execute(t, "ltv", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "--top-n")
	assert.Contains(t, stdout, "Which customers have the highest lifetime value?")
}
