// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex-dev/vortex/internal/version"
	"github.com/vortex-dev/vortex/parser"
	"github.com/vortex-dev/vortex/structurate"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "vortex", "config.yaml")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRenderFormats(t *testing.T) {
	cfg := tempConfig(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "plain",
			args: []string{"--format", "plain", "<red>Hello</red> &lWorld"},
			want: "Hello World\n",
		},
		{
			name: "legacy with custom char",
			args: []string{"--format", "legacy", "--legacy-char", "&", "<red>Hi</red> x"},
			want: "&cHi&f x\n",
		},
		{
			name: "minimessage",
			args: []string{"--format", "minimessage", "&cHi"},
			want: "<red>Hi</red>\n",
		},
		{
			name: "args are joined",
			args: []string{"--format", "plain", "--default-color", "", "a", "b"},
			want: "a b\n",
		},
		{
			name: "placeholders prefer longer keys",
			args: []string{"--format", "plain", "--placeholder", "name=Steve", "--placeholder", "name_full=Steve Smith", "Hi <name_full> aka <name>"},
			want: "Hi Steve Smith aka Steve\n",
		},
		{
			name: "keep unknown tags",
			args: []string{"--format", "plain", "--keep-unknown-tags", "<nope>x"},
			want: "<nope>x\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", append([]string{"--config", cfg, "render"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := os.Stat(cfg)
	assert.True(t, os.IsNotExist(err), "render must not create the config file")
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, "", "--config", tempConfig(t), "render", "--format", "json", "--default-color", "",
		"<bold>a</bold><click:run_command:/x>b</click><#123456>c</#123456>")
	require.NoError(t, err)

	var spans []spanJSON
	require.NoError(t, json.Unmarshal([]byte(out), &spans))
	assert.Equal(t, []spanJSON{
		{Text: "a", Decorations: []string{"bold"}},
		{Text: "b", Click: &clickJSON{Action: "run_command", Value: "/x"}},
		{Text: "c", Color: "#123456"},
	}, spans)
}

func TestRenderANSIWithoutTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out, err := execute(t, "", "--config", tempConfig(t), "render", "<red>x</red>")
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)
}

func TestRenderStdin(t *testing.T) {
	out, err := execute(t, "from <b>stdin</b>\n", "--config", tempConfig(t), "render", "--format", "plain")
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", out)
}

func TestRenderErrors(t *testing.T) {
	cfg := tempConfig(t)

	_, err := execute(t, "", "--config", cfg, "render", "--strict", "<red>x")
	assert.ErrorIs(t, err, parser.ErrUnclosedTag)

	_, err = execute(t, "", "--config", cfg, "render", "--format", "html", "x")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, "", "--config", cfg, "render", "--placeholder", "oops", "x")
	assert.ErrorContains(t, err, "want key=value")

	_, err = execute(t, "", "--config", cfg, "render", "--legacy-char", "<", "x")
	assert.ErrorIs(t, err, parser.ErrInvalidLegacyChar)
}

func TestConfigInitAndShow(t *testing.T) {
	cfg := tempConfig(t)

	out, err := execute(t, "", "--config", cfg, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote "+cfg+"\n", out)

	_, err = execute(t, "", "--config", cfg, "config", "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = execute(t, "", "--config", cfg, "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "", "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# "+cfg+"\n"), out)
	for _, want := range []string{"instanceId: ", "render:", "format: ansi", "defaultColor: white", "_config_version: 2"} {
		assert.Contains(t, out, want)
	}

	_, err = execute(t, "", "--config", cfg, "config", "show", "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestConfigMigratesFlatLayout(t *testing.T) {
	cfg := tempConfig(t)
	original := "# old layout\nlegacyChar: '&'\ndefaultColor: gray\nstrict: true\n"
	writeFile(t, cfg, original)

	out, err := execute(t, "", "--config", cfg, "config", "show", "--format", "json")
	require.NoError(t, err)

	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, float64(2), shown[structurate.VersionKey])
	assert.NotContains(t, shown, "legacyChar")
	render, ok := shown["render"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "&", render["legacyChar"])
	assert.Equal(t, "gray", render["defaultColor"])
	assert.Equal(t, true, render["strict"])
	assert.Equal(t, "ansi", render["format"])

	out, err = execute(t, "", "--config", cfg, "render", "--format", "legacy", "<red>a</red>b")
	require.NoError(t, err)
	assert.Equal(t, "&ca&7b\n", out)

	// the CLI never rewrites the file on load
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestConfigBrokenFile(t *testing.T) {
	cfg := tempConfig(t)
	writeFile(t, cfg, "render: [unclosed\n")

	_, err := execute(t, "", "--config", cfg, "config", "show")
	assert.ErrorContains(t, err, "read config")

	writeFile(t, cfg, "render: nope\n")
	_, err = execute(t, "", "--config", cfg, "render", "x")
	assert.ErrorIs(t, err, structurate.ErrMigration)
}

func TestConfigPathFromEnvironment(t *testing.T) {
	cfg := tempConfig(t)
	t.Setenv(configEnv, cfg)

	_, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, cfg)

	opts := &rootOptions{configPath: "/explicit.yaml"}
	path, err := opts.resolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit.yaml", path)
}

func TestYAMLInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeFile(t, path, "# header\nname: x\nserver:\n  host: h\n  ports: [1, 2]\nratio: 0.5\n_config_version: 3\n")

	out, err := execute(t, "", "yaml", "inspect", path)
	require.NoError(t, err)
	for _, want := range []string{
		"file:    " + path,
		"version: 3",
		"header:\n  # header\n",
		"  name: string\n",
		"  server:\n    host: string\n    ports: sequence(2)\n",
		"  ratio: float\n",
		"  _config_version: int\n",
	} {
		assert.Contains(t, out, want)
	}

	_, err = execute(t, "", "yaml", "inspect", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestYAMLFmt(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")

	canonical, err := structurate.NewFileIO().Encode(structurate.NodeFromMap(map[string]any{"a": 1}), []string{"# ok"})
	require.NoError(t, err)
	writeFile(t, good, string(canonical))
	writeFile(t, bad, "# keep me\nb:     1\na:    [1, 2]\n")

	out, err := execute(t, "", "yaml", "fmt", "--check", good, bad)
	assert.ErrorContains(t, err, "1 file(s) need formatting")
	assert.Equal(t, bad+"\n", out)

	out, err = execute(t, "", "yaml", "fmt", good, bad)
	require.NoError(t, err)
	assert.Equal(t, "formatted "+bad+"\n", out)

	out, err = execute(t, "", "yaml", "fmt", "--check", good, bad)
	require.NoError(t, err)
	assert.Empty(t, out)

	res, err := structurate.NewFileIO().ReadWithHeader(bad)
	require.NoError(t, err)
	assert.Equal(t, []string{"# keep me"}, res.Header)
	assert.Equal(t, []string{"b", "a"}, res.Node.Keys())

	_, err = execute(t, "", "yaml", "fmt", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestMigrateFlatRenderKeys(t *testing.T) {
	n := structurate.NewNode()
	n.Set("format", "plain")
	n.Set("other", 1)
	require.NoError(t, migrateFlatRenderKeys(n))
	assert.Equal(t, []string{"other", "render"}, n.Keys())
	assert.Equal(t, "plain", n.Node("render").Get("format"))

	bad := structurate.NewNode()
	bad.Set("render", "scalar")
	assert.Error(t, migrateFlatRenderKeys(bad))
}
