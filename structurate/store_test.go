// SPDX-License-Identifier: MIT

package structurate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	Host  string
	Debug bool
}

type testConfig struct {
	Name    string
	Port    int
	Timeout time.Duration
	Server  testServer
	Tags    []string
}

func (c *testConfig) SetDefaults() {
	c.Name = "vortex"
	c.Port = 8080
	c.Timeout = 5 * time.Second
	c.Server.Host = "localhost"
}

type listenConfig struct {
	Listen  string
	Workers int
}

func (listenConfig) ConfigVersion() int { return 3 }

func listenMigrations() []Option {
	return []Option{
		WithMigration(2, MigrationFunc(func(n *Node) error {
			n.Set("listen", fmt.Sprintf("%v:%v", n.Get("host"), n.Get("port")))
			n.Remove("host")
			n.Remove("port")
			return nil
		})),
		WithMigration(3, MigrationFunc(func(n *Node) error {
			if n.Has("threads") {
				n.Set("workers", n.Get("threads"))
				n.Remove("threads")
			}
			return nil
		})),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewValidatesInput(t *testing.T) {
	_, err := New[testConfig]("  ")
	require.ErrorIs(t, err, ErrPathRequired)

	_, err = New[int]("x.yaml")
	require.ErrorIs(t, err, ErrNotStruct)

	_, err = New[testConfig]("x.yaml", WithDefaults(func() string { return "" }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaults factory")

	_, err = New[testConfig]("x.yaml", WithDebounce(-time.Second))
	require.Error(t, err)

	_, err = New[testConfig]("x.yaml", WithMigration(1, MigrationFunc(func(*Node) error { return nil })))
	require.Error(t, err)

	_, err = New[testConfig]("x.yaml", WithConverter("", hexColor))
	require.Error(t, err)
}

func TestStoreCodeVersion(t *testing.T) {
	s1, err := New[testConfig]("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, s1.CodeVersion())

	s3, err := New[listenConfig]("b.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, s3.CodeVersion())
	assert.Equal(t, "b.yaml", s3.Path())
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	store, err := New[testConfig](path)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "vortex", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "localhost", cfg.Server.Host)

	node, err := NewFileIO().ReadNode(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "port", "timeout", "server", VersionKey}, node.Keys())
	assert.Equal(t, "5s", node.Get("timeout"))
	assert.Equal(t, 1, node.Get(VersionKey))

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, cfg, current)
}

func TestLoadMergesDefaultsAndKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# My config\n# keep me\nport: 9090\nserver:\n  debug: true\n")

	store, err := New[testConfig](path)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testConfig{
		Name:    "vortex",
		Port:    9090,
		Timeout: 5 * time.Second,
		Server:  testServer{Host: "localhost", Debug: true},
	}, cfg)

	assert.Equal(t, []string{"# My config", "# keep me"}, store.Header())
	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "# My config\n# keep me\n"), content)
	assert.Contains(t, content, "port: 9090")
	assert.Contains(t, content, "host: localhost")
}

func TestLoadWithoutPreserveComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# drop me\nname: x\n")

	store, err := New[testConfig](path, WithPreserveComments(false))
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	assert.Empty(t, store.Header())
	assert.NotContains(t, readFile(t, path), "drop me")
}

func TestLoadWithoutAutoUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := New[testConfig](path, WithAutoUpdate(false))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "vortex", cfg.Name)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadRunsMigrationsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "host: 0.0.0.0\nport: 25565\nthreads: 4\n")

	store, err := New[listenConfig](path, listenMigrations()...)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, listenConfig{Listen: "0.0.0.0:25565", Workers: 4}, cfg)

	node, err := NewFileIO().ReadNode(path)
	require.NoError(t, err)
	assert.Equal(t, 3, node.Get(VersionKey))
	assert.False(t, node.Has("threads"))
}

func TestLoadSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "_config_version: \"2\"\nlisten: a:1\nthreads: 8\n")

	store, err := New[listenConfig](path, listenMigrations()...)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, listenConfig{Listen: "a:1", Workers: 8}, cfg)
}

func TestLoadMigrationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := "listen: x\n"
	writeFile(t, path, original)

	boom := errors.New("boom")
	store, err := New[listenConfig](path, WithMigration(2, MigrationFunc(func(*Node) error { return boom })))
	require.NoError(t, err)

	_, err = store.Load()
	require.ErrorIs(t, err, ErrMigration)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, original, readFile(t, path))

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestLoadFileNewerThanCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "_config_version: 9\nlisten: x\n")

	store, err := New[listenConfig](path, WithAutoUpdate(false))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Listen)
}

func TestLoadFailOnUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "_config_version: 1\nname: x\nbogus: 1\nserver:\n  extra: true\n")

	lenient, err := New[testConfig](path, WithAutoUpdate(false))
	require.NoError(t, err)
	_, err = lenient.Load()
	require.NoError(t, err)

	strict, err := New[testConfig](path, WithFailOnUnknownFields(true))
	require.NoError(t, err)
	_, err = strict.Load()
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "bogus, server.extra")
}

func TestLoadValidationErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "port: abc\nname: custom\n")

	lenient, err := New[testConfig](path, WithAutoUpdate(false))
	require.NoError(t, err)
	cfg, err := lenient.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port, "invalid field keeps its default")
	assert.Equal(t, "custom", cfg.Name)

	strict, err := New[testConfig](path, WithFailOnValidationErrors(true))
	require.NoError(t, err)
	_, err = strict.Load()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Len(t, fe, 1)
	assert.Equal(t, "port", fe[0].Path)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "name: [unterminated\n")

	store, err := New[testConfig](path)
	require.NoError(t, err)
	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestSaveBeforeLoadKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# header\nname: old\n")

	store, err := New[testConfig](path)
	require.NoError(t, err)
	require.NoError(t, store.Save(testConfig{Name: "new", Port: 1}))

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "# header\n"), content)
	assert.Contains(t, content, "name: new")
	assert.Contains(t, content, "_config_version: 1")

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, "new", current.Name)
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := New[testConfig](path)
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	writeFile(t, path, "# new header\nname: edited\n")
	cfg, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, "edited", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"# new header"}, store.Header())
}

func TestFailedReloadKeepsHeaderAndValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# first\nname: good\n")
	store, err := New[testConfig](path, WithFailOnValidationErrors(true))
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	writeFile(t, path, "# second\nname: bad\nport: nope\n")
	_, err = store.Reload()
	require.Error(t, err)
	assert.Equal(t, []string{"# first"}, store.Header())
	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "good", current.Name)

	require.NoError(t, store.Save(current))
	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "# first\n"), content)
	assert.Contains(t, content, "name: good")
}

func TestUpdateWithAutoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := New[testConfig](path, WithAutoSave(true))
	require.NoError(t, err)

	cfg, err := store.Update(func(c *testConfig) error {
		c.Port = 1234
		c.Tags = append(c.Tags, "x")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Port)
	assert.Contains(t, readFile(t, path), "port: 1234")

	before := readFile(t, path)
	_, err = store.Update(func(c *testConfig) error {
		c.Port = 1
		return errors.New("rejected")
	})
	require.Error(t, err)
	current, _ := store.Current()
	assert.Equal(t, 1234, current.Port)
	assert.Equal(t, before, readFile(t, path))
}

func TestUpdateWithoutAutoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := New[testConfig](path, WithAutoUpdate(false))
	require.NoError(t, err)

	cfg, err := store.Update(func(c *testConfig) error { c.Name = "memory"; return nil })
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Name)

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, "memory", current.Name)
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWithDefaultsOverridesDefaulter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := New[testConfig](path, WithAutoUpdate(false), WithDefaults(func() testConfig {
		return testConfig{Name: "factory"}
	}))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "factory", cfg.Name)
	assert.Zero(t, cfg.Port)
}

type climate struct {
	Target celsius
	Accent rgb `config:"accent,converter=hexcolor"`
}

func TestStoreAdapterOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "target: 19C\naccent: '#0000ff'\n")

	store, err := New[climate](path,
		WithTypeAdapter[celsius](celsiusAdapter),
		WithConverter[rgb]("hexcolor", hexColor),
	)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, climate{Target: 19, Accent: rgb{B: 0xff}}, cfg)
	assert.Contains(t, readFile(t, path), "target: 19C")
}
