package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/api"
	"github.com/ssargent/espkit/pkg/config"
	"github.com/ssargent/espkit/pkg/di"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/plugin/plugintest"
	"github.com/ssargent/espkit/pkg/records"
	"github.com/ssargent/espkit/pkg/storage"
)

// resetFlags restores every flag to its default so one execution does not
// leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	SetContainer(di.NewContainer())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// workspace writes Base.esm and Mod.esp into a data directory and a config
// naming them as the load order.
func workspace(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	dataDir := filepath.Join(dir, "Data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	base := plugintest.New().
		Group(records.KYWDTag, func(g *plugintest.Builder) {
			g.Keyword(0x800, "BaseKeyword")
		}).
		Group(records.GLOBTag, func(g *plugintest.Builder) {
			g.Global(0x801, "BaseGlobal", 2)
		}).
		Bytes()
	mod := plugintest.New("Base.esm").
		Group(records.KYWDTag, func(g *plugintest.Builder) {
			g.Keyword(0x00000800, "OverriddenKeyword")
			g.Keyword(0x01000900, "ModKeyword")
		}).
		Bytes()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Base.esm"), base, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Mod.esp"), mod, 0644))

	c := config.DefaultConfig()
	c.DataDir = dataDir
	c.IndexDir = filepath.Join(dir, "index")
	c.LoadOrder = []string{"Base.esm", "Mod.esp"}
	c.Logging.Level = "error"
	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(c, configPath))
	return dir, configPath
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "espkit.yaml")
	dataDir := filepath.Join(dir, "Data")

	out, err := execute(t, "init", "--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	loaded, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, dataDir, loaded.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "plugins.txt"), loaded.PluginsFile)

	_, err = execute(t, "init", "--config", configPath)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--config", configPath, "--force")
	assert.NoError(t, err)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	c := config.DefaultConfig()
	c.Workers = -1
	require.NoError(t, config.SaveConfig(c, configPath))

	_, err := execute(t, "tags", "--config", configPath)
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = execute(t, "tags", "--config", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "error loading config")
}

func TestTagsCommand(t *testing.T) {
	_, configPath := workspace(t)

	out, err := execute(t, "tags", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "GMST  decoder")
	assert.Contains(t, out, "NPC_  placeholder")
}

func TestMastersCommand(t *testing.T) {
	dir, configPath := workspace(t)

	out, err := execute(t, "masters", "--config", configPath, filepath.Join(dir, "Data", "Mod.esp"))
	require.NoError(t, err)
	assert.Contains(t, out, "Mod.esp")
	assert.Contains(t, out, "00  Base.esm")

	notPlugin := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notPlugin, []byte("GRUP not a plugin header"), 0644))
	_, err = execute(t, "masters", "--config", configPath, notPlugin)
	assert.Error(t, err)
}

func TestDumpCommand(t *testing.T) {
	dir, configPath := workspace(t)
	path := filepath.Join(dir, "Data", "Base.esm")

	t.Run("summary", func(t *testing.T) {
		out, err := execute(t, "dump", "--config", configPath, path)
		require.NoError(t, err)
		assert.Contains(t, out, "Base.esm: 3 records, 0 unknown, 0 failed")
		assert.Contains(t, out, "KYWD")
		assert.Contains(t, out, "GLOB")
	})

	t.Run("json filtered by tag", func(t *testing.T) {
		out, err := execute(t, "dump", "--config", configPath, "--json", "--tag", "glob", path)
		require.NoError(t, err)

		var got dumpOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Records, 1)
		assert.Equal(t, "BaseGlobal", got.Records[0].EditorID)
		assert.Equal(t, formid.ID{Plugin: 0, Local: 0x801}, got.Records[0].FormID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "dump", "--config", configPath, filepath.Join(dir, "Data", "Nope.esp"))
		assert.Error(t, err)
	})
}

func TestLoadIndexGet(t *testing.T) {
	_, configPath := workspace(t)

	out, err := execute(t, "load", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Base.esm")
	assert.Contains(t, out, "Mod.esp")

	out, err = execute(t, "index", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "4 records from 2 plugins")

	t.Run("override wins", func(t *testing.T) {
		out, err := execute(t, "get", "--config", configPath, "Base.esm", "800")
		require.NoError(t, err)

		var e storage.Entry
		require.NoError(t, json.Unmarshal([]byte(out), &e))
		assert.Equal(t, "OverriddenKeyword", e.EditorID)
		assert.Equal(t, "Mod.esp", e.Plugin)
	})

	t.Run("by plugin index", func(t *testing.T) {
		out, err := execute(t, "get", "--config", configPath, "01", "0x900")
		require.NoError(t, err)
		assert.Contains(t, out, "ModKeyword")
	})

	t.Run("not indexed", func(t *testing.T) {
		_, err := execute(t, "get", "--config", configPath, "Mod.esp", "123")
		assert.ErrorContains(t, err, "no record 01:000123")
	})

	t.Run("find by editor id", func(t *testing.T) {
		out, err := execute(t, "find", "--config", configPath, "modkeyword")
		require.NoError(t, err)
		assert.Contains(t, out, "01:000900")
		assert.Contains(t, out, "Mod.esp")

		_, err = execute(t, "find", "--config", configPath, "BaseKeyword")
		assert.ErrorContains(t, err, "no record named")
	})

	t.Run("unknown plugin", func(t *testing.T) {
		_, err := execute(t, "get", "--config", configPath, "Other.esp", "800")
		assert.ErrorContains(t, err, "not in the load order")
	})
}

func TestLoadCommand_MissingPlugin(t *testing.T) {
	_, configPath := workspace(t)

	_, err := execute(t, "load", "--config", configPath, "--load-order", "Base.esm,Missing.esp")
	assert.ErrorContains(t, err, "failed to load plugins")
}

type fakeStarter struct {
	index  api.RecordIndex
	lo     *formid.LoadOrder
	config api.ServerConfig
}

func (f *fakeStarter) StartServer(ctx context.Context, index api.RecordIndex, lo *formid.LoadOrder, config api.ServerConfig) error {
	f.index, f.lo, f.config = index, lo, config
	return nil
}

type fakeFactory struct{ starter *fakeStarter }

func (f fakeFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	_, configPath := workspace(t)

	resetFlags(rootCmd)
	container := di.NewContainer()
	starter := &fakeStarter{}
	container.SetServerFactory(fakeFactory{starter: starter})
	SetContainer(container)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"serve", "--config", configPath, "--port", "9123", "--api-key", "secret", "--cors-origin", "http://localhost:3000"})
	require.NoError(t, rootCmd.Execute())

	assert.NotNil(t, starter.index)
	assert.Equal(t, []string{"Base.esm", "Mod.esp"}, starter.lo.Names())
	assert.Equal(t, api.ServerConfig{
		Port:        9123,
		Bind:        "127.0.0.1",
		APIKey:      "secret",
		CORSOrigins: []string{"http://localhost:3000"},
	}, starter.config)
}
