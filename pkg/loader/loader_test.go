package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/plugin"
	"github.com/ssargent/espkit/pkg/plugin/plugintest"
)

func writePlugin(t *testing.T, dir, name string, b *plugintest.Builder) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b.Bytes(), 0o644))
}

func setupLoadOrder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePlugin(t, dir, "Skyrim.esm", plugintest.New().Keyword(0x00000ABC, "BaseKeyword"))
	writePlugin(t, dir, "Update.esm", plugintest.New("Skyrim.esm").Global(0x01000800, "UpdateGlobal", 1))
	writePlugin(t, dir, "Test.esp", plugintest.New("Skyrim.esm", "Update.esm").
		Keyword(0x00000ABC, "OverrideKeyword").
		Keyword(0x01000800, "UpdateRef").
		Keyword(0x02000900, "Mine"))
	return dir
}

func TestLoad(t *testing.T) {
	dir := setupLoadOrder(t)

	testCases := []struct {
		name    string
		workers int
	}{
		{name: "serial", workers: 1},
		{name: "parallel", workers: 3},
		{name: "default", workers: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Load(context.Background(), []string{"Skyrim.esm", "Update.esm", "Test.esp"}, Options{Dir: dir, Workers: tc.workers})
			require.NoError(t, err)
			require.Len(t, res.Files, 3)

			assert.Equal(t, "Skyrim.esm", res.Files[0].Name)
			assert.Equal(t, formid.ID{Plugin: 0, Local: 0xABC}, res.Files[0].Records[1].FormID())
			assert.Equal(t, formid.ID{Plugin: 1, Local: 0x800}, res.Files[1].Records[1].FormID())

			test, ok := res.File("test.esp")
			require.True(t, ok)
			assert.Equal(t, formid.ID{Plugin: 0, Local: 0xABC}, test.Records[1].FormID())
			assert.Equal(t, formid.ID{Plugin: 1, Local: 0x800}, test.Records[2].FormID())
			assert.Equal(t, formid.ID{Plugin: 2, Local: 0x900}, test.Records[3].FormID())
		})
	}
}

func TestLoad_MasterOutsideLoadOrder(t *testing.T) {
	dir := setupLoadOrder(t)

	_, err := Load(context.Background(), []string{"Skyrim.esm", "Test.esp"}, Options{Dir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrUnresolvedMaster)
	assert.Contains(t, err.Error(), "Test.esp")
}

func TestLoad_MissingFile(t *testing.T) {
	dir := setupLoadOrder(t)

	_, err := Load(context.Background(), []string{"Skyrim.esm", "Absent.esp"}, Options{Dir: dir, Workers: 1})
	assert.ErrorIs(t, err, codec.ErrIO)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := setupLoadOrder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, []string{"Skyrim.esm", "Update.esm"}, Options{Dir: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_EmptyLoadOrder(t *testing.T) {
	_, err := Load(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestLoad_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "Test.esp", plugintest.New().
		Keyword(0x800, "Good").
		Record(plugin.CELLTag, 0x801, nil))

	_, err := Load(context.Background(), []string{"Test.esp"}, Options{Dir: dir})
	assert.ErrorIs(t, err, codec.ErrNotImplemented)

	res, err := Load(context.Background(), []string{"Test.esp"}, Options{Dir: dir, ContinueOnError: true})
	require.NoError(t, err)
	assert.Len(t, res.Files[0].Failures, 1)
}

func TestLoad_ManyFiles(t *testing.T) {
	dir := t.TempDir()
	names := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Mod%02d.esp", i)
		writePlugin(t, dir, name, plugintest.New().Keyword(0x800, name))
		names = append(names, name)
	}

	res, err := Load(context.Background(), names, Options{Dir: dir, Workers: 4})
	require.NoError(t, err)
	for i, f := range res.Files {
		assert.Equal(t, names[i], f.Name)
		assert.Equal(t, formid.ID{Plugin: uint32(i), Local: 0x800}, f.Records[1].FormID())
	}
}
