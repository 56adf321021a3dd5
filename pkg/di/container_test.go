package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/api"
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/plugin"
	"github.com/ssargent/espkit/pkg/plugin/plugintest"
)

type fakeServerFactory struct{ started bool }

func (f *fakeServerFactory) CreateServerStarter() api.ServerStarter { return f }

func (f *fakeServerFactory) StartServer(context.Context, api.RecordIndex, *formid.LoadOrder, api.ServerConfig) error {
	f.started = true
	return nil
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()

	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetRegistry())
	assert.NotNil(t, c.GetDecodeMetrics())
	assert.Same(t, plugin.DefaultRegistry(), c.GetPluginRegistry())
	assert.NotNil(t, c.GetServerFactory())

	// Each container owns its registry, so two never collide.
	assert.NotPanics(t, func() { NewContainer() })
}

func TestContainer_SetServerFactory(t *testing.T) {
	c := NewContainer()
	fake := &fakeServerFactory{}
	c.SetServerFactory(fake)

	err := c.GetServerFactory().CreateServerStarter().StartServer(context.Background(), nil, nil, api.ServerConfig{})
	require.NoError(t, err)
	assert.True(t, fake.started)
}

func TestContainer_DecodeOptions(t *testing.T) {
	c := NewContainer()
	data := plugintest.New().Keyword(0x800, "Kw").Record(plugin.NPCTag, 0x801, nil).Bytes()

	f, err := plugin.Decode("Test.esp", data, c.DecodeOptions(true))
	require.NoError(t, err)
	require.Len(t, f.Failures, 1)
	assert.Equal(t, codec.KindNotImplemented, f.Failures[0].Kind())

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "espkit_records_decoded_total")
	assert.Contains(t, names, "espkit_records_failed_total")
}
