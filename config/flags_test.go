package config_test

import (
	"testing"

	"github.com/0xalexb/hjarta-conf/config"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagConf struct {
	Port    uint16 `default:"8080"`
	Verbose bool   `config:",optional"`
	Nested  deep
	Labels  map[string]string `config:",optional"`
}

func TestFlagName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "port", config.FlagName("port"))
	assert.Equal(t, "nested.deep-prop", config.FlagName("nested.deep_prop"))
	assert.Equal(t, "max-conns", config.FlagName("maxConns"))
}

func TestBindFlags(t *testing.T) {
	t.Parallel()

	schema := config.MustSchema[flagConf]()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	schema.BindFlags(fs)

	require.NotNil(t, fs.Lookup("port"))
	assert.Contains(t, fs.Lookup("port").Usage, "default 8080")
	require.NotNil(t, fs.Lookup("nested.deep-prop"))
	assert.Nil(t, fs.Lookup("labels"), "maps have no string parser")
	assert.Equal(t, "true", fs.Lookup("verbose").NoOptDefVal)
}

func TestFromFlags(t *testing.T) {
	t.Parallel()

	schema := config.MustSchema[flagConf]()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	schema.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--port=3000", "--nested.deep-prop", "deep", "--verbose"}))

	p, err := schema.FromFlags(fs)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"port":    uint16(3000),
		"verbose": true,
		"nested":  map[string]any{"deep_prop": "deep"},
	}, p.Map())
}

func TestFromFlags_UnchangedFlagsAreAbsent(t *testing.T) {
	t.Parallel()

	schema := config.MustSchema[flagConf]()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	schema.BindFlags(fs)

	require.NoError(t, fs.Parse(nil))

	p, err := schema.FromFlags(fs)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestFromFlags_ParseError(t *testing.T) {
	t.Parallel()

	schema := config.MustSchema[flagConf]()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	schema.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--port=http"}))

	_, err := schema.FromFlags(fs)

	var parseErr *config.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "--port", parseErr.Key)
	assert.Equal(t, "port", parseErr.Field)
}
