package conf_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/0xalexb/hjarta-conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestWithLogLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		level    string
		expected string
	}{
		{name: "debug level", level: "debug", expected: "debug"},
		{name: "warn level", level: "warn", expected: "warn"},
		{name: "empty level", level: "", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var opts conf.Options

			conf.WithLogLevel(testCase.level)(&opts)

			require.Equal(t, testCase.expected, opts.LogLevel)
		})
	}
}

func TestWithModules_Appends(t *testing.T) {
	t.Parallel()

	var opts conf.Options

	conf.WithModules(fx.Options())(&opts)
	conf.WithModules(fx.Options(), fx.Options())(&opts)

	assert.Len(t, opts.Modules, 3)
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var opts conf.Options

	logger := slog.New(slog.DiscardHandler)
	conf.WithLogger(logger)(&opts)

	assert.Same(t, logger, opts.Logger)
}

func TestStageOptions(t *testing.T) {
	t.Parallel()

	var opts conf.Options

	for _, apply := range []conf.Option{
		conf.WithDefaults(),
		conf.WithFile("a.yaml", 0),
		conf.WithOptionalFile("b.yaml", 0),
		conf.WithCode("x: 1", 0),
		conf.WithURL("http://localhost/c.yaml", 0),
		conf.WithEnv("APP_"),
	} {
		apply(&opts)
	}

	names := make([]string, 0, len(opts.Stages))
	for _, stage := range opts.Stages {
		names = append(names, stage.Name)
	}

	assert.Equal(t, []string{
		"defaults",
		"file a.yaml",
		"optional file b.yaml",
		"code",
		"url http://localhost/c.yaml",
		"env APP_",
	}, names)
	assert.Equal(t, []string{"a.yaml"}, opts.Stages[1].Files)
	assert.Equal(t, []string{"b.yaml"}, opts.Stages[2].Files)
	assert.Empty(t, opts.Stages[3].Files)
}

func TestWithStage_Custom(t *testing.T) {
	t.Parallel()

	var applied bool

	_, err := conf.Load[serverConfig](context.Background(),
		conf.WithDefaults(),
		conf.WithStage(conf.Stage{
			Name:  "custom",
			Files: nil,
			Apply: func(_ context.Context, target conf.Target) error {
				applied = true

				return target.Code("port: 1", 0)
			},
		}),
	)
	require.Error(t, err, "a zero format is not inferred for in-memory code")
	assert.True(t, applied)
	assert.Contains(t, err.Error(), "loading custom")
}
