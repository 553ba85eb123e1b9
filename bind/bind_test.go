package bind

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cfgtree/logger"
	"github.com/goliatone/go-cfgtree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed appends values to nodes by name, in the order given.
func feed(name string, values map[string][]string) tree.Feeder {
	return tree.FeederFunc(name, func(n tree.Node) error {
		for _, raw := range values[n.Name()] {
			n.Append(name, raw)
		}
		return nil
	})
}

func sample(t *testing.T, feeders ...tree.Feeder) *tree.Configuration {
	t.Helper()
	root := tree.NewConfig("app").
		AddField(tree.NewField("name")).
		AddField(tree.NewField("port")).
		AddField(tree.NewField("hosts")).
		AddField(tree.NewField("wait")).
		AddConfig(tree.NewConfig("database").
			AddField(tree.NewField("dsn")).
			AddField(tree.NewField("unset")))
	cfg, err := tree.NewBuilder(tree.WithLogger(logger.Nop{})).
		WithFeeder(feeders...).
		SetRoot(root).
		Build()
	require.NoError(t, err)
	return cfg
}

type database struct {
	DSN string `koanf:"dsn"`
}

type app struct {
	Name     string        `koanf:"name"`
	Port     int           `koanf:"port"`
	Hosts    []string      `koanf:"hosts"`
	Wait     time.Duration `koanf:"wait"`
	Database database      `koanf:"database"`
}

func twoFeeders() []tree.Feeder {
	return []tree.Feeder{
		feed("defaults", map[string][]string{
			"name": {"base"},
			"port": {"80"},
			"dsn":  {"sqlite://"},
		}),
		feed("env", map[string][]string{
			"port":  {"8080"},
			"hosts": {"a,b"},
			"wait":  {"1500ms"},
		}),
	}
}

func TestMap(t *testing.T) {
	cfg := sample(t, twoFeeders()...)

	assert.Equal(t, map[string]any{
		"name":     "base",
		"port":     "8080",
		"hosts":    "a,b",
		"wait":     "1500ms",
		"database": map[string]any{"dsn": "sqlite://"},
	}, Map(cfg, Last))

	assert.Equal(t, "80", Map(cfg, First)["port"])
	assert.Equal(t, []string{"80", "8080"}, Map(cfg, All)["port"])
	assert.Empty(t, Map(nil, Last))
}

func TestKoanf(t *testing.T) {
	cfg := sample(t, twoFeeders()...)
	k, err := Koanf(cfg, Last)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://", k.String("database.dsn"))
	assert.Equal(t, 8080, k.Int("port"))
	assert.False(t, k.Exists("database.unset"))
}

func TestDecode(t *testing.T) {
	cfg := sample(t, twoFeeders()...)

	cases := []struct {
		name string
		opts []Option[app]
		want app
	}{
		{
			name: "last value wins",
			want: app{
				Name:     "base",
				Port:     8080,
				Hosts:    []string{"a", "b"},
				Wait:     1500 * time.Millisecond,
				Database: database{DSN: "sqlite://"},
			},
		},
		{
			name: "first value wins",
			opts: []Option[app]{WithSelect[app](First)},
			want: app{
				Name:     "base",
				Port:     80,
				Hosts:    []string{"a", "b"},
				Wait:     1500 * time.Millisecond,
				Database: database{DSN: "sqlite://"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(cfg, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeSliceCollectsEveryValue(t *testing.T) {
	cfg := sample(t,
		feed("file", map[string][]string{"hosts": {"x"}}),
		feed("flag", map[string][]string{"hosts": {"y", "z"}}),
	)
	got, err := Decode[app](cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, got.Hosts)
}

func TestDecodeDefaults(t *testing.T) {
	cfg := sample(t, feed("env", map[string][]string{"port": {"9000"}}))
	defaults := app{Name: "fallback", Hosts: []string{"localhost"}}

	got, err := Decode(cfg, WithDefaults(defaults))
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.Name)
	assert.Equal(t, 9000, got.Port)
	assert.Equal(t, []string{"localhost"}, got.Hosts)

	got.Hosts[0] = "changed"
	assert.Equal(t, "localhost", defaults.Hosts[0], "defaults are cloned")
}

func TestDecodePointer(t *testing.T) {
	cfg := sample(t, twoFeeders()...)
	got, err := Decode[*app](cfg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8080, got.Port)
}

func TestDecodeStages(t *testing.T) {
	cfg := sample(t, twoFeeders()...)
	boom := errors.New("boom")

	cases := []struct {
		name  string
		cfg   *tree.Configuration
		opts  []Option[app]
		stage string
		base  error
	}{
		{
			name:  "snapshot",
			cfg:   nil,
			stage: stageSnapshot,
			base:  ErrSnapshot,
		},
		{
			name: "defaults",
			cfg:  cfg,
			opts: []Option[app]{WithDefaultFunc(func() (app, error) {
				return app{}, boom
			})},
			stage: stageDefaults,
			base:  ErrDefaults,
		},
		{
			name: "validate",
			cfg:  cfg,
			opts: []Option[app]{WithValidator(func(a *app) error {
				if a.Port < 10000 {
					return boom
				}
				return nil
			})},
			stage: stageValidate,
			base:  ErrValidate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.cfg, tc.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.base)

			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.stage, se.Stage)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("type mismatch", func(t *testing.T) {
		cfg := sample(t, feed("env", map[string][]string{"port": {"not-a-port"}}))
		_, err := Decode[app](cfg)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("strict keys", func(t *testing.T) {
		type partial struct {
			Port int `koanf:"port"`
		}
		cfg := sample(t, twoFeeders()...)
		_, err := Decode(cfg, WithStrictKeys[partial]())
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("second validator", func(t *testing.T) {
		cfg := sample(t, twoFeeders()...)
		noop := func(*app) error { return nil }
		_, err := Decode(cfg, WithValidator(noop), WithValidator(noop))
		assert.ErrorIs(t, err, ErrOption)
	})
}

func TestDecodeTagName(t *testing.T) {
	type renamed struct {
		Port int `cfg:"port"`
	}
	cfg := sample(t, twoFeeders()...)
	got, err := Decode(cfg, WithTagName[renamed]("cfg"))
	require.NoError(t, err)
	assert.Equal(t, 8080, got.Port)
}

func TestDecodeReadsIntegersInBase10(t *testing.T) {
	cfg := sample(t, feed("env", map[string][]string{"port": {"0800"}}))
	got, err := Decode[app](cfg)
	require.NoError(t, err)
	assert.Equal(t, 800, got.Port)

	cfg = sample(t, feed("env", map[string][]string{"port": {"0x1f"}}))
	_, err = Decode[app](cfg)
	assert.ErrorIs(t, err, ErrDecode)
}
