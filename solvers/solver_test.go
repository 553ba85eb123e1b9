package solvers

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, values map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(values, "."), nil))
	return k
}

func TestVariables(t *testing.T) {
	k := load(t, map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
		},
		"addr":    "${server.host}:${server.port}",
		"port":    "${server.port}",
		"missing": "${server.nope}",
		"broken":  "${server.host",
	})

	require.NoError(t, NewVariables("${", "}").Solve(k))

	assert.Equal(t, "localhost:8080", k.String("addr"))
	assert.Equal(t, 8080, k.Get("port"))
	assert.Equal(t, "${server.nope}", k.String("missing"))
	assert.Equal(t, "${server.host", k.String("broken"))
}

func TestVariablesFollowChains(t *testing.T) {
	for i := 0; i < 50; i++ {
		k := load(t, map[string]any{
			"a":      "${b}",
			"b":      "${c}",
			"c":      "x",
			"d":      "${a}",
			"joined": "${a}-${d}",
		})

		require.NoError(t, NewVariables("${", "}").Solve(k))

		assert.Equal(t, "x", k.String("a"))
		assert.Equal(t, "x", k.String("b"))
		assert.Equal(t, "x", k.String("d"))
		assert.Equal(t, "x-x", k.String("joined"))
	}
}

func TestVariablesLeaveCyclesUntouched(t *testing.T) {
	k := load(t, map[string]any{
		"a":    "${b}",
		"b":    "${a}",
		"self": "pre-${self}",
		"ok":   "${c}",
		"c":    "fine",
	})

	require.NoError(t, NewVariables("${", "}").Solve(k))

	assert.Equal(t, "${b}", k.String("a"))
	assert.Equal(t, "${a}", k.String("b"))
	assert.Equal(t, "pre-${self}", k.String("self"))
	assert.Equal(t, "fine", k.String("ok"))
}

func TestExpressions(t *testing.T) {
	k := load(t, map[string]any{
		"app": map[string]any{
			"env":  "development",
			"name": "MyApp",
		},
		"debug":    `{{ app.env == "development" }}`,
		"label":    `{{ app.name + "-" + app.env }}`,
		"sum":      "{{ 1 + 2 }}",
		"embedded": "prefix {{ 1 + 1 }}",
	})

	require.NoError(t, NewExpressions("{{", "}}").Solve(k))

	assert.Equal(t, true, k.Get("debug"))
	assert.Equal(t, "MyApp-development", k.Get("label"))
	assert.EqualValues(t, 3, k.Get("sum"))
	assert.Equal(t, "prefix {{ 1 + 1 }}", k.Get("embedded"))
}

func TestExpressionErrorHandlers(t *testing.T) {
	t.Run("leave unchanged", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}"})
		require.NoError(t, NewExpressions("", "").Solve(k))
		assert.Equal(t, "{{ }}", k.Get("bad"))
	})

	t.Run("remove", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}", "ok": "{{ 1 + 1 }}"})
		require.NoError(t, NewExpressions("{{", "}}", WithEvalErrorHandler(Remove())).Solve(k))
		assert.False(t, k.Exists("bad"))
		assert.EqualValues(t, 2, k.Get("ok"))
	})

	t.Run("fail", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}"})
		err := NewExpressions("{{", "}}", WithEvalErrorHandler(Fail())).Solve(k)
		var evalErr *EvalError
		require.True(t, errors.As(err, &evalErr))
		assert.Equal(t, "bad", evalErr.Key)
	})
}

func TestURIs(t *testing.T) {
	fsys := fstest.MapFS{
		"secrets/token": &fstest.MapFile{Data: []byte("s3cr3t\n")},
	}
	k := load(t, map[string]any{
		"token":   "@file://secrets/token",
		"decoded": "@base64://aGVsbG8=",
		"absent":  "@file://secrets/none",
		"other":   "@ftp://host",
		"plain":   "value",
	})

	require.NoError(t, NewURIs("@", "://", fsys).Solve(k))

	assert.Equal(t, "s3cr3t", k.String("token"))
	assert.Equal(t, "hello", k.String("decoded"))
	assert.Equal(t, "@file://secrets/none", k.String("absent"))
	assert.Equal(t, "@ftp://host", k.String("other"))
	assert.Equal(t, "value", k.String("plain"))
}

func TestRunRepeatsUntilStable(t *testing.T) {
	k := load(t, map[string]any{
		"a": "${b}",
		"b": "${c}",
		"c": "final",
	})
	require.NoError(t, Run(k, 5, Default()...))
	assert.Equal(t, "final", k.String("a"))
	assert.Equal(t, "final", k.String("b"))
}

func TestRunStopsOnSolverError(t *testing.T) {
	k := load(t, map[string]any{"a": "1"})
	boom := errors.New("boom")
	calls := 0
	err := Run(k, 3, SolverFunc(func(*koanf.Koanf) error {
		calls++
		return boom
	}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Run(nil, 3, NewVariables("${", "}")))
}
