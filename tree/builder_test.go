package tree

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	fld := NewField("Fld")
	sub := NewConfig("sub").AddField(fld).AddGroup(NewGroup("Grp").Add(fld))
	root := NewConfig("root").AddConfig(sub)

	cfg, err := quietBuilder().SetRoot(root).Build()
	require.NoError(t, err)

	got, ok := cfg.Root().Elements()[0].(*Config)
	require.True(t, ok)
	assert.Equal(t, "sub", got.Name())
	assert.Equal(t, "Grp", got.Groups()[0].Name())
}

func TestAddFeederDuplicateName(t *testing.T) {
	b := quietBuilder()
	first := newMapFeeder("test", nil)
	require.NoError(t, b.AddFeeder(first))

	err := b.AddFeeder(newMapFeeder("test", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateFeederName)

	feeders := b.Feeders()
	require.Len(t, feeders, 1)
	assert.Same(t, first, feeders[0])
}

func TestWithFeederDefersError(t *testing.T) {
	f := newMapFeeder("test", nil)
	_, err := quietBuilder().
		WithFeeder(f, newMapFeeder("test", nil)).
		SetRoot(NewConfig("root")).
		Build()
	assert.ErrorIs(t, err, ErrDuplicateFeederName)
	assert.Empty(t, f.calls, "no traversal after a setup error")
}

func TestBuildWithoutRoot(t *testing.T) {
	f := newMapFeeder("test", nil)
	_, err := quietBuilder().WithFeeder(f).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRoot)

	var setupErr *SetupError
	assert.True(t, errors.As(err, &setupErr))
	assert.Empty(t, f.calls)
}

func TestBuildTwice(t *testing.T) {
	root := NewConfig("root")
	b := quietBuilder().SetRoot(root)
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)

	_, err = quietBuilder().SetRoot(root).Build()
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestFrozenTreeRejectsChanges(t *testing.T) {
	root := NewConfig("root")
	_, err := quietBuilder().SetRoot(root).Build()
	require.NoError(t, err)

	root.AddField(NewField("late"))
	assert.ErrorIs(t, root.Err(), ErrInvalidTree)
	assert.Empty(t, root.Elements())
}

func TestBuildReportsCompositionErrors(t *testing.T) {
	sub := NewConfig("sub").AddField(NewField("a")).AddField(NewField("a"))
	root := NewConfig("root").AddConfig(sub)

	f := newMapFeeder("test", nil)
	_, err := quietBuilder().WithFeeder(f).SetRoot(root).Build()
	assert.ErrorIs(t, err, ErrInvalidTree)
	assert.Empty(t, f.calls)
}

func TestBuildRejectsOrphanGroupMembers(t *testing.T) {
	outside := NewField("outside")
	root := NewConfig("root").
		AddField(NewField("inside")).
		AddGroup(NewGroup("grp").Add(outside))

	_, err := quietBuilder().SetRoot(root).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrphanGroupMember)
	assert.Contains(t, err.Error(), "not part of the tree")
}

func TestBuildPopulatesValues(t *testing.T) {
	fld := NewField("second")
	root := NewConfig("first").AddField(fld)

	feeder := newMapFeeder("testing_feeder", map[string]string{
		"feeder_id_1": "11111",
		"feeder_id_2": "22222",
	})
	require.NoError(t, feeder.Bind(root, "feeder_id_1"))
	require.NoError(t, feeder.Bind(fld, "feeder_id_2"))

	b := quietBuilder()
	require.NoError(t, b.AddFeeder(feeder))
	cfg, err := b.SetRoot(root).Build()
	require.NoError(t, err)

	values := cfg.Root().Values()
	require.Len(t, values, 1)
	assert.Equal(t, "testing_feeder", values[0].Feeder())
	assert.Equal(t, uint32(11111), MustParse[uint32](values[0]))

	fieldValues := cfg.Values("second")
	require.Len(t, fieldValues, 1)
	assert.Equal(t, uint16(22222), MustParse[uint16](fieldValues[0]))
	_, err = Parse[uint8](fieldValues[0])
	assert.ErrorIs(t, err, ErrParse)
}

func TestEnvLikeScenario(t *testing.T) {
	fld := NewField("second")
	root := NewConfig("first").AddField(fld)

	env := newMapFeeder("env_test", map[string]string{
		"TEST1": "test1",
		"TEST2": "test2",
		"TEST3": "test3",
	})
	require.NoError(t, env.Bind(root, "TEST2"))
	require.NoError(t, env.Bind(fld, "TEST3", "TEST1", "TEST4"))

	cfg, err := quietBuilder().WithFeeder(env).SetRoot(root).Build()
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"env_test", "test2"}}, pairs(cfg.Values()))
	assert.Equal(t, [][2]string{{"env_test", "test3"}, {"env_test", "test1"}}, pairs(cfg.Values("second")))
}

func TestFeederOrderThenMatchOrder(t *testing.T) {
	fld := NewField("port")
	root := NewConfig("app").AddField(fld)

	first := newMapFeeder("first", map[string]string{"a": "1", "b": "2"})
	second := newMapFeeder("second", map[string]string{"c": "3"})
	require.NoError(t, second.Bind(fld, "c"))
	require.NoError(t, first.Bind(fld, "b", "a"))

	cfg, err := quietBuilder().WithFeeder(first, second).SetRoot(root).Build()
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"first", "2"}, {"first", "1"}, {"second", "3"}}, pairs(cfg.Values("port")))
}

func TestConfigurationLookupAndWalk(t *testing.T) {
	root := NewConfig("app").
		AddConfig(NewConfig("db").AddField(NewField("dsn"))).
		AddField(NewField("name"))

	cfg, err := quietBuilder().SetRoot(root).Build()
	require.NoError(t, err)

	el, ok := cfg.Lookup("db", "dsn")
	require.True(t, ok)
	assert.Equal(t, "dsn", el.Name())

	_, ok = cfg.Lookup("db", "dsn", "deeper")
	assert.False(t, ok)
	_, ok = cfg.Lookup("nope")
	assert.False(t, ok)
	assert.Nil(t, cfg.Values("nope"))

	var visited []string
	err = cfg.Walk(func(path []string, el Element) error {
		visited = append(visited, strings.Join(path, "."))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "app.db", "app.db.dsn", "app.name"}, visited)

	stop := fmt.Errorf("stop")
	count := 0
	err = cfg.Walk(func(path []string, el Element) error {
		count++
		if len(path) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}
