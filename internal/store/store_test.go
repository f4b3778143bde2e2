package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
	"github.com/MrLongNight/MapFlow-sub000/flow/mapping"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "mapflow.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleModule(id graph.ModuleID) *graph.Module {
	m := graph.NewModule(id, "scene")
	trig := m.AddPart(graph.TriggerAudioFFT{
		Outputs: graph.AudioTriggerOutputConfig{VolumeOutputs: true},
	}, graph.Vec2{X: 10, Y: 20})
	fx := m.AddPart(graph.NewEffect(graph.EffectPixelate), graph.Vec2{X: 200})

	m.AddConnection(trig, 1, fx, 1)
	m.SetMapping(fx, 1, mapping.ForTarget(mapping.Target{Kind: mapping.TargetOpacity}))

	return m
}

func TestSaveAndLoadModule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	m := sampleModule(3)
	require.NoError(t, s.SaveModule(ctx, m))

	got, err := s.LoadModule(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Connections(), got.Connections())
	assert.Equal(t, m.NextPartID(), got.NextPartID())
	require.Len(t, got.Parts(), 2)
	assert.Equal(t, m.Parts()[0].Outputs(), got.Parts()[0].Outputs())

	cfg, ok := got.Mapping(2, 1)
	require.True(t, ok)
	assert.Equal(t, mapping.TargetOpacity, cfg.Target.Kind)

	// Saving again replaces the row.
	m.Name = "renamed"
	require.NoError(t, s.SaveModule(ctx, m))

	list, err := s.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Name)
}

func TestLoadMissingModule(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	_, err := s.LoadModule(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteModule(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stamp := time.UnixMilli(1_700_000_000_000)
	s := openTestStore(t, WithClock(func() time.Time { return stamp }))

	require.NoError(t, s.SaveModule(ctx, sampleModule(2)))
	require.NoError(t, s.SaveModule(ctx, graph.NewModule(1, "empty")))

	list, err := s.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, graph.ModuleID(1), list[0].ID)
	assert.Equal(t, 0, list[0].Parts)
	assert.Equal(t, graph.ModuleID(2), list[1].ID)
	assert.Equal(t, 2, list[1].Parts)
	assert.True(t, stamp.Equal(list[1].UpdatedAt))

	require.NoError(t, s.DeleteModule(ctx, 1))

	list, err = s.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSaveAllLoadAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	mg := graph.NewManager()
	a := mg.CreateModule("intro")
	b := mg.CreateModule("drop")
	mg.CreateModule("outro")
	mg.DeleteModule(3)

	_, ok := mg.AddPartToModule(a, graph.CategoryTrigger, graph.Vec2{})
	require.True(t, ok)

	// A stale module from an earlier save must disappear.
	require.NoError(t, s.SaveModule(ctx, graph.NewModule(9, "stale")))
	require.NoError(t, s.SaveAll(ctx, mg))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	assert.Equal(t, graph.ModuleID(4), got.NextModuleID())
	assert.Equal(t, 3, got.NextColorIndex())

	ma, ok := got.Module(a)
	require.True(t, ok)
	assert.Len(t, ma.Parts(), 1)
	assert.Equal(t, graph.Palette[0], ma.Color)

	mb, ok := got.Module(b)
	require.True(t, ok)
	assert.Equal(t, "drop", mb.Name)

	assert.Equal(t, graph.ModuleID(4), got.CreateModule("next"))
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mapflow.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveModule(ctx, sampleModule(1)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())

	m, err := s.LoadModule(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, m.Parts(), 2)
}

func TestSchemaVersionMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mapflow.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.setMeta(ctx, s.db, "schema_version", "99"))
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.ErrorIs(t, err, ErrSchemaVersion)
}
