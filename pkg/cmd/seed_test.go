package cmd

import (
	"log/slog"
	"testing"

	"github.com/almflow/workflows/pkg/config"
	"github.com/almflow/workflows/pkg/persistence/file"
	"github.com/almflow/workflows/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySeed_File(t *testing.T) {
	ctx := t.Context()
	p := file.NewPersistence(t.TempDir())

	seed := &config.Seed{
		StandardTypes: testutil.CreateTestStandardTypes(),
		Projects:      testutil.CreateTestProjects(),
		Users:         testutil.CreateTestUsers(),
		Groups:        testutil.CreateTestGroups(),
	}

	require.NoError(t, ApplySeed(ctx, p, seed))

	types, err := p.MetadataRepository().StandardTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types.ArtifactTypes, len(seed.StandardTypes.ArtifactTypes))

	paths, err := p.ProjectRepository().ResolvePaths(ctx, []string{testutil.BetaProjectPath})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, testutil.BetaProjectID, paths[0].ID)

	users, err := p.DirectoryRepository().UsersByName(ctx, []string{"alice"})
	require.NoError(t, err)
	require.Len(t, users, 1)

	groups, err := p.DirectoryRepository().GroupsByName(ctx, []string{"Reviewers"}, true)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestApplySeed_ExampleFile(t *testing.T) {
	ctx := t.Context()
	p := file.NewPersistence(t.TempDir())

	seed, err := config.LoadSeed("../../configs/seed.example.yaml")
	require.NoError(t, err)
	require.NoError(t, ApplySeed(ctx, p, seed))

	ids, err := p.ProjectRepository().ExistingIDs(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestInvalidateMetadataCache_WithoutRedis(t *testing.T) {
	assert.NoError(t, InvalidateMetadataCache(t.Context(), slog.Default(), ""))
}
