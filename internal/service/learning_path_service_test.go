package service

import (
	"testing"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePathAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)

	path, err := env.paths.Create(creator.ID, CreatePathRequest{Title: "数据结构"})
	require.NoError(t, err)

	assert.Equal(t, model.Intermediate, path.Difficulty)
	assert.True(t, path.IsPublic)
	assert.Equal(t, creator.ID, path.CreatorID)
}

func TestGetPrivatePathVisibility(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	stranger := env.createUser(t, "learner1", model.Learner)
	admin := env.createUser(t, "admin1", model.Admin)
	path := env.createPath(t, creator, false)

	_, err := env.paths.Get(nil, path.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.paths.Get(claimsFor(stranger), path.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.paths.Get(claimsFor(creator), path.ID)
	assert.NoError(t, err)

	_, err = env.paths.Get(claimsFor(admin), path.ID)
	assert.NoError(t, err)
}

func TestGetPathSumsResourceMinutes(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	path := env.createPath(t, creator, true)
	env.createResource(t, path.ID, "lesson-1", 1)
	env.createResource(t, path.ID, "lesson-2", 2)

	detail, err := env.paths.Get(nil, path.ID)
	require.NoError(t, err)

	assert.Equal(t, 60, detail.TotalEstimatedMinutes)
	assert.Len(t, detail.Resources, 2)
}

func TestUpdatePathPartialFields(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	path := env.createPath(t, creator, true)

	title := "重构后的标题"
	isPublic := false
	updated, err := env.paths.Update(claimsFor(creator), path.ID, UpdatePathRequest{
		Title:    &title,
		IsPublic: &isPublic,
	})
	require.NoError(t, err)

	assert.Equal(t, "重构后的标题", updated.Title)
	assert.False(t, updated.IsPublic)
	// 未提供的字段保持不变
	assert.Equal(t, "programming", updated.Category)
}

func TestUpdatePathDeniedForNonCreator(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	other := env.createUser(t, "instructor2", model.Instructor)
	path := env.createPath(t, creator, true)

	title := "hijack"
	_, err := env.paths.Update(claimsFor(other), path.ID, UpdatePathRequest{Title: &title})
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestDeletePathCascadesResourcesAndProgress(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	_, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{
		CompletionPercentage: floatPtr(50),
	})
	require.NoError(t, err)

	require.NoError(t, env.paths.Delete(claimsFor(creator), path.ID))

	_, err = env.paths.Get(claimsFor(creator), path.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	var resourceCount, progressCount int64
	env.db.Model(&model.Resource{}).Where("learning_path_id = ?", path.ID).Count(&resourceCount)
	env.db.Model(&model.Progress{}).Where("learning_path_id = ?", path.ID).Count(&progressCount)
	assert.Equal(t, int64(0), resourceCount)
	assert.Equal(t, int64(0), progressCount)
}

func TestListPublicExcludesPrivatePaths(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	env.createPath(t, creator, true)
	env.createPath(t, creator, false)

	paths, err := env.paths.ListPublic(repository.PathFilter{})
	require.NoError(t, err)
	assert.Len(t, paths, 1)
	assert.True(t, paths[0].IsPublic)
}

func TestListPublicFilters(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)

	_, err := env.paths.Create(creator.ID, CreatePathRequest{Title: "Go 并发编程", Category: "programming", Difficulty: "advanced"})
	require.NoError(t, err)
	_, err = env.paths.Create(creator.ID, CreatePathRequest{Title: "素描入门", Category: "art", Difficulty: "beginner"})
	require.NoError(t, err)

	paths, err := env.paths.ListPublic(repository.PathFilter{Category: "art"})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "素描入门", paths[0].Title)

	paths, err = env.paths.ListPublic(repository.PathFilter{Difficulty: "advanced"})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	paths, err = env.paths.ListPublic(repository.PathFilter{Search: "并发"})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "Go 并发编程", paths[0].Title)
}
