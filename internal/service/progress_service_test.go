package service

import (
	"fmt"
	"testing"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 每个测试使用独立的内存库，避免用例间互相污染
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	progress *ProgressService
	paths    *LearningPathService
	res      *ResourceService
	users    *repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	pathService := NewLearningPathService(pathRepo, resourceRepo, nil)
	return &testEnv{
		db:       db,
		progress: NewProgressService(progressRepo, resourceRepo, pathRepo, userRepo, db),
		paths:    pathService,
		res:      NewResourceService(resourceRepo, pathRepo, pathService, db),
		users:    userRepo,
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) createPath(t *testing.T, creator *model.User, isPublic bool) *model.LearningPath {
	t.Helper()
	path := &model.LearningPath{
		Title:      "Go 入门路径",
		Category:   "programming",
		Difficulty: model.Intermediate,
		IsPublic:   isPublic,
		CreatorID:  creator.ID,
	}
	require.NoError(t, e.db.Create(path).Error)
	return path
}

func (e *testEnv) createResource(t *testing.T, pathID uint, title string, order int) *model.Resource {
	t.Helper()
	resource := &model.Resource{
		LearningPathID:       pathID,
		Title:                title,
		Type:                 model.Document,
		URL:                  "https://example.com/" + title,
		EstimatedTimeMinutes: 30,
		Order:                order,
		IsRequired:           true,
	}
	require.NoError(t, e.db.Create(resource).Error)
	return resource
}

func claimsFor(user *model.User) *util.Claims {
	return &util.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func statusPtr(s model.ProgressStatus) *model.ProgressStatus { return &s }
func floatPtr(f float64) *float64                         { return &f }
func intPtr(i int) *int                                   { return &i }

func TestUpsertCreatesRecordOnFirstUpdate(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	progress, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{
		Status: statusPtr(model.InProgress),
	})
	require.NoError(t, err)

	assert.Equal(t, model.InProgress, progress.Status)
	assert.Equal(t, learner.ID, progress.UserID)
	assert.Equal(t, path.ID, progress.LearningPathID)
	assert.NotNil(t, progress.LastAccessedAt)
	assert.Nil(t, progress.CompletedAt)
}

func TestUpsertTimeSpentAccumulates(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)
	actor := claimsFor(learner)

	_, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(10)})
	require.NoError(t, err)

	progress, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(10)})
	require.NoError(t, err)

	// 增量累加而非覆盖
	assert.Equal(t, 20, progress.TimeSpentMinutes)
}

func TestUpsertCompletedStatusForcesFullPercentage(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	progress, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{
		Status: statusPtr(model.Completed),
	})
	require.NoError(t, err)

	assert.Equal(t, model.Completed, progress.Status)
	assert.Equal(t, 100.0, progress.CompletionPercentage)
	assert.NotNil(t, progress.CompletedAt)
}

func TestUpsertFullPercentageForcesCompletedStatus(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	progress, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{
		CompletionPercentage: floatPtr(100),
	})
	require.NoError(t, err)

	assert.Equal(t, model.Completed, progress.Status)
	assert.NotNil(t, progress.CompletedAt)
}

func TestUpsertPartialPercentageMeansInProgress(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	progress, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{
		CompletionPercentage: floatPtr(55),
	})
	require.NoError(t, err)

	assert.Equal(t, model.InProgress, progress.Status)
	assert.Equal(t, 55.0, progress.CompletionPercentage)
	assert.Nil(t, progress.CompletedAt)
}

func TestUpsertCompletedAtIsWrittenOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)
	actor := claimsFor(learner)

	first, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{Status: statusPtr(model.Completed)})
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	firstCompletedAt := *first.CompletedAt

	second, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{Status: statusPtr(model.Completed)})
	require.NoError(t, err)

	// 重复标记完成不刷新完成时间
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, firstCompletedAt.Unix(), second.CompletedAt.Unix())
}

func TestUpsertNotesReplaceAndSurviveOtherUpdates(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)
	actor := claimsFor(learner)

	notes := "第一章笔记"
	_, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{Notes: &notes})
	require.NoError(t, err)

	// 不带 notes 的更新保留已有内容
	progress, err := env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "第一章笔记", progress.Notes)

	replaced := "换成新的笔记"
	progress, err = env.progress.Upsert(actor, actor.UserID, resource.ID, ProgressPatch{Notes: &replaced})
	require.NoError(t, err)
	assert.Equal(t, "换成新的笔记", progress.Notes)
}

func TestUpsertUnknownResourceReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)
	learner := env.createUser(t, "learner1", model.Learner)

	_, err := env.progress.Upsert(claimsFor(learner), learner.ID, 9999, ProgressPatch{TimeSpentMinutes: intPtr(1)})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUpsertPrivatePathDeniedForStranger(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, false)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	_, err := env.progress.Upsert(claimsFor(learner), learner.ID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(1)})
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestUpsertRejectsWritingAnotherUsersProgress(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	admin := env.createUser(t, "admin1", model.Admin)
	path := env.createPath(t, creator, true)
	resource := env.createResource(t, path.ID, "lesson-1", 1)

	// 管理员也不能代写他人进度
	_, err := env.progress.Upsert(claimsFor(admin), learner.ID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(5)})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.progress.Upsert(claimsFor(creator), learner.ID, resource.ID, ProgressPatch{TimeSpentMinutes: intPtr(5)})
	assert.ErrorIs(t, err, util.ErrForbidden)

	// 没有任何记录被写入
	var count int64
	env.db.Model(&model.Progress{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestEnrollIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	env.createResource(t, path.ID, "lesson-1", 1)
	env.createResource(t, path.ID, "lesson-2", 2)
	actor := claimsFor(learner)

	created, err := env.progress.Enroll(actor, path.ID)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	// 在其中一个资源上积累一些进度
	resources, err := env.res.List(repository.ResourceFilter{LearningPathID: path.ID})
	require.NoError(t, err)
	_, err = env.progress.Upsert(actor, actor.UserID, resources[0].ID, ProgressPatch{
		CompletionPercentage: floatPtr(40),
		TimeSpentMinutes:     intPtr(25),
	})
	require.NoError(t, err)

	// 重复报名不重置已有进度，也不新建记录
	created, err = env.progress.Enroll(actor, path.ID)
	require.NoError(t, err)
	assert.Empty(t, created)

	pathProgress, err := env.progress.GetPathProgress(actor, path.ID)
	require.NoError(t, err)
	require.NotNil(t, pathProgress.Resources[0].Progress)
	assert.Equal(t, 40.0, pathProgress.Resources[0].Progress.CompletionPercentage)
	assert.Equal(t, 25, pathProgress.Resources[0].Progress.TimeSpentMinutes)
}

func TestEnrollCoversResourcesAddedLater(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	env.createResource(t, path.ID, "lesson-1", 1)
	actor := claimsFor(learner)

	created, err := env.progress.Enroll(actor, path.ID)
	require.NoError(t, err)
	assert.Len(t, created, 1)

	env.createResource(t, path.ID, "lesson-2", 2)

	created, err = env.progress.Enroll(actor, path.ID)
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, model.NotStarted, created[0].Status)
}

func TestPathProgressUsesDiscreteCompletionRatio(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	r1 := env.createResource(t, path.ID, "lesson-1", 1)
	r2 := env.createResource(t, path.ID, "lesson-2", 2)
	r3 := env.createResource(t, path.ID, "lesson-3", 3)
	env.createResource(t, path.ID, "lesson-4", 4)
	actor := claimsFor(learner)

	_, err := env.progress.Upsert(actor, actor.UserID, r1.ID, ProgressPatch{Status: statusPtr(model.Completed)})
	require.NoError(t, err)
	_, err = env.progress.Upsert(actor, actor.UserID, r2.ID, ProgressPatch{Status: statusPtr(model.Completed)})
	require.NoError(t, err)
	_, err = env.progress.Upsert(actor, actor.UserID, r3.ID, ProgressPatch{CompletionPercentage: floatPtr(50)})
	require.NoError(t, err)

	result, err := env.progress.GetPathProgress(actor, path.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Stats.TotalResources)
	assert.Equal(t, 2, result.Stats.CompletedResources)
	assert.Equal(t, 1, result.Stats.InProgressResources)
	// 2/4=50%：进行中的 50% 不计入分子（不是平均值 62.5%）
	assert.Equal(t, 50.0, result.Stats.OverallCompletionPercentage)
}

func TestPathProgressImplicitNotStartedWithoutRecord(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	r1 := env.createResource(t, path.ID, "lesson-1", 1)
	env.createResource(t, path.ID, "lesson-2", 2)
	actor := claimsFor(learner)

	_, err := env.progress.Upsert(actor, actor.UserID, r1.ID, ProgressPatch{CompletionPercentage: floatPtr(30)})
	require.NoError(t, err)

	result, err := env.progress.GetPathProgress(actor, path.ID)
	require.NoError(t, err)

	require.Len(t, result.Resources, 2)
	assert.NotNil(t, result.Resources[0].Progress)
	// 未更新过的资源不产生记录，只读查询也不落库
	assert.Nil(t, result.Resources[1].Progress)

	var count int64
	env.db.Model(&model.Progress{}).Where("user_id = ?", learner.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPathProgressEmptyPathIsZeroPercent(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)

	result, err := env.progress.GetPathProgress(claimsFor(learner), path.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.TotalResources)
	assert.Equal(t, 0.0, result.Stats.OverallCompletionPercentage)
}

func TestDashboardBucketsPathsByAggregatePercentage(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	actor := claimsFor(learner)

	// 路径1：全部完成
	done := env.createPath(t, creator, true)
	d1 := env.createResource(t, done.ID, "done-1", 1)
	_, err := env.progress.Upsert(actor, actor.UserID, d1.ID, ProgressPatch{Status: statusPtr(model.Completed), TimeSpentMinutes: intPtr(60)})
	require.NoError(t, err)

	// 路径2：部分完成
	partial := env.createPath(t, creator, true)
	p1 := env.createResource(t, partial.ID, "partial-1", 1)
	env.createResource(t, partial.ID, "partial-2", 2)
	_, err = env.progress.Enroll(actor, partial.ID)
	require.NoError(t, err)
	_, err = env.progress.Upsert(actor, actor.UserID, p1.ID, ProgressPatch{Status: statusPtr(model.Completed), TimeSpentMinutes: intPtr(30)})
	require.NoError(t, err)

	// 路径3：已报名但未动工
	idle := env.createPath(t, creator, true)
	env.createResource(t, idle.ID, "idle-1", 1)
	_, err = env.progress.Enroll(actor, idle.ID)
	require.NoError(t, err)

	dashboard, err := env.progress.GetDashboard(learner.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, dashboard.TotalPaths)
	assert.Equal(t, 1, dashboard.CompletedPaths)
	assert.Equal(t, 1, dashboard.InProgressPaths)
	assert.Equal(t, 90, dashboard.TotalTimeSpent)
	assert.Len(t, dashboard.Progress, 3)
}

func TestDashboardOmitsPathsWithoutRecords(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	learner := env.createUser(t, "learner1", model.Learner)
	path := env.createPath(t, creator, true)
	env.createResource(t, path.ID, "lesson-1", 1)

	dashboard, err := env.progress.GetDashboard(learner.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, dashboard.TotalPaths)
	assert.Empty(t, dashboard.Progress)
}

func TestInstructorPathProgressAggregatesPerLearner(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	alice := env.createUser(t, "alice", model.Learner)
	bob := env.createUser(t, "bob", model.Learner)
	path := env.createPath(t, creator, true)
	r1 := env.createResource(t, path.ID, "lesson-1", 1)
	env.createResource(t, path.ID, "lesson-2", 2)

	_, err := env.progress.Upsert(claimsFor(alice), alice.ID, r1.ID, ProgressPatch{Status: statusPtr(model.Completed)})
	require.NoError(t, err)
	_, err = env.progress.Upsert(claimsFor(bob), bob.ID, r1.ID, ProgressPatch{CompletionPercentage: floatPtr(20)})
	require.NoError(t, err)

	_, students, err := env.progress.GetInstructorPathProgress(claimsFor(creator), path.ID)
	require.NoError(t, err)

	require.Len(t, students, 2)
	byName := make(map[string]UserPathProgress)
	for _, s := range students {
		byName[s.User.Username] = s
	}

	// totalResources 取路径资源总数，alice 只有 1 条记录但分母是 2
	assert.Equal(t, 2, byName["alice"].TotalResources)
	assert.Equal(t, 50.0, byName["alice"].OverallCompletionPercentage)
	assert.Equal(t, 0.0, byName["bob"].OverallCompletionPercentage)
	assert.Equal(t, 1, byName["bob"].InProgressResources)
}

func TestInstructorPathProgressDeniedForNonCreator(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	other := env.createUser(t, "instructor2", model.Instructor)
	path := env.createPath(t, creator, true)

	_, _, err := env.progress.GetInstructorPathProgress(claimsFor(other), path.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestInstructorPathProgressAllowedForAdmin(t *testing.T) {
	env := newTestEnv(t)
	creator := env.createUser(t, "instructor1", model.Instructor)
	admin := env.createUser(t, "admin1", model.Admin)
	path := env.createPath(t, creator, true)

	_, students, err := env.progress.GetInstructorPathProgress(claimsFor(admin), path.ID)
	require.NoError(t, err)
	assert.Empty(t, students)
}
