package service

import (
	"testing"

	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func actor(id uint, role model.UserRole) *util.Claims {
	return &util.Claims{UserID: id, Username: "u", Role: role}
}

func TestCanReadPath(t *testing.T) {
	publicPath := &model.LearningPath{IsPublic: true, CreatorID: 1}
	privatePath := &model.LearningPath{IsPublic: false, CreatorID: 1}

	tests := []struct {
		name  string
		actor *util.Claims
		path  *model.LearningPath
		want  bool
	}{
		{"游客读公开路径", nil, publicPath, true},
		{"游客读私有路径", nil, privatePath, false},
		{"陌生学员读私有路径", actor(2, model.Learner), privatePath, false},
		{"创建者读自己的私有路径", actor(1, model.Instructor), privatePath, true},
		{"管理员读任意私有路径", actor(99, model.Admin), privatePath, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadPath(tt.actor, tt.path))
		})
	}
}

func TestCanWritePath(t *testing.T) {
	path := &model.LearningPath{IsPublic: true, CreatorID: 1}

	tests := []struct {
		name  string
		actor *util.Claims
		want  bool
	}{
		{"游客", nil, false},
		{"创建者", actor(1, model.Instructor), true},
		{"其他讲师", actor(2, model.Instructor), false},
		{"学员", actor(3, model.Learner), false},
		{"管理员", actor(99, model.Admin), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanWritePath(tt.actor, path))
		})
	}
}

func TestCanWriteProgressHasNoAdminBypass(t *testing.T) {
	assert.True(t, CanWriteProgress(actor(5, model.Learner), 5))
	assert.False(t, CanWriteProgress(actor(6, model.Learner), 5))
	// 管理员也不能代写他人进度
	assert.False(t, CanWriteProgress(actor(99, model.Admin), 5))
	assert.False(t, CanWriteProgress(nil, 5))
}

func TestCanReadProgressOf(t *testing.T) {
	path := &model.LearningPath{IsPublic: true, CreatorID: 1}

	tests := []struct {
		name    string
		actor   *util.Claims
		ownerID uint
		want    bool
	}{
		{"本人", actor(5, model.Learner), 5, true},
		{"路径创建者", actor(1, model.Instructor), 5, true},
		{"无关讲师", actor(2, model.Instructor), 5, false},
		{"管理员", actor(99, model.Admin), 5, true},
		{"游客", nil, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadProgressOf(tt.actor, tt.ownerID, path))
		})
	}
}
