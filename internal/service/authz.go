package service

import (
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/util"
)

// 授权判定函数集。全部为纯函数：不触库、不产生副作用，
// 只根据已加载的实体和调用者身份 (id, role) 给出 allow/deny。
// 规则：管理员放行所有读写，唯一例外是改写他人的进度记录；
// 路径/资源的写操作要求调用者为路径创建者；
// 私有路径仅创建者和管理员可读；进度记录的写操作只允许记录所属用户。

// CanReadPath 判定路径（及其资源）是否对调用者可见
// actor 为 nil 表示未认证访问
func CanReadPath(actor *util.Claims, path *model.LearningPath) bool {
	if path.IsPublic {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.UserID == path.CreatorID || actor.Role == model.Admin
}

// CanWritePath 判定调用者能否修改或删除路径及其下属资源
func CanWritePath(actor *util.Claims, path *model.LearningPath) bool {
	if actor == nil {
		return false
	}
	return actor.UserID == path.CreatorID || actor.Role == model.Admin
}

// CanWriteProgress 判定调用者能否写某用户的进度
// 管理员不能代写他人进度，只有记录所属用户本人可写
func CanWriteProgress(actor *util.Claims, ownerID uint) bool {
	if actor == nil {
		return false
	}
	return actor.UserID == ownerID
}

// CanReadProgressOf 判定调用者能否读某用户在某路径上的进度
// 本人可读；路径创建者和管理员可读（讲师督导视图）
func CanReadProgressOf(actor *util.Claims, ownerID uint, path *model.LearningPath) bool {
	if actor == nil {
		return false
	}
	if actor.UserID == ownerID {
		return true
	}
	return actor.UserID == path.CreatorID || actor.Role == model.Admin
}
