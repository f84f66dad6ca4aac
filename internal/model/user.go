package model

type UserRole string

const (
	Learner    UserRole = "learner"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username       string   `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email          string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string   `gorm:"size:100;not null" json:"-"`
	Role           UserRole `gorm:"size:20;default:'learner';not null" json:"role"`
	FirstName      string   `gorm:"size:50" json:"firstName"`
	LastName       string   `gorm:"size:50" json:"lastName"`
	ProfilePicture string   `gorm:"size:255" json:"profilePicture"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser 脱敏后的用户信息，用于创建者/学员展示
// swagger:model PublicUser
type PublicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
