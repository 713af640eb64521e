package models

// User represents a user of the application. Accounts originate in Supabase;
// the local row is keyed by the token's subject (UID) and synced from verified
// claims on first contact.
type User struct {
	Model
	UID          string        `json:"uid" gorm:"uniqueIndex;size:128;not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;size:128;not null"`
	Name         string        `json:"name" gorm:"size:128"`
	PhoneNumber  string        `json:"phone_number" gorm:"size:128;default:null"`
	ProfilePhoto string        `json:"profile_photo"`
	DeviceTokens []DeviceToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DeviceToken is an FCM registration token used for push notifications.
type DeviceToken struct {
	Model
	UserID uint   `json:"user_id" gorm:"index;not null"`
	Token  string `json:"token" gorm:"uniqueIndex;size:255;not null"`
}

// UserResponse is the wire shape for a user, shared by the REST surface and
// the realtime channel.
type UserResponse struct {
	ID           uint   `json:"id"`
	UID          string `json:"uid"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profile_photo"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		UID:          u.UID,
		Name:         u.Name,
		Email:        u.Email,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// EditProfileRequest carries the mutable profile fields.
type EditProfileRequest struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	ProfilePhoto string `json:"profile_photo"`
}
