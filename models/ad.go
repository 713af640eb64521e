package models

import "time"

// AdType is a seeded category for service ads (photography, web design, ...).
type AdType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;uniqueIndex" json:"name"`
	Icon string `json:"icon"`
}

// Ad is a service advertisement posted by a user. Location, tags and skills
// are comma-separated free text kept indexed for filtered search.
type Ad struct {
	Model
	Title          string `json:"title" gorm:"size:200;index;not null" binding:"required,min=2"`
	Description    string `json:"description" binding:"required"`
	IsAvailableNow bool   `json:"is_available_now" gorm:"index;default:false"`
	AdTypeID       uint   `json:"ad_type" gorm:"index;not null"`
	AdType         AdType `json:"-" gorm:"foreignKey:AdTypeID"`
	IsActive       bool   `json:"is_active" gorm:"default:true"`
	Cost           string `json:"cost" gorm:"size:200" binding:"required"`
	Photo1         string `json:"photo_1"`
	Photo2         string `json:"photo_2"`
	Photo3         string `json:"photo_3"`
	Location       string `json:"location" gorm:"size:200;index"`
	Tags           string `json:"tags" gorm:"size:200;index"`
	Skills         string `json:"skills" gorm:"size:200"`
	UserID         uint   `json:"-" gorm:"index;not null"`
	User           User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// AdResponse is the wire shape for an ad.
type AdResponse struct {
	ID             uint         `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	IsAvailableNow bool         `json:"is_available_now"`
	AdType         string       `json:"ad_type"`
	IsActive       bool         `json:"is_active"`
	Cost           string       `json:"cost"`
	Photo1         string       `json:"photo_1"`
	Photo2         string       `json:"photo_2"`
	Photo3         string       `json:"photo_3"`
	Location       string       `json:"location"`
	Tags           string       `json:"tags"`
	Skills         string       `json:"skills"`
	User           UserResponse `json:"user"`
	CreatedAt      time.Time    `json:"created_at"`
}

func NewAdResponse(ad *Ad) AdResponse {
	return AdResponse{
		ID:             ad.ID,
		Title:          ad.Title,
		Description:    ad.Description,
		IsAvailableNow: ad.IsAvailableNow,
		AdType:         ad.AdType.Name,
		IsActive:       ad.IsActive,
		Cost:           ad.Cost,
		Photo1:         ad.Photo1,
		Photo2:         ad.Photo2,
		Photo3:         ad.Photo3,
		Location:       ad.Location,
		Tags:           ad.Tags,
		Skills:         ad.Skills,
		User:           NewUserResponse(&ad.User),
		CreatedAt:      ad.CreatedAt,
	}
}

// AdFilter narrows ad listings; zero values mean "no constraint".
type AdFilter struct {
	Location      string
	AdTypeID      uint
	Tag           string
	OnlyAvailable bool
	IncludeClosed bool
	OwnerID       uint
}
