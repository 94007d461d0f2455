package model

import "time"

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username" validate:"required,min=3,max=50"`
	PasswordHash string     `json:"password_hash" validate:"required"`
	Name         string     `json:"name" validate:"required,max=100"`
	Email        string     `json:"email" validate:"required,email"`
	HouseholdID  int64      `json:"household_id" validate:"gte=0"`
	IsAdmin      bool       `json:"is_admin"`
	Points       int        `json:"points" validate:"gte=0"`
	JoinedDate   time.Time  `json:"joined_date"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (u *User) EntityID() int64          { return u.ID }
func (u *User) SetEntityID(id int64)     { u.ID = id }
func (u *User) Created() time.Time       { return u.CreatedDate }
func (u *User) SetCreated(t time.Time)   { u.CreatedDate = t }
func (u *User) SetModified(t *time.Time) { u.ModifiedDate = t }

func (u *User) Clone() User {
	c := *u
	c.ModifiedDate = cloneTime(u.ModifiedDate)
	return c
}
