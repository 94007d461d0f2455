package model

import "time"

// DefaultMaxMembers applies when a household is created without a capacity.
const DefaultMaxMembers = 10

type Household struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name" validate:"required,max=100"`
	Address      string     `json:"address" validate:"max=500"`
	PasswordHash string     `json:"password_hash" validate:"required"`
	MaxMembers   int        `json:"max_members" validate:"min=2,max=50"`
	IsActive     bool       `json:"is_active"`
	CreatedDate  time.Time  `json:"created_date"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (h *Household) EntityID() int64          { return h.ID }
func (h *Household) SetEntityID(id int64)     { h.ID = id }
func (h *Household) Created() time.Time       { return h.CreatedDate }
func (h *Household) SetCreated(t time.Time)   { h.CreatedDate = t }
func (h *Household) SetModified(t *time.Time) { h.ModifiedDate = t }

func (h *Household) Clone() Household {
	c := *h
	c.ModifiedDate = cloneTime(h.ModifiedDate)
	return c
}
