package model

import "time"

// DefaultChorePoints applies when a chore is stored without a points value.
const DefaultChorePoints = 10

type Chore struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title" validate:"required,max=200"`
	Description      string     `json:"description" validate:"max=1000"`
	DueDate          time.Time  `json:"due_date"`
	AssignedToUserID int64      `json:"assigned_to_user_id"`
	CreatedByUserID  int64      `json:"created_by_user_id"`
	HouseholdID      int64      `json:"household_id"`
	PointsValue      int        `json:"points_value" validate:"min=1,max=100"`
	Urgency          Urgency    `json:"urgency" validate:"urgency"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedDate    *time.Time `json:"completed_date"`
	CreatedDate      time.Time  `json:"created_date"`
	ModifiedDate     *time.Time `json:"modified_date"`
}

func (c *Chore) EntityID() int64          { return c.ID }
func (c *Chore) SetEntityID(id int64)     { c.ID = id }
func (c *Chore) Created() time.Time       { return c.CreatedDate }
func (c *Chore) SetCreated(t time.Time)   { c.CreatedDate = t }
func (c *Chore) SetModified(t *time.Time) { c.ModifiedDate = t }

func (c *Chore) Clone() Chore {
	out := *c
	out.CompletedDate = cloneTime(c.CompletedDate)
	out.ModifiedDate = cloneTime(c.ModifiedDate)
	return out
}
