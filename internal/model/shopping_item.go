package model

import "time"

type ShoppingItem struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name" validate:"required,max=200"`
	Category        string     `json:"category" validate:"required,max=50"`
	Price           float64    `json:"price" validate:"gte=0,lte=10000"`
	Urgency         Urgency    `json:"urgency" validate:"urgency"`
	CreatedByUserID int64      `json:"created_by_user_id"`
	HouseholdID     int64      `json:"household_id"`
	IsPurchased     bool       `json:"is_purchased"`
	PurchasedDate   *time.Time `json:"purchased_date"`
	CreatedDate     time.Time  `json:"created_date"`
	ModifiedDate    *time.Time `json:"modified_date"`
}

func (i *ShoppingItem) EntityID() int64          { return i.ID }
func (i *ShoppingItem) SetEntityID(id int64)     { i.ID = id }
func (i *ShoppingItem) Created() time.Time       { return i.CreatedDate }
func (i *ShoppingItem) SetCreated(t time.Time)   { i.CreatedDate = t }
func (i *ShoppingItem) SetModified(t *time.Time) { i.ModifiedDate = t }

func (i *ShoppingItem) Clone() ShoppingItem {
	c := *i
	c.PurchasedDate = cloneTime(i.PurchasedDate)
	c.ModifiedDate = cloneTime(i.ModifiedDate)
	return c
}
