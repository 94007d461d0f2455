package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

type Backup struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	SizeBytes    int64        `json:"size_bytes"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Collections  []string     `json:"collections"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedDate  time.Time    `json:"created_date"`
	ModifiedDate *time.Time   `json:"modified_date"`
}

func (b *Backup) EntityID() int64          { return b.ID }
func (b *Backup) SetEntityID(id int64)     { b.ID = id }
func (b *Backup) Created() time.Time       { return b.CreatedDate }
func (b *Backup) SetCreated(t time.Time)   { b.CreatedDate = t }
func (b *Backup) SetModified(t *time.Time) { b.ModifiedDate = t }

func (b *Backup) Clone() Backup {
	c := *b
	if b.Collections != nil {
		c.Collections = append([]string(nil), b.Collections...)
	}
	c.CompletedAt = cloneTime(b.CompletedAt)
	c.ModifiedDate = cloneTime(b.ModifiedDate)
	return c
}
