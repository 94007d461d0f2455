package service

import (
	"fmt"
	"time"

	"github.com/dukerupert/homedash/internal/chore"
	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/session"
	"github.com/dukerupert/homedash/internal/validation"
)

type ChoreService struct {
	d Deps
}

func NewChoreService(d Deps) *ChoreService {
	return &ChoreService{d: d.withDefaults()}
}

type CreateChoreInput struct {
	Title            string
	Description      string
	DueDate          time.Time
	AssignedToUserID int64
	PointsValue      int
	Urgency          model.Urgency
}

// Create adds a chore to the session user's household. A zero PointsValue
// takes the default.
func (s *ChoreService) Create(sess *session.Session, in CreateChoreInput) (*model.Chore, error) {
	if err := validation.Length("title", in.Title, 1, 200); err != nil {
		return nil, err
	}
	if err := validation.Length("description", in.Description, 0, 1000); err != nil {
		return nil, err
	}
	if !in.DueDate.After(s.d.Now()) {
		return nil, fault.Validation("due_date", "must be in the future")
	}
	if in.PointsValue != 0 {
		if err := validation.Range("points_value", in.PointsValue, 1, 100); err != nil {
			return nil, err
		}
	}
	urgency, err := parseUrgency(in.Urgency)
	if err != nil {
		return nil, err
	}

	creator, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	if err := s.requireInHousehold(in.AssignedToUserID, creator.HouseholdID); err != nil {
		return nil, err
	}

	c, err := s.d.Chores.Create(&model.Chore{
		Title:            in.Title,
		Description:      in.Description,
		DueDate:          in.DueDate,
		AssignedToUserID: in.AssignedToUserID,
		CreatedByUserID:  creator.ID,
		HouseholdID:      creator.HouseholdID,
		PointsValue:      in.PointsValue,
		Urgency:          urgency,
	})
	if err != nil {
		return nil, fmt.Errorf("create chore: %w", err)
	}
	if err := s.d.Chores.Save(); err != nil {
		return nil, fmt.Errorf("create chore: %w", err)
	}

	s.d.log(sess).Info("chore created", "chore_id", c.ID, "assignee", c.AssignedToUserID, "points", c.PointsValue)
	return c, nil
}

type Completion struct {
	Chore         *model.Chore `json:"chore"`
	PointsAwarded int          `json:"points_awarded"`
	TotalPoints   int          `json:"total_points"`
}

// Complete marks one of the session user's chores done and credits the
// points, with a bonus for finishing early. The chore is saved before the
// points are credited; a failure in between leaves the chore completed
// without the award.
func (s *ChoreService) Complete(sess *session.Session, choreID int64) (*Completion, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	c, err := s.get(choreID)
	if err != nil {
		return nil, err
	}
	if c.IsCompleted {
		return nil, fault.Rule("CHORE_ALREADY_COMPLETED", "this chore has already been completed")
	}
	if c.AssignedToUserID != u.ID {
		return nil, fault.Rule("NOT_ASSIGNED_TO_CHORE", "you are not assigned to complete this chore")
	}

	done, err := s.d.Chores.Complete(c.ID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("complete chore: %w", err)
	}
	if err := s.d.Chores.Save(); err != nil {
		return nil, fmt.Errorf("complete chore: %w", err)
	}
	points := chore.AwardedPoints(*done, *done.CompletedDate)

	credited, err := s.d.Users.AddPoints(u.ID, points)
	if err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}
	if err := s.d.Users.Save(); err != nil {
		return nil, fmt.Errorf("award points: %w", err)
	}
	sess.Refresh(credited)

	s.d.log(sess).Info("chore completed", "chore_id", done.ID, "points", points, "total_points", credited.Points)
	return &Completion{Chore: done, PointsAwarded: points, TotalPoints: credited.Points}, nil
}

// Delete removes a chore. Only admins of the chore's household may do so.
func (s *ChoreService) Delete(sess *session.Session, choreID int64) error {
	admin, err := s.d.admin(sess, "delete chores")
	if err != nil {
		return err
	}
	c, err := s.get(choreID)
	if err != nil {
		return err
	}
	if c.HouseholdID != admin.HouseholdID {
		return fault.Forbidden("delete chores of another household")
	}

	if _, err := s.d.Chores.Delete(choreID); err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	if err := s.d.Chores.Save(); err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}

	s.d.log(sess).Info("chore deleted", "chore_id", choreID)
	return nil
}

// Reassign hands a chore to another member of the same household.
func (s *ChoreService) Reassign(sess *session.Session, choreID, newUserID int64) (*model.Chore, error) {
	admin, err := s.d.admin(sess, "reassign chores")
	if err != nil {
		return nil, err
	}
	c, err := s.get(choreID)
	if err != nil {
		return nil, err
	}
	if c.HouseholdID != admin.HouseholdID {
		return nil, fault.Forbidden("reassign chores of another household")
	}
	if err := s.requireInHousehold(newUserID, c.HouseholdID); err != nil {
		return nil, err
	}

	updated, err := s.d.Chores.Reassign(c.ID, newUserID)
	if err != nil {
		return nil, fmt.Errorf("reassign chore: %w", err)
	}
	if err := s.d.Chores.Save(); err != nil {
		return nil, fmt.Errorf("reassign chore: %w", err)
	}

	s.d.log(sess).Info("chore reassigned", "chore_id", c.ID, "assignee", newUserID)
	return updated, nil
}

func (s *ChoreService) HouseholdChores(sess *session.Session) ([]model.Chore, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	chores, err := s.d.Chores.ListByHousehold(u.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("household chores: %w", err)
	}
	return chores, nil
}

// UserChores lists the chores assigned to the session user.
func (s *ChoreService) UserChores(sess *session.Session) ([]model.Chore, error) {
	u, err := s.d.user(sess)
	if err != nil {
		return nil, err
	}
	chores, err := s.d.Chores.ListByAssignee(u.ID)
	if err != nil {
		return nil, fmt.Errorf("user chores: %w", err)
	}
	return chores, nil
}

// Overdue lists the household's overdue chores and logs a warning for each.
func (s *ChoreService) Overdue(sess *session.Session) ([]model.Chore, error) {
	u, err := s.d.member(sess)
	if err != nil {
		return nil, err
	}
	now := s.d.Now()
	chores, err := s.d.Chores.ListOverdue(u.HouseholdID, now)
	if err != nil {
		return nil, fmt.Errorf("overdue chores: %w", err)
	}

	log := s.d.log(sess)
	for _, c := range chores {
		log.Warn("chore overdue",
			"chore_id", c.ID,
			"title", c.Title,
			"due", c.DueDate.Format(time.DateOnly),
			"days_overdue", chore.DaysOverdue(c, now),
		)
	}
	return chores, nil
}

// Statuses returns the household's chores with their derived status and
// the assignee's display name.
func (s *ChoreService) Statuses(sess *session.Session) ([]chore.ChoreWithStatus, error) {
	chores, err := s.HouseholdChores(sess)
	if err != nil {
		return nil, err
	}
	members, err := s.d.Users.ListByHousehold(sess.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("chore statuses: %w", err)
	}
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	now := s.d.Now()
	out := make([]chore.ChoreWithStatus, 0, len(chores))
	for _, c := range chores {
		out = append(out, chore.ChoreWithStatus{
			Chore:        c,
			Status:       chore.ComputeStatus(c, now),
			AssigneeName: names[c.AssignedToUserID],
		})
	}
	return out, nil
}

func (s *ChoreService) get(id int64) (*model.Chore, error) {
	c, err := s.d.Chores.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	if c == nil {
		return nil, fault.Missing("CHORE_NOT_FOUND", "chore not found")
	}
	return c, nil
}

func (s *ChoreService) requireInHousehold(userID, householdID int64) error {
	u, err := s.d.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("get assignee: %w", err)
	}
	if u == nil {
		return fault.Missing("USER_NOT_FOUND", "assigned user not found")
	}
	if u.HouseholdID != householdID {
		return fault.Rule("USER_NOT_IN_HOUSEHOLD", "assigned user does not belong to the household")
	}
	return nil
}
