// Package notify derives notification items from a task snapshot. It holds
// no state: callers re-derive from the current snapshot whenever they
// render.
package notify

import (
	"fmt"
	"sort"
	"time"

	"connectorsync/internal/models"
)

type Type string

const (
	TypeOverdue          Type = "OVERDUE"
	TypeDueSoon          Type = "DUE_SOON"
	TypeReviewNeeded     Type = "REVIEW_NEEDED"
	TypeTransferReceived Type = "TRANSFER_RECEIVED"
)

// Item is one derived notification.
type Item struct {
	Type    Type
	TaskID  string
	OwnerID string // the task's current owner
	Message string

	// UserName names the previous owner on TRANSFER_RECEIVED items.
	UserName string
}

// typeOrder fixes the grouping order of the derived list.
var typeOrder = []Type{TypeOverdue, TypeDueSoon, TypeReviewNeeded, TypeTransferReceived}

// Derive computes the notification set for the given tasks. Items are
// grouped by type and ordered by task id within a group. dueSoonDays is the
// lookahead window for DUE_SOON: a task due within that many days of now,
// but not yet overdue, is flagged.
func Derive(tasks []models.Task, users []models.User, now time.Time, dueSoonDays int) []Item {
	today := dayOf(now)
	horizon := today.AddDate(0, 0, dueSoonDays)

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	grouped := make(map[Type][]Item)
	add := func(item Item) {
		grouped[item.Type] = append(grouped[item.Type], item)
	}

	for _, t := range tasks {
		if deadline, err := models.ParseDate(t.Deadline); err == nil && t.Status != models.StatusDone {
			switch {
			case deadline.Before(today):
				add(Item{
					Type:    TypeOverdue,
					TaskID:  t.ID,
					OwnerID: t.UserID,
					Message: fmt.Sprintf("Overdue: %s (due %s)", t.Title, t.Deadline),
				})
			case !deadline.After(horizon):
				add(Item{
					Type:    TypeDueSoon,
					TaskID:  t.ID,
					OwnerID: t.UserID,
					Message: fmt.Sprintf("Due soon: %s (due %s)", t.Title, t.Deadline),
				})
			}
		}

		if t.Status == models.StatusReview {
			add(Item{
				Type:    TypeReviewNeeded,
				TaskID:  t.ID,
				OwnerID: t.UserID,
				Message: fmt.Sprintf("Waiting for review: %s", t.Title),
			})
		}

		if t.TransferredFrom != "" {
			fromName := names[t.TransferredFrom]
			if fromName == "" {
				fromName = t.TransferredFrom
			}
			add(Item{
				Type:     TypeTransferReceived,
				TaskID:   t.ID,
				OwnerID:  t.UserID,
				UserName: fromName,
				Message:  fmt.Sprintf("Transferred from %s: %s", fromName, t.Title),
			})
		}
	}

	var items []Item
	for _, typ := range typeOrder {
		group := grouped[typ]
		sort.Slice(group, func(i, j int) bool { return group[i].TaskID < group[j].TaskID })
		items = append(items, group...)
	}
	return items
}

// ForUser filters items down to what the given user should see: admins get
// everything, engineers get items on their own tasks.
func ForUser(items []Item, user models.User) []Item {
	if user.Role == models.RoleAdmin {
		return items
	}
	var out []Item
	for _, item := range items {
		if item.OwnerID == user.ID {
			out = append(out, item)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
