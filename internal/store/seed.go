package store

import (
	"time"

	"connectorsync/internal/models"
)

// Seed data written on first load: one admin, three engineers, the five
// standing work categories, and two sample tasks.

func seedUsers() []models.User {
	return []models.User{
		{ID: "u1", Name: "Manager (Admin)", EmployeeID: "ADMIN-001", Role: models.RoleAdmin, AvatarColor: models.AvatarColors[0]},
		{ID: "u2", Name: "Alex Chen", EmployeeID: "ENG-001", Role: models.RoleEngineer, AvatarColor: models.AvatarColors[1]},
		{ID: "u3", Name: "Sarah Lin", EmployeeID: "ENG-002", Role: models.RoleEngineer, AvatarColor: models.AvatarColors[2]},
		{ID: "u4", Name: "Mike Wang", EmployeeID: "ENG-003", Role: models.RoleEngineer, AvatarColor: models.AvatarColors[3]},
	}
}

func seedCategories() []models.Category {
	return []models.Category{
		{ID: "c1", Name: "Mechanical design (ME)"},
		{ID: "c2", Name: "Electronics (EE)"},
		{ID: "c3", Name: "Documentation / admin"},
		{ID: "c4", Name: "Meetings"},
		{ID: "c5", Name: "Test & validation"},
	}
}

func seedTasks(now time.Time) []models.Task {
	today := models.FormatDate(now)
	return []models.Task{
		{
			ID:             "t1",
			UserID:         "u2",
			Title:          "Type-C Gen3 initial design",
			Description:    "Finish pin assignment and first 3D stack-up, confirm impedance matching.",
			ReceiveDate:    today,
			Deadline:       models.FormatDate(now.AddDate(0, 0, 2)),
			StartDate:      today,
			EstimatedHours: 16,
			ActualHours:    4,
			Status:         models.StatusInProgress,
			Logs: []models.TaskLog{
				{ID: "l1", Date: today, Content: "Pin assignment done", HoursSpent: 4},
			},
			Priority:   models.PriorityHigh,
			Phase:      models.PhaseDesign,
			CategoryID: "c1",
		},
		{
			ID:             "t2",
			UserID:         "u3",
			Title:          "Tooling tolerance analysis report",
			Description:    "Review tolerances against last week's trial shots, confirm Cpk values.",
			ReceiveDate:    today,
			Deadline:       today,
			EstimatedHours: 4,
			ActualHours:    0,
			Status:         models.StatusTodo,
			Logs:           []models.TaskLog{},
			Priority:       models.PriorityMedium,
			Phase:          models.PhaseTooling,
			CategoryID:     "c5",
		},
	}
}
