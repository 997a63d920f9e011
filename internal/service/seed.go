package service

import "github.com/aryan0dhankhar/coursehub/internal/domain"

// DemoUsers returns the accounts every instance starts with
func DemoUsers() []domain.User {
	return []domain.User{
		{
			ID:       "1",
			Name:     "Admin",
			Email:    "instructor@example.com",
			Password: "password123",
			Role:     domain.RoleInstructor,
		},
		{
			ID:       "2",
			Name:     "Etudiant",
			Email:    "student@example.com",
			Password: "password123",
			Role:     domain.RoleStudent,
		},
	}
}

// DemoCatalog returns the catalog stored when none exists yet
func DemoCatalog() []domain.Course {
	return []domain.Course{
		{
			ID:             "1",
			Title:          "Introduction to React",
			Description:    "Learn the basics of React and build your first application",
			InstructorID:   "1",
			InstructorName: "John Instructor",
			Thumbnail:      "https://images.unsplash.com/photo-1633356122102-3fe601e05bd2?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80",
			Videos: []domain.Video{
				{
					ID:          "1",
					Title:       "React Fundamentals",
					Description: "Understanding React components and props",
					URL:         "https://www.example.com/video1",
					Duration:    "10:30",
				},
			},
			EnrolledStudents: []string{"2"},
		},
	}
}
