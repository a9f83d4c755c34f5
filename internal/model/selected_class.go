package model

// SelectedClass is a cart entry joining a student (by email) to a class.
type SelectedClass struct {
	ID             string  `json:"_id,omitempty"`
	ClassID        string  `json:"classId" validate:"required"`
	Email          string  `json:"email"`
	Name           string  `json:"name,omitempty"`
	Image          string  `json:"image,omitempty"`
	InstructorName string  `json:"instructorName,omitempty"`
	Price          float64 `json:"price" validate:"gte=0"`
}
