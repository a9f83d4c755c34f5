package model

// ClassStatus is the approval lifecycle flag of a class listing.
type ClassStatus string

const (
	StatusPending  ClassStatus = "Pending"
	StatusApproved ClassStatus = "Approved"
	StatusDenied   ClassStatus = "Denied"
)

// Class is a listing submitted by an instructor.  New listings start
// Pending and only an admin moves them to Approved or Denied.
type Class struct {
	ID              string      `json:"_id,omitempty"`
	Name            string      `json:"name" validate:"required"`
	Image           string      `json:"image,omitempty"`
	InstructorName  string      `json:"instructorName,omitempty"`
	InstructorEmail string      `json:"instructorEmail,omitempty" validate:"omitempty,email"`
	AvailableSeats  int         `json:"availableSeats" validate:"gte=0"`
	Price           float64     `json:"price" validate:"gte=0"`
	Status          ClassStatus `json:"status"`
	Feedback        string      `json:"feedback,omitempty"`
}
