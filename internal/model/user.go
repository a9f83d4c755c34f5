package model

// User represents a registered user.  Email is the unique business key; ID
// is the store-assigned identifier rendered as a string (ObjectID hex for
// the document store, decimal for MySQL).  Role holds the stored string as
// is; model.RoleFromStore decides what it authorizes.
type User struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo,omitempty"`
	Role  Role   `json:"role,omitempty"`
}
