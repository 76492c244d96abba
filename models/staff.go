// File: models/staff.go
package models

// ----------------------- staff model -----------------------

// StaffUser is a coordinator or admin allowed to sign in to the scanning desk.
type StaffUser struct {
	Username string `json:"username"`
	Password string `json:"password"` // bcrypt hash
	Role     Role   `json:"role"`
}

// ---------------------- staff credentials model ----------------------

// StaffCreds holds every staff login loaded from the credentials file.
type StaffCreds struct {
	Users []StaffUser `json:"users"`
}

// Find returns the user with the given username, or nil.
func (c *StaffCreds) Find(username string) *StaffUser {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
