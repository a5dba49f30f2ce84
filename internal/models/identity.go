package models

// Identity is the signed-in user a session acts on behalf of.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (i Identity) Valid() bool {
	return i.UserID != ""
}
