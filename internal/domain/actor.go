package domain

// Actor is the authenticated caller of an operation.
type Actor struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Roles     Roles  `json:"roles"`
	SessionID string `json:"-"`
}

func (a Actor) IsStaff() bool {
	return a.Roles.IsStaff()
}

// SystemActor is used for audit entries written outside a request.
var SystemActor = Actor{UID: "system", Name: "system"}
