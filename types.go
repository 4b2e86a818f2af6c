package sessiongate

import "context"

// User is the read-only account record resolved through a [UserStore].
// sessiongate never writes user records; ownership stays with the caller's
// database.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	Roles        []string
}

// UserStore is the lookup capability callers must implement to integrate
// sessiongate with their user database. See the userstore package for a
// seeded in-memory implementation and a pgx-backed one.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
}

// TokenPair is the result of every successful mint path: [Engine.Login],
// [Engine.Refresh], and [Engine.LogoutOthers].
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is returned by [Engine.ValidateAccess]: the authenticated
// subject and the role set snapshotted into the token at issuance.
type AuthResult struct {
	UserID string
	Roles  []string
}
