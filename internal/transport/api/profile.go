package api

import (
	"context"
	"net/http"
	"strconv"

	"finboard-go/internal/domain/session"
)

// LoginResult is the payload answered by a successful login.
type LoginResult struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the editable account fields. Password is optional:
// when set the server invalidates the current credential and the caller must
// log in again.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Signup carries the public account-creation fields.
type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. No credential is stored; the user logs in
// afterwards.
func (g *Gateway) Register(ctx context.Context, signup Signup) error {
	return g.do(ctx, "profile.register", http.MethodPost, "/user/register", signup, nil)
}

// Login authenticates and stores the fresh credential and profile in the
// session store. The caller re-arms the session clock afterwards.
func (g *Gateway) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := g.do(ctx, "profile.login", http.MethodPost, "/user/login",
		loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return LoginResult{}, err
	}

	g.store.SetCredential(result.Token)
	g.store.SetUser(result.User)
	return result, nil
}

// GetProfile fetches the account details of one user.
func (g *Gateway) GetProfile(ctx context.Context, userID int) (session.User, error) {
	var user session.User
	err := g.do(ctx, "profile.get", http.MethodGet, "/user/"+strconv.Itoa(userID), nil, &user)
	return user, err
}

// UpdateProfile sends the edited account fields. A password change makes the
// server drop the current credential; the session layer reacts to that by
// forcing logout.
func (g *Gateway) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return g.do(ctx, "profile.update", http.MethodPut, "/user", update, nil)
}

// DeleteAccount removes the user account entirely.
func (g *Gateway) DeleteAccount(ctx context.Context, userID int) error {
	return g.do(ctx, "profile.delete", http.MethodDelete, "/user/user/"+strconv.Itoa(userID), nil, nil)
}
