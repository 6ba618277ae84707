package catalog

import (
	"context"
	"net/http"
	"strconv"

	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/types"
)

// Credentials is the payload for the catalog's auth endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegistrationProfile is the payload for creating a user record.
type RegistrationProfile struct {
	Email     string        `json:"email"`
	Username  string        `json:"username"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstname"`
	LastName  string        `json:"lastname"`
	Phone     string        `json:"phone"`
	Address   types.Address `json:"address"`
}

// User is the catalog's stored user record.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// AuthenticateUser exchanges credentials for an opaque token. A
// successful response without a token is treated as bad credentials.
func (c *Client) AuthenticateUser(ctx context.Context, creds Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "auth_login", http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return resp.Token, nil
}

// CreateUser registers a user record and returns its id.
func (c *Client) CreateUser(ctx context.Context, profile RegistrationProfile) (int, error) {
	if profile.Email == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	var resp struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, "create_user", http.MethodPost, "/users", nil, profile, &resp); err != nil {
		return 0, err
	}
	if resp.ID == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "catalog did not assign a user id")
	}
	return resp.ID, nil
}

// GetUserByID fetches a single user record.
func (c *Client) GetUserByID(ctx context.Context, id int) (*User, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	var user User
	if err := c.do(ctx, "get_user", http.MethodGet, "/users/"+strconv.Itoa(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllUsers fetches every stored user record.
func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, "get_users", http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
