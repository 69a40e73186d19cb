package provider

import (
	"context"
	"net/url"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/transport"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
	"github.com/supabase-community/auth-go/types"
)

// Credentials identify a user by exactly one of Email or Phone.
type Credentials struct {
	Email    string
	Phone    string
	Password string
	// FullName is stored as user metadata on sign-up.
	FullName string
}

func (c Credentials) key() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Phone
}

// SignInWithPassword signs in by email or phone and stores the session.
func (c *Client) SignInWithPassword(ctx context.Context, cred Credentials) (*Session, error) {
	api, call := c.api(ctx, "")
	res, err := api.Token(types.TokenRequest{
		GrantType: "password",
		Email:     cred.Email,
		Phone:     cred.Phone,
		Password:  cred.Password,
	})
	if err != nil {
		err = apiError(err, call)
		logging.WarnLog("Provider sign-in failed [%s]: %v", utils.HashIdentifier(cred.key()), err)
		return nil, err
	}
	s := sessionModel(res.Session)
	c.storeSession(s)
	logging.InfoLog("Provider sign-in success [%s]", utils.HashIdentifier(cred.key()))
	return s, nil
}

// SignUp registers a user. When the project confirms sign-ups automatically
// the returned session is non-nil and becomes the current one.
func (c *Client) SignUp(ctx context.Context, cred Credentials) (models.User, *Session, error) {
	req := types.SignupRequest{Email: cred.Email, Phone: cred.Phone, Password: cred.Password}
	if cred.FullName != "" {
		req.Data = map[string]interface{}{"full_name": cred.FullName}
	}

	api, call := c.api(ctx, "")
	res, err := api.Signup(req)
	if err != nil {
		err = apiError(err, call)
		logging.WarnLog("Provider sign-up failed [%s]: %v", utils.HashIdentifier(cred.key()), err)
		return models.User{}, nil, err
	}
	logging.InfoLog("Provider sign-up success [%s]", utils.HashIdentifier(cred.key()))

	if res.Session.AccessToken != "" {
		s := sessionModel(res.Session)
		c.storeSession(s)
		return s.User, s, nil
	}
	return userModel(res.User), nil, nil
}

// ResetPasswordForEmail asks the provider to mail a recovery link that lands
// on redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	var opts []transport.Option
	if redirectTo != "" {
		opts = append(opts, transport.WithQuery(url.Values{"redirect_to": {redirectTo}}))
	}
	api, call := c.api(ctx, "", opts...)
	if err := api.Recover(types.RecoverRequest{Email: email}); err != nil {
		err = apiError(err, call)
		logging.WarnLog("Provider recovery failed [%s]: %v", utils.HashIdentifier(email), err)
		return err
	}
	logging.InfoLog("Provider recovery mail requested [%s]", utils.HashIdentifier(email))
	return nil
}

// UpdateUserPassword changes the password of the current session's user.
func (c *Client) UpdateUserPassword(ctx context.Context, password string) (models.User, error) {
	s := c.Session()
	if s == nil || s.AccessToken == "" {
		return models.User{}, ErrNoSession
	}
	api, call := c.api(ctx, s.AccessToken)
	res, err := api.UpdateUser(types.UpdateUserRequest{Password: &password})
	if err != nil {
		err = apiError(err, call)
		logging.WarnLog("Provider password update failed [%s]: %v", utils.HashToken(s.AccessToken), err)
		return models.User{}, err
	}
	u := userModel(res.User)
	logging.InfoLog("Provider password updated [%s]", utils.HashIdentifier(u.ID))
	return u, nil
}
