package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/transport"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

// AdminClient uses the service-role key to read the user directory.
type AdminClient struct {
	authURL    string
	serviceKey string
	perPage    int
	http       *http.Client
}

type AdminOption func(*AdminClient)

func WithAdminHTTPClient(hc *http.Client) AdminOption {
	return func(c *AdminClient) { c.http = hc }
}

// WithPageSize sets how many users are fetched per directory page.
func WithPageSize(n int) AdminOption {
	return func(c *AdminClient) {
		if n > 0 {
			c.perPage = n
		}
	}
}

func NewAdminClient(projectURL, serviceKey string, opts ...AdminOption) *AdminClient {
	c := &AdminClient{
		authURL:    authURL(projectURL),
		serviceKey: serviceKey,
		perPage:    1000,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUsersByPhone walks the directory and returns users whose phone equals
// phone. GoTrue stores numbers without the leading '+', so both spellings
// compare equal.
func (c *AdminClient) ListUsersByPhone(ctx context.Context, phone string) ([]models.User, error) {
	want := utils.NormalizePhone(phone)
	var matches []models.User

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		gotrue, call := api(ctx, c.http, c.authURL, c.serviceKey, c.serviceKey, transport.WithQuery(q))
		res, err := gotrue.AdminListUsers()
		if err != nil {
			return nil, apiError(err, call)
		}
		for _, u := range res.Users {
			if u.Phone != "" && utils.NormalizePhone(u.Phone) == want {
				matches = append(matches, userModel(u))
			}
		}
		if len(res.Users) < c.perPage {
			return matches, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}
