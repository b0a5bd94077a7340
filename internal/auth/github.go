package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"net/http"
	"strconv"
	"strings"
)

const githubAPI = "https://api.github.com"

// GitHub implements Provider with the OAuth authorization-code flow.
type GitHub struct {
	oauth   *oauth2.Config
	apiBase string
}

var _ Provider = (*GitHub)(nil)

func NewGitHub(clientID, clientSecret, callbackURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
		apiBase: githubAPI,
	}
}

func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) Exchange(ctx context.Context, code string) (Identity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("github token exchange: %w", err)
	}
	client := g.oauth.Client(ctx, tok)

	var u githubUser
	if err := getJSON(ctx, client, g.apiBase+"/user", &u); err != nil {
		return Identity{}, err
	}
	if u.ID == 0 {
		return Identity{}, fmt.Errorf("github user: empty profile")
	}

	email := u.Email
	if email == "" {
		// Private emails are only listed by /user/emails.
		var emails []githubEmail
		if err := getJSON(ctx, client, g.apiBase+"/user/emails", &emails); err != nil {
			return Identity{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return Identity{
		ID:       strconv.FormatInt(u.ID, 10),
		Name:     name,
		Email:    strings.ToLower(email),
		Provider: "github",
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github %s: decode: %w", url, err)
	}
	return nil
}
