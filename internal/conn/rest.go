package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// HTTPAuth exchanges the session cookie for a short-lived bearer token.
// The token is cached; Invalidate forces a fresh exchange on the next
// connection attempt.
type HTTPAuth struct {
	BaseURL       string
	SessionCookie string
	Client        *http.Client

	mu     sync.Mutex
	cached string
}

func NewHTTPAuth(baseURL, sessionCookie string) *HTTPAuth {
	return &HTTPAuth{BaseURL: baseURL, SessionCookie: sessionCookie, Client: http.DefaultClient}
}

func (a *HTTPAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != "" {
		return a.cached, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/auth/token", nil)
	if err != nil {
		return "", err
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: a.SessionCookie})
	resp, err := a.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange: %s", resp.Status)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	a.cached = body.Token
	return a.cached, nil
}

func (a *HTTPAuth) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = ""
}

// HTTPLobby fetches lobby metadata from the REST collaborator.
type HTTPLobby struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPLobby(baseURL string) *HTTPLobby {
	return &HTTPLobby{BaseURL: baseURL, Client: http.DefaultClient}
}

func (l *HTTPLobby) Lobby(ctx context.Context, gameID string) (LobbyInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+"/lobbies/"+gameID, nil)
	if err != nil {
		return LobbyInfo{}, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return LobbyInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return LobbyInfo{}, fmt.Errorf("lobby fetch: %s", resp.Status)
	}
	var info LobbyInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return LobbyInfo{}, err
	}
	return info, nil
}
