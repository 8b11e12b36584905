// Package livekit is a minimal LiveKit client: HS256 access tokens
// plus the two twirp RoomService calls the voice-call workflow needs.
package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Config configures the LiveKit client.
type Config struct {
	URL       string `yaml:"url" mapstructure:"url"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	APISecret string `yaml:"api_secret" mapstructure:"api_secret"`
}

// Configured reports whether credentials are present.
func (c Config) Configured() bool {
	return c.URL != "" && c.APIKey != "" && c.APISecret != ""
}

// Room is the subset of the twirp Room message we consume.
type Room struct {
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
	CreationTime    string `json:"creation_time"`
}

// Client talks to a LiveKit deployment.
type Client interface {
	// AgentToken mints a join token scoped to one room for the
	// payment reminder agent.
	AgentToken(room string) (string, error)
	CreateRoom(ctx context.Context, name string) (*Room, error)
	ListRooms(ctx context.Context, names []string) ([]Room, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTokenTTL overrides the default one-hour token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *httpClient) {
		c.tokenTTL = ttl
	}
}

type httpClient struct {
	cfg      Config
	apiURL   string
	tokenTTL time.Duration
	http     *http.Client
	now      func() time.Time
}

// NewClient creates a LiveKit client from credentials.
func NewClient(cfg Config, opts ...Option) (Client, error) {
	if !cfg.Configured() {
		return nil, eris.New("livekit: credentials not configured")
	}

	c := &httpClient{
		cfg:      cfg,
		apiURL:   apiURL(cfg.URL),
		tokenTTL: time.Hour,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// apiURL rewrites the websocket URL to its HTTP endpoint.
func apiURL(wsURL string) string {
	u := strings.Replace(wsURL, "wss://", "https://", 1)
	u = strings.Replace(u, "ws://", "http://", 1)
	return strings.TrimRight(u, "/")
}

// videoGrant carries LiveKit room permissions inside the token.
type videoGrant struct {
	Room         string `json:"room,omitempty"`
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	RoomList     bool   `json:"roomList,omitempty"`
	CanPublish   bool   `json:"canPublish,omitempty"`
	CanSubscribe bool   `json:"canSubscribe,omitempty"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video videoGrant `json:"video"`
}

func (c *httpClient) AgentToken(room string) (string, error) {
	return c.signToken("payment-agent", "Payment Reminder Agent", videoGrant{
		Room:         room,
		RoomJoin:     true,
		CanPublish:   true,
		CanSubscribe: true,
	})
}

// adminToken authorizes RoomService calls.
func (c *httpClient) adminToken() (string, error) {
	return c.signToken("api", "", videoGrant{
		RoomCreate: true,
		RoomList:   true,
	})
}

func (c *httpClient) signToken(identity, name string, grant videoGrant) (string, error) {
	now := c.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.APIKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
		},
		Name:  name,
		Video: grant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.APISecret))
	if err != nil {
		return "", eris.Wrap(err, "livekit: sign token")
	}
	return signed, nil
}

// createRoomRequest mirrors the twirp CreateRoomRequest message.
type createRoomRequest struct {
	Name            string `json:"name"`
	EmptyTimeout    int    `json:"empty_timeout"`
	MaxParticipants int    `json:"max_participants"`
}

func (c *httpClient) CreateRoom(ctx context.Context, name string) (*Room, error) {
	body, err := c.twirp(ctx, "CreateRoom", createRoomRequest{
		Name:            name,
		EmptyTimeout:    300,
		MaxParticipants: 2,
	})
	if err != nil {
		return nil, err
	}

	var room Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, eris.Wrap(err, "livekit: unmarshal room")
	}
	return &room, nil
}

func (c *httpClient) ListRooms(ctx context.Context, names []string) ([]Room, error) {
	body, err := c.twirp(ctx, "ListRooms", map[string]any{"names": names})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "livekit: unmarshal rooms")
	}
	return resp.Rooms, nil
}

func (c *httpClient) twirp(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	token, err := c.adminToken()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "livekit: marshal %s request", method)
	}

	url := c.apiURL + "/twirp/livekit.RoomService/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "livekit: create %s request", method)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "livekit: %s", method)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "livekit: read %s response", method)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("livekit: %s returned status %d: %s", method, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
