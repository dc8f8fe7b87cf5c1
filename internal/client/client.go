// Package client talks to a regifting server over its HTTP API and
// WebSocket event stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/internal/service"
)

// Event mirrors handler.WSEvent with the payload left undecoded.
type Event struct {
	Type         string          `json:"type"`
	TournamentID string          `json:"tournament_id"`
	Data         json.RawMessage `json:"data"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Client is an HTTP+WebSocket client for one user of the server.
type Client struct {
	baseURL string
	token   string
	httpC   *http.Client

	mu       sync.Mutex
	wsConn   *websocket.Conn
	events   chan Event
	closedWS bool
}

// New creates a client targeting baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		events:  make(chan Event, 64),
		httpC:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SetToken uses an existing bearer token instead of Login.
func (c *Client) SetToken(token string) { c.token = token }

// Login obtains a token from the dev login endpoint.
func (c *Client) Login(ctx context.Context, name, role string) error {
	q := url.Values{"name": {name}}
	if role != "" {
		q.Set("role", role)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/dev?"+q.Encode(), nil, &tok); err != nil {
		return fmt.Errorf("dev login: %w", err)
	}
	c.token = tok.AccessToken
	log.Debug().Str("name", name).Str("role", role).Msg("Client logged in")
	return nil
}

// Strategies lists the server's strategy catalog.
func (c *Client) Strategies(ctx context.Context) ([]bot.Entry, error) {
	var out []bot.Entry
	err := c.do(ctx, http.MethodGet, "/api/v1/strategies", nil, &out)
	return out, err
}

// Run plays a tournament synchronously and returns its result.
func (c *Client) Run(ctx context.Context, req service.TournamentRequest) (*bot.TournamentResult, error) {
	var res bot.TournamentResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/tournaments", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Start launches a tournament in the background and returns its id.
func (c *Client) Start(ctx context.Context, req service.TournamentRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/tournaments?async=true", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Tournament fetches an archived tournament with its games.
func (c *Client) Tournament(ctx context.Context, id string) (*model.Tournament, error) {
	var t model.Tournament
	if err := c.do(ctx, http.MethodGet, "/api/v1/tournaments/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Leaderboard fetches the top strategies across tournaments.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	var out []model.LeaderboardEntry
	err := c.do(ctx, http.MethodGet, "/api/v1/leaderboard?limit="+strconv.Itoa(limit), nil, &out)
	return out, err
}

// ConnectWS opens the event stream. Events are delivered on Events until
// the connection drops or CloseWS is called.
func (c *Client) ConnectWS(ctx context.Context) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.mu.Lock()
	c.wsConn = conn
	c.mu.Unlock()

	go c.readWSLoop(conn)
	return nil
}

// Subscribe asks for the events of one tournament, or of all with "*".
func (c *Client) Subscribe(tournamentID string) error {
	return c.writeWS(map[string]string{"action": "subscribe", "tournament_id": tournamentID})
}

// Unsubscribe stops the events of one tournament.
func (c *Client) Unsubscribe(tournamentID string) error {
	return c.writeWS(map[string]string{"action": "unsubscribe", "tournament_id": tournamentID})
}

// Events returns the channel of incoming WebSocket events.
func (c *Client) Events() <-chan Event { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) writeWS(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn == nil {
		return fmt.Errorf("ws: not connected")
	}
	return c.wsConn.WriteJSON(msg)
}

func (c *Client) readWSLoop(conn *websocket.Conn) {
	defer close(c.events)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Msg("WS read error")
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		c.events <- ev
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, dst any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &msg) == nil && msg.Error != "" {
			apiErr.Message = msg.Error
		}
		return apiErr
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
