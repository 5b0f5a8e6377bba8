// Package stream is a minimal client for the Stream-Chat-compatible
// directory service: user lookup/upsert and channel publication. Only the
// server-side surface the relay needs is implemented.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
)

type Service struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	serverToken string
}

// DirectoryUser is the denormalized mirror entry kept by the directory
// service. Not authoritative; the local store is the system of record.
type DirectoryUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func NewService() *Service {
	log.Info().Msg("Initialising directory service client")

	svc, err := NewServiceWithOptions(config.GetStreamAPIKey(), config.GetStreamAPISecret(), config.GetStreamBaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise directory service client")
	}
	return svc
}

// NewServiceWithOptions builds a client against an explicit endpoint, which
// lets tests point it at a local double.
func NewServiceWithOptions(apiKey, apiSecret, baseURL string) (*Service, error) {
	token, err := signServerToken(apiSecret)
	if err != nil {
		return nil, fmt.Errorf("sign server token: %w", err)
	}

	return &Service{
		client:      &http.Client{},
		apiKey:      apiKey,
		baseURL:     baseURL,
		serverToken: token,
	}, nil
}

// signServerToken produces the HS256 JWT the directory API accepts for
// server-side calls.
func signServerToken(secret string) (string, error) {
	claims := jwt.MapClaims{
		"server": true,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// QueryUsers returns the directory entries whose ID equals userID. An empty
// slice means the user is not registered with the directory.
func (s *Service) QueryUsers(ctx context.Context, userID string) ([]DirectoryUser, error) {
	payload, err := json.Marshal(map[string]any{
		"filter_conditions": map[string]any{
			"id": map[string]any{"$eq": userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal user filter: %w", err)
	}

	var result struct {
		Users []DirectoryUser `json:"users"`
	}
	query := url.Values{"payload": {string(payload)}}
	if err := s.do(ctx, http.MethodGet, "/users", query, nil, &result); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return result.Users, nil
}

// UpsertUser creates or updates a directory entry. The directory treats this
// as an upsert, so repeating it for the same ID is harmless.
func (s *Service) UpsertUser(ctx context.Context, user DirectoryUser) error {
	body := map[string]any{
		"users": map[string]DirectoryUser{
			user.ID: user,
		},
	}
	if err := s.do(ctx, http.MethodPost, "/users", nil, body, nil); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// messagingChannelType is the channel type every relay conversation lives in.
const messagingChannelType = "messaging"

// EnsureChannel creates the messaging channel if it does not exist yet.
func (s *Service) EnsureChannel(ctx context.Context, channelID, createdByID string) error {
	return s.Channel(messagingChannelType, channelID).Create(ctx, createdByID)
}

// Publish sends text into the messaging channel attributed to senderID.
func (s *Service) Publish(ctx context.Context, channelID, text, senderID string) error {
	return s.Channel(messagingChannelType, channelID).SendMessage(ctx, text, senderID)
}

// Channel references a named conversation context. No I/O happens until
// Create or SendMessage is called.
func (s *Service) Channel(channelType, channelID string) *Channel {
	return &Channel{
		svc:         s,
		channelType: channelType,
		channelID:   channelID,
	}
}

type Channel struct {
	svc         *Service
	channelType string
	channelID   string
}

// Create ensures the channel exists. The query endpoint creates the channel
// on first use and is a no-op when it already exists.
func (c *Channel) Create(ctx context.Context, createdByID string) error {
	body := map[string]any{
		"data": map[string]any{
			"created_by_id": createdByID,
		},
	}
	path := fmt.Sprintf("/channels/%s/%s/query", c.channelType, c.channelID)
	if err := c.svc.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("create channel %s: %w", c.channelID, err)
	}
	return nil
}

// SendMessage publishes text into the channel attributed to senderID.
func (c *Channel) SendMessage(ctx context.Context, text, senderID string) error {
	body := map[string]any{
		"message": map[string]any{
			"text":    text,
			"user_id": senderID,
		},
	}
	path := fmt.Sprintf("/channels/%s/%s/message", c.channelType, c.channelID)
	if err := c.svc.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("send message to channel %s: %w", c.channelID, err)
	}
	return nil
}

type apiError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"StatusCode"`
}

func (s *Service) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", s.apiKey)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", s.serverToken)
	req.Header.Set("stream-auth-type", "jwt")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("directory API error (status %d, code %d): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("directory API error: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
