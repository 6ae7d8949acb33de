// Package studio provides a client for the LLMCreativeStudio routing API.
// It is what a dispatch collaborator uses to resolve recipients, read
// context windows, and deliver annotated model responses.
package studio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is an LLMCreativeStudio API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client for the given server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("studio error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// ChatRequest is the request body for routing a user input.
type ChatRequest struct {
	Message   string `json:"message"`
	UserName  string `json:"user_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	ParentID  string `json:"pid,omitempty"`
}

// Decision is the routing decision for one input.
type Decision struct {
	Target    string `json:"target"`
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
	Body      string `json:"body"`
	DataQuery string `json:"data_query,omitempty"`
}

// ContextEntry is one message of the recent context window.
type ContextEntry struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Sender       string `json:"sender"`
	DisplayName  string `json:"display_name"`
	Timestamp    int64  `json:"ts"`
	ReferencedID string `json:"pid,omitempty"`
	Intent       string `json:"intent,omitempty"`
}

// DebateStatus is the derived debate state.
type DebateStatus struct {
	Round string `json:"round"`
	State string `json:"state"`
}

// ChatResponse is the response from the chat endpoint.
type ChatResponse struct {
	SessionID      string         `json:"session_id"`
	MessageID      string         `json:"message_id"`
	Decision       Decision       `json:"decision"`
	Recipients     []string       `json:"recipients"`
	TargetLabel    string         `json:"target_label,omitempty"`
	Context        []ContextEntry `json:"context"`
	Debate         DebateStatus   `json:"debate"`
	WaitingForUser bool           `json:"waiting_for_user"`
}

// Chat resolves one user input and records it in the session history.
func (c *Client) Chat(req ChatRequest) (*ChatResponse, error) {
	body, _ := json.Marshal(req)
	respBody, err := c.doRequest("POST", "/chat", body)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AppendMessageRequest delivers an annotated model or system response.
type AppendMessageRequest struct {
	Sender      string `json:"sender"`
	DisplayName string `json:"display_name,omitempty"`
	Body        string `json:"body"`
	ParentID    string `json:"pid,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Intent      string `json:"intent,omitempty"`

	Round          *int   `json:"debate_round,omitempty"`
	Phase          string `json:"debate_phase,omitempty"`
	WaitingForUser bool   `json:"waiting_for_user,omitempty"`
	Action         string `json:"action,omitempty"`
}

// AppendMessageResponse confirms a stored message.
type AppendMessageResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"ts"`
}

// AppendMessage stores an annotated message in a session's history.
func (c *Client) AppendMessage(sessionID string, req AppendMessageRequest) (*AppendMessageResponse, error) {
	body, _ := json.Marshal(req)
	respBody, err := c.doRequest("POST", "/session/"+url.PathEscape(sessionID)+"/messages", body)
	if err != nil {
		return nil, err
	}

	var resp AppendMessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Message represents a stored history entry.
type Message struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Sender      string `json:"sender"`
	DisplayName string `json:"display_name"`
	Body        string `json:"body"`
	ParentID    string `json:"pid,omitempty"`
	Intent      string `json:"intent,omitempty"`
	Timestamp   int64  `json:"ts"`

	Round          *int   `json:"debate_round,omitempty"`
	Phase          string `json:"debate_phase,omitempty"`
	WaitingForUser bool   `json:"waiting_for_user,omitempty"`
	Action         string `json:"action,omitempty"`
}

// MessagesResponse is a page of session history.
type MessagesResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	HasMore   bool      `json:"has_more"`
}

// Messages retrieves a session's history, oldest first within the page.
func (c *Client) Messages(sessionID string, limit int, before int64) (*MessagesResponse, error) {
	path := fmt.Sprintf("/session/%s/messages?limit=%d", url.PathEscape(sessionID), limit)
	if before > 0 {
		path += fmt.Sprintf("&before=%d", before)
	}

	respBody, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp MessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DebateStatusResponse is the derived debate state for a session.
type DebateStatusResponse struct {
	SessionID      string       `json:"session_id"`
	Active         bool         `json:"active"`
	Status         DebateStatus `json:"status"`
	WaitingForUser bool         `json:"waiting_for_user"`
}

// Debate returns the current debate state for a session.
func (c *Client) Debate(sessionID string) (*DebateStatusResponse, error) {
	respBody, err := c.doRequest("GET", "/session/"+url.PathEscape(sessionID)+"/debate", nil)
	if err != nil {
		return nil, err
	}

	var resp DebateStatusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearSessionResponse carries the replacement session id after a clear.
type ClearSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ClearSession wipes a session's history and returns the new session id.
func (c *Client) ClearSession(sessionID string) (*ClearSessionResponse, error) {
	respBody, err := c.doRequest("DELETE", "/session/"+url.PathEscape(sessionID)+"/", nil)
	if err != nil {
		return nil, err
	}

	var resp ClearSessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateProjectRequest is the request body for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project represents a project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateProject creates a project.
func (c *Client) CreateProject(req CreateProjectRequest) (*Project, error) {
	body, _ := json.Marshal(req)
	respBody, err := c.doRequest("POST", "/projects", body)
	if err != nil {
		return nil, err
	}

	var resp Project
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssignCharacterRequest binds a persona to a model.
type AssignCharacterRequest struct {
	Name       string `json:"name"`
	LLM        string `json:"llm"`
	Background string `json:"background,omitempty"`
}

// Character represents a persona binding.
type Character struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LLM        string `json:"llm"`
	Background string `json:"background,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// AssignCharacter binds a persona to a model within a project.
func (c *Client) AssignCharacter(projectID string, req AssignCharacterRequest) (*Character, error) {
	body, _ := json.Marshal(req)
	respBody, err := c.doRequest("POST", "/project/"+url.PathEscape(projectID)+"/characters", body)
	if err != nil {
		return nil, err
	}

	var resp Character
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthCheck is the status of one dependency check.
type HealthCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the health endpoint response.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
