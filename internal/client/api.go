package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ms0ur/timeflow/internal/model"
)

// API is the HTTP client for the timeflow server.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type CurrentSession struct {
	ID         string                `json:"id"`
	ActivityID string                `json:"activityId"`
	StartedAt  time.Time             `json:"startedAt"`
	Activity   model.ActivityDisplay `json:"activity"`
}

type SwitchResponse struct {
	PreviousSession *model.Session `json:"previousSession"`
	CurrentSession  CurrentSession `json:"currentSession"`
}

type StopResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Session *model.Session `json:"session"`
}

type SyncResponse struct {
	ProcessedLocalIDs []string `json:"processedLocalIds"`
	SkippedCount      int      `json:"skippedCount"`
}

func (a *API) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := a.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	a.token = result.Token
	return &result, nil
}

func (a *API) Register(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := a.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	a.token = result.Token
	return &result, nil
}

func (a *API) Activities(ctx context.Context) ([]model.Activity, error) {
	var result struct {
		Activities []model.Activity `json:"activities"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/activities", nil, &result); err != nil {
		return nil, err
	}
	return result.Activities, nil
}

func (a *API) CreateActivity(ctx context.Context, name string, parentID *string) (*model.Activity, error) {
	var result struct {
		Activity *model.Activity `json:"activity"`
	}
	body := map[string]interface{}{"name": name}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	if err := a.do(ctx, http.MethodPost, "/api/activities", body, &result); err != nil {
		return nil, err
	}
	return result.Activity, nil
}

// Current returns nil without error when no session is open.
func (a *API) Current(ctx context.Context) (*CurrentSession, error) {
	var result struct {
		Session *CurrentSession `json:"session"`
	}
	if err := a.do(ctx, http.MethodGet, "/api/sessions/current", nil, &result); err != nil {
		return nil, err
	}
	return result.Session, nil
}

func (a *API) Switch(ctx context.Context, toActivityID string, timestamp int64, localID string) (*SwitchResponse, error) {
	var result SwitchResponse
	err := a.do(ctx, http.MethodPost, "/api/sessions/switch", map[string]interface{}{
		"toActivityId": toActivityID,
		"timestamp":    timestamp,
		"localId":      localID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *API) Stop(ctx context.Context, timestamp int64, localID string) (*StopResponse, error) {
	var result StopResponse
	err := a.do(ctx, http.MethodPost, "/api/sessions/stop", map[string]interface{}{
		"timestamp": timestamp,
		"localId":   localID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *API) Sync(ctx context.Context, events []model.QueueEvent) (*SyncResponse, error) {
	var result SyncResponse
	err := a.do(ctx, http.MethodPost, "/api/sessions/sync", map[string]interface{}{
		"events": events,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping is the reachability probe behind the sync driver's network
// signal.
func (a *API) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope apiErrorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
