package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cloudlodge/internal/entities"
	apperrors "cloudlodge/internal/errors"
	"cloudlodge/internal/session"
)

// Client is the data-access layer for the CloudLodge backend. Every call
// carries the session's bearer token; a 401 from any endpoint invalidates
// the session globally, a 403 surfaces as an authorization error without
// signing the user out.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	log     *logrus.Logger
}

func NewClient(baseURL string, sess *session.Session, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Transport(0, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(resp.StatusCode, fmt.Sprintf("reading response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.WithField("path", path).Warn("authentication rejected, clearing session")
		c.session.Invalidate()
		return nil, apperrors.Unauthorized(serverMessage(data))
	case resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.Forbidden(serverMessage(data))
	case resp.StatusCode >= 400:
		return nil, apperrors.Transport(resp.StatusCode, serverMessage(data))
	}
	return data, nil
}

// serverMessage pulls a human-readable message out of an error body.
func serverMessage(data []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(data, &resp); err == nil {
		if resp.Message != "" {
			return resp.Message
		}
		if resp.Err != "" {
			return resp.Err
		}
	}
	return strings.TrimSpace(string(data))
}

// Auth

// Login exchanges credentials for a bearer token. The caller decides where
// the token goes; the client itself never stores it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return "", err
	}
	var resp LoginResponse
	if err := json.Unmarshal(unwrapEnvelope(data), &resp); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*entities.User, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/auth/register", req, nil)
	if err != nil {
		return nil, err
	}
	var user entities.User
	if err := decodeEntity(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Rooms and room types

func (c *Client) ListRoomTypes(ctx context.Context) ([]entities.RoomType, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/room-types", nil, nil)
	if err != nil {
		return nil, err
	}
	var types []entities.RoomType
	if err := decodeEntityList(data, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]entities.Room, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/rooms", nil, nil)
	if err != nil {
		return nil, err
	}
	var rooms []entities.Room
	if err := decodeEntityList(data, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetRoom fetches a room together with its room type, the source of the
// max-guest limit.
func (c *Client) GetRoom(ctx context.Context, id string) (*entities.Room, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var room entities.Room
	if err := decodeEntity(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Reservations

func (c *Client) ListReservations(ctx context.Context) ([]entities.Reservation, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/reservations", nil, nil)
	if err != nil {
		return nil, err
	}
	var reservations []entities.Reservation
	if err := decodeEntityList(data, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (c *Client) GetReservation(ctx context.Context, id string) (*entities.Reservation, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/reservations/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var res entities.Reservation
	if err := decodeEntity(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*entities.Reservation, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/reservations", req, nil)
	if err != nil {
		return nil, err
	}
	var res entities.Reservation
	if err := decodeEntity(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateReservation replaces the reservation's date, guest and status
// fields. The server is authoritative for status transitions and may reject
// the proposal.
func (c *Client) UpdateReservation(ctx context.Context, id string, req UpdateReservationRequest) (*entities.Reservation, error) {
	data, err := c.do(ctx, http.MethodPut, "/api/reservations/"+url.PathEscape(id), req, nil)
	if err != nil {
		return nil, err
	}
	var res entities.Reservation
	if err := decodeEntity(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Availability records

func (c *Client) AvailabilityByRoom(ctx context.Context, roomID string) ([]entities.AvailabilityRecord, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/availability?roomUnitId="+url.QueryEscape(roomID), nil, nil)
	if err != nil {
		return nil, err
	}
	var records []entities.AvailabilityRecord
	if err := decodeEntityList(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) AvailabilityByReservation(ctx context.Context, reservationID string) ([]entities.AvailabilityRecord, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/availability?reservationId="+url.QueryEscape(reservationID), nil, nil)
	if err != nil {
		return nil, err
	}
	var records []entities.AvailabilityRecord
	if err := decodeEntityList(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateAvailability books one calendar day. The idempotency key makes a
// retried create of the same day safe for the server to de-duplicate.
func (c *Client) CreateAvailability(ctx context.Context, req CreateAvailabilityRequest, idempotencyKey string) (*entities.AvailabilityRecord, error) {
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	data, err := c.do(ctx, http.MethodPost, "/api/availability", req, headers)
	if err != nil {
		return nil, err
	}
	var rec entities.AvailabilityRecord
	if err := decodeEntity(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteAvailability(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/availability/"+url.PathEscape(id), nil, nil)
	return err
}

// Admin

func (c *Client) DashboardMetrics(ctx context.Context) (*entities.DashboardMetrics, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, nil)
	if err != nil {
		return nil, err
	}
	var metrics entities.DashboardMetrics
	if err := json.Unmarshal(unwrapEnvelope(data), &metrics); err != nil {
		return nil, fmt.Errorf("decoding dashboard metrics: %w", err)
	}
	return &metrics, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]entities.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil)
	if err != nil {
		return nil, err
	}
	var users []entities.User
	if err := decodeEntityList(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (*entities.User, error) {
	data, err := c.do(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id)+"/role", UpdateUserRoleRequest{Role: role}, nil)
	if err != nil {
		return nil, err
	}
	var user entities.User
	if err := decodeEntity(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
	return err
}
