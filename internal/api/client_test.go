package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cloudlodge/internal/errors"
	"cloudlodge/internal/session"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newFakeBackend(t *testing.T, register func(r *mux.Router)) (*Client, *session.Session) {
	t.Helper()
	r := mux.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	sess := session.New("")
	require.NoError(t, sess.SetToken("tok-123"))
	return NewClient(srv.URL, sess, quietLogger()), sess
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	client, sess := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/reservations", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
		}).Methods(http.MethodGet)
	})

	fired := 0
	sess.OnInvalidate(func() { fired++ })

	_, err := client.ListReservations(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
	assert.Equal(t, 1, fired, "a 401 signs the user out globally, exactly once")
	assert.Empty(t, sess.Token())
}

func TestForbiddenKeepsSession(t *testing.T) {
	client, sess := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/admin/users", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, `{"message":"admins only"}`, http.StatusForbidden)
		}).Methods(http.MethodGet)
	})

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.Equal(t, "tok-123", sess.Token(), "a 403 must not force a sign-out")
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/rooms", func(w http.ResponseWriter, req *http.Request) {
			gotAuth = req.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]map[string]interface{}{})
		}).Methods(http.MethodGet)
	})

	_, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestListNormalizesAliasedIDs(t *testing.T) {
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/availability", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "room-1", req.URL.Query().Get("roomUnitId"))
			// Mixed id/_id documents inside a data envelope.
			w.Write([]byte(`{"data":[
				{"id":"a1","roomUnitId":"room-1","reservationId":"R1","date":"2025-06-10"},
				{"_id":"a2","roomUnitId":"room-1","reservationId":"R2","date":"2025-06-11"}
			]}`))
		}).Methods(http.MethodGet)
	})

	records, err := client.AvailabilityByRoom(context.Background(), "room-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a1", records[0].ID)
	assert.Equal(t, "a2", records[1].ID)
}

func TestListRejectsDocumentWithoutID(t *testing.T) {
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/availability", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`[
				{"id":"a1","roomUnitId":"room-1","reservationId":"R1","date":"2025-06-10"},
				{"roomUnitId":"room-1","reservationId":"R2","date":"2025-06-11"}
			]`))
		}).Methods(http.MethodGet)
	})

	_, err := client.AvailabilityByRoom(context.Background(), "room-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id or _id")
}

func TestGetRoomNormalizesUnderscoreID(t *testing.T) {
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/rooms/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"_id":"room-9","name":"901","roomTypeId":"rt-2","roomType":{"id":"rt-2","name":"Suite","maxGuests":4}}`))
		}).Methods(http.MethodGet)
	})

	room, err := client.GetRoom(context.Background(), "room-9")
	require.NoError(t, err)
	assert.Equal(t, "room-9", room.ID)
	assert.Equal(t, 4, room.MaxGuests())
}

func TestCreateAvailabilitySendsIdempotencyKey(t *testing.T) {
	var gotKey string
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/availability", func(w http.ResponseWriter, req *http.Request) {
			gotKey = req.Header.Get("Idempotency-Key")
			var body CreateAvailabilityRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "a1", "roomUnitId": body.RoomUnitID,
				"reservationId": body.ReservationID, "date": body.Date,
			})
		}).Methods(http.MethodPost)
	})

	rec, err := client.CreateAvailability(context.Background(), CreateAvailabilityRequest{
		RoomUnitID: "room-1", ReservationID: "R1", Date: "2025-06-10",
	}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "a1", rec.ID)
}

func TestTransportErrorCarriesServerMessage(t *testing.T) {
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/reservations/{id}", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, `{"error":"reservation not found"}`, http.StatusNotFound)
		}).Methods(http.MethodGet)
	})

	_, err := client.GetReservation(context.Background(), "nope")
	require.Error(t, err)
	e, ok := apperrors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindTransport, e.Kind)
	assert.Equal(t, http.StatusNotFound, e.Code)
	assert.Equal(t, "reservation not found", e.Message)
}

func TestLoginReturnsToken(t *testing.T) {
	client, _ := newFakeBackend(t, func(r *mux.Router) {
		r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
			var body LoginRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "guest@example.com", body.Email)
			json.NewEncoder(w).Encode(LoginResponse{Token: "fresh-token"})
		}).Methods(http.MethodPost)
	})

	token, err := client.Login(context.Background(), "guest@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}
