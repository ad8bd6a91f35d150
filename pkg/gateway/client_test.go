package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGroupsRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/groups", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("count"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"groups": []map[string]interface{}{
				{"id": "g1", "name": "Team", "size": 12},
			},
		})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	groups, err := client.ListGroups(context.Background(), "token-1", 100, 200)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "Team", groups[0].Name)
	assert.Equal(t, 12, groups[0].Size)
}

func TestGetGroupDecodesParticipants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/g1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "g1",
			"subject": "Legacy",
			"creator": "972501234567@s.whatsapp.net",
			"participants": []map[string]interface{}{
				{"id": "972501234567@s.whatsapp.net", "rank": "creator"},
				{"phone": "0509999999", "admin": true},
			},
		})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	group, err := client.GetGroup(context.Background(), "token-1", "g1")
	require.NoError(t, err)

	assert.Equal(t, "Legacy", group.DisplayName())
	require.Len(t, group.Participants, 2)
	assert.Equal(t, "creator", group.Participants[0].Rank)
	assert.True(t, group.Participants[1].IsAdmin)
	assert.Equal(t, "0509999999", group.Participants[1].Phone)
}

func TestErrorStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		client := NewClientWithHTTP(server.URL, server.Client())
		_, err := client.ListGroups(context.Background(), "token-1", 50, 0)
		server.Close()

		require.Error(t, err)
		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, tc.status, ge.StatusCode)
		assert.Equal(t, tc.retryable, IsRetryable(err), "status %d", tc.status)
	}
}

func TestNetworkErrorsAreRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("connection refused")))
	assert.False(t, IsRetryable(nil))
}

func TestSendMessagePostsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "g1", req["group_id"])
		assert.Equal(t, "hello", req["body"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message_id": "m-42"})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	messageID, err := client.SendMessage(context.Background(), "token-1", "g1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m-42", messageID)
}

func TestMeResolvesIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "972501234567@s.whatsapp.net"})
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())
	identity, err := client.Me(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "972501234567@s.whatsapp.net", identity.PhoneOrID())
}
