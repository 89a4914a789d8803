package accessclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/replyhub/identity-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantPayload(role models.Role, workspaceID *string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"role":         role,
		"workspace_id": workspaceID,
	})
	return payload
}

func TestFetchRoleSucceedsFirstTry(t *testing.T) {
	workspaceID := "ws-1"
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/access/me", r.URL.Path)
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		w.Write(grantPayload(models.RoleEmployee, &workspaceID))
	}))
	defer srv.Close()

	client := New(srv.URL, "jwt-token", zerolog.Nop(), WithBackoff(time.Millisecond))
	result := client.FetchRoleWithRetry(context.Background())

	require.True(t, result.Success)
	assert.NoError(t, result.Err)
	assert.Equal(t, models.RoleEmployee, result.Role)
	require.NotNil(t, result.WorkspaceID)
	assert.Equal(t, "ws-1", *result.WorkspaceID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// Right after acceptance the employee record may not have propagated, so a
// denial is retried and the late success wins.
func TestFetchRoleRetriesOnDenial(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write(grantPayload(models.RoleEmployee, nil))
	}))
	defer srv.Close()

	client := New(srv.URL, "jwt-token", zerolog.Nop(), WithBackoff(time.Millisecond))
	result := client.FetchRoleWithRetry(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, models.RoleEmployee, result.Role)
	assert.Nil(t, result.WorkspaceID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchRoleGivesUpAfterThreeDenials(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(srv.URL, "jwt-token", zerolog.Nop(), WithBackoff(time.Millisecond))
	result := client.FetchRoleWithRetry(context.Background())

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchRoleServerErrorIsTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "jwt-token", zerolog.Nop(), WithBackoff(time.Millisecond))
	result := client.FetchRoleWithRetry(context.Background())

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchRoleRetriesOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening

	client := New(srv.URL, "jwt-token", zerolog.Nop(), WithBackoff(time.Millisecond))
	result := client.FetchRoleWithRetry(context.Background())

	assert.False(t, result.Success)
	assert.Error(t, result.Err)
}
