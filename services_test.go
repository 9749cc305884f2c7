package authclient_test

import (
	"context"
	"net/http"
	"testing"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminPendingUsers(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/admin/pending-users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"users": []any{testUser()}})
	})

	admin := authclient.NewClient(api.url()).Admin()
	users, err := admin.PendingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestAdminReviewActions(t *testing.T) {
	api := newFakeAPI(t)
	for _, route := range []string{
		"/admin/approve-user/1",
		"/admin/reject-user/1",
		"/admin/deactivate-user/1",
		"/admin/reactivate-user/1",
		"/admin/delete-user/1",
	} {
		api.handle(route, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{})
		})
	}

	ctx := context.Background()
	admin := authclient.NewClient(api.url()).Admin()

	require.NoError(t, admin.ApproveUser(ctx, "1"))
	require.NoError(t, admin.RejectUser(ctx, "1"))
	require.NoError(t, admin.DeactivateUser(ctx, "1"))
	require.NoError(t, admin.ReactivateUser(ctx, "1"))
	require.NoError(t, admin.DeleteUser(ctx, "1"))

	assert.Equal(t, 1, api.count("POST /admin/approve-user/1"))
	assert.Equal(t, 1, api.count("DELETE /admin/delete-user/1"))
}

func TestAdminUserDetailsIncludesHash(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/admin/user-details/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": "1", "username": "alice", "password": "$2a$10$abc"},
		})
	})

	admin := authclient.NewClient(api.url()).Admin()
	details, err := admin.UserDetails(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "alice", details.Username)
	assert.Equal(t, "$2a$10$abc", details.Password)
}

func TestAccountUpdateProfileReconcilesManager(t *testing.T) {
	backend := newAuthBackend(t)
	backend.addUser(testUser())
	backend.handle("/user/update-profile", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "Alice Renamed", body["full_name"])
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "1", "full_name": "Alice Renamed"}})
	})

	manager, _ := newManager(backend)
	_, err := manager.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	// reuse the session-aware client so cookies and store stay shared
	account := manager.Client().Account().WithManager(manager)

	_, err = account.UpdateProfile(context.Background(), authclient.ProfileUpdate{FullName: "Alice Renamed"})
	require.NoError(t, err)

	current := manager.Current()
	require.NotNil(t, current)
	assert.Equal(t, "Alice Renamed", current.FullName)
	assert.Equal(t, "alice", current.Username)
}

func TestRemindersLifecycle(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/reminders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			body := decodeBody(t, r)
			assert.Equal(t, "Ravi", body["customer_name"])
			assert.Equal(t, 1250.5, body["amount"])
			writeJSON(w, http.StatusCreated, map[string]any{
				"reminder": map[string]any{"id": 9, "customer_name": "Ravi", "payment_status": "PENDING"},
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"reminders": []any{map[string]any{"id": 9, "customer_name": "Ravi"}},
			})
		}
	})
	api.handle("/reminders/9/status", func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, authclient.PaymentPaid, body["status"])
		writeJSON(w, http.StatusOK, map[string]any{
			"reminder": map[string]any{"id": 9, "payment_status": "PAID"},
		})
	})
	api.handle("/reminders/9/send", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	ctx := context.Background()
	reminders := authclient.NewClient(api.url()).Reminders()

	created, err := reminders.Create(ctx, authclient.ReminderInput{
		CustomerName:  "Ravi",
		CustomerPhone: "+15551230002",
		Amount:        1250.5,
		DueDate:       "2025-04-01",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, authclient.UserID("9"), created.ID)

	list, err := reminders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	paid, err := reminders.MarkPaid(ctx, "9")
	require.NoError(t, err)
	require.NotNil(t, paid)
	assert.Equal(t, authclient.PaymentPaid, paid.PaymentStatus)

	require.NoError(t, reminders.Send(ctx, "9"))
	assert.Equal(t, 1, api.count("POST /reminders/9/send"))
}
