//go:build integration

package org

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orghub/internal/admin"
	"orghub/internal/admin/lockout"
	adminservice "orghub/internal/admin/service"
	"orghub/internal/jwttoken"
	orgmodule "orghub/internal/org"
	orgservice "orghub/internal/org/service"
	"orghub/internal/org/store/registry"
	"orghub/internal/org/store/tenantcoll"
	"orghub/internal/platform/config"
	"orghub/internal/platform/postgres"
	authmw "orghub/pkg/platform/middleware/auth"
	"orghub/pkg/platform/middleware/requestid"
	"orghub/pkg/platform/middleware/requesttime"
	"orghub/pkg/testutil/containers"
)

// TestOrganizationLifecycle exercises the full HTTP surface against a real
// Postgres: registration, login, rename with collection migration, cross-org
// authorization, and teardown.
func TestOrganizationLifecycle(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	require.NoError(t, postgres.EnsureSchema(ctx, pg.DB))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := jwttoken.New(config.JWTConfig{
		SigningKey: "integration-signing-key",
		Algorithm:  "HS256",
		TTL:        time.Hour,
	})
	require.NoError(t, err)

	collections := tenantcoll.NewPostgres(pg.DB)
	registryStore := registry.NewPostgres(pg.DB)
	orgService := orgmodule.NewService(registryStore, collections, orgservice.WithLogger(logger))

	locks, err := lockout.New(lockout.NewInMemoryStore(), lockout.WithLogger(logger))
	require.NoError(t, err)
	adminService := admin.NewService(registryStore, tokens,
		adminservice.WithLogger(logger),
		adminservice.WithLockout(locks),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	orgmodule.NewHandler(orgService, logger).Register(r)
	admin.NewHandler(adminService, logger).Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwttoken.NewServiceAdapter(tokens), logger))
		orgmodule.NewHandler(orgService, logger).RegisterProtected(r)
	})

	do := func(method, path, token string, payload any) *httptest.ResponseRecorder {
		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, body)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	// Register.
	rec := do(http.MethodPost, "/org", "", map[string]string{
		"organization_name": "Acme, Inc.",
		"admin_email":       "admin@acme.test",
		"password":          "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	exists, err := collections.Exists(ctx, "org_acme_inc")
	require.NoError(t, err)
	assert.True(t, exists)

	// Seed tenant data so the rename has something to migrate.
	require.NoError(t, collections.Insert(ctx, "org_acme_inc", tenantcoll.Document(`{"tenant": "alpha"}`)))
	require.NoError(t, collections.Insert(ctx, "org_acme_inc", tenantcoll.Document(`{"tenant": "beta"}`)))

	// Login.
	rec = do(http.MethodPost, "/admin/login", "", map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "bearer", login.TokenType)

	// Wrong password is refused without leaking whether the account exists.
	rec = do(http.MethodPost, "/admin/login", "", map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Rename: record and collection move together.
	rec = do(http.MethodPut, "/org", login.AccessToken, map[string]string{
		"organization_name": "Globex Corp",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		OrganizationName string `json:"organization_name"`
		CollectionName   string `json:"collection_name"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "Globex Corp", updated.OrganizationName)
	assert.Equal(t, "org_globex_corp", updated.CollectionName)

	docs, err := collections.Documents(ctx, "org_globex_corp")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	exists, err = collections.Exists(ctx, "org_acme_inc")
	require.NoError(t, err)
	assert.False(t, exists)

	// Old name is gone, new name resolves.
	rec = do(http.MethodGet, "/org/Acme,%20Inc.", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(http.MethodGet, "/org/globex%20corp", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The old token still works: authorization follows the organization,
	// but its embedded name no longer matches anything for deletes.
	rec = do(http.MethodDelete, "/org/Globex%20Corp", login.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Re-login under the new name, then tear down.
	rec = do(http.MethodPost, "/admin/login", "", map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))

	rec = do(http.MethodDelete, "/org/Globex%20Corp", login.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/org/globex%20corp", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	exists, err = collections.Exists(ctx, "org_globex_corp")
	require.NoError(t, err)
	assert.False(t, exists)
}
