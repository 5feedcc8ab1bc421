package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wenhsiu/aiot-in-go/pkg/identity"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

type preferenceRequest struct {
	Value string `json:"value"`
}

// RegisterPreferencesEndpoints registers the per-user preference endpoints.
// Preferences are scoped to the authenticated user, so no extra permission
// beyond a valid token is required.
func RegisterPreferencesEndpoints(s *server.Server) {
	prefsStore := s.PreferencesStore

	router := s.Router.PathPrefix("/api/preferences").Subrouter()
	router.Use(s.JWTMiddleware.Middleware)

	router.HandleFunc("", handleListPreferences(prefsStore)).Methods("GET")
	router.HandleFunc("/{key}", handleGetPreference(prefsStore)).Methods("GET")
	router.HandleFunc("/{key}", handlePutPreference(prefsStore)).Methods("PUT")
	router.HandleFunc("/{key}", handleDeletePreference(prefsStore)).Methods("DELETE")
}

func handleListPreferences(prefsStore store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		prefs, err := prefsStore.ListPreferences(id.UserID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list preferences")
			return
		}

		respondWithJSON(w, http.StatusOK, listResponse{Count: int64(len(prefs)), Items: prefs})
	}
}

func handleGetPreference(prefsStore store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		pref, err := prefsStore.FetchPreference(id.UserID, muxVar(r, "key"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "preference not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to fetch preference")
			return
		}

		respondWithJSON(w, http.StatusOK, pref)
	}
}

func handlePutPreference(prefsStore store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		var req preferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		pref := &model.UserPreference{
			UserID:    id.UserID,
			PrefKey:   muxVar(r, "key"),
			PrefValue: req.Value,
		}
		if err := prefsStore.UpsertPreference(pref); err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to save preference")
			return
		}

		respondWithJSON(w, http.StatusOK, pref)
	}
}

func handleDeletePreference(prefsStore store.PreferencesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		if err := prefsStore.DeletePreference(id.UserID, muxVar(r, "key")); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "preference not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to delete preference")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
