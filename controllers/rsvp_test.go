package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wedding-rsvp-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRSVPRouter(t *testing.T) (*gin.Engine, services.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOAD_DIR", t.TempDir())

	store := services.NewMemoryStore()
	excel := services.NewExcelService(t.TempDir())
	svc := services.NewRSVPService(store, excel, services.NewDriveService(), services.NewNotifier())
	rc := NewRSVPController(svc, store, excel)

	r := gin.New()
	r.POST("/api/rsvp/submit", rc.Submit)
	r.GET("/api/rsvp/all", rc.GetAll)
	r.GET("/api/rsvp/stats", rc.GetStats)
	r.GET("/api/rsvp/download", rc.Download)
	return r, store
}

func TestSubmitRSVP_JSON(t *testing.T) {
	r, store := newTestRSVPRouter(t)

	body, _ := json.Marshal(gin.H{
		"guestName":      "Asha Rao",
		"numberOfGuests": 2,
		"attending":      "no",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool `json:"success"`
		SerialNo int  `json:"serialNo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.SerialNo)

	entries, err := store.ListRSVPs(services.DefaultWeddingID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Asha Rao", entries[0].GuestName)
}

func TestSubmitRSVP_ValidationFailure(t *testing.T) {
	r, store := newTestRSVPRouter(t)

	body, _ := json.Marshal(gin.H{
		"guestName":      "Asha Rao",
		"numberOfGuests": 2,
		"attending":      "yes",
		// attending without any documents
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "ID document")

	entries, err := store.ListRSVPs(services.DefaultWeddingID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitRSVP_Multipart(t *testing.T) {
	r, store := newTestRSVPRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("weddingId", "wedding2"))
	require.NoError(t, mw.WriteField("guestName", "Vikram Shah"))
	require.NoError(t, mw.WriteField("numberOfGuests", "4"))
	require.NoError(t, mw.WriteField("attending", "yes"))
	part, err := mw.CreateFormFile("documents", "passport.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries, err := store.ListRSVPs("wedding2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Vikram Shah", entries[0].GuestName)
	require.Len(t, entries[0].DocumentPaths, 1)
	assert.Contains(t, entries[0].DocumentPaths[0], "passport.jpg")
}

func TestGetRSVPs_ScopedAndAll(t *testing.T) {
	r, _ := newTestRSVPRouter(t)

	submit := func(weddingID, guest string) {
		body, _ := json.Marshal(gin.H{"weddingId": weddingID, "guestName": guest, "attending": "no"})
		req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	submit("wedding1", "Asha Rao")
	submit("wedding1", "Meera Iyer")
	submit("wedding2", "Vikram Shah")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rsvp/all?weddingId=wedding1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var scoped struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scoped))
	assert.Equal(t, 2, scoped.Count)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rsvp/all?weddingId=all", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var all struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Contains(t, all.Data, "wedding1")
	assert.Contains(t, all.Data, "wedding2")
}

func TestGetStats(t *testing.T) {
	r, _ := newTestRSVPRouter(t)

	body, _ := json.Marshal(gin.H{
		"guestName":      "Asha Rao",
		"numberOfGuests": 3,
		"attending":      "yes",
		"documents":      []string{"aW1hZ2U="},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rsvp/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats struct {
			Total        int `json:"total"`
			Attending    int `json:"attending"`
			NotAttending int `json:"notAttending"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.Attending)
	assert.Equal(t, 0, resp.Stats.NotAttending)
}

func TestDownload_NoWorkbookYet(t *testing.T) {
	r, _ := newTestRSVPRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rsvp/download?weddingId=never-seen", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownload_AfterSubmission(t *testing.T) {
	r, _ := newTestRSVPRouter(t)

	body, _ := json.Marshal(gin.H{"guestName": "Asha Rao", "attending": "no"})
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rsvp/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx"))
}
