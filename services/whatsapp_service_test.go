package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wedding-rsvp-backend/models"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWhatsAppService(baseURL string) *WhatsAppService {
	return &WhatsAppService{
		client:        resty.New().SetBaseURL(baseURL),
		phoneNumberID: "1234567890",
		accessToken:   "test-token",
		verifyToken:   "hush",
		countryCode:   "91",
		BatchSize:     5,
		BatchDelay:    20 * time.Millisecond,
	}
}

func TestVerifyWebhook(t *testing.T) {
	svc := testWhatsAppService("http://unused")

	assert.Equal(t, "challenge-42", svc.VerifyWebhook("subscribe", "hush", "challenge-42"))
	assert.Empty(t, svc.VerifyWebhook("subscribe", "wrong", "challenge-42"))
	assert.Empty(t, svc.VerifyWebhook("unsubscribe", "hush", "challenge-42"))
	assert.Empty(t, svc.VerifyWebhook("", "", "challenge-42"))
}

func TestParseInbound(t *testing.T) {
	svc := testWhatsAppService("http://unused")

	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "919876543210",
						"id": "wamid.abc",
						"timestamp": "1726000000",
						"type": "text",
						"text": {"body": "We will be there!"}
					}],
					"contacts": [{
						"wa_id": "919876543210",
						"profile": {"name": "Asha Rao"}
					}]
				}
			}]
		}]
	}`

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	msg := svc.ParseInbound(&payload)
	require.NotNil(t, msg)
	assert.Equal(t, "919876543210", msg.From)
	assert.Equal(t, "Asha Rao", msg.Name)
	assert.Equal(t, "We will be there!", msg.Body)
	assert.Equal(t, "wamid.abc", msg.MessageID)
	assert.Equal(t, "text", msg.Type)
}

func TestParseInbound_Defensive(t *testing.T) {
	svc := testWhatsAppService("http://unused")

	assert.Nil(t, svc.ParseInbound(nil))
	assert.Nil(t, svc.ParseInbound(&WebhookPayload{Object: "page"}))
	assert.Nil(t, svc.ParseInbound(&WebhookPayload{Object: "whatsapp_business_account"}))

	// Status-only change, no messages array.
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"value": {}}]}]
	}`), &payload))
	assert.Nil(t, svc.ParseInbound(&payload))
}

func TestSendText_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1234567890/messages", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"messages":[{"id":"wamid.xyz"}]}`)
	}))
	defer server.Close()

	svc := testWhatsAppService(server.URL)

	id, err := svc.SendText("98765 43210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.xyz", id)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "919876543210", gotBody["to"])
	assert.Equal(t, "text", gotBody["type"])
}

func TestSendText_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Recipient phone number not in allowed list","code":131030}}`)
	}))
	defer server.Close()

	svc := testWhatsAppService(server.URL)

	_, err := svc.SendText("9876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recipient phone number not in allowed list")
}

func TestSendText_NotConfigured(t *testing.T) {
	svc := testWhatsAppService("http://unused")
	svc.accessToken = ""

	_, err := svc.SendText("9876543210", "hello")
	assert.ErrorIs(t, err, ErrWhatsAppNotConfigured)
}

func TestSendTemplate_PayloadShape(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"messages":[{"id":"wamid.tpl"}]}`)
	}))
	defer server.Close()

	svc := testWhatsAppService(server.URL)

	id, err := svc.SendTemplate("9876543210", "Asha Rao", "wedding_invitation", "")
	require.NoError(t, err)
	assert.Equal(t, "wamid.tpl", id)

	tpl := gotBody["template"].(map[string]interface{})
	assert.Equal(t, "wedding_invitation", tpl["name"])
	assert.Equal(t, "en", tpl["language"].(map[string]interface{})["code"])

	components := tpl["components"].([]interface{})
	require.Len(t, components, 1)
	header := components[0].(map[string]interface{})
	assert.Equal(t, "header", header["type"])
	params := header["parameters"].([]interface{})
	require.Len(t, params, 1)
	assert.Equal(t, "Asha Rao", params[0].(map[string]interface{})["text"])
}

func TestSendBulk_BatchesWithDelay(t *testing.T) {
	svc := testWhatsAppService("http://unused")
	svc.BatchDelay = 50 * time.Millisecond

	var mu sync.Mutex
	sendTimes := make(map[string]time.Time)

	guests := make([]models.GuestContact, 12)
	for i := range guests {
		guests[i] = models.GuestContact{
			Name:        fmt.Sprintf("Guest %d", i),
			PhoneNumber: fmt.Sprintf("98765432%02d", i),
		}
	}

	results := svc.SendBulk(guests, func(g models.GuestContact) (string, error) {
		mu.Lock()
		sendTimes[g.Name] = time.Now()
		mu.Unlock()
		return "wamid." + g.Name, nil
	})

	require.Len(t, results, 12)
	for i, r := range results {
		assert.Equal(t, guests[i].Name, r.Guest, "results keep submission order")
		assert.True(t, r.Success)
	}

	// Guests 0-4 go out together; guest 5 waits for the inter-batch delay.
	gap := sendTimes["Guest 5"].Sub(sendTimes["Guest 0"])
	assert.GreaterOrEqual(t, gap, 50*time.Millisecond)

	// Within a batch the sends are concurrent, so the spread stays small.
	intra := sendTimes["Guest 4"].Sub(sendTimes["Guest 0"])
	if intra < 0 {
		intra = -intra
	}
	assert.Less(t, intra, 50*time.Millisecond)
}

func TestSendBulk_FailureDoesNotHaltBatch(t *testing.T) {
	svc := testWhatsAppService("http://unused")
	svc.BatchDelay = time.Millisecond

	guests := []models.GuestContact{
		{Name: "A", PhoneNumber: "9876543201"},
		{Name: "B", PhoneNumber: "9876543202"},
		{Name: "C", PhoneNumber: "9876543203"},
	}

	results := svc.SendBulk(guests, func(g models.GuestContact) (string, error) {
		if g.Name == "B" {
			return "", errors.New("provider rejected")
		}
		return "wamid." + g.Name, nil
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "provider rejected", results[1].Error)
	assert.True(t, results[2].Success)
}

func TestComposeInvitation(t *testing.T) {
	w := &models.Wedding{
		BrideName: "Priya",
		GroomName: "Arjun",
		Date:      "20 November 2026",
		Time:      "6:00 PM",
		Venue:     "Lakeview Gardens",
	}

	msg := ComposeInvitation("Asha Rao", w, "https://example.com/rsvp?id=x")
	assert.Contains(t, msg, "Dear Asha Rao")
	assert.Contains(t, msg, "Priya & Arjun")
	assert.Contains(t, msg, "Lakeview Gardens")
	assert.Contains(t, msg, "https://example.com/rsvp?id=x")
	// No couple name saved: falls back to bride & groom.
	assert.Contains(t, msg, "With love,\nPriya & Arjun")
}
