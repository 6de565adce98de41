package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	log := logging.New(nil, "silent")
	return NewClient("AC123", "token", "whatsapp:+14155238886", log, WithAPIBaseURL(baseURL))
}

func TestSend(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotFrom = r.PostFormValue("From")
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.Send(context.Background(), "whatsapp:+15551234567", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "token", gotPass)
	assert.Equal(t, "whatsapp:+14155238886", gotFrom)
	assert.Equal(t, "whatsapp:+15551234567", gotTo)
	assert.Equal(t, "hello there", gotBody)
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":21211}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	err := c.Send(context.Background(), "whatsapp:+1555", "hi")
	assert.ErrorContains(t, err, "twilio API error (400)")
}

func TestFetchMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	data, contentType, err := c.FetchMedia(context.Background(), srv.URL+"/media/ME123")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, data)
	assert.Equal(t, "image/png", contentType)
}

func TestFetchMedia_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, _, err := c.FetchMedia(context.Background(), srv.URL+"/media/gone")
	assert.ErrorContains(t, err, "media fetch error (404)")
}

func TestParseInbound_Text(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "  log today  ")
	form.Set("NumMedia", "0")

	r := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	msg, err := ParseInbound(r)
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+15551234567", msg.From)
	assert.Equal(t, "log today", msg.Body)
	assert.Empty(t, msg.Media)
}

func TestParseInbound_Media(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "")
	form.Set("NumMedia", "2")
	form.Set("MediaUrl0", "https://api.twilio.com/media/ME0")
	form.Set("MediaContentType0", "image/jpeg")
	form.Set("MediaUrl1", "https://api.twilio.com/media/ME1")
	form.Set("MediaContentType1", "image/png")

	r := httptest.NewRequest("POST", "/webhook", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	msg, err := ParseInbound(r)
	require.NoError(t, err)
	require.Len(t, msg.Media, 2)
	assert.Equal(t, "https://api.twilio.com/media/ME0", msg.Media[0].URL)
	assert.Equal(t, "image/jpeg", msg.Media[0].MimeType)
}

func TestParseInbound_MissingFrom(t *testing.T) {
	r := httptest.NewRequest("POST", "/webhook", strings.NewReader("Body=hi"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := ParseInbound(r)
	assert.Error(t, err)
}

func TestWriteTwiML(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteTwiML(rec, `Reply *OK* to confirm, or correct values (e.g. "protein 35").`)

	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<Response>")
	assert.Contains(t, body, "&#34;protein 35&#34;")
}

func TestWriteTwiML_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteTwiML(rec, "")
	assert.Contains(t, rec.Body.String(), "<Response></Response>")
}
