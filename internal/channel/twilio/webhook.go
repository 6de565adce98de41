package twilio

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/soyeahso/macrolog/internal/domain"
)

// ParseInbound converts a Twilio webhook form POST into an inbound
// message. Media attachments are referenced as MediaUrlN/MediaContentTypeN
// pairs with NumMedia giving the count.
func ParseInbound(r *http.Request) (domain.InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return domain.InboundMessage{}, fmt.Errorf("parsing webhook form: %w", err)
	}

	msg := domain.InboundMessage{
		From: r.PostFormValue("From"),
		Body: strings.TrimSpace(r.PostFormValue("Body")),
	}
	if msg.From == "" {
		return domain.InboundMessage{}, fmt.Errorf("webhook missing From")
	}

	numMedia, _ := strconv.Atoi(r.PostFormValue("NumMedia"))
	for i := 0; i < numMedia; i++ {
		u := r.PostFormValue(fmt.Sprintf("MediaUrl%d", i))
		if u == "" {
			continue
		}
		msg.Media = append(msg.Media, domain.Attachment{
			URL:      u,
			MimeType: r.PostFormValue(fmt.Sprintf("MediaContentType%d", i)),
		})
	}

	return msg, nil
}

// twimlResponse is the messaging TwiML document returned to Twilio.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// WriteTwiML writes a TwiML reply. An empty body produces an empty
// <Response/>, which tells Twilio to send nothing.
func WriteTwiML(w http.ResponseWriter, body string) {
	out, err := xml.Marshal(twimlResponse{Message: body})
	if err != nil {
		http.Error(w, "twiml encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(xml.Header))
	w.Write(out)
}
