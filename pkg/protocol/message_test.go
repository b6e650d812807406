package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "utterance message",
			msgType: TypeUtterance,
			data:    UtteranceData{Speaker: "user-1", Text: "find restaurants in Oakland", Final: true},
			wantErr: false,
		},
		{
			name:    "map update message",
			msgType: TypeMapUpdate,
			data:    MapUpdateData{Center: Coordinates{37.7749, -122.4194}},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg == nil && !tt.wantErr {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestUtteranceRoundTrip(t *testing.T) {
	original := UtteranceData{
		ID:      "u-42",
		Speaker: "brendan",
		Text:    "plan me a trip from oakland to berkeley",
		Final:   true,
	}

	msg, err := NewUtteranceMessage(original.ID, original.Speaker, original.Text, original.Final)
	if err != nil {
		t.Fatalf("NewUtteranceMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	if parsed.Type != TypeUtterance {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeUtterance)
	}

	data, err := parsed.GetUtteranceData()
	if err != nil {
		t.Fatalf("GetUtteranceData() error = %v", err)
	}

	if data.Text != original.Text {
		t.Errorf("Text = %q, want %q", data.Text, original.Text)
	}
	if data.Speaker != original.Speaker {
		t.Errorf("Speaker = %q, want %q", data.Speaker, original.Speaker)
	}
	if !data.Final {
		t.Error("Final = false, want true")
	}
}

func TestRouteUpdateMessage(t *testing.T) {
	waypoints := []Waypoint{
		{Location: "Oakland", Coordinates: Coordinates{37.8044, -122.2712}},
		{Location: "Berkeley", Coordinates: Coordinates{37.8715, -122.2730}},
	}
	path := []Coordinates{waypoints[0].Coordinates, waypoints[1].Coordinates}
	bounds := &Bounds{North: 37.8715, South: 37.8044, East: -122.2712, West: -122.2730}

	msg, err := NewRouteUpdateMessage("driving", waypoints, path, bounds)
	if err != nil {
		t.Fatalf("NewRouteUpdateMessage() error = %v", err)
	}

	data, err := msg.GetRouteUpdateData()
	if err != nil {
		t.Fatalf("GetRouteUpdateData() error = %v", err)
	}

	if data.RouteType != "driving" {
		t.Errorf("RouteType = %q, want driving", data.RouteType)
	}
	if len(data.Waypoints) != 2 {
		t.Fatalf("Waypoints = %d, want 2", len(data.Waypoints))
	}
	if data.Waypoints[0].Location != "Oakland" {
		t.Errorf("first waypoint = %q, want Oakland", data.Waypoints[0].Location)
	}
	if len(data.Path) != 2 {
		t.Errorf("Path = %d points, want 2", len(data.Path))
	}
	if data.Bounds == nil || data.Bounds.North != 37.8715 {
		t.Errorf("Bounds not preserved: %+v", data.Bounds)
	}
}

func TestPaymentOfferMessage(t *testing.T) {
	tx := json.RawMessage(`{"type":"transfer","amount_lamports":500000}`)
	msg, err := NewMessage(TypePaymentOffer, PaymentOfferData{
		OfferID:     "offer-1",
		AmountUSD:   100,
		AmountSOL:   0.5,
		Recipient:   "VendorPubKey111",
		Transaction: tx,
	})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	data, err := msg.GetPaymentOfferData()
	if err != nil {
		t.Fatalf("GetPaymentOfferData() error = %v", err)
	}

	if data.AmountUSD != 100 {
		t.Errorf("AmountUSD = %v, want 100", data.AmountUSD)
	}
	if data.AmountSOL != 0.5 {
		t.Errorf("AmountSOL = %v, want 0.5", data.AmountSOL)
	}
	if string(data.Transaction) != string(tx) {
		t.Errorf("Transaction = %s, want %s", data.Transaction, tx)
	}
}

func TestItineraryMessages(t *testing.T) {
	addMsg, err := NewItineraryAddMessage(ItineraryItem{
		ID:            "restaurant-chez-panisse",
		Name:          "Chez Panisse",
		Kind:          "restaurant",
		EstimatedCost: 55,
		CostLabel:     "$55/person",
	})
	if err != nil {
		t.Fatalf("NewItineraryAddMessage() error = %v", err)
	}

	data, err := addMsg.GetItineraryData()
	if err != nil {
		t.Fatalf("GetItineraryData() error = %v", err)
	}
	if data.Op != ItineraryAdd {
		t.Errorf("Op = %q, want %q", data.Op, ItineraryAdd)
	}
	if data.Item == nil || data.Item.Name != "Chez Panisse" {
		t.Errorf("Item not preserved: %+v", data.Item)
	}

	clearMsg, _ := NewItineraryClearMessage()
	clearData, err := clearMsg.GetItineraryData()
	if err != nil {
		t.Fatalf("GetItineraryData() error = %v", err)
	}
	if clearData.Op != ItineraryClear {
		t.Errorf("Op = %q, want %q", clearData.Op, ItineraryClear)
	}
	if clearData.Item != nil {
		t.Error("clear message should carry no item")
	}
}

func TestSpeakMessageAudio(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}
	msg, err := NewSpeakMessage("Hello traveler", audio, "pcm16", 24000)
	if err != nil {
		t.Fatalf("NewSpeakMessage() error = %v", err)
	}

	data, err := msg.GetSpeakData()
	if err != nil {
		t.Fatalf("GetSpeakData() error = %v", err)
	}
	if data.Text != "Hello traveler" {
		t.Errorf("Text = %q", data.Text)
	}

	decoded, err := data.DecodeAudio()
	if err != nil {
		t.Fatalf("DecodeAudio() error = %v", err)
	}
	if len(decoded) != len(audio) {
		t.Errorf("decoded %d bytes, want %d", len(decoded), len(audio))
	}
}

func TestSpeakMessageNoAudio(t *testing.T) {
	msg, err := NewSpeakMessage("Sorry, I didn't catch that", nil, "", 0)
	if err != nil {
		t.Fatalf("NewSpeakMessage() error = %v", err)
	}

	data, err := msg.GetSpeakData()
	if err != nil {
		t.Fatalf("GetSpeakData() error = %v", err)
	}
	if data.Audio != "" {
		t.Errorf("Audio = %q, want empty", data.Audio)
	}
	if data.Format != "" {
		t.Errorf("Format = %q, want empty", data.Format)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage([]byte("not json"))
	if err == nil {
		t.Error("ParseMessage() should fail on invalid JSON")
	}
}
