package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSpeak(t *testing.T) {
	var got speakRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1/text-to-speech/voice-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "secret" {
			t.Errorf("xi-api-key = %q", r.Header.Get("xi-api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/", APIKey: "secret", VoiceID: "voice-1", ModelID: "m1"})
	if err != nil {
		t.Fatal(err)
	}

	audio, err := c.Speak(context.Background(), "Hello there")
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(audio) != "ID3audio" {
		t.Errorf("Speak() = %q", audio)
	}
	if got.Text != "Hello there" || got.ModelID != "m1" {
		t.Errorf("request body = %+v", got)
	}
}

func TestSpeakErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid key secret"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "secret", VoiceID: "v"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Speak(context.Background(), "hi")
	if err == nil {
		t.Fatal("Speak() expected error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks key: %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status", err)
	}
}

func TestSpeakEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, APIKey: "k", VoiceID: "v"})
	if _, err := c.Speak(context.Background(), "hi"); err == nil {
		t.Error("Speak() expected error for empty body")
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing key", Config{VoiceID: "v"}},
		{"missing voice", Config{APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}
