package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestElevenLabs_PassesTagsThrough(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/text-to-speech/voice-1") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("output_format") != "mp3_44100_128" {
			t.Errorf("unexpected output format: %s", r.URL.Query().Get("output_format"))
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("xi-api-key"))
		}

		body, _ := io.ReadAll(r.Body)
		var req speechRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		gotText = req.Text

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	engine, err := NewElevenLabsEngine(ElevenLabsConfig{APIURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !engine.TagAware() {
		t.Error("elevenlabs engine must be tag-aware")
	}

	audio, err := engine.Synthesize(context.Background(), "[cheerfully] Hello!", "voice-1", "eleven_v3")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "fake-mp3-bytes" {
		t.Errorf("unexpected audio bytes: %q", audio)
	}
	// 标签感知型提供者必须原样透传标签
	if gotText != "[cheerfully] Hello!" {
		t.Errorf("tags must pass through unchanged, got %q", gotText)
	}
}

func TestElevenLabs_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	engine, _ := NewElevenLabsEngine(ElevenLabsConfig{APIURL: server.URL, APIKey: "bad"})
	if _, err := engine.Synthesize(context.Background(), "hi", "v", "m"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestOpenAI_StripsTagsBeforeSending(t *testing.T) {
	var gotInput string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var req openaiSpeechRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		gotInput = req.Input

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	engine, err := NewOpenAIEngine(OpenAIConfig{APIURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.TagAware() {
		t.Error("openai engine must not be tag-aware")
	}

	if _, err := engine.Synthesize(context.Background(), "[interrupting] Wait [laughs] up!", "alloy", "gpt-4o-mini-tts"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	// 词表内标签在发送前剥离
	if gotInput != "Wait up!" {
		t.Errorf("expected stripped text, got %q", gotInput)
	}
}

func TestNewEngines_RequireCredentials(t *testing.T) {
	if _, err := NewElevenLabsEngine(ElevenLabsConfig{}); err == nil {
		t.Error("expected error without ElevenLabs api key")
	}
	if _, err := NewOpenAIEngine(OpenAIConfig{}); err == nil {
		t.Error("expected error without OpenAI api key")
	}
	if _, err := NewTencentEngine(TencentConfig{}); err == nil {
		t.Error("expected error without Tencent credentials")
	}
}

func TestTencent_InvalidVoiceID(t *testing.T) {
	engine, err := NewTencentEngine(TencentConfig{SecretID: "id", SecretKey: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := engine.Synthesize(context.Background(), "你好", "not-a-number", ""); err == nil {
		t.Error("expected error for non-numeric voice id")
	}
}
