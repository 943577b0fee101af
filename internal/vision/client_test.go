package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
				},
			},
		},
	}
}

func TestClientDescribeParsesObservation(t *testing.T) {
	var gotAuth string
	var gotRequest chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		content := "```json\n" +
			`{"description":"Concert footage","artist":"The Band","title":"Big Hit","content_type":"music video","is_explicit":true}` +
			"\n```"
		if err := json.NewEncoder(w).Encode(completionResponse(content)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	observation, err := client.Describe(context.Background(), VideoPrompt, []byte("framebytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}

	if gotAuth != "Bearer test" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotRequest.Model != "demo-model" {
		t.Fatalf("unexpected model %q", gotRequest.Model)
	}
	if len(gotRequest.Messages) != 1 || len(gotRequest.Messages[0].Content) != 2 {
		t.Fatalf("expected one message with two content parts, got %+v", gotRequest.Messages)
	}
	if gotRequest.Messages[0].Content[0].Type != "text" {
		t.Fatalf("expected first part to be text, got %q", gotRequest.Messages[0].Content[0].Type)
	}
	imagePart := gotRequest.Messages[0].Content[1]
	if imagePart.Type != "image_url" || imagePart.ImageURL == nil {
		t.Fatalf("expected second part to be image_url, got %+v", imagePart)
	}
	if !strings.HasPrefix(imagePart.ImageURL.URL, "data:image/jpeg;base64,") {
		t.Fatalf("expected base64 data URL, got %q", imagePart.ImageURL.URL)
	}

	if observation.Artist != "The Band" {
		t.Fatalf("expected artist The Band, got %q", observation.Artist)
	}
	if observation.Title != "Big Hit" {
		t.Fatalf("expected title Big Hit, got %q", observation.Title)
	}
	if observation.ContentType != "music video" {
		t.Fatalf("expected raw content type preserved, got %q", observation.ContentType)
	}
	if observation.VideoType != "Music Video" {
		t.Fatalf("expected canonical video type, got %q", observation.VideoType)
	}
	if !observation.RatingKnown || observation.ContentRating != "Explicit" {
		t.Fatalf("expected explicit rating, got %+v", observation)
	}
	if observation.Raw == "" || !strings.Contains(observation.Raw, "```") {
		t.Fatalf("expected raw payload to retain code fence, got %q", observation.Raw)
	}
}

func TestClientDescribeDropsNullPlaceholders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"description":"A field of flowers","artist":"null","title":"null","content_type":"Photo","is_explicit":false}`
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	observation, err := client.Describe(context.Background(), ImagePrompt, []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if observation.Artist != "" || observation.Title != "" {
		t.Fatalf("expected null placeholders to be dropped, got %+v", observation)
	}
	if observation.ContentRating != "Clean" {
		t.Fatalf("expected clean rating, got %q", observation.ContentRating)
	}
	if observation.Description != "A field of flowers" {
		t.Fatalf("unexpected description %q", observation.Description)
	}
}

func TestClientDescribeMissingExplicitFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"description":"Sunset over water"}`
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	observation, err := client.Describe(context.Background(), ImagePrompt, []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if observation.RatingKnown || observation.ContentRating != "" {
		t.Fatalf("expected no rating when flag absent, got %+v", observation)
	}
}

func TestClientDescribeExtractsJSONFromProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `Here is the analysis you asked for: {"description":"Karaoke screen","content_type":"karaoke","is_explicit":false} Hope that helps!`
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	observation, err := client.Describe(context.Background(), VideoPrompt, []byte("frame"), "image/jpeg")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if observation.VideoType != "Karaoke" {
		t.Fatalf("expected karaoke video type, got %q", observation.VideoType)
	}
}

func TestClientDescribeRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse(`{"description":"ok"}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	observation, err := client.Describe(context.Background(), ImagePrompt, []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if observation.Description != "ok" {
		t.Fatalf("unexpected description %q", observation.Description)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientDescribeAuthFailureDoesNotRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "bad", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Describe(context.Background(), ImagePrompt, []byte("img"), "image/png"); err == nil {
		t.Fatal("expected describe to fail")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestClientDescribeRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo-model"})
	if _, err := client.Describe(context.Background(), ImagePrompt, []byte("img"), "image/png"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestCanonicalContentType(t *testing.T) {
	cases := map[string]string{
		"music video":      "Music Video",
		"MusicVideo":       "Music Video",
		"lyrics video":     "Lyric Video",
		"BACKGROUND FX":    "Background FX",
		"live performance": "Live",
		"Interview":        "Interview",
	}
	for input, want := range cases {
		if got := CanonicalContentType(input); got != want {
			t.Fatalf("CanonicalContentType(%q) = %q, want %q", input, got, want)
		}
	}
}
