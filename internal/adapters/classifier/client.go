// Package classifier provides an adapter for a facial emotion classifier
// served over HTTP. Frames are posted as JPEG and the service answers with
// FER-style detections: a bounding box and per-label scores for each face.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:5005"
	jpegQuality    = 85
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.EmotionClassifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithClientCredentials authenticates every request with an OAuth2 token
// obtained through the client-credentials grant.
func WithClientCredentials(tokenURL, clientID, clientSecret string) Option {
	return func(cl *Client) {
		cfg := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		hc := cfg.Client(context.Background())
		hc.Timeout = cl.httpClient.Timeout
		cl.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireFace struct {
	Box      []int         `json:"box"`
	Emotions orderedScores `json:"emotions"`
}

type detectResponse struct {
	Faces []wireFace `json:"faces"`
	Error string     `json:"error,omitempty"`
}

// Detect posts frame to /detect and returns every detected face.
func (c *Client) Detect(ctx context.Context, frame image.Image) ([]domain.Face, error) {
	var body bytes.Buffer
	if err := jpeg.Encode(&body, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("classifier: encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", &body)
	if err != nil {
		return nil, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("classifier: read response: %w", err)
	}

	faces, decodeErr := decodeFaces(raw)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("classifier: decode response: %w", decodeErr)
	}
	return faces, nil
}

// decodeFaces accepts {"faces":[...]} as well as the bare array FER prints.
func decodeFaces(raw []byte) ([]domain.Face, error) {
	trimmed := bytes.TrimSpace(raw)
	var wire []wireFace
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, err
		}
	} else {
		var dr detectResponse
		if err := json.Unmarshal(trimmed, &dr); err != nil {
			return nil, err
		}
		if dr.Error != "" {
			return nil, fmt.Errorf("service error: %s", dr.Error)
		}
		wire = dr.Faces
	}

	faces := make([]domain.Face, 0, len(wire))
	for _, w := range wire {
		if len(w.Box) != 4 {
			return nil, fmt.Errorf("box has %d values, want 4", len(w.Box))
		}
		faces = append(faces, domain.Face{
			Box:      domain.BoundingBox{X: w.Box[0], Y: w.Box[1], Width: w.Box[2], Height: w.Box[3]},
			Emotions: domain.EmotionScores(w.Emotions),
		})
	}
	return faces, nil
}

// orderedScores decodes a JSON object of label -> score keeping key order,
// which a Go map would lose.
type orderedScores domain.EmotionScores

func (o *orderedScores) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("emotions: expected object, got %v", tok)
	}

	var out orderedScores
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("emotions: unexpected key %v", keyTok)
		}
		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("emotions: score for %q: %w", label, err)
		}
		out = append(out, domain.EmotionScore{Label: label, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}
