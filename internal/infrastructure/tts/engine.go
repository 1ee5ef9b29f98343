// Package tts adapts an HTTP speech-synthesis service (a Kokoro-style server)
// to the pipeline's synthesizer port.
package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"StoryForge/internal/config"
	"StoryForge/internal/domain"
	"StoryForge/internal/ports"
)

const healthCheckTimeout = 10 * time.Second

// pcm16Max scales signed 16-bit integer samples into [-1, 1).
const pcm16Max = 1 << 15

// ErrEngineInit marks a synthesis service that could not be reached at
// construction time. Nothing can be produced without it, so callers abort.
var ErrEngineInit = errors.New("synthesis engine initialization failed")

// Engine is a long-lived handle to the synthesis service. It is constructed
// once per assembly stage, with a fixed language configuration, and passed
// explicitly to every per-file operation.
type Engine struct {
	baseURL    string
	langCode   string
	httpClient *http.Client
}

var _ ports.SpeechSynthesizer = (*Engine)(nil)

// NewEngine builds the handle and verifies the service is reachable; a failed
// health check wraps ErrEngineInit.
func NewEngine(ctx context.Context, cfg config.TTSConfig) (*Engine, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	e := &Engine{
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
		langCode:   cfg.LangCode,
		httpClient: &http.Client{Timeout: timeout},
	}

	if err := e.healthCheck(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	return e, nil
}

// Synthesize requests one full synthesis pass for the text. The returned
// segments are in generation order; re-processing requires a fresh request.
func (e *Engine) Synthesize(ctx context.Context, text, voice string) ([]domain.AudioSegment, error) {
	body, err := json.Marshal(map[string]any{
		"text":      text,
		"voice":     voice,
		"lang_code": e.langCode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request synthesis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("synthesis error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Segments []wireSegment `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode synthesis response: %w", err)
	}

	segments := make([]domain.AudioSegment, 0, len(decoded.Segments))
	for i, ws := range decoded.Segments {
		segment, err := ws.toDomain()
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

// Close releases the handle. The HTTP client holds no connection state that
// outlives the stage, so this only exists to satisfy the scoped-acquisition
// contract.
func (e *Engine) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

func (e *Engine) healthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: %s", resp.Status)
	}

	return nil
}

// wireSegment carries one synthesis segment on the wire: either float samples
// directly or base64 s16le PCM, plus progress counters.
type wireSegment struct {
	Samples     []float64 `json:"samples"`
	PCM16       string    `json:"pcm16"`
	GlobalStep  int       `json:"global_step"`
	PhonemeStep int       `json:"phoneme_step"`
}

func (ws wireSegment) toDomain() (domain.AudioSegment, error) {
	segment := domain.AudioSegment{
		GlobalStep:  ws.GlobalStep,
		PhonemeStep: ws.PhonemeStep,
	}

	if len(ws.Samples) > 0 {
		segment.Samples = ws.Samples
		return segment, nil
	}

	if ws.PCM16 == "" {
		return segment, nil
	}

	raw, err := base64.StdEncoding.DecodeString(ws.PCM16)
	if err != nil {
		return domain.AudioSegment{}, fmt.Errorf("decode pcm16: %w", err)
	}
	if len(raw)%2 != 0 {
		return domain.AudioSegment{}, fmt.Errorf("pcm16 payload has odd length %d", len(raw))
	}

	// Integer input is scaled by the format's maximum value into float.
	segment.Samples = make([]float64, len(raw)/2)
	for i := range segment.Samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		segment.Samples[i] = float64(v) / pcm16Max
	}

	return segment, nil
}
