package hotspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/ironsheep/attention-heatmap-mcp/internal/config"
	"github.com/ironsheep/attention-heatmap-mcp/internal/imaging"
	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
)

// Instruction is the fixed prompt sent with every model request.
const Instruction = `You are a visual attention analyst. Look at the web page screenshot and its summary and predict where a first-time visitor looks during the first seconds.
Return 5 to 8 regions as JSON only, with no prose, in this exact shape:
{"hotspots":[{"x":0.1,"y":0.05,"width":0.3,"height":0.1,"confidence":0.9,"category":"headline","reason":"short reason"}]}
x, y, width and height are fractions of the screenshot width and height, with (x, y) the top-left corner.
confidence is in [0,1]. category is one of headline, cta, logo, hero, product, price, other.`

const (
	modelJPEGQuality = 80
	maxReplyBytes    = 1 << 20
)

// ModelDetector asks an OpenAI-compatible chat-completions endpoint for
// hotspots.
type ModelDetector struct {
	cfg    config.ModelConfig
	client *retryablehttp.Client
	logger logging.Logger
	sig    string
}

// NewModelDetector creates a model-assisted detector. client may be shared
// with other outbound calls; its per-attempt timeout is still bounded by
// cfg.Timeout through the request context.
func NewModelDetector(cfg config.ModelConfig, client *retryablehttp.Client, logger logging.Logger) *ModelDetector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 1
		client.Logger = nil
	}
	return &ModelDetector{
		cfg:    cfg,
		client: client,
		logger: logger.Named("model"),
		sig:    PromptSignature(cfg.Model, Instruction),
	}
}

// Name returns "model:<model name>".
func (d *ModelDetector) Name() string {
	return "model:" + d.cfg.Model
}

// PromptSignature identifies the model and instruction pair.
func (d *ModelDetector) PromptSignature() string {
	return d.sig
}

// PromptSignature hashes a model name and instruction into a short stable
// hex string.
func PromptSignature(model, instruction string) string {
	h := xxhash.New()
	_, _ = h.WriteString(model)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(instruction)
	return strconv.FormatUint(h.Sum64(), 16)
}

// Detect sends the screenshot and page summary to the model. Any transport
// error, non-2xx status, or reply that does not match the hotspot schema is
// returned wrapped in ErrDetectionFailed.
func (d *ModelDetector) Detect(ctx context.Context, pc PageContext) (*Result, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	body, err := d.buildRequest(pc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", ErrDetectionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrDetectionFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read reply: %v", ErrDetectionFailed, err)
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrDetectionFailed, resp.StatusCode, msg)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("%w: reply has no message content", ErrDetectionFailed)
	}

	hotspots, err := ParseReply(content.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}

	d.logger.Debug("model detection complete",
		logging.String("url", pc.URL),
		logging.Int("candidates", len(hotspots)),
		logging.Duration("elapsed", time.Since(start)))

	return &Result{
		Hotspots: hotspots,
		Meta: Meta{
			Engine:          d.Name(),
			PromptSignature: d.sig,
		},
	}, nil
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

func (d *ModelDetector) buildRequest(pc PageContext) (*bytes.Reader, error) {
	parts := []contentPart{{
		Type: "text",
		Text: fmt.Sprintf("%s\n\nURL: %s\nDevice: %s (%dx%d)\n\n%s",
			Instruction, pc.URL, pc.Device, pc.ViewportWidth, pc.ViewportHeight, pc.Summary.Text()),
	}}

	if pc.Screenshot != nil {
		small := imaging.Shrink(pc.Screenshot, d.cfg.MaxImageWidth)
		enc, err := imaging.Encode(small, "jpeg", modelJPEGQuality)
		if err != nil {
			return nil, err
		}
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:" + enc.MimeType + ";base64," + enc.Base64()},
		})
	}

	payload, err := json.Marshal(chatRequest{
		Model:    d.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: parts}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

type wireHotspot struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Confidence *float64 `json:"confidence"`
	Category   string   `json:"category"`
	Reason     string   `json:"reason"`
}

type wireReply struct {
	Hotspots []wireHotspot `json:"hotspots"`
}

// ParseReply decodes a model reply into candidates. Markdown code fences are
// stripped first. Every candidate must carry all five numeric fields; the
// reply must contain at least one candidate. Values are not range-checked
// here, that is Sanitize's job.
func ParseReply(content string) ([]Hotspot, error) {
	text := stripFences(content)
	if text == "" {
		return nil, fmt.Errorf("empty reply")
	}

	var reply wireReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if len(reply.Hotspots) == 0 {
		return nil, fmt.Errorf("reply has no hotspots")
	}

	out := make([]Hotspot, 0, len(reply.Hotspots))
	for i, w := range reply.Hotspots {
		if w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil || w.Confidence == nil {
			return nil, fmt.Errorf("hotspot %d is missing a numeric field", i)
		}
		out = append(out, Hotspot{
			X:          *w.X,
			Y:          *w.Y,
			Width:      *w.Width,
			Height:     *w.Height,
			Confidence: *w.Confidence,
			Category:   ParseCategory(w.Category),
			Reason:     strings.TrimSpace(w.Reason),
		})
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
