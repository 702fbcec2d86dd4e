package biometric

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
)

// Verificar en tiempo de compilación que HTTPClient implementa BiometricService.
var _ ports.BiometricService = (*HTTPClient)(nil)

// ErrUnavailable el servicio biométrico no respondió o respondió con error.
var ErrUnavailable = ports.ErrBiometricUnavailable

// HTTPClient adaptador del servicio de reconocimiento facial vía REST.
// El servicio detecta el rostro, predice la etiqueta y devuelve la distancia (confianza).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient construye el adaptador. timeout <= 0 usa 10 s.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Image string `json:"image"`
}

type verifyResponse struct {
	Matched    bool    `json:"matched"`
	Label      int     `json:"label"`
	Confidence float64 `json:"confidence"`
}

type enrollRequest struct {
	Label  int      `json:"label"`
	Images []string `json:"images"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Verify envía un fotograma y devuelve el veredicto del reconocedor.
// Sin rostro detectado el servicio responde matched=false.
func (c *HTTPClient) Verify(ctx context.Context, frame []byte) (faceid.Verdict, error) {
	var out verifyResponse
	err := c.post(ctx, "/verify", verifyRequest{Image: base64.StdEncoding.EncodeToString(frame)}, &out)
	if err != nil {
		return faceid.Verdict{}, err
	}
	return faceid.Verdict{Matched: out.Matched, Label: out.Label, Confidence: out.Confidence}, nil
}

// Enroll registra las imágenes de un empleado bajo su etiqueta y reentrena el modelo.
func (c *HTTPClient) Enroll(ctx context.Context, faceLabel int, images [][]byte) error {
	req := enrollRequest{Label: faceLabel, Images: make([]string, 0, len(images))}
	for _, img := range images {
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(img))
	}
	return c.post(ctx, "/enroll", req, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("biometric: serializar request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("biometric: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("biometric: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrUnavailable, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("biometric: deserializar respuesta: %w", err)
	}
	return nil
}
