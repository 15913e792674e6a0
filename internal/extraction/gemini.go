package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// extractionPrompt is sent after the image reference. It demands a
// strict JSON object with English snake_case property names so the
// normalizer has a stable schema to map from.
const extractionPrompt = `Extrae la siguiente información de este recibo o ticket de restaurante:
1. **Nombre del Restaurante**
2. **Fecha** (en formato DD/MM/AAAA)
3. **Hora** (en formato HH:MM; si no está disponible, indica "not applicable")
4. **Total** (incluyendo la divisa si está presente, ej. 25.50€ o $25.50)
5. Una lista de artículos comprados, donde cada artículo incluya: cantidad (si se especifica, ej. 2), nombre del artículo, precio por unidad (con dos decimales y divisa, ej. 1.50€) y precio total (también con dos decimales y divisa). Si un artículo no tiene precio (ej. Servicios) no lo incluyas.
Si un dato no se encuentra, indica "No disponible", o una lista vacía para los artículos.
Si en el ticket existen varios artículos que son iguales (mismo precio) pero se listan en líneas diferentes, agrúpalos en una sola entrada para que el resultado sea más fácil de leer.
Formatea la salida como un objeto JSON estricto utilizando el inglés para los nombres de las propiedades: restaurant_name, date, time, total, items (array de objetos con quantity, name, unit_price y total_price). No incluyas ningún texto antes o después del JSON.`

// Gemini implements VisionClient using Google Gemini and its file
// store.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini VisionClient instance
func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Upload pushes the staged image to the Gemini file store. The
// returned handle is revocable independently of the local file.
func (g *Gemini) Upload(ctx context.Context, localPath string) (*RemoteFile, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, &TransportError{Op: "opening staged image", Err: err}
	}
	defer f.Close()

	uploaded, err := g.client.UploadFile(ctx, "", f, &genai.UploadFileOptions{
		MIMEType: "image/png",
	})
	if err != nil {
		return nil, &TransportError{Op: "uploading image to file store", Err: err}
	}

	slog.Info("Image uploaded to Gemini", "name", uploaded.Name, "uri", uploaded.URI)

	return &RemoteFile{
		Name:     uploaded.Name,
		URI:      uploaded.URI,
		MIMEType: uploaded.MIMEType,
	}, nil
}

// Extract runs the multimodal request: the uploaded image first, then
// the extraction instruction.
func (g *Gemini) Extract(ctx context.Context, file *RemoteFile) (string, error) {
	parts := []genai.Part{
		genai.FileData{MIMEType: file.MIMEType, URI: file.URI},
		genai.Text(extractionPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &ModelError{Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ModelError{Err: fmt.Errorf("no response from gemini")}
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return strings.TrimSpace(responseText.String()), nil
}

// Delete removes an uploaded image from the file store.
func (g *Gemini) Delete(ctx context.Context, name string) error {
	if err := g.client.DeleteFile(ctx, name); err != nil {
		return &TransportError{Op: "deleting uploaded image", Err: err}
	}
	return nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
