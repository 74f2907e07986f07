// Package ibge is a read-only client for the IBGE localidades API, the
// Brazilian municipality directory backing the city lookup endpoints.
package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// UF is a Brazilian federative unit (state).
type UF struct {
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// Mesorregiao nests the UF in the municipality payload.
type Mesorregiao struct {
	UF *UF `json:"UF"`
}

// Microrregiao nests the mesorregiao in the municipality payload.
type Microrregiao struct {
	Mesorregiao *Mesorregiao `json:"mesorregiao"`
}

// Municipality is a single entry of the /localidades/municipios payload.
// Depending on the API view, the state appears either under the
// microrregiao/mesorregiao nesting or as a flat "estado" object.
type Municipality struct {
	ID           int           `json:"id"`
	Nome         string        `json:"nome"`
	Microrregiao *Microrregiao `json:"microrregiao"`
	Estado       *UF           `json:"estado"`
}

// StateName returns the municipality's state name, or "" when absent.
func (m *Municipality) StateName() string {
	if m.Microrregiao != nil && m.Microrregiao.Mesorregiao != nil && m.Microrregiao.Mesorregiao.UF != nil {
		return m.Microrregiao.Mesorregiao.UF.Nome
	}
	if m.Estado != nil {
		return m.Estado.Nome
	}
	return ""
}

// StateAbbr returns the municipality's two-letter state code, or "" when absent.
func (m *Municipality) StateAbbr() string {
	if m.Microrregiao != nil && m.Microrregiao.Mesorregiao != nil && m.Microrregiao.Mesorregiao.UF != nil {
		return m.Microrregiao.Mesorregiao.UF.Sigla
	}
	if m.Estado != nil {
		return m.Estado.Sigla
	}
	return ""
}

// Client calls the IBGE localidades API. One attempt per call, no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL
// (e.g. https://servicodados.ibge.gov.br/api/v1).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// GetMunicipalities fetches the full municipality list. Any non-2xx
// response is surfaced as an error.
func (c *Client) GetMunicipalities(ctx context.Context) ([]Municipality, error) {
	url := c.baseURL + "/localidades/municipios"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build IBGE request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("IBGE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("IBGE returned status %d", resp.StatusCode)
	}

	var municipalities []Municipality
	if err := json.NewDecoder(resp.Body).Decode(&municipalities); err != nil {
		return nil, fmt.Errorf("failed to decode IBGE response: %w", err)
	}

	return municipalities, nil
}
