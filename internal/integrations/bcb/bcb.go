// Package bcb fetches the SELIC reference rate from the Brazilian central
// bank's SGS SOAP service. Display-only; the projection engine never sees
// interest rates.
package bcb

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/cofrinho/cashflow-service/internal/config"
	"github.com/sirupsen/logrus"
)

// SGS series 432: SELIC target rate, % per year.
const selicSeries = 432

// Client handles integration with Banco Central do Brasil
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new BCB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.BCBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for the latest value of a series
func (c *Client) buildSOAPRequest(series int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
			<soapenv:Body>
				<getUltimoValorVO xmlns="http://DefaultNamespace">
					<in0>%d</in0>
				</getUltimoValorVO>
			</soapenv:Body>
		</soapenv:Envelope>`, series)
}

// sendRequest sends the SOAP request to the SGS endpoint
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "getUltimoValorVO")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// parseRate extracts the latest rate value from the SOAP response
func (c *Client) parseRate(body []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	el := doc.FindElement("//ultimoValor/Valor")
	if el == nil {
		el = doc.FindElement("//valor")
	}
	if el == nil {
		return 0, fmt.Errorf("rate value not found in response")
	}

	// SGS localizes decimals with a comma.
	raw := strings.ReplaceAll(strings.TrimSpace(el.Text()), ",", ".")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate %q: %w", raw, err)
	}
	return rate, nil
}

// GetReferenceRate returns the latest SELIC target rate, % per year.
func (c *Client) GetReferenceRate() (float64, error) {
	body, err := c.sendRequest(c.buildSOAPRequest(selicSeries))
	if err != nil {
		return 0, err
	}
	rate, err := c.parseRate(body)
	if err != nil {
		return 0, err
	}
	c.log.Debugf("Fetched SELIC reference rate: %.2f", rate)
	return rate, nil
}
