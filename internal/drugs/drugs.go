// Package drugs searches the RxNorm drug catalogue through the RxNav REST API.
package drugs

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"seva-health/internal/logging"
	"seva-health/internal/platform/httpclient"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://rxnav.nlm.nih.gov/REST"

const unknown = "Unknown"

var ErrEmptyQuery = errors.New("enter a medicine name to search")

var (
	strengthPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:MG|MCG|ML)\b(?:/\S+)?`)
	formPattern     = regexp.MustCompile(`(?i)(tablet|capsule|solution|suspension|injection|cream|ointment|gel)`)
	routePattern    = regexp.MustCompile(`(?i)(oral|topical|intravenous|intramuscular|subcutaneous)`)
)

type Drug struct {
	RxCUI    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym"`
	Strength string `json:"strength,omitempty"`
	Form     string `json:"form,omitempty"`
	Route    string `json:"route,omitempty"`
}

type rxnormData struct {
	XMLName   xml.Name `xml:"rxnormdata"`
	DrugGroup struct {
		Name          string `xml:"name"`
		ConceptGroups []struct {
			TTY        string `xml:"tty"`
			Properties []struct {
				RxCUI   string `xml:"rxcui"`
				Name    string `xml:"name"`
				Synonym string `xml:"synonym"`
				TTY     string `xml:"tty"`
			} `xml:"conceptProperties"`
		} `xml:"conceptGroup"`
	} `xml:"drugGroup"`
}

type Client struct {
	http *httpclient.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, log: logging.OrNop(logger).Named("drugs")}, nil
}

// Search returns every concept RxNav knows for name. No match is an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, name string) ([]Drug, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyQuery
	}

	raw, err := c.http.Do(ctx, http.MethodGet, "/drugs.xml?name="+url.QueryEscape(name),
		map[string]string{"Accept": "application/xml"}, nil)
	if err != nil {
		c.log.Warn("drug search failed", zap.String("query", name), zap.Error(err))
		var nerr *httpclient.NetworkError
		if errors.As(err, &nerr) {
			return nil, nerr
		}
		return nil, &httpclient.NetworkError{Op: "drug search", Err: err}
	}

	drugs, err := Parse(raw)
	if err != nil {
		return nil, &httpclient.NetworkError{Op: "decode drug search", Err: err}
	}
	return drugs, nil
}

// Parse decodes an RxNav drugs.xml document.
func Parse(raw []byte) ([]Drug, error) {
	var doc rxnormData
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]Drug, 0)
	for _, g := range doc.DrugGroup.ConceptGroups {
		for _, p := range g.Properties {
			d := Drug{
				RxCUI:   orUnknown(p.RxCUI),
				Name:    orUnknown(p.Name),
				Synonym: orUnknown(firstNonEmpty(p.Synonym, p.Name)),
			}
			d.Strength, d.Form, d.Route = describe(d.Name)
			out = append(out, d)
		}
	}
	return out, nil
}

// describe pulls strength, dosage form and route out of an RxNorm name such
// as "acetaminophen 500 MG Oral Tablet".
func describe(name string) (strength, form, route string) {
	strength = strengthPattern.FindString(name)
	for _, tok := range strings.Fields(name) {
		if form == "" && formPattern.MatchString(tok) {
			form = tok
		}
		if route == "" && routePattern.MatchString(tok) {
			route = tok
		}
	}
	return strength, form, route
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
