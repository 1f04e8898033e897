// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mart

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/biogo/eisa/de"
)

// ServiceError records a failed annotation service exchange. Annotation
// failures are not recoverable within a run; callers are expected to
// surface them.
type ServiceError struct {
	URL string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("mart: service %s failed: %v", e.URL, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client is a BioMart mart service client. The zero value queries the
// public Ensembl and WormBase ParaSite services with the default HTTP
// client. Requests block; the client performs no caching and no retry.
type Client struct {
	// BaseURL overrides the namespace service URL when non-empty.
	BaseURL string

	// HTTPClient is used for requests. If nil, http.DefaultClient is
	// used.
	HTTPClient *http.Client
}

// Symbols queries the service for the display symbol of each gene
// identifier in one round trip, returning an identifier to symbol map.
// Where the service reports more than one symbol for an identifier the
// first occurrence wins. Identifiers without a symbol are absent from
// the map; this is not an error.
func (c *Client) Symbols(ns Namespace, ids []string) (map[string]string, error) {
	cfg, ok := configs[ns]
	if !ok {
		return nil, ErrNamespaceUndetected
	}
	endpoint := cfg.url
	if c.BaseURL != "" {
		endpoint = c.BaseURL
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.PostForm(endpoint, url.Values{"query": {martQuery(cfg, ids)}})
	if err != nil {
		return nil, &ServiceError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{URL: endpoint, Err: fmt.Errorf("status %s", resp.Status)}
	}

	symbols := make(map[string]string)
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		// The service reports failures in the response body.
		if strings.HasPrefix(line, "Query ERROR") {
			return nil, &ServiceError{URL: endpoint, Err: fmt.Errorf("%s", line)}
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[1] == "" {
			continue
		}
		if _, ok := symbols[fields[0]]; !ok {
			symbols[fields[0]] = fields[1]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ServiceError{URL: endpoint, Err: err}
	}
	return symbols, nil
}

// Annotate fills the Symbol field of each row with the symbol for its
// gene identifier, using a single service query. The namespace is
// detected from the first row's identifier; rows without a mapped symbol
// keep an empty Symbol.
func (c *Client) Annotate(rows []de.Row) error {
	if len(rows) == 0 {
		return nil
	}
	ns, err := Detect(rows[0].ID)
	if err != nil {
		return err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	symbols, err := c.Symbols(ns, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Symbol = symbols[rows[i].ID]
	}
	return nil
}

// query is the BioMart request document.
type query struct {
	XMLName    xml.Name `xml:"Query"`
	Schema     string   `xml:"virtualSchemaName,attr"`
	Formatter  string   `xml:"formatter,attr"`
	Header     int      `xml:"header,attr"`
	UniqueRows int      `xml:"uniqueRows,attr"`
	Dataset    dataset  `xml:"Dataset"`
}

type dataset struct {
	Name       string      `xml:"name,attr"`
	Interface  string      `xml:"interface,attr"`
	Filter     filter      `xml:"Filter"`
	Attributes []attribute `xml:"Attribute"`
}

type filter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type attribute struct {
	Name string `xml:"name,attr"`
}

// martQuery renders the XML query document requesting the identifier and
// symbol attributes for the filtered gene list.
func martQuery(cfg config, ids []string) string {
	q := query{
		Schema:     cfg.schema,
		Formatter:  "TSV",
		Header:     0,
		UniqueRows: 0,
		Dataset: dataset{
			Name:      cfg.dataset,
			Interface: "default",
			Filter:    filter{Name: cfg.filter, Value: strings.Join(ids, ",")},
			Attributes: []attribute{
				{Name: cfg.filter},
				{Name: cfg.attribute},
			},
		},
	}
	b, err := xml.Marshal(q)
	if err != nil {
		// The document is built from static structure and cannot
		// fail to marshal.
		panic(err)
	}
	return xml.Header + "<!DOCTYPE Query>" + string(b)
}
