// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mart annotates stable gene identifiers with display symbols
// using a BioMart mart service.
package mart

import (
	"errors"
	"strings"
)

// Namespace identifies the organism namespace of a stable gene
// identifier. Only the three namespaces below are supported.
type Namespace int

const (
	Human Namespace = iota // ENSG, Ensembl.
	Mouse                  // ENSMUSG, Ensembl.
	Worm                   // WBGene, WormBase ParaSite.
)

func (n Namespace) String() string {
	switch n {
	case Human:
		return "human"
	case Mouse:
		return "mouse"
	case Worm:
		return "worm"
	}
	return "unknown"
}

// ErrNamespaceUndetected is returned when a gene identifier matches no
// known namespace prefix.
var ErrNamespaceUndetected = errors.New("mart: no known identifier prefix")

// Detect returns the namespace for the given gene identifier based on
// its prefix.
func Detect(id string) (Namespace, error) {
	switch {
	case strings.HasPrefix(id, "ENSMUSG"):
		return Mouse, nil
	case strings.HasPrefix(id, "ENSG"):
		return Human, nil
	case strings.HasPrefix(id, "WBGene"):
		return Worm, nil
	}
	return 0, ErrNamespaceUndetected
}

const (
	ensemblService  = "https://www.ensembl.org/biomart/martservice"
	parasiteService = "https://parasite.wormbase.org/biomart/martservice"
)

// config holds the mart service parameters for one namespace.
type config struct {
	url       string
	schema    string
	dataset   string
	filter    string
	attribute string
}

var configs = map[Namespace]config{
	Human: {
		url:       ensemblService,
		schema:    "default",
		dataset:   "hsapiens_gene_ensembl",
		filter:    "ensembl_gene_id",
		attribute: "hgnc_symbol",
	},
	Mouse: {
		url:       ensemblService,
		schema:    "default",
		dataset:   "mmusculus_gene_ensembl",
		filter:    "ensembl_gene_id",
		attribute: "mgi_symbol",
	},
	Worm: {
		url:       parasiteService,
		schema:    "parasite_mart",
		dataset:   "wbps_gene",
		filter:    "wbps_gene_id",
		attribute: "external_gene_id",
	},
}
