// Package vep retrieves batched region annotation from the remote
// variant-effect-predictor-style service (spec §4.5).
//
// Grounded on the teacher's internal/cache/rest_loader.go REST-call shape
// (JSON array decode of an overlap/region response), re-targeted at VEP's
// POST variants-array endpoint instead of a GET region-overlap lookup.
package vep

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vibe-annotate/vibe-annotate/internal/httpclient"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
)

// Client annotates batches of VEP-formatted region strings.
type Client struct {
	HTTP *httpclient.Client
}

// New builds a VEP Client on top of an httpclient.Client.
func New(h *httpclient.Client) *Client {
	return &Client{HTTP: h}
}

// FormatSNVRegion formats a canonical SNV/indel into the VEP region grammar:
// "CHROM POS . REF ALT . . .".
func FormatSNVRegion(chrom string, pos int64, ref, alt string) string {
	return fmt.Sprintf("%s %d . %s %s . . .", chrom, pos, ref, alt)
}

// FormatCNVRegion formats a CNV into VEP's CNV region grammar:
// "CHROM START END {deletion|duplication|CNV} 1".
func FormatCNVRegion(chrom string, start, end int64, kind string) string {
	return fmt.Sprintf("%s %d %d %s 1", chrom, start, end, cnvKindName(kind))
}

func cnvKindName(kind string) string {
	switch kind {
	case "DEL":
		return "deletion"
	case "DUP":
		return "duplication"
	default:
		return "CNV"
	}
}

// AnnotateRegions submits a batch of VEP-formatted region strings and
// returns one annotation Node per region, in submission order (spec §5:
// "VEP output order corresponds to the submitted region order").
func (c *Client) AnnotateRegions(ctx context.Context, regions []string, options map[string]string, cacheEnabled bool) ([]model.Node, error) {
	if len(regions) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(struct {
		Variants []string `json:"variants"`
	}{Variants: regions})
	if err != nil {
		return nil, pipeerr.Wrap(pipeerr.ErrValidation, err)
	}

	q := toQuery(options)
	raw, err := c.HTTP.Fetch(ctx, "/vep/human/region", q, cacheEnabled, "POST", body)
	if err != nil {
		return nil, err
	}

	var decoded []json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, pipeerr.Wrap(pipeerr.ErrPermanentRemote, fmt.Errorf("decode VEP response: %w", err))
	}
	if len(decoded) != len(regions) {
		return nil, pipeerr.Wrap(pipeerr.ErrPermanentRemote, fmt.Errorf("VEP returned %d annotations for %d regions", len(decoded), len(regions)))
	}

	out := make([]model.Node, len(decoded))
	for i, raw := range decoded {
		node, err := model.ParseJSON(raw)
		if err != nil {
			return nil, pipeerr.Wrap(pipeerr.ErrPermanentRemote, fmt.Errorf("decode VEP annotation %d: %w", i, err))
		}
		out[i] = node
	}
	return out, nil
}

func toQuery(options map[string]string) (q map[string][]string) {
	if len(options) == 0 {
		return nil
	}
	q = make(map[string][]string, len(options))
	for k, v := range options {
		q[k] = []string{v}
	}
	return q
}
