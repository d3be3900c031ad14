// Package recoder canonicalises HGVS/rsID inputs against the remote
// variant-recoder service, turning free-form notation into candidate
// CHROM-POS-REF-ALT VCF strings (spec §4.4).
//
// Grounded on the teacher's internal/cache/rest_loader.go REST-call shape
// (Ensembl base URL selection by assembly, JSON decode of an array response)
// re-targeted at the variant_recoder endpoint instead of the overlap/region
// transcript loader.
package recoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vibe-annotate/vibe-annotate/internal/httpclient"
	"github.com/vibe-annotate/vibe-annotate/internal/model"
	"github.com/vibe-annotate/vibe-annotate/internal/pipeerr"
)

// DefaultChunkSize is the batch size spec §4.4 defaults to.
const DefaultChunkSize = 200

// InterChunkDelay is the pause applied between sequential chunk requests,
// per spec §5's deliberate rate-limit avoidance.
const InterChunkDelay = 100 * time.Millisecond

// Client recodes variant notation against a remote recoder service.
type Client struct {
	HTTP       *httpclient.Client
	ChunkSize  int
	SleepFn    func(context.Context, time.Duration) error
}

// New builds a recoder Client on top of an httpclient.Client.
func New(h *httpclient.Client) *Client {
	return &Client{
		HTTP:      h,
		ChunkSize: DefaultChunkSize,
		SleepFn:   defaultSleep,
	}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// defaultOptions is merged into every request per spec §4.4 ("a default
// option to request VCF-string output is merged in").
func defaultOptions(options map[string]string) map[string]string {
	merged := map[string]string{"vcf_string": "1"}
	for k, v := range options {
		merged[k] = v
	}
	return merged
}

// Recode canonicalises a single variant notation string.
func (c *Client) Recode(ctx context.Context, variant string, options map[string]string, cacheEnabled bool) (model.RecoderResult, error) {
	results, err := c.RecodeMany(ctx, []string{variant}, options, cacheEnabled)
	if err != nil {
		return model.RecoderResult{}, err
	}
	if len(results) == 0 {
		return model.RecoderResult{}, pipeerr.Wrap(pipeerr.ErrCanonicalisation, fmt.Errorf("recoder returned no result for %q", variant))
	}
	return results[0], nil
}

// RecodeMany canonicalises a batch of variants, chunked at c.ChunkSize, with
// an inter-chunk delay. Output order matches input order across all chunks
// (spec §5's concatenation-preserves-indexing guarantee).
func (c *Client) RecodeMany(ctx context.Context, variants []string, options map[string]string, cacheEnabled bool) ([]model.RecoderResult, error) {
	chunkSize := c.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	merged := defaultOptions(options)

	results := make([]model.RecoderResult, 0, len(variants))
	for start := 0; start < len(variants); start += chunkSize {
		end := start + chunkSize
		if end > len(variants) {
			end = len(variants)
		}
		chunk := variants[start:end]

		chunkResults, err := c.recodeChunk(ctx, chunk, merged, cacheEnabled)
		if err != nil {
			return nil, err
		}
		results = append(results, chunkResults...)

		if end < len(variants) {
			if err := c.SleepFn(ctx, InterChunkDelay); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

func (c *Client) recodeChunk(ctx context.Context, variants []string, options map[string]string, cacheEnabled bool) ([]model.RecoderResult, error) {
	body, err := json.Marshal(struct {
		Variants []string `json:"variants"`
	}{Variants: variants})
	if err != nil {
		return nil, pipeerr.Wrap(pipeerr.ErrValidation, err)
	}

	q := url.Values{}
	for k, v := range options {
		q.Set(k, v)
	}

	raw, err := c.HTTP.Fetch(ctx, "/variant_recoder/human", q, cacheEnabled, "POST", body)
	if err != nil {
		return nil, err
	}

	var decoded []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, pipeerr.Wrap(pipeerr.ErrCanonicalisation, fmt.Errorf("decode recoder response: %w", err))
	}
	if len(decoded) != len(variants) {
		return nil, pipeerr.Wrap(pipeerr.ErrCanonicalisation, fmt.Errorf("recoder returned %d results for %d inputs", len(decoded), len(variants)))
	}

	results := make([]model.RecoderResult, len(variants))
	for i, entry := range decoded {
		result := model.RecoderResult{Input: variants[i], Alleles: map[string]model.RecoderAllele{}}
		for alleleKey, rawAllele := range entry {
			if alleleKey == "input" || alleleKey == "warnings" {
				continue
			}
			node, err := model.ParseJSON(rawAllele)
			if err != nil {
				continue
			}
			allele := model.RecoderAllele{AlleleKey: alleleKey, Raw: node}
			if vcfNode := node.Get("vcf_string"); !vcfNode.IsNull() {
				for _, v := range vcfNode.Array() {
					allele.VCFString = append(allele.VCFString, v.AsString())
				}
			}
			result.Alleles[alleleKey] = allele
		}
		results[i] = result
	}
	return results, nil
}
