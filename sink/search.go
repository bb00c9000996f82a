/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticSearchSink PUTs documents to an Elasticsearch/OpenSearch
// cluster by index and id. Alerts are indexed under a separate index
// from the one NDP observations use; the core does not manage index
// templates or mappings.
type ElasticSearchSink struct {
	cli *elasticsearch.Client
}

func OpenElasticSearchSink(addresses []string) (*ElasticSearchSink, error) {
	cli, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("building search cluster client: %w", err)
	}
	return &ElasticSearchSink{cli: cli}, nil
}

func (s *ElasticSearchSink) Index(ctx context.Context, index, id string, body []byte) error {
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    `false`,
	}
	resp, err := req.Do(ctx, s.cli)
	if err != nil {
		return fmt.Errorf("indexing document %s/%s: %w", index, id, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("indexing document %s/%s: %s", index, id, string(b))
	}
	return nil
}

func (s *ElasticSearchSink) Close() error {
	return nil
}
