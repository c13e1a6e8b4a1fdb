package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/tiendaf1/shop/internal/models"
)

// IndexProduct upserts a product document keyed by its store ID.
func IndexProduct(ctx context.Context, client *elasticsearch.Client, index string, p models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("es: encode product: %w", err)
	}
	res, err := client.Index(
		index,
		&buf,
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index product: %s", res.Status())
	}
	return nil
}

// DeleteProduct removes a product document; a missing document is not an
// error.
func DeleteProduct(ctx context.Context, client *elasticsearch.Client, index string, id uint) error {
	res, err := client.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete product: %s", res.Status())
	}
	return nil
}
