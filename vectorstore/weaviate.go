// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var indexTracer = otel.Tracer("aleutian.chat.vectorstore")

// fetchAllPageSize bounds a single FetchAll scan. Conversations are a
// few hundred turns at most, so one page is plenty in practice.
const fetchAllPageSize = 10000

// WeaviateIndex implements Index on top of one Weaviate class.
//
// Each instance is bound to a single class at construction; the three
// collections (document chunks, chat memory, conversation metadata) are
// three WeaviateIndex instances sharing one client. The class is
// expected to use a text2vec vectorizer so nearText search works
// without a separate embedding service.
type WeaviateIndex struct {
	client     *weaviate.Client
	class      string
	properties []string
}

// NewWeaviateIndex binds an Index to the given class. The properties
// list names every metadata field to request on reads; "content" is
// always requested and must not be listed.
func NewWeaviateIndex(client *weaviate.Client, class string, properties []string) *WeaviateIndex {
	return &WeaviateIndex{
		client:     client,
		class:      class,
		properties: properties,
	}
}

// Insert stores content with metadata and returns the Weaviate UUID.
func (w *WeaviateIndex) Insert(ctx context.Context, content string, metadata map[string]any) (string, error) {
	ctx, span := indexTracer.Start(ctx, "WeaviateIndex.Insert")
	defer span.End()
	span.SetAttributes(attribute.String("weaviate.class", w.class))

	properties := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		properties[k] = v
	}
	properties["content"] = content

	result, err := w.client.Data().Creator().
		WithClassName(w.class).
		WithProperties(properties).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: insert into %s: %v", ErrBackendUnavailable, w.class, err)
	}
	if result == nil || result.Object == nil {
		return "", fmt.Errorf("%w: insert into %s returned no object", ErrBackendUnavailable, w.class)
	}
	return result.Object.ID.String(), nil
}

// Update merges fields into an existing object. Weaviate's merge
// semantics leave unmentioned properties alone, which is exactly what
// the metadata counters need.
func (w *WeaviateIndex) Update(ctx context.Context, id, content string, metadata map[string]any) error {
	ctx, span := indexTracer.Start(ctx, "WeaviateIndex.Update")
	defer span.End()
	span.SetAttributes(attribute.String("weaviate.class", w.class))

	properties := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		properties[k] = v
	}
	if content != "" {
		properties["content"] = content
	}

	err := w.client.Data().Updater().
		WithClassName(w.class).
		WithID(id).
		WithMerge().
		WithProperties(properties).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: update %s/%s: %v", ErrBackendUnavailable, w.class, id, err)
	}
	return nil
}

// Search runs nearText similarity search, optionally filtered.
func (w *WeaviateIndex) Search(ctx context.Context, query string, k int, filter *Filter) ([]Record, error) {
	ctx, span := indexTracer.Start(ctx, "WeaviateIndex.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("weaviate.class", w.class),
		attribute.Int("search.k", k),
	)

	if k <= 0 {
		return nil, nil
	}

	nearText := w.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	builder := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(w.fields()...).
		WithNearText(nearText).
		WithLimit(k)

	if filter != nil {
		builder = builder.WithWhere(whereClause(filter))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: search %s: %v", ErrBackendUnavailable, w.class, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: search %s: %s", ErrBackendUnavailable, w.class, result.Errors[0].Message)
	}

	return w.parseObjects(result), nil
}

// FetchAll scans every record matching the filter, unordered.
func (w *WeaviateIndex) FetchAll(ctx context.Context, filter *Filter) ([]Record, error) {
	ctx, span := indexTracer.Start(ctx, "WeaviateIndex.FetchAll")
	defer span.End()
	span.SetAttributes(attribute.String("weaviate.class", w.class))

	builder := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(w.fields()...).
		WithLimit(fetchAllPageSize)

	if filter != nil {
		builder = builder.WithWhere(whereClause(filter))
	}

	result, err := builder.Do(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: fetch all %s: %v", ErrBackendUnavailable, w.class, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: fetch all %s: %s", ErrBackendUnavailable, w.class, result.Errors[0].Message)
	}

	return w.parseObjects(result), nil
}

// DeleteWhere batch-deletes everything matching the filter.
func (w *WeaviateIndex) DeleteWhere(ctx context.Context, filter *Filter) (int, error) {
	ctx, span := indexTracer.Start(ctx, "WeaviateIndex.DeleteWhere")
	defer span.End()
	span.SetAttributes(attribute.String("weaviate.class", w.class))

	if filter == nil {
		return 0, fmt.Errorf("delete from %s: filter must not be nil", w.class)
	}

	response, err := w.client.Batch().ObjectsBatchDeleter().
		WithClassName(w.class).
		WithOutput("minimal").
		WithWhere(whereClause(filter)).
		Do(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%w: delete from %s: %v", ErrBackendUnavailable, w.class, err)
	}

	deleted := 0
	if response != nil && response.Results != nil {
		deleted = int(response.Results.Successful)
	}
	slog.Info("Deleted objects from Weaviate", "class", w.class, "field", filter.Field, "deleted", deleted)
	return deleted, nil
}

// fields builds the GraphQL field list: content plus every configured
// metadata property.
func (w *WeaviateIndex) fields() []graphql.Field {
	fields := make([]graphql.Field, 0, len(w.properties)+2)
	fields = append(fields, graphql.Field{Name: "content"})
	for _, p := range w.properties {
		fields = append(fields, graphql.Field{Name: p})
	}
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}})
	return fields
}

// parseObjects converts the dynamic GraphQL payload into Records.
// Malformed objects are skipped rather than failing the whole read.
func (w *WeaviateIndex) parseObjects(resp *models.GraphQLResponse) []Record {
	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return []Record{}
	}
	objects, ok := get[w.class].([]any)
	if !ok {
		return []Record{}
	}

	records := make([]Record, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		content, _ := m["content"].(string)
		var id string
		if additional, ok := m["_additional"].(map[string]any); ok {
			id, _ = additional["id"].(string)
		}
		metadata := make(map[string]any, len(m))
		for k, v := range m {
			if k == "content" || k == "_additional" {
				continue
			}
			metadata[k] = v
		}
		records = append(records, Record{ID: id, Content: content, Metadata: metadata})
	}
	return records
}

// whereClause converts a Filter into a Weaviate where builder.
func whereClause(f *Filter) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{f.Field}).
		WithOperator(filters.Equal).
		WithValueString(f.StringValue)
}
