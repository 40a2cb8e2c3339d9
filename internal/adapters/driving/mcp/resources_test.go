package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()
	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "docqa://documents"}}

	t.Run("lists documents as json", func(t *testing.T) {
		server := newTestServer(t, &mockRetrievalService{docs: []domain.DocumentRef{
			{Filename: "fares.pdf", UploadDate: "01-02-2024 10:00:00"},
		}})

		result, err := server.handleDocumentsResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var docs []DocumentOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
		assert.Equal(t, "fares.pdf", docs[0].Filename)
	})

	t.Run("empty listing", func(t *testing.T) {
		server := newTestServer(t, &mockRetrievalService{docs: []domain.DocumentRef{}})
		result, err := server.handleDocumentsResource(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("store error", func(t *testing.T) {
		server := newTestServer(t, &mockRetrievalService{err: domain.ErrStore})
		_, err := server.handleDocumentsResource(ctx, req)
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}
