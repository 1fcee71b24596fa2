package scanextract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrace-labs/medverify-cli/internal/model"
	"github.com/medtrace-labs/medverify-cli/pkg/anthropic"
)

type mockClient struct {
	reply string
	err   error
	seen  anthropic.MessageRequest
}

func (m *mockClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.seen = req
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: m.reply}},
	}, nil
}

func TestExtract(t *testing.T) {
	client := &mockClient{
		reply: `{"batch_number":"DOBS3984","medicine_name":"Evion 400","manufacturer":"Merck Ltd","confidence":"high"}`,
	}
	ex := NewExtractor(client, Options{Model: "test-model"})

	result, err := ex.Extract(context.Background(), "B.No DOBS3984 EVION 400 Merck")
	require.NoError(t, err)

	assert.Equal(t, "DOBS3984", result.BatchNumber)
	assert.Equal(t, "Evion 400", result.MedicineName)
	assert.Equal(t, model.ScanConfidenceHigh, result.Confidence)
	assert.Equal(t, "test-model", client.seen.Model)
}

func TestExtract_FencedReply(t *testing.T) {
	client := &mockClient{
		reply: "```json\n{\"batch_number\":\"KL2201A\",\"confidence\":\"medium\"}\n```",
	}
	ex := NewExtractor(client, Options{Model: "test-model"})

	result, err := ex.Extract(context.Background(), "some label text")
	require.NoError(t, err)
	assert.Equal(t, "KL2201A", result.BatchNumber)
	assert.Equal(t, model.ScanConfidenceMedium, result.Confidence)
}

func TestExtract_UnknownConfidenceDegradesToLow(t *testing.T) {
	client := &mockClient{reply: `{"batch_number":"X1","confidence":"certain"}`}
	ex := NewExtractor(client, Options{Model: "test-model"})

	result, err := ex.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, model.ScanConfidenceLow, result.Confidence)
}

func TestExtract_EmptyInputSkipsAPICall(t *testing.T) {
	client := &mockClient{err: eris.New("should not be called")}
	ex := NewExtractor(client, Options{Model: "test-model"})

	result, err := ex.Extract(context.Background(), "   \n  ")
	require.NoError(t, err)
	assert.Equal(t, model.ScanConfidenceLow, result.Confidence)
	assert.Empty(t, result.BatchNumber)
}

func TestExtract_MalformedReply(t *testing.T) {
	client := &mockClient{reply: "sorry, I could not read the label"}
	ex := NewExtractor(client, Options{Model: "test-model"})

	_, err := ex.Extract(context.Background(), "text")
	assert.Error(t, err)
}
