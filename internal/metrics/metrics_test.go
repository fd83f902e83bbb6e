package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesPipelineMetrics(t *testing.T) {
	RecordImport("succeeded")
	RecordImport("destination_rejected")
	TrackExternal("shopify", "create_product")(nil)
	TrackExternal("openai", "chat_completion")(errors.New("timeout"))

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `shopify_automation_import_items_total{outcome="succeeded"}`)
	assert.Contains(t, text, `shopify_automation_import_items_total{outcome="destination_rejected"}`)
	assert.Contains(t, text, `service="openai"`)
	assert.Contains(t, text, `result="error"`)
}
