package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRecordsMessages(t *testing.T) {
	pub := New()

	id1, err := pub.Publish(context.Background(), "site-health-failures", map[string]string{"site": "saramin.co.kr"})
	require.NoError(t, err)
	id2, err := pub.Publish(context.Background(), "site-health-failures", map[string]string{"site": "catch.co.kr"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "site-health-failures", msgs[0].Topic)
}
