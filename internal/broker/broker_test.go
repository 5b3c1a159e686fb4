package broker

import (
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baltic-RCC/RAO/internal/models"
)

func TestFromDeliveryParsesRecognizedHeaders(t *testing.T) {
	d := amqp.Delivery{
		Body: []byte(`<rdf/>`),
		Headers: amqp.Table{
			HeaderScenarioTime:     "2026-07-29T10:00:00Z",
			HeaderContentReference: "ref-123",
			HeaderTimeHorizon:      "1D",
			HeaderProjectName:      "BALTIC",
			HeaderMessageID:        "msg-1",
		},
	}

	msg, err := fromDelivery(d)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-29T10:00:00Z", msg.ScenarioTime)
	assert.Equal(t, "ref-123", msg.ContentReference)
	assert.Equal(t, "1D", msg.TimeHorizon)
	assert.Equal(t, "BALTIC", msg.ProjectName)
	assert.Equal(t, "msg-1", msg.MessageID)
	assert.Equal(t, []byte(`<rdf/>`), msg.Body)
}

func TestFromDeliveryFailsWithoutContentReference(t *testing.T) {
	d := amqp.Delivery{Headers: amqp.Table{HeaderScenarioTime: "2026-07-29T10:00:00Z"}}

	_, err := fromDelivery(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrBadMessage))
}
