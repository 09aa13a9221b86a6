package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessage() PaymentMessage {
	return PaymentMessage{
		EventID:     "ev-1",
		OrderID:     42,
		UserID:      "u-1",
		PaymentID:   "pay_abc",
		AmountMinor: 50000,
	}
}

func TestPaymentMessageValidate(t *testing.T) {
	assert.NoError(t, validMessage().Validate())

	cases := []struct {
		name   string
		mutate func(*PaymentMessage)
	}{
		{"missing event id", func(m *PaymentMessage) { m.EventID = "" }},
		{"missing order id", func(m *PaymentMessage) { m.OrderID = 0 }},
		{"missing user id", func(m *PaymentMessage) { m.UserID = "" }},
		{"missing payment id", func(m *PaymentMessage) { m.PaymentID = "" }},
		{"zero amount", func(m *PaymentMessage) { m.AmountMinor = 0 }},
		{"negative amount", func(m *PaymentMessage) { m.AmountMinor = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMessage()
			tc.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestParsePaymentEvent(t *testing.T) {
	values := map[string]interface{}{
		"event_id":     "ev-1",
		"order_id":     "42",
		"user_id":      "u-1",
		"payment_id":   "pay_abc",
		"amount_minor": "50000",
	}

	msg, err := parsePaymentEvent(values)
	require.NoError(t, err)
	assert.Equal(t, validMessage(), msg)
}

func TestParsePaymentEventRejectsBadFields(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		_, err := parsePaymentEvent(map[string]interface{}{"event_id": "ev-1"})
		assert.Error(t, err)
	})

	t.Run("non-numeric order id", func(t *testing.T) {
		values := map[string]interface{}{
			"event_id":     "ev-1",
			"order_id":     "forty-two",
			"user_id":      "u-1",
			"payment_id":   "pay_abc",
			"amount_minor": "50000",
		}
		_, err := parsePaymentEvent(values)
		assert.Error(t, err)
	})
}
