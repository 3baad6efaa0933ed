package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRef_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want ImageRef
	}{
		{name: "string", in: `"/u/a.png"`, want: "/u/a.png"},
		{name: "list", in: `["", "/u/b.png", "/u/c.png"]`, want: "/u/b.png"},
		{name: "empty list", in: `[]`, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r ImageRef
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)
		})
	}

	var r ImageRef
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestPlaceOrderRequest_AmountPresence(t *testing.T) {
	t.Parallel()

	var withAmount, without PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 1050}`), &withAmount))
	require.NoError(t, json.Unmarshal([]byte(`{}`), &without))

	require.NotNil(t, withAmount.Amount)
	assert.Equal(t, "1050", withAmount.Amount.String())
	assert.Nil(t, without.Amount)
}

func TestNewPageMeta(t *testing.T) {
	t.Parallel()

	m := NewPageMeta(2, 10, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewPageMeta(3, 20, 10, 25)
	assert.False(t, m.HasNext)
}

func TestVerifyPaymentRequest_PaymentToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "pidx", in: `{"pidx":"bZQLD9"}`, want: "bZQLD9"},
		{name: "token fallback", in: `{"token":"bZQLD9"}`, want: "bZQLD9"},
		{name: "pidx wins", in: `{"pidx":"a","token":"b"}`, want: "a"},
		{name: "blank pidx", in: `{"pidx":"  ","token":"b"}`, want: "b"},
		{name: "neither", in: `{}`, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req VerifyPaymentRequest
			require.NoError(t, json.Unmarshal([]byte(tt.in), &req))
			assert.Equal(t, tt.want, req.PaymentToken())
		})
	}
}
