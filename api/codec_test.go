package api

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	require.Equal(t, CodecName, c.Name())
}

func TestCodecPlainStructs(t *testing.T) {
	override := int64(1500)
	data, err := Codec{}.Marshal(&SetAvailabilityRequest{
		PropertyID:    "p1",
		Dates:         []string{"2024-07-10"},
		PriceOverride: &override,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"property_id":"p1","dates":["2024-07-10"],"is_available":false,"price_override":1500}`, string(data))

	var out SetAvailabilityRequest
	require.NoError(t, Codec{}.Unmarshal([]byte(`{"property_id":"p1","dates":["2024-07-10"],"is_available":true}`), &out))
	require.True(t, out.IsAvailable)
	require.Nil(t, out.PriceOverride)
}

func TestCodecProtoMessages(t *testing.T) {
	data, err := Codec{}.Marshal(&errdetails.ErrorInfo{Reason: "date_unavailable", Domain: ErrorDomain})
	require.NoError(t, err)
	require.JSONEq(t, `{"reason":"date_unavailable","domain":"booking.dzoniops"}`, string(data))

	var info errdetails.ErrorInfo
	require.NoError(t, Codec{}.Unmarshal(data, &info))
	require.Equal(t, "date_unavailable", info.Reason)
}
