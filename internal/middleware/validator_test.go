package middleware

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "judul\tsatu\nbaris", SanitizeString("  judul\tsatu\nbaris\x00\x07 "))
	assert.Equal(t, "", SanitizeString("\x00\x01"))
}

func TestOptionalInt64(t *testing.T) {
	q := url.Values{"id_instansi": {" 7 "}, "user_id": {"abc"}}

	v, err := OptionalInt64(q, "id_instansi")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(7), *v)

	v, err = OptionalInt64(q, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = OptionalInt64(q, "user_id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOptionalInt(t *testing.T) {
	n, err := OptionalInt(url.Values{"limit": {"-5"}}, "limit")
	require.NoError(t, err)
	assert.Equal(t, -5, *n)

	_, err = OptionalInt(url.Values{"offset": {"1.5"}}, "offset")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"true", "1", "ON", "yes"} {
		b, err := ParseBool("include_dok_keuangan", raw)
		require.NoError(t, err)
		assert.True(t, b, raw)
	}
	for _, raw := range []string{"", "false", "0", "off"} {
		b, err := ParseBool("include_dok_keuangan", raw)
		require.NoError(t, err)
		assert.False(t, b, raw)
	}
	_, err := ParseBool("include_dok_keuangan", "maybe")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateRecordID(t *testing.T) {
	id, err := ValidateRecordID("12")
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID(12), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := ValidateRecordID(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}
