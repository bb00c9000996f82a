package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractAbsentMetadataIsNotPresent(t *testing.T) {
	m := Extract(nil)
	require.False(t, m.Present)
	require.Equal(t, `unknown`, m.OS)
}

func TestExtractSimpleFields(t *testing.T) {
	m := Extract([]byte(`{"fingerprint_os":"Windows 10","fingerprint_type":"client","fingerprint_expire":"3600"}`))
	require.True(t, m.Present)
	require.Equal(t, `Windows 10`, m.OS)
	require.Equal(t, `client`, m.Type)
	require.EqualValues(t, 3600, m.Expire)
}

func TestExtractArrayValuesTakeFirstElement(t *testing.T) {
	m := Extract([]byte(`{"fingerprint_os":["Windows 10","10"]}`))
	require.True(t, m.Present)
	require.Equal(t, `Windows 10`, m.OS)
}

func TestExtractCaseInsensitiveType(t *testing.T) {
	m := Extract([]byte(`{"fingerprint_type":"SERVER"}`))
	require.Equal(t, `server`, m.Type)
}

func TestExtractUnrecognisedTypeLeavesEmpty(t *testing.T) {
	m := Extract([]byte(`{"fingerprint_type":"gateway"}`))
	require.True(t, m.Present)
	require.Equal(t, ``, m.Type)
}

func TestExtractInvalidExpireYieldsZero(t *testing.T) {
	m := Extract([]byte(`{"fingerprint_expire":"not-a-number"}`))
	require.True(t, m.Present)
	require.EqualValues(t, 0, m.Expire)
}

func TestExtractLastKeyOccurrenceWins(t *testing.T) {
	// a hand-built object with a duplicated key: jsonparser.ObjectEach
	// visits both occurrences in document order, so the later one
	// overwrites the earlier.
	m := Extract([]byte(`{"fingerprint_os":"Windows","fingerprint_os":"Linux"}`))
	require.Equal(t, `Linux`, m.OS)
}
