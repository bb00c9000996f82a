package event

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/log"
)

func TestNormalizeRejectsEmpty(t *testing.T) {
	cnt := counters.New()
	_, ok := Normalize(nil, log.NewDiscardLogger(), cnt)
	require.False(t, ok)
	require.EqualValues(t, 1, cnt.InvalidJSONCount())
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	cnt := counters.New()
	_, ok := Normalize([]byte(`{not json`), log.NewDiscardLogger(), cnt)
	require.False(t, ok)
	require.EqualValues(t, 1, cnt.InvalidJSONCount())
}

func TestNormalizeRejectsMissingEventType(t *testing.T) {
	cnt := counters.New()
	_, ok := Normalize([]byte(`{"src_ip":"1.2.3.4"}`), log.NewDiscardLogger(), cnt)
	require.False(t, ok)
	require.EqualValues(t, 1, cnt.InvalidJSONCount())
}

func TestNormalizeAcceptsValidAlert(t *testing.T) {
	cnt := counters.New()
	e, ok := Normalize([]byte(`{"event_type":"alert","src_ip":"10.1.1.1","alert":{"signature_id":2001}}`), log.NewDiscardLogger(), cnt)
	require.True(t, ok)
	require.Equal(t, `alert`, e.Type())
	require.Equal(t, `10.1.1.1`, e.GetString(`src_ip`))
	require.EqualValues(t, 2001, e.GetInt(`alert`, `signature_id`))
	require.EqualValues(t, 0, cnt.InvalidJSONCount())
}

func TestBestEffortAccessorsYieldZeroValue(t *testing.T) {
	cnt := counters.New()
	e, ok := Normalize([]byte(`{"event_type":"dns"}`), log.NewDiscardLogger(), cnt)
	require.True(t, ok)
	require.Equal(t, ``, e.GetString(`missing`))
	require.EqualValues(t, 0, e.GetInt(`missing`))
	require.False(t, e.GetBool(`missing`))
	require.False(t, e.Exists(`missing`))
}

func TestGetObjectAcceptsNativeAndStringEncoded(t *testing.T) {
	cnt := counters.New()
	native, ok := Normalize([]byte(`{"event_type":"dns","dns":{"type":"query","rrname":"example.com"}}`), log.NewDiscardLogger(), cnt)
	require.True(t, ok)
	obj, ok := native.GetObject(`dns`)
	require.True(t, ok)
	require.Contains(t, string(obj), `example.com`)

	reser, ok := Normalize([]byte(`{"event_type":"dns","dns":"{\"type\":\"query\",\"rrname\":\"example.com\"}"}`), log.NewDiscardLogger(), cnt)
	require.True(t, ok)
	obj, ok = reser.GetObject(`dns`)
	require.True(t, ok)
	require.Contains(t, string(obj), `example.com`)
}
