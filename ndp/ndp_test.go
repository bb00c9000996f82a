package ndp

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrybridge/sentrybridge/cidr"
	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/event"
	"github.com/sentrybridge/sentrybridge/log"
)

type fakeSink struct {
	mtx   sync.Mutex
	calls []indexCall
}

type indexCall struct {
	index, id string
	body      string
}

func (s *fakeSink) Index(_ context.Context, index, id string, body []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.calls = append(s.calls, indexCall{index, id, string(body)})
	return nil
}

func (s *fakeSink) count() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.calls)
}

func mustEv(t *testing.T, raw string) *event.Event {
	t.Helper()
	ev, ok := event.Normalize([]byte(raw), log.NewDiscardLogger(), counters.New())
	require.True(t, ok)
	return ev
}

func allowAllConfig() Config {
	return Config{
		Enable:      true,
		RoutingFlow: true, RoutingFileinfo: true, RoutingTLS: true, RoutingDNS: true,
		RoutingSSH: true, RoutingHTTP: true, RoutingSMB: true, RoutingFTP: true,
		SMBInterestingCommands: map[string]struct{}{`SMB2_CMD_WRITE`: {}},
		FTPInterestingCommands: map[string]struct{}{`STOR`: {}},
	}
}

func emptyIgnore(t *testing.T) *cidr.Set {
	s, err := cidr.NewSet(nil)
	require.NoError(t, err)
	return s
}

func TestDNSDedupTwiceSkipsSecond(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dns":{"type":"query","rrname":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	c.Collect(context.Background(), mustEv(t, raw))

	require.Equal(t, 1, sink.count())
	require.EqualValues(t, 1, cnt.NDPEmitCount())
	require.EqualValues(t, 1, cnt.NDPSkipCount())
}

func TestDNSAnswerTypeIsDroppedSilently(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dns":{"type":"answer","rrname":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))

	require.Equal(t, 0, sink.count())
	require.EqualValues(t, 0, cnt.NDPEmitCount())
	require.EqualValues(t, 0, cnt.NDPSkipCount())
}

func TestIgnoreSetRespectedUnlessSMBInternal(t *testing.T) {
	ignore, err := cidr.NewSet([]string{`10.0.0.0/8`})
	require.NoError(t, err)

	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), ignore, sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"10.1.1.2","dns":{"type":"query","rrname":"internal.example"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestSMBInternalBypassesIgnoreSet(t *testing.T) {
	ignore, err := cidr.NewSet([]string{`10.0.0.0/8`})
	require.NoError(t, err)

	cfg := allowAllConfig()
	cfg.SMBInternal = true
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(cfg, ignore, sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"smb","src_ip":"10.1.1.1","dest_ip":"10.1.1.2","smb":{"command":"SMB2_CMD_WRITE","filename":"secret.doc"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 1, sink.count())
}

func TestRequireBothExternalNarrowsInclusion(t *testing.T) {
	ignore, err := cidr.NewSet([]string{`10.0.0.0/8`})
	require.NoError(t, err)

	cfg := allowAllConfig()
	cfg.RequireBothExternal = true
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(cfg, ignore, sink, cnt, log.NewDiscardLogger())

	// src is inside the ignore set, dest is outside: "either" would
	// include this, "both" must exclude it.
	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dns":{"type":"query","rrname":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestTLSWithoutHashesIsDroppedWithoutCounting(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"tls","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","tls":{"sni":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))

	require.Equal(t, 0, sink.count())
	require.EqualValues(t, 0, cnt.NDPEmitCount())
	require.EqualValues(t, 0, cnt.NDPSkipCount())
}

func TestTLSEmitsWithEitherHashPresent(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"tls","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","tls":{"ja3":{"hash":"abc"}}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 1, sink.count())
}

func TestTLSSoftwareVersionDefaultsToServerSubobject(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"tls","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","tls":{"ja3":{"hash":"abc"},"server":{"software_version":"nginx"},"client":{"software_version":"curl"}}}`
	c.Collect(context.Background(), mustEv(t, raw))

	require.Len(t, sink.calls, 1)
	require.Contains(t, sink.calls[0].body, `"software_version":"nginx"`)
}

func TestTLSSoftwareVersionTogglesToClientSubobject(t *testing.T) {
	cfg := allowAllConfig()
	cfg.TLSClientSoftwareVersion = true
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(cfg, emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"tls","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","tls":{"ja3":{"hash":"abc"},"server":{"software_version":"nginx"},"client":{"software_version":"curl"}}}`
	c.Collect(context.Background(), mustEv(t, raw))

	require.Len(t, sink.calls, 1)
	require.Contains(t, sink.calls[0].body, `"software_version":"curl"`)
}

func TestHTTPEmitsTwoIndependentObservationsWithIndependentDedup(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	first := `{"event_type":"http","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","http":{"hostname":"a.example","url":"/x","http_user_agent":"curl/8.0"}}`
	second := `{"event_type":"http","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","http":{"hostname":"b.example","url":"/y","http_user_agent":"curl/8.0"}}`

	c.Collect(context.Background(), mustEv(t, first))
	c.Collect(context.Background(), mustEv(t, second))

	// url observation differs each time (2 emits); user-agent observation
	// repeats (1 emit, 1 skip).
	require.Equal(t, 3, sink.count())
	require.EqualValues(t, 3, cnt.NDPEmitCount())
	require.EqualValues(t, 1, cnt.NDPSkipCount())

	require.Contains(t, sink.calls[0].body, `"type":"http"`)
	require.Contains(t, sink.calls[1].body, `"type":"user_agent"`)
	require.Contains(t, sink.calls[2].body, `"type":"http"`)
}

func TestFlowRequiresNonEmptyState(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"flow","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","flow":{}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestFlowEmitsOnePerQualifyingEndpoint(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"flow","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","flow":{"state":"new"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 2, sink.count())

	require.Contains(t, sink.calls[0].body, `"direction":"src_ip"`)
	require.Contains(t, sink.calls[0].body, `"ip_address":"10.1.1.1"`)
	require.Contains(t, sink.calls[1].body, `"direction":"dest_ip"`)
	require.Contains(t, sink.calls[1].body, `"ip_address":"8.8.8.8"`)
}

func TestFlowSkipsOnlyTheIgnoredEndpoint(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	ignore, err := cidr.NewSet([]string{`8.8.8.8/32`})
	require.NoError(t, err)
	c := New(allowAllConfig(), ignore, sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"flow","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","flow":{"state":"new"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 1, sink.count())
	require.Contains(t, sink.calls[0].body, `"direction":"src_ip"`)
}

func TestSMBGatesOnInterestingCommand(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"smb","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","smb":{"command":"SMB2_CMD_READ","filename":"notes.txt"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestFTPGatesOnInterestingCommand(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"ftp","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","ftp":{"command":"RETR","command_data":"file.bin"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())

	raw2 := `{"event_type":"ftp","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","ftp":{"command":"STOR","command_data":"file.bin"}}`
	c.Collect(context.Background(), mustEv(t, raw2))
	require.Equal(t, 1, sink.count())
}

func TestFileinfoDedupsOnMD5(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"fileinfo","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","fileinfo":{"md5":"d41d8cd98f00b204e9800998ecf8427e","filename":"a.bin"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 1, sink.count())
	require.EqualValues(t, 1, cnt.NDPSkipCount())
}

func TestDisabledRoutingFlagSkipsCollection(t *testing.T) {
	cfg := allowAllConfig()
	cfg.RoutingDNS = false
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(cfg, emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dns":{"type":"query","rrname":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestGloballyDisabledDoesNothing(t *testing.T) {
	cfg := allowAllConfig()
	cfg.Enable = false
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(cfg, emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"dns","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dns":{"type":"query","rrname":"example.com"}}`
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 0, sink.count())
}

func TestSSHDedupsOnFullCanonicalKey(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	raw := `{"event_type":"ssh","src_ip":"10.1.1.1","dest_ip":"8.8.8.8","dest_port":22,"ssh":{"server":{"software_version":"OpenSSH_8.9"},"client":{"software_version":"OpenSSH_9.0"}}}`
	c.Collect(context.Background(), mustEv(t, raw))
	c.Collect(context.Background(), mustEv(t, raw))
	require.Equal(t, 1, sink.count())
	require.EqualValues(t, 1, cnt.NDPSkipCount())
}

func TestFlowSharesOneDedupSlotAcrossEndpointsAndEvents(t *testing.T) {
	sink := &fakeSink{}
	cnt := counters.New()
	c := New(allowAllConfig(), emptyIgnore(t), sink, cnt, log.NewDiscardLogger())

	// first event: both endpoints qualify and differ, 2 emits; the
	// shared slot ends up holding dest_ip's digest.
	first := `{"event_type":"flow","src_ip":"203.0.113.1","dest_ip":"198.51.100.1","flow":{"state":"new"}}`
	c.Collect(context.Background(), mustEv(t, first))
	require.Equal(t, 2, sink.count())

	// second event's src_ip repeats the first event's dest_ip, so it is
	// skipped as a dedup against the shared slot; its dest_ip is new and
	// still emits.
	second := `{"event_type":"flow","src_ip":"198.51.100.1","dest_ip":"192.0.2.9","flow":{"state":"new"}}`
	c.Collect(context.Background(), mustEv(t, second))
	require.Equal(t, 3, sink.count())
	require.EqualValues(t, 1, cnt.NDPSkipCount())
}

func TestDigestHexIsThirtyTwoChars(t *testing.T) {
	h := sum128Hex([]byte(`example.com`))
	require.Len(t, h, 32)
	require.True(t, strings.IndexFunc(h, func(r rune) bool {
		return !strings.ContainsRune(`0123456789abcdef`, r)
	}) == -1)
}
