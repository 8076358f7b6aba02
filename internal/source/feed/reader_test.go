package feed

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0"?>
<Properties>
  <Property id="1">
    <Name lang="en">Grand Hotel</Name>
    <Category lang="en">Hotel</Category>
    <Latitude>1</Latitude>
    <Longitude>1</Longitude>
    <ReviewCount>500</ReviewCount>
  </Property>
  <Property id="2">
    <Name lang="en">Some Museum</Name>
    <Category lang="en">Museum</Category>
    <Latitude>1</Latitude>
    <Longitude>1</Longitude>
    <ReviewCount>10</ReviewCount>
  </Property>
</Properties>`

func gzipOf(t *testing.T, s string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf
}

func TestStreamDecodesAndSkipsDropped(t *testing.T) {
	gf := townGeofinder()
	out, errc := Stream(context.Background(), gzipOf(t, sampleXML), gf, nil)

	var got []string
	for p := range out {
		got = append(got, p.ID)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"ta:poi:1"}, got)
}

func TestStreamRespectsContextCancellation(t *testing.T) {
	gf := townGeofinder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, errc := Stream(ctx, gzipOf(t, sampleXML), gf, nil)

	select {
	case <-out:
	case <-time.After(time.Second):
	}
	select {
	case err := <-errc:
		_ = err
	case <-time.After(time.Second):
		t.Fatal("expected errc to close")
	}
}
